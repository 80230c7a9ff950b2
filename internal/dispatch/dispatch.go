// Package dispatch implements Mill's seven public tools as transport-agnostic
// operations: given parsed arguments it returns a Result or a *millerr.Error,
// independent of whatever JSON-RPC/CLI surface calls it.
package dispatch

import (
	"context"
	"fmt"

	"github.com/amarbel-llc/go-lib-mcp/protocol"
	"github.com/amarbel-llc/mill/internal/deadcode"
	"github.com/amarbel-llc/mill/internal/lsp"
	"github.com/amarbel-llc/mill/internal/millerr"
	"github.com/amarbel-llc/mill/internal/plugin"
	"github.com/amarbel-llc/mill/internal/refactor/executor"
	"github.com/amarbel-llc/mill/internal/refactor/lock"
	"github.com/amarbel-llc/mill/internal/refactor/model"
	"github.com/amarbel-llc/mill/internal/refactor/planner"
)

// LSPBridge is the read-only navigation surface a Dispatcher needs.
// internal/mcp.Bridge satisfies this structurally; dispatch never imports
// internal/mcp to avoid a cycle (tools.go sits on top of dispatch).
type LSPBridge interface {
	Hover(ctx context.Context, uri lsp.DocumentURI, line, character int) (*protocol.ToolCallResult, error)
	Definition(ctx context.Context, uri lsp.DocumentURI, line, character int) (*protocol.ToolCallResult, error)
	References(ctx context.Context, uri lsp.DocumentURI, line, character int, includeDecl bool) (*protocol.ToolCallResult, error)
	Diagnostics(ctx context.Context, uri lsp.DocumentURI) (*protocol.ToolCallResult, error)
	DocumentSymbols(ctx context.Context, uri lsp.DocumentURI) (*protocol.ToolCallResult, error)
	WorkspaceSymbols(ctx context.Context, uri lsp.DocumentURI, query string) (*protocol.ToolCallResult, error)
}

// Result is what every dispatched tool call returns: a human-readable
// summary plus, for plan-producing tools, the structured Plan/apply result
// underneath it.
type Result struct {
	Text    string
	IsError bool
	Plan    *model.Plan
	Applied *executor.Result
	Report  *deadcode.Report
}

func errResult(err error) (*Result, error) {
	return &Result{Text: err.Error(), IsError: true}, nil
}

// Dispatcher wires the read-only LSP bridge to the mutating refactor stack.
type Dispatcher struct {
	bridge   LSPBridge
	planner  *planner.Planner
	executor *executor.Executor
	analyzer *deadcode.Analyzer
	registry *plugin.Registry
	queue    *lock.Queue
}

func New(bridge LSPBridge, pl *planner.Planner, ex *executor.Executor, an *deadcode.Analyzer, registry *plugin.Registry, queue *lock.Queue) *Dispatcher {
	return &Dispatcher{bridge: bridge, planner: pl, executor: ex, analyzer: an, registry: registry, queue: queue}
}

// InspectCodeArgs requests one navigation query against a position.
type InspectCodeArgs struct {
	URI       lsp.DocumentURI
	Line      int
	Character int
	Query     string   // hover, definition, references, diagnostics, symbol_info, implementations, call_hierarchy, dead_code
	LSPNames  []string // dead_code: which configured language servers to collect symbols from
	DeadCode  deadcode.Config
}

func (d *Dispatcher) InspectCode(ctx context.Context, args InspectCodeArgs) (*Result, error) {
	if args.Query == "dead_code" {
		report, err := d.analyzer.Analyze(ctx, args.LSPNames, args.DeadCode)
		if err != nil {
			return errResult(millerr.Wrap(millerr.Internal, "dead_code analysis failed", err))
		}
		return &Result{
			Text:   fmt.Sprintf("dead_code: %d unreachable symbol(s) found among %d scanned (truncated=%v)", len(report.Findings), report.SymbolsScanned, report.Truncated),
			Report: report,
		}, nil
	}

	var tcr *protocol.ToolCallResult
	var err error

	switch args.Query {
	case "hover", "":
		tcr, err = d.bridge.Hover(ctx, args.URI, args.Line, args.Character)
	case "definition":
		tcr, err = d.bridge.Definition(ctx, args.URI, args.Line, args.Character)
	case "references":
		tcr, err = d.bridge.References(ctx, args.URI, args.Line, args.Character, true)
	case "diagnostics":
		tcr, err = d.bridge.Diagnostics(ctx, args.URI)
	case "symbol_info":
		tcr, err = d.bridge.DocumentSymbols(ctx, args.URI)
	case "implementations", "call_hierarchy":
		return errResult(millerr.New(millerr.CapabilityNotSupported,
			fmt.Sprintf("inspect_code query %q is not implemented", args.Query), nil))
	default:
		return errResult(millerr.New(millerr.InvalidRequest, fmt.Sprintf("unknown inspect_code query %q", args.Query), nil))
	}
	if err != nil {
		return errResult(millerr.Wrap(millerr.LSPUnavailable, "inspect_code query failed", err))
	}
	return toolResultToResult(tcr), nil
}

// SearchCodeArgs requests a workspace symbol search.
type SearchCodeArgs struct {
	AnchorURI lsp.DocumentURI // any file in the workspace the search is routed through
	Query     string
}

func (d *Dispatcher) SearchCode(ctx context.Context, args SearchCodeArgs) (*Result, error) {
	tcr, err := d.bridge.WorkspaceSymbols(ctx, args.AnchorURI, args.Query)
	if err != nil {
		return errResult(millerr.Wrap(millerr.LSPUnavailable, "search_code failed", err))
	}
	return toolResultToResult(tcr), nil
}

func toolResultToResult(tcr *protocol.ToolCallResult) *Result {
	if tcr == nil {
		return &Result{Text: ""}
	}
	var text string
	for _, c := range tcr.Content {
		text += c.Text
	}
	return &Result{Text: text, IsError: tcr.IsError}
}

// planOrApply runs the Executor when dryRun is false, wrapping both in one
// Result shape so every plan-producing tool reports consistently.
func (d *Dispatcher) planOrApply(plan *model.Plan, dryRun bool) (*Result, error) {
	res := &Result{Plan: plan, Text: summarizePlan(plan)}
	if dryRun {
		return res, nil
	}
	applied, err := d.executor.Apply(plan)
	res.Applied = applied
	if err != nil {
		res.IsError = true
		res.Text = err.Error()
		return res, nil
	}
	res.Text = summarizeApply(applied)
	return res, nil
}

func summarizePlan(p *model.Plan) string {
	return fmt.Sprintf("%s plan: %d file(s) affected, %d deletion(s), impact=%s",
		p.Type, p.Summary.AffectedFiles, p.Summary.DeletedFiles, p.Metadata.EstimatedImpact)
}

func summarizeApply(r *executor.Result) string {
	if r == nil {
		return "applied"
	}
	return fmt.Sprintf("applied: %d written, %d created, %d renamed, %d deleted",
		len(r.FilesWritten), len(r.FilesCreated), len(r.FilesRenamed), len(r.FilesDeleted))
}
