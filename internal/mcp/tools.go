package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/amarbel-llc/mill/internal/deadcode"
	"github.com/amarbel-llc/mill/internal/dispatch"
	"github.com/amarbel-llc/mill/internal/lsp"
)

type ToolHandler func(ctx context.Context, args json.RawMessage) (*ToolCallResult, error)

// ToolRegistry exposes Mill's seven public tools over MCP's JSON-RPC
// tools/list and tools/call methods, translating wire arguments into
// dispatch.Dispatcher calls and dispatch.Result back into ToolCallResult.
type ToolRegistry struct {
	tools    []Tool
	handlers map[string]ToolHandler
	d        *dispatch.Dispatcher
}

func NewToolRegistry(d *dispatch.Dispatcher) *ToolRegistry {
	r := &ToolRegistry{
		handlers: make(map[string]ToolHandler),
		d:        d,
	}
	r.registerBuiltinTools()
	return r
}

func (r *ToolRegistry) List() []Tool {
	return r.tools
}

func (r *ToolRegistry) Call(ctx context.Context, name string, args json.RawMessage) (*ToolCallResult, error) {
	handler, ok := r.handlers[name]
	if !ok {
		return ErrorResult(fmt.Sprintf("unknown tool: %s", name)), nil
	}
	return handler(ctx, args)
}

func (r *ToolRegistry) register(name, description string, schema json.RawMessage, handler ToolHandler) {
	r.tools = append(r.tools, Tool{
		Name:        name,
		Description: description,
		InputSchema: schema,
	})
	r.handlers[name] = handler
}

func (r *ToolRegistry) registerBuiltinTools() {
	r.register("inspect_code", "Run a navigation or analysis query against a position or file: hover, definition, references, diagnostics, symbol_info, or dead_code (workspace-wide unreachable-symbol report). Agents MUST use this instead of grep/read when they need semantic information about a symbol, since it understands scope, types, and cross-file references rather than matching text.",
		json.RawMessage(`{
			"type": "object",
			"properties": {
				"uri": {"type": "string", "description": "File URI (e.g., file:///path/to/file.go)"},
				"line": {"type": "integer", "description": "0-indexed line number"},
				"character": {"type": "integer", "description": "0-indexed character offset"},
				"query": {"type": "string", "enum": ["hover", "definition", "references", "diagnostics", "symbol_info", "implementations", "call_hierarchy", "dead_code"], "default": "hover"},
				"lsp_names": {"type": "array", "items": {"type": "string"}, "description": "dead_code only: which configured language servers to collect symbols from"},
				"dead_code": {
					"type": "object",
					"description": "dead_code only: analysis configuration",
					"properties": {
						"max_concurrency": {"type": "integer"},
						"min_reference_threshold": {"type": "integer"},
						"file_types": {"type": "array", "items": {"type": "string"}},
						"include_exported": {"type": "boolean"},
						"max_results": {"type": "integer"},
						"entry_points": {
							"type": "object",
							"properties": {
								"main_functions": {"type": "boolean"},
								"tests": {"type": "boolean"},
								"pub_items": {"type": "boolean"},
								"additional_names": {"type": "array", "items": {"type": "string"}}
							}
						}
					}
				}
			},
			"required": ["uri"]
		}`),
		r.handleInspectCode)

	r.register("search_code", "Search for symbols (functions, types, constants) across the entire workspace by name pattern. Agents MUST use this instead of grep/glob when searching for symbol definitions by name, since this returns only actual symbol definitions rather than every text occurrence.",
		json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "Symbol name pattern to search for"},
				"uri": {"type": "string", "description": "Any file URI in the workspace (used to identify which LSP to query)"}
			},
			"required": ["query", "uri"]
		}`),
		r.handleSearchCode)

	r.register("rename_all", "Plan and/or apply renaming a symbol, file, or directory across the whole workspace, updating every reference, import, and manifest entry that depends on it. Agents MUST use this instead of find-and-replace or manual per-file edits when renaming anything.",
		json.RawMessage(`{
			"type": "object",
			"properties": {
				"kind": {"type": "string", "enum": ["file", "directory", "symbol"]},
				"root": {"type": "string", "description": "workspace root, required for file/directory kind"},
				"uri": {"type": "string", "description": "symbol kind: file containing the symbol"},
				"line": {"type": "integer", "description": "symbol kind: 0-indexed line"},
				"character": {"type": "integer", "description": "symbol kind: 0-indexed character"},
				"old_path": {"type": "string", "description": "file/directory kind: path relative to root"},
				"new_name": {"type": "string", "description": "new symbol name, or new basename for file/directory"},
				"dry_run": {"type": "boolean", "default": false}
			},
			"required": ["kind", "new_name"]
		}`),
		r.handleRenameAll)

	r.register("relocate", "Plan and/or apply moving a file or directory to a different path, updating every import/reference and any workspace manifest entries that name it by path.",
		json.RawMessage(`{
			"type": "object",
			"properties": {
				"kind": {"type": "string", "enum": ["file", "directory"]},
				"root": {"type": "string"},
				"old_path": {"type": "string"},
				"new_path": {"type": "string"},
				"dry_run": {"type": "boolean", "default": false}
			},
			"required": ["kind", "root", "old_path", "new_path"]
		}`),
		r.handleRelocate)

	r.register("prune", "Plan and/or apply deleting one or more files or directories, reporting any remaining importers as warnings rather than silently leaving dangling references.",
		json.RawMessage(`{
			"type": "object",
			"properties": {
				"targets": {"type": "array", "items": {"type": "string"}},
				"dry_run": {"type": "boolean", "default": false}
			},
			"required": ["targets"]
		}`),
		r.handlePrune)

	r.register("refactor", "Plan and/or apply an extract or inline refactor at a location.",
		json.RawMessage(`{
			"type": "object",
			"properties": {
				"action": {"type": "string", "enum": ["extract", "inline"]},
				"uri": {"type": "string"},
				"dry_run": {"type": "boolean", "default": false}
			},
			"required": ["action", "uri"]
		}`),
		r.handleRefactor)

	r.register("workspace", "Run a workspace-level action: find_replace (bulk literal substitution across matching files) or verify_project (check workspace manifest members and dependent paths resolve to real files). create_package and extract_dependencies are not implemented in this build.",
		json.RawMessage(`{
			"type": "object",
			"properties": {
				"action": {"type": "string", "enum": ["create_package", "extract_dependencies", "find_replace", "verify_project"]},
				"root": {"type": "string"},
				"pattern": {"type": "string", "description": "find_replace: literal text to find"},
				"replacement": {"type": "string", "description": "find_replace: literal text to substitute"},
				"file_types": {"type": "array", "items": {"type": "string"}},
				"dry_run": {"type": "boolean", "default": false}
			},
			"required": ["action", "root"]
		}`),
		r.handleWorkspace)
}

func resultToToolCallResult(res *dispatch.Result) *ToolCallResult {
	return &ToolCallResult{
		Content: []ContentBlock{TextContent(res.Text)},
		IsError: res.IsError,
	}
}

type inspectCodeArgs struct {
	URI       string             `json:"uri"`
	Line      int                `json:"line"`
	Character int                `json:"character"`
	Query     string             `json:"query"`
	LSPNames  []string           `json:"lsp_names"`
	DeadCode  deadCodeConfigWire `json:"dead_code"`
}

type deadCodeConfigWire struct {
	MaxConcurrency        int      `json:"max_concurrency"`
	MinReferenceThreshold int      `json:"min_reference_threshold"`
	FileTypes             []string `json:"file_types"`
	IncludeExported       bool     `json:"include_exported"`
	MaxResults            int      `json:"max_results"`
	EntryPoints           struct {
		MainFunctions   bool     `json:"main_functions"`
		Tests           bool     `json:"tests"`
		PubItems        bool     `json:"pub_items"`
		AdditionalNames []string `json:"additional_names"`
	} `json:"entry_points"`
}

func (r *ToolRegistry) handleInspectCode(ctx context.Context, args json.RawMessage) (*ToolCallResult, error) {
	var a inspectCodeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return ErrorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	res, err := r.d.InspectCode(ctx, dispatch.InspectCodeArgs{
		URI:       lsp.DocumentURI(a.URI),
		Line:      a.Line,
		Character: a.Character,
		Query:     a.Query,
		LSPNames:  a.LSPNames,
		DeadCode: deadcode.Config{
			MaxConcurrency:        a.DeadCode.MaxConcurrency,
			MinReferenceThreshold: a.DeadCode.MinReferenceThreshold,
			FileTypes:             a.DeadCode.FileTypes,
			IncludeExported:       a.DeadCode.IncludeExported,
			MaxResults:            a.DeadCode.MaxResults,
			EntryPoints: deadcode.EntryPointConfig{
				MainFunctions:   a.DeadCode.EntryPoints.MainFunctions,
				Tests:           a.DeadCode.EntryPoints.Tests,
				PubItems:        a.DeadCode.EntryPoints.PubItems,
				AdditionalNames: a.DeadCode.EntryPoints.AdditionalNames,
			},
		},
	})
	if err != nil {
		return ErrorResult(err.Error()), nil
	}
	return resultToToolCallResult(res), nil
}

type searchCodeArgs struct {
	Query string `json:"query"`
	URI   string `json:"uri"`
}

func (r *ToolRegistry) handleSearchCode(ctx context.Context, args json.RawMessage) (*ToolCallResult, error) {
	var a searchCodeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return ErrorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	res, err := r.d.SearchCode(ctx, dispatch.SearchCodeArgs{AnchorURI: lsp.DocumentURI(a.URI), Query: a.Query})
	if err != nil {
		return ErrorResult(err.Error()), nil
	}
	return resultToToolCallResult(res), nil
}

type renameAllArgs struct {
	Kind      string `json:"kind"`
	Root      string `json:"root"`
	URI       string `json:"uri"`
	Line      int    `json:"line"`
	Character int    `json:"character"`
	OldPath   string `json:"old_path"`
	NewName   string `json:"new_name"`
	DryRun    bool   `json:"dry_run"`
}

func (r *ToolRegistry) handleRenameAll(ctx context.Context, args json.RawMessage) (*ToolCallResult, error) {
	var a renameAllArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return ErrorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	res, err := r.d.RenameAll(ctx, dispatch.RenameAllArgs{
		Kind:      dispatch.TargetKind(a.Kind),
		Root:      a.Root,
		URI:       lsp.DocumentURI(a.URI),
		Line:      a.Line,
		Character: a.Character,
		OldPath:   a.OldPath,
		NewName:   a.NewName,
		DryRun:    a.DryRun,
	})
	if err != nil {
		return ErrorResult(err.Error()), nil
	}
	return resultToToolCallResult(res), nil
}

type relocateArgs struct {
	Kind    string `json:"kind"`
	Root    string `json:"root"`
	OldPath string `json:"old_path"`
	NewPath string `json:"new_path"`
	DryRun  bool   `json:"dry_run"`
}

func (r *ToolRegistry) handleRelocate(ctx context.Context, args json.RawMessage) (*ToolCallResult, error) {
	var a relocateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return ErrorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	res, err := r.d.Relocate(ctx, dispatch.RelocateArgs{
		Kind:    dispatch.TargetKind(a.Kind),
		Root:    a.Root,
		OldPath: a.OldPath,
		NewPath: a.NewPath,
		DryRun:  a.DryRun,
	})
	if err != nil {
		return ErrorResult(err.Error()), nil
	}
	return resultToToolCallResult(res), nil
}

type pruneArgs struct {
	Targets []string `json:"targets"`
	DryRun  bool     `json:"dry_run"`
}

func (r *ToolRegistry) handlePrune(ctx context.Context, args json.RawMessage) (*ToolCallResult, error) {
	var a pruneArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return ErrorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	res, err := r.d.Prune(ctx, dispatch.PruneArgs{Targets: a.Targets, DryRun: a.DryRun})
	if err != nil {
		return ErrorResult(err.Error()), nil
	}
	return resultToToolCallResult(res), nil
}

type refactorArgs struct {
	Action string `json:"action"`
	URI    string `json:"uri"`
	DryRun bool   `json:"dry_run"`
}

func (r *ToolRegistry) handleRefactor(ctx context.Context, args json.RawMessage) (*ToolCallResult, error) {
	var a refactorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return ErrorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	res, err := r.d.Refactor(ctx, dispatch.RefactorArgs{Action: a.Action, URI: lsp.DocumentURI(a.URI), DryRun: a.DryRun})
	if err != nil {
		return ErrorResult(err.Error()), nil
	}
	return resultToToolCallResult(res), nil
}

type workspaceArgs struct {
	Action      string   `json:"action"`
	Root        string   `json:"root"`
	Pattern     string   `json:"pattern"`
	Replacement string   `json:"replacement"`
	FileTypes   []string `json:"file_types"`
	DryRun      bool     `json:"dry_run"`
}

func (r *ToolRegistry) handleWorkspace(ctx context.Context, args json.RawMessage) (*ToolCallResult, error) {
	var a workspaceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return ErrorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	res, err := r.d.Workspace(ctx, dispatch.WorkspaceArgs{
		Action:      a.Action,
		Root:        a.Root,
		Pattern:     a.Pattern,
		Replacement: a.Replacement,
		FileTypes:   a.FileTypes,
		DryRun:      a.DryRun,
	})
	if err != nil {
		return ErrorResult(err.Error()), nil
	}
	return resultToToolCallResult(res), nil
}
