package deadcode

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/amarbel-llc/mill/internal/lsp"
	"github.com/amarbel-llc/mill/internal/lspprovider"
	"github.com/amarbel-llc/mill/internal/millerr"
	"github.com/amarbel-llc/mill/internal/plugin"
)

// referenceCallTimeout bounds a single textDocument/references round trip;
// a slow or hung LSP server degrades one symbol's reference count to zero
// rather than stalling the whole analysis.
const referenceCallTimeout = 5 * time.Second

// Analyzer runs the collect/references/graph/reachability/report pipeline
// against an LspProvider. It never mutates the workspace.
type Analyzer struct {
	provider lspprovider.Provider
	registry *plugin.Registry
}

func New(provider lspprovider.Provider, registry *plugin.Registry) *Analyzer {
	return &Analyzer{provider: provider, registry: registry}
}

// Analyze scans the LSP servers named in lspNames (one workspace/symbol
// sweep per server) and reports symbols unreachable from the configured
// entry points.
func (a *Analyzer) Analyze(ctx context.Context, lspNames []string, cfg Config) (*Report, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	symbols, err := a.collect(ctx, lspNames, cfg)
	if err != nil {
		return nil, err
	}

	refCounts, graph, timedOut := a.gatherReferences(ctx, symbols, cfg)

	entrySet := a.entryPoints(symbols, cfg)
	reachable := bfsReachable(entrySet, graph)

	report := buildReport(symbols, refCounts, reachable, cfg)
	report.Truncated = report.Truncated || timedOut || ctx.Err() != nil
	return report, nil
}

// collect runs workspace/symbol (empty query) against every named LSP
// server and flattens the results, filtered by cfg.FileTypes if set.
func (a *Analyzer) collect(ctx context.Context, lspNames []string, cfg Config) ([]Symbol, error) {
	var out []Symbol
	seen := make(map[string]bool)

	for _, name := range lspNames {
		wsSymbols, err := a.provider.WorkspaceSymbols(ctx, name, "")
		if err != nil {
			millerr.Event("warn", "workspace/symbol failed, skipping server", "lsp", name, "error", err)
			continue
		}
		for _, ws := range wsSymbols {
			path := ws.Location.URI.Path()
			if len(cfg.FileTypes) > 0 && !hasExtension(path, cfg.FileTypes) {
				continue
			}
			sym := Symbol{
				ID:        symbolID(ws.Location.URI, ws.Name, ws.Location.Range.Start.Line),
				URI:       ws.Location.URI,
				Line:      ws.Location.Range.Start.Line,
				Character: ws.Location.Range.Start.Character,
				Kind:      SymbolKind(ws.Kind),
				IsPublic:  isExportedName(ws.Name),
				Name:      ws.Name,
			}
			if seen[sym.ID] {
				continue
			}
			seen[sym.ID] = true
			out = append(out, sym)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].URI != out[j].URI {
			return out[i].URI < out[j].URI
		}
		return out[i].Line < out[j].Line
	})
	return out, nil
}

// gatherReferences calls textDocument/references for every symbol, bounded
// by a semaphore of size cfg.concurrency() and a 5s per-call timeout, then
// attributes each reference to its smallest enclosing symbol to build the
// caller -> callee multigraph. refCounts is the raw incoming-reference
// count per symbol ID, independent of attribution.
func (a *Analyzer) gatherReferences(ctx context.Context, symbols []Symbol, cfg Config) (map[string]int, map[string]map[string]int, bool) {
	byFile := make(map[lsp.DocumentURI][]Symbol)
	for _, s := range symbols {
		byFile[s.URI] = append(byFile[s.URI], s)
	}
	for uri := range byFile {
		sort.Slice(byFile[uri], func(i, j int) bool { return byFile[uri][i].Line < byFile[uri][j].Line })
	}

	refCounts := make(map[string]int)
	graph := make(map[string]map[string]int)
	var mu sync.Mutex

	sem := make(chan struct{}, cfg.concurrency())
	var wg sync.WaitGroup
	var timedOut bool
	var timedOutMu sync.Mutex

	for _, sym := range symbols {
		if ctx.Err() != nil {
			timedOutMu.Lock()
			timedOut = true
			timedOutMu.Unlock()
			break
		}
		sym := sym
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			callCtx, cancel := context.WithTimeout(ctx, referenceCallTimeout)
			defer cancel()

			locs, err := a.provider.References(callCtx, sym.URI, sym.Line, sym.Character, false)
			if err != nil {
				millerr.Event("warn", "textDocument/references failed, treating as zero references", "symbol", sym.ID, "error", err)
				return
			}

			mu.Lock()
			refCounts[sym.ID] += len(locs)
			mu.Unlock()

			for _, loc := range locs {
				caller := findEnclosingSymbol(byFile[loc.URI], loc.Range.Start.Line)
				if caller == nil || caller.ID == sym.ID {
					continue // self-reference, dropped
				}
				mu.Lock()
				if graph[caller.ID] == nil {
					graph[caller.ID] = make(map[string]int)
				}
				graph[caller.ID][sym.ID]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	timedOutMu.Lock()
	defer timedOutMu.Unlock()
	return refCounts, graph, timedOut
}

// findEnclosingSymbol locates the smallest symbol containing refLine: same
// file, highest StartLine <= refLine. fileSymbols must be sorted by line.
func findEnclosingSymbol(fileSymbols []Symbol, refLine int) *Symbol {
	var best *Symbol
	for i := range fileSymbols {
		s := &fileSymbols[i]
		if s.Line > refLine {
			break
		}
		best = s
	}
	return best
}

func (a *Analyzer) entryPoints(symbols []Symbol, cfg Config) map[string]bool {
	entry := make(map[string]bool)
	additional := make(map[string]bool, len(cfg.EntryPoints.AdditionalNames))
	for _, n := range cfg.EntryPoints.AdditionalNames {
		additional[n] = true
	}

	for _, s := range symbols {
		if additional[s.Name] {
			entry[s.ID] = true
			continue
		}
		if (cfg.IncludeExported || cfg.EntryPoints.PubItems) && s.IsPublic {
			entry[s.ID] = true
			continue
		}
		meta := a.analysisMetadataFor(s.URI)
		if meta == nil {
			continue
		}
		if cfg.EntryPoints.MainFunctions && meta.IsEntryPointName(s.Name) {
			entry[s.ID] = true
			continue
		}
		if cfg.EntryPoints.Tests && matchesAny(meta.TestPatterns(), s.Name) {
			entry[s.ID] = true
		}
	}
	return entry
}

func (a *Analyzer) analysisMetadataFor(uri lsp.DocumentURI) plugin.AnalysisMetadata {
	if a.registry == nil {
		return nil
	}
	ext := extensionOf(uri.Path())
	lang, err := a.registry.ForExtension(ext)
	if err != nil {
		return nil
	}
	if !lang.Capabilities().Has(plugin.CapAnalysisMetadata) {
		return nil
	}
	meta, ok := lang.AnalysisMetadata()
	if !ok {
		return nil
	}
	return meta
}

func matchesAny(patterns []string, name string) bool {
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			continue
		}
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// bfsReachable walks the caller -> callee graph forward from every entry
// point, returning the set of symbol IDs reachable (including the entry
// points themselves).
func bfsReachable(entry map[string]bool, graph map[string]map[string]int) map[string]bool {
	reachable := make(map[string]bool, len(entry))
	queue := make([]string, 0, len(entry))
	for id := range entry {
		reachable[id] = true
		queue = append(queue, id)
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for callee := range graph[id] {
			if reachable[callee] {
				continue
			}
			reachable[callee] = true
			queue = append(queue, callee)
		}
	}
	return reachable
}

func buildReport(symbols []Symbol, refCounts map[string]int, reachable map[string]bool, cfg Config) *Report {
	var findings []Finding
	for _, s := range symbols {
		if reachable[s.ID] {
			continue
		}
		if !cfg.kindAllowed(s.Kind) {
			continue
		}
		count := refCounts[s.ID]
		if count > cfg.MinReferenceThreshold {
			continue
		}
		findings = append(findings, Finding{Symbol: s, ReferenceCount: count})
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Symbol.URI != findings[j].Symbol.URI {
			return findings[i].Symbol.URI < findings[j].Symbol.URI
		}
		return findings[i].Symbol.Line < findings[j].Symbol.Line
	})

	truncated := false
	if cfg.MaxResults > 0 && len(findings) > cfg.MaxResults {
		findings = findings[:cfg.MaxResults]
		truncated = true
	}

	return &Report{Findings: findings, SymbolsScanned: len(symbols), Truncated: truncated}
}

func extensionOf(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return ""
	}
	return path[i+1:]
}

func hasExtension(path string, exts []string) bool {
	ext := extensionOf(path)
	for _, e := range exts {
		if strings.EqualFold(strings.TrimPrefix(e, "."), ext) {
			return true
		}
	}
	return false
}

// isExportedName approximates "public/exported" with Go's capitalization
// rule for every language: a name starting with a lowercase ASCII letter or
// an underscore is unexported, any other non-empty name is exported.
func isExportedName(name string) bool {
	if name == "" {
		return false
	}
	r := name[0]
	if r >= 'a' && r <= 'z' {
		return false
	}
	if r == '_' {
		return false
	}
	return true
}
