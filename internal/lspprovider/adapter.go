package lspprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/amarbel-llc/mill/internal/lsp"
	"github.com/amarbel-llc/mill/internal/refactor/model"
	"github.com/amarbel-llc/mill/internal/server"
	"github.com/amarbel-llc/mill/internal/subprocess"
)

// Adapter implements Provider directly against the subprocess pool and
// router, independent of any particular transport. It performs an
// ephemeral open/notify/close around each call rather than tracking
// document state, since planner operations are one-shot.
type Adapter struct {
	pool   *subprocess.Pool
	router *server.Router
}

func NewAdapter(pool *subprocess.Pool, router *server.Router) *Adapter {
	return &Adapter{pool: pool, router: router}
}

func (a *Adapter) withInstance(ctx context.Context, uri lsp.DocumentURI, fn func(*subprocess.LSPInstance) (json.RawMessage, error)) (json.RawMessage, error) {
	lspName := a.router.RouteByURI(uri)
	if lspName == "" {
		return nil, fmt.Errorf("no LSP configured for %s", uri)
	}

	inst, err := a.pool.GetOrStart(ctx, lspName, &lsp.InitializeParams{})
	if err != nil {
		return nil, fmt.Errorf("starting LSP %s: %w", lspName, err)
	}

	content, err := os.ReadFile(uri.Path())
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", uri, err)
	}

	if err := inst.Notify(lsp.MethodTextDocumentDidOpen, lsp.DidOpenTextDocumentParams{
		TextDocument: lsp.TextDocumentItem{URI: uri, LanguageID: "", Version: 1, Text: string(content)},
	}); err != nil {
		return nil, fmt.Errorf("opening %s: %w", uri, err)
	}
	defer inst.Notify(lsp.MethodTextDocumentDidClose, lsp.DidCloseTextDocumentParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: uri},
	})

	return fn(inst)
}

func (a *Adapter) Rename(ctx context.Context, uri lsp.DocumentURI, line, character int, newName string) (*model.WorkspaceEdit, error) {
	raw, err := a.withInstance(ctx, uri, func(inst *subprocess.LSPInstance) (json.RawMessage, error) {
		return inst.Call(ctx, lsp.MethodTextDocumentRename, map[string]any{
			"textDocument": lsp.TextDocumentIdentifier{URI: uri},
			"position":     lsp.Position{Line: line, Character: character},
			"newName":      newName,
		})
	})
	if err != nil {
		return nil, err
	}
	return decodeWorkspaceEdit(raw)
}

func (a *Adapter) WillRenameFiles(ctx context.Context, renames []FileRename) (*model.WorkspaceEdit, error) {
	if len(renames) == 0 {
		return &model.WorkspaceEdit{}, nil
	}

	files := make([]map[string]string, len(renames))
	for i, r := range renames {
		files[i] = map[string]string{"oldUri": string(r.OldURI), "newUri": string(r.NewURI)}
	}

	raw, err := a.withInstance(ctx, renames[0].OldURI, func(inst *subprocess.LSPInstance) (json.RawMessage, error) {
		return inst.Call(ctx, "workspace/willRenameFiles", map[string]any{"files": files})
	})
	if err != nil {
		return nil, err
	}
	return decodeWorkspaceEdit(raw)
}

func (a *Adapter) References(ctx context.Context, uri lsp.DocumentURI, line, character int, includeDeclaration bool) ([]lsp.Location, error) {
	raw, err := a.withInstance(ctx, uri, func(inst *subprocess.LSPInstance) (json.RawMessage, error) {
		return inst.Call(ctx, lsp.MethodTextDocumentReferences, map[string]any{
			"textDocument": lsp.TextDocumentIdentifier{URI: uri},
			"position":     lsp.Position{Line: line, Character: character},
			"context":      map[string]any{"includeDeclaration": includeDeclaration},
		})
	})
	if err != nil {
		return nil, err
	}
	if raw == nil || string(raw) == "null" {
		return nil, nil
	}
	var locs []lsp.Location
	if err := json.Unmarshal(raw, &locs); err != nil {
		return nil, fmt.Errorf("parsing references: %w", err)
	}
	return locs, nil
}

func (a *Adapter) WorkspaceSymbols(ctx context.Context, lspName, query string) ([]WorkspaceSymbol, error) {
	inst, err := a.pool.GetOrStart(ctx, lspName, &lsp.InitializeParams{})
	if err != nil {
		return nil, fmt.Errorf("starting LSP %s: %w", lspName, err)
	}

	raw, err := inst.Call(ctx, lsp.MethodWorkspaceSymbol, map[string]any{"query": query})
	if err != nil {
		return nil, err
	}
	if raw == nil || string(raw) == "null" {
		return nil, nil
	}

	var wire []struct {
		Name     string      `json:"name"`
		Kind     int         `json:"kind"`
		Location lsp.Location `json:"location"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("parsing workspace symbols: %w", err)
	}

	out := make([]WorkspaceSymbol, len(wire))
	for i, w := range wire {
		out[i] = WorkspaceSymbol{Name: w.Name, Kind: w.Kind, Location: w.Location}
	}
	return out, nil
}

// wireDocumentChange decodes one entry of documentChanges: either a
// TextDocumentEdit or one of the three resource operations, disambiguated
// by the presence of a "kind" field.
type wireDocumentChange struct {
	Kind string `json:"kind"`

	TextDocument *struct {
		URI lsp.DocumentURI `json:"uri"`
	} `json:"textDocument"`
	Edits []lsp.TextEdit `json:"edits"`

	URI    lsp.DocumentURI `json:"uri"`
	OldURI lsp.DocumentURI `json:"oldUri"`
	NewURI lsp.DocumentURI `json:"newUri"`
}

func decodeWorkspaceEdit(raw json.RawMessage) (*model.WorkspaceEdit, error) {
	if raw == nil || string(raw) == "null" {
		return &model.WorkspaceEdit{}, nil
	}

	var wire struct {
		Changes         map[lsp.DocumentURI][]lsp.TextEdit `json:"changes"`
		DocumentChanges []wireDocumentChange                `json:"documentChanges"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("parsing workspace edit: %w", err)
	}

	edit := &model.WorkspaceEdit{Changes: wire.Changes}
	for _, c := range wire.DocumentChanges {
		switch c.Kind {
		case "":
			if c.TextDocument != nil {
				edit.DocumentChanges = append(edit.DocumentChanges, model.DocumentChange{
					IsEdit: true,
					URI:    c.TextDocument.URI,
					Edits:  c.Edits,
				})
			}
		case "create":
			edit.DocumentChanges = append(edit.DocumentChanges, model.DocumentChange{ResourceOp: model.ResourceCreate, NewURI: c.URI})
		case "rename":
			edit.DocumentChanges = append(edit.DocumentChanges, model.DocumentChange{ResourceOp: model.ResourceRename, OldURI: c.OldURI, NewURI: c.NewURI})
		case "delete":
			edit.DocumentChanges = append(edit.DocumentChanges, model.DocumentChange{ResourceOp: model.ResourceDelete, OldURI: c.URI})
		}
	}
	return edit, nil
}
