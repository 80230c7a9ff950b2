// Package lspprovider exposes the LSP-backed operations the planner and
// dead-code analyzer need as a narrow interface, independent of the MCP
// transport layer. The Planner treats an LspProvider as optional: without
// one, symbol rename reports CapabilityNotSupported and moves use the
// reference updater's edits only.
package lspprovider

import (
	"context"

	"github.com/amarbel-llc/mill/internal/lsp"
	"github.com/amarbel-llc/mill/internal/refactor/model"
)

type FileRename struct {
	OldURI lsp.DocumentURI
	NewURI lsp.DocumentURI
}

type WorkspaceSymbol struct {
	Name     string
	Kind     int
	Location lsp.Location
}

type Provider interface {
	// Rename asks the LSP serving uri to compute a workspace edit renaming
	// the symbol at (line, character) to newName.
	Rename(ctx context.Context, uri lsp.DocumentURI, line, character int, newName string) (*model.WorkspaceEdit, error)

	// WillRenameFiles asks the LSP to collect edits dependent on the given
	// file renames (workspace/willRenameFiles).
	WillRenameFiles(ctx context.Context, renames []FileRename) (*model.WorkspaceEdit, error)

	// References returns every reference to the symbol at (line, character).
	References(ctx context.Context, uri lsp.DocumentURI, line, character int, includeDeclaration bool) ([]lsp.Location, error)

	// WorkspaceSymbols runs workspace/symbol for the given query against
	// the LSP registered for lspName.
	WorkspaceSymbols(ctx context.Context, lspName, query string) ([]WorkspaceSymbol, error)
}
