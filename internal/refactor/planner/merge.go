package planner

import (
	"sort"

	"github.com/amarbel-llc/mill/internal/lsp"
	"github.com/amarbel-llc/mill/internal/refactor/model"
)

// textEditsToWorkspaceEdit groups the rich internal TextEdits (which carry
// per-file priority and descriptions) into the LSP-shaped WorkspaceEdit,
// resolving apply order with EditPlan.SortForApply before discarding the
// priority metadata.
func textEditsToWorkspaceEdit(edits []model.TextEdit) model.WorkspaceEdit {
	byFile := make(map[string][]model.TextEdit)
	var order []string
	for _, e := range edits {
		if _, ok := byFile[e.FilePath]; !ok {
			order = append(order, e.FilePath)
		}
		byFile[e.FilePath] = append(byFile[e.FilePath], e)
	}
	sort.Strings(order)

	we := model.WorkspaceEdit{Changes: make(map[lsp.DocumentURI][]lsp.TextEdit)}
	for _, path := range order {
		fileEdits := &model.EditPlan{Edits: byFile[path]}
		fileEdits.SortForApply()

		uri := lsp.URIFromPath(path)
		for _, e := range fileEdits.Edits {
			we.Changes[uri] = append(we.Changes[uri], lsp.TextEdit{Range: e.Range, NewText: e.NewText})
		}
	}
	return we
}

// mergeWorkspaceEdits combines reference-updater edits with LSP-sourced
// edits, deduplicating by (uri, range start) so the same edit isn't applied
// twice when both sources touch the same location.
func mergeWorkspaceEdits(base, extra model.WorkspaceEdit) model.WorkspaceEdit {
	type key struct {
		uri        lsp.DocumentURI
		startLine  int
		startChar  int
	}
	seen := make(map[key]bool)
	addKey := func(uri lsp.DocumentURI, r lsp.Range) key {
		k := key{uri: uri, startLine: r.Start.Line, startChar: r.Start.Character}
		seen[k] = true
		return k
	}

	merged := model.WorkspaceEdit{Changes: make(map[lsp.DocumentURI][]lsp.TextEdit)}
	for uri, edits := range base.Changes {
		for _, e := range edits {
			addKey(uri, e.Range)
			merged.Changes[uri] = append(merged.Changes[uri], e)
		}
	}
	for uri, edits := range extra.Changes {
		for _, e := range edits {
			k := key{uri: uri, startLine: e.Range.Start.Line, startChar: e.Range.Start.Character}
			if seen[k] {
				continue
			}
			seen[k] = true
			merged.Changes[uri] = append(merged.Changes[uri], e)
		}
	}
	merged.DocumentChanges = append(append([]model.DocumentChange{}, base.DocumentChanges...), extra.DocumentChanges...)
	return merged
}

// withLeadingRename promotes a WorkspaceEdit to document_changes form with a
// single Rename resource operation at the head, followed by every edit as
// an edit-form DocumentChange, matching the convention that
// document_changes is canonical whenever a resource operation appears.
func withLeadingRename(we model.WorkspaceEdit, oldURI, newURI lsp.DocumentURI) model.WorkspaceEdit {
	out := model.WorkspaceEdit{
		DocumentChanges: []model.DocumentChange{
			{ResourceOp: model.ResourceRename, OldURI: oldURI, NewURI: newURI},
		},
	}

	uris := make([]lsp.DocumentURI, 0, len(we.Changes))
	for uri := range we.Changes {
		uris = append(uris, uri)
	}
	sort.Slice(uris, func(i, j int) bool { return uris[i] < uris[j] })
	for _, uri := range uris {
		out.DocumentChanges = append(out.DocumentChanges, model.DocumentChange{IsEdit: true, URI: uri, Edits: we.Changes[uri]})
	}
	out.DocumentChanges = append(out.DocumentChanges, we.DocumentChanges...)
	return out
}
