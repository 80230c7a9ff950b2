package planner

import (
	"fmt"
	"os"
	"strings"

	"github.com/amarbel-llc/mill/internal/lsp"
	"github.com/amarbel-llc/mill/internal/millerr"
	"github.com/amarbel-llc/mill/internal/refactor/model"
)

// Validate checks the invariants the Executor relies on: every edit target
// exists (or is the destination of a rename in the same plan), no two
// edits within a file overlap, and no path is both a rename source and an
// independent edit target.
func Validate(plan *model.Plan) error {
	renameNewURIs := make(map[lsp.DocumentURI]bool)
	renameOldURIs := make(map[lsp.DocumentURI]bool)
	var renameNewDirs []string
	for _, c := range plan.Edits.DocumentChanges {
		if !c.IsEdit && c.ResourceOp == model.ResourceRename {
			renameNewURIs[c.NewURI] = true
			renameOldURIs[c.OldURI] = true
			renameNewDirs = append(renameNewDirs, c.NewURI.Path())
		}
	}

	// underRenamedDir reports whether path will exist once a directory
	// rename in this plan completes, even though it doesn't exist yet.
	underRenamedDir := func(path string) bool {
		for _, dir := range renameNewDirs {
			if dir != "" && strings.HasPrefix(path, dir+string(os.PathSeparator)) {
				return true
			}
		}
		return false
	}

	editsByURI := make(map[lsp.DocumentURI][]lsp.TextEdit)
	for uri, edits := range plan.Edits.Changes {
		editsByURI[uri] = append(editsByURI[uri], edits...)
	}
	for _, c := range plan.Edits.DocumentChanges {
		if c.IsEdit {
			editsByURI[c.URI] = append(editsByURI[c.URI], c.Edits...)
		}
	}

	for uri, edits := range editsByURI {
		if renameOldURIs[uri] && !renameNewURIs[uri] {
			return millerr.New(millerr.PlanConflict, fmt.Sprintf("%s is both a rename source and an independent edit target", uri), nil)
		}

		if !renameNewURIs[uri] {
			if path := uri.Path(); path != "" && !underRenamedDir(path) {
				if _, err := os.Stat(path); err != nil {
					return millerr.New(millerr.PlanConflict, fmt.Sprintf("edit target does not exist: %s", path), nil)
				}
			}
		}

		for i := 0; i < len(edits); i++ {
			for j := i + 1; j < len(edits); j++ {
				if model.Overlaps(edits[i].Range, edits[j].Range) {
					return millerr.New(millerr.PlanConflict, fmt.Sprintf("overlapping edits in %s", uri), nil)
				}
			}
		}
	}

	return nil
}
