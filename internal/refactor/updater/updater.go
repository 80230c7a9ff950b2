package updater

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/amarbel-llc/mill/internal/plugin"
	"github.com/amarbel-llc/mill/internal/refactor/model"
)

// ScanScope controls how aggressively RewriteReferences looks for
// references to the renamed/moved path.
type ScanScope string

const (
	// TopLevelOnly restricts candidates to files directly under Root;
	// nested subdirectories are not scanned.
	TopLevelOnly ScanScope = "TopLevelOnly"
	// AllUseStatements scans every candidate in the workspace. Forced
	// whenever the source is detected as a package-level rename, since a
	// qualified-path reference can live anywhere in the tree.
	AllUseStatements ScanScope = "AllUseStatements"
	QualifiedPaths   ScanScope = "QualifiedPaths"
	All              ScanScope = "All"
)

// RenameInfo carries the old/new package names from a manifest, used to
// additionally rewrite qualified-path references after a package rename.
type RenameInfo struct {
	OldPackageName string
	NewPackageName string
}

type Request struct {
	Root       string
	OldPath    string
	NewPath    string
	Registry   *plugin.Registry
	RenameInfo *RenameInfo
	DryRun     bool
	ScanScope  ScanScope
}

// Update runs the Reference Updater algorithm: enumerate candidate files,
// invoke each one's plugin to rewrite import/path references, and produce
// a flat list of TextEdits. It performs no writes — Update only plans.
func Update(req Request) ([]model.TextEdit, error) {
	extensions := req.Registry.Extensions()
	w := newWalker(req.Root, extensions)
	candidates, err := w.Candidates()
	if err != nil {
		return nil, fmt.Errorf("walking workspace: %w", err)
	}

	movedPrefix := filepath.Clean(filepath.Join(req.Root, req.OldPath)) + string(filepath.Separator)

	var edits []model.TextEdit
	for _, path := range candidates {
		if req.ScanScope == TopLevelOnly {
			rel, err := filepath.Rel(req.Root, path)
			if err != nil || strings.ContainsRune(rel, filepath.Separator) {
				continue
			}
		}

		// Files inside the path being moved travel in bulk; their own
		// "relative path to elsewhere" imports don't change, so the move
		// rewrite is skipped for them unless the scope forces qualified-path
		// scanning. Their self-referencing package-name imports still need
		// the rename rewrite below, since the package's own name changed.
		insideMovedPath := strings.HasPrefix(filepath.Clean(path)+string(filepath.Separator), movedPrefix)
		skipMoveRewrite := insideMovedPath && req.ScanScope != QualifiedPaths && req.ScanScope != All

		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		lang, err := req.Registry.ForExtension(ext)
		if err != nil {
			continue
		}

		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		source := string(content)
		updated := source

		if !skipMoveRewrite {
			if moveSupport, ok := lang.ImportMoveSupport(); ok {
				newSource, n := moveSupport.RewriteImportsForMove(updated, req.OldPath, req.NewPath)
				if n > 0 {
					updated = newSource
					edits = append(edits, model.FullFileReplace(path, source, updated,
						model.PriorityImportUpdate, model.EditUpdateImport,
						fmt.Sprintf("Update %d imports in %s", n, path)))
				}
			}
		}

		if req.RenameInfo != nil {
			if renameSupport, ok := lang.ImportRenameSupport(); ok {
				base := updated
				newSource, n := renameSupport.RewriteImportsForRename(base, req.RenameInfo.OldPackageName, req.RenameInfo.NewPackageName)
				if n > 0 {
					edits = append(edits, model.FullFileReplace(path, base, newSource,
						model.PriorityPathReference, model.EditReplace,
						fmt.Sprintf("Update %d path references in %s", n, path)))
					updated = newSource
				}
			}
		}
	}

	return edits, nil
}
