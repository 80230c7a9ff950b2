package planner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/amarbel-llc/mill/internal/plugin"
	"github.com/amarbel-llc/mill/internal/refactor/model"
)

type packageInfo struct {
	lang         plugin.LanguagePlugin
	manifestPath string
	content      string
}

// detectPackage reports whether dir is a package: its manifest exists and
// does not declare itself a workspace. Package detection is delegated to
// each plugin's workspace_support capability, per language convention.
func detectPackage(registry *plugin.Registry, dir string) *packageInfo {
	for _, p := range registry.All() {
		if !p.Capabilities().Has(plugin.CapWorkspaceSupport) {
			continue
		}
		manifestName := p.Metadata().ManifestFilename
		if strings.Contains(manifestName, "*") {
			continue
		}
		manifestPath := filepath.Join(dir, manifestName)
		data, err := os.ReadFile(manifestPath)
		if err != nil {
			continue
		}
		ws, ok := p.WorkspaceSupport()
		if !ok {
			continue
		}
		content := string(data)
		if ws.IsWorkspaceManifest(content) {
			continue
		}
		return &packageInfo{lang: p, manifestPath: manifestPath, content: content}
	}
	return nil
}

// planPackageManifestEdits builds the manifest edits described for a
// package-directory rename: the package's own name field, the root
// workspace's member list, and every dependent manifest's path/feature-flag
// references to the old location.
func planPackageManifestEdits(registry *plugin.Registry, root, oldAbs, newAbs string, pkg *packageInfo, oldName, newName string) []model.TextEdit {
	var edits []model.TextEdit
	ws, _ := pkg.lang.WorkspaceSupport()
	manifestName := pkg.lang.Metadata().ManifestFilename

	if oldName != newName {
		// Targets the manifest at its pre-move location: the Executor
		// applies edits before resource operations, so the file still
		// lives under oldAbs when this edit is written.
		renamed := ws.UpdatePackageName(pkg.content, newName)
		if renamed != pkg.content {
			edits = append(edits, model.FullFileReplace(pkg.manifestPath, pkg.content, renamed,
				model.PriorityManifest, model.EditReplace, "update package name in "+pkg.manifestPath))
		}
	}

	oldMember := relSlash(root, oldAbs)
	newMember := relSlash(root, newAbs)

	rootManifestPath := filepath.Join(root, manifestName)
	if rootManifestPath != pkg.manifestPath {
		if data, err := os.ReadFile(rootManifestPath); err == nil {
			content := string(data)
			if ws.IsWorkspaceManifest(content) {
				updated := ws.AddMember(ws.RemoveMember(content, oldMember), newMember)
				if updated != content {
					edits = append(edits, model.FullFileReplace(rootManifestPath, content, updated,
						model.PriorityManifest, model.EditReplace, "update workspace members in "+rootManifestPath))
				}
			}
		}
	}

	oldFeatureTag := `"` + oldName + `/`
	newFeatureTag := `"` + newName + `/`

	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if filepath.Base(path) != manifestName {
			return nil
		}
		if path == pkg.manifestPath || path == rootManifestPath {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		content := string(data)
		updated := content

		dependentDir := filepath.Dir(path)
		oldRel := relSlash(dependentDir, oldAbs)
		newRel := relSlash(dependentDir, newAbs)
		if oldRel != "" {
			updated = strings.ReplaceAll(updated, `"`+oldRel+`"`, `"`+newRel+`"`)
		}
		if oldName != newName {
			updated = strings.ReplaceAll(updated, oldFeatureTag, newFeatureTag)
		}

		if updated != content {
			edits = append(edits, model.FullFileReplace(path, content, updated,
				model.PriorityManifest, model.EditReplace, "update dependent references in "+path))
		}
		return nil
	})

	return edits
}

func relSlash(base, target string) string {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return ""
	}
	return filepath.ToSlash(rel)
}
