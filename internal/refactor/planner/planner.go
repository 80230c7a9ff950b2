// Package planner builds Plans from refactor requests: symbol renames via
// the LSP, file/directory moves via the reference updater plus manifest
// analysis, and deletions via a bottom-up directory walk.
package planner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/amarbel-llc/mill/internal/lsp"
	"github.com/amarbel-llc/mill/internal/lspprovider"
	"github.com/amarbel-llc/mill/internal/millerr"
	"github.com/amarbel-llc/mill/internal/plugin"
	"github.com/amarbel-llc/mill/internal/refactor/model"
	"github.com/amarbel-llc/mill/internal/refactor/updater"
)

// Planner builds Plans. The LSP provider is optional: its absence degrades
// rename to Unsupported and moves to reference-updater-only coverage.
type Planner struct {
	registry *plugin.Registry
	provider lspprovider.Provider
}

func New(registry *plugin.Registry, provider lspprovider.Provider) *Planner {
	return &Planner{registry: registry, provider: provider}
}

// RenameSymbolRequest targets one symbol occurrence, identified the way the
// LSP identifies it: a file plus a zero-based line/character.
type RenameSymbolRequest struct {
	URI       lsp.DocumentURI
	Line      int
	Character int
	NewName   string
}

func (p *Planner) PlanRenameSymbol(ctx context.Context, req RenameSymbolRequest) (*model.Plan, error) {
	if p.provider == nil {
		return nil, millerr.New(millerr.CapabilityNotSupported, "symbol rename requires an LSP provider", map[string]any{"uri": string(req.URI)})
	}

	edit, err := p.provider.Rename(ctx, req.URI, req.Line, req.Character, req.NewName)
	if err != nil {
		return nil, millerr.Wrap(millerr.LSPUnavailable, "textDocument/rename failed", err)
	}
	if edit == nil || len(edit.Files()) == 0 {
		return nil, millerr.New(millerr.CapabilityNotSupported, "LSP returned no rename edit and no AST fallback is available", map[string]any{"uri": string(req.URI)})
	}

	checksums, err := checksumFiles(edit.Files())
	if err != nil {
		return nil, err
	}

	plan := &model.Plan{
		Type:  model.PlanTypeRename,
		Edits: *edit,
		Summary: model.PlanSummary{
			AffectedFiles: len(edit.Files()),
		},
		Metadata: model.PlanMetadata{
			PlanVersion:     model.PlanVersion,
			Kind:            "RenameSymbol",
			Language:        languageFor(p.registry, req.URI.Path()),
			EstimatedImpact: model.EstimateImpact(len(edit.Files())),
		},
		FileChecksums: checksums,
	}
	if err := Validate(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// FileMoveRequest moves a single file from OldPath to NewPath, both
// relative to Root.
type FileMoveRequest struct {
	Root      string
	OldPath   string
	NewPath   string
	ScanScope updater.ScanScope
}

func (p *Planner) PlanFileMove(ctx context.Context, req FileMoveRequest) (*model.Plan, error) {
	oldAbs := filepath.Join(req.Root, req.OldPath)
	newAbs := filepath.Join(req.Root, req.NewPath)

	refEdits, err := updater.Update(updater.Request{
		Root:      req.Root,
		OldPath:   req.OldPath,
		NewPath:   req.NewPath,
		Registry:  p.registry,
		DryRun:    true,
		ScanScope: req.ScanScope,
	})
	if err != nil {
		return nil, millerr.Wrap(millerr.Internal, "reference update failed", err)
	}

	we := textEditsToWorkspaceEdit(refEdits)

	if p.provider != nil {
		lspEdit, err := p.provider.WillRenameFiles(ctx, []lspprovider.FileRename{
			{OldURI: lsp.URIFromPath(oldAbs), NewURI: lsp.URIFromPath(newAbs)},
		})
		if err != nil {
			millerr.Event("warn", "workspace/willRenameFiles failed, continuing with reference-updater edits only", "error", err)
		} else if lspEdit != nil {
			we = mergeWorkspaceEdits(we, *lspEdit)
		}
	}

	we = withLeadingRename(we, lsp.URIFromPath(oldAbs), lsp.URIFromPath(newAbs))

	checksums, err := checksumFiles(we.Files())
	if err != nil {
		return nil, err
	}

	plan := &model.Plan{
		Type:  model.PlanTypeMove,
		Edits: we,
		Summary: model.PlanSummary{
			AffectedFiles: len(we.Files()),
		},
		Metadata: model.PlanMetadata{
			PlanVersion:     model.PlanVersion,
			Kind:            "MoveFile",
			Language:        languageFor(p.registry, req.OldPath),
			EstimatedImpact: model.EstimateImpact(len(we.Files())),
		},
		FileChecksums: checksums,
	}
	if err := Validate(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// DirMoveRequest moves a directory, triggering Cargo-style package/manifest
// handling when the directory is detected as a package.
type DirMoveRequest struct {
	Root      string
	OldPath   string
	NewPath   string
	ScanScope updater.ScanScope
}

func (p *Planner) PlanDirectoryMove(ctx context.Context, req DirMoveRequest) (*model.Plan, error) {
	oldAbs := filepath.Join(req.Root, req.OldPath)
	newAbs := filepath.Join(req.Root, req.NewPath)

	pkg := detectPackage(p.registry, oldAbs)

	var renameInfo *updater.RenameInfo
	var warnings []model.PlanWarning
	manifestEdits := []model.TextEdit{}

	scanScope := req.ScanScope
	if pkg != nil {
		scanScope = updater.AllUseStatements
		if ws, ok := pkg.lang.WorkspaceSupport(); ok {
			oldName, found := ws.PackageName(pkg.content)
			if found {
				newName := filepath.Base(newAbs)
				renameInfo = &updater.RenameInfo{
					OldPackageName: ws.NormalizePackageName(oldName),
					NewPackageName: ws.NormalizePackageName(newName),
				}
				warnings = append(warnings, model.PlanWarning{
					Code:    "CARGO_PACKAGE_RENAME",
					Message: fmt.Sprintf("package %q renamed to %q; workspace members and dependents updated", oldName, newName),
				})

				manifestEdits = append(manifestEdits, planPackageManifestEdits(p.registry, req.Root, oldAbs, newAbs, pkg, oldName, newName)...)
			}
		}
	}

	refEdits, err := updater.Update(updater.Request{
		Root:       req.Root,
		OldPath:    req.OldPath,
		NewPath:    req.NewPath,
		Registry:   p.registry,
		RenameInfo: renameInfo,
		DryRun:     true,
		ScanScope:  scanScope,
	})
	if err != nil {
		return nil, millerr.Wrap(millerr.Internal, "reference update failed", err)
	}

	allEdits := append(refEdits, manifestEdits...)
	we := textEditsToWorkspaceEdit(allEdits)
	we = withLeadingRename(we, lsp.URIFromPath(oldAbs), lsp.URIFromPath(newAbs))

	checksums, err := checksumFiles(we.Files())
	if err != nil {
		return nil, err
	}

	plan := &model.Plan{
		Type:     model.PlanTypeMove,
		Edits:    we,
		Warnings: warnings,
		Summary: model.PlanSummary{
			AffectedFiles: len(we.Files()),
		},
		Metadata: model.PlanMetadata{
			PlanVersion:     model.PlanVersion,
			Kind:            "MoveDirectory",
			Language:        languageFor(p.registry, req.OldPath),
			EstimatedImpact: model.EstimateImpact(len(we.Files())),
		},
		FileChecksums: checksums,
	}
	if err := Validate(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// PlanDelete walks targets bottom-up and records every file and directory.
// No text edits are produced.
func (p *Planner) PlanDelete(targets []string) (*model.Plan, error) {
	var deletions []model.DeletionTarget
	for _, target := range targets {
		var collected []model.DeletionTarget
		walkErr := filepath.Walk(target, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			kind := model.DeletionFile
			if info.IsDir() {
				kind = model.DeletionDir
			}
			collected = append(collected, model.DeletionTarget{Path: path, Kind: kind})
			return nil
		})
		if walkErr != nil {
			return nil, millerr.Wrap(millerr.IOError, fmt.Sprintf("walking %s", target), walkErr)
		}

		// Bottom-up: deepest paths first so directories empty out before
		// their own deletion is attempted.
		for i, j := 0, len(collected)-1; i < j; i, j = i+1, j-1 {
			collected[i], collected[j] = collected[j], collected[i]
		}
		deletions = append(deletions, collected...)
	}

	return &model.Plan{
		Type:      model.PlanTypeDelete,
		Deletions: deletions,
		Summary:   model.PlanSummary{DeletedFiles: len(deletions)},
		Metadata: model.PlanMetadata{
			PlanVersion:     model.PlanVersion,
			Kind:            "Delete",
			EstimatedImpact: model.EstimateImpact(len(deletions)),
		},
	}, nil
}

func languageFor(registry *plugin.Registry, path string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	lang, err := registry.ForExtension(ext)
	if err != nil {
		return ""
	}
	return lang.Metadata().Name
}
