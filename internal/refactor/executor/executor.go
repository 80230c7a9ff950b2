// Package executor applies a Plan atomically: every effect lands or none
// do. Locks are held from precheck through commit; on any error after
// checksum verification, every change already made is rolled back.
package executor

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/amarbel-llc/mill/internal/lsp"
	"github.com/amarbel-llc/mill/internal/millerr"
	"github.com/amarbel-llc/mill/internal/refactor/lock"
	"github.com/amarbel-llc/mill/internal/refactor/model"
)

// Executor applies Plans against the real filesystem, serialized through a
// shared lock Manager.
type Executor struct {
	locks *lock.Manager
}

func New(locks *lock.Manager) *Executor {
	return &Executor{locks: locks}
}

// Result reports what the Executor did, for surfacing to the caller.
type Result struct {
	FilesWritten  []string
	FilesCreated  []string
	FilesRenamed  [][2]string
	FilesDeleted  []string
	RolledBack    bool
	RollbackError error
}

// snapshot records enough state to undo one already-applied effect.
type snapshot struct {
	writtenFiles map[string][]byte // path -> original bytes (edit or delete target)
	createdFiles []string          // paths this execution created
	renamedPairs [][2]string       // (old, new) pairs already renamed
	deletedFiles map[string][]byte // path -> bytes, for re-creation on rollback
}

func newSnapshot() *snapshot {
	return &snapshot{
		writtenFiles: make(map[string][]byte),
		deletedFiles: make(map[string][]byte),
	}
}

// Apply runs the full precheck/snapshot/checksum/apply/commit protocol.
// On error, it rolls back everything already applied and returns the
// original error with RolledBack/RollbackError populated in the result.
func (e *Executor) Apply(plan *model.Plan) (*Result, error) {
	paths := affectedPaths(plan)

	guards := e.locks.LockMany(paths)
	defer lock.ReleaseAll(guards)

	snap := newSnapshot()
	res := &Result{}

	if err := e.snapshotAndVerify(plan, snap); err != nil {
		return res, err
	}

	if err := e.applyEdits(plan, snap, res); err != nil {
		rbErr := e.rollback(snap, res)
		res.RolledBack = true
		res.RollbackError = rbErr
		return res, err
	}

	if err := e.applyResourceOps(plan, snap, res); err != nil {
		rbErr := e.rollback(snap, res)
		res.RolledBack = true
		res.RollbackError = rbErr
		return res, err
	}

	return res, nil
}

func affectedPaths(plan *model.Plan) []string {
	var paths []string
	for _, uri := range plan.Edits.Files() {
		if p := uri.Path(); p != "" {
			paths = append(paths, p)
		}
	}
	for _, d := range plan.Deletions {
		paths = append(paths, d.Path)
	}
	return paths
}

// snapshotAndVerify records pre-image bytes for every file that will be
// edited or deleted, and checks the plan's recorded checksums against
// current content, aborting with no filesystem changes on mismatch.
func (e *Executor) snapshotAndVerify(plan *model.Plan, snap *snapshot) error {
	for path, expected := range plan.FileChecksums {
		content, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return millerr.Wrap(millerr.IOError, "reading file for checksum verification", err)
		}
		sum := sha256.Sum256(content)
		if hex.EncodeToString(sum[:]) != expected {
			return millerr.ChecksumMismatchErr(path)
		}
	}

	for _, uri := range plan.Edits.Files() {
		path := uri.Path()
		if path == "" {
			continue
		}
		if content, err := os.ReadFile(path); err == nil {
			snap.writtenFiles[path] = content
		}
	}
	for _, d := range plan.Deletions {
		if d.Kind != model.DeletionFile {
			continue
		}
		if content, err := os.ReadFile(d.Path); err == nil {
			snap.deletedFiles[d.Path] = content
		}
	}

	return nil
}

// applyEdits writes every edited file, per file, in descending
// start-offset order so earlier replacements don't shift later ranges.
func (e *Executor) applyEdits(plan *model.Plan, snap *snapshot, res *Result) error {
	byFile := make(map[string][]lsp.TextEdit)
	collect := func(uri lsp.DocumentURI, edits []lsp.TextEdit) {
		if path := uri.Path(); path != "" {
			byFile[path] = append(byFile[path], edits...)
		}
	}
	for uri, edits := range plan.Edits.Changes {
		collect(uri, edits)
	}
	for _, c := range plan.Edits.DocumentChanges {
		if c.IsEdit {
			collect(c.URI, c.Edits)
		}
	}

	for path, edits := range byFile {
		sortDescending(edits)

		original, existed := snap.writtenFiles[path]
		if !existed {
			original = []byte{}
		}
		content := string(original)
		for _, e := range edits {
			content = applyOneEdit(content, e)
		}

		if err := atomicWrite(path, []byte(content)); err != nil {
			return millerr.Wrap(millerr.IOError, fmt.Sprintf("writing %s", path), err)
		}
		res.FilesWritten = append(res.FilesWritten, path)
	}
	return nil
}

// applyResourceOps runs Creates, then Renames, then Deletes, the order
// that guarantees a rename's target directory exists and a delete never
// races a rename reading from the same path.
func (e *Executor) applyResourceOps(plan *model.Plan, snap *snapshot, res *Result) error {
	for _, c := range plan.Edits.DocumentChanges {
		if c.IsEdit || c.ResourceOp != model.ResourceCreate {
			continue
		}
		path := c.NewURI.Path()
		if path == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return millerr.Wrap(millerr.IOError, fmt.Sprintf("creating %s", path), err)
		}
		if _, err := os.Stat(path); err != nil {
			if err := os.WriteFile(path, nil, 0o644); err != nil {
				return millerr.Wrap(millerr.IOError, fmt.Sprintf("creating %s", path), err)
			}
		}
		snap.createdFiles = append(snap.createdFiles, path)
		res.FilesCreated = append(res.FilesCreated, path)
	}

	for _, c := range plan.Edits.DocumentChanges {
		if c.IsEdit || c.ResourceOp != model.ResourceRename {
			continue
		}
		oldPath, newPath := c.OldURI.Path(), c.NewURI.Path()
		if oldPath == "" || newPath == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(newPath), 0o755); err != nil {
			return millerr.Wrap(millerr.IOError, fmt.Sprintf("renaming %s", oldPath), err)
		}
		if err := os.Rename(oldPath, newPath); err != nil {
			return millerr.Wrap(millerr.IOError, fmt.Sprintf("renaming %s to %s", oldPath, newPath), err)
		}
		snap.renamedPairs = append(snap.renamedPairs, [2]string{oldPath, newPath})
		res.FilesRenamed = append(res.FilesRenamed, [2]string{oldPath, newPath})
	}

	for _, c := range plan.Edits.DocumentChanges {
		if c.IsEdit || c.ResourceOp != model.ResourceDelete {
			continue
		}
		path := c.OldURI.Path()
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return millerr.Wrap(millerr.IOError, fmt.Sprintf("deleting %s", path), err)
		}
		res.FilesDeleted = append(res.FilesDeleted, path)
	}

	for _, d := range plan.Deletions {
		if d.Kind == model.DeletionFile {
			if err := os.Remove(d.Path); err != nil && !os.IsNotExist(err) {
				return millerr.Wrap(millerr.IOError, fmt.Sprintf("deleting %s", d.Path), err)
			}
			res.FilesDeleted = append(res.FilesDeleted, d.Path)
		}
	}
	// Plan order is deepest-first, so each directory is already empty.
	for _, d := range plan.Deletions {
		if d.Kind == model.DeletionDir {
			if err := os.Remove(d.Path); err != nil && !os.IsNotExist(err) {
				return millerr.Wrap(millerr.IOError, fmt.Sprintf("deleting %s", d.Path), err)
			}
			res.FilesDeleted = append(res.FilesDeleted, d.Path)
		}
	}

	return nil
}

// rollback undoes every effect recorded in snap, best-effort: it continues
// past individual failures and returns the first error encountered.
func (e *Executor) rollback(snap *snapshot, res *Result) error {
	var firstErr error
	note := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for i := len(snap.renamedPairs) - 1; i >= 0; i-- {
		pair := snap.renamedPairs[i]
		note(os.Rename(pair[1], pair[0]))
	}

	for _, path := range snap.createdFiles {
		note(os.Remove(path))
	}

	for path, content := range snap.deletedFiles {
		note(os.WriteFile(path, content, 0o644))
	}

	for path, content := range snap.writtenFiles {
		note(atomicWrite(path, content))
	}

	if firstErr != nil {
		return millerr.Wrap(millerr.RollbackFailed, "rollback did not fully succeed", firstErr)
	}
	return nil
}

func atomicWrite(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".mill-tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
