package dispatch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/amarbel-llc/mill/internal/millerr"
	"github.com/amarbel-llc/mill/internal/refactor/lock"
)

// findReplace walks args.Root for files matching args.FileTypes (all files
// if empty) and literal-replaces args.Pattern with args.Replacement. Unlike
// the Planner/Executor path, this writes through the Operation Queue: it is
// exactly the auxiliary, non-locking mutation the queue exists for, not a
// checksummed, rollback-capable Plan.
func (d *Dispatcher) findReplace(args WorkspaceArgs) (*Result, error) {
	if args.Pattern == "" {
		return errResult(millerr.New(millerr.InvalidRequest, "find_replace requires a non-empty pattern", nil))
	}

	var matches []string
	err := filepath.Walk(args.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == ".git" || info.Name() == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}
		if len(args.FileTypes) > 0 && !hasAnyExt(path, args.FileTypes) {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		if strings.Contains(string(content), args.Pattern) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return errResult(millerr.Wrap(millerr.IOError, "walking workspace for find_replace", err))
	}

	if args.DryRun {
		return &Result{Text: fmt.Sprintf("find_replace would touch %d file(s)", len(matches))}, nil
	}

	for _, path := range matches {
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		updated := strings.ReplaceAll(string(content), args.Pattern, args.Replacement)
		d.queue.Submit(lock.Job{Kind: lock.JobWrite, Path: path, Content: []byte(updated)})
	}

	var failed []string
	for i := 0; i < len(matches); i++ {
		r := <-d.queue.Results()
		if r.Err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", r.Job.Path, r.Err))
		}
	}

	if len(failed) > 0 {
		text := fmt.Sprintf("find_replace touched %d file(s), %d failed:", len(matches)-len(failed), len(failed))
		for _, f := range failed {
			text += "\n- " + f
		}
		return &Result{Text: text, IsError: true}, nil
	}
	return &Result{Text: fmt.Sprintf("find_replace touched %d file(s)", len(matches))}, nil
}

func hasAnyExt(path string, exts []string) bool {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	for _, e := range exts {
		if strings.EqualFold(strings.TrimPrefix(e, "."), ext) {
			return true
		}
	}
	return false
}
