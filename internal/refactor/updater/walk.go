// Package updater implements the Reference Updater: a gitignore-aware
// workspace walk that invokes each candidate file's language plugin to
// rewrite import/path references after a rename or move.
package updater

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// walker enumerates candidate files under root, skipping paths matched by
// the patterns in root's own .gitignore and anything under .git.
// .gitignore files in subdirectories are not read.
type walker struct {
	root        string
	extensions  map[string]bool
	ignoreGlobs []glob.Glob
}

func newWalker(root string, extensions []string) *walker {
	extSet := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		extSet[strings.ToLower(strings.TrimPrefix(e, "."))] = true
	}
	w := &walker{root: root, extensions: extSet}
	w.loadGitignore(root)
	return w
}

func (w *walker) loadGitignore(root string) {
	data, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		pattern := line
		if !strings.Contains(pattern, "/") {
			pattern = "**/" + pattern
		}
		pattern = strings.TrimSuffix(pattern, "/") + "/**"
		if g, err := glob.Compile(pattern, '/'); err == nil {
			w.ignoreGlobs = append(w.ignoreGlobs, g)
		}
		if g, err := glob.Compile(strings.TrimSuffix(line, "/"), '/'); err == nil {
			w.ignoreGlobs = append(w.ignoreGlobs, g)
		}
	}
}

func (w *walker) ignored(relPath string) bool {
	if strings.Contains(relPath, "/.git/") || strings.HasPrefix(relPath, ".git/") {
		return true
	}
	for _, g := range w.ignoreGlobs {
		// The "/" form lets "**/name" patterns match entries at the root too.
		if g.Match(relPath) || g.Match("/"+relPath) {
			return true
		}
	}
	return false
}

// Candidates returns every non-ignored file under root whose extension is
// in the registered set, relative-path sorted by filepath.Walk's natural
// lexical order.
func (w *walker) Candidates() ([]string, error) {
	var out []string
	err := filepath.Walk(w.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, rerr := filepath.Rel(w.root, path)
		if rerr != nil {
			return rerr
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if rel != "." && w.ignored(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if w.ignored(rel) {
			return nil
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if !w.extensions[ext] {
			return nil
		}
		out = append(out, path)
		return nil
	})
	return out, err
}
