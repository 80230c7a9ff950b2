package dispatch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/amarbel-llc/mill/internal/refactor/lock"
)

func TestFindReplace_DryRunLeavesFilesUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("hello old world"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	d := &Dispatcher{queue: lock.NewQueue(4)}
	res, err := d.findReplace(WorkspaceArgs{Root: dir, Pattern: "old", Replacement: "new", DryRun: true})
	if err != nil {
		t.Fatalf("findReplace: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", res.Text)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if string(content) != "hello old world" {
		t.Errorf("dry run modified file: got %q", content)
	}
}

func TestFindReplace_WritesMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	matchPath := filepath.Join(dir, "a.go")
	skipPath := filepath.Join(dir, "b.md")
	if err := os.WriteFile(matchPath, []byte("package old\n"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(skipPath, []byte("# old title\n"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	queue := lock.NewQueue(4)
	d := &Dispatcher{queue: queue}
	res, err := d.findReplace(WorkspaceArgs{Root: dir, Pattern: "old", Replacement: "new", FileTypes: []string{"go"}})
	if err != nil {
		t.Fatalf("findReplace: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", res.Text)
	}

	content, err := os.ReadFile(matchPath)
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if string(content) != "package new\n" {
		t.Errorf("expected substitution, got %q", content)
	}

	skipContent, err := os.ReadFile(skipPath)
	if err != nil {
		t.Fatalf("reading back skip file: %v", err)
	}
	if string(skipContent) != "# old title\n" {
		t.Errorf("file_types filter should have left b.md untouched, got %q", skipContent)
	}
}

func TestFindReplace_RequiresPattern(t *testing.T) {
	d := &Dispatcher{queue: lock.NewQueue(1)}
	res, err := d.findReplace(WorkspaceArgs{Root: t.TempDir()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsError {
		t.Error("expected IsError for empty pattern")
	}
}
