package lock

import (
	"os"
	"path/filepath"
	"testing"
)

func TestQueue_WriteJobCreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")

	q := NewQueue(4)
	q.Submit(Job{Kind: JobWrite, Path: path, Content: []byte("hello")})
	res := <-q.Results()
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if string(content) != "hello" {
		t.Errorf("got %q, want %q", content, "hello")
	}
	q.Close()
}

func TestQueue_DeleteJobRemovesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	q := NewQueue(4)
	q.Submit(Job{Kind: JobDelete, Path: path})
	res := <-q.Results()
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file should have been removed")
	}
	q.Close()
}

func TestQueue_RenameJobMovesFile(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "old.txt")
	newPath := filepath.Join(dir, "sub", "new.txt")
	if err := os.WriteFile(oldPath, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	q := NewQueue(4)
	q.Submit(Job{Kind: JobRename, Path: oldPath, NewPath: newPath})
	res := <-q.Results()
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if _, err := os.Stat(newPath); err != nil {
		t.Errorf("expected file at new path: %v", err)
	}
	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Error("old path should no longer exist")
	}
	q.Close()
}

func TestQueue_UnknownJobKindReportsError(t *testing.T) {
	q := NewQueue(4)
	q.Submit(Job{Kind: JobKind("bogus"), Path: "/whatever"})
	res := <-q.Results()
	if res.Err == nil {
		t.Error("expected an error for an unknown job kind")
	}
	q.Close()
}

func TestQueue_PreservesFIFOOrderAcrossJobs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")

	q := NewQueue(1) // unbuffered-ish: forces strict ordering
	q.Submit(Job{Kind: JobWrite, Path: path, Content: []byte("first")})
	q.Submit(Job{Kind: JobWrite, Path: path, Content: []byte("second")})

	<-q.Results()
	<-q.Results()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if string(content) != "second" {
		t.Errorf("got %q, want %q (jobs should apply in submission order)", content, "second")
	}
	q.Close()
}

func TestQueue_CloseDrainsPendingResultsChannel(t *testing.T) {
	q := NewQueue(4)
	q.Submit(Job{Kind: JobDelete, Path: filepath.Join(t.TempDir(), "missing")})
	q.Close()

	// Close waits for the worker to finish; the results channel is closed
	// too, so a receive after Close must not block.
	_, ok := <-q.Results()
	if !ok {
		// the one submitted job's result may already have been drained by
		// a caller; either a closed-empty or a still-buffered read is fine
		return
	}
}
