package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteConfigFile_WritesNewFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "lsps.toml")

	if err := writeConfigFile(path, "content", false); err != nil {
		t.Fatalf("writeConfigFile: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "content" {
		t.Errorf("got %q", got)
	}
}

func TestWriteConfigFile_SkipsExistingWithoutForce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lsps.toml")
	if err := os.WriteFile(path, []byte("original"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := writeConfigFile(path, "replacement", false); err != nil {
		t.Fatalf("writeConfigFile: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "original" {
		t.Errorf("expected the existing file to be left alone, got %q", got)
	}
}

func TestWriteConfigFile_OverwritesExistingWithForce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lsps.toml")
	if err := os.WriteFile(path, []byte("original"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := writeConfigFile(path, "replacement", true); err != nil {
		t.Fatalf("writeConfigFile: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "replacement" {
		t.Errorf("got %q", got)
	}
}

func TestEmptyConfigFiles_HasLSPsAndFormattersKeys(t *testing.T) {
	files := emptyConfigFiles("/cfg")
	if files[filepath.Join("/cfg", "lsps.toml")] != "" {
		t.Error("expected empty content for lsps.toml")
	}
	if _, ok := files[filepath.Join("/cfg", "formatters.toml")]; !ok {
		t.Error("expected a formatters.toml entry")
	}
}

func TestDefaultConfigFiles_CoversEveryBuiltinLanguage(t *testing.T) {
	files := defaultConfigFiles("/cfg", "/cfg/filetype.d")
	want := []string{"go.toml", "python.toml", "javascript.toml", "typescript.toml", "rust.toml", "lua.toml", "nix.toml", "shell.toml"}
	for _, name := range want {
		path := filepath.Join("/cfg/filetype.d", name)
		if content, ok := files[path]; !ok || content == "" {
			t.Errorf("missing or empty default content for %s", path)
		}
	}
}
