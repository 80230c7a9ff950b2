package goplugin

import "testing"

func TestParseImports_BlockAndSingle(t *testing.T) {
	source := `package main

import (
	"fmt"
	alias "example.com/pkg"
)

import "os"
`
	got := (importSupport{}).ParseImports(source)
	want := map[string]bool{"fmt": true, "example.com/pkg": true, "os": true}
	if len(got) != 3 {
		t.Fatalf("got %v", got)
	}
	for _, s := range got {
		if !want[s] {
			t.Errorf("unexpected import %q", s)
		}
	}
}

func TestRewriteImportsForRename_IsWholeWord(t *testing.T) {
	got, n := (importSupport{}).RewriteImportsForRename(`"example.com/oldpkg"`, "oldpkg", "newpkg")
	if n != 1 || got != `"example.com/newpkg"` {
		t.Errorf("got %q (%d)", got, n)
	}
}

func TestRewriteImportsForMove_RewritesQuotedPath(t *testing.T) {
	got, n := (importSupport{}).RewriteImportsForMove(`"example.com/old/pkg"`, "example.com/old/pkg", "example.com/new/pkg")
	if n != 1 || got != `"example.com/new/pkg"` {
		t.Errorf("got %q (%d)", got, n)
	}
}

func TestAddImport_SkipsExisting(t *testing.T) {
	source := "import (\n\t\"fmt\"\n)\n"
	got := (importSupport{}).AddImport(source, "fmt")
	if got != source {
		t.Errorf("expected no-op for an already-present import, got %q", got)
	}
}

func TestAddImport_InsertsIntoBlock(t *testing.T) {
	source := "import (\n\t\"fmt\"\n)\n"
	got := (importSupport{}).AddImport(source, "os")
	want := "import (\n\t\"os\"\n\t\"fmt\"\n)\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRemoveImport_DropsMatchingLine(t *testing.T) {
	source := "import (\n\t\"fmt\"\n\t\"os\"\n)\n"
	got := (importSupport{}).RemoveImport(source, "os")
	want := "import (\n\t\"fmt\"\n)\n"
	if got != want {
		t.Errorf("got %q", got)
	}
}

func TestWorkspaceSupport_MemberLifecycle(t *testing.T) {
	content := "go 1.25\n\nuse ./a\nuse ./b\n"
	w := workspaceSupport{}
	if !w.IsWorkspaceManifest(content) {
		t.Fatal("expected a go.work content to be recognized")
	}

	members := w.ListWorkspaceMembers(content)
	if len(members) != 2 {
		t.Fatalf("got %v", members)
	}

	added := w.AddMember(content, "./c")
	found := false
	for _, m := range w.ListWorkspaceMembers(added) {
		if m == "./c" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected ./c to be added, got %v", w.ListWorkspaceMembers(added))
	}

	removed := w.RemoveMember(added, "./a")
	for _, m := range w.ListWorkspaceMembers(removed) {
		if m == "./a" {
			t.Errorf("expected ./a to be removed, got %v", w.ListWorkspaceMembers(removed))
		}
	}
}

func TestUpdatePackageName_RewritesModuleLine(t *testing.T) {
	content := "module example.com/old\n\ngo 1.25\n"
	got := (workspaceSupport{}).UpdatePackageName(content, "example.com/new")
	want := "module example.com/new\n\ngo 1.25\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
