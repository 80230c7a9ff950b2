package pyplugin

import "testing"

func TestParseImports_FromAndPlain(t *testing.T) {
	source := `
from pkg.sub import thing
import os, sys
`
	got := (importSupport{}).ParseImports(source)
	want := map[string]bool{"pkg.sub": true, "os": true, "sys": true}
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
	got, n := (importSupport{}).RewriteImportsForRename("import old_mod", "old_mod", "new_mod")
	if n != 1 || got != "import new_mod" {
		t.Errorf("got %q (%d)", got, n)
	}
}

func TestRewriteImportsForMove_ConvertsSlashesToDots(t *testing.T) {
	got, n := (importSupport{}).RewriteImportsForMove("from old.sub import thing", "old/sub", "new/sub")
	if n != 1 || got != "from new.sub import thing" {
		t.Errorf("got %q (%d)", got, n)
	}
}

func TestAddImport_SkipsExisting(t *testing.T) {
	source := "import pkg\nx = 1\n"
	got := (importSupport{}).AddImport(source, "pkg")
	if got != source {
		t.Errorf("expected no-op, got %q", got)
	}
}

func TestRemoveImport_DropsPlainAndFromImports(t *testing.T) {
	source := "import drop_me\nfrom drop_me import thing\nimport keep\n"
	got := (importSupport{}).RemoveImport(source, "drop_me")
	if got != "import keep\n" {
		t.Errorf("got %q", got)
	}
}
