package csharpplugin

import "testing"

func TestParseImports_PlainAndStaticUsing(t *testing.T) {
	source := `
using System.Collections.Generic;
using static System.Math;
`
	got := (importSupport{}).ParseImports(source)
	want := map[string]bool{"System.Collections.Generic": true, "System.Math": true}
	if len(got) != 2 {
		t.Fatalf("got %v", got)
	}
	for _, s := range got {
		if !want[s] {
			t.Errorf("unexpected using %q", s)
		}
	}
}

func TestRewriteImportsForRename_IsWholeWord(t *testing.T) {
	got, n := (importSupport{}).RewriteImportsForRename("using My.OldThing;", "OldThing", "NewThing")
	if n != 1 || got != "using My.NewThing;" {
		t.Errorf("got %q (%d)", got, n)
	}
}

func TestRewriteImportsForMove_ConvertsSlashesToDots(t *testing.T) {
	got, n := (importSupport{}).RewriteImportsForMove("using old.sub.Thing;", "old/sub", "new/sub")
	if n != 1 || got != "using new.sub.Thing;" {
		t.Errorf("got %q (%d)", got, n)
	}
}

func TestAddImport_SkipsExisting(t *testing.T) {
	source := "using My.Thing;\nclass X {}\n"
	got := (importSupport{}).AddImport(source, "My.Thing")
	if got != source {
		t.Errorf("expected no-op, got %q", got)
	}
}

func TestRemoveImport_DropsMatchingUsingLine(t *testing.T) {
	source := "using Drop.It;\nusing Keep.It;\n"
	got := (importSupport{}).RemoveImport(source, "Drop.It")
	if got != "using Keep.It;\n" {
		t.Errorf("got %q", got)
	}
}
