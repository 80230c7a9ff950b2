package javaplugin

import "testing"

func TestParseImports_PlainAndStatic(t *testing.T) {
	source := `
import com.example.Thing;
import static com.example.Utils.helper;
`
	got := (importSupport{}).ParseImports(source)
	want := map[string]bool{"com.example.Thing": true, "com.example.Utils.helper": true}
	if len(got) != 2 {
		t.Fatalf("got %v", got)
	}
	for _, s := range got {
		if !want[s] {
			t.Errorf("unexpected import %q", s)
		}
	}
}

func TestRewriteImportsForRename_IsWholeWord(t *testing.T) {
	got, n := (importSupport{}).RewriteImportsForRename("import com.example.OldThing;", "OldThing", "NewThing")
	if n != 1 || got != "import com.example.NewThing;" {
		t.Errorf("got %q (%d)", got, n)
	}
}

func TestRewriteImportsForMove_ConvertsSlashesToDots(t *testing.T) {
	got, n := (importSupport{}).RewriteImportsForMove("import old.sub.Thing;", "old/sub", "new/sub")
	if n != 1 || got != "import new.sub.Thing;" {
		t.Errorf("got %q (%d)", got, n)
	}
}

func TestAddImport_SkipsExisting(t *testing.T) {
	source := "import com.example.Thing;\nclass X {}\n"
	got := (importSupport{}).AddImport(source, "com.example.Thing")
	if got != source {
		t.Errorf("expected no-op, got %q", got)
	}
}

func TestRemoveImport_DropsPlainAndStaticForms(t *testing.T) {
	source := "import drop.Me;\nimport static drop.Me;\nimport keep.It;\n"
	got := (importSupport{}).RemoveImport(source, "drop.Me")
	if got != "import keep.It;\n" {
		t.Errorf("got %q", got)
	}
}
