package cplugin

import "testing"

func TestParseImports_QuotedAndAngleBracket(t *testing.T) {
	source := `
#include "local.h"
#include <vector>
`
	got := (importSupport{}).ParseImports(source)
	want := map[string]bool{"local.h": true, "vector": true}
	if len(got) != 2 {
		t.Fatalf("got %v", got)
	}
	for _, s := range got {
		if !want[s] {
			t.Errorf("unexpected include %q", s)
		}
	}
}

func TestRewriteImportsForMove_RewritesBothDelimiterStyles(t *testing.T) {
	source := "#include \"old/path.h\"\n#include <old/path.h>\n"
	got, n := (importSupport{}).RewriteImportsForMove(source, "old/path.h", "new/path.h")
	if n != 2 {
		t.Fatalf("got %d replacements, want 2", n)
	}
	want := "#include \"new/path.h\"\n#include <new/path.h>\n"
	if got != want {
		t.Errorf("got %q", got)
	}
}

func TestAddImport_SkipsExisting(t *testing.T) {
	source := "#include \"thing.h\"\nint main() {}\n"
	got := (importSupport{}).AddImport(source, "thing.h")
	if got != source {
		t.Errorf("expected no-op, got %q", got)
	}
}

func TestRemoveImport_DropsQuotedOrAngleBracketLine(t *testing.T) {
	source := "#include \"drop.h\"\n#include <keep.h>\n"
	got := (importSupport{}).RemoveImport(source, "drop.h")
	if got != "#include <keep.h>\n" {
		t.Errorf("got %q", got)
	}
}
