package swiftplugin

import "testing"

func TestParseImports(t *testing.T) {
	source := `
import Foundation
import UIKit
`
	got := (importSupport{}).ParseImports(source)
	want := map[string]bool{"Foundation": true, "UIKit": true}
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
	got, n := (importSupport{}).RewriteImportsForRename("import OldModule", "OldModule", "NewModule")
	if n != 1 || got != "import NewModule" {
		t.Errorf("got %q (%d)", got, n)
	}
	// must not touch a substring-only match
	got2, n2 := (importSupport{}).RewriteImportsForRename("import OldModuleExtra", "OldModule", "NewModule")
	if n2 != 0 || got2 != "import OldModuleExtra" {
		t.Errorf("whole-word match incorrectly fired: got %q (%d)", got2, n2)
	}
}

func TestAddImport_SkipsExisting(t *testing.T) {
	source := "import Thing\nfunc main() {}\n"
	got := (importSupport{}).AddImport(source, "Thing")
	if got != source {
		t.Errorf("expected no-op, got %q", got)
	}
}

func TestRemoveImport_DropsMatchingImportLine(t *testing.T) {
	source := "import Drop\nimport Keep\n"
	got := (importSupport{}).RemoveImport(source, "Drop")
	if got != "import Keep\n" {
		t.Errorf("got %q", got)
	}
}
