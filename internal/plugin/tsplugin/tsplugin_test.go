package tsplugin

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseImports_AllFourSyntaxes(t *testing.T) {
	source := `
import foo from 'from-pkg';
const bar = require("require-pkg");
import('dynamic-pkg');
import 'bare-pkg';
`
	got := (importSupport{}).ParseImports(source)
	want := map[string]bool{"from-pkg": true, "require-pkg": true, "dynamic-pkg": true, "bare-pkg": true}
	if len(got) != len(want) {
		t.Fatalf("got %v, want 4 entries matching %v", got, want)
	}
	for _, s := range got {
		if !want[s] {
			t.Errorf("unexpected specifier %q", s)
		}
	}
}

func TestRewriteImportsForMove_RewritesBothQuoteStyles(t *testing.T) {
	source := `import a from './old/mod';
const b = require("./old/mod");
`
	got, n := (importSupport{}).RewriteImportsForMove(source, "./old/mod", "./new/mod")
	if n != 2 {
		t.Fatalf("got %d replacements, want 2", n)
	}
	if got != `import a from './new/mod';
const b = require("./new/mod");
` {
		t.Errorf("got %q", got)
	}
}

func TestRewriteImportsForRename_IsWholeWord(t *testing.T) {
	got, n := (importSupport{}).RewriteImportsForRename("oldName.thing", "oldName", "newName")
	if n != 1 || got != "newName.thing" {
		t.Errorf("got %q (%d replacements)", got, n)
	}
	// must not touch a substring-only match
	got2, n2 := (importSupport{}).RewriteImportsForRename("oldNameSuffix", "oldName", "newName")
	if n2 != 0 || got2 != "oldNameSuffix" {
		t.Errorf("whole-word match incorrectly fired: got %q (%d)", got2, n2)
	}
}

func TestAddImport_SkipsExisting(t *testing.T) {
	source := "import 'pkg';\nconsole.log(1);\n"
	got := (importSupport{}).AddImport(source, "pkg")
	if got != source {
		t.Errorf("AddImport should be a no-op for an already-present module, got %q", got)
	}
}

func TestAddImport_PrependsNew(t *testing.T) {
	got := (importSupport{}).AddImport("console.log(1);\n", "pkg")
	if got != "import 'pkg';\nconsole.log(1);\n" {
		t.Errorf("got %q", got)
	}
}

func TestRemoveImport_DropsMatchingImportLine(t *testing.T) {
	source := "import 'pkg';\nimport 'keep';\nconsole.log(1);\n"
	got := (importSupport{}).RemoveImport(source, "pkg")
	if got != "import 'keep';\nconsole.log(1);\n" {
		t.Errorf("got %q", got)
	}
}

func TestIsPotentialAlias(t *testing.T) {
	cases := map[string]bool{
		"@scope/pkg": true,
		"~/utils":    true,
		"$lib/thing": true,
		"./relative": false,
		"plain-pkg":  false,
	}
	for specifier, want := range cases {
		if got := (aliasResolver{}).IsPotentialAlias(specifier); got != want {
			t.Errorf("IsPotentialAlias(%q) = %v, want %v", specifier, got, want)
		}
	}
}

func TestResolveAlias_ExactAndWildcardPatterns(t *testing.T) {
	dir := t.TempDir()
	tsconfigJSON := `{
		// a comment tsconfig parsing must tolerate
		"compilerOptions": {
			"baseUrl": ".",
			"paths": {
				"@app/*": ["src/app/*"],
				"@config": ["src/config/index.ts"]
			}
		}
	}`
	if err := os.WriteFile(filepath.Join(dir, "tsconfig.json"), []byte(tsconfigJSON), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	importingFile := filepath.Join(dir, "src", "feature", "x.ts")

	resolved, ok := (aliasResolver{}).ResolveAlias("@app/widgets/button", importingFile, dir)
	if !ok {
		t.Fatal("expected the wildcard alias to resolve")
	}
	if want := filepath.Join(dir, "src", "app", "widgets", "button"); resolved != want {
		t.Errorf("got %q, want %q", resolved, want)
	}

	resolved, ok = (aliasResolver{}).ResolveAlias("@config", importingFile, dir)
	if !ok {
		t.Fatal("expected the exact alias to resolve")
	}
	if want := filepath.Join(dir, "src", "config", "index.ts"); resolved != want {
		t.Errorf("got %q, want %q", resolved, want)
	}
}

func TestResolveAlias_NoTSConfigFound(t *testing.T) {
	dir := t.TempDir()
	_, ok := (aliasResolver{}).ResolveAlias("@app/x", filepath.Join(dir, "a.ts"), dir)
	if ok {
		t.Error("expected no resolution without a tsconfig.json")
	}
}

func TestWorkspaceSupport_MemberLifecycle(t *testing.T) {
	content := `{
  "name": "root",
  "workspaces": ["packages/a", "packages/b"]
}`
	w := workspaceSupport{}
	if !w.IsWorkspaceManifest(content) {
		t.Fatal("expected a workspaces field to be recognized as a manifest")
	}

	members := w.ListWorkspaceMembers(content)
	if len(members) != 2 {
		t.Fatalf("got %v", members)
	}

	added := w.AddMember(content, "packages/c")
	if !contains(w.ListWorkspaceMembers(added), "packages/c") {
		t.Errorf("expected packages/c to be added, got %v", w.ListWorkspaceMembers(added))
	}

	removed := w.RemoveMember(added, "packages/a")
	if contains(w.ListWorkspaceMembers(removed), "packages/a") {
		t.Errorf("expected packages/a to be removed, got %v", w.ListWorkspaceMembers(removed))
	}

	renamed := w.UpdatePackageName(content, "newroot")
	if !strings.Contains(renamed, `"name": "newroot"`) {
		t.Errorf("got %q", renamed)
	}
}

func contains(items []string, target string) bool {
	for _, i := range items {
		if i == target {
			return true
		}
	}
	return false
}
