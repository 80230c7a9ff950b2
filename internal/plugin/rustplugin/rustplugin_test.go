package rustplugin

import "testing"

func TestParseImports_UseAndMod(t *testing.T) {
	source := `
use std::collections::HashMap;
use my_crate::widgets::{Button, Label};
mod helpers;
`
	got := (importSupport{}).ParseImports(source)
	want := map[string]bool{"std::collections::HashMap": true, "my_crate::widgets": true, "helpers": true}
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
	got, n := (importSupport{}).RewriteImportsForRename("use old_name::Thing;", "old_name", "new_name")
	if n != 1 || got != "use new_name::Thing;" {
		t.Errorf("got %q (%d)", got, n)
	}
}

func TestRewriteImportsForMove_ConvertsSlashesToColonColon(t *testing.T) {
	source := "use old::sub::Thing;\n"
	got, n := (importSupport{}).RewriteImportsForMove(source, "old/sub", "new/sub")
	if n != 1 {
		t.Fatalf("got %d replacements", n)
	}
	if got != "use new::sub::Thing;\n" {
		t.Errorf("got %q", got)
	}
}

func TestAddImport_SkipsExisting(t *testing.T) {
	source := "use my_crate::Thing;\nfn main() {}\n"
	got := (importSupport{}).AddImport(source, "my_crate::Thing")
	if got != source {
		t.Errorf("expected no-op for an already-present import, got %q", got)
	}
}

func TestRemoveImport_DropsUseAndModLines(t *testing.T) {
	source := "use drop_me::Thing;\nmod keep;\nfn main() {}\n"
	got := (importSupport{}).RemoveImport(source, "drop_me::Thing")
	if got != "mod keep;\nfn main() {}\n" {
		t.Errorf("got %q", got)
	}
}

func TestIsWorkspaceManifest_RequiresWorkspaceSectionWithoutPackage(t *testing.T) {
	ws := workspaceSupport{}
	if !ws.IsWorkspaceManifest(`[workspace]
members = ["crates/a"]
`) {
		t.Error("expected a bare [workspace] manifest to be recognized")
	}
	if ws.IsWorkspaceManifest(`[package]
name = "a"

[workspace]
members = ["crates/a"]
`) {
		t.Error("a manifest with [package] is not a pure workspace manifest")
	}
}

func TestWorkspaceMemberLifecycle(t *testing.T) {
	content := `[workspace]
members = ["crates/a", "crates/b"]
`
	ws := workspaceSupport{}
	members := ws.ListWorkspaceMembers(content)
	if len(members) != 2 {
		t.Fatalf("got %v", members)
	}

	added := ws.AddMember(content, "crates/c")
	if !contains(ws.ListWorkspaceMembers(added), "crates/c") {
		t.Errorf("expected crates/c to be added, got %v", ws.ListWorkspaceMembers(added))
	}

	removed := ws.RemoveMember(added, "crates/a")
	if contains(ws.ListWorkspaceMembers(removed), "crates/a") {
		t.Errorf("expected crates/a to be removed, got %v", ws.ListWorkspaceMembers(removed))
	}
}

func TestExtractPackageNameAndCrateName(t *testing.T) {
	content := `[package]
name = "my-crate"
version = "0.1.0"
`
	name, found := ExtractPackageName(content)
	if !found || name != "my-crate" {
		t.Fatalf("got %q, %v", name, found)
	}
	if CrateName(name) != "my_crate" {
		t.Errorf("got %q", CrateName(name))
	}
}

func TestUpdatePackageName(t *testing.T) {
	content := `[package]
name = "old-name"
version = "0.1.0"
`
	got := (workspaceSupport{}).UpdatePackageName(content, "new-name")
	want := `[package]
name = "new-name"
version = "0.1.0"
`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
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
