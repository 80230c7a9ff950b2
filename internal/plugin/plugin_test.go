package plugin

import (
	"testing"

	"github.com/amarbel-llc/mill/internal/millerr"
)

type stubPlugin struct {
	name string
	exts []string
}

func (s stubPlugin) Metadata() Metadata { return Metadata{Name: s.name, Extensions: s.exts} }
func (s stubPlugin) Capabilities() Capability                                    { return 0 }
func (s stubPlugin) ImportParser() (ImportParser, bool)                         { return nil, false }
func (s stubPlugin) ImportRenameSupport() (ImportRenameSupport, bool)           { return nil, false }
func (s stubPlugin) ImportMoveSupport() (ImportMoveSupport, bool)               { return nil, false }
func (s stubPlugin) ImportMutationSupport() (ImportMutationSupport, bool)       { return nil, false }
func (s stubPlugin) PathAliasResolver() (PathAliasResolver, bool)               { return nil, false }
func (s stubPlugin) WorkspaceSupport() (WorkspaceSupport, bool)                 { return nil, false }
func (s stubPlugin) AnalysisMetadata() (AnalysisMetadata, bool)                 { return nil, false }

func TestCapability_Has(t *testing.T) {
	c := CapImports | CapWorkspaceSupport
	if !c.Has(CapImports) || !c.Has(CapWorkspaceSupport) {
		t.Error("expected both set bits to report Has")
	}
	if c.Has(CapPathAliases) {
		t.Error("unset bit should not report Has")
	}
}

func TestRegistry_FirstRegistrationWinsOnExtensionConflict(t *testing.T) {
	r := NewRegistry()
	first := stubPlugin{name: "first", exts: []string{"x"}}
	second := stubPlugin{name: "second", exts: []string{"x"}}
	r.Register(first)
	r.Register(second)

	p, err := r.ForExtension("x")
	if err != nil {
		t.Fatalf("ForExtension: %v", err)
	}
	if p.Metadata().Name != "first" {
		t.Errorf("got %q, want first registration to win", p.Metadata().Name)
	}
}

func TestRegistry_ForExtension_NormalizesCaseAndLeadingDot(t *testing.T) {
	r := NewRegistry()
	r.Register(stubPlugin{name: "go", exts: []string{"Go"}})

	if _, err := r.ForExtension(".go"); err != nil {
		t.Errorf("expected .go to resolve, got %v", err)
	}
	if _, err := r.ForExtension("GO"); err != nil {
		t.Errorf("expected GO to resolve, got %v", err)
	}
}

func TestRegistry_ForExtension_UnknownIsUnsupportedLanguage(t *testing.T) {
	r := NewRegistry()
	_, err := r.ForExtension("nope")
	if millerr.CodeOf(err) != millerr.UnsupportedLanguage {
		t.Fatalf("got code %v, want UnsupportedLanguage", millerr.CodeOf(err))
	}
}

func TestRegistry_AllReturnsRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(stubPlugin{name: "a", exts: []string{"a"}})
	r.Register(stubPlugin{name: "b", exts: []string{"b"}})

	all := r.All()
	if len(all) != 2 || all[0].Metadata().Name != "a" || all[1].Metadata().Name != "b" {
		t.Errorf("got %+v", all)
	}
}

func TestRegistry_Extensions_UnionsAcrossPlugins(t *testing.T) {
	r := NewRegistry()
	r.Register(stubPlugin{name: "a", exts: []string{"a", "aa"}})
	r.Register(stubPlugin{name: "b", exts: []string{"b"}})

	exts := r.Extensions()
	if len(exts) != 3 {
		t.Fatalf("got %v", exts)
	}
}

func TestReplaceWholeWord_RespectsWordBoundaries(t *testing.T) {
	got, n := ReplaceWholeWord("foo fooBar foo2", "foo", "baz")
	if n != 1 || got != "baz fooBar foo2" {
		t.Errorf("got %q (%d)", got, n)
	}
}

func TestReplaceWholeWord_EmptyOldIsNoOp(t *testing.T) {
	got, n := ReplaceWholeWord("anything", "", "x")
	if n != 0 || got != "anything" {
		t.Errorf("got %q (%d)", got, n)
	}
}

func TestReplaceSubstring_ReplacesAllLiteralOccurrences(t *testing.T) {
	got, n := ReplaceSubstring("a/b/c a/b/c", "a/b", "x/y")
	if n != 2 || got != "x/y/c x/y/c" {
		t.Errorf("got %q (%d)", got, n)
	}
}

func TestReplaceSubstring_NoMatchReturnsZero(t *testing.T) {
	got, n := ReplaceSubstring("nothing here", "missing", "x")
	if n != 0 || got != "nothing here" {
		t.Errorf("got %q (%d)", got, n)
	}
}
