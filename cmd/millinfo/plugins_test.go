package main

import "testing"

func TestNewInspectionRegistry_RegistersAllEightPlugins(t *testing.T) {
	registry := newInspectionRegistry()
	all := registry.All()
	if len(all) != 8 {
		t.Fatalf("got %d plugins, want 8", len(all))
	}

	seen := make(map[string]bool)
	for _, p := range all {
		seen[p.Metadata().Name] = true
	}
	for _, name := range []string{"Go", "TypeScript", "Python", "Rust", "Java", "C", "C#", "Swift"} {
		if !seen[name] {
			t.Errorf("missing plugin %q", name)
		}
	}
}

func TestNewInspectionRegistry_GoExtensionResolves(t *testing.T) {
	registry := newInspectionRegistry()
	p, err := registry.ForExtension("go")
	if err != nil {
		t.Fatalf("ForExtension(go): %v", err)
	}
	if p.Metadata().Name != "Go" {
		t.Errorf("got plugin %q for .go", p.Metadata().Name)
	}
}
