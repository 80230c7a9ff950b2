package filematch

import "testing"

func TestMatchByExtension(t *testing.T) {
	s := NewMatcherSet()
	if err := s.Add("go", []string{"go"}, nil, nil); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add("typescript", []string{".ts", ".tsx"}, nil, nil); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if got := s.MatchByExtension("go"); got != "go" {
		t.Errorf("MatchByExtension(go) = %q, want go", got)
	}
	if got := s.MatchByExtension(".TSX"); got != "typescript" {
		t.Errorf("MatchByExtension(.TSX) = %q, want typescript", got)
	}
	if got := s.MatchByExtension("py"); got != "" {
		t.Errorf("MatchByExtension(py) = %q, want empty", got)
	}
}

func TestMatchPriorityLanguageIDBeforeExtension(t *testing.T) {
	s := NewMatcherSet()
	if err := s.Add("go", []string{"go"}, nil, nil); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add("gotmpl", nil, nil, []string{"gotemplate"}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if got := s.Match("/tmp/x.go", "go", "gotemplate"); got != "gotmpl" {
		t.Errorf("Match with language ID override = %q, want gotmpl", got)
	}
	if got := s.Match("/tmp/x.go", "go", ""); got != "go" {
		t.Errorf("Match by extension fallback = %q, want go", got)
	}
}

func TestMatchByPattern(t *testing.T) {
	s := NewMatcherSet()
	if err := s.Add("buildfiles", nil, []string{"**/BUILD.bazel", "**/*.bzl"}, nil); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if got := s.Match("/repo/pkg/BUILD.bazel", "", ""); got != "buildfiles" {
		t.Errorf("Match(BUILD.bazel) = %q, want buildfiles", got)
	}
	if got := s.Match("/repo/pkg/rules.bzl", "", ""); got != "buildfiles" {
		t.Errorf("Match(rules.bzl) = %q, want buildfiles", got)
	}
	if got := s.Match("/repo/pkg/main.go", "", ""); got != "" {
		t.Errorf("Match(main.go) = %q, want empty", got)
	}
}

func TestAddInvalidPattern(t *testing.T) {
	s := NewMatcherSet()
	if err := s.Add("bad", nil, []string{"["}, nil); err == nil {
		t.Error("expected error for invalid glob pattern")
	}
}

func TestRegistrationOrderBreaksTies(t *testing.T) {
	s := NewMatcherSet()
	if err := s.Add("first", []string{"go"}, nil, nil); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add("second", []string{"go"}, nil, nil); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if got := s.MatchByExtension("go"); got != "first" {
		t.Errorf("MatchByExtension(go) = %q, want first (registration order)", got)
	}
}
