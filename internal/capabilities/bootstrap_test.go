package capabilities

import "testing"

func TestInferName(t *testing.T) {
	cases := map[string]string{
		"github:foo/bar#gopls":          "gopls",
		"github:foo/rust-analyzer.git":  "rust-analyzer",
		"/local/flake/path":             "path",
		"noSeparatorsAtAll":              "noSeparatorsAtAll",
	}
	for flake, want := range cases {
		if got := inferName(flake); got != want {
			t.Errorf("inferName(%q) = %q, want %q", flake, got, want)
		}
	}
}
