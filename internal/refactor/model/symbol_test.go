package model

import "testing"

func TestSymbol_ID(t *testing.T) {
	cases := []struct {
		sym  Symbol
		want string
	}{
		{Symbol{FilePath: "a.go", Name: "Foo", StartLine: 12}, "a.go::Foo@L12"},
		{Symbol{FilePath: "a.go", Name: "Foo", StartLine: 0}, "a.go::Foo@L0"},
		{Symbol{FilePath: "a.go", Name: "Foo", StartLine: -1}, "a.go::Foo@L-1"},
	}
	for _, c := range cases {
		if got := c.sym.ID(); got != c.want {
			t.Errorf("got %q, want %q", got, c.want)
		}
	}
}
