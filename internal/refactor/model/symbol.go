// Package model holds the data types shared by the reference updater,
// planner, and executor: symbols, references, imports, manifests, edits,
// and the Plan tagged union.
package model

import "github.com/amarbel-llc/mill/internal/lsp"

type SymbolKind string

const (
	SymbolFunction  SymbolKind = "Function"
	SymbolStruct    SymbolKind = "Struct"
	SymbolEnum      SymbolKind = "Enum"
	SymbolTrait     SymbolKind = "Trait"
	SymbolClass     SymbolKind = "Class"
	SymbolInterface SymbolKind = "Interface"
	SymbolMethod    SymbolKind = "Method"
	SymbolModule    SymbolKind = "Module"
	SymbolTypeAlias SymbolKind = "TypeAlias"
	SymbolConstant  SymbolKind = "Constant"
)

type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityPrivate   Visibility = "private"
	VisibilityInherited Visibility = "inherited"
)

// Symbol identity is (FilePath, Name, StartLine); it is immutable once
// extracted from an analysis result.
type Symbol struct {
	FilePath   string
	Name       string
	StartLine  int
	Kind       SymbolKind
	Visibility Visibility
	Range      lsp.Range
}

// ID matches the dead-code analyzer's "path::name@Lline" encoding.
func (s Symbol) ID() string {
	return s.FilePath + "::" + s.Name + "@L" + itoa(s.StartLine)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Reference is a directed edge between symbol IDs. From is resolved by the
// "smallest enclosing symbol by starting line" heuristic when the LSP gives
// only a location.
type Reference struct {
	FromSymbolID string
	ToSymbolID   string
	Location     lsp.Location
}
