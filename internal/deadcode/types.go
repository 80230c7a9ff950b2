package deadcode

import "github.com/amarbel-llc/mill/internal/lsp"

// Symbol is one workspace/symbol result, identified the way the analyzer's
// reference attribution and report ordering both rely on: file, name, and
// starting line.
type Symbol struct {
	ID        string
	URI       lsp.DocumentURI
	Line      int
	Character int
	Kind      SymbolKind
	IsPublic  bool
	Name      string
}

func symbolID(uri lsp.DocumentURI, name string, line int) string {
	return string(uri.Path()) + "::" + name + "@L" + itoa(line)
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

// Finding is one reported-dead symbol.
type Finding struct {
	Symbol         Symbol
	ReferenceCount int
}

// Report is the analyzer's output.
type Report struct {
	Findings       []Finding
	SymbolsScanned int
	Truncated      bool
}
