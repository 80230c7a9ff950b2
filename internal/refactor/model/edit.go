package model

import (
	"sort"

	"github.com/amarbel-llc/mill/internal/lsp"
)

type EditType string

const (
	EditInsert       EditType = "Insert"
	EditReplace      EditType = "Replace"
	EditDelete       EditType = "Delete"
	EditUpdateImport EditType = "UpdateImport"
)

// Priority constants: manifest edits apply first within a file, then
// import updates, then bare path references.
const (
	PriorityManifest      uint32 = 10
	PriorityImportUpdate  uint32 = 1
	PriorityPathReference uint32 = 0
)

// TextEdit describes one edit to one file. Priority breaks ordering ties;
// higher-priority edits apply first within a file.
type TextEdit struct {
	FilePath     string
	EditType     EditType
	Range        lsp.Range
	OriginalText string
	NewText      string
	Priority     uint32
	Description  string
}

// FullFileReplace builds the canonical "replace the whole file" edit used
// by the reference updater: start = (0,0), end = (lineCount-1, lastLineLen).
func FullFileReplace(path, original, newText string, priority uint32, editType EditType, description string) TextEdit {
	lines := splitLines(original)
	lastLine := 0
	lastCol := 0
	if n := len(lines); n > 0 {
		lastLine = n - 1
		lastCol = len(lines[lastLine])
	}
	return TextEdit{
		FilePath:     path,
		EditType:     editType,
		Range:        lsp.Range{Start: lsp.Position{Line: 0, Character: 0}, End: lsp.Position{Line: lastLine, Character: lastCol}},
		OriginalText: original,
		NewText:      newText,
		Priority:     priority,
		Description:  description,
	}
}

func splitLines(s string) []string {
	if s == "" {
		return []string{""}
	}
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}

// EditPlan is an ordered list of TextEdits for a single file plus
// metadata. SortForApply orders by descending start offset (then
// descending priority) so earlier edits don't shift later ones, and
// higher-priority edits at the same position win.
type EditPlan struct {
	Language string
	Kind     string
	Edits    []TextEdit
}

func (p *EditPlan) SortForApply() {
	sort.SliceStable(p.Edits, func(i, j int) bool {
		a, b := p.Edits[i], p.Edits[j]
		if a.Range.Start.Line != b.Range.Start.Line {
			return a.Range.Start.Line > b.Range.Start.Line
		}
		if a.Range.Start.Character != b.Range.Start.Character {
			return a.Range.Start.Character > b.Range.Start.Character
		}
		return a.Priority > b.Priority
	})
}

// Overlaps reports whether two edits in the same file overlap.
func Overlaps(a, b lsp.Range) bool {
	aStart, aEnd := posKey(a.Start), posKey(a.End)
	bStart, bEnd := posKey(b.Start), posKey(b.End)
	return aStart < bEnd && bStart < aEnd
}

func posKey(p lsp.Position) int64 {
	return int64(p.Line)<<32 | int64(p.Character)
}
