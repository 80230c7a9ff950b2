package executor

import (
	"sort"
	"strings"

	"github.com/amarbel-llc/mill/internal/lsp"
)

// sortDescending orders edits within one file by descending start
// position, so each replacement is made before it can be shifted by a
// later one applied further up the file.
func sortDescending(edits []lsp.TextEdit) {
	sort.SliceStable(edits, func(i, j int) bool {
		a, b := edits[i].Range.Start, edits[j].Range.Start
		if a.Line != b.Line {
			return a.Line > b.Line
		}
		return a.Character > b.Character
	})
}

// applyOneEdit replaces the text in content spanned by edit.Range with
// edit.NewText. Lines and characters are both zero-based; character
// offsets are byte offsets within the line, matching how FullFileReplace
// computes ranges.
func applyOneEdit(content string, edit lsp.TextEdit) string {
	lines := strings.Split(content, "\n")

	start := clampPosition(edit.Range.Start, lines)
	end := clampPosition(edit.Range.End, lines)

	before := linesToOffset(lines, start)
	after := linesToOffset(lines, end)

	return content[:before] + edit.NewText + content[after:]
}

func clampPosition(p lsp.Position, lines []string) lsp.Position {
	if p.Line < 0 {
		p.Line = 0
	}
	if p.Line >= len(lines) {
		p.Line = len(lines) - 1
	}
	if p.Character < 0 {
		p.Character = 0
	}
	if p.Character > len(lines[p.Line]) {
		p.Character = len(lines[p.Line])
	}
	return p
}

// linesToOffset converts a (line, character) position into a byte offset
// into the original newline-joined content.
func linesToOffset(lines []string, p lsp.Position) int {
	offset := 0
	for i := 0; i < p.Line; i++ {
		offset += len(lines[i]) + 1 // +1 for the stripped '\n'
	}
	return offset + p.Character
}
