package model

import (
	"testing"

	"github.com/amarbel-llc/mill/internal/lsp"
)

func TestFullFileReplace_SpansWholeFile(t *testing.T) {
	original := "line one\nline two\nline three"
	edit := FullFileReplace("/a.go", original, "replacement", PriorityImportUpdate, EditReplace, "rewrite")

	if edit.Range.Start.Line != 0 || edit.Range.Start.Character != 0 {
		t.Errorf("got start %+v", edit.Range.Start)
	}
	if edit.Range.End.Line != 2 || edit.Range.End.Character != len("line three") {
		t.Errorf("got end %+v", edit.Range.End)
	}
}

func TestFullFileReplace_EmptyOriginal(t *testing.T) {
	edit := FullFileReplace("/a.go", "", "x", 0, EditReplace, "")
	if edit.Range.End.Line != 0 || edit.Range.End.Character != 0 {
		t.Errorf("got end %+v for empty original", edit.Range.End)
	}
}

func TestEditPlan_SortForApply_OrdersDescendingThenByPriority(t *testing.T) {
	plan := &EditPlan{Edits: []TextEdit{
		{Range: lsp.Range{Start: lsp.Position{Line: 1, Character: 0}}, Priority: 0, Description: "first"},
		{Range: lsp.Range{Start: lsp.Position{Line: 3, Character: 0}}, Priority: 0, Description: "third"},
		{Range: lsp.Range{Start: lsp.Position{Line: 3, Character: 0}}, Priority: 10, Description: "third-high-priority"},
	}}
	plan.SortForApply()

	if plan.Edits[0].Description != "third-high-priority" {
		t.Errorf("got order %v", descriptions(plan.Edits))
	}
	if plan.Edits[1].Description != "third" {
		t.Errorf("got order %v", descriptions(plan.Edits))
	}
	if plan.Edits[2].Description != "first" {
		t.Errorf("got order %v", descriptions(plan.Edits))
	}
}

func descriptions(edits []TextEdit) []string {
	out := make([]string, len(edits))
	for i, e := range edits {
		out[i] = e.Description
	}
	return out
}

func TestOverlaps(t *testing.T) {
	a := lsp.Range{Start: lsp.Position{Line: 0, Character: 0}, End: lsp.Position{Line: 0, Character: 5}}
	b := lsp.Range{Start: lsp.Position{Line: 0, Character: 3}, End: lsp.Position{Line: 0, Character: 8}}
	if !Overlaps(a, b) {
		t.Error("expected overlapping ranges to be detected")
	}

	c := lsp.Range{Start: lsp.Position{Line: 0, Character: 5}, End: lsp.Position{Line: 0, Character: 8}}
	if Overlaps(a, c) {
		t.Error("adjacent (touching) ranges should not count as overlapping")
	}
}
