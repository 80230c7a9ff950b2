package model

import "github.com/amarbel-llc/mill/internal/lsp"

type PlanType string

const (
	PlanTypeRename   PlanType = "RenamePlan"
	PlanTypeMove     PlanType = "MovePlan"
	PlanTypeDelete   PlanType = "DeletePlan"
	PlanTypeExtract  PlanType = "ExtractPlan"
	PlanTypeInline   PlanType = "InlinePlan"
	PlanTypeReorder  PlanType = "ReorderPlan"
	PlanTypeTransform PlanType = "TransformPlan"
)

type Impact string

const (
	ImpactLow    Impact = "low"
	ImpactMedium Impact = "medium"
	ImpactHigh   Impact = "high"
)

const PlanVersion = "1.0"

type PlanMetadata struct {
	PlanVersion     string `json:"plan_version"`
	Kind            string `json:"kind"`
	Language        string `json:"language"`
	EstimatedImpact Impact `json:"estimated_impact"`
	CreatedAt       string `json:"created_at"`
}

type PlanSummary struct {
	AffectedFiles int `json:"affected"`
	CreatedFiles  int `json:"created"`
	DeletedFiles  int `json:"deleted"`
}

func EstimateImpact(affected int) Impact {
	switch {
	case affected <= 3:
		return ImpactLow
	case affected <= 10:
		return ImpactMedium
	default:
		return ImpactHigh
	}
}

type PlanWarning struct {
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	Candidates []string `json:"candidates,omitempty"`
}

// ResourceOpKind distinguishes the three document_changes resource ops.
type ResourceOpKind string

const (
	ResourceCreate ResourceOpKind = "create"
	ResourceRename ResourceOpKind = "rename"
	ResourceDelete ResourceOpKind = "delete"
)

// DocumentChange is either a text edit to one document or a resource
// operation (create/rename/delete), matching the "Op" union in
// WorkspaceEdit.document_changes.
type DocumentChange struct {
	// Edit form.
	URI     lsp.DocumentURI
	Edits   []lsp.TextEdit
	IsEdit  bool

	// ResourceOp form.
	ResourceOp ResourceOpKind
	OldURI     lsp.DocumentURI
	NewURI     lsp.DocumentURI
}

// WorkspaceEdit mirrors the LSP WorkspaceEdit shape: either Changes (a flat
// map) or DocumentChanges (an ordered sequence that can interleave edits
// with resource operations). DocumentChanges is canonical whenever any
// resource operation appears.
type WorkspaceEdit struct {
	Changes         map[lsp.DocumentURI][]lsp.TextEdit
	DocumentChanges []DocumentChange
}

func (w *WorkspaceEdit) HasResourceOps() bool {
	for _, c := range w.DocumentChanges {
		if !c.IsEdit {
			return true
		}
	}
	return false
}

// Files returns every URI mentioned anywhere in the edit, de-duplicated.
func (w *WorkspaceEdit) Files() []lsp.DocumentURI {
	seen := make(map[lsp.DocumentURI]bool)
	var out []lsp.DocumentURI
	add := func(u lsp.DocumentURI) {
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		out = append(out, u)
	}
	for uri := range w.Changes {
		add(uri)
	}
	for _, c := range w.DocumentChanges {
		if c.IsEdit {
			add(c.URI)
		} else {
			add(c.OldURI)
			add(c.NewURI)
		}
	}
	return out
}

type DeletionTargetKind string

const (
	DeletionFile DeletionTargetKind = "file"
	DeletionDir  DeletionTargetKind = "dir"
)

type DeletionTarget struct {
	Path string
	Kind DeletionTargetKind
}

// Plan is the tagged union of all refactor operations. DeletePlan populates
// Deletions instead of Edits.
type Plan struct {
	Type           PlanType
	Edits          WorkspaceEdit
	Deletions      []DeletionTarget
	Summary        PlanSummary
	Warnings       []PlanWarning
	Metadata       PlanMetadata
	FileChecksums  map[string]string // path -> sha256
}

// Complexity mirrors the original's "sum of affected/created/deleted,
// clamped" heuristic used for display purposes.
func (p *Plan) Complexity() int {
	total := p.Summary.AffectedFiles + p.Summary.CreatedFiles + p.Summary.DeletedFiles
	if total > 255 {
		return 255
	}
	return total
}

func (p *Plan) ImpactAreas() []string {
	return []string{p.Metadata.Kind, p.Metadata.Language}
}
