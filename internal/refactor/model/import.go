package model

import "github.com/amarbel-llc/mill/internal/lsp"

type ImportKind string

const (
	ImportNamed      ImportKind = "named"
	ImportDefault    ImportKind = "default"
	ImportNamespace  ImportKind = "namespace"
	ImportWildcard   ImportKind = "wildcard"
	ImportSideEffect ImportKind = "side_effect"
	ImportCInclude   ImportKind = "c_include"
)

type NamedImportItem struct {
	Name     string
	Alias    string
	TypeOnly bool
}

// Import is produced by a plugin's import parser.
type Import struct {
	ModulePath     string
	Kind           ImportKind
	NamedItems     []NamedImportItem
	NamespaceAlias string
	TypeOnly       bool
	SourceRange    lsp.Range
}

type DepSourceKind string

const (
	DepRegistry  DepSourceKind = "registry"
	DepPath      DepSourceKind = "path"
	DepGit       DepSourceKind = "git"
	DepWorkspace DepSourceKind = "workspace"
)

type DepSource struct {
	Kind    DepSourceKind
	Version string // Registry
	Path    string // Path
	URL     string // Git
	Rev     string // Git
}

type Dep struct {
	Name   string
	Source DepSource
}

// ManifestData is produced by a plugin's manifest analyzer. Workspace
// manifests additionally populate Members/IsWorkspace.
type ManifestData struct {
	Name            string
	Version         string
	Dependencies    []Dep
	DevDependencies []Dep
	Raw             string

	Members     []string
	IsWorkspace bool
}
