package plugin

// ImportParser parses import statements. Pure, no I/O.
type ImportParser interface {
	ParseImports(source string) []string
	ContainsImport(source, module string) bool
}

// ImportRenameSupport rewrites import constructs when a symbol is renamed.
// Rewrites every occurrence of the symbol name within import constructs
// only, never inside unrelated identifiers.
type ImportRenameSupport interface {
	RewriteImportsForRename(source, oldName, newName string) (newSource string, changes int)
}

// ImportMoveSupport rewrites import paths when a file moves. Handles the
// language's own import syntaxes (ES6 from/require/import(), Rust mod/use,
// Python import-from, C #include, C# using, ...). The Swift plugin does
// not implement it.
type ImportMoveSupport interface {
	RewriteImportsForMove(source, oldPath, newPath string) (newSource string, changes int)
}

// ImportMutationSupport adds/removes whole import statements, idempotently.
type ImportMutationSupport interface {
	AddImport(source, module string) string
	RemoveImport(source, module string) string
}

// PathAliasResolver resolves bundler/compiler path aliases. Only the
// TypeScript plugin implements it, from tsconfig "paths".
type PathAliasResolver interface {
	IsPotentialAlias(specifier string) bool
	ResolveAlias(specifier, importingFile, projectRoot string) (resolved string, ok bool)
}

// WorkspaceSupport manipulates workspace/package manifests: member lists
// and package names.
type WorkspaceSupport interface {
	IsWorkspaceManifest(content string) bool
	ListWorkspaceMembers(content string) []string
	AddMember(content, member string) string
	RemoveMember(content, member string) string
	UpdatePackageName(content, newName string) string
	// PackageName reads the manifest's own [package]/module/"name" field,
	// the counterpart read accessor to UpdatePackageName.
	PackageName(content string) (string, bool)
	// NormalizePackageName converts a filesystem name (a directory's base
	// name) into the identifier form this language's qualified-path
	// references use, e.g. Rust's kebab-case package name to its
	// snake_case crate identifier. Languages whose import references
	// already match the manifest name verbatim return it unchanged.
	NormalizePackageName(name string) string
}

// DocCommentStyle names a language's documentation-comment convention.
type DocCommentStyle string

const (
	DocCommentLine  DocCommentStyle = "line"  // "// ..." / "# ..."
	DocCommentBlock DocCommentStyle = "block" // "/** ... */"
)

// AnalysisMetadata exposes language-specific heuristics the dead-code
// analyzer and related reporting use: which symbol names count as entry
// points by convention, how tests and assertions are recognized, and
// vocabulary for classifying visibility/interfaces/complexity.
type AnalysisMetadata interface {
	// TestPatterns are name regexes that mark a symbol as test code, never
	// reported dead regardless of reachability.
	TestPatterns() []string
	// IsEntryPointName reports whether name is an entry point by
	// language convention (e.g. "main").
	IsEntryPointName(name string) bool
	// AssertionPatterns are name regexes recognized as assertion/expectation
	// helpers, used to avoid treating test-only helpers as dead.
	AssertionPatterns() []string
	// DocCommentStyle names the convention this language's doc comments follow.
	DocCommentStyle() DocCommentStyle
	// VisibilityKeywords are keywords marking a symbol exported/public.
	VisibilityKeywords() []string
	// InterfaceKeywords are keywords declaring an interface/trait/protocol.
	InterfaceKeywords() []string
	// ComplexityKeywords are keywords that add one to a naive cyclomatic
	// complexity count (if/for/while/case/catch and language equivalents).
	ComplexityKeywords() []string
	// NestingPenalty weights additional complexity per level of nesting.
	NestingPenalty() float64
}
