// Package rustplugin implements the Rust language plugin: use/mod import
// handling plus Cargo package/workspace manifest manipulation, grounded on
// the Cargo package-detection and manifest-rewrite conventions.
package rustplugin

import (
	"regexp"
	"strings"

	"github.com/amarbel-llc/mill/internal/plugin"
)

var (
	useRe = regexp.MustCompile(`(?m)^\s*use\s+([\w:]+)(?:::\{[^}]*\})?(?:\s+as\s+\w+)?;`)
	modRe = regexp.MustCompile(`(?m)^\s*mod\s+(\w+);`)
)

type Plugin struct {
	imports   importSupport
	workspace workspaceSupport
}

func New() *Plugin { return &Plugin{} }

func (p *Plugin) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:             "Rust",
		Extensions:       []string{"rs"},
		ManifestFilename: "Cargo.toml",
		SourceDir:        "src",
		EntryPoint:       "main.rs",
		ModuleSeparator:  "::",
	}
}

func (p *Plugin) Capabilities() plugin.Capability {
	return plugin.CapImports | plugin.CapWorkspaceSupport | plugin.CapAnalysisMetadata
}

func (p *Plugin) ImportParser() (plugin.ImportParser, bool)               { return p.imports, true }
func (p *Plugin) ImportRenameSupport() (plugin.ImportRenameSupport, bool) { return p.imports, true }
func (p *Plugin) ImportMoveSupport() (plugin.ImportMoveSupport, bool)     { return p.imports, true }
func (p *Plugin) ImportMutationSupport() (plugin.ImportMutationSupport, bool) {
	return p.imports, true
}
func (p *Plugin) PathAliasResolver() (plugin.PathAliasResolver, bool) { return nil, false }
func (p *Plugin) WorkspaceSupport() (plugin.WorkspaceSupport, bool)  { return p.workspace, true }
func (p *Plugin) AnalysisMetadata() (plugin.AnalysisMetadata, bool)  { return analysisMetadata{}, true }

type analysisMetadata struct{}

func (analysisMetadata) TestPatterns() []string {
	return []string{`^test_`, `#\[test\]`, `#\[cfg\(test\)\]`}
}

func (analysisMetadata) IsEntryPointName(name string) bool { return name == "main" }

func (analysisMetadata) AssertionPatterns() []string {
	return []string{`^assert`, `^debug_assert`}
}

func (analysisMetadata) DocCommentStyle() plugin.DocCommentStyle { return plugin.DocCommentLine }

func (analysisMetadata) VisibilityKeywords() []string { return []string{"pub", "pub(crate)"} }

func (analysisMetadata) InterfaceKeywords() []string { return []string{"trait"} }

func (analysisMetadata) ComplexityKeywords() []string {
	return []string{"if", "for", "while", "match", "&&", "||"}
}

func (analysisMetadata) NestingPenalty() float64 { return 0.5 }

type importSupport struct{}

func (importSupport) ParseImports(source string) []string {
	var out []string
	for _, m := range useRe.FindAllStringSubmatch(source, -1) {
		out = append(out, m[1])
	}
	for _, m := range modRe.FindAllStringSubmatch(source, -1) {
		out = append(out, m[1])
	}
	return out
}

func (importSupport) ContainsImport(source, module string) bool {
	for _, s := range (importSupport{}).ParseImports(source) {
		if s == module {
			return true
		}
	}
	return false
}

// RewriteImportsForRename rewrites the crate-level / qualified-path
// occurrences of old_name -> new_name within use/mod statements and
// qualified `old::x` paths, per the "qualified-path references MUST be
// rewritten" invariant.
func (importSupport) RewriteImportsForRename(source, oldName, newName string) (string, int) {
	return plugin.ReplaceWholeWord(source, oldName, newName)
}

func (importSupport) RewriteImportsForMove(source, oldPath, newPath string) (string, int) {
	oldMod := strings.ReplaceAll(strings.Trim(oldPath, "/"), "/", "::")
	newMod := strings.ReplaceAll(strings.Trim(newPath, "/"), "/", "::")
	return plugin.ReplaceSubstring(source, oldMod, newMod)
}

func (importSupport) AddImport(source, module string) string {
	if (importSupport{}).ContainsImport(source, module) {
		return source
	}
	return "use " + module + ";\n" + source
}

func (importSupport) RemoveImport(source, module string) string {
	lines := strings.Split(source, "\n")
	out := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "use "+module+";" || trimmed == "mod "+module+";" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

type workspaceSupport struct{}

var packageSectionRe = regexp.MustCompile(`\[package\]`)
var nameLineRe = regexp.MustCompile(`(?m)^name\s*=\s*["']([^"']+)["']`)
var membersRe = regexp.MustCompile(`(?s)members\s*=\s*\[(.*?)\]`)
var memberItemRe = regexp.MustCompile(`["']([^"']+)["']`)

// IsWorkspaceManifest distinguishes a Cargo workspace manifest from a
// package manifest by the absence of a [package] section, matching
// is_cargo_package's own inverse check.
func (workspaceSupport) IsWorkspaceManifest(content string) bool {
	return strings.Contains(content, "[workspace]") && !packageSectionRe.MatchString(content)
}

func (workspaceSupport) ListWorkspaceMembers(content string) []string {
	m := membersRe.FindStringSubmatch(content)
	if m == nil {
		return nil
	}
	var out []string
	for _, item := range memberItemRe.FindAllStringSubmatch(m[1], -1) {
		out = append(out, item[1])
	}
	return out
}

func (w workspaceSupport) AddMember(content, member string) string {
	for _, existing := range w.ListWorkspaceMembers(content) {
		if existing == member {
			return content
		}
	}
	return membersRe.ReplaceAllStringFunc(content, func(block string) string {
		inner := membersRe.FindStringSubmatch(block)[1]
		return "members = [" + inner + `, "` + member + `"]`
	})
}

func (w workspaceSupport) RemoveMember(content, member string) string {
	content = strings.ReplaceAll(content, `"`+member+`", `, "")
	content = strings.ReplaceAll(content, `, "`+member+`"`, "")
	content = strings.ReplaceAll(content, `"`+member+`"`, "")
	return content
}

// UpdatePackageName rewrites the [package] name field. Extracted package
// name and new crate name follow the kebab-case package / snake_case
// import-path convention: callers pass the kebab-case package name here.
func (workspaceSupport) UpdatePackageName(content, newName string) string {
	return nameLineRe.ReplaceAllString(content, `name = "`+newName+`"`)
}

// ExtractPackageName returns the [package] name field, matching
// extract_package_name's line-scan approach.
func ExtractPackageName(content string) (string, bool) {
	m := nameLineRe.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// PackageName is the WorkspaceSupport accessor counterpart to
// ExtractPackageName.
func (workspaceSupport) PackageName(content string) (string, bool) {
	return ExtractPackageName(content)
}

// CrateName converts a kebab-case package name to the snake_case identifier
// used in `use`/qualified-path references.
func CrateName(packageName string) string {
	return strings.ReplaceAll(packageName, "-", "_")
}

// NormalizePackageName applies the kebab-case package / snake_case
// crate-identifier convention.
func (workspaceSupport) NormalizePackageName(name string) string {
	return CrateName(name)
}
