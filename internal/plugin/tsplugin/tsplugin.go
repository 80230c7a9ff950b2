// Package tsplugin implements the TypeScript/JavaScript language plugin:
// the four import syntaxes (ES6 from, bare ES6 import, CommonJS require,
// dynamic import),
// plus tsconfig.json-based path alias resolution.
package tsplugin

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/amarbel-llc/mill/internal/plugin"
)

var (
	fromImportRe  = regexp.MustCompile(`from\s+['"]([^'"]+)['"]`)
	requireRe     = regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`)
	dynamicImport = regexp.MustCompile(`import\(\s*['"]([^'"]+)['"]\s*\)`)
	bareImportRe  = regexp.MustCompile(`import\s+['"]([^'"]+)['"]`)
)

type Plugin struct {
	imports  importSupport
	resolver aliasResolver
}

func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:             "TypeScript",
		Extensions:       []string{"ts", "tsx", "js", "jsx", "mjs", "cjs"},
		ManifestFilename: "package.json",
		SourceDir:        "src",
		EntryPoint:       "index.ts",
		ModuleSeparator:  "/",
	}
}

func (p *Plugin) Capabilities() plugin.Capability {
	return plugin.CapImports | plugin.CapPathAliases | plugin.CapWorkspaceSupport | plugin.CapAnalysisMetadata
}

func (p *Plugin) ImportParser() (plugin.ImportParser, bool)               { return p.imports, true }
func (p *Plugin) ImportRenameSupport() (plugin.ImportRenameSupport, bool) { return p.imports, true }
func (p *Plugin) ImportMoveSupport() (plugin.ImportMoveSupport, bool)     { return p.imports, true }
func (p *Plugin) ImportMutationSupport() (plugin.ImportMutationSupport, bool) {
	return p.imports, true
}
func (p *Plugin) PathAliasResolver() (plugin.PathAliasResolver, bool) { return p.resolver, true }
func (p *Plugin) WorkspaceSupport() (plugin.WorkspaceSupport, bool)  { return workspaceSupport{}, true }
func (p *Plugin) AnalysisMetadata() (plugin.AnalysisMetadata, bool)  { return analysisMetadata{}, true }

type analysisMetadata struct{}

func (analysisMetadata) TestPatterns() []string {
	return []string{`^test`, `\.test$`, `\.spec$`, `^it$`, `^describe$`}
}

func (analysisMetadata) IsEntryPointName(name string) bool {
	return name == "main" || name == "default"
}

func (analysisMetadata) AssertionPatterns() []string {
	return []string{`^expect`, `^assert`}
}

func (analysisMetadata) DocCommentStyle() plugin.DocCommentStyle { return plugin.DocCommentBlock }

func (analysisMetadata) VisibilityKeywords() []string { return []string{"export"} }

func (analysisMetadata) InterfaceKeywords() []string { return []string{"interface", "type"} }

func (analysisMetadata) ComplexityKeywords() []string {
	return []string{"if", "for", "while", "case", "&&", "||", "catch"}
}

func (analysisMetadata) NestingPenalty() float64 { return 0.5 }

type importSupport struct{}

func allSpecifiers(source string) []string {
	var out []string
	for _, re := range []*regexp.Regexp{fromImportRe, requireRe, dynamicImport, bareImportRe} {
		for _, m := range re.FindAllStringSubmatch(source, -1) {
			out = append(out, m[1])
		}
	}
	return out
}

func (importSupport) ParseImports(source string) []string {
	return allSpecifiers(source)
}

func (importSupport) ContainsImport(source, module string) bool {
	for _, s := range allSpecifiers(source) {
		if s == module {
			return true
		}
	}
	return false
}

func (importSupport) RewriteImportsForRename(source, oldName, newName string) (string, int) {
	return plugin.ReplaceWholeWord(source, oldName, newName)
}

func (importSupport) RewriteImportsForMove(source, oldPath, newPath string) (string, int) {
	total := 0
	for _, quote := range []string{"'", "\""} {
		s, n := plugin.ReplaceSubstring(source, quote+oldPath+quote, quote+newPath+quote)
		source, total = s, total+n
	}
	return source, total
}

func (importSupport) AddImport(source, module string) string {
	if (importSupport{}).ContainsImport(source, module) {
		return source
	}
	return "import '" + module + "';\n" + source
}

func (importSupport) RemoveImport(source, module string) string {
	lines := strings.Split(source, "\n")
	out := lines[:0]
	for _, line := range lines {
		if strings.Contains(line, module) && (fromImportRe.MatchString(line) || bareImportRe.MatchString(line) || requireRe.MatchString(line)) {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

type aliasResolver struct{}

func (aliasResolver) IsPotentialAlias(specifier string) bool {
	return strings.HasPrefix(specifier, "$") || strings.HasPrefix(specifier, "@") || strings.HasPrefix(specifier, "~")
}

func (aliasResolver) ResolveAlias(specifier, importingFile, projectRoot string) (string, bool) {
	cfg := loadTSConfig(filepath.Dir(importingFile))
	if cfg == nil {
		return "", false
	}
	return cfg.resolve(specifier)
}

type workspaceSupport struct{}

func (workspaceSupport) IsWorkspaceManifest(content string) bool {
	return strings.Contains(content, `"workspaces"`)
}

func (workspaceSupport) ListWorkspaceMembers(content string) []string {
	re := regexp.MustCompile(`"workspaces"\s*:\s*\[([^\]]*)\]`)
	m := re.FindStringSubmatch(content)
	if m == nil {
		return nil
	}
	var out []string
	for _, item := range regexp.MustCompile(`"([^"]+)"`).FindAllStringSubmatch(m[1], -1) {
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
	re := regexp.MustCompile(`("workspaces"\s*:\s*\[)`)
	return re.ReplaceAllString(content, `$1"`+member+`", `)
}

func (workspaceSupport) RemoveMember(content, member string) string {
	return strings.ReplaceAll(content, `"`+member+`", `, "")
}

func (workspaceSupport) UpdatePackageName(content, newName string) string {
	re := regexp.MustCompile(`"name"\s*:\s*"[^"]*"`)
	return re.ReplaceAllString(content, `"name": "`+newName+`"`)
}

var packageNameRe = regexp.MustCompile(`"name"\s*:\s*"([^"]*)"`)

// PackageName returns package.json's "name" field, the read-accessor
// counterpart to UpdatePackageName.
func (workspaceSupport) PackageName(content string) (string, bool) {
	m := packageNameRe.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// NormalizePackageName is a no-op: an npm package name already is the
// identifier its import specifiers use.
func (workspaceSupport) NormalizePackageName(name string) string {
	return name
}
