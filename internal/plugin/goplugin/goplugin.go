// Package goplugin implements the Go language plugin: import parsing,
// rewriting on rename/move, and go.mod workspace manipulation. Grounded on
// the upstream plugin's single-file-per-concern layout (import handling,
// project factory, workspace support all composed into one plugin struct).
package goplugin

import (
	"regexp"
	"strings"

	"github.com/amarbel-llc/mill/internal/plugin"
)

var importLineRe = regexp.MustCompile(`(?m)^\s*(?:\w+\s+)?"([^"]+)"\s*$`)
var importBlockRe = regexp.MustCompile(`(?s)import\s*\(\s*(.*?)\s*\)`)
var singleImportRe = regexp.MustCompile(`import\s+(?:\w+\s+)?"([^"]+)"`)

type Plugin struct {
	imports   importSupport
	workspace workspaceSupport
}

func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:             "Go",
		Extensions:       []string{"go"},
		ManifestFilename: "go.mod",
		SourceDir:        ".",
		EntryPoint:       "main.go",
		ModuleSeparator:  "/",
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
	return []string{`^Test[A-Z]`, `^Benchmark[A-Z]`, `^Example`}
}

func (analysisMetadata) IsEntryPointName(name string) bool {
	return name == "main" || name == "init"
}

func (analysisMetadata) AssertionPatterns() []string {
	return []string{`^assert`, `^require`, `\.Fatalf?$`, `\.Errorf?$`}
}

func (analysisMetadata) DocCommentStyle() plugin.DocCommentStyle { return plugin.DocCommentLine }

func (analysisMetadata) VisibilityKeywords() []string { return nil } // exported iff capitalized

func (analysisMetadata) InterfaceKeywords() []string { return []string{"interface"} }

func (analysisMetadata) ComplexityKeywords() []string {
	return []string{"if", "for", "case", "&&", "||"}
}

func (analysisMetadata) NestingPenalty() float64 { return 0.5 }

type importSupport struct{}

func (importSupport) ParseImports(source string) []string {
	var out []string
	if block := importBlockRe.FindStringSubmatch(source); block != nil {
		for _, m := range importLineRe.FindAllStringSubmatch(block[1], -1) {
			out = append(out, m[1])
		}
	}
	for _, m := range singleImportRe.FindAllStringSubmatch(source, -1) {
		out = append(out, m[1])
	}
	return out
}

func (importSupport) ContainsImport(source, module string) bool {
	for _, imp := range (importSupport{}).ParseImports(source) {
		if imp == module {
			return true
		}
	}
	return false
}

func (importSupport) RewriteImportsForRename(source, oldName, newName string) (string, int) {
	return plugin.ReplaceWholeWord(source, oldName, newName)
}

func (importSupport) RewriteImportsForMove(source, oldPath, newPath string) (string, int) {
	return plugin.ReplaceSubstring(source, `"`+oldPath+`"`, `"`+newPath+`"`)
}

func (importSupport) AddImport(source, module string) string {
	if (importSupport{}).ContainsImport(source, module) {
		return source
	}
	if loc := importBlockRe.FindStringSubmatchIndex(source); loc != nil {
		insertAt := loc[2] // start of block body's first line
		for insertAt > loc[0] && (source[insertAt-1] == ' ' || source[insertAt-1] == '\t') {
			insertAt--
		}
		return source[:insertAt] + "\t\"" + module + "\"\n" + source[insertAt:]
	}
	return "import \"" + module + "\"\n" + source
}

func (importSupport) RemoveImport(source, module string) string {
	lines := strings.Split(source, "\n")
	out := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == `"`+module+`"` {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

type workspaceSupport struct{}

var moduleLineRe = regexp.MustCompile(`(?m)^module\s+(\S+)`)

func (workspaceSupport) IsWorkspaceManifest(content string) bool {
	return strings.HasPrefix(strings.TrimSpace(content), "go 1.") || strings.Contains(content, "\nuse ")
}

func (workspaceSupport) ListWorkspaceMembers(content string) []string {
	var members []string
	re := regexp.MustCompile(`(?m)^\s*use\s+(\S+)\s*$`)
	for _, m := range re.FindAllStringSubmatch(content, -1) {
		members = append(members, m[1])
	}
	return members
}

func (w workspaceSupport) AddMember(content, member string) string {
	for _, existing := range w.ListWorkspaceMembers(content) {
		if existing == member {
			return content
		}
	}
	return strings.TrimRight(content, "\n") + "\nuse " + member + "\n"
}

func (w workspaceSupport) RemoveMember(content, member string) string {
	lines := strings.Split(content, "\n")
	out := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) == "use "+member {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func (workspaceSupport) UpdatePackageName(content, newName string) string {
	return moduleLineRe.ReplaceAllString(content, "module "+newName)
}

// PackageName returns the go.mod module path, the read-accessor
// counterpart to UpdatePackageName.
func (workspaceSupport) PackageName(content string) (string, bool) {
	m := moduleLineRe.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// NormalizePackageName is a no-op: a Go module path already is the
// identifier its import references use.
func (workspaceSupport) NormalizePackageName(name string) string {
	return name
}
