// Package pyplugin implements the Python language plugin: "import x" and
// "from x import y" parsing and rewriting.
package pyplugin

import (
	"regexp"
	"strings"

	"github.com/amarbel-llc/mill/internal/plugin"
)

var (
	fromImportRe = regexp.MustCompile(`(?m)^\s*from\s+([\w.]+)\s+import\s+`)
	plainImportRe = regexp.MustCompile(`(?m)^\s*import\s+([\w.]+(?:\s*,\s*[\w.]+)*)`)
)

type Plugin struct {
	imports importSupport
}

func New() *Plugin { return &Plugin{} }

func (p *Plugin) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:             "Python",
		Extensions:       []string{"py", "pyi"},
		ManifestFilename: "pyproject.toml",
		SourceDir:        ".",
		EntryPoint:       "__main__.py",
		ModuleSeparator:  ".",
	}
}

func (p *Plugin) Capabilities() plugin.Capability {
	return plugin.CapImports | plugin.CapAnalysisMetadata
}

func (p *Plugin) ImportParser() (plugin.ImportParser, bool)               { return p.imports, true }
func (p *Plugin) ImportRenameSupport() (plugin.ImportRenameSupport, bool) { return p.imports, true }
func (p *Plugin) ImportMoveSupport() (plugin.ImportMoveSupport, bool)     { return p.imports, true }
func (p *Plugin) ImportMutationSupport() (plugin.ImportMutationSupport, bool) {
	return p.imports, true
}
func (p *Plugin) PathAliasResolver() (plugin.PathAliasResolver, bool) { return nil, false }
func (p *Plugin) WorkspaceSupport() (plugin.WorkspaceSupport, bool)  { return nil, false }
func (p *Plugin) AnalysisMetadata() (plugin.AnalysisMetadata, bool)  { return analysisMetadata{}, true }

type analysisMetadata struct{}

func (analysisMetadata) TestPatterns() []string {
	return []string{`^test_`, `_test$`, `^Test[A-Z]`}
}

func (analysisMetadata) IsEntryPointName(name string) bool { return name == "main" }

func (analysisMetadata) AssertionPatterns() []string {
	return []string{`^assert`, `^self\.assert`}
}

func (analysisMetadata) DocCommentStyle() plugin.DocCommentStyle { return plugin.DocCommentBlock }

func (analysisMetadata) VisibilityKeywords() []string { return nil } // leading underscore convention

func (analysisMetadata) InterfaceKeywords() []string { return []string{"Protocol", "ABC"} }

func (analysisMetadata) ComplexityKeywords() []string {
	return []string{"if", "for", "while", "elif", "except", "and", "or"}
}

func (analysisMetadata) NestingPenalty() float64 { return 0.5 }

type importSupport struct{}

func (importSupport) ParseImports(source string) []string {
	var out []string
	for _, m := range fromImportRe.FindAllStringSubmatch(source, -1) {
		out = append(out, m[1])
	}
	for _, m := range plainImportRe.FindAllStringSubmatch(source, -1) {
		for _, mod := range strings.Split(m[1], ",") {
			out = append(out, strings.TrimSpace(mod))
		}
	}
	return out
}

func (importSupport) ContainsImport(source, module string) bool {
	for _, m := range (importSupport{}).ParseImports(source) {
		if m == module {
			return true
		}
	}
	return false
}

func (importSupport) RewriteImportsForRename(source, oldName, newName string) (string, int) {
	return plugin.ReplaceWholeWord(source, oldName, newName)
}

func (importSupport) RewriteImportsForMove(source, oldPath, newPath string) (string, int) {
	oldMod := strings.ReplaceAll(strings.Trim(oldPath, "/"), "/", ".")
	newMod := strings.ReplaceAll(strings.Trim(newPath, "/"), "/", ".")
	oldMod = strings.TrimSuffix(oldMod, ".py")
	newMod = strings.TrimSuffix(newMod, ".py")
	return plugin.ReplaceSubstring(source, oldMod, newMod)
}

func (importSupport) AddImport(source, module string) string {
	if (importSupport{}).ContainsImport(source, module) {
		return source
	}
	return "import " + module + "\n" + source
}

func (importSupport) RemoveImport(source, module string) string {
	lines := strings.Split(source, "\n")
	out := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "import "+module || strings.HasPrefix(trimmed, "from "+module+" import") {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
