// Package javaplugin implements the Java language plugin: "import" / static
// import parsing and rewriting.
package javaplugin

import (
	"regexp"
	"strings"

	"github.com/amarbel-llc/mill/internal/plugin"
)

var importRe = regexp.MustCompile(`(?m)^\s*import\s+(static\s+)?([\w.]+(?:\.\*)?)\s*;`)

type Plugin struct {
	imports importSupport
}

func New() *Plugin { return &Plugin{} }

func (p *Plugin) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:             "Java",
		Extensions:       []string{"java"},
		ManifestFilename: "pom.xml",
		SourceDir:        "src/main/java",
		EntryPoint:       "Main.java",
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
	return []string{`^test`, `Test$`, `@Test`}
}

func (analysisMetadata) IsEntryPointName(name string) bool { return name == "main" }

func (analysisMetadata) AssertionPatterns() []string {
	return []string{`^assert`, `^Assert\.`}
}

func (analysisMetadata) DocCommentStyle() plugin.DocCommentStyle { return plugin.DocCommentBlock }

func (analysisMetadata) VisibilityKeywords() []string {
	return []string{"public", "private", "protected"}
}

func (analysisMetadata) InterfaceKeywords() []string { return []string{"interface", "abstract"} }

func (analysisMetadata) ComplexityKeywords() []string {
	return []string{"if", "for", "while", "case", "&&", "||", "catch"}
}

func (analysisMetadata) NestingPenalty() float64 { return 0.5 }

type importSupport struct{}

func (importSupport) ParseImports(source string) []string {
	var out []string
	for _, m := range importRe.FindAllStringSubmatch(source, -1) {
		out = append(out, m[2])
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
	oldPkg := strings.ReplaceAll(strings.Trim(oldPath, "/"), "/", ".")
	newPkg := strings.ReplaceAll(strings.Trim(newPath, "/"), "/", ".")
	return plugin.ReplaceSubstring(source, oldPkg, newPkg)
}

func (importSupport) AddImport(source, module string) string {
	if (importSupport{}).ContainsImport(source, module) {
		return source
	}
	return "import " + module + ";\n" + source
}

func (importSupport) RemoveImport(source, module string) string {
	lines := strings.Split(source, "\n")
	out := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) == "import "+module+";" || strings.TrimSpace(line) == "import static "+module+";" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
