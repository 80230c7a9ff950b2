// Package cplugin implements the C/C++ language plugin: #include parsing
// and rewriting for quoted and angle-bracket includes.
package cplugin

import (
	"regexp"
	"strings"

	"github.com/amarbel-llc/mill/internal/plugin"
)

var includeRe = regexp.MustCompile(`(?m)^\s*#include\s*[<"]([^>"]+)[>"]`)

type Plugin struct {
	imports importSupport
}

func New() *Plugin { return &Plugin{} }

func (p *Plugin) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:             "C",
		Extensions:       []string{"c", "h", "cc", "cpp", "cxx", "hpp", "hh"},
		ManifestFilename: "CMakeLists.txt",
		SourceDir:        "src",
		EntryPoint:       "main.c",
		ModuleSeparator:  "/",
	}
}

func (p *Plugin) Capabilities() plugin.Capability {
	return plugin.CapImports | plugin.CapAnalysisMetadata
}

func (p *Plugin) ImportParser() (plugin.ImportParser, bool)               { return p.imports, true }
func (p *Plugin) ImportRenameSupport() (plugin.ImportRenameSupport, bool) { return nil, false }
func (p *Plugin) ImportMoveSupport() (plugin.ImportMoveSupport, bool)     { return p.imports, true }
func (p *Plugin) ImportMutationSupport() (plugin.ImportMutationSupport, bool) {
	return p.imports, true
}
func (p *Plugin) PathAliasResolver() (plugin.PathAliasResolver, bool) { return nil, false }
func (p *Plugin) WorkspaceSupport() (plugin.WorkspaceSupport, bool)  { return nil, false }
func (p *Plugin) AnalysisMetadata() (plugin.AnalysisMetadata, bool)  { return analysisMetadata{}, true }

type analysisMetadata struct{}

func (analysisMetadata) TestPatterns() []string {
	return []string{`^Test`, `_test$`, `^TEST_?\(`}
}

func (analysisMetadata) IsEntryPointName(name string) bool { return name == "main" }

func (analysisMetadata) AssertionPatterns() []string {
	return []string{`^assert`, `^ASSERT_`, `^EXPECT_`}
}

func (analysisMetadata) DocCommentStyle() plugin.DocCommentStyle { return plugin.DocCommentBlock }

func (analysisMetadata) VisibilityKeywords() []string { return []string{"static"} }

func (analysisMetadata) InterfaceKeywords() []string { return []string{"virtual", "abstract"} }

func (analysisMetadata) ComplexityKeywords() []string {
	return []string{"if", "for", "while", "case", "&&", "||", "catch"}
}

func (analysisMetadata) NestingPenalty() float64 { return 0.5 }

type importSupport struct{}

func (importSupport) ParseImports(source string) []string {
	var out []string
	for _, m := range includeRe.FindAllStringSubmatch(source, -1) {
		out = append(out, m[1])
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

func (importSupport) RewriteImportsForMove(source, oldPath, newPath string) (string, int) {
	total := 0
	for _, pair := range [][2]string{{"\"" + oldPath + "\"", "\"" + newPath + "\""}, {"<" + oldPath + ">", "<" + newPath + ">"}} {
		s, n := plugin.ReplaceSubstring(source, pair[0], pair[1])
		source, total = s, total+n
	}
	return source, total
}

func (importSupport) AddImport(source, module string) string {
	if (importSupport{}).ContainsImport(source, module) {
		return source
	}
	return "#include \"" + module + "\"\n" + source
}

func (importSupport) RemoveImport(source, module string) string {
	lines := strings.Split(source, "\n")
	out := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == `#include "`+module+`"` || trimmed == "#include <"+module+">" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
