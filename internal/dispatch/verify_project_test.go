package dispatch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/amarbel-llc/mill/internal/plugin"
)

// fakeWorkspacePlugin is a minimal LanguagePlugin exercising only the
// WorkspaceSupport path verifyProject reads.
type fakeWorkspacePlugin struct {
	manifestName string
	members      []string
}

func (p *fakeWorkspacePlugin) Metadata() plugin.Metadata {
	return plugin.Metadata{Name: "fake", ManifestFilename: p.manifestName}
}
func (p *fakeWorkspacePlugin) Capabilities() plugin.Capability { return plugin.CapWorkspaceSupport }
func (p *fakeWorkspacePlugin) ImportParser() (plugin.ImportParser, bool)                 { return nil, false }
func (p *fakeWorkspacePlugin) ImportRenameSupport() (plugin.ImportRenameSupport, bool)    { return nil, false }
func (p *fakeWorkspacePlugin) ImportMoveSupport() (plugin.ImportMoveSupport, bool)        { return nil, false }
func (p *fakeWorkspacePlugin) ImportMutationSupport() (plugin.ImportMutationSupport, bool) { return nil, false }
func (p *fakeWorkspacePlugin) PathAliasResolver() (plugin.PathAliasResolver, bool)        { return nil, false }
func (p *fakeWorkspacePlugin) AnalysisMetadata() (plugin.AnalysisMetadata, bool)          { return nil, false }
func (p *fakeWorkspacePlugin) WorkspaceSupport() (plugin.WorkspaceSupport, bool)          { return p, true }

func (p *fakeWorkspacePlugin) IsWorkspaceManifest(string) bool        { return true }
func (p *fakeWorkspacePlugin) ListWorkspaceMembers(string) []string   { return p.members }
func (p *fakeWorkspacePlugin) AddMember(content, _ string) string     { return content }
func (p *fakeWorkspacePlugin) RemoveMember(content, _ string) string  { return content }
func (p *fakeWorkspacePlugin) UpdatePackageName(content, _ string) string { return content }

func TestVerifyProject_ReportsMissingMember(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "fake.manifest"), []byte("workspace"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "present"), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}

	registry := plugin.NewRegistry()
	registry.Register(&fakeWorkspacePlugin{manifestName: "fake.manifest", members: []string{"present", "missing"}})

	d := &Dispatcher{registry: registry}
	res, err := d.verifyProject(WorkspaceArgs{Root: dir})
	if err != nil {
		t.Fatalf("verifyProject: %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected a problem to be reported, got: %s", res.Text)
	}
}

func TestVerifyProject_CleanWorkspaceReportsNoIssues(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "fake.manifest"), []byte("workspace"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "present"), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}

	registry := plugin.NewRegistry()
	registry.Register(&fakeWorkspacePlugin{manifestName: "fake.manifest", members: []string{"present"}})

	d := &Dispatcher{registry: registry}
	res, err := d.verifyProject(WorkspaceArgs{Root: dir})
	if err != nil {
		t.Fatalf("verifyProject: %v", err)
	}
	if res.IsError {
		t.Fatalf("expected no issues, got: %s", res.Text)
	}
}
