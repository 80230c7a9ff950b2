package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/amarbel-llc/mill/internal/plugin"
	"github.com/amarbel-llc/mill/internal/plugin/cplugin"
	"github.com/amarbel-llc/mill/internal/plugin/csharpplugin"
	"github.com/amarbel-llc/mill/internal/plugin/goplugin"
	"github.com/amarbel-llc/mill/internal/plugin/javaplugin"
	"github.com/amarbel-llc/mill/internal/plugin/pyplugin"
	"github.com/amarbel-llc/mill/internal/plugin/rustplugin"
	"github.com/amarbel-llc/mill/internal/plugin/swiftplugin"
	"github.com/amarbel-llc/mill/internal/plugin/tsplugin"
	"github.com/spf13/cobra"
)

var capabilityNames = []struct {
	bit  plugin.Capability
	name string
}{
	{plugin.CapImports, "imports"},
	{plugin.CapProjectFactory, "project_factory"},
	{plugin.CapWorkspaceSupport, "workspace_support"},
	{plugin.CapAnalysisMetadata, "analysis_metadata"},
	{plugin.CapPathAliases, "path_aliases"},
}

// newInspectionRegistry mirrors internal/mcp.newPluginRegistry's set of
// registrations. Kept as a separate copy rather than an exported shared
// helper: this CLI must be able to report on the plugin set without
// depending on internal/mcp, which pulls in the transport and LSP pool.
func newInspectionRegistry() *plugin.Registry {
	r := plugin.NewRegistry()
	for _, p := range []plugin.LanguagePlugin{
		goplugin.New(), tsplugin.New(), pyplugin.New(), rustplugin.New(),
		javaplugin.New(), cplugin.New(), csharpplugin.New(), swiftplugin.New(),
	} {
		r.Register(p)
	}
	return r
}

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List registered language plugins, their extensions, and capabilities",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := newInspectionRegistry()
		for _, p := range registry.All() {
			meta := p.Metadata()
			caps := p.Capabilities()

			var names []string
			for _, c := range capabilityNames {
				if caps.Has(c.bit) {
					names = append(names, c.name)
				}
			}
			sort.Strings(names)

			exts := append([]string(nil), meta.Extensions...)
			sort.Strings(exts)

			fmt.Fprintf(cmd.OutOrStdout(), "%-12s extensions=%s manifest=%q capabilities=%s\n",
				meta.Name, strings.Join(exts, ","), meta.ManifestFilename,
				strings.Join(names, ","))
		}
		return nil
	},
}
