package main

import (
	"github.com/spf13/cobra"
)

var version = "dev"

// rootCmd is a read-only inspector over the plugin registry: it builds the
// same registry the server builds at startup, never a running one, so it
// never touches a live LSP pool or mutates a workspace.
var rootCmd = &cobra.Command{
	Use:   "millinfo",
	Short: "Inspect the language plugins a build of mill ships",
	Long: `millinfo reports what internal/mcp's server would wire up at startup:
which language plugins are registered, which file extensions they claim,
and which optional capabilities each one implements.

It never starts an LSP, opens a workspace, or talks to the MCP transport.`,
}

func init() {
	rootCmd.AddCommand(pluginsCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the millinfo build version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version)
	},
}
