package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/amarbel-llc/purse-first/libs/go-mcp/command"
)

// RegisterForGeneration adds one command.Command per public tool to app so
// `millctl _generate` can emit each tool's schema as a build artifact. Their
// Run handlers are unreachable outside that path: live tool calls go
// through the MCP server's ToolRegistry, which wires a Dispatcher backed by
// a running LSP pool that a one-shot generation invocation does not have.
func RegisterForGeneration(app *command.App) {
	for _, t := range generationTools {
		name := t.name
		app.AddCommand(&command.Command{
			Name:        name,
			Description: command.Description{Short: t.description},
			Params:      t.params,
			Run: func(ctx context.Context, args json.RawMessage, _ command.Prompter) (*command.Result, error) {
				return command.TextErrorResult(fmt.Sprintf("%s is only available through the MCP server", name)), nil
			},
		})
	}
}

type generationTool struct {
	name        string
	description string
	params      []command.Param
}

var generationTools = []generationTool{
	{
		name:        "inspect_code",
		description: "Run a navigation or analysis query against a position or file: hover, definition, references, diagnostics, symbol_info, or dead_code.",
		params: []command.Param{
			{Name: "uri", Type: command.String, Description: "File URI (e.g., file:///path/to/file.go)", Required: true},
			{Name: "line", Type: command.Int, Description: "0-indexed line number"},
			{Name: "character", Type: command.Int, Description: "0-indexed character offset"},
			{Name: "query", Type: command.String, Description: "hover, definition, references, diagnostics, symbol_info, dead_code", Default: "hover"},
		},
	},
	{
		name:        "search_code",
		description: "Search for symbols across the entire workspace by name pattern.",
		params: []command.Param{
			{Name: "query", Type: command.String, Description: "Symbol name pattern to search for", Required: true},
			{Name: "uri", Type: command.String, Description: "Any file URI in the workspace", Required: true},
		},
	},
	{
		name:        "rename_all",
		description: "Plan and/or apply renaming a symbol, file, or directory across the whole workspace.",
		params: []command.Param{
			{Name: "kind", Type: command.String, Description: "file, directory, or symbol", Required: true},
			{Name: "root", Type: command.String, Description: "workspace root, required for file/directory kind"},
			{Name: "uri", Type: command.String, Description: "symbol kind: file containing the symbol"},
			{Name: "line", Type: command.Int, Description: "symbol kind: 0-indexed line"},
			{Name: "character", Type: command.Int, Description: "symbol kind: 0-indexed character"},
			{Name: "old_path", Type: command.String, Description: "file/directory kind: path relative to root"},
			{Name: "new_name", Type: command.String, Description: "new symbol name, or new basename", Required: true},
			{Name: "dry_run", Type: command.Bool, Description: "report the plan without applying it"},
		},
	},
	{
		name:        "relocate",
		description: "Plan and/or apply moving a file or directory to a different path.",
		params: []command.Param{
			{Name: "kind", Type: command.String, Description: "file or directory", Required: true},
			{Name: "root", Type: command.String, Required: true},
			{Name: "old_path", Type: command.String, Required: true},
			{Name: "new_path", Type: command.String, Required: true},
			{Name: "dry_run", Type: command.Bool, Description: "report the plan without applying it"},
		},
	},
	{
		name:        "prune",
		description: "Plan and/or apply deleting one or more files or directories.",
		params: []command.Param{
			{Name: "targets", Type: command.Array, Required: true},
			{Name: "dry_run", Type: command.Bool, Description: "report the plan without applying it"},
		},
	},
	{
		name:        "refactor",
		description: "Plan and/or apply an extract or inline refactor at a location.",
		params: []command.Param{
			{Name: "action", Type: command.String, Description: "extract or inline", Required: true},
			{Name: "uri", Type: command.String, Required: true},
			{Name: "dry_run", Type: command.Bool, Description: "report the plan without applying it"},
		},
	},
	{
		name:        "workspace",
		description: "Run a workspace-level action: create_package, extract_dependencies, find_replace, or verify_project.",
		params: []command.Param{
			{Name: "action", Type: command.String, Required: true},
			{Name: "root", Type: command.String, Required: true},
			{Name: "pattern", Type: command.String, Description: "find_replace: literal text to find"},
			{Name: "replacement", Type: command.String, Description: "find_replace: literal text to substitute"},
			{Name: "file_types", Type: command.Array},
			{Name: "dry_run", Type: command.Bool, Description: "report matches without writing"},
		},
	},
}
