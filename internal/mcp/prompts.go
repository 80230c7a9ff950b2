package mcp

import (
	"context"

	"github.com/amarbel-llc/purse-first/libs/go-mcp/protocol"
	mcpserver "github.com/amarbel-llc/purse-first/libs/go-mcp/server"
)

const codeExplorationPrompt = `When exploring an unfamiliar codebase, use mill LSP tools strategically:

1. START WITH STRUCTURE: Use inspect_code with query symbol_info on key files to understand the file's API surface - what functions, types, and constants are defined.

2. UNDERSTAND TYPES: Use inspect_code with query hover on type names to see their full definition and documentation without navigating away.

3. FOLLOW DEFINITIONS: Use inspect_code with query definition to jump to where symbols are defined. This is faster and more accurate than grep for finding implementations.

4. TRACE USAGE: Use inspect_code with query references to understand how a function or type is used throughout the codebase. Essential before modifying public APIs.

5. EXPLORE APIS: Use search_code to find functions, types, and constants across the workspace by name.

WHEN TO USE LSP vs GREP:
- Use inspect_code references instead of grep when searching for symbol usage
- Use inspect_code definition instead of grep when finding where something is defined
- Use inspect_code symbol_info instead of reading files to understand structure
- Use grep when searching for string literals, comments, or patterns

SUPPORTED FILES:
Read the mill://languages resource to see which file types have LSP support.
Read the mill://files resource to see all supported files in the current project.`

const refactoringGuidePrompt = `For safe, comprehensive refactoring using mill:

RENAMING:
1. First use inspect_code with query references to see all usages of the symbol
2. Review the references to understand the impact
3. Use rename_all to rename across all files semantically
4. The rename operation handles scoping - it won't rename unrelated symbols

BEFORE MODIFYING A FUNCTION:
1. Use inspect_code references to find all callers
2. Use inspect_code hover on call sites to understand expected behavior
3. Check if function is part of an interface with inspect_code definition

FINDING IMPLEMENTATIONS:
- Use inspect_code definition on interface methods to find implementations
- Use inspect_code references on types to find where they're instantiated

CODE ACTIONS:
mill has no code-action tool. The refactor tool's extract and inline actions report that they are not implemented.

DIAGNOSTICS:
Use inspect_code with query diagnostics to check for errors and warnings before and after making changes.`

func registerPrompts(registry *mcpserver.PromptRegistry) {
	registry.Register(
		protocol.Prompt{
			Name:        "code-exploration",
			Description: "Best practices for exploring and understanding code using LSP tools",
		},
		func(ctx context.Context, args map[string]string) (*protocol.PromptGetResult, error) {
			return &protocol.PromptGetResult{
				Description: "Best practices for exploring and understanding code using LSP tools",
				Messages: []protocol.PromptMessage{
					{
						Role:    "user",
						Content: protocol.TextContent(codeExplorationPrompt),
					},
				},
			}, nil
		},
	)

	registry.Register(
		protocol.Prompt{
			Name:        "refactoring-guide",
			Description: "How to safely refactor code using LSP-assisted tools",
		},
		func(ctx context.Context, args map[string]string) (*protocol.PromptGetResult, error) {
			return &protocol.PromptGetResult{
				Description: "How to safely refactor code using LSP-assisted tools",
				Messages: []protocol.PromptMessage{
					{
						Role:    "user",
						Content: protocol.TextContent(refactoringGuidePrompt),
					},
				},
			}, nil
		},
	)
}
