package mcp

import (
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

const (
	name         = "tagrss"
	instructions = `MCP Server 'tagrss' classifies RSS and Atom feed items with tag rules and folders.

When to use these tools:
- Checking which tags and folders an item would receive before adding rules or folders
- Browsing the stored items that belong to a folder
- Inspecting the configured folders and any folder definitions that failed to load

Workflow:
1. Use 'list_folders' to see the available folder names and their expressions
2. Use 'folder_items' with an EXACT folder name from 'list_folders' to browse its items
3. Use 'classify_item' to test how an ad-hoc item is tagged and filed
4. Use 'recent_logs' when a tool result is unexpected, to see load warnings and errors
`

	maxContentLen = 500
)

func newStringSchema(description string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Description: description,
	}
}

func newIntegerSchema(description string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "integer",
		Description: description,
	}
}

// truncateString truncates a string to maxLen bytes with ellipsis if needed.
func truncateString(str string, maxLen int) string {
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}

	return str
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}

	return t.UTC().Format(time.RFC3339)
}
