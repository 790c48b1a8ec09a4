package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/datapivot/schemabridge/internal/manifest"
)

// handlerBindings maps a manifest identity to the Go handler serving it.
// A manifest naming an identity outside this table is declared but not
// implemented; registration skips it with a warning.
var handlerBindings = map[string]func(*Deps, *manifest.Manifest) server.ToolHandlerFunc{
	"schema_export": ExportHandler,
	"schema_search": SearchHandler,
}

// RegisterTools registers one MCP tool per manifest that has a bound handler.
// Returns the number of tools registered.
func RegisterTools(s *server.MCPServer, deps *Deps, manifests []*manifest.Manifest) int {
	count := 0
	for _, m := range manifests {
		bind, ok := handlerBindings[m.Identity.Name]
		if !ok {
			deps.Logger.Warn().
				Str("tool", m.Identity.Name).
				Msg("manifest has no bound handler, skipping")
			continue
		}
		s.AddTool(BuildTool(m), bind(deps, m))
		count++
	}
	return count
}
