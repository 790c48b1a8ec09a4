package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/datapivot/schemabridge/internal/common"
)

// versionInfo holds version fields for the running server.
type versionInfo struct {
	Version string `json:"version"`
	Build   string `json:"build"`
	Commit  string `json:"commit"`
}

// VersionTool returns the mcp.Tool definition for the get_version tool.
func VersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get schemabridge server version and status. Use this to verify connectivity."),
	)
}

// VersionToolHandler returns a handler reporting version, status, and the
// number of registered schema tools.
func VersionToolHandler(toolCount int) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := map[string]interface{}{
			"status": "ok",
			"tools":  toolCount,
			"schemabridge": versionInfo{
				Version: common.GetVersion(),
				Build:   common.GetBuild(),
				Commit:  common.GetGitCommit(),
			},
		}

		out, err := json.Marshal(result)
		if err != nil {
			return errorResult("failed to marshal version info"), nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{mcp.NewTextContent(string(out))},
		}, nil
	}
}
