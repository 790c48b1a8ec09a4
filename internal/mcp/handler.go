package mcp

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/datapivot/schemabridge/internal/common"
	"github.com/datapivot/schemabridge/internal/manifest"
)

// Handler is the HTTP handler for the MCP endpoint.
// It wraps mcp-go's StreamableHTTPServer and delegates to it.
type Handler struct {
	mcpServer  *mcpserver.MCPServer
	streamable *mcpserver.StreamableHTTPServer
	logger     *common.Logger
	manifests  []*manifest.Manifest
	apiKey     string
}

// NewHandler creates an MCP handler with tools registered from the loaded
// manifests. apiKey, when non-empty, is required as a bearer token on every
// HTTP request; stdio transport bypasses it.
func NewHandler(deps *Deps, manifests []*manifest.Manifest, apiKey string, logger *common.Logger) *Handler {
	mcpSrv := mcpserver.NewMCPServer(
		"schemabridge",
		common.GetVersion(),
		mcpserver.WithToolCapabilities(true),
	)

	toolCount := RegisterTools(mcpSrv, deps, manifests)
	mcpSrv.AddTool(VersionTool(), VersionToolHandler(toolCount))

	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithStateLess(true),
	)

	logger.Info().
		Int("tools", toolCount).
		Bool("auth", apiKey != "").
		Msg("MCP handler initialized")

	return &Handler{
		mcpServer:  mcpSrv,
		streamable: streamable,
		logger:     logger,
		manifests:  manifests,
		apiKey:     apiKey,
	}
}

// MCPServer returns the underlying MCP server, used by the stdio transport.
func (h *Handler) MCPServer() *mcpserver.MCPServer {
	return h.mcpServer
}

// Manifests returns the manifests registered on this handler.
func (h *Handler) Manifests() []*manifest.Manifest {
	result := make([]*manifest.Manifest, len(h.manifests))
	copy(result, h.manifests)
	return result
}

// ServeHTTP enforces bearer authentication when an API key is configured and
// delegates to the mcp-go StreamableHTTPServer.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.apiKey != "" && !h.authorized(r) {
		w.Header().Set("WWW-Authenticate", "Bearer")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{
			"error":             "unauthorized",
			"error_description": "A valid bearer token is required to access the MCP endpoint",
		})
		return
	}

	h.streamable.ServeHTTP(w, r)
}

// authorized reports whether the request carries the configured API key.
// Comparison is constant-time.
func (h *Handler) authorized(r *http.Request) bool {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return false
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.apiKey)) == 1
}
