package server

import "net/http"

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Service banner
	mux.HandleFunc("/", s.handleIndex)

	// MCP endpoint (JSON-RPC over HTTP)
	if s.app.MCPHandler != nil {
		mux.Handle("/mcp", s.app.MCPHandler)
	}

	// API routes. Method-less registrations on the same paths keep the mux's
	// catch-alls from swallowing wrong-method requests as 404s.
	mux.HandleFunc("GET /api/health", s.app.HealthHandler.ServeHTTP)
	mux.HandleFunc("/api/health", s.handleMethodNotAllowed)
	mux.HandleFunc("GET /api/version", s.app.VersionHandler.ServeHTTP)
	mux.HandleFunc("/api/version", s.handleMethodNotAllowed)

	// Knowledge-collection admin
	mux.HandleFunc("GET /api/collections", s.app.CollectionsHandler.List)
	mux.HandleFunc("/api/collections", s.handleMethodNotAllowed)
	mux.HandleFunc("GET /api/collections/{name}", s.app.CollectionsHandler.Get)
	mux.HandleFunc("DELETE /api/collections/{name}", s.app.CollectionsHandler.Delete)
	mux.HandleFunc("/api/collections/{name}", s.handleMethodNotAllowed)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.handleNotFound)

	return mux
}

// handleMethodNotAllowed rejects requests whose path is routable but whose
// method is not.
func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	w.Write([]byte(`{"error":"Method Not Allowed"}`))
}

// handleIndex returns a small service banner on the root path and a JSON 404
// everywhere else.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.handleNotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"service":"schemabridge","mcp":"/mcp","health":"/api/health"}`))
}

// handleNotFound returns a JSON 404 for unmatched API routes.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"Not Found","message":"The requested endpoint does not exist"}`))
}
