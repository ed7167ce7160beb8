package api

import (
	"net/http"

	"botlint/internal/version"
)

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /rules", s.handleRules)

	s.router.HandleFunc("POST /analyze", s.handleAnalyze)
	s.router.HandleFunc("POST /improved-code", s.handleImprovedCode)
	s.router.HandleFunc("GET /improved-code", s.handleImprovedSample)

	s.router.HandleFunc("GET /history", s.handleListRuns)
	s.router.HandleFunc("GET /history/{id}", s.handleGetRun)
	s.router.HandleFunc("DELETE /history/{id}", s.handleDeleteRun)

	if s.metrics != nil {
		s.router.HandleFunc("GET /metrics", s.handleMetrics)
	}

	s.router.HandleFunc("/{$}", s.handleRoot)
}

// handleRoot lists the available endpoints
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowed(w, http.MethodGet)
		return
	}

	WriteJSON(w, map[string]interface{}{
		"name":    "botlint HTTP API",
		"version": version.Version,
		"endpoints": []string{
			"GET /health - Health check",
			"GET /rules - Analyzer passes",
			"POST /analyze - Analyze source ({\"code\": ...} or text/plain)",
			"POST /improved-code - Rewrite source",
			"GET /improved-code - Rewrite ?code=... or the configured sample",
			"GET /history - List recorded runs",
			"GET /history/:id - Get a recorded run (?format=html for the report)",
			"DELETE /history/:id - Delete a recorded run",
			"GET /metrics - Prometheus metrics (when server.metrics is on)",
		},
	}, http.StatusOK)
}
