package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/archsim/internal/models"
)

// Response helpers

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{
		Status:  models.StatusError,
		Message: message,
	})
}

// Liveness and readiness

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Hello, Architecture (Stateless)!"))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	results := s.deps.Health.HealthCheckAll(r.Context())

	checks := make(map[string]string, len(results))
	ready := true
	for name, err := range results {
		if err != nil {
			slog.Warn("dependency not ready", "dependency", name, "error", err)
			checks[name] = err.Error()
			ready = false
			continue
		}
		checks[name] = "ok"
	}

	if !ready {
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "not_ready",
			"checks": checks,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ready",
		"checks": checks,
	})
}

// Catalog handlers

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.deps.Catalog.ListScenarios())
}

func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	id := models.ScenarioID(chi.URLParam(r, "id"))

	scenario, ok := s.deps.Catalog.Scenario(id)
	if !ok {
		respondError(w, http.StatusNotFound, "scenario not found")
		return
	}

	respondJSON(w, http.StatusOK, scenario.Summary())
}

func (s *Server) handleListComponents(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"categories": s.deps.Components.Categories(),
		"types":      s.deps.Components.Types(),
	})
}
