package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/terra-clan/archsim/internal/models"
	"github.com/terra-clan/archsim/internal/storage"
)

func (s *Server) handleSaveProject(w http.ResponseWriter, r *http.Request) {
	var req models.SaveProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := uuid.New()
	if req.ID != "" {
		parsed, err := uuid.Parse(req.ID)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid project id")
			return
		}
		id = parsed
	}

	project := models.NewProject(id, "", req.ScenarioID, req.Diagram, req.ChatHistory)
	if req.ID != "" {
		existing, err := s.deps.Store.FindByID(r.Context(), id)
		if err != nil {
			slog.Error("failed to load project before save", "id", id, "error", err)
			s.deps.Metrics.Save(models.StatusError)
			respondJSON(w, http.StatusInternalServerError, models.SaveProjectResponse{
				Status:  models.StatusError,
				Message: "Failed to save",
			})
			return
		}
		if existing != nil {
			project.Title = existing.Title
		}
	}
	// An empty title keeps the stored one.
	project.ChangeTitle(req.Title)
	project.Evaluation = req.Evaluation
	project.Normalize()

	if err := s.deps.Store.Save(context.WithoutCancel(r.Context()), project); err != nil {
		slog.Error("failed to save project", "id", id, "error", err)
		s.deps.Metrics.Save(models.StatusError)
		respondJSON(w, http.StatusInternalServerError, models.SaveProjectResponse{
			Status:  models.StatusError,
			Message: "Failed to save",
		})
		return
	}

	message := "Project saved"
	if !storage.IsPersistent(s.deps.Store) {
		message = "Saved to session (mock)"
	}

	slog.Info("project saved", "id", id, "scenario_id", project.ScenarioID)
	s.deps.Metrics.Save(models.StatusSuccess)
	respondJSON(w, http.StatusOK, models.SaveProjectResponse{
		ID:      id.String(),
		Status:  models.StatusSuccess,
		Message: message,
	})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	project, err := s.deps.Store.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("failed to load project", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load")
		return
	}

	if project == nil {
		respondError(w, http.StatusNotFound, "project not found")
		return
	}

	respondJSON(w, http.StatusOK, project)
}
