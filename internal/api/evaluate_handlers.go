package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/terra-clan/archsim/internal/models"
)

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil || payload == nil {
		slog.Warn("invalid evaluation payload", "error", err)
		s.deps.Metrics.Evaluation(models.StatusError)
		respondJSON(w, http.StatusOK, models.EvaluationErrorResult())
		return
	}

	result := s.deps.Evaluator.Evaluate(context.WithoutCancel(r.Context()), payload)

	slog.Info("evaluation finished", "status", result.Status, "score", result.Score)
	respondJSON(w, http.StatusOK, result)
}
