package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/terra-clan/archsim/internal/models"
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("invalid chat request", "error", err)
		s.deps.Metrics.Chat(models.StatusError)
		respondJSON(w, http.StatusBadRequest, models.ChatErrorResponse())
		return
	}

	// The upstream call completes even if the client goes away.
	respondJSON(w, http.StatusOK, s.chat(context.WithoutCancel(r.Context()), req))
}

// chat runs one stateless exchange and maps failures to the error envelope
func (s *Server) chat(ctx context.Context, req models.ChatRequest) models.ChatResponse {
	exchange, err := s.deps.Orchestrator.Reply(ctx, req)
	if err != nil {
		slog.Error("chat upstream call failed",
			"scenario_id", req.ScenarioID,
			"partner_role", req.PartnerRole,
			"error", err,
		)
		s.deps.Metrics.Chat(models.StatusError)
		return models.ChatErrorResponse()
	}

	s.deps.Metrics.Chat(models.StatusSuccess)
	return models.ChatResponse{Reply: exchange.Reply, Status: models.StatusSuccess}
}
