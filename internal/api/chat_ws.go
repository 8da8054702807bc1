package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/terra-clan/archsim/internal/models"
)

const chatWriteWait = 10 * time.Second

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origin == s.config.AllowedOrigin
		},
	}
}

// handleChatWS answers each ChatRequest frame with one ChatResponse frame.
// Every frame carries its own transcript; nothing is kept between frames.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	slog.Info("chat websocket connected", "remote_addr", r.RemoteAddr)

	ctx := r.Context()
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("websocket read error", "error", err)
			}
			break
		}

		var req models.ChatRequest
		resp := models.ChatErrorResponse()
		if err := json.Unmarshal(message, &req); err != nil {
			slog.Debug("invalid chat frame", "error", err)
			s.deps.Metrics.Chat(models.StatusError)
		} else {
			resp = s.chat(ctx, req)
		}

		if err := s.sendChatMessage(conn, resp); err != nil {
			break
		}
	}

	slog.Info("chat websocket disconnected", "remote_addr", r.RemoteAddr)
}

func (s *Server) sendChatMessage(conn *websocket.Conn, resp models.ChatResponse) error {
	_ = conn.SetWriteDeadline(time.Now().Add(chatWriteWait))
	if err := conn.WriteJSON(resp); err != nil {
		slog.Debug("failed to send chat message", "error", err)
		return err
	}
	return nil
}
