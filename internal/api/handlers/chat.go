package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nikhilbhutani/fluencycoach/internal/mentor"
)

type Replier interface {
	Reply(ctx context.Context, message string) (string, error)
}

type ChatHandler struct {
	mentor Replier
}

func NewChatHandler(m Replier) *ChatHandler {
	return &ChatHandler{mentor: m}
}

type chatRequest struct {
	Message string `json:"message"`
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.mentor.Reply(r.Context(), req.Message)
	if errors.Is(err, mentor.ErrEmptyInput) {
		writeError(w, http.StatusBadRequest, "No message provided")
		return
	}
	if err != nil {
		slog.Error("mentor reply failed", "error", err)
		writeError(w, http.StatusBadGateway, "mentor unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
