package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nikhilbhutani/fluencycoach/internal/translate"
)

type Translator interface {
	Translate(ctx context.Context, text, to string) (string, error)
}

type TranslateHandler struct {
	translator Translator
}

func NewTranslateHandler(t Translator) *TranslateHandler {
	return &TranslateHandler{translator: t}
}

type translateRequest struct {
	Text string `json:"text"`
	To   string `json:"to"`
}

func (h *TranslateHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := h.translator.Translate(r.Context(), req.Text, req.To)
	if errors.Is(err, translate.ErrEmptyInput) {
		writeError(w, http.StatusBadRequest, "No text provided")
		return
	}
	if err != nil {
		slog.Error("translation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "translation failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"translated": out})
}
