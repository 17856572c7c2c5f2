package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/nikhilbhutani/fluencycoach/internal/models"
)

type UsageSummarizer interface {
	Summary(ctx context.Context, startDate, endDate *time.Time) ([]models.UsageSummary, error)
}

type UsageHandler struct {
	usage UsageSummarizer
}

// NewUsageHandler accepts a nil summarizer when the database is unavailable.
func NewUsageHandler(u UsageSummarizer) *UsageHandler {
	return &UsageHandler{usage: u}
}

func (h *UsageHandler) Usage(w http.ResponseWriter, r *http.Request) {
	if h.usage == nil {
		writeError(w, http.StatusServiceUnavailable, "usage ledger unavailable")
		return
	}

	var startDate, endDate *time.Time

	if s := r.URL.Query().Get("start_date"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err == nil {
			startDate = &t
		}
	}
	if s := r.URL.Query().Get("end_date"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err == nil {
			endDate = &t
		}
	}

	summary, err := h.usage.Summary(r.Context(), startDate, endDate)
	if err != nil {
		slog.Error("usage summary failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load usage")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"usage": summary})
}
