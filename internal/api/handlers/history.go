package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nikhilbhutani/fluencycoach/internal/analysis"
	"github.com/nikhilbhutani/fluencycoach/internal/store"
)

const maxHistoryLimit = 100

type HistoryHandler struct {
	store store.Store
}

func NewHistoryHandler(s store.Store) *HistoryHandler {
	return &HistoryHandler{store: s}
}

func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = 20
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	records, err := h.store.List(r.Context(), limit, offset)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	results := make([]analysis.Result, len(records))
	for i, rec := range records {
		results[i] = analysis.FromRecord(rec)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"analyses": results, "count": len(results)})
}

func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid analysis ID")
		return
	}

	rec, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analysis.FromRecord(*rec))
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "analysis not found")
	case errors.Is(err, store.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "history unavailable")
	default:
		slog.Error("history query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
	}
}
