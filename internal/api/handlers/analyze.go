package handlers

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/nikhilbhutani/fluencycoach/internal/analysis"
	"github.com/nikhilbhutani/fluencycoach/internal/audio"
	"github.com/nikhilbhutani/fluencycoach/internal/metrics"
)

const multipartMemory = 8 << 20

var audioFields = []string{"audio", "file"}

type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error)
}

type AnalyzeHandler struct {
	analyzer  Analyzer
	maxUpload int64
}

func NewAnalyzeHandler(a Analyzer, maxUpload int64) *AnalyzeHandler {
	return &AnalyzeHandler{analyzer: a, maxUpload: maxUpload}
}

func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Audio upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "No audio uploaded")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, ok := audioPart(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "No audio uploaded")
		return
	}
	defer file.Close()

	duration, err := metrics.ParseDuration(r.FormValue("duration"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or zero duration")
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), analysis.Request{
		Clip: audio.Clip{
			Data:   file,
			Format: audio.FormatFromFilename(header.Filename),
		},
		Duration: duration,
	})
	if err != nil {
		status, msg := analyzeError(err)
		if status >= http.StatusInternalServerError {
			slog.Error("analysis failed", "status", status, "error", err)
		}
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// audioPart returns the first non-empty upload under one of the accepted field names.
func audioPart(r *http.Request) (multipart.File, *multipart.FileHeader, bool) {
	for _, field := range audioFields {
		file, header, err := r.FormFile(field)
		if err != nil {
			continue
		}
		if header.Size == 0 {
			file.Close()
			continue
		}
		return file, header, true
	}
	return nil, nil, false
}

func analyzeError(err error) (int, string) {
	var capErr *analysis.CapabilityError
	switch {
	case errors.Is(err, metrics.ErrInvalidDuration):
		return http.StatusBadRequest, "Invalid or zero duration"
	case errors.Is(err, audio.ErrEmptyAudio):
		return http.StatusBadRequest, "No audio uploaded"
	case errors.Is(err, audio.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, "Unsupported audio format"
	case errors.Is(err, analysis.ErrSpeechNotRecognized):
		return http.StatusBadRequest, "Speech not recognized"
	case errors.As(err, &capErr):
		return http.StatusBadGateway, capErr.Capability + " unavailable"
	case errors.Is(err, analysis.ErrPersistenceFailed):
		return http.StatusInternalServerError, "Failed to save analysis"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
