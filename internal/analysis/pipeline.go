// Package analysis turns an uploaded recording into persisted fluency feedback.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/fluencycoach/internal/audio"
	"github.com/nikhilbhutani/fluencycoach/internal/enrich"
	"github.com/nikhilbhutani/fluencycoach/internal/metrics"
	"github.com/nikhilbhutani/fluencycoach/internal/store"
	"github.com/nikhilbhutani/fluencycoach/internal/stt"
)

const defaultCapabilityTimeout = 60 * time.Second

var (
	ErrSpeechNotRecognized = errors.New("speech not recognized")
	ErrPersistenceFailed   = errors.New("failed to persist analysis")
)

// CapabilityError reports that an external capability (decoder, recognizer) failed or timed out.
type CapabilityError struct {
	Capability string
	Err        error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Capability, e.Err)
}

func (e *CapabilityError) Unwrap() error { return e.Err }

type Normalizer interface {
	Normalize(ctx context.Context, clip audio.Clip) (*audio.Waveform, error)
}

type Enricher interface {
	Enrich(ctx context.Context, transcript string) enrich.Bundle
}

// Request is one recording and its client-reported length in seconds.
type Request struct {
	Clip     audio.Clip
	Duration float64
}

type Pipeline struct {
	normalizer  Normalizer
	transcriber stt.Transcriber
	metrics     *metrics.Engine
	enricher    Enricher
	store       store.Store
	timeout     time.Duration

	now   func() time.Time
	newID func() uuid.UUID
}

func NewPipeline(n Normalizer, t stt.Transcriber, m *metrics.Engine, e Enricher, s store.Store, timeout time.Duration) *Pipeline {
	if timeout <= 0 {
		timeout = defaultCapabilityTimeout
	}
	return &Pipeline{
		normalizer:  n,
		transcriber: t,
		metrics:     m,
		enricher:    e,
		store:       s,
		timeout:     timeout,
		now:         time.Now,
		newID:       uuid.New,
	}
}

// Analyze runs one recording through every stage and appends the result to the store.
// Degraded enrichment still succeeds; every other failure returns an error and persists nothing.
func (p *Pipeline) Analyze(ctx context.Context, req Request) (*Result, error) {
	if err := metrics.ValidateDuration(req.Duration); err != nil {
		return nil, err
	}

	transcript, err := p.transcribe(ctx, req.Clip)
	if err != nil {
		return nil, err
	}

	m, err := p.metrics.Compute(transcript.Text, req.Duration)
	if err != nil {
		return nil, err
	}

	enrichCtx, cancel := context.WithTimeout(ctx, p.timeout)
	bundle := p.enricher.Enrich(enrichCtx, transcript.Text)
	cancel()

	result := Assemble(transcript.Text, m, bundle, p.now(), p.newID())

	if err := p.store.Append(ctx, result.Record()); err != nil {
		slog.Error("failed to persist analysis", "id", result.ID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}

	slog.Info("analysis complete",
		"id", result.ID,
		"provider", transcript.Provider,
		"words", result.WordCount,
		"wpm", result.WPM,
		"degraded", result.Degraded,
	)
	return &result, nil
}

// transcribe owns the waveform for exactly as long as recognition needs it.
func (p *Pipeline) transcribe(ctx context.Context, clip audio.Clip) (stt.Transcript, error) {
	normCtx, cancelNorm := context.WithTimeout(ctx, p.timeout)
	defer cancelNorm()

	wf, err := p.normalizer.Normalize(normCtx, clip)
	if err != nil {
		if errors.Is(err, audio.ErrDecoderUnavailable) {
			return stt.Transcript{}, &CapabilityError{Capability: "audio decoder", Err: err}
		}
		return stt.Transcript{}, err
	}
	defer func() {
		if err := wf.Close(); err != nil {
			slog.Warn("failed to remove waveform", "path", wf.Path, "error", err)
		}
	}()

	sttCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	t, err := p.transcriber.Transcribe(sttCtx, wf)
	if err != nil {
		return stt.Transcript{}, &CapabilityError{Capability: "speech recognition", Err: err}
	}
	if t.Outcome != stt.Recognized {
		return stt.Transcript{}, ErrSpeechNotRecognized
	}
	return t, nil
}
