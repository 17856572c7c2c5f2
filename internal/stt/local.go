package stt

import (
	"context"

	"github.com/nikhilbhutani/fluencycoach/internal/audio"
)

// LocalSTTConfig holds configuration for a local whisper server.
type LocalSTTConfig struct {
	BaseURL  string // default: "http://localhost:8178"
	Language string
}

// LocalSTT wraps OpenAISTT pointing at a local server exposing the OpenAI
// transcription API (whisper.cpp, faster-whisper-server, LocalAI).
type LocalSTT struct {
	*OpenAISTT
}

// NewLocalSTT creates a LocalSTT backed by a local whisper HTTP server.
func NewLocalSTT(cfg LocalSTTConfig) *LocalSTT {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:8178"
	}
	return &LocalSTT{
		OpenAISTT: NewOpenAISTT(OpenAISTTConfig{
			BaseURL:  baseURL,
			Language: cfg.Language,
			// No API key needed for local server
		}),
	}
}

func (l *LocalSTT) Name() string { return "local-whisper" }

func (l *LocalSTT) Transcribe(ctx context.Context, wf *audio.Waveform) (Transcript, error) {
	t, err := l.OpenAISTT.Transcribe(ctx, wf)
	if err != nil {
		return Transcript{}, err
	}
	t.Provider = l.Name()
	return t, nil
}
