package stt

import (
	"context"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/nikhilbhutani/fluencycoach/internal/audio"
)

// OpenAISTTConfig holds configuration for the OpenAI STT backend.
type OpenAISTTConfig struct {
	APIKey   string
	BaseURL  string // default: "https://api.openai.com/v1"
	Model    string // default: "whisper-1"
	Language string // optional ISO-639-1 hint
}

// OpenAISTT transcribes audio using OpenAI's Whisper API (or a compatible endpoint).
type OpenAISTT struct {
	cfg    OpenAISTTConfig
	client *openai.Client
}

// NewOpenAISTT creates an OpenAISTT with sensible defaults applied.
func NewOpenAISTT(cfg OpenAISTTConfig) *OpenAISTT {
	if cfg.Model == "" {
		cfg.Model = openai.Whisper1
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: 300 * time.Second}

	return &OpenAISTT{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientCfg),
	}
}

func (o *OpenAISTT) Name() string { return "openai-whisper" }

// Transcribe uploads the waveform file and classifies the returned text.
func (o *OpenAISTT) Transcribe(ctx context.Context, wf *audio.Waveform) (Transcript, error) {
	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.cfg.Model,
		FilePath: wf.Path,
		Format:   openai.AudioResponseFormatVerboseJSON,
		Language: o.cfg.Language,
	})
	if err != nil {
		return Transcript{}, fmt.Errorf("transcription request: %w", err)
	}

	return newTranscript(resp.Text, resp.Language, o.Name()), nil
}
