package stt

import (
	"context"
	"fmt"
	"strings"

	"github.com/nikhilbhutani/fluencycoach/internal/audio"
	"github.com/nikhilbhutani/fluencycoach/internal/config"
)

// Outcome distinguishes recognized speech from audio that decoded fine but held no words.
type Outcome int

const (
	Recognized Outcome = iota
	NotRecognized
)

func (o Outcome) String() string {
	if o == Recognized {
		return "recognized"
	}
	return "not_recognized"
}

// Transcript holds the transcription result. Text is empty unless Outcome is Recognized.
type Transcript struct {
	Text     string  `json:"text"`
	Outcome  Outcome `json:"outcome"`
	Language string  `json:"language,omitempty"`
	Provider string  `json:"provider"`
}

// Transcriber is the interface for speech-to-text backends. Errors are reserved for
// transport or backend failures; silence is reported through Transcript.Outcome.
type Transcriber interface {
	Transcribe(ctx context.Context, wf *audio.Waveform) (Transcript, error)
	Name() string
}

// Whisper variants emit these markers instead of an empty string for silent input.
var blankMarkers = []string{"[blank_audio]", "[silence]", "(silence)", "[no speech]", "[music]"}

func newTranscript(text, language, provider string) Transcript {
	text = strings.TrimSpace(text)
	t := Transcript{Language: language, Provider: provider}

	stripped := strings.ToLower(text)
	for _, m := range blankMarkers {
		stripped = strings.ReplaceAll(stripped, m, "")
	}
	if strings.TrimSpace(stripped) == "" {
		t.Outcome = NotRecognized
		return t
	}

	t.Text = text
	t.Outcome = Recognized
	return t
}

// New builds the backend selected by cfg.Backend.
func New(cfg config.STTConfig) (Transcriber, error) {
	switch cfg.Backend {
	case "openai", "":
		return NewOpenAISTT(OpenAISTTConfig{
			APIKey:   cfg.OpenAIKey,
			BaseURL:  cfg.OpenAIBaseURL,
			Model:    cfg.OpenAIModel,
			Language: cfg.Language,
		}), nil
	case "local":
		return NewLocalSTT(LocalSTTConfig{BaseURL: cfg.LocalBaseURL, Language: cfg.Language}), nil
	default:
		return nil, fmt.Errorf("unknown STT backend %q", cfg.Backend)
	}
}
