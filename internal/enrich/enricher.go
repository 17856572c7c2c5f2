// Package enrich adds language identification and AI grammar coaching to a transcript.
package enrich

import (
	"context"
	"log/slog"
	"strings"

	"github.com/abadojack/whatlanggo"

	"github.com/nikhilbhutani/fluencycoach/internal/llm"
	"github.com/nikhilbhutani/fluencycoach/internal/prompt"
)

const EndpointAnalyze = "analyze"

// LanguageDetector identifies the language of a text. ok is false when no language could be determined.
type LanguageDetector interface {
	Detect(text string) (code string, ok bool)
}

// WhatlangDetector identifies languages offline by trigram statistics.
// Very short inputs are unreliable; that is accepted rather than validated.
type WhatlangDetector struct{}

func (WhatlangDetector) Detect(text string) (string, bool) {
	code := whatlanggo.Detect(text).Lang.Iso6391()
	return code, code != ""
}

// Bundle is the natural-language enrichment of one transcript. Fields whose
// capability failed are left empty with their Available flag false.
type Bundle struct {
	Language          string
	LanguageAvailable bool
	GrammarFeedback   string
	FeedbackAvailable bool
}

// Degraded reports whether any enrichment is missing.
func (b Bundle) Degraded() bool {
	return !b.LanguageAvailable || !b.FeedbackAvailable
}

type Enricher struct {
	gateway  llm.Gateway
	detector LanguageDetector
}

func New(gw llm.Gateway, detector LanguageDetector) *Enricher {
	if detector == nil {
		detector = WhatlangDetector{}
	}
	return &Enricher{gateway: gw, detector: detector}
}

// Enrich never fails: a capability error degrades the bundle instead.
func (e *Enricher) Enrich(ctx context.Context, transcript string) Bundle {
	var b Bundle

	if code, ok := e.detector.Detect(transcript); ok {
		b.Language = code
		b.LanguageAvailable = true
	} else {
		slog.Warn("language detection inconclusive", "chars", len(transcript))
	}

	feedback, err := e.grammarFeedback(ctx, transcript)
	if err != nil {
		slog.Warn("grammar feedback unavailable", "error", err)
		return b
	}
	b.GrammarFeedback = feedback
	b.FeedbackAvailable = true
	return b
}

func (e *Enricher) grammarFeedback(ctx context.Context, transcript string) (string, error) {
	text, err := prompt.Render(prompt.GrammarFeedback, map[string]string{"transcript": transcript})
	if err != nil {
		return "", err
	}
	resp, err := e.gateway.Chat(ctx, llm.UserPrompt(EndpointAnalyze, text))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}
