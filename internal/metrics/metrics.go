// Package metrics derives objective speech measurements from a transcript.
package metrics

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidDuration = errors.New("invalid or zero duration")

// Metrics holds the quantitative measurements for one transcript.
type Metrics struct {
	WordCount   int      `json:"word_count"`
	WPM         float64  `json:"wpm"`
	Readability float64  `json:"fluency_score"`
	Fillers     []string `json:"fillers"`
}

// ReadabilityScorer rates how easy a text is to read.
type ReadabilityScorer interface {
	Score(text string) float64
}

type Engine struct {
	scorer  ReadabilityScorer
	fillers *FillerDetector
}

// NewEngine builds an Engine. An empty vocabulary selects DefaultFillers and a
// nil scorer selects FleschScorer.
func NewEngine(vocabulary []string, scorer ReadabilityScorer) *Engine {
	if len(vocabulary) == 0 {
		vocabulary = DefaultFillers
	}
	if scorer == nil {
		scorer = FleschScorer{}
	}
	return &Engine{
		scorer:  scorer,
		fillers: NewFillerDetector(vocabulary),
	}
}

// Compute measures transcript spoken over durationSeconds.
func (e *Engine) Compute(transcript string, durationSeconds float64) (Metrics, error) {
	if err := ValidateDuration(durationSeconds); err != nil {
		return Metrics{}, err
	}

	words := len(strings.Fields(transcript))
	minutes := durationSeconds / 60

	// Durations near zero are valid floats but overflow the rate.
	wpm := Round2(float64(words) / minutes)
	if math.IsInf(wpm, 0) || math.IsNaN(wpm) {
		return Metrics{}, ErrInvalidDuration
	}

	return Metrics{
		WordCount:   words,
		WPM:         wpm,
		Readability: e.scorer.Score(transcript),
		Fillers:     e.fillers.Detect(transcript),
	}, nil
}

// ValidateDuration accepts only finite, strictly positive durations.
func ValidateDuration(seconds float64) error {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return ErrInvalidDuration
	}
	return nil
}

// ParseDuration parses a client-supplied duration in seconds.
func ParseDuration(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrInvalidDuration
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, ErrInvalidDuration
	}
	if err := ValidateDuration(seconds); err != nil {
		return 0, err
	}
	return seconds, nil
}

func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
