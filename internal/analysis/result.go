package analysis

import (
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/fluencycoach/internal/enrich"
	"github.com/nikhilbhutani/fluencycoach/internal/metrics"
	"github.com/nikhilbhutani/fluencycoach/internal/models"
)

// Result is the feedback returned for one recording. Language and GrammarFeedback
// are nil when their capability was unavailable.
type Result struct {
	ID              uuid.UUID `json:"id"`
	Transcript      string    `json:"transcript"`
	Language        *string   `json:"language"`
	WordCount       int       `json:"word_count"`
	WPM             float64   `json:"wpm"`
	FluencyScore    float64   `json:"fluency_score"`
	Fillers         []string  `json:"fillers"`
	GrammarFeedback *string   `json:"grammar_feedback"`
	Degraded        bool      `json:"degraded,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Assemble merges the measurements and enrichment of one transcript.
func Assemble(transcript string, m metrics.Metrics, b enrich.Bundle, now time.Time, id uuid.UUID) Result {
	r := Result{
		ID:           id,
		Transcript:   transcript,
		WordCount:    m.WordCount,
		WPM:          m.WPM,
		FluencyScore: m.Readability,
		Fillers:      m.Fillers,
		Degraded:     b.Degraded(),
		CreatedAt:    now.UTC(),
	}
	if r.Fillers == nil {
		r.Fillers = []string{}
	}
	if b.LanguageAvailable {
		lang := b.Language
		r.Language = &lang
	}
	if b.FeedbackAvailable {
		feedback := b.GrammarFeedback
		r.GrammarFeedback = &feedback
	}
	return r
}

func (r Result) Record() models.AnalysisRecord {
	return models.AnalysisRecord{
		ID:              r.ID,
		Transcript:      r.Transcript,
		GrammarFeedback: r.GrammarFeedback,
		FluencyScore:    r.FluencyScore,
		WordCount:       r.WordCount,
		WPM:             r.WPM,
		Fillers:         r.Fillers,
		Language:        r.Language,
		CreatedAt:       r.CreatedAt,
	}
}

// FromRecord rebuilds a Result from a stored row.
func FromRecord(rec models.AnalysisRecord) Result {
	fillers := rec.Fillers
	if fillers == nil {
		fillers = []string{}
	}
	return Result{
		ID:              rec.ID,
		Transcript:      rec.Transcript,
		Language:        rec.Language,
		WordCount:       rec.WordCount,
		WPM:             rec.WPM,
		FluencyScore:    rec.FluencyScore,
		Fillers:         fillers,
		GrammarFeedback: rec.GrammarFeedback,
		Degraded:        rec.Language == nil || rec.GrammarFeedback == nil,
		CreatedAt:       rec.CreatedAt.UTC(),
	}
}
