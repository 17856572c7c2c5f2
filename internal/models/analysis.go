package models

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisRecord is one persisted analysis. Nullable columns are pointers.
type AnalysisRecord struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Transcript      string    `json:"transcript" db:"transcript"`
	GrammarFeedback *string   `json:"grammar_feedback" db:"grammar_feedback"`
	FluencyScore    float64   `json:"fluency_score" db:"fluency_score"`
	WordCount       int       `json:"word_count" db:"word_count"`
	WPM             float64   `json:"wpm" db:"wpm"`
	Fillers         []string  `json:"fillers" db:"fillers"`
	Language        *string   `json:"language" db:"language"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
