package metrics

import (
	"math"
	"strings"

	"github.com/jdkato/prose/summarize"
)

// FleschScorer computes Flesch Reading Ease:
// 206.835 - 1.015*(words/sentences) - 84.6*(syllables/words).
type FleschScorer struct{}

func (FleschScorer) Score(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	doc := summarize.NewDocument(text)
	if doc.NumWords == 0 {
		return 0
	}

	score := doc.FleschReadingEase()
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0
	}
	return Round2(score)
}
