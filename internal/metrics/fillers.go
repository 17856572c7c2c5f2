package metrics

import (
	"regexp"
	"strings"
)

var DefaultFillers = []string{"um", "uh", "like", "you know", "so", "actually", "basically"}

// FillerDetector finds vocabulary phrases as case-insensitive whole words.
// Multi-word phrases match across any run of whitespace.
type FillerDetector struct {
	phrases  []string
	patterns []*regexp.Regexp
}

func NewFillerDetector(vocabulary []string) *FillerDetector {
	d := &FillerDetector{}
	seen := make(map[string]bool)
	for _, v := range vocabulary {
		words := strings.Fields(strings.ToLower(v))
		if len(words) == 0 {
			continue
		}
		phrase := strings.Join(words, " ")
		if seen[phrase] {
			continue
		}
		seen[phrase] = true

		quoted := make([]string, len(words))
		for i, w := range words {
			quoted[i] = regexp.QuoteMeta(w)
		}
		// RE2's \b is ASCII-only, so boundaries are spelled out in Unicode classes.
		pattern := `(?i)(?:^|[^\p{L}\p{N}_])` + strings.Join(quoted, `\s+`) + `(?:$|[^\p{L}\p{N}_])`

		d.phrases = append(d.phrases, phrase)
		d.patterns = append(d.patterns, regexp.MustCompile(pattern))
	}
	return d
}

// Detect returns each vocabulary phrase present in text once, in vocabulary order.
func (d *FillerDetector) Detect(text string) []string {
	found := []string{}
	for i, re := range d.patterns {
		if re.MatchString(text) {
			found = append(found, d.phrases[i])
		}
	}
	return found
}
