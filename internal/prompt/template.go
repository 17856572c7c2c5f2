package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

// Fixed prompts for the coaching features. Placeholders use {{name}}.
const (
	GrammarFeedback = "Correct the grammar in this sentence and give friendly suggestions to improve spoken English:\n\n{{transcript}}"
	MentorReply     = "You are a friendly spoken English coach. Reply to: {{message}}"
	Translation     = "Translate the following text into the language with ISO 639-1 code {{target}}. " +
		"Reply with the translation only, without quotes or commentary.\n\n{{text}}"
)

var variablePattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Render replaces {{variable}} placeholders in the template with values from vars.
// Substituted values are not rescanned, so user text containing braces is inserted verbatim.
func Render(template string, vars map[string]string) (string, error) {
	if missing := findMissingVars(template, vars); len(missing) > 0 {
		return "", fmt.Errorf("missing template variables: %s", strings.Join(missing, ", "))
	}

	return variablePattern.ReplaceAllStringFunc(template, func(match string) string {
		return vars[match[2:len(match)-2]]
	}), nil
}

// ExtractVariables returns the distinct variable names in template, in order of appearance.
func ExtractVariables(template string) []string {
	matches := variablePattern.FindAllStringSubmatch(template, -1)
	seen := make(map[string]bool)
	var vars []string
	for _, m := range matches {
		if !seen[m[1]] {
			vars = append(vars, m[1])
			seen[m[1]] = true
		}
	}
	return vars
}

func findMissingVars(template string, vars map[string]string) []string {
	var missing []string
	for _, v := range ExtractVariables(template) {
		if _, ok := vars[v]; !ok {
			missing = append(missing, v)
		}
	}
	return missing
}
