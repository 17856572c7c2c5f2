package translate

import (
	"context"
	"errors"
	"strings"

	"github.com/nikhilbhutani/fluencycoach/internal/llm"
	"github.com/nikhilbhutani/fluencycoach/internal/prompt"
)

const EndpointTranslate = "translate"

// LLMTranslator asks the language-model gateway for a translation.
type LLMTranslator struct {
	gateway llm.Gateway
}

func NewLLMTranslator(gw llm.Gateway) *LLMTranslator {
	return &LLMTranslator{gateway: gw}
}

func (t *LLMTranslator) Name() string { return "llm" }

func (t *LLMTranslator) Translate(ctx context.Context, text, target string) (string, error) {
	p, err := prompt.Render(prompt.Translation, map[string]string{"target": target, "text": text})
	if err != nil {
		return "", err
	}
	resp, err := t.gateway.Chat(ctx, llm.UserPrompt(EndpointTranslate, p))
	if err != nil {
		return "", err
	}
	out := strings.TrimSpace(resp.Content)
	if out == "" {
		return "", errors.New("empty translation")
	}
	return out, nil
}
