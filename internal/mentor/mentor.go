// Package mentor answers free-form questions as a spoken English coach.
package mentor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nikhilbhutani/fluencycoach/internal/llm"
	"github.com/nikhilbhutani/fluencycoach/internal/prompt"
)

const EndpointChat = "chat"

var ErrEmptyInput = errors.New("no message provided")

const defaultTimeout = 60 * time.Second

type Mentor struct {
	gateway llm.Gateway
	timeout time.Duration
}

// New builds a Mentor whose replies are bounded by timeout, including gateway
// retries and fallback. A non-positive timeout selects 60s.
func New(gw llm.Gateway, timeout time.Duration) *Mentor {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Mentor{gateway: gw, timeout: timeout}
}

// Reply is stateless: each message is answered without conversation history.
func (m *Mentor) Reply(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyInput
	}

	text, err := prompt.Render(prompt.MentorReply, map[string]string{"message": message})
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	resp, err := m.gateway.Chat(ctx, llm.UserPrompt(EndpointChat, text))
	if err != nil {
		return "", fmt.Errorf("mentor reply: %w", err)
	}
	return strings.TrimSpace(resp.Content), nil
}
