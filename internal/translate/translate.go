// Package translate renders text into another language through a pluggable backend.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nikhilbhutani/fluencycoach/internal/cache"
	"github.com/nikhilbhutani/fluencycoach/internal/config"
	"github.com/nikhilbhutani/fluencycoach/internal/llm"
)

var ErrEmptyInput = errors.New("no text provided")

// Translator is implemented by each translation backend. target is an ISO 639-1 code.
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
	Name() string
}

// Error wraps any backend failure.
type Error struct {
	Backend string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("translation failed: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

const defaultTimeout = 60 * time.Second

type Service struct {
	translator    Translator
	defaultTarget string
	timeout       time.Duration
}

// NewService bounds every backend call by timeout. A non-positive timeout selects 60s.
func NewService(t Translator, defaultTarget string, timeout time.Duration) *Service {
	if defaultTarget == "" {
		defaultTarget = "en"
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Service{translator: t, defaultTarget: defaultTarget, timeout: timeout}
}

// New wires the backend selected by cfg.Backend. A nil cache disables caching.
func New(cfg config.TranslateConfig, gw llm.Gateway, c *cache.Cache, timeout time.Duration) (*Service, error) {
	var t Translator
	switch cfg.Backend {
	case "llm", "":
		t = NewLLMTranslator(gw)
	case "libretranslate":
		t = NewLibreTranslate(cfg.LibreTranslateURL, cfg.LibreTranslateKey)
	default:
		return nil, fmt.Errorf("unknown translation backend: %s", cfg.Backend)
	}
	if c != nil {
		t = NewCached(t, c, cfg.CacheTTL)
	}
	return NewService(t, cfg.DefaultTarget, timeout), nil
}

// Translate renders text into the language to, or the default target when to is empty.
func (s *Service) Translate(ctx context.Context, text, to string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}
	target := strings.ToLower(strings.TrimSpace(to))
	if target == "" {
		target = s.defaultTarget
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.translator.Translate(ctx, text, target)
	if err != nil {
		return "", &Error{Backend: s.translator.Name(), Err: err}
	}
	return out, nil
}
