package llm

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/nikhilbhutani/fluencycoach/internal/config"
)

type gateway struct {
	providers        map[string]Provider
	defaultProvider  string
	defaultModel     string
	fallbackProvider string
	fallbackModel    string
	maxRetries       int
	backoff          func(attempt int) time.Duration
	usage            UsageRecorder
}

type Option func(*gateway)

// WithUsageRecorder reports every successful completion to rec.
func WithUsageRecorder(rec UsageRecorder) Option {
	return func(g *gateway) { g.usage = rec }
}

// WithProvider registers p under its own name, replacing any configured provider.
func WithProvider(p Provider) Option {
	return func(g *gateway) { g.providers[p.Name()] = p }
}

func NewGateway(cfg config.LLMConfig, opts ...Option) Gateway {
	g := &gateway{
		providers:        make(map[string]Provider),
		defaultProvider:  cfg.DefaultProvider,
		defaultModel:     cfg.DefaultModel,
		fallbackProvider: cfg.FallbackProvider,
		fallbackModel:    cfg.FallbackModel,
		maxRetries:       cfg.MaxRetries,
		backoff:          quadraticBackoff,
	}

	if cfg.OpenAIKey != "" {
		g.providers["openai"] = NewOpenAIProvider(cfg.OpenAIKey)
	}
	if cfg.AnthropicKey != "" {
		g.providers["anthropic"] = NewAnthropicProvider(cfg.AnthropicKey)
	}
	if cfg.OllamaURL != "" {
		g.providers["ollama"] = NewOllamaProvider(cfg.OllamaURL)
	}

	for _, opt := range opts {
		opt(g)
	}
	return g
}

func quadraticBackoff(attempt int) time.Duration {
	return time.Duration(attempt*attempt) * 500 * time.Millisecond
}

func (g *gateway) provider(name string) (Provider, error) {
	p, ok := g.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q not configured", name)
	}
	return p, nil
}

func (g *gateway) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	providerName := req.Provider
	if providerName == "" {
		providerName = g.defaultProvider
		if req.Model == "" {
			req.Model = g.defaultModel
		}
	}

	resp, err := g.chatWithRetry(ctx, providerName, req)
	if err != nil && ctx.Err() == nil && g.fallbackProvider != "" && g.fallbackProvider != providerName {
		slog.Warn("primary provider failed, trying fallback",
			"primary", providerName,
			"fallback", g.fallbackProvider,
			"error", err,
		)
		fallbackReq := req
		fallbackReq.Model = g.fallbackModel
		resp, err = g.chatWithRetry(ctx, g.fallbackProvider, fallbackReq)
	}
	if err != nil {
		return nil, err
	}

	g.recordUsage(ctx, req.Endpoint, resp)
	return resp, nil
}

func (g *gateway) chatWithRetry(ctx context.Context, providerName string, req ChatRequest) (*ChatResponse, error) {
	p, err := g.provider(providerName)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(g.backoff(attempt)):
			}
			slog.Debug("retrying LLM call", "provider", providerName, "attempt", attempt)
		}

		resp, err := p.ChatCompletion(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("all retries exhausted for %s: %w", providerName, lastErr)
}

func (g *gateway) recordUsage(ctx context.Context, endpoint string, resp *ChatResponse) {
	if g.usage == nil {
		return
	}
	err := g.usage.RecordUsage(ctx, UsageRecord{
		Provider:     resp.Provider,
		Model:        resp.Model,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
		TotalTokens:  resp.TotalTokens,
		CostUSD:      resp.CostUSD,
		LatencyMs:    resp.LatencyMs,
		Endpoint:     endpoint,
		Timestamp:    time.Now().UTC(),
	})
	if err != nil {
		slog.Warn("failed to record LLM usage", "endpoint", endpoint, "error", err)
	}
}

func (g *gateway) ListModels() []ModelInfo {
	var models []ModelInfo
	for _, p := range g.providers {
		for _, m := range p.Models() {
			models = append(models, ModelInfo{Provider: p.Name(), Model: m})
		}
	}
	sort.Slice(models, func(i, j int) bool {
		if models[i].Provider != models[j].Provider {
			return models[i].Provider < models[j].Provider
		}
		return models[i].Model < models[j].Model
	})
	return models
}
