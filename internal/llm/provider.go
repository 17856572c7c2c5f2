package llm

import (
	"context"
	"time"
)

// Provider abstracts an LLM provider (OpenAI, Anthropic, Ollama, etc.)
type Provider interface {
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Name() string
	Models() []string
}

// Gateway provides multi-provider routing with fallback and retry.
type Gateway interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	// ListModels reports every configured provider/model pair, sorted.
	ListModels() []ModelInfo
}

// UsageRecorder receives one record per successful completion.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, rec UsageRecord) error
}

// Message represents a single chat message.
type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// ChatRequest is the input for chat completions.
type ChatRequest struct {
	Provider    string    `json:"provider,omitempty"`
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	TopP        float64   `json:"top_p,omitempty"`
	Stop        []string  `json:"stop,omitempty"`

	// Endpoint tags the usage record with the feature that made the call.
	Endpoint string `json:"-"`
}

// UserPrompt builds a single-message request.
func UserPrompt(endpoint, prompt string) ChatRequest {
	return ChatRequest{
		Messages: []Message{{Role: "user", Content: prompt}},
		Endpoint: endpoint,
	}
}

// ChatResponse is the output from chat completions.
type ChatResponse struct {
	ID           string  `json:"id"`
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	Content      string  `json:"content"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalTokens  int     `json:"total_tokens"`
	CostUSD      float64 `json:"cost_usd"`
	LatencyMs    int64   `json:"latency_ms"`
}

// ModelInfo describes an available model.
type ModelInfo struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// UsageRecord tracks a single LLM API call for cost tracking.
type UsageRecord struct {
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	TotalTokens  int       `json:"total_tokens"`
	CostUSD      float64   `json:"cost_usd"`
	LatencyMs    int64     `json:"latency_ms"`
	Endpoint     string    `json:"endpoint"`
	Timestamp    time.Time `json:"timestamp"`
}
