package models

import (
	"time"

	"github.com/google/uuid"
)

type LLMUsageLog struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Provider     string    `json:"provider" db:"provider"`
	Model        string    `json:"model" db:"model"`
	InputTokens  int       `json:"input_tokens" db:"input_tokens"`
	OutputTokens int       `json:"output_tokens" db:"output_tokens"`
	TotalTokens  int       `json:"total_tokens" db:"total_tokens"`
	CostUSD      float64   `json:"cost_usd" db:"cost_usd"`
	LatencyMs    int       `json:"latency_ms" db:"latency_ms"`
	Endpoint     string    `json:"endpoint" db:"endpoint"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// UsageSummary aggregates usage per provider and model.
type UsageSummary struct {
	Provider     string  `json:"provider" db:"provider"`
	Model        string  `json:"model" db:"model"`
	TotalCalls   int     `json:"total_calls" db:"total_calls"`
	TotalTokens  int     `json:"total_tokens" db:"total_tokens"`
	TotalCostUSD float64 `json:"total_cost_usd" db:"total_cost_usd"`
}
