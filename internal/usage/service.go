// Package usage keeps the ledger of language-model calls and their cost.
package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nikhilbhutani/fluencycoach/internal/llm"
	"github.com/nikhilbhutani/fluencycoach/internal/models"
)

type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Service struct {
	db DB
}

func NewService(db DB) *Service {
	return &Service{db: db}
}

func (s *Service) Record(ctx context.Context, rec llm.UsageRecord) error {
	createdAt := rec.Timestamp
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO llm_usage_logs (id, provider, model, input_tokens, output_tokens, total_tokens, cost_usd, latency_ms, endpoint, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.New(), rec.Provider, rec.Model, rec.InputTokens, rec.OutputTokens,
		rec.TotalTokens, rec.CostUSD, rec.LatencyMs, rec.Endpoint, createdAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert LLM usage log: %w", err)
	}
	return nil
}

// Summary aggregates usage per provider and model, most expensive first.
// Nil bounds are open.
func (s *Service) Summary(ctx context.Context, startDate, endDate *time.Time) ([]models.UsageSummary, error) {
	query := `SELECT provider, model, COUNT(*) AS total_calls,
			         COALESCE(SUM(total_tokens), 0) AS total_tokens,
			         COALESCE(SUM(cost_usd), 0) AS total_cost_usd
			  FROM llm_usage_logs WHERE 1=1`
	var args []any
	argIdx := 1

	if startDate != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, *startDate)
		argIdx++
	}
	if endDate != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, *endDate)
	}

	query += " GROUP BY provider, model ORDER BY total_cost_usd DESC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query usage summary: %w", err)
	}
	defer rows.Close()

	summaries := []models.UsageSummary{}
	for rows.Next() {
		var us models.UsageSummary
		if err := rows.Scan(&us.Provider, &us.Model, &us.TotalCalls, &us.TotalTokens, &us.TotalCostUSD); err != nil {
			return nil, fmt.Errorf("scan usage summary: %w", err)
		}
		summaries = append(summaries, us)
	}
	return summaries, rows.Err()
}
