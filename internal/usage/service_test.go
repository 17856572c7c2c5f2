package usage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/fluencycoach/internal/llm"
)

func TestRecord(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ts := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO llm_usage_logs").
		WithArgs(pgxmock.AnyArg(), "openai", "gpt-3.5-turbo", 10, 5, 15, 0.0001, int64(250), "analyze", ts).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = NewService(mock).Record(context.Background(), llm.UsageRecord{
		Provider:     "openai",
		Model:        "gpt-3.5-turbo",
		InputTokens:  10,
		OutputTokens: 5,
		TotalTokens:  15,
		CostUSD:      0.0001,
		LatencyMs:    250,
		Endpoint:     "analyze",
		Timestamp:    ts,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO llm_usage_logs").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("relation does not exist"))

	err = NewService(mock).Record(context.Background(), llm.UsageRecord{Provider: "openai"})
	assert.ErrorContains(t, err, "insert LLM usage log")
}

func TestSummary(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	since := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT provider, model, COUNT\(\*\)`).
		WithArgs(since).
		WillReturnRows(pgxmock.NewRows([]string{"provider", "model", "total_calls", "total_tokens", "total_cost_usd"}).
			AddRow("openai", "gpt-4o", 3, 900, 0.02).
			AddRow("ollama", "llama3", 7, 4000, 0.0))

	got, err := NewService(mock).Summary(context.Background(), &since, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "gpt-4o", got[0].Model)
	assert.Equal(t, 3, got[0].TotalCalls)
	assert.Equal(t, 4000, got[1].TotalTokens)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryEmpty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT provider, model").
		WillReturnRows(pgxmock.NewRows([]string{"provider", "model", "total_calls", "total_tokens", "total_cost_usd"}))

	got, err := NewService(mock).Summary(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
