package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/fluencycoach/internal/llm"
	"github.com/nikhilbhutani/fluencycoach/internal/queue"
)

type UsageRecorder interface {
	Record(ctx context.Context, rec llm.UsageRecord) error
}

// UsageWorker persists usage records enqueued by the API process.
type UsageWorker struct {
	recorder UsageRecorder
}

func NewUsageWorker(r UsageRecorder) *UsageWorker {
	return &UsageWorker{recorder: r}
}

func (w *UsageWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	rec, err := queue.ParseUsageRecordTask(t)
	if err != nil {
		// A malformed payload will never succeed.
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	if err := w.recorder.Record(ctx, rec); err != nil {
		return fmt.Errorf("record usage: %w", err)
	}

	slog.Debug("usage recorded", "provider", rec.Provider, "model", rec.Model, "endpoint", rec.Endpoint)
	return nil
}
