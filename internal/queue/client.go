package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/fluencycoach/internal/config"
	"github.com/nikhilbhutani/fluencycoach/internal/llm"
)

const QueueLow = "low"

type Client struct {
	client *asynq.Client
}

func NewClient(cfg config.RedisConfig) *Client {
	return &Client{
		client: asynq.NewClient(RedisOpt(cfg)),
	}
}

// RedisOpt maps the shared Redis settings onto asynq's connection options.
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// RecordUsage implements llm.UsageRecorder by handing the record to the worker.
func (c *Client) RecordUsage(ctx context.Context, rec llm.UsageRecord) error {
	task, err := NewUsageRecordTask(rec)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task, asynq.Queue(QueueLow), asynq.MaxRetry(5), asynq.Timeout(30*time.Second))
}

func (c *Client) enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) error {
	if _, err := c.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	return nil
}
