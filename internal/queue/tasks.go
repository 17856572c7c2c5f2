package queue

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/fluencycoach/internal/llm"
)

const TypeUsageRecord = "usage:record"

// NewUsageRecordTask carries one LLM usage record to the worker.
func NewUsageRecordTask(rec llm.UsageRecord) (*asynq.Task, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return asynq.NewTask(TypeUsageRecord, data), nil
}

func ParseUsageRecordTask(t *asynq.Task) (llm.UsageRecord, error) {
	var rec llm.UsageRecord
	if err := json.Unmarshal(t.Payload(), &rec); err != nil {
		return rec, fmt.Errorf("unmarshal payload: %w", err)
	}
	return rec, nil
}
