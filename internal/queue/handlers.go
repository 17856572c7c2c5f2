package queue

import (
	"context"

	"github.com/hibiken/asynq"
)

type HandlersRegistry struct {
	mux *asynq.ServeMux
}

func NewHandlersRegistry() *HandlersRegistry {
	return &HandlersRegistry{
		mux: asynq.NewServeMux(),
	}
}

func (r *HandlersRegistry) Register(taskType string, fn func(context.Context, *asynq.Task) error) {
	r.mux.Handle(taskType, asynq.HandlerFunc(fn))
}

func (r *HandlersRegistry) Mux() *asynq.ServeMux {
	return r.mux
}
