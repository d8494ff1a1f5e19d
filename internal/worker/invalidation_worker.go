package worker

import (
	"context"
	"log/slog"

	"expensetrack/internal/amqp"
	"expensetrack/internal/analytics"
	applog "expensetrack/internal/log"
)

// InvalidationWorker drops the analytics caches whenever a mutation message
// arrives, so the next read rebuilds from fresh backend data instead of
// waiting out the TTL.
type InvalidationWorker struct {
	engine *analytics.Engine
	client *amqp.Client
}

func NewInvalidationWorker(engine *analytics.Engine, client *amqp.Client) *InvalidationWorker {
	return &InvalidationWorker{
		engine: engine,
		client: client,
	}
}

// Run consumes mutation messages until the context ends, reconnecting on
// broker outages.
func (w *InvalidationWorker) Run(ctx context.Context) error {
	return w.client.ConsumeMutationsWithRetry(ctx, func(msg *amqp.MutationMessage) error {
		return w.HandleMutation(ctx, msg)
	})
}

// HandleMutation processes a single mutation message.
func (w *InvalidationWorker) HandleMutation(ctx context.Context, msg *amqp.MutationMessage) error {
	slog.InfoContext(ctx, "Processing mutation message",
		applog.FieldComponent, applog.ComponentWorker,
		"entity", msg.Entity,
		"action", msg.Action,
		"id", msg.ID)

	w.engine.Invalidate()
	return nil
}
