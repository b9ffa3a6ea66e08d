package amqp

import (
	"context"

	"budgetplanner/internal/log"
	"budgetplanner/internal/store"
)

// Publisher is the part of Client the observer needs.
type Publisher interface {
	PublishEvent(ctx context.Context, msg *TransactionEventMessage) error
}

// NewObserver returns a store subscriber that publishes every mutation.
// Reloaded events are local and not published. Publish failures are
// logged; they never affect the mutation.
func NewObserver(ctx context.Context, p Publisher, logger *log.Logger) func(store.Event) {
	logger = log.OrDefault(logger).WithComponent(log.ComponentAMQP)
	return func(ev store.Event) {
		if ev.Kind == store.Reloaded {
			return
		}
		msg := NewTransactionEventMessage(ev)
		if err := p.PublishEvent(ctx, msg); err != nil {
			logger.WarnContext(ctx, "Failed to publish transaction event",
				log.FieldOperation, log.OpPublish,
				log.FieldEvent, msg.Kind,
				log.FieldRevision, msg.Revision,
				log.FieldError, err)
		}
	}
}
