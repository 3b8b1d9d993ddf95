package ports

import (
	"context"

	"golang-wa-broadcast/internal/domain"
)

// EventPublisher publishes per-recipient delivery events.
type EventPublisher interface {
	// Publish sends a single domain.DeliveryEvent to the queue.
	Publish(ctx context.Context, ev domain.DeliveryEvent) error
}

// EventConsumer consumes delivery events from the queue.
type EventConsumer interface {
	// Consume starts delivery of events; each is passed to the handler.
	// Blocks until ctx is cancelled or a fatal error occurs.
	Consume(ctx context.Context, handler func(ctx context.Context, ev domain.DeliveryEvent) error) error
}

// NopPublisher discards every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, domain.DeliveryEvent) error { return nil }
