package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang-wa-broadcast/internal/domain"
	"golang-wa-broadcast/internal/ports"

	"github.com/google/uuid"
)

// RecordDelivery stores a consumed delivery event.
// This is called by the delivery-recorder binary for each event it dequeues.
func RecordDelivery(ctx context.Context, repo ports.DeliveryRepository, ev domain.DeliveryEvent, log *slog.Logger) error {
	if err := repo.SaveDelivery(ctx, ev); err != nil {
		return fmt.Errorf("save delivery: %w", err)
	}
	log.Info("delivery recorded", "event_id", ev.ID, "broadcast_id", ev.BroadcastID, "outcome", ev.Outcome)
	return nil
}

// DeliverySummary aggregates the recorded outcomes of one broadcast.
type DeliverySummary struct {
	BroadcastID uuid.UUID
	Kind        domain.Kind
	Total       int
	Sent        int
	Unreachable int
	Failures    []domain.DeliveryEvent
	FirstAt     time.Time
	LastAt      time.Time
}

// SummarizeBroadcast reads back the audit trail of a broadcast.
func SummarizeBroadcast(ctx context.Context, repo ports.DeliveryRepository, broadcastID uuid.UUID) (DeliverySummary, error) {
	events, err := repo.ListDeliveries(ctx, broadcastID)
	if err != nil {
		return DeliverySummary{}, fmt.Errorf("list deliveries: %w", err)
	}
	if len(events) == 0 {
		return DeliverySummary{}, fmt.Errorf("broadcast %s: no recorded deliveries", broadcastID)
	}

	sum := DeliverySummary{
		BroadcastID: broadcastID,
		Kind:        events[0].Kind,
		Total:       len(events),
		FirstAt:     events[0].OccurredAt,
		LastAt:      events[len(events)-1].OccurredAt,
	}
	for _, ev := range events {
		switch ev.Outcome {
		case domain.OutcomeSent:
			sum.Sent++
		case domain.OutcomeUnreachable:
			sum.Unreachable++
		default:
			sum.Failures = append(sum.Failures, ev)
		}
	}
	return sum, nil
}
