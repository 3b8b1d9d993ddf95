package ports

import (
	"context"

	"golang-wa-broadcast/internal/domain"

	"github.com/google/uuid"
)

// DeliveryRepository stores the delivery audit trail.
type DeliveryRepository interface {
	// SaveDelivery persists one event. Saving the same event ID twice is a no-op.
	SaveDelivery(ctx context.Context, ev domain.DeliveryEvent) error

	// ListDeliveries returns all events of a broadcast, oldest first.
	ListDeliveries(ctx context.Context, broadcastID uuid.UUID) ([]domain.DeliveryEvent, error)
}
