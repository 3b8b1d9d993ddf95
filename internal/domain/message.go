package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Outcome represents what happened to a single recipient during a broadcast.
type Outcome string

const (
	OutcomeSent        Outcome = "sent"        // Accepted by the messaging gateway
	OutcomeUnreachable Outcome = "unreachable" // Number is not registered on the platform
	OutcomeFailed      Outcome = "failed"      // Gateway returned an error; the broadcast was aborted
)

// Kind distinguishes text broadcasts from media broadcasts.
type Kind string

const (
	KindText  Kind = "text"
	KindMedia Kind = "media"
)

// Broadcast identifies one sequential pass over the recipient registry.
type Broadcast struct {
	ID        uuid.UUID
	Kind      Kind
	CreatedAt time.Time
}

// NewBroadcast creates a new Broadcast with a generated ID.
func NewBroadcast(kind Kind) Broadcast {
	return Broadcast{
		ID:        uuid.New(),
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
}

// DeliveryEvent records the outcome of one recipient within a broadcast.
type DeliveryEvent struct {
	ID          uuid.UUID `json:"id"`
	BroadcastID uuid.UUID `json:"broadcast_id"`
	Kind        Kind      `json:"kind"`
	Number      string    `json:"number"`
	Destination string    `json:"destination"`
	Outcome     Outcome   `json:"outcome"`
	Error       string    `json:"error,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NewDeliveryEvent creates an event for the given recipient of a broadcast.
func NewDeliveryEvent(b Broadcast, number PhoneNumber, outcome Outcome, cause error) DeliveryEvent {
	ev := DeliveryEvent{
		ID:          uuid.New(),
		BroadcastID: b.ID,
		Kind:        b.Kind,
		Number:      number.String(),
		Destination: number.Destination().String(),
		Outcome:     outcome,
		OccurredAt:  time.Now().UTC(),
	}
	if cause != nil {
		ev.Error = cause.Error()
	}
	return ev
}

// Domain errors
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrMessageNotSet = errors.New("message not set")
	ErrNoRecipients  = errors.New("no recipients")
	ErrGateway       = errors.New("gateway failure")
)
