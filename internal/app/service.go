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

// DefaultSendDelay is the pause between two consecutive sends.
const DefaultSendDelay = 2 * time.Second

// Pacer blocks for d or until ctx is done.
type Pacer func(ctx context.Context, d time.Duration) error

// SleepPacer waits on a timer.
func SleepPacer(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// BroadcastService is the central application service that owns the
// session-wide state and dispatches broadcasts through the gateway.
type BroadcastService struct {
	registry  *Registry
	message   *MessageStore
	session   *SessionTracker
	gateway   ports.Gateway
	publisher ports.EventPublisher
	delay     time.Duration
	pace      Pacer
	log       *slog.Logger
}

// Option customizes a BroadcastService.
type Option func(*BroadcastService)

// WithSendDelay overrides DefaultSendDelay.
func WithSendDelay(d time.Duration) Option {
	return func(s *BroadcastService) { s.delay = d }
}

// WithPacer replaces SleepPacer.
func WithPacer(p Pacer) Option {
	return func(s *BroadcastService) { s.pace = p }
}

// WithPublisher sets where delivery events go. Defaults to ports.NopPublisher.
func WithPublisher(p ports.EventPublisher) Option {
	return func(s *BroadcastService) { s.publisher = p }
}

// NewBroadcastService wires the service with its dependencies.
func NewBroadcastService(
	registry *Registry,
	message *MessageStore,
	session *SessionTracker,
	gateway ports.Gateway,
	log *slog.Logger,
	opts ...Option,
) *BroadcastService {
	s := &BroadcastService{
		registry:  registry,
		message:   message,
		session:   session,
		gateway:   gateway,
		publisher: ports.NopPublisher{},
		delay:     DefaultSendDelay,
		pace:      SleepPacer,
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the recipient registry.
func (s *BroadcastService) Registry() *Registry { return s.registry }

// Message returns the outgoing message store.
func (s *BroadcastService) Message() *MessageStore { return s.message }

// Session returns the session tracker.
func (s *BroadcastService) Session() *SessionTracker { return s.session }

// Status is a summary of the service state.
type Status struct {
	IsReady           bool `json:"isReady"`
	HasQRCode         bool `json:"hasQrCode"`
	PhoneNumbersCount int  `json:"phoneNumbersCount"`
	MessageSet        bool `json:"messageSet"`
}

// Status reports the current session, registry and message state.
func (s *BroadcastService) Status() Status {
	state := s.session.State()
	_, messageSet := s.message.Get()
	return Status{
		IsReady:           state.Phase == domain.SessionReady,
		HasQRCode:         state.Challenge != "",
		PhoneNumbersCount: s.registry.Count(),
		MessageSet:        messageSet,
	}
}

// BroadcastResult summarizes a finished broadcast.
type BroadcastResult struct {
	ID        uuid.UUID
	Attempted int // Recipients visited
	Sent      int
	Skipped   int // Unreachable recipients
}

// SendText delivers the stored message to every registered recipient.
func (s *BroadcastService) SendText(ctx context.Context) (BroadcastResult, error) {
	text, ok := s.message.Get()
	if !ok {
		return BroadcastResult{}, domain.ErrMessageNotSet
	}
	if s.registry.Count() == 0 {
		return BroadcastResult{}, domain.ErrNoRecipients
	}

	b := domain.NewBroadcast(domain.KindText)
	s.log.Info("text broadcast started", "broadcast_id", b.ID, "recipients", s.registry.Count())

	res, err := s.dispatch(ctx, b, func(ctx context.Context, dest domain.Destination) error {
		return s.gateway.SendText(ctx, dest, text)
	})
	if err != nil {
		return res, err
	}

	s.log.Info("messages sent to all numbers", "broadcast_id", b.ID, "sent", res.Sent, "skipped", res.Skipped, "took", time.Since(b.CreatedAt))
	return res, nil
}

// SendMedia loads the file at path once and delivers it with caption to
// every registered recipient.
func (s *BroadcastService) SendMedia(ctx context.Context, path, caption string) (BroadcastResult, error) {
	if path == "" {
		return BroadcastResult{}, fmt.Errorf("%w: file path is required", domain.ErrInvalidInput)
	}
	if s.registry.Count() == 0 {
		return BroadcastResult{}, domain.ErrNoRecipients
	}

	media, err := s.gateway.LoadMedia(ctx, path, caption)
	if err != nil {
		return BroadcastResult{}, fmt.Errorf("%w: load media %s: %w", domain.ErrGateway, path, err)
	}

	b := domain.NewBroadcast(domain.KindMedia)
	s.log.Info("media broadcast started",
		"broadcast_id", b.ID,
		"recipients", s.registry.Count(),
		"mime_type", media.MimeType(),
	)

	res, err := s.dispatch(ctx, b, func(ctx context.Context, dest domain.Destination) error {
		return s.gateway.SendMedia(ctx, dest, media)
	})
	if err != nil {
		return res, err
	}

	s.log.Info("media sent to all numbers", "broadcast_id", b.ID, "sent", res.Sent, "skipped", res.Skipped, "took", time.Since(b.CreatedAt))
	return res, nil
}

// dispatch walks the live registry by position. Unreachable numbers are
// skipped without a pause; every successful send except the one to the
// last recipient is followed by the configured delay. The first gateway
// error aborts the walk.
func (s *BroadcastService) dispatch(
	ctx context.Context,
	b domain.Broadcast,
	deliver func(ctx context.Context, dest domain.Destination) error,
) (BroadcastResult, error) {
	res := BroadcastResult{ID: b.ID}

	for i := 0; i < s.registry.Count(); i++ {
		number, ok := s.registry.At(i)
		if !ok {
			break
		}
		dest := number.Destination()
		res.Attempted++

		reachable, err := s.gateway.IsReachable(ctx, dest)
		if err != nil {
			s.emit(ctx, b, number, domain.OutcomeFailed, err)
			s.log.Error("reachability check failed", "broadcast_id", b.ID, "number", number, "err", err)
			return res, fmt.Errorf("%w: check %s: %w", domain.ErrGateway, number, err)
		}
		if !reachable {
			s.emit(ctx, b, number, domain.OutcomeUnreachable, nil)
			s.log.Info("number is not registered on WhatsApp", "broadcast_id", b.ID, "number", number)
			res.Skipped++
			continue
		}

		if err := deliver(ctx, dest); err != nil {
			s.emit(ctx, b, number, domain.OutcomeFailed, err)
			s.log.Error("send failed", "broadcast_id", b.ID, "number", number, "err", err)
			return res, fmt.Errorf("%w: send to %s: %w", domain.ErrGateway, number, err)
		}
		res.Sent++
		s.emit(ctx, b, number, domain.OutcomeSent, nil)
		s.log.Info("sent", "broadcast_id", b.ID, "kind", b.Kind, "number", number)

		if i < s.registry.Count()-1 {
			if err := s.pace(ctx, s.delay); err != nil {
				return res, fmt.Errorf("broadcast interrupted: %w", err)
			}
		}
	}

	return res, nil
}

// emit publishes a delivery event. Publishing is best-effort.
func (s *BroadcastService) emit(ctx context.Context, b domain.Broadcast, number domain.PhoneNumber, outcome domain.Outcome, cause error) {
	ev := domain.NewDeliveryEvent(b, number, outcome, cause)
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Warn("publish delivery event failed", "event_id", ev.ID, "err", err)
	}
}
