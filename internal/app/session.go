package app

import (
	"log/slog"
	"sync"

	"golang-wa-broadcast/internal/domain"
)

// Client-facing QR statuses.
const (
	QRStatusReady     = "ready"
	QRStatusLoading   = "loading"
	QRStatusAvailable = "qr_available"
	QRStatusError     = "error"
)

// QRView is what a polling client sees of the login handshake.
type QRView struct {
	Status      string  `json:"status"`
	Message     string  `json:"message"`
	QRCode      *string `json:"qrCode"`
	QRCodeImage *string `json:"qrCodeImage"`
}

// SessionTracker follows the gateway's authentication state. It is only
// mutated by gateway events and implements ports.SessionObserver.
type SessionTracker struct {
	mu     sync.RWMutex
	state  domain.SessionState
	render QRRenderer
	log    *slog.Logger
}

// NewSessionTracker returns a tracker in the unknown phase. A nil render
// falls back to PNGDataURI.
func NewSessionTracker(render QRRenderer, log *slog.Logger) *SessionTracker {
	if render == nil {
		render = PNGDataURI
	}
	return &SessionTracker{
		state:  domain.SessionState{Phase: domain.SessionUnknown},
		render: render,
		log:    log,
	}
}

// OnChallenge stores a new challenge. Challenges after ready are ignored
// since logout is not modeled.
func (t *SessionTracker) OnChallenge(challenge string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Phase == domain.SessionReady {
		t.log.Warn("qr challenge ignored, session already ready")
		return
	}
	t.state = domain.SessionState{Phase: domain.SessionAwaitingQR, Challenge: challenge}
	t.log.Info("qr challenge received, scan it with WhatsApp")
}

// OnReady marks the session authenticated and discards any challenge.
func (t *SessionTracker) OnReady() {
	t.mu.Lock()
	t.state = domain.SessionState{Phase: domain.SessionReady}
	t.mu.Unlock()
	t.log.Info("whatsapp client is ready")
}

// State returns the current state.
func (t *SessionTracker) State() domain.SessionState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Describe renders the state for a polling client.
func (t *SessionTracker) Describe() QRView {
	state := t.State()

	switch state.Phase {
	case domain.SessionReady:
		return QRView{Status: QRStatusReady, Message: "WhatsApp client is ready"}
	case domain.SessionAwaitingQR:
	default:
		return QRView{Status: QRStatusLoading, Message: "QR code not yet generated"}
	}

	challenge := state.Challenge
	image, err := t.render(challenge)
	if err != nil {
		t.log.Error("generate qr code image", "err", err)
		return QRView{
			Status:  QRStatusError,
			Message: "Failed to generate QR code image",
			QRCode:  &challenge,
		}
	}
	return QRView{
		Status:      QRStatusAvailable,
		Message:     "QR code available for scanning",
		QRCode:      &challenge,
		QRCodeImage: &image,
	}
}
