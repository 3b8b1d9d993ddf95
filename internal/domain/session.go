package domain

// SessionPhase is the authentication phase of the messaging session.
type SessionPhase string

const (
	SessionUnknown    SessionPhase = "unknown"     // No challenge seen, not ready
	SessionAwaitingQR SessionPhase = "awaiting_qr" // A challenge is waiting to be scanned
	SessionReady      SessionPhase = "ready"       // Authenticated; challenge discarded
)

// SessionState is a snapshot of the session tracker.
type SessionState struct {
	Phase     SessionPhase
	Challenge string // Only set while Phase == SessionAwaitingQR
}
