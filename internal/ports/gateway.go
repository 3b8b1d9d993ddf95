package ports

import (
	"context"

	"golang-wa-broadcast/internal/domain"
)

// Media is an attachment prepared once by the gateway and reused for every
// recipient of a broadcast. Its contents are opaque to the application.
type Media interface {
	// MimeType reports the detected content type of the attachment.
	MimeType() string
}

// Gateway abstracts the third-party client that owns the messaging session.
type Gateway interface {
	// IsReachable reports whether dest is registered on the platform.
	IsReachable(ctx context.Context, dest domain.Destination) (bool, error)

	// SendText delivers a plain text message to dest.
	SendText(ctx context.Context, dest domain.Destination, text string) error

	// LoadMedia reads a local file and prepares it for sending with an optional caption.
	LoadMedia(ctx context.Context, path, caption string) (Media, error)

	// SendMedia delivers a previously loaded attachment to dest.
	SendMedia(ctx context.Context, dest domain.Destination, media Media) error

	// Close tears the session down.
	Close()
}

// SessionObserver receives session events emitted by the gateway.
type SessionObserver interface {
	// OnChallenge is called with every new QR challenge payload.
	OnChallenge(challenge string)

	// OnReady is called once the session is authenticated.
	OnReady()
}
