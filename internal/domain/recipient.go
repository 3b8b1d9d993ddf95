package domain

import (
	"fmt"
	"strings"
)

// MinPhoneDigits is the shortest accepted phone number after normalization.
const MinPhoneDigits = 6

// DestinationServer is the address suffix the gateway uses for personal chats.
const DestinationServer = "s.whatsapp.net"

// PhoneNumber is a digits-only phone number.
type PhoneNumber string

// NormalizePhoneNumber strips every non-digit character from raw.
// It returns ErrInvalidInput when fewer than MinPhoneDigits digits remain.
func NormalizePhoneNumber(raw string) (PhoneNumber, error) {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() < MinPhoneDigits {
		return "", fmt.Errorf("%w: %q has fewer than %d digits", ErrInvalidInput, raw, MinPhoneDigits)
	}
	return PhoneNumber(b.String()), nil
}

func (p PhoneNumber) String() string { return string(p) }

// Destination derives the gateway address for p.
func (p PhoneNumber) Destination() Destination {
	return Destination(string(p) + "@" + DestinationServer)
}

// Destination is a platform address such as "15551234567@s.whatsapp.net".
type Destination string

func (d Destination) String() string { return string(d) }

// User returns the part of the address before the server.
func (d Destination) User() string {
	user, _, _ := strings.Cut(string(d), "@")
	return user
}
