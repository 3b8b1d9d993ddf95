package app

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"
)

// QRRenderer turns a challenge into an inline image representation.
type QRRenderer func(challenge string) (string, error)

// qrImageSize is the PNG edge length in pixels.
const qrImageSize = 256

// PNGDataURI renders challenge as a base64 PNG data URI.
func PNGDataURI(challenge string) (string, error) {
	png, err := qrcode.Encode(challenge, qrcode.Medium, qrImageSize)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
