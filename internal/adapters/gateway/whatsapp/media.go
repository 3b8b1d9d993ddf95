package whatsapp

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang-wa-broadcast/internal/ports"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"google.golang.org/protobuf/proto"
)

// media is an uploaded attachment ready to be sent to any recipient.
type media struct {
	msg      *waE2E.Message
	mimeType string
}

func (m *media) MimeType() string { return m.mimeType }

// classify picks the upload category and MIME type for a file. The
// extension wins; content sniffing covers files without a known one.
func classify(path string, data []byte) (whatsmeow.MediaType, string) {
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	base, _, _ := strings.Cut(mimeType, ";")

	switch {
	case base == "application/ogg" || base == "audio/ogg":
		return whatsmeow.MediaAudio, "audio/ogg; codecs=opus"
	case strings.HasPrefix(base, "image/"):
		return whatsmeow.MediaImage, base
	case strings.HasPrefix(base, "video/"):
		return whatsmeow.MediaVideo, base
	case strings.HasPrefix(base, "audio/"):
		return whatsmeow.MediaAudio, base
	default:
		return whatsmeow.MediaDocument, base
	}
}

// LoadMedia reads the file at path, uploads it once and builds the message
// that every recipient will receive.
func (c *Client) LoadMedia(ctx context.Context, path, caption string) (ports.Media, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read media file: %w", err)
	}

	mediaType, mimeType := classify(path, data)
	up, err := c.wa.Upload(ctx, data, mediaType)
	if err != nil {
		return nil, fmt.Errorf("upload media: %w", err)
	}

	msg := buildMediaMessage(mediaType, mimeType, filepath.Base(path), caption, up)
	c.log.Info("media uploaded", "path", path, "mime_type", mimeType, "size", up.FileLength)
	return &media{msg: msg, mimeType: mimeType}, nil
}

func buildMediaMessage(mediaType whatsmeow.MediaType, mimeType, fileName, caption string, up whatsmeow.UploadResponse) *waE2E.Message {
	switch mediaType {
	case whatsmeow.MediaImage:
		return &waE2E.Message{ImageMessage: &waE2E.ImageMessage{
			Caption:       proto.String(caption),
			Mimetype:      proto.String(mimeType),
			URL:           proto.String(up.URL),
			DirectPath:    proto.String(up.DirectPath),
			MediaKey:      up.MediaKey,
			FileEncSHA256: up.FileEncSHA256,
			FileSHA256:    up.FileSHA256,
			FileLength:    proto.Uint64(up.FileLength),
		}}
	case whatsmeow.MediaVideo:
		return &waE2E.Message{VideoMessage: &waE2E.VideoMessage{
			Caption:       proto.String(caption),
			Mimetype:      proto.String(mimeType),
			URL:           proto.String(up.URL),
			DirectPath:    proto.String(up.DirectPath),
			MediaKey:      up.MediaKey,
			FileEncSHA256: up.FileEncSHA256,
			FileSHA256:    up.FileSHA256,
			FileLength:    proto.Uint64(up.FileLength),
		}}
	case whatsmeow.MediaAudio:
		// Audio messages carry no caption.
		return &waE2E.Message{AudioMessage: &waE2E.AudioMessage{
			Mimetype:      proto.String(mimeType),
			URL:           proto.String(up.URL),
			DirectPath:    proto.String(up.DirectPath),
			MediaKey:      up.MediaKey,
			FileEncSHA256: up.FileEncSHA256,
			FileSHA256:    up.FileSHA256,
			FileLength:    proto.Uint64(up.FileLength),
		}}
	default:
		return &waE2E.Message{DocumentMessage: &waE2E.DocumentMessage{
			Title:         proto.String(fileName),
			FileName:      proto.String(fileName),
			Caption:       proto.String(caption),
			Mimetype:      proto.String(mimeType),
			URL:           proto.String(up.URL),
			DirectPath:    proto.String(up.DirectPath),
			MediaKey:      up.MediaKey,
			FileEncSHA256: up.FileEncSHA256,
			FileSHA256:    up.FileSHA256,
			FileLength:    proto.Uint64(up.FileLength),
		}}
	}
}
