package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang-wa-broadcast/internal/domain"
	"golang-wa-broadcast/internal/ports"

	"github.com/mdp/qrterminal/v3"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"

	// SQLite driver without CGO
	_ "modernc.org/sqlite"
)

var _ ports.Gateway = (*Client)(nil)

var errUnknownMedia = errors.New("media was not loaded by this gateway")

// defaultRelinkBackoff is the pause unit between failed attempts to restart
// the QR login; attempt n waits n units.
const defaultRelinkBackoff = 2 * time.Second

// Client implements ports.Gateway on top of a whatsmeow session stored in SQLite.
type Client struct {
	wa       *whatsmeow.Client
	observer ports.SessionObserver
	qrOut    io.Writer
	log      *slog.Logger

	// relink opens a fresh QR channel after the previous one timed out.
	relink        func(ctx context.Context) (<-chan whatsmeow.QRChannelItem, error)
	relinkBackoff time.Duration
}

// New opens the session store at dsn and prepares a client. Session events
// are forwarded to observer. Call Connect to start the session.
func New(ctx context.Context, dsn string, observer ports.SessionObserver, log *slog.Logger) (*Client, error) {
	container, err := sqlstore.New(ctx, "sqlite", dsn, NewLogger(log, "database"))
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("load device: %w", err)
	}

	c := &Client{
		wa:       whatsmeow.NewClient(device, NewLogger(log, "client")),
		observer: observer,
		qrOut:    os.Stdout,
		log:      log,

		relinkBackoff: defaultRelinkBackoff,
	}
	c.relink = c.restartLogin
	c.wa.AddEventHandler(c.handleEvent)
	return c, nil
}

// Connect starts the session. When no device is linked yet, QR challenges
// are printed to the terminal and forwarded to the observer. Expired codes
// are replaced by restarting the login until the device links or ctx ends.
func (c *Client) Connect(ctx context.Context) error {
	if c.wa.Store.ID == nil {
		qrCh, err := c.wa.GetQRChannel(ctx)
		if err != nil {
			return fmt.Errorf("get qr channel: %w", err)
		}
		go c.watchQR(ctx, qrCh)
	}

	if err := c.wa.Connect(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	return nil
}

// restartLogin drops the socket whatsmeow left behind after a QR timeout and
// opens a new pairing attempt.
func (c *Client) restartLogin(ctx context.Context) (<-chan whatsmeow.QRChannelItem, error) {
	c.wa.Disconnect()
	qrCh, err := c.wa.GetQRChannel(ctx)
	if err != nil {
		return nil, fmt.Errorf("get qr channel: %w", err)
	}
	if err := c.wa.Connect(); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return qrCh, nil
}

func (c *Client) watchQR(ctx context.Context, ch <-chan whatsmeow.QRChannelItem) {
	for ch != nil {
		if !c.drainQR(ch) {
			return
		}
		ch = c.relinkUntilOpen(ctx)
	}
}

// drainQR forwards the items of one pairing attempt and reports whether the
// attempt ended because the codes ran out.
func (c *Client) drainQR(ch <-chan whatsmeow.QRChannelItem) (timedOut bool) {
	for item := range ch {
		switch item.Event {
		case whatsmeow.QRChannelEventCode:
			qrterminal.GenerateHalfBlock(item.Code, qrterminal.L, c.qrOut)
			c.log.Info("scan the QR code above with your WhatsApp")
			c.observer.OnChallenge(item.Code)
		case whatsmeow.QRChannelSuccess.Event:
			c.log.Info("qr scan successful, waiting for device to connect")
		case whatsmeow.QRChannelTimeout.Event:
			c.log.Warn("qr code timed out, restarting login")
			timedOut = true
		case whatsmeow.QRChannelEventError:
			c.log.Error("qr pairing failed", "err", item.Error)
		default:
			c.log.Warn("qr channel event", "event", item.Event)
		}
	}
	return timedOut
}

// relinkUntilOpen retries the login restart with a growing pause. It returns
// nil once ctx is done or the store already holds a linked device.
func (c *Client) relinkUntilOpen(ctx context.Context) <-chan whatsmeow.QRChannelItem {
	for attempt := 1; ctx.Err() == nil; attempt++ {
		ch, err := c.relink(ctx)
		if err == nil {
			return ch
		}
		if errors.Is(err, whatsmeow.ErrQRStoreContainsID) {
			c.log.Info("device already linked, qr login stopped")
			return nil
		}

		backoff := time.Duration(attempt) * c.relinkBackoff
		c.log.Warn("restart qr login", "attempt", attempt, "retry_in", backoff, "err", err)
		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
		case <-t.C:
		}
	}
	return nil
}

func (c *Client) handleEvent(evt interface{}) {
	switch e := evt.(type) {
	case *events.Connected:
		c.observer.OnReady()
	case *events.PairSuccess:
		c.log.Info("device paired", "jid", e.ID.String())
	case *events.LoggedOut:
		c.log.Warn("logged out by primary device", "reason", e.Reason)
	case *events.Disconnected:
		c.log.Warn("whatsapp disconnected")
	}
}

// IsReachable reports whether the destination number is registered on WhatsApp.
func (c *Client) IsReachable(ctx context.Context, dest domain.Destination) (bool, error) {
	resp, err := c.wa.IsOnWhatsApp(ctx, []string{"+" + dest.User()})
	if err != nil {
		return false, fmt.Errorf("is on whatsapp: %w", err)
	}
	return len(resp) > 0 && resp[0].IsIn, nil
}

// SendText sends a plain conversation message.
func (c *Client) SendText(ctx context.Context, dest domain.Destination, text string) error {
	jid, err := types.ParseJID(dest.String())
	if err != nil {
		return fmt.Errorf("parse destination %s: %w", dest, err)
	}

	resp, err := c.wa.SendMessage(ctx, jid, &waE2E.Message{Conversation: proto.String(text)})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	c.log.Debug("text delivered to server", "to", dest, "message_id", resp.ID)
	return nil
}

// SendMedia sends an attachment prepared by LoadMedia.
func (c *Client) SendMedia(ctx context.Context, dest domain.Destination, m ports.Media) error {
	prepared, ok := m.(*media)
	if !ok {
		return errUnknownMedia
	}

	jid, err := types.ParseJID(dest.String())
	if err != nil {
		return fmt.Errorf("parse destination %s: %w", dest, err)
	}

	msg := proto.Clone(prepared.msg).(*waE2E.Message)
	resp, err := c.wa.SendMessage(ctx, jid, msg)
	if err != nil {
		return fmt.Errorf("send media: %w", err)
	}
	c.log.Debug("media delivered to server", "to", dest, "message_id", resp.ID)
	return nil
}

// Close disconnects the session.
func (c *Client) Close() {
	c.wa.Disconnect()
}
