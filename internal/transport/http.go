package transport

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"golang-wa-broadcast/internal/app"
	"golang-wa-broadcast/internal/domain"

	"github.com/gofiber/fiber/v2"
)

// Handler holds all HTTP handlers for the WhatsApp broadcast control API.
type Handler struct {
	svc *app.BroadcastService
	log *slog.Logger
}

// NewHandler wires up a Handler with its dependencies.
func NewHandler(svc *app.BroadcastService, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Register mounts all routes onto the given Fiber router.
func (h *Handler) Register(router fiber.Router) {
	router.Post("/add-number", h.AddNumber)
	router.Post("/set-message", h.SetMessage)
	router.Post("/send-all", h.SendAll)
	router.Post("/send-media", h.SendMedia)
	router.Get("/qr-code", h.QRCode)
	router.Get("/status", h.Status)
}

func badRequest(c *fiber.Ctx, text string) error {
	return c.Status(fiber.StatusBadRequest).SendString(text)
}

// parseBody decodes a JSON request body into out. An empty body leaves out
// untouched, and a body sent without a Content-Type is still read as JSON.
func parseBody(c *fiber.Ctx, out any) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if len(c.Request().Header.ContentType()) == 0 {
		return c.App().Config().JSONDecoder(body, out)
	}
	return c.BodyParser(out)
}

// ── Recipients & message ──────────────────────────────────────────────────────

type addNumberRequest struct {
	Number  string   `json:"number"`
	Numbers []string `json:"numbers"`
}

// AddNumber registers one number or a batch of numbers.
//
// POST /add-number
// Body: { "number": "..." } or { "numbers": ["...", ...] }
func (h *Handler) AddNumber(c *fiber.Ctx) error {
	var req addNumberRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, "Invalid request body.")
	}

	if req.Numbers != nil {
		added := h.svc.Registry().AddMany(req.Numbers)
		h.log.Info("numbers added", "submitted", len(req.Numbers), "added", added)
		return c.SendString(fmt.Sprintf("Added %d numbers.", added))
	}

	if req.Number == "" {
		return badRequest(c, "Provide either 'number' or 'numbers' array.")
	}

	number, added, err := h.svc.Registry().AddOne(req.Number)
	if err != nil {
		return badRequest(c, "Invalid number.")
	}
	if !added {
		return c.SendString(fmt.Sprintf("Number %s already added.", number))
	}
	h.log.Info("number added", "number", number)
	return c.SendString(fmt.Sprintf("Number %s added.", number))
}

type setMessageRequest struct {
	Msg string `json:"msg"`
}

// SetMessage replaces the outgoing text.
//
// POST /set-message
// Body: { "msg": "..." }
func (h *Handler) SetMessage(c *fiber.Ctx) error {
	var req setMessageRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, "Invalid request body.")
	}
	if err := h.svc.Message().Set(req.Msg); err != nil {
		return badRequest(c, "Message is required.")
	}
	return c.SendString("Message set.")
}

// ── Broadcasts ────────────────────────────────────────────────────────────────

// SendAll broadcasts the stored text and responds once the walk is over.
//
// POST /send-all
func (h *Handler) SendAll(c *fiber.Ctx) error {
	res, err := h.svc.SendText(c.Context())
	switch {
	case errors.Is(err, domain.ErrMessageNotSet):
		return badRequest(c, "Message not set.")
	case errors.Is(err, domain.ErrNoRecipients):
		return badRequest(c, "No numbers added.")
	case err != nil:
		h.log.Error("send all", "broadcast_id", res.ID, "err", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to send messages.")
	}
	return c.SendString(fmt.Sprintf("Messages sent to %d of %d numbers.", res.Sent, res.Attempted))
}

type sendMediaRequest struct {
	FilePath string `json:"filePath"`
	Caption  string `json:"caption"`
}

// SendMedia broadcasts a local file with an optional caption.
//
// POST /send-media
// Body: { "filePath": "...", "caption": "..." }
func (h *Handler) SendMedia(c *fiber.Ctx) error {
	var req sendMediaRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, "Invalid request body.")
	}

	res, err := h.svc.SendMedia(c.Context(), req.FilePath, req.Caption)
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return badRequest(c, "File path is required.")
	case errors.Is(err, domain.ErrNoRecipients):
		return badRequest(c, "No numbers added.")
	case err != nil:
		h.log.Error("send media", "broadcast_id", res.ID, "file", req.FilePath, "err", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to send media.")
	}
	return c.SendString(fmt.Sprintf("Media sent to %d of %d numbers.", res.Sent, res.Attempted))
}

// ── Session ───────────────────────────────────────────────────────────────────

// QRCode reports the login handshake state for a polling client.
//
// GET /qr-code
func (h *Handler) QRCode(c *fiber.Ctx) error {
	view := h.svc.Session().Describe()
	if view.Status == app.QRStatusError {
		return c.Status(fiber.StatusInternalServerError).JSON(view)
	}
	return c.JSON(view)
}

// Status summarizes session, registry and message state.
//
// GET /status
func (h *Handler) Status(c *fiber.Ctx) error {
	return c.JSON(h.svc.Status())
}
