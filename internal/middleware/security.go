package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/google/uuid"
)

// SecurityHeaders applies OWASP recommended security headers
func SecurityHeaders() fiber.Handler {
	return helmet.New(helmet.Config{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",

		// The API only serves JSON and plain text; QR images travel as data URIs.
		ContentSecurityPolicy: "default-src 'none'; img-src data:; frame-ancestors 'none';",

		ReferrerPolicy: "no-referrer",
	})
}

// RequestIDMiddleware adds unique request ID for tracing
func RequestIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(fiber.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(fiber.HeaderXRequestID, requestID)
		c.Locals("request_id", requestID)
		return c.Next()
	}
}
