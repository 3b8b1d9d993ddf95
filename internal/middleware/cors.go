package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORSConfig allows the control app to call the API from the given
// comma-separated origins.
func CORSConfig(allowedOrigins string) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID",

		// No cookies or auth headers are used.
		AllowCredentials: false,

		ExposeHeaders: "Content-Length,X-Request-ID",
		MaxAge:        3600,
	})
}
