package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-wa-broadcast/internal/adapters/gateway/whatsapp"
	"golang-wa-broadcast/internal/adapters/queue/rabbitmq"
	"golang-wa-broadcast/internal/app"
	cfg "golang-wa-broadcast/internal/config"
	"golang-wa-broadcast/internal/middleware"
	"golang-wa-broadcast/internal/ports"
	"golang-wa-broadcast/internal/transport"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	conf := cfg.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true, Level: conf.LogLevel}))
	if err := run(conf, log); err != nil {
		log.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func run(conf cfg.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Session state & gateway ──────────────────────────────────────────────
	session := app.NewSessionTracker(app.PNGDataURI, log)

	gateway, err := whatsapp.New(ctx, conf.SessionDSN, session, log)
	if err != nil {
		return errors.New("failed to open whatsapp session: " + err.Error())
	}
	defer gateway.Close()

	if err := gateway.Connect(ctx); err != nil {
		return errors.New("failed to connect to whatsapp: " + err.Error())
	}

	// ── Delivery events ──────────────────────────────────────────────────────
	var publisher ports.EventPublisher = ports.NopPublisher{}
	if conf.AMQPURL != "" {
		p, err := rabbitmq.NewPublisher(conf.AMQPURL)
		if err != nil {
			return errors.New("failed to connect to rabbitmq: " + err.Error())
		}
		defer p.Close()
		publisher = p
		log.Info("publishing delivery events", "exchange", "whatsapp")
	}

	svc := app.NewBroadcastService(app.NewRegistry(), &app.MessageStore{}, session, gateway, log,
		app.WithSendDelay(conf.SendDelay),
		app.WithPublisher(publisher),
	)

	fiberApp := fiber.New(fiber.Config{
		AppName:               "broadcast-api",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// No WriteTimeout: /send-all responds only after the paced walk.
		IdleTimeout:  120 * time.Second,
		ServerHeader: "",
		BodyLimit:    conf.BodyLimit,
	})

	fiberApp.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	fiberApp.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${method} ${path} ${latency}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	fiberApp.Use(middleware.RequestIDMiddleware())
	fiberApp.Use(middleware.SecurityHeaders())
	fiberApp.Use(middleware.CORSConfig(conf.AllowedOrigins))

	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	handler := transport.NewHandler(svc, log)
	handler.Register(fiberApp)

	errChan := make(chan error, 1)
	go func() {
		log.Info("broadcast-api started", "addr", conf.HTTPAddr, "send_delay", conf.SendDelay)
		if err := fiberApp.Listen(conf.HTTPAddr); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := fiberApp.ShutdownWithContext(shutdownCtx); err != nil {
		return errors.New("failed to shutdown gracefully: " + err.Error())
	}

	log.Info("broadcast-api stopped gracefully")
	return nil
}
