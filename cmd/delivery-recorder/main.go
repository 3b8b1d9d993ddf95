package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-wa-broadcast/internal/adapters/db/postgres"
	"golang-wa-broadcast/internal/adapters/queue/rabbitmq"
	"golang-wa-broadcast/internal/app"
	"golang-wa-broadcast/internal/domain"

	cfg "golang-wa-broadcast/internal/config"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
)

func main() {
	broadcast := pflag.String("broadcast", "", "print the recorded outcomes of one broadcast ID and exit")
	pflag.Parse()

	conf := cfg.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: conf.LogLevel}))

	if *broadcast == "" && conf.AMQPURL == "" {
		log.Error("AMQP_URL is required")
		os.Exit(1)
	}

	// ── Adapters ─────────────────────────────────────────────────────────────
	repo, err := postgres.New(conf.DatabaseURL)
	if err != nil {
		log.Error("connect postgres", "err", err)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *broadcast != "" {
		if err := summarize(ctx, repo, *broadcast, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			os.Exit(1)
		}
		return
	}

	consumer, err := rabbitmq.NewConsumer(conf.AMQPURL, log)
	if err != nil {
		log.Error("connect rabbitmq consumer", "err", err)
		os.Exit(1)
	}
	defer consumer.Close()

	log.Info("delivery-recorder started")

	if err := consumer.Consume(ctx, func(ctx context.Context, ev domain.DeliveryEvent) error {
		return app.RecordDelivery(ctx, repo, ev, log)
	}); err != nil && ctx.Err() == nil {
		log.Error("consumer error", "err", err)
		os.Exit(1)
	}

	log.Info("shutting down delivery-recorder")
}

func summarize(ctx context.Context, repo *postgres.Repository, rawID string, w io.Writer) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid broadcast id %q: %w", rawID, err)
	}
	sum, err := app.SummarizeBroadcast(ctx, repo, id)
	if err != nil {
		return err
	}
	printSummary(w, sum)
	return nil
}

func printSummary(w io.Writer, sum app.DeliverySummary) {
	fmt.Fprintf(w, "📋 Broadcast %s (%s)\n", sum.BroadcastID, sum.Kind)
	fmt.Fprintf(w, "   Recipients:  %d\n", sum.Total)
	fmt.Fprintf(w, "   ✅ Sent:        %d\n", sum.Sent)
	fmt.Fprintf(w, "   ⏭️  Unreachable: %d\n", sum.Unreachable)
	fmt.Fprintf(w, "   ❌ Failed:      %d\n", len(sum.Failures))
	fmt.Fprintf(w, "   Duration:    %v\n", sum.LastAt.Sub(sum.FirstAt).Round(time.Millisecond))
	for _, f := range sum.Failures {
		fmt.Fprintf(w, "   - %s: %s\n", f.Number, f.Error)
	}
}
