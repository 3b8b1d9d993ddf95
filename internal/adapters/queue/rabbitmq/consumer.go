package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang-wa-broadcast/internal/domain"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// defaultRetryDelay is how long a failed event is held before it goes back
// to the queue.
const defaultRetryDelay = 5 * time.Second

// Consumer implements ports.EventConsumer using RabbitMQ.
type Consumer struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	log        *slog.Logger
	retryDelay time.Duration
}

// NewConsumer dials RabbitMQ, declares topology, and returns a Consumer.
func NewConsumer(amqpURL string, log *slog.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// One event at a time per consumer to keep the audit trail ordered.
	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}

	if err := declare(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &Consumer{conn: conn, channel: ch, log: log, retryDelay: defaultRetryDelay}, nil
}

// Consume calls handler for each delivery event on the queue until ctx is
// cancelled or the channel closes.
func (c *Consumer) Consume(ctx context.Context, handler func(ctx context.Context, ev domain.DeliveryEvent) error) error {
	deliveries, err := c.channel.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.settle(ctx, d, handler)
		}
	}
}

// settle acks a delivery once handler stored it. Malformed payloads are
// dropped. Handler failures are held for retryDelay, then requeued.
func (c *Consumer) settle(ctx context.Context, d amqp.Delivery, handler func(ctx context.Context, ev domain.DeliveryEvent) error) {
	ev, err := decodeEvent(d.Body)
	if err != nil {
		c.log.Error("drop malformed delivery event", "message_id", d.MessageId, "err", err)
		if err := d.Nack(false, false); err != nil {
			c.log.Error("nack", "message_id", d.MessageId, "err", err)
		}
		return
	}

	log := c.log.With("event_id", ev.ID, "broadcast_id", ev.BroadcastID, "redelivered", d.Redelivered)
	if err := handler(ctx, ev); err != nil {
		log.Error("record delivery event", "retry_in", c.retryDelay, "err", err)
		t := time.NewTimer(c.retryDelay)
		select {
		case <-ctx.Done():
			t.Stop()
		case <-t.C:
		}
		if err := d.Nack(false, true); err != nil {
			log.Error("nack", "err", err)
		}
		return
	}

	if err := d.Ack(false); err != nil {
		log.Error("ack", "err", err)
	}
}

// Close cleanly shuts down the channel and connection.
func (c *Consumer) Close() {
	c.channel.Close()
	c.conn.Close()
}

// decodeEvent parses a delivery payload and rejects events without identity.
func decodeEvent(body []byte) (domain.DeliveryEvent, error) {
	var ev domain.DeliveryEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return domain.DeliveryEvent{}, fmt.Errorf("unmarshal: %w", err)
	}
	if ev.ID == uuid.Nil || ev.BroadcastID == uuid.Nil {
		return domain.DeliveryEvent{}, errors.New("event id and broadcast id are required")
	}
	return ev, nil
}
