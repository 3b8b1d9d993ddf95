package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"golang-wa-broadcast/internal/domain"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Delivery events are routed as "delivery.<outcome>" on a topic exchange so
// other consumers can bind to a single outcome (e.g. "delivery.failed").
const (
	exchangeName = "whatsapp"
	queueName    = "whatsapp.deliveries"
	bindingKey   = "delivery.#"
)

func routingKey(ev domain.DeliveryEvent) string {
	return "delivery." + string(ev.Outcome)
}

// Publisher implements ports.EventPublisher using RabbitMQ.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewPublisher dials RabbitMQ, declares the exchange and queue, and binds them.
func NewPublisher(amqpURL string) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declare(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, channel: ch}, nil
}

// Publish serialises a domain.DeliveryEvent and sends it to the queue.
func (p *Publisher) Publish(ctx context.Context, ev domain.DeliveryEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal delivery event: %w", err)
	}

	return p.channel.PublishWithContext(
		ctx,
		exchangeName,
		routingKey(ev),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    ev.ID.String(),
			Type:         string(ev.Outcome),
			Timestamp:    ev.OccurredAt,
			Body:         body,
		},
	)
}

// Close cleanly shuts down the channel and connection.
func (p *Publisher) Close() {
	p.channel.Close()
	p.conn.Close()
}

// declare idempotently sets up the exchange, queue, and binding.
func declare(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(exchangeName, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(queueName, bindingKey, exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}
