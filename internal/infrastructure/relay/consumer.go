package relay

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/adboard/ad-directory/internal/api/metrics"
	"github.com/adboard/ad-directory/internal/core/domain"
)

// Consumer mirrors broker messages into the dispatcher. It is pure
// pass-through: payloads are decoded as JSON objects and never interpreted.
type Consumer struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
	log   zerolog.Logger
}

// NewConsumer dials the broker, declares the topic exchange and a durable
// queue, and binds the given routing keys.
func NewConsumer(url, exchange, queue string, keys []string, log zerolog.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	for _, rk := range keys {
		if err := ch.QueueBind(q.Name, rk, exchange, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, fmt.Errorf("bind %s: %w", rk, err)
		}
	}
	return &Consumer{conn: conn, ch: ch, queue: q.Name, log: log}, nil
}

// Run consumes deliveries until ctx is cancelled, enqueueing each decodable
// payload onto the dispatcher. Undecodable payloads are acked and dropped.
func (c *Consumer) Run(ctx context.Context, dispatcher *Dispatcher) error {
	deliveries, err := c.ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			c.handle(dispatcher, d)
		}
	}
}

func (c *Consumer) handle(dispatcher *Dispatcher, d amqp.Delivery) {
	var event domain.RelayEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		c.log.Warn().Err(err).Str("routing_key", d.RoutingKey).Msg("dropping undecodable event")
		metrics.RelayEventsTotal.WithLabelValues("malformed").Inc()
		_ = d.Ack(false)
		return
	}

	dispatcher.Enqueue(d.RoutingKey, d.Body, event)
	_ = d.Ack(false)
}

// Close tears down the channel and connection.
func (c *Consumer) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
