package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

type EventHandler func(ctx context.Context, event order.Event) error

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Consumer struct {
	reader messageReader
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader}
}

// Consume reads until ctx is cancelled. Undecodable messages and handler
// failures are logged and skipped.
func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Str("component", "kafka").Err(err).Msg("read message failed")
			continue
		}

		event, err := Decode(msg.Value)
		if err != nil {
			log.Warn().Str("component", "kafka").Str("key", string(msg.Key)).Int64("offset", msg.Offset).Err(err).
				Msg("skipping undecodable message")
			continue
		}

		if err := handler(ctx, event); err != nil {
			log.Error().Str("component", "kafka").
				Str("event", event.Type).
				Str("order_id", event.OrderID).
				Err(err).
				Msg("event handler failed")
		}
	}
}

// Decode parses an order event envelope.
func Decode(value []byte) (order.Event, error) {
	var event order.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return order.Event{}, fmt.Errorf("decode event: %w", err)
	}
	if event.Type == "" {
		return order.Event{}, fmt.Errorf("decode event: missing type")
	}
	return event, nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
