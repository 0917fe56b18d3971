package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

const headerEventType = "event-type"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes order events keyed by order id, so every event of an
// order lands on the same partition in order.
type Producer struct {
	writer messageWriter
	topic  string
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Producer{writer: writer, topic: topic}
}

func (p *Producer) Publish(ctx context.Context, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}
	if typed, ok := event.(interface{ EventType() string }); ok {
		msg.Headers = []kafka.Header{{Key: headerEventType, Value: []byte(typed.EventType())}}
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return err
	}
	log.Debug().Str("component", "kafka").Str("topic", p.topic).Str("key", key).Msg("event published")
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
