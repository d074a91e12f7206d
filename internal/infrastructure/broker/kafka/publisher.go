package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the slice of kafka.Writer the publishers need.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

func newWriter(brokers []string, topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
	}
}

// EventPublisher emits {type, payload} envelopes on an outbound topic.
type EventPublisher struct {
	writer messageWriter
	log    zerolog.Logger
}

func NewEventPublisher(brokers []string, topic string, log zerolog.Logger) *EventPublisher {
	return &EventPublisher{writer: newWriter(brokers, topic), log: log}
}

func (p *EventPublisher) Publish(ctx context.Context, eventType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	value, err := json.Marshal(struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}{Type: eventType, Payload: body})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafkago.Message{Value: value}); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}

	p.log.Debug().Str("type", eventType).Msg("event published")
	return nil
}

func (p *EventPublisher) Close() error {
	return p.writer.Close()
}

// deadLetterMessage is the wire shape on the dead-letter topic. OriginalEvent
// carries the raw inbound message untouched so it can be replayed.
type deadLetterMessage struct {
	OriginalEvent string    `json:"originalEvent"`
	Error         string    `json:"error"`
	Timestamp     time.Time `json:"timestamp"`
}

// DeadLetterPublisher isolates poison messages on the dead-letter topic.
type DeadLetterPublisher struct {
	writer messageWriter
	log    zerolog.Logger
}

func NewDeadLetterPublisher(brokers []string, topic string, log zerolog.Logger) *DeadLetterPublisher {
	return &DeadLetterPublisher{writer: newWriter(brokers, topic), log: log}
}

func (p *DeadLetterPublisher) Publish(ctx context.Context, original []byte, procErr error) error {
	value, err := json.Marshal(deadLetterMessage{
		OriginalEvent: string(original),
		Error:         procErr.Error(),
		Timestamp:     time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal dead letter: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafkago.Message{Value: value}); err != nil {
		return fmt.Errorf("publish dead letter: %w", err)
	}

	p.log.Info().Str("error", procErr.Error()).Msg("message dead-lettered")
	return nil
}

func (p *DeadLetterPublisher) Close() error {
	return p.writer.Close()
}
