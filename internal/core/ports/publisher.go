package ports

import "context"

// EventPublisher emits domain events on the social-events topic for other
// services to consume.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

// DeadLetterPublisher isolates poison messages on the dead-letter topic.
// Callers must treat a publish failure as log-only: it never stops consumption.
type DeadLetterPublisher interface {
	Publish(ctx context.Context, original []byte, procErr error) error
}
