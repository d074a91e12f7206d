package kafka

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/beatshub/interaction-service/internal/api/metrics"
	"github.com/beatshub/interaction-service/internal/core/ports"
)

// DedupChecker is the optional redelivery fast-path in front of the
// idempotent mutators. Correctness never depends on it.
type DedupChecker interface {
	IsDuplicate(ctx context.Context, raw []byte) (bool, error)
	Mark(ctx context.Context, raw []byte) error
}

// messageReader is the slice of kafka.Reader the supervisor needs; narrowed
// so tests can drive the consume loop with a fake.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

type supervisorState int

const (
	stateConnecting supervisorState = iota
	stateConnected
	stateRetrying
	stateCooldown
)

// Supervisor owns the long-lived consumer connection. It cycles through
// Connecting → Connected → Retrying → Cooldown and back forever; there is no
// terminal failure state. Messages are processed strictly sequentially: one
// message is fully handled and committed before the next is fetched.
type Supervisor struct {
	cfg       Config
	processor ports.EventProcessor
	dlq       ports.DeadLetterPublisher
	dedup     DedupChecker
	log       zerolog.Logger

	dial      func(ctx context.Context) error
	newReader func() messageReader
}

// NewSupervisor builds a Supervisor. dedup may be nil.
func NewSupervisor(cfg Config, processor ports.EventProcessor, dlq ports.DeadLetterPublisher, dedup DedupChecker, log zerolog.Logger) *Supervisor {
	s := &Supervisor{
		cfg:       cfg.withDefaults(),
		processor: processor,
		dlq:       dlq,
		dedup:     dedup,
		log:       log,
	}
	s.dial = s.dialBroker
	s.newReader = s.groupReader
	return s
}

// Run drives the connection state machine until ctx is cancelled. It is the
// only goroutine entry point; cancellation is the only stop signal.
func (s *Supervisor) Run(ctx context.Context) {
	state := stateConnecting
	attempts := 0

	for {
		if ctx.Err() != nil {
			return
		}

		switch state {
		case stateConnecting:
			if err := s.dial(ctx); err != nil {
				s.log.Warn().Err(err).Msg("broker connection failed")
				attempts = 1
				state = stateRetrying
				continue
			}
			state = stateConnected

		case stateConnected:
			err := s.consume(ctx)
			if ctx.Err() != nil {
				return
			}
			s.log.Warn().Err(err).Msg("consumer connection lost")
			attempts = 1
			state = stateRetrying

		case stateRetrying:
			if attempts > s.cfg.MaxRetries {
				state = stateCooldown
				continue
			}
			if !sleep(ctx, s.cfg.RetryDelay) {
				return
			}
			metrics.BrokerConnectRetriesTotal.Inc()
			s.log.Info().Int("attempt", attempts).Int("max", s.cfg.MaxRetries).Msg("retrying broker connection")
			if err := s.dial(ctx); err != nil {
				attempts++
				continue
			}
			state = stateConnected

		case stateCooldown:
			s.log.Warn().Dur("cooldown", s.cfg.CooldownDelay).Msg("broker unreachable, entering cooldown")
			if !sleep(ctx, s.cfg.CooldownDelay) {
				return
			}
			attempts = 0
			state = stateConnecting
		}
	}
}

// consume runs the blocking fetch → handle → commit loop until the reader
// fails or ctx is cancelled. The message being handled when shutdown starts
// is allowed to finish and commit.
func (s *Supervisor) consume(ctx context.Context) error {
	reader := s.newReader()
	defer func() {
		if err := reader.Close(); err != nil {
			s.log.Warn().Err(err).Msg("failed to close reader")
		}
	}()

	s.log.Info().Strs("topics", s.cfg.Topics).Str("group", s.cfg.GroupID).Msg("consuming from broker")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			return err
		}

		msgCtx := context.WithoutCancel(ctx)
		s.handle(msgCtx, msg)
		if err := reader.CommitMessages(msgCtx, msg); err != nil {
			return err
		}
	}
}

// handle processes one message. Processing failures route the original raw
// message to the dead-letter topic; the message is still committed so the
// poison message cannot block the stream.
func (s *Supervisor) handle(ctx context.Context, msg kafkago.Message) {
	start := time.Now()
	metrics.EventsConsumedTotal.WithLabelValues(msg.Topic).Inc()

	if s.dedup != nil {
		if dup, err := s.dedup.IsDuplicate(ctx, msg.Value); err != nil {
			s.log.Warn().Err(err).Msg("dedup check failed, processing anyway")
		} else if dup {
			s.log.Debug().Str("topic", msg.Topic).Int64("offset", msg.Offset).Msg("duplicate message skipped")
			return
		}
	}

	if err := s.processor.Process(ctx, msg.Value); err != nil {
		metrics.EventsFailedTotal.WithLabelValues(msg.Topic).Inc()
		s.log.Error().Err(err).
			Str("topic", msg.Topic).
			Int64("offset", msg.Offset).
			Msg("event processing failed")

		if dlqErr := s.dlq.Publish(ctx, msg.Value, err); dlqErr != nil {
			// Log only: a broken dead-letter topic must never stop consumption.
			s.log.Error().Err(dlqErr).Msg("failed to publish to dead-letter topic")
		} else {
			metrics.DeadLettersTotal.Inc()
		}
		return
	}

	if s.dedup != nil {
		if err := s.dedup.Mark(ctx, msg.Value); err != nil {
			s.log.Warn().Err(err).Msg("failed to set dedup key")
		}
	}

	metrics.EventProcessingDuration.WithLabelValues(msg.Topic).Observe(time.Since(start).Seconds())
}

// dialBroker verifies reachability with a short-lived metadata request.
func (s *Supervisor) dialBroker(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultDialTimeout)
	defer cancel()

	client := &kafkago.Client{Addr: kafkago.TCP(s.cfg.Brokers...), Timeout: defaultDialTimeout}
	_, err := client.Metadata(ctx, &kafkago.MetadataRequest{})
	return err
}

// groupReader subscribes to all inbound topics from the earliest offset.
func (s *Supervisor) groupReader() messageReader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     s.cfg.Brokers,
		GroupID:     s.cfg.GroupID,
		GroupTopics: s.cfg.Topics,
		StartOffset: kafkago.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
}

// sleep waits for d unless ctx is cancelled first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
