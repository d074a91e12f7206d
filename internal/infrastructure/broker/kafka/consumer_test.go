package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
)

// fakeReader feeds a fixed sequence of messages, then blocks until ctx ends.
type fakeReader struct {
	mu        sync.Mutex
	messages  []kafkago.Message
	committed []kafkago.Message
	closed    bool
	fetchErr  error // returned once the queue is drained, instead of blocking
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	r.mu.Lock()
	if len(r.messages) > 0 {
		msg := r.messages[0]
		r.messages = r.messages[1:]
		r.mu.Unlock()
		return msg, nil
	}
	err := r.fetchErr
	r.mu.Unlock()
	if err != nil {
		return kafkago.Message{}, err
	}
	<-ctx.Done()
	return kafkago.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) committedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

type fakeProcessor struct {
	mu        sync.Mutex
	processed [][]byte
	failOn    string // message value that fails processing
}

func (p *fakeProcessor) Process(_ context.Context, raw []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processed = append(p.processed, raw)
	if p.failOn != "" && string(raw) == p.failOn {
		return errors.New("boom")
	}
	return nil
}

func (p *fakeProcessor) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.processed)
}

type fakeDLQ struct {
	mu        sync.Mutex
	originals []string
	errs      []string
	publErr   error
}

func (d *fakeDLQ) Publish(_ context.Context, original []byte, procErr error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.publErr != nil {
		return d.publErr
	}
	d.originals = append(d.originals, string(original))
	d.errs = append(d.errs, procErr.Error())
	return nil
}

type fakeDedup struct {
	mu         sync.Mutex
	duplicates map[string]bool
	marked     []string
	checkErr   error
}

func (d *fakeDedup) IsDuplicate(_ context.Context, raw []byte) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.checkErr != nil {
		return false, d.checkErr
	}
	return d.duplicates[string(raw)], nil
}

func (d *fakeDedup) Mark(_ context.Context, raw []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.marked = append(d.marked, string(raw))
	return nil
}

func testConfig() Config {
	return Config{
		Brokers:       []string{"localhost:9092"},
		GroupID:       "test-group",
		Topics:        []string{"beats-events", "users-events"},
		MaxRetries:    2,
		RetryDelay:    time.Millisecond,
		CooldownDelay: time.Millisecond,
	}
}

func newTestSupervisor(reader *fakeReader, proc *fakeProcessor, dlq *fakeDLQ, dedup DedupChecker) *Supervisor {
	s := NewSupervisor(testConfig(), proc, dlq, dedup, zerolog.Nop())
	s.dial = func(context.Context) error { return nil }
	s.newReader = func() messageReader { return reader }
	return s
}

func runUntilDone(t *testing.T, s *Supervisor, ctx context.Context) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not stop")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached")
}

func TestSupervisor_ProcessesAndCommitsInOrder(t *testing.T) {
	reader := &fakeReader{messages: []kafkago.Message{
		{Topic: "beats-events", Offset: 1, Value: []byte(`{"type":"BEAT_CREATED"}`)},
		{Topic: "users-events", Offset: 2, Value: []byte(`{"type":"USER_CREATED"}`)},
	}}
	proc := &fakeProcessor{}
	s := newTestSupervisor(reader, proc, &fakeDLQ{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		waitFor(t, func() bool { return reader.committedCount() == 2 })
		cancel()
	}()
	runUntilDone(t, s, ctx)

	if proc.count() != 2 {
		t.Fatalf("expected 2 processed, got %d", proc.count())
	}
	if string(proc.processed[0]) != `{"type":"BEAT_CREATED"}` {
		t.Errorf("messages must be processed in order, first was %s", proc.processed[0])
	}
	if !reader.closed {
		t.Errorf("reader must be closed on shutdown")
	}
}

func TestSupervisor_PoisonMessageDeadLetteredAndCommitted(t *testing.T) {
	reader := &fakeReader{messages: []kafkago.Message{
		{Topic: "beats-events", Offset: 1, Value: []byte(`not json`)},
		{Topic: "beats-events", Offset: 2, Value: []byte(`{"type":"ok"}`)},
	}}
	proc := &fakeProcessor{failOn: "not json"}
	dlq := &fakeDLQ{}
	s := newTestSupervisor(reader, proc, dlq, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		waitFor(t, func() bool { return reader.committedCount() == 2 })
		cancel()
	}()
	runUntilDone(t, s, ctx)

	if len(dlq.originals) != 1 || dlq.originals[0] != "not json" {
		t.Fatalf("expected original raw message dead-lettered, got %v", dlq.originals)
	}
	if dlq.errs[0] != "boom" {
		t.Errorf("expected processing error captured, got %q", dlq.errs[0])
	}
	// The poison message is committed; the stream keeps moving.
	if proc.count() != 2 {
		t.Errorf("expected consumption to continue past poison message, processed %d", proc.count())
	}
}

func TestSupervisor_DeadLetterFailureDoesNotStopConsumption(t *testing.T) {
	reader := &fakeReader{messages: []kafkago.Message{
		{Topic: "beats-events", Offset: 1, Value: []byte(`bad`)},
		{Topic: "beats-events", Offset: 2, Value: []byte(`good`)},
	}}
	proc := &fakeProcessor{failOn: "bad"}
	dlq := &fakeDLQ{publErr: errors.New("dlq down")}
	s := newTestSupervisor(reader, proc, dlq, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		waitFor(t, func() bool { return reader.committedCount() == 2 })
		cancel()
	}()
	runUntilDone(t, s, ctx)

	if proc.count() != 2 {
		t.Fatalf("a broken dead-letter topic must not block the stream, processed %d", proc.count())
	}
}

func TestSupervisor_DuplicateMessagesSkipped(t *testing.T) {
	reader := &fakeReader{messages: []kafkago.Message{
		{Topic: "beats-events", Offset: 1, Value: []byte(`seen`)},
		{Topic: "beats-events", Offset: 2, Value: []byte(`fresh`)},
	}}
	proc := &fakeProcessor{}
	dedup := &fakeDedup{duplicates: map[string]bool{"seen": true}}
	s := newTestSupervisor(reader, proc, &fakeDLQ{}, dedup)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		waitFor(t, func() bool { return reader.committedCount() == 2 })
		cancel()
	}()
	runUntilDone(t, s, ctx)

	if proc.count() != 1 || string(proc.processed[0]) != "fresh" {
		t.Fatalf("duplicate must be skipped but still committed, processed %v", proc.processed)
	}
	if len(dedup.marked) != 1 || dedup.marked[0] != "fresh" {
		t.Errorf("only successfully processed messages are marked, got %v", dedup.marked)
	}
}

func TestSupervisor_DedupFailureProcessesAnyway(t *testing.T) {
	reader := &fakeReader{messages: []kafkago.Message{
		{Topic: "beats-events", Offset: 1, Value: []byte(`msg`)},
	}}
	proc := &fakeProcessor{}
	dedup := &fakeDedup{checkErr: errors.New("redis down")}
	s := newTestSupervisor(reader, proc, &fakeDLQ{}, dedup)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		waitFor(t, func() bool { return reader.committedCount() == 1 })
		cancel()
	}()
	runUntilDone(t, s, ctx)

	if proc.count() != 1 {
		t.Fatalf("dedup is a fast path only, message must be processed, got %d", proc.count())
	}
}

func TestSupervisor_RetriesThenCooldownThenReconnects(t *testing.T) {
	var mu sync.Mutex
	dials := 0
	reader := &fakeReader{}

	s := NewSupervisor(testConfig(), &fakeProcessor{}, &fakeDLQ{}, nil, zerolog.Nop())
	s.newReader = func() messageReader { return reader }
	s.dial = func(context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		dials++
		// Initial attempt + MaxRetries(2) exhaust, cooldown, then connect.
		if dials <= 3 {
			return errors.New("unreachable")
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		waitFor(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return dials >= 4
		})
		cancel()
	}()
	runUntilDone(t, s, ctx)

	mu.Lock()
	defer mu.Unlock()
	if dials < 4 {
		t.Fatalf("supervisor must keep cycling through cooldown, dialed %d times", dials)
	}
}

func TestSupervisor_ReaderFailureTriggersReconnect(t *testing.T) {
	var mu sync.Mutex
	readers := 0

	s := NewSupervisor(testConfig(), &fakeProcessor{}, &fakeDLQ{}, nil, zerolog.Nop())
	s.dial = func(context.Context) error { return nil }
	s.newReader = func() messageReader {
		mu.Lock()
		defer mu.Unlock()
		readers++
		return &fakeReader{fetchErr: errors.New("connection reset")}
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		waitFor(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return readers >= 2
		})
		cancel()
	}()
	runUntilDone(t, s, ctx)
}

func TestSupervisor_StopsOnContextCancel(t *testing.T) {
	s := newTestSupervisor(&fakeReader{}, &fakeProcessor{}, &fakeDLQ{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runUntilDone(t, s, ctx)
}
