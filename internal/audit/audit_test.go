package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, Event) {
	s.count.Add(1)
}

type gateSink struct {
	gate chan struct{}
}

func (s *gateSink) Emit(context.Context, Event) {
	<-s.gate
}

func TestDispatcherDisabledIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, NoOpSink{})
	if d != nil {
		t.Fatal("expected nil dispatcher when disabled")
	}
	// nil receiver methods are safe
	d.Emit(context.Background(), Event{EventType: "x"})
	d.Close()
	if d.Dropped() != 0 || d.Delivered() != 0 {
		t.Fatal("expected zero counters on nil dispatcher")
	}
}

func TestDispatcherDeliversAndFlushesOnClose(t *testing.T) {
	sink := &countingSink{}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 64}, sink)

	for i := 0; i < 50; i++ {
		d.Emit(context.Background(), Event{EventType: "auth_success", Success: true})
	}
	d.Close()

	if got := sink.count.Load(); got != 50 {
		t.Fatalf("expected 50 delivered events, got %d", got)
	}
	if got := d.Delivered(); got != 50 {
		t.Fatalf("expected Delivered 50, got %d", got)
	}

	d.Emit(context.Background(), Event{EventType: "late"})
	if got := sink.count.Load(); got != 50 {
		t.Fatalf("expected no delivery after close, got %d", got)
	}
}

func TestDispatcherDropIfFull(t *testing.T) {
	sink := &gateSink{gate: make(chan struct{})}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			d.Emit(context.Background(), Event{EventType: "auth_failure"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit blocked with DropIfFull enabled")
	}

	if d.Dropped() == 0 {
		t.Fatal("expected dropped events with a blocked sink")
	}
	close(sink.gate)
	d.Close()
}

func TestDispatcherStampsTimestamp(t *testing.T) {
	sink := NewChannelSink(1)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1}, sink)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	d.now = func() time.Time { return fixed }

	d.Emit(context.Background(), Event{EventType: "credential_migrated"})
	d.Close()

	event := <-sink.Events()
	if !event.Timestamp.Equal(fixed) {
		t.Fatalf("expected timestamp %v, got %v", fixed, event.Timestamp)
	}
}

func TestJSONWriterSinkOneObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sink.Emit(context.Background(), Event{EventType: "auth_success", UserID: "u1", Success: true})
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 10 {
		t.Fatalf("expected 10 lines, got %d", len(lines))
	}
	for _, line := range lines {
		var event Event
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			t.Fatalf("invalid json line %q: %v", line, err)
		}
		if event.UserID != "u1" {
			t.Fatalf("unexpected user id %q", event.UserID)
		}
	}
}

func TestSlogSinkLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sink := NewSlogSink(logger)

	sink.Emit(context.Background(), Event{EventType: "auth_success", UserID: "u1", Form: "canonical", Success: true})
	sink.Emit(context.Background(), Event{EventType: "auth_failure", Reason: "password_mismatch"})

	out := buf.String()
	for _, want := range []string{
		"level=INFO",
		"event_type=auth_success",
		"user_id=u1",
		"form=canonical",
		"level=WARN",
		"reason=password_mismatch",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}
