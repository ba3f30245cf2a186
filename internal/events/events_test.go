package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewEvent(t *testing.T) {
	e := NewEvent(BadgeAwarded, BadgeAwardedData{UserID: 7, BadgeID: "super_smart_genius"})
	if e.ID == "" {
		t.Error("event id should not be empty")
	}
	if e.Source != EventSource || e.Version != EventVersion {
		t.Errorf("unexpected envelope: source=%q version=%q", e.Source, e.Version)
	}
	if e.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}
}

func TestInProcessEventPublisher(t *testing.T) {
	pub, ch := NewInProcessEventPublisher("test.events", discardLogger())
	defer pub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msgs, err := ch.Subscribe(ctx, "test.events")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	event := NewEvent(SurveySubmitted, SurveySubmittedData{ResponseID: 3, UsesAI: "Yes"})
	if err := pub.Publish(ctx, event); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case msg := <-msgs:
		msg.Ack()
		if msg.UUID != event.ID {
			t.Fatalf("message uuid = %q, want %q", msg.UUID, event.ID)
		}
		if got := msg.Metadata.Get("event_type"); got != string(SurveySubmitted) {
			t.Fatalf("event_type metadata = %q", got)
		}
		var decoded Event
		if err := json.Unmarshal(msg.Payload, &decoded); err != nil {
			t.Fatalf("payload is not an event: %v", err)
		}
		if decoded.Type != SurveySubmitted {
			t.Fatalf("decoded type = %q", decoded.Type)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}

func TestMockEventPublisher(t *testing.T) {
	m := NewMockEventPublisher(discardLogger())
	ctx := context.Background()

	_ = m.Publish(ctx, NewEvent(BadgeAwarded, nil))
	_ = m.Publish(ctx, NewEvent(FeedbackSubmitted, nil))

	if n := len(m.GetPublishedEvents()); n != 2 {
		t.Fatalf("recorded %d events, want 2", n)
	}
	if n := len(m.EventsOfType(BadgeAwarded)); n != 1 {
		t.Fatalf("recorded %d badge events, want 1", n)
	}

	boom := errors.New("broker down")
	m.FailWith(boom)
	if err := m.Publish(ctx, NewEvent(BadgeAwarded, nil)); !errors.Is(err, boom) {
		t.Fatalf("Publish() error = %v, want %v", err, boom)
	}
	m.FailWith(nil)

	m.ClearEvents()
	if n := len(m.GetPublishedEvents()); n != 0 {
		t.Fatalf("recorded %d events after clear", n)
	}

	_ = m.Close()
	if err := m.Publish(ctx, NewEvent(BadgeAwarded, nil)); !errors.Is(err, ErrPublisherClosed) {
		t.Fatalf("Publish() after close error = %v", err)
	}
}

func TestLogEvents(t *testing.T) {
	var buf syncBuffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	pub, ch := NewInProcessEventPublisher("audit.events", discardLogger())
	defer pub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := LogEvents(ctx, ch, "audit.events", logger); err != nil {
		t.Fatalf("LogEvents() error = %v", err)
	}

	event := NewEvent(FeedbackSubmitted, FeedbackSubmittedData{FeedbackID: 9, Kind: "rating"})
	if err := pub.Publish(ctx, event); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(buf.String(), event.ID) {
		if time.Now().After(deadline) {
			t.Fatalf("event %s never logged; log = %q", event.ID, buf.String())
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !strings.Contains(buf.String(), string(FeedbackSubmitted)) {
		t.Fatalf("log missing event type: %q", buf.String())
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
