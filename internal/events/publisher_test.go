package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRecorder_OfType(t *testing.T) {
	r := &Recorder{}
	ctx := context.Background()
	user := uuid.New()

	_ = r.Publish(ctx, Event{Type: "ENTRY_CREATED", UserID: user})
	_ = r.Publish(ctx, Event{Type: "BADGE_EARNED", UserID: user})
	_ = r.Publish(ctx, Event{Type: "ENTRY_CREATED", UserID: user})

	if got := len(r.Events()); got != 3 {
		t.Fatalf("expected 3 events, got %d", got)
	}
	if got := len(r.OfType("ENTRY_CREATED")); got != 2 {
		t.Errorf("expected 2 ENTRY_CREATED, got %d", got)
	}
	if got := len(r.OfType("NUDGE_DUE")); got != 0 {
		t.Errorf("expected no NUDGE_DUE, got %d", got)
	}
}

func TestRecorder_EventsIsCopy(t *testing.T) {
	r := &Recorder{}
	_ = r.Publish(context.Background(), Event{Type: "ENTRY_CREATED"})

	evs := r.Events()
	evs[0].Type = "mutated"

	if r.Events()[0].Type != "ENTRY_CREATED" {
		t.Error("expected recorder contents unaffected by caller mutation")
	}
}

func TestEvent_JSONOmitsEmptyEntry(t *testing.T) {
	ev := Event{
		Type:   "NUDGE_DUE",
		UserID: uuid.New(),
		At:     time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
	}
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := m["entry_id"]; ok {
		t.Error("expected entry_id omitted when nil")
	}
	if m["type"] != "NUDGE_DUE" {
		t.Errorf("unexpected type %v", m["type"])
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	if err := p.Publish(context.Background(), Event{Type: "x"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("unexpected close error: %v", err)
	}
}
