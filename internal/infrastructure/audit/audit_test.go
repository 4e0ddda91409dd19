package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nexerp/edge-access/internal/core/domain"
)

type memWriter struct {
	mu     sync.Mutex
	events []domain.AuditEvent
	err    error
}

func (w *memWriter) Write(_ context.Context, ev domain.AuditEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.events = append(w.events, ev)
	return w.err
}

func (w *memWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.events)
}

func event(id string) domain.AuditEvent {
	return domain.AuditEvent{
		ID:         id,
		Kind:       domain.AuditJobDenied,
		UserID:     "u1",
		Role:       domain.RoleEmployee,
		Job:        domain.JobDelivery,
		Required:   []string{"SALES"},
		Method:     "GET",
		Path:       "/leads",
		OccurredAt: time.Now().UTC(),
	}
}

func TestDispatcher_FansOutToAllWriters(t *testing.T) {
	d := NewDispatcher(2, 16, "crm", zerolog.Nop())
	failing := &memWriter{err: errors.New("mongo down")}
	ok := &memWriter{}
	d.AddWriter("failing", failing)
	d.AddWriter("memory", ok)

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	for _, id := range []string{"a", "b", "c"} {
		d.Record(context.Background(), event(id))
	}
	cancel()
	d.Wait()

	if ok.count() != 3 || failing.count() != 3 {
		t.Fatalf("expected 3 events per writer, got ok=%d failing=%d", ok.count(), failing.count())
	}
	for _, ev := range ok.events {
		if ev.Service != "crm" {
			t.Fatalf("expected service stamped, got %q", ev.Service)
		}
	}
}

func TestDispatcher_RecordDropsWhenFull(t *testing.T) {
	d := NewDispatcher(1, 1, "crm", zerolog.Nop())
	w := &memWriter{}
	d.AddWriter("memory", w)

	done := make(chan struct{})
	go func() {
		d.Record(context.Background(), event("kept"))
		d.Record(context.Background(), event("dropped"))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Record blocked on a full queue")
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	cancel()
	d.Wait()

	if w.count() != 1 || w.events[0].ID != "kept" {
		t.Fatalf("expected only the first event delivered, got %+v", w.events)
	}
}

func TestDispatcher_KeepsExplicitService(t *testing.T) {
	d := NewDispatcher(1, 4, "crm", zerolog.Nop())
	w := &memWriter{}
	d.AddWriter("memory", w)

	ev := event("x")
	ev.Service = "billing"
	d.Record(context.Background(), ev)

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	cancel()
	d.Wait()

	if w.events[0].Service != "billing" {
		t.Fatalf("expected explicit service kept, got %q", w.events[0].Service)
	}
}

func TestLogSink_WritesStructuredWarning(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(zerolog.New(&buf))

	ev := event("01HX")
	ev.RequestID = "req-9"
	if err := sink.Write(context.Background(), ev); err != nil {
		t.Fatalf("write: %v", err)
	}

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("invalid log line %q: %v", buf.String(), err)
	}
	checks := map[string]any{
		"level":      "warn",
		"audit":      true,
		"kind":       "JOB_DENIED",
		"user_id":    "u1",
		"job":        "DELIVERY",
		"path":       "/leads",
		"request_id": "req-9",
		"event_id":   "01HX",
	}
	for k, v := range checks {
		if line[k] != v {
			t.Fatalf("%s: expected %v, got %v", k, v, line[k])
		}
	}
	if req, _ := line["required"].([]any); len(req) != 1 || req[0] != "SALES" {
		t.Fatalf("expected required [SALES], got %v", line["required"])
	}
}
