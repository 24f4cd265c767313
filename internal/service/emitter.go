package service

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Events emitted by the services.
const (
	EventPageCreated     = "page:created"
	EventPageSaved       = "page:saved"
	EventPageRestored    = "page:restored"
	EventPageDeleted     = "page:deleted"
	EventPagesChanged    = "pages:changed"
	EventRevisionsPruned = "revisions:pruned"
)

// ─────────────────────────────────────────────────────────────
// EventEmitter: decouples services from whatever front end listens
// ─────────────────────────────────────────────────────────────

// EventEmitter notifies listeners of service events. Services receive it
// instead of a concrete transport so they can be tested with MockEmitter.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// NoopEmitter drops every event.
type NoopEmitter struct{}

func (NoopEmitter) Emit(context.Context, string, any) {}

// LogEmitter writes events to a logger. The CLI and the stdio server have no
// front end to notify.
type LogEmitter struct {
	Log *zap.SugaredLogger
}

func (e LogEmitter) Emit(_ context.Context, event string, data any) {
	log := e.Log
	if log == nil {
		log = zap.S()
	}
	log.Debugw("event", "event", event, "data", data)
}

// MockEmitter is a test-friendly EventEmitter that records all calls.
type MockEmitter struct {
	mu     sync.Mutex
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// Named returns the recorded emissions of one event.
func (m *MockEmitter) Named(event string) []EmittedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []EmittedEvent
	for _, e := range m.Events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}
