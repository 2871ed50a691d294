package store

import (
	"context"
	"sync"

	"github.com/agenthands/almanac/internal/core/model"
)

// Memory is an in-process Store used by tests and as a fallback when no
// database path is configured.
type Memory struct {
	mu     sync.RWMutex
	events map[string]model.Event
}

func NewMemory() *Memory {
	return &Memory{events: make(map[string]model.Event)}
}

func (m *Memory) List(ctx context.Context) ([]model.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	events := make([]model.Event, 0, len(m.events))
	for _, ev := range m.events {
		events = append(events, copyEvent(ev))
	}
	return events, nil
}

func (m *Memory) Get(ctx context.Context, id string) (model.Event, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ev, ok := m.events[id]
	if !ok {
		return model.Event{}, false, nil
	}
	return copyEvent(ev), true, nil
}

func (m *Memory) Put(ctx context.Context, ev model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[ev.ID] = copyEvent(ev)
	return nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.events, id)
	return nil
}

func (m *Memory) Close() error { return nil }

// copyEvent detaches the coordinate pointer so callers cannot mutate
// stored state in place.
func copyEvent(ev model.Event) model.Event {
	if ev.Coordinates != nil {
		c := *ev.Coordinates
		ev.Coordinates = &c
	}
	return ev
}
