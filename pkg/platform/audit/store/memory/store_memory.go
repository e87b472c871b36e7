package memory

import (
	"context"
	"sync"

	audit "portflow/pkg/platform/audit"
)

// InMemoryStore keeps audit events per case. Used in tests and as a fallback
// sink when Kafka is not configured.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[string][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[string][]audit.Event)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[string][]audit.Event)
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.CaseID] = append(s.events[event.CaseID], event)
	return nil
}

func (s *InMemoryStore) ListByCase(_ context.Context, caseID string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[caseID]...), nil
}

// ListAll returns all audit events across all cases.
func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []audit.Event
	for _, caseEvents := range s.events {
		all = append(all, caseEvents...)
	}
	return all, nil
}
