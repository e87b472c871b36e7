package confirm

import (
	"context"
	"sync"
	"time"

	"portflow/internal/clearance/models"
)

// InMemoryStore holds approval records for a single process. Expiry is
// enforced lazily on read.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
	now     func() time.Time
}

type memoryRecord struct {
	record    Record
	expiresAt time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string]memoryRecord),
		now:     time.Now,
	}
}

func recordKey(caseID string, action models.ActionKind) string {
	return caseID + ":" + string(action)
}

func (s *InMemoryStore) Get(_ context.Context, caseID string, action models.ActionKind) (Record, bool, error) {
	s.mu.RLock()
	entry, ok := s.records[recordKey(caseID, action)]
	s.mu.RUnlock()
	if !ok || s.now().After(entry.expiresAt) {
		return Record{}, false, nil
	}
	return entry.record, true, nil
}

func (s *InMemoryStore) Put(_ context.Context, record Record, ttl time.Duration) error {
	s.mu.Lock()
	s.records[recordKey(record.CaseID, record.Action)] = memoryRecord{
		record:    record,
		expiresAt: s.now().Add(ttl),
	}
	s.mu.Unlock()
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, caseID string, action models.ActionKind) error {
	s.mu.Lock()
	delete(s.records, recordKey(caseID, action))
	s.mu.Unlock()
	return nil
}
