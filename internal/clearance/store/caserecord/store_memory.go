// Package caserecord persists clearance cases. The store enforces
// single-writer semantics per case through an optimistic version check.
package caserecord

import (
	"context"
	"sort"
	"sync"
	"time"

	"portflow/internal/clearance/models"
	id "portflow/pkg/domain"
	dErrors "portflow/pkg/domain-errors"
)

// InMemoryStore is the single-process case store used in tests and demos.
type InMemoryStore struct {
	mu    sync.RWMutex
	cases map[id.CaseID]*models.ClearanceCase
	now   func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		cases: make(map[id.CaseID]*models.ClearanceCase),
		now:   time.Now,
	}
}

func (s *InMemoryStore) Create(_ context.Context, c *models.ClearanceCase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.cases[c.ID]; exists {
		return dErrors.Newf(dErrors.CodeConflict, "case %s already exists", c.ID)
	}
	for _, existing := range s.cases {
		if existing.ContainerID == c.ContainerID && !existing.Stage.Terminal() {
			return dErrors.Newf(dErrors.CodeConflict, "container %s already has a live case", c.ContainerID)
		}
	}

	cp := c.Clone()
	cp.Version = 1
	now := s.now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	s.cases[c.ID] = cp

	c.Version = cp.Version
	c.CreatedAt = cp.CreatedAt
	c.UpdatedAt = cp.UpdatedAt
	return nil
}

func (s *InMemoryStore) Load(_ context.Context, caseID id.CaseID) (*models.ClearanceCase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cases[caseID]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "case %s not found", caseID)
	}
	return c.Clone(), nil
}

func (s *InMemoryStore) LoadByContainer(_ context.Context, containerID id.ContainerID) (*models.ClearanceCase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var newest *models.ClearanceCase
	for _, c := range s.cases {
		if c.ContainerID != containerID {
			continue
		}
		if newest == nil || c.CreatedAt.After(newest.CreatedAt) {
			newest = c
		}
	}
	if newest == nil {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "no case for container %s", containerID)
	}
	return newest.Clone(), nil
}

func (s *InMemoryStore) Save(_ context.Context, c *models.ClearanceCase, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.cases[c.ID]
	if !ok {
		return dErrors.Newf(dErrors.CodeNotFound, "case %s not found", c.ID)
	}
	if stored.Version != expectedVersion {
		return dErrors.Newf(dErrors.CodeConflict,
			"case %s was modified concurrently (version %d, expected %d)", c.ID, stored.Version, expectedVersion)
	}
	if len(c.History) < len(stored.History) {
		return dErrors.Newf(dErrors.CodeConflict, "case %s history must be append-only", c.ID)
	}

	cp := c.Clone()
	cp.Version = expectedVersion + 1
	cp.UpdatedAt = s.now().UTC()
	s.cases[c.ID] = cp

	c.Version = cp.Version
	c.UpdatedAt = cp.UpdatedAt
	return nil
}

func (s *InMemoryStore) Append(_ context.Context, caseID id.CaseID, entry models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.cases[caseID]
	if !ok {
		return dErrors.Newf(dErrors.CodeNotFound, "case %s not found", caseID)
	}
	entry.Seq = len(stored.History) + 1
	stored.History = append(stored.History, entry)
	stored.UpdatedAt = s.now().UTC()
	return nil
}

func (s *InMemoryStore) List(_ context.Context, stage models.Stage, limit int) ([]*models.ClearanceCase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.ClearanceCase
	for _, c := range s.cases {
		if stage != "" && c.Stage != stage {
			continue
		}
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
