// Package readstate persists which derived notifications a team has already read.
package readstate

import (
	"context"
	"sync"
)

// Store records read notification ids per team. Ids are opaque strings; marking an id
// that is never derived again is harmless.
type Store interface {
	MarkRead(ctx context.Context, teamID string, ids ...string) error
	ReadIDs(ctx context.Context, teamID string) (map[string]bool, error)
}

// MemoryStore is the in-process fallback used when Redis is not configured.
// State is lost on restart.
type MemoryStore struct {
	mu   sync.RWMutex
	read map[string]map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{read: make(map[string]map[string]struct{})}
}

func (s *MemoryStore) MarkRead(_ context.Context, teamID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.read[teamID]
	if !ok {
		set = make(map[string]struct{}, len(ids))
		s.read[teamID] = set
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return nil
}

func (s *MemoryStore) ReadIDs(_ context.Context, teamID string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]bool, len(s.read[teamID]))
	for id := range s.read[teamID] {
		out[id] = true
	}
	return out, nil
}
