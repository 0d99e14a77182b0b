// Package memory provides the in-memory activity store used by unit tests
// and single-node development.
package memory

import (
	"context"
	"sync"

	"veristaff/internal/activity"
)

const defaultListLimit = 100

// Store is an append-only, mutex-guarded entry log.
type Store struct {
	mu      sync.RWMutex
	entries []activity.Entry
}

func New() *Store {
	return &Store{}
}

func (s *Store) Append(_ context.Context, entry activity.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

// List returns matching entries, most recent first.
func (s *Store) List(_ context.Context, query activity.ListQuery) ([]activity.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := query.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var out []activity.Entry
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		entry := s.entries[i]
		if query.OrgID != nil && (entry.OrgID == nil || *entry.OrgID != *query.OrgID) {
			continue
		}
		if query.ActorUserID != nil && entry.ActorUserID != *query.ActorUserID {
			continue
		}
		if query.Entity != "" && entry.Entity != query.Entity {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

// Len reports the total number of entries; used by tests to assert the
// exactly-one-entry-per-mutation property.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
