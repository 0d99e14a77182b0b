package store

import (
	"context"
	"sort"
	"sync"

	"veristaff/internal/records/models"
	"veristaff/internal/scope"
	id "veristaff/pkg/domain"
	"veristaff/pkg/platform/sentinel"
)

// InMemory is the mutex-guarded record store used by unit tests and
// single-node development. Records are copied on the way in and out so
// callers can never mutate stored state in place.
type InMemory struct {
	mu      sync.RWMutex
	records map[id.RecordID]*models.Record
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[id.RecordID]*models.Record)}
}

func (s *InMemory) Find(_ context.Context, recordID id.RecordID) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[recordID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyRecord(record), nil
}

func (s *InMemory) List(_ context.Context, query Query) ([]*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Record
	for _, record := range s.records {
		if !matches(record, query) {
			continue
		}
		out = append(out, copyRecord(record))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemory) Create(_ context.Context, record *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.ID]; exists {
		return sentinel.ErrConflict
	}
	s.records[record.ID] = copyRecord(record)
	return nil
}

func (s *InMemory) Update(_ context.Context, record *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.ID]; !exists {
		return sentinel.ErrNotFound
	}
	// Last write wins; there is no revision check.
	s.records[record.ID] = copyRecord(record)
	return nil
}

func (s *InMemory) Delete(_ context.Context, recordID id.RecordID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[recordID]; !exists {
		return sentinel.ErrNotFound
	}
	delete(s.records, recordID)
	return nil
}

func matches(record *models.Record, query Query) bool {
	if query.Kind != "" && record.Kind != query.Kind {
		return false
	}
	if query.Owner != nil && record.OwnerUserID != *query.Owner {
		return false
	}
	return inScope(record, query.Scope)
}

func inScope(record *models.Record, filter scope.Filter) bool {
	switch {
	case filter.All:
		return true
	case filter.OrgID != nil:
		return record.OrgID != nil && *record.OrgID == *filter.OrgID
	case filter.OwnerUserID != nil:
		return record.OwnerUserID == *filter.OwnerUserID
	default:
		// An empty filter is a guard bug; fail closed.
		return false
	}
}

func copyRecord(record *models.Record) *models.Record {
	clone := *record
	if record.Attributes != nil {
		clone.Attributes = make(map[string]string, len(record.Attributes))
		for k, v := range record.Attributes {
			clone.Attributes[k] = v
		}
	}
	if record.OrgID != nil {
		orgID := *record.OrgID
		clone.OrgID = &orgID
	}
	if record.IssueDate != nil {
		issue := *record.IssueDate
		clone.IssueDate = &issue
	}
	if record.ExpiryDate != nil {
		expiry := *record.ExpiryDate
		clone.ExpiryDate = &expiry
	}
	if record.VerifiedBy != nil {
		verifier := *record.VerifiedBy
		clone.VerifiedBy = &verifier
	}
	if record.VerifiedAt != nil {
		verifiedAt := *record.VerifiedAt
		clone.VerifiedAt = &verifiedAt
	}
	return &clone
}
