// Package store persists compliance records. The scope guard supplies the
// visibility filter; stores apply it without understanding roles.
package store

import (
	"context"

	"veristaff/internal/records/models"
	"veristaff/internal/scope"
	id "veristaff/pkg/domain"
)

// Query bounds a record listing. Scope is mandatory: every list is
// intersected with the actor's visibility predicate before execution, never
// filtered after fetching.
type Query struct {
	Scope scope.Filter
	Kind  models.Kind // optional; zero value lists all kinds
	Owner *id.UserID  // optional; narrows to one candidate's records
}

// Store is the storage collaborator for all six record kinds.
//
// Find is unscoped: the service needs the record to distinguish
// forbidden (exists, out of scope => 403) from not found (404).
type Store interface {
	Find(ctx context.Context, recordID id.RecordID) (*models.Record, error)
	List(ctx context.Context, query Query) ([]*models.Record, error)
	Create(ctx context.Context, record *models.Record) error
	Update(ctx context.Context, record *models.Record) error
	Delete(ctx context.Context, recordID id.RecordID) error
}
