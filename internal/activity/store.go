package activity

import (
	"context"

	id "veristaff/pkg/domain"
)

// ListQuery bounds an audit trail listing. The scope guard has already
// resolved who may see what; the store only applies the predicate.
type ListQuery struct {
	OrgID       *id.OrgID  // entries under one organization
	ActorUserID *id.UserID // entries by one actor
	Entity      string     // optional entity kind filter
	Limit       int        // 0 means store default
}

// Store persists audit entries. Append must be durable before it returns:
// the logger calls it synchronously inside the mutating request so "it
// happened" and "it was logged" cannot diverge under normal operation.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	List(ctx context.Context, query ListQuery) ([]Entry, error)
}
