// Package activity records every mutation as an immutable audit entry and
// fans committed entries out to downstream consumers.
package activity

import (
	"time"

	id "veristaff/pkg/domain"
)

// Action is what happened to the entity.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
	ActionViewed  Action = "viewed"
)

// Entry is one immutable audit record of a mutation. Entries are append-only
// and are never mutated or deleted by normal operation.
type Entry struct {
	ID          id.EntryID        `json:"id"`
	OrgID       *id.OrgID         `json:"organization_id,omitempty"`
	ActorUserID id.UserID         `json:"actor_user_id"`
	Action      Action            `json:"action"`
	Entity      string            `json:"entity"`
	EntityID    string            `json:"entity_id"`
	EntityName  string            `json:"entity_name"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}
