// Package domain defines shared domain primitives: typed identifiers and
// small value types used across modules.
//
// Typed IDs prevent cross-type assignment at compile time (a UserID can
// never be passed where an OrgID is expected). Construct them via the
// Parse* functions at trust boundaries; direct casting bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "veristaff/pkg/domain-errors"
)

// UserID identifies a user account.
type UserID uuid.UUID

// OrgID identifies an organization (tenant).
type OrgID uuid.UUID

// RecordID identifies a compliance record of any kind.
type RecordID uuid.UUID

// EntryID identifies an activity log entry.
type EntryID uuid.UUID

func (id UserID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id OrgID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id RecordID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id EntryID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

func (id UserID) String() string   { return uuid.UUID(id).String() }
func (id OrgID) String() string    { return uuid.UUID(id).String() }
func (id RecordID) String() string { return uuid.UUID(id).String() }
func (id EntryID) String() string  { return uuid.UUID(id).String() }

// NewUserID returns a fresh random UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewOrgID returns a fresh random OrgID.
func NewOrgID() OrgID { return OrgID(uuid.New()) }

// NewRecordID returns a fresh random RecordID.
func NewRecordID() RecordID { return RecordID(uuid.New()) }

// NewEntryID returns a fresh random EntryID.
func NewEntryID() EntryID { return EntryID(uuid.New()) }

// ParseUserID validates external input into a UserID.
// Errors: CodeInvalidInput when the value is empty, malformed, or the nil UUID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return UserID{}, err
	}
	return UserID(u), nil
}

// ParseOrgID validates external input into an OrgID.
func ParseOrgID(s string) (OrgID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return OrgID{}, err
	}
	return OrgID(u), nil
}

// ParseRecordID validates external input into a RecordID.
func ParseRecordID(s string) (RecordID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return RecordID{}, err
	}
	return RecordID(u), nil
}

// ParseEntryID validates external input into an EntryID.
func ParseEntryID(s string) (EntryID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return EntryID{}, err
	}
	return EntryID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}
