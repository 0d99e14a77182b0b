// Package models defines the compliance record aggregate shared by all six
// record kinds.
package models

import (
	"strings"
	"time"

	id "veristaff/pkg/domain"
	dErrors "veristaff/pkg/domain-errors"
)

// Kind discriminates the six compliance record kinds. All kinds share the
// Record shape; kind-specific attributes ride in the Attributes map and
// never affect the status engine's contract.
type Kind string

const (
	KindCredential        Kind = "credential"
	KindBackgroundCheck   Kind = "background_check"
	KindHealthRecord      Kind = "health_record"
	KindWorkAuthorization Kind = "work_authorization"
	KindReference         Kind = "reference"
	KindTrainingRecord    Kind = "training_record"
)

// Kinds lists every record kind in a stable order. The aggregator walks
// this list when assembling a candidate's full portfolio.
func Kinds() []Kind {
	return []Kind{
		KindCredential,
		KindBackgroundCheck,
		KindHealthRecord,
		KindWorkAuthorization,
		KindReference,
		KindTrainingRecord,
	}
}

var validKinds = map[Kind]bool{
	KindCredential:        true,
	KindBackgroundCheck:   true,
	KindHealthRecord:      true,
	KindWorkAuthorization: true,
	KindReference:         true,
	KindTrainingRecord:    true,
}

// ParseKind constructs a Kind from external input (URL segments, payloads).
// Errors: CodeInvalidInput for empty or unknown kinds.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if k == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "record kind cannot be empty")
	}
	if !validKinds[k] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown record kind")
	}
	return k, nil
}

// IsValid reports whether the kind is one of the six supported kinds.
func (k Kind) IsValid() bool { return validKinds[k] }

// Record is the common shape behind every compliance artifact: licenses,
// background checks, immunizations, work authorizations, references, and
// training records.
//
// Invariants:
//   - Every record belongs to exactly one owner user.
//   - OrgID may be nil: legacy and candidate-owned records are org-less.
//   - ExpiryDate, when present, is a calendar date; callers must compare it
//     against "today" in the single configured system time zone.
//   - Effective status is always derivable from dates; it is never stored,
//     except that a non-empty ManualOverride takes precedence verbatim.
//
// Concurrent edits to the same record are last-write-wins; there is no
// revision column.
type Record struct {
	ID            id.RecordID `json:"id"`
	Kind          Kind        `json:"kind"`
	OrgID         *id.OrgID   `json:"organization_id,omitempty"`
	OwnerUserID   id.UserID   `json:"owner_user_id"`
	CandidateName string      `json:"candidate_display_name"`

	IssueDate  *time.Time `json:"issue_date,omitempty"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`

	// ManualOverride, when non-empty, replaces the computed status verbatim.
	// Vocabulary is kind-specific (verified|failed|pending for checks,
	// valid|expired|pending_renewal for credentials, ...); see OverrideColor.
	ManualOverride string `json:"manual_status_override,omitempty"`

	VerifiedBy *id.UserID `json:"verified_by,omitempty"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`

	// DocumentRef is an opaque pointer resolved by the blob collaborator
	// into a URL. The record never carries storage-specific logic.
	DocumentRef string `json:"document_reference,omitempty"`

	// Attributes carries kind-specific fields (vaccine dose number,
	// training credits, ...) that are additive and never consulted by the
	// status engine.
	Attributes map[string]string `json:"attributes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// goodOverrides is the kind-agnostic union of every "good" vocabulary word
// a manual override or verification field can carry. A record without an
// expiry date counts as valid only when its override sits in this set.
var goodOverrides = map[string]bool{
	"verified":   true,
	"valid":      true,
	"up_to_date": true,
	"active":     true,
}

// HasGoodStanding reports whether the record's override marks it as being
// in a kind-specific "good" vocabulary.
func (r *Record) HasGoodStanding() bool {
	return goodOverrides[strings.ToLower(r.ManualOverride)]
}

// New validates and constructs a record. The caller supplies now from the
// request clock so CreatedAt/UpdatedAt stay deterministic in tests.
func New(recordID id.RecordID, kind Kind, owner id.UserID, candidateName string, now time.Time) (*Record, error) {
	if !kind.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "record kind is required")
	}
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "owner_user_id is required")
	}
	candidateName = strings.TrimSpace(candidateName)
	if candidateName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "candidate_display_name is required")
	}
	if len(candidateName) > 256 {
		return nil, dErrors.New(dErrors.CodeValidation, "candidate_display_name must be 256 characters or less")
	}
	return &Record{
		ID:            recordID,
		Kind:          kind,
		OwnerUserID:   owner,
		CandidateName: candidateName,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Validate re-checks invariants before an update is persisted.
func (r *Record) Validate() error {
	if !r.Kind.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "record kind is required")
	}
	if r.OwnerUserID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "owner_user_id is required")
	}
	if strings.TrimSpace(r.CandidateName) == "" {
		return dErrors.New(dErrors.CodeValidation, "candidate_display_name is required")
	}
	if r.IssueDate != nil && r.ExpiryDate != nil && r.ExpiryDate.Before(*r.IssueDate) {
		return dErrors.New(dErrors.CodeValidation, "expiry_date cannot precede issue_date")
	}
	return nil
}
