package handler

import (
	"strings"
	"time"

	"veristaff/internal/records/service"
	id "veristaff/pkg/domain"
	dErrors "veristaff/pkg/domain-errors"
)

const dateLayout = "2006-01-02"

// RecordRequest is the HTTP request body for record creates and updates.
// Dates are calendar dates (YYYY-MM-DD), not instants.
type RecordRequest struct {
	OrgID          string            `json:"organization_id,omitempty"`
	OwnerUserID    string            `json:"owner_user_id"`
	CandidateName  string            `json:"candidate_name"`
	IssueDate      string            `json:"issue_date,omitempty"`
	ExpiryDate     string            `json:"expiry_date,omitempty"`
	ManualOverride string            `json:"manual_override,omitempty"`
	DocumentRef    string            `json:"document_ref,omitempty"`
	Attributes     map[string]string `json:"attributes,omitempty"`

	// Parsed values (populated by Validate)
	parsedOrgID  *id.OrgID
	parsedOwner  id.UserID
	parsedIssue  *time.Time
	parsedExpiry *time.Time
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *RecordRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.CandidateName = strings.TrimSpace(r.CandidateName)
	if r.CandidateName == "" {
		return dErrors.New(dErrors.CodeValidation, "candidate_name is required")
	}

	owner, err := id.ParseUserID(r.OwnerUserID)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "owner_user_id must be a valid user id")
	}
	r.parsedOwner = owner

	if r.OrgID != "" {
		orgID, err := id.ParseOrgID(r.OrgID)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "organization_id must be a valid organization id")
		}
		r.parsedOrgID = &orgID
	}

	if r.parsedIssue, err = parseDate(r.IssueDate, "issue_date"); err != nil {
		return err
	}
	if r.parsedExpiry, err = parseDate(r.ExpiryDate, "expiry_date"); err != nil {
		return err
	}
	return nil
}

// Input converts the validated request into a service input.
func (r *RecordRequest) Input() service.Input {
	return service.Input{
		OrgID:          r.parsedOrgID,
		OwnerUserID:    r.parsedOwner,
		CandidateName:  r.CandidateName,
		IssueDate:      r.parsedIssue,
		ExpiryDate:     r.parsedExpiry,
		ManualOverride: strings.TrimSpace(r.ManualOverride),
		DocumentRef:    strings.TrimSpace(r.DocumentRef),
		Attributes:     r.Attributes,
	}
}

// parseDate parses a bare YYYY-MM-DD into UTC midnight. The status engine
// compares calendar components, so the zone the date is anchored to never
// shifts an expiry boundary.
func parseDate(value, field string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, field+" must be formatted as YYYY-MM-DD")
	}
	return &parsed, nil
}
