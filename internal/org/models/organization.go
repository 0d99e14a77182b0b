// Package models defines the organization (tenant) aggregate and its owned
// email-domain mappings.
package models

import (
	"regexp"
	"strings"
	"time"

	id "veristaff/pkg/domain"
	dErrors "veristaff/pkg/domain-errors"
)

// Organization is the aggregate root for a tenant.
//
// Invariants:
//   - Name is non-empty and at most 128 characters
//   - Slug is non-empty, lowercase, and URL-safe
//   - Deactivating an organization is an immediate visibility boundary:
//     its domains stop matching new registrations. Existing users keep
//     their affiliation; suspending them is a separate operation.
type Organization struct {
	ID        id.OrgID  `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// NewOrganization validates and constructs an active organization.
func NewOrganization(orgID id.OrgID, name, slug string, now time.Time) (*Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "organization name cannot be empty")
	}
	if len(name) > 128 {
		return nil, dErrors.New(dErrors.CodeValidation, "organization name must be 128 characters or less")
	}
	slug = strings.ToLower(strings.TrimSpace(slug))
	if !slugPattern.MatchString(slug) {
		return nil, dErrors.New(dErrors.CodeValidation, "slug must be lowercase letters, digits, and hyphens")
	}
	return &Organization{
		ID:        orgID,
		Name:      name,
		Slug:      slug,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Deactivate marks the organization inactive.
// Errors: CodeInvariantViolation when already inactive.
func (o *Organization) Deactivate(now time.Time) error {
	if !o.IsActive {
		return dErrors.New(dErrors.CodeInvariantViolation, "organization is already inactive")
	}
	o.IsActive = false
	o.UpdatedAt = now
	return nil
}

// Reactivate marks the organization active.
// Errors: CodeInvariantViolation when already active.
func (o *Organization) Reactivate(now time.Time) error {
	if o.IsActive {
		return dErrors.New(dErrors.CodeInvariantViolation, "organization is already active")
	}
	o.IsActive = true
	o.UpdatedAt = now
	return nil
}

// OrgDomain maps an email domain to the organization that claims it.
// Registrations whose email domain matches an active entry are
// auto-assigned to that organization.
type OrgDomain struct {
	OrgID     id.OrgID  `json:"organization_id"`
	Domain    string    `json:"domain"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

var domainPattern = regexp.MustCompile(`^[a-z0-9]+(?:[.-][a-z0-9]+)*\.[a-z]{2,}$`)

// NewOrgDomain validates and constructs an active domain mapping.
func NewOrgDomain(orgID id.OrgID, domain string, now time.Time) (*OrgDomain, error) {
	if orgID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "organization_id is required")
	}
	domain = strings.ToLower(strings.TrimSpace(domain))
	if !domainPattern.MatchString(domain) {
		return nil, dErrors.New(dErrors.CodeValidation, "domain must be a valid DNS name")
	}
	return &OrgDomain{
		OrgID:     orgID,
		Domain:    domain,
		IsActive:  true,
		CreatedAt: now,
	}, nil
}
