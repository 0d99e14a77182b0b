// Package models defines user accounts and the role vocabulary consulted by
// the scope guard.
package models

import (
	"strings"
	"time"

	id "veristaff/pkg/domain"
	dErrors "veristaff/pkg/domain-errors"
)

// Role is the static capability class of a user. The scope guard's
// capability table is keyed on this value; roles are not hierarchical
// beyond what that table encodes.
type Role string

const (
	// RolePlatformAdmin sees every organization and every record.
	RolePlatformAdmin Role = "platform_admin"
	// RoleOrgSuperAdmin sees all records under their own organization.
	RoleOrgSuperAdmin Role = "org_super_admin"
	// RoleAdmin sees all records under their own organization.
	RoleAdmin Role = "admin"
	// RoleCandidate sees only records they own; no org-level views.
	RoleCandidate Role = "candidate"
)

var validRoles = map[Role]bool{
	RolePlatformAdmin: true,
	RoleOrgSuperAdmin: true,
	RoleAdmin:         true,
	RoleCandidate:     true,
}

// ParseRole constructs a Role from external input.
// Errors: CodeInvalidInput for empty or unknown roles.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if r == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	}
	if !validRoles[r] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown role")
	}
	return r, nil
}

// IsValid reports whether the role is one of the supported roles.
func (r Role) IsValid() bool { return validRoles[r] }

// AccessStatus gates whether an account may authenticate at all.
type AccessStatus string

const (
	AccessActive     AccessStatus = "active"
	AccessSuspended  AccessStatus = "suspended"
	AccessTerminated AccessStatus = "terminated"
)

// User is a platform account. OrgID is nil for platform admins and for
// unaffiliated candidates (self-registrations whose email domain matched no
// active organization domain).
type User struct {
	ID           id.UserID    `json:"id"`
	OrgID        *id.OrgID    `json:"organization_id,omitempty"`
	Email        string       `json:"email"`
	DisplayName  string       `json:"display_name"`
	Role         Role         `json:"role"`
	AccessStatus AccessStatus `json:"access_status"`
	PasswordHash []byte       `json:"-"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// CanAuthenticate reports whether the account is allowed to log in.
func (u *User) CanAuthenticate() bool {
	return u.AccessStatus == AccessActive
}

// EmailDomain returns the lowercased domain part of the user's email, or ""
// when the address is malformed.
func EmailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}

// NewUser validates and constructs an active user account.
func NewUser(userID id.UserID, email, displayName string, role Role, now time.Time) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "display_name is required")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "role is required")
	}
	return &User{
		ID:           userID,
		Email:        email,
		DisplayName:  displayName,
		Role:         role,
		AccessStatus: AccessActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
