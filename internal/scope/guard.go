// Package scope implements the tenant scope guard: the single place where
// role-based visibility is decided.
//
// The guard is a static capability table consulted per request, not a
// dynamic state machine:
//
//	role             visible organizations   visible records
//	platform_admin   all                     all
//	org_super_admin  own organization        all records under own org
//	admin            own organization        all records under own org
//	candidate        none                    only records they own
//
// Reads are intersected with the actor's visibility predicate before the
// query executes, never filtered after fetching. Writes re-check the
// target record against the same table. Denial is a distinct outcome from
// not-found: the guard returns CodeForbidden, mapped to 403, never a
// silent empty result.
package scope

import (
	identity "veristaff/internal/identity/models"
	"veristaff/internal/records/models"
	id "veristaff/pkg/domain"
	dErrors "veristaff/pkg/domain-errors"
	"veristaff/pkg/requestcontext"
)

// Filter is the visibility predicate handed to the storage collaborator.
// Exactly one of the three shapes is produced per actor:
//   - All: no restriction (platform admins)
//   - OrgID set: records under one organization
//   - OwnerUserID set: records owned by one user
//
// Storage is not required to understand roles; it only applies the filter.
type Filter struct {
	All         bool
	OrgID       *id.OrgID
	OwnerUserID *id.UserID
}

// ReadFilter resolves the actor's visibility predicate for list queries.
// Errors: CodeForbidden for unknown roles or org-scoped roles with no org.
func ReadFilter(actor requestcontext.Actor) (Filter, error) {
	switch identity.Role(actor.Role) {
	case identity.RolePlatformAdmin:
		return Filter{All: true}, nil
	case identity.RoleOrgSuperAdmin, identity.RoleAdmin:
		if actor.OrgID.IsNil() {
			return Filter{}, dErrors.New(dErrors.CodeForbidden, "administrator has no organization scope")
		}
		orgID := actor.OrgID
		return Filter{OrgID: &orgID}, nil
	case identity.RoleCandidate:
		if actor.UserID.IsNil() {
			return Filter{}, dErrors.New(dErrors.CodeForbidden, "candidate identity is required")
		}
		userID := actor.UserID
		return Filter{OwnerUserID: &userID}, nil
	default:
		return Filter{}, dErrors.New(dErrors.CodeForbidden, "unknown role")
	}
}

// AuthorizeRead checks a single fetched record against the actor's scope.
// The caller has already established existence, so a denial here maps to
// 403, not 404.
func AuthorizeRead(actor requestcontext.Actor, record *models.Record) error {
	return authorize(actor, record, "record is outside your organization scope")
}

// AuthorizeWrite checks a create/update/delete target against the actor's
// scope. A candidate may only write records they own; an admin may not
// write records of a different organization even when they hold the id.
func AuthorizeWrite(actor requestcontext.Actor, record *models.Record) error {
	return authorize(actor, record, "you may not modify records outside your scope")
}

func authorize(actor requestcontext.Actor, record *models.Record, denial string) error {
	switch identity.Role(actor.Role) {
	case identity.RolePlatformAdmin:
		return nil
	case identity.RoleOrgSuperAdmin, identity.RoleAdmin:
		if actor.OrgID.IsNil() || record.OrgID == nil || *record.OrgID != actor.OrgID {
			return dErrors.New(dErrors.CodeForbidden, denial)
		}
		return nil
	case identity.RoleCandidate:
		if actor.UserID.IsNil() || record.OwnerUserID != actor.UserID {
			return dErrors.New(dErrors.CodeForbidden, denial)
		}
		return nil
	default:
		return dErrors.New(dErrors.CodeForbidden, "unknown role")
	}
}

// AuthorizeOrgView checks whether the actor may see org-level resources
// (organization details, activity trails) for the given organization.
func AuthorizeOrgView(actor requestcontext.Actor, orgID id.OrgID) error {
	switch identity.Role(actor.Role) {
	case identity.RolePlatformAdmin:
		return nil
	case identity.RoleOrgSuperAdmin, identity.RoleAdmin:
		if actor.OrgID.IsNil() || actor.OrgID != orgID {
			return dErrors.New(dErrors.CodeForbidden, "organization is outside your scope")
		}
		return nil
	default:
		return dErrors.New(dErrors.CodeForbidden, "no organization-level access")
	}
}

// AuthorizeCandidateView checks whether the actor may see another user's
// compliance summary. Candidates may only see their own; admins are bounded
// by their organization through the record filter applied afterwards.
func AuthorizeCandidateView(actor requestcontext.Actor, candidate id.UserID) error {
	switch identity.Role(actor.Role) {
	case identity.RolePlatformAdmin, identity.RoleOrgSuperAdmin, identity.RoleAdmin:
		return nil
	case identity.RoleCandidate:
		if actor.UserID != candidate {
			return dErrors.New(dErrors.CodeForbidden, "candidates may only view their own compliance")
		}
		return nil
	default:
		return dErrors.New(dErrors.CodeForbidden, "unknown role")
	}
}
