// Package store persists organizations and their email-domain mappings.
package store

import (
	"context"

	"veristaff/internal/org/models"
	id "veristaff/pkg/domain"
)

// Store is the organization storage collaborator.
//
// FindActiveByDomain resolves an email domain to the organization claiming
// it; only active domain entries on active organizations match, so a
// deactivated tenant immediately stops absorbing new registrations.
type Store interface {
	Create(ctx context.Context, org *models.Organization) error
	FindByID(ctx context.Context, orgID id.OrgID) (*models.Organization, error)
	FindBySlug(ctx context.Context, slug string) (*models.Organization, error)
	List(ctx context.Context) ([]*models.Organization, error)
	Update(ctx context.Context, org *models.Organization) error

	AddDomain(ctx context.Context, domain *models.OrgDomain) error
	ListDomains(ctx context.Context, orgID id.OrgID) ([]*models.OrgDomain, error)
	FindActiveByDomain(ctx context.Context, domain string) (*models.OrgDomain, error)
}
