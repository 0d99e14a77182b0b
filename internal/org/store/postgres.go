package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"veristaff/internal/org/models"
	id "veristaff/pkg/domain"
	"veristaff/pkg/platform/sentinel"
)

// Postgres is the PostgreSQL organization store.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, org *models.Organization) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO organizations (id, name, slug, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(org.ID), org.Name, org.Slug, org.IsActive, org.CreatedAt, org.UpdatedAt)
	if isUniqueViolationOrg(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create organization: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, orgID id.OrgID) (*models.Organization, error) {
	return s.findOne(ctx, `WHERE id = $1`, uuid.UUID(orgID))
}

func (s *Postgres) FindBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	return s.findOne(ctx, `WHERE slug = $1`, strings.ToLower(slug))
}

func (s *Postgres) findOne(ctx context.Context, where string, arg any) (*models.Organization, error) {
	var (
		org   models.Organization
		orgID uuid.UUID
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, slug, is_active, created_at, updated_at
		FROM organizations `+where,
		arg,
	).Scan(&orgID, &org.Name, &org.Slug, &org.IsActive, &org.CreatedAt, &org.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find organization: %w", err)
	}
	org.ID = id.OrgID(orgID)
	return &org, nil
}

func (s *Postgres) List(ctx context.Context) ([]*models.Organization, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, slug, is_active, created_at, updated_at
		FROM organizations ORDER BY slug
	`)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []*models.Organization
	for rows.Next() {
		var (
			org   models.Organization
			orgID uuid.UUID
		)
		if err := rows.Scan(&orgID, &org.Name, &org.Slug, &org.IsActive, &org.CreatedAt, &org.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		org.ID = id.OrgID(orgID)
		orgs = append(orgs, &org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate organizations: %w", err)
	}
	return orgs, nil
}

func (s *Postgres) Update(ctx context.Context, org *models.Organization) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE organizations SET name = $2, slug = $3, is_active = $4, updated_at = $5
		WHERE id = $1
	`, uuid.UUID(org.ID), org.Name, org.Slug, org.IsActive, org.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update organization: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) AddDomain(ctx context.Context, domain *models.OrgDomain) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO organization_domains (organization_id, domain, is_active, created_at)
		VALUES ($1, $2, $3, $4)
	`, uuid.UUID(domain.OrgID), domain.Domain, domain.IsActive, domain.CreatedAt)
	if isUniqueViolationOrg(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("add organization domain: %w", err)
	}
	return nil
}

func (s *Postgres) ListDomains(ctx context.Context, orgID id.OrgID) ([]*models.OrgDomain, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT organization_id, domain, is_active, created_at
		FROM organization_domains WHERE organization_id = $1 ORDER BY domain
	`, uuid.UUID(orgID))
	if err != nil {
		return nil, fmt.Errorf("list organization domains: %w", err)
	}
	defer rows.Close()

	var domains []*models.OrgDomain
	for rows.Next() {
		domain, err := scanDomain(rows)
		if err != nil {
			return nil, err
		}
		domains = append(domains, domain)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate organization domains: %w", err)
	}
	return domains, nil
}

// FindActiveByDomain joins against organizations so registrations never
// match a domain whose tenant has been deactivated.
func (s *Postgres) FindActiveByDomain(ctx context.Context, domain string) (*models.OrgDomain, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT d.organization_id, d.domain, d.is_active, d.created_at
		FROM organization_domains d
		JOIN organizations o ON o.id = d.organization_id
		WHERE d.domain = $1 AND d.is_active AND o.is_active
	`, strings.ToLower(domain))

	entry, err := scanDomain(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDomain(row rowScanner) (*models.OrgDomain, error) {
	var (
		domain models.OrgDomain
		orgID  uuid.UUID
	)
	if err := row.Scan(&orgID, &domain.Domain, &domain.IsActive, &domain.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan organization domain: %w", err)
	}
	domain.OrgID = id.OrgID(orgID)
	return &domain, nil
}

func isUniqueViolationOrg(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
