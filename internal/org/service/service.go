// Package service manages organizations and their claimed email domains.
// All mutations are platform-admin operations; reads are additionally open
// to an organization's own admins.
package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"veristaff/internal/activity"
	"veristaff/internal/identity/models"
	orgmodels "veristaff/internal/org/models"
	"veristaff/internal/org/store"
	"veristaff/internal/scope"
	id "veristaff/pkg/domain"
	dErrors "veristaff/pkg/domain-errors"
	"veristaff/pkg/platform/sentinel"
	"veristaff/pkg/requestcontext"
)

const tracerName = "veristaff/org"

type Service struct {
	orgs   store.Store
	audit  *activity.Logger
	logger *slog.Logger
	tracer trace.Tracer
}

func New(orgs store.Store, audit *activity.Logger, logger *slog.Logger) *Service {
	return &Service{
		orgs:   orgs,
		audit:  audit,
		logger: logger,
		tracer: otel.Tracer(tracerName),
	}
}

// Create registers a new organization. Platform admins only.
func (s *Service) Create(ctx context.Context, name, slug string) (*orgmodels.Organization, error) {
	ctx, span := s.tracer.Start(ctx, "org.Create",
		trace.WithAttributes(attribute.String("org.slug", slug)))
	defer span.End()

	if err := s.requirePlatformAdmin(ctx); err != nil {
		return nil, err
	}

	org, err := orgmodels.NewOrganization(id.NewOrgID(), name, slug, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.orgs.Create(ctx, org); err != nil {
		if dErrors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "organization slug already in use")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create organization")
	}

	s.audit.Record(ctx, activity.ActionCreated, "organization", org.ID.String(),
		org.Name, "organization created", &org.ID, nil)
	return org, nil
}

// Get returns one organization. Platform admins see any organization;
// org-level admins see only their own.
func (s *Service) Get(ctx context.Context, orgID id.OrgID) (*orgmodels.Organization, error) {
	ctx, span := s.tracer.Start(ctx, "org.Get")
	defer span.End()

	actor, ok := requestcontext.GetActor(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if err := scope.AuthorizeOrgView(actor, orgID); err != nil {
		return nil, err
	}
	return s.find(ctx, orgID)
}

// List returns every organization. Platform admins only.
func (s *Service) List(ctx context.Context) ([]*orgmodels.Organization, error) {
	ctx, span := s.tracer.Start(ctx, "org.List")
	defer span.End()

	if err := s.requirePlatformAdmin(ctx); err != nil {
		return nil, err
	}
	orgs, err := s.orgs.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list organizations")
	}
	return orgs, nil
}

// Deactivate suspends an organization. Its members can no longer match the
// organization's domains at registration, and its records stay untouched.
func (s *Service) Deactivate(ctx context.Context, orgID id.OrgID) (*orgmodels.Organization, error) {
	return s.setActive(ctx, orgID, false)
}

// Reactivate lifts a suspension.
func (s *Service) Reactivate(ctx context.Context, orgID id.OrgID) (*orgmodels.Organization, error) {
	return s.setActive(ctx, orgID, true)
}

func (s *Service) setActive(ctx context.Context, orgID id.OrgID, active bool) (*orgmodels.Organization, error) {
	ctx, span := s.tracer.Start(ctx, "org.SetActive",
		trace.WithAttributes(attribute.Bool("org.active", active)))
	defer span.End()

	if err := s.requirePlatformAdmin(ctx); err != nil {
		return nil, err
	}
	org, err := s.find(ctx, orgID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	if active {
		err = org.Reactivate(now)
	} else {
		err = org.Deactivate(now)
	}
	if err != nil {
		return nil, err
	}

	if err := s.orgs.Update(ctx, org); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update organization")
	}

	description := "organization deactivated"
	if active {
		description = "organization reactivated"
	}
	s.audit.Record(ctx, activity.ActionUpdated, "organization", org.ID.String(),
		org.Name, description, &org.ID, nil)
	return org, nil
}

// AddDomain claims an email domain for an organization. A domain belongs to
// at most one organization platform-wide.
func (s *Service) AddDomain(ctx context.Context, orgID id.OrgID, domain string) (*orgmodels.OrgDomain, error) {
	ctx, span := s.tracer.Start(ctx, "org.AddDomain",
		trace.WithAttributes(attribute.String("org.domain", domain)))
	defer span.End()

	if err := s.requirePlatformAdmin(ctx); err != nil {
		return nil, err
	}
	org, err := s.find(ctx, orgID)
	if err != nil {
		return nil, err
	}

	entry, err := orgmodels.NewOrgDomain(orgID, domain, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.orgs.AddDomain(ctx, entry); err != nil {
		if dErrors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "domain already claimed")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to add organization domain")
	}

	s.audit.Record(ctx, activity.ActionUpdated, "organization", org.ID.String(),
		org.Name, "domain added", &org.ID, map[string]string{"domain": entry.Domain})
	return entry, nil
}

// ListDomains returns the domains claimed by one organization.
func (s *Service) ListDomains(ctx context.Context, orgID id.OrgID) ([]*orgmodels.OrgDomain, error) {
	ctx, span := s.tracer.Start(ctx, "org.ListDomains")
	defer span.End()

	actor, ok := requestcontext.GetActor(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if err := scope.AuthorizeOrgView(actor, orgID); err != nil {
		return nil, err
	}

	domains, err := s.orgs.ListDomains(ctx, orgID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list organization domains")
	}
	return domains, nil
}

func (s *Service) find(ctx context.Context, orgID id.OrgID) (*orgmodels.Organization, error) {
	if orgID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "organization id is required")
	}
	org, err := s.orgs.FindByID(ctx, orgID)
	if err != nil {
		if dErrors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "organization not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load organization")
	}
	return org, nil
}

func (s *Service) requirePlatformAdmin(ctx context.Context) error {
	actor, ok := requestcontext.GetActor(ctx)
	if !ok {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if actor.Role != string(models.RolePlatformAdmin) {
		return dErrors.New(dErrors.CodeForbidden, "platform admin role required")
	}
	return nil
}
