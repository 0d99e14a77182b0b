package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"veristaff/internal/activity"
	activitymemory "veristaff/internal/activity/store/memory"
	identity "veristaff/internal/identity/models"
	"veristaff/internal/org/store"
	id "veristaff/pkg/domain"
	dErrors "veristaff/pkg/domain-errors"
	"veristaff/pkg/requestcontext"
)

type OrgServiceSuite struct {
	suite.Suite
	orgs    *store.InMemory
	trail   *activitymemory.Store
	service *Service
}

func (s *OrgServiceSuite) SetupTest() {
	s.orgs = store.NewInMemory()
	s.trail = activitymemory.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = New(s.orgs, activity.NewLogger(s.trail, logger), logger)
}

func TestOrgServiceSuite(t *testing.T) {
	suite.Run(t, new(OrgServiceSuite))
}

func (s *OrgServiceSuite) ctxAs(role identity.Role, orgID id.OrgID) context.Context {
	actor := requestcontext.Actor{UserID: id.NewUserID(), OrgID: orgID, Role: string(role)}
	ctx := requestcontext.WithActor(context.Background(), actor)
	return requestcontext.WithTime(ctx, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
}

func (s *OrgServiceSuite) platformCtx() context.Context {
	return s.ctxAs(identity.RolePlatformAdmin, id.OrgID{})
}

func (s *OrgServiceSuite) TestCreateRequiresPlatformAdmin() {
	_, err := s.service.Create(s.ctxAs(identity.RoleAdmin, id.NewOrgID()), "Clinic X", "clinic-x")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	s.Equal(0, s.trail.Len())
}

func (s *OrgServiceSuite) TestCreateAndGet() {
	ctx := s.platformCtx()
	org, err := s.service.Create(ctx, "Clinic X", "clinic-x")
	s.Require().NoError(err)
	s.True(org.IsActive)
	s.Equal(1, s.trail.Len())

	s.Run("platform admin fetches any org", func() {
		found, err := s.service.Get(ctx, org.ID)
		s.Require().NoError(err)
		s.Equal("Clinic X", found.Name)
	})

	s.Run("own admin fetches own org", func() {
		found, err := s.service.Get(s.ctxAs(identity.RoleAdmin, org.ID), org.ID)
		s.Require().NoError(err)
		s.Equal(org.ID, found.ID)
	})

	s.Run("foreign admin is denied", func() {
		_, err := s.service.Get(s.ctxAs(identity.RoleAdmin, id.NewOrgID()), org.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("duplicate slug conflicts", func() {
		_, err := s.service.Create(ctx, "Clinic X Again", "clinic-x")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *OrgServiceSuite) TestDeactivateReactivate() {
	ctx := s.platformCtx()
	org, err := s.service.Create(ctx, "Clinic X", "clinic-x")
	s.Require().NoError(err)

	deactivated, err := s.service.Deactivate(ctx, org.ID)
	s.Require().NoError(err)
	s.False(deactivated.IsActive)

	s.Run("double deactivation violates an invariant", func() {
		_, err := s.service.Deactivate(ctx, org.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	reactivated, err := s.service.Reactivate(ctx, org.ID)
	s.Require().NoError(err)
	s.True(reactivated.IsActive)
}

func (s *OrgServiceSuite) TestDomains() {
	ctx := s.platformCtx()
	org, err := s.service.Create(ctx, "Clinic X", "clinic-x")
	s.Require().NoError(err)

	entry, err := s.service.AddDomain(ctx, org.ID, "Clinic-X.com")
	s.Require().NoError(err)
	s.Equal("clinic-x.com", entry.Domain)

	s.Run("a domain belongs to one org platform-wide", func() {
		other, err := s.service.Create(ctx, "Clinic Y", "clinic-y")
		s.Require().NoError(err)
		_, err = s.service.AddDomain(ctx, other.ID, "clinic-x.com")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("malformed domains are rejected", func() {
		_, err := s.service.AddDomain(ctx, org.ID, "not a domain")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	domains, err := s.service.ListDomains(ctx, org.ID)
	s.Require().NoError(err)
	s.Len(domains, 1)
}
