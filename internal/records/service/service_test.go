package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"veristaff/internal/activity"
	activitymemory "veristaff/internal/activity/store/memory"
	"veristaff/internal/compliance"
	"veristaff/internal/documents/mocks"
	identity "veristaff/internal/identity/models"
	"veristaff/internal/records/models"
	"veristaff/internal/records/store"
	id "veristaff/pkg/domain"
	dErrors "veristaff/pkg/domain-errors"
	"veristaff/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	records *store.InMemory
	trail   *activitymemory.Store
	service *Service
	today   time.Time
	orgA    id.OrgID
	orgB    id.OrgID
}

func (s *ServiceSuite) SetupTest() {
	s.records = store.NewInMemory()
	s.trail = activitymemory.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = New(s.records, activity.NewLogger(s.trail, logger), logger)
	s.today = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	s.orgA = id.NewOrgID()
	s.orgB = id.NewOrgID()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) ctxFor(role identity.Role, orgID id.OrgID) (context.Context, requestcontext.Actor) {
	actor := requestcontext.Actor{UserID: id.NewUserID(), OrgID: orgID, Role: string(role)}
	ctx := requestcontext.WithActor(context.Background(), actor)
	ctx = requestcontext.WithTime(ctx, s.today)
	return ctx, actor
}

func (s *ServiceSuite) input(orgID id.OrgID, owner id.UserID, expiryDays int) Input {
	expiry := s.today.AddDate(0, 0, expiryDays)
	return Input{
		Kind:          models.KindCredential,
		OrgID:         &orgID,
		OwnerUserID:   owner,
		CandidateName: "Jane Doe",
		ExpiryDate:    &expiry,
	}
}

func (s *ServiceSuite) mustCreate(ctx context.Context, input Input) *View {
	view, err := s.service.Create(ctx, input)
	s.Require().NoError(err)
	return view
}

func (s *ServiceSuite) TestCreateDerivesStatus() {
	ctx, _ := s.ctxFor(identity.RoleAdmin, s.orgA)

	s.Run("future expiry is active", func() {
		view := s.mustCreate(ctx, s.input(s.orgA, id.NewUserID(), 90))
		s.Equal(compliance.StatusActive, view.Status)
		s.Equal(compliance.ColorGreen, view.Color)
	})

	s.Run("near expiry is expiring soon", func() {
		view := s.mustCreate(ctx, s.input(s.orgA, id.NewUserID(), 14))
		s.Equal(compliance.StatusExpiringSoon, view.Status)
	})

	s.Run("no expiry is pending", func() {
		input := s.input(s.orgA, id.NewUserID(), 0)
		input.ExpiryDate = nil
		view := s.mustCreate(ctx, input)
		s.Equal(compliance.StatusPending, view.Status)
		s.Equal(compliance.ColorGray, view.Color)
	})
}

func (s *ServiceSuite) TestExactlyOneAuditEntryPerMutation() {
	ctx, _ := s.ctxFor(identity.RoleAdmin, s.orgA)

	view := s.mustCreate(ctx, s.input(s.orgA, id.NewUserID(), 90))
	s.Equal(1, s.trail.Len())

	input := s.input(s.orgA, view.OwnerUserID, 120)
	_, err := s.service.Update(ctx, view.ID, input)
	s.Require().NoError(err)
	s.Equal(2, s.trail.Len())

	s.Require().NoError(s.service.Delete(ctx, view.ID))
	s.Equal(3, s.trail.Len())

	entries, err := s.trail.List(ctx, activity.ListQuery{})
	s.Require().NoError(err)
	s.Equal(activity.ActionDeleted, entries[0].Action)
	s.Equal(activity.ActionUpdated, entries[1].Action)
	s.Equal(activity.ActionCreated, entries[2].Action)
}

func (s *ServiceSuite) TestGetAuditsView() {
	ctx, _ := s.ctxFor(identity.RoleAdmin, s.orgA)
	view := s.mustCreate(ctx, s.input(s.orgA, id.NewUserID(), 90))
	s.Equal(1, s.trail.Len())

	_, err := s.service.Get(ctx, view.ID)
	s.Require().NoError(err)
	s.Equal(2, s.trail.Len())

	entries, err := s.trail.List(ctx, activity.ListQuery{})
	s.Require().NoError(err)
	s.Equal(activity.ActionViewed, entries[0].Action)
}

func (s *ServiceSuite) TestDeniedAccessLeavesNoViewEntry() {
	ctxA, _ := s.ctxFor(identity.RoleAdmin, s.orgA)
	view := s.mustCreate(ctxA, s.input(s.orgA, id.NewUserID(), 90))
	appended := s.trail.Len()

	ctxB, _ := s.ctxFor(identity.RoleAdmin, s.orgB)
	_, err := s.service.Get(ctxB, view.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	// A denied view never reaches the audit trail.
	s.Equal(appended, s.trail.Len())
}

func (s *ServiceSuite) TestForbiddenIsDistinctFromNotFound() {
	ctxA, _ := s.ctxFor(identity.RoleAdmin, s.orgA)
	view := s.mustCreate(ctxA, s.input(s.orgA, id.NewUserID(), 90))

	ctxB, _ := s.ctxFor(identity.RoleAdmin, s.orgB)

	s.Run("existing record outside scope is 403", func() {
		_, err := s.service.Get(ctxB, view.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("missing record is 404 for everyone", func() {
		_, err := s.service.Get(ctxB, id.NewRecordID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		_, err = s.service.Get(ctxA, id.NewRecordID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestCandidateScope() {
	ctxAdmin, _ := s.ctxFor(identity.RoleAdmin, s.orgA)
	ctxCandidate, candidate := s.ctxFor(identity.RoleCandidate, id.OrgID{})

	own := s.mustCreate(ctxAdmin, s.input(s.orgA, candidate.UserID, 90))
	other := s.mustCreate(ctxAdmin, s.input(s.orgA, id.NewUserID(), 90))

	s.Run("candidate lists only own records", func() {
		views, err := s.service.List(ctxCandidate, models.KindCredential)
		s.Require().NoError(err)
		s.Require().Len(views, 1)
		s.Equal(own.ID, views[0].ID)
	})

	s.Run("candidate cannot fetch another candidate's record", func() {
		_, err := s.service.Get(ctxCandidate, other.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("candidate cannot write another candidate's record", func() {
		_, err := s.service.Update(ctxCandidate, other.ID, s.input(s.orgA, candidate.UserID, 30))
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *ServiceSuite) TestWriteCannotEscapeScope() {
	ctxA, _ := s.ctxFor(identity.RoleAdmin, s.orgA)
	view := s.mustCreate(ctxA, s.input(s.orgA, id.NewUserID(), 90))

	// Moving a record into another organization would take it out of the
	// writer's scope; the updated shape is re-authorized and rejected.
	_, err := s.service.Update(ctxA, view.ID, s.input(s.orgB, view.OwnerUserID, 90))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *ServiceSuite) TestLastWriteWins() {
	ctx, _ := s.ctxFor(identity.RoleAdmin, s.orgA)
	view := s.mustCreate(ctx, s.input(s.orgA, id.NewUserID(), 90))

	first := s.input(s.orgA, view.OwnerUserID, 45)
	first.ManualOverride = "verified"
	_, err := s.service.Update(ctx, view.ID, first)
	s.Require().NoError(err)

	second := s.input(s.orgA, view.OwnerUserID, 60)
	updated, err := s.service.Update(ctx, view.ID, second)
	s.Require().NoError(err)

	// Full replacement: the second write clears the first's override.
	s.Empty(updated.ManualOverride)
	s.Equal(compliance.StatusActive, updated.Status)
}

func (s *ServiceSuite) TestValidation() {
	ctx, _ := s.ctxFor(identity.RoleAdmin, s.orgA)

	s.Run("expiry before issue is rejected", func() {
		input := s.input(s.orgA, id.NewUserID(), 10)
		issue := s.today.AddDate(0, 0, 20)
		input.IssueDate = &issue
		_, err := s.service.Create(ctx, input)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("missing candidate name is rejected", func() {
		input := s.input(s.orgA, id.NewUserID(), 10)
		input.CandidateName = ""
		_, err := s.service.Create(ctx, input)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unauthenticated context is rejected", func() {
		_, err := s.service.Create(context.Background(), s.input(s.orgA, id.NewUserID(), 10))
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *ServiceSuite) TestDocumentURLResolution() {
	ctrl := gomock.NewController(s.T())
	resolver := mocks.NewMockResolver(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := New(s.records, activity.NewLogger(s.trail, logger), logger, WithResolver(resolver))

	ctx, _ := s.ctxFor(identity.RoleAdmin, s.orgA)

	s.Run("resolved url decorates the view", func() {
		input := s.input(s.orgA, id.NewUserID(), 90)
		input.DocumentRef = "certs/rn-license.pdf"
		resolver.EXPECT().
			ResolveURL(gomock.Any(), "certs/rn-license.pdf").
			Return("https://blobs.example.com/certs/rn-license.pdf", nil).
			Times(2) // create response and subsequent get
		view, err := svc.Create(ctx, input)
		s.Require().NoError(err)
		s.Equal("https://blobs.example.com/certs/rn-license.pdf", view.DocumentURL)

		fetched, err := svc.Get(ctx, view.ID)
		s.Require().NoError(err)
		s.Equal(view.DocumentURL, fetched.DocumentURL)
	})

	s.Run("resolution failure degrades to an empty url", func() {
		input := s.input(s.orgA, id.NewUserID(), 90)
		input.DocumentRef = "missing.pdf"
		resolver.EXPECT().
			ResolveURL(gomock.Any(), "missing.pdf").
			Return("", dErrors.New(dErrors.CodeInternal, "blob backend down"))
		view, err := svc.Create(ctx, input)
		s.Require().NoError(err)
		s.Empty(view.DocumentURL)
	})
}
