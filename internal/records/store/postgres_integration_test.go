//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"veristaff/internal/records/models"
	"veristaff/internal/records/store"
	"veristaff/internal/scope"
	id "veristaff/pkg/domain"
	"veristaff/pkg/platform/sentinel"
	"veristaff/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "compliance_records"))
}

func newTestRecord(kind models.Kind, orgID id.OrgID, owner id.UserID) *models.Record {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Record{
		ID:            id.NewRecordID(),
		Kind:          kind,
		OrgID:         &orgID,
		OwnerUserID:   owner,
		CandidateName: "Jane Doe",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	record := newTestRecord(models.KindCredential, id.NewOrgID(), id.NewUserID())
	expiry := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	record.ExpiryDate = &expiry
	record.ManualOverride = "verified"
	record.DocumentRef = "certs/rn-license.pdf"
	record.Attributes = map[string]string{"license_class": "RN", "state": "CA"}

	s.Require().NoError(s.store.Create(ctx, record))

	found, err := s.store.Find(ctx, record.ID)
	s.Require().NoError(err)
	s.Equal(record.ID, found.ID)
	s.Equal(models.KindCredential, found.Kind)
	s.Require().NotNil(found.OrgID)
	s.Equal(*record.OrgID, *found.OrgID)
	s.Equal("Jane Doe", found.CandidateName)
	s.Require().NotNil(found.ExpiryDate)
	s.True(expiry.Equal(*found.ExpiryDate))
	s.Equal("verified", found.ManualOverride)
	s.Equal("certs/rn-license.pdf", found.DocumentRef)
	s.Equal(record.Attributes, found.Attributes)
}

func (s *PostgresStoreSuite) TestNullableColumns() {
	ctx := context.Background()
	record := newTestRecord(models.KindReference, id.NewOrgID(), id.NewUserID())
	record.OrgID = nil

	s.Require().NoError(s.store.Create(ctx, record))

	found, err := s.store.Find(ctx, record.ID)
	s.Require().NoError(err)
	s.Nil(found.OrgID)
	s.Nil(found.IssueDate)
	s.Nil(found.ExpiryDate)
	s.Empty(found.ManualOverride)
	s.Empty(found.DocumentRef)
	s.Nil(found.Attributes)
}

func (s *PostgresStoreSuite) TestListScopePredicateRunsInSQL() {
	ctx := context.Background()
	orgA, orgB := id.NewOrgID(), id.NewOrgID()
	owner := id.NewUserID()

	inA := newTestRecord(models.KindCredential, orgA, owner)
	inB := newTestRecord(models.KindCredential, orgB, id.NewUserID())
	otherKind := newTestRecord(models.KindHealthRecord, orgA, owner)
	s.Require().NoError(s.store.Create(ctx, inA))
	s.Require().NoError(s.store.Create(ctx, inB))
	s.Require().NoError(s.store.Create(ctx, otherKind))

	s.Run("all scope with kind filter", func() {
		out, err := s.store.List(ctx, store.Query{Scope: scope.Filter{All: true}, Kind: models.KindCredential})
		s.Require().NoError(err)
		s.Len(out, 2)
	})

	s.Run("org scope", func() {
		out, err := s.store.List(ctx, store.Query{Scope: scope.Filter{OrgID: &orgA}, Kind: models.KindCredential})
		s.Require().NoError(err)
		s.Require().Len(out, 1)
		s.Equal(inA.ID, out[0].ID)
	})

	s.Run("owner scope", func() {
		out, err := s.store.List(ctx, store.Query{Scope: scope.Filter{OwnerUserID: &owner}})
		s.Require().NoError(err)
		s.Len(out, 2)
	})

	s.Run("empty scope returns nothing", func() {
		out, err := s.store.List(ctx, store.Query{})
		s.Require().NoError(err)
		s.Empty(out)
	})
}

func (s *PostgresStoreSuite) TestConcurrentUpdatesLastWriteWins() {
	ctx := context.Background()
	record := newTestRecord(models.KindCredential, id.NewOrgID(), id.NewUserID())
	s.Require().NoError(s.store.Create(ctx, record))

	const goroutines = 25
	var wg sync.WaitGroup
	var failures atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			updated := *record
			updated.ManualOverride = "verified"
			updated.UpdatedAt = record.UpdatedAt.Add(time.Duration(idx) * time.Millisecond)
			if err := s.store.Update(ctx, &updated); err != nil {
				failures.Add(1)
			}
		}(i)
	}
	wg.Wait()

	s.Equal(int32(0), failures.Load(), "all updates should succeed, last write wins")

	found, err := s.store.Find(ctx, record.ID)
	s.Require().NoError(err)
	s.Equal("verified", found.ManualOverride)
}

func (s *PostgresStoreSuite) TestSentinelErrors() {
	ctx := context.Background()
	record := newTestRecord(models.KindCredential, id.NewOrgID(), id.NewUserID())
	s.Require().NoError(s.store.Create(ctx, record))

	s.Run("duplicate id conflicts", func() {
		s.ErrorIs(s.store.Create(ctx, record), sentinel.ErrConflict)
	})

	s.Run("missing rows are ErrNotFound", func() {
		_, err := s.store.Find(ctx, id.NewRecordID())
		s.ErrorIs(err, sentinel.ErrNotFound)

		ghost := newTestRecord(models.KindCredential, id.NewOrgID(), id.NewUserID())
		s.ErrorIs(s.store.Update(ctx, ghost), sentinel.ErrNotFound)
		s.ErrorIs(s.store.Delete(ctx, ghost.ID), sentinel.ErrNotFound)
	})
}
