package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"veristaff/internal/records/models"
	"veristaff/internal/scope"
	id "veristaff/pkg/domain"
	"veristaff/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	orgA  id.OrgID
	orgB  id.OrgID
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.orgA = id.NewOrgID()
	s.orgB = id.NewOrgID()
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) newRecord(kind models.Kind, orgID id.OrgID, owner id.UserID, createdAt time.Time) *models.Record {
	return &models.Record{
		ID:            id.NewRecordID(),
		Kind:          kind,
		OrgID:         &orgID,
		OwnerUserID:   owner,
		CandidateName: "Jane Doe",
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

func (s *MemoryStoreSuite) TestCreateAndFind() {
	record := s.newRecord(models.KindCredential, s.orgA, id.NewUserID(), time.Now())
	s.Require().NoError(s.store.Create(s.ctx, record))

	found, err := s.store.Find(s.ctx, record.ID)
	s.Require().NoError(err)
	s.Equal(record.ID, found.ID)

	s.Run("duplicate id conflicts", func() {
		s.Require().ErrorIs(s.store.Create(s.ctx, record), sentinel.ErrConflict)
	})

	s.Run("unknown id is ErrNotFound", func() {
		_, err := s.store.Find(s.ctx, id.NewRecordID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *MemoryStoreSuite) TestStoredStateIsIsolatedFromCallers() {
	record := s.newRecord(models.KindCredential, s.orgA, id.NewUserID(), time.Now())
	record.Attributes = map[string]string{"license_class": "RN"}
	s.Require().NoError(s.store.Create(s.ctx, record))

	// Mutating the caller's copy after Create must not leak into the store.
	record.CandidateName = "Mallory"
	record.Attributes["license_class"] = "MD"

	found, err := s.store.Find(s.ctx, record.ID)
	s.Require().NoError(err)
	s.Equal("Jane Doe", found.CandidateName)
	s.Equal("RN", found.Attributes["license_class"])

	// And mutating a fetched copy must not change the stored record.
	found.CandidateName = "Eve"
	again, err := s.store.Find(s.ctx, record.ID)
	s.Require().NoError(err)
	s.Equal("Jane Doe", again.CandidateName)
}

func (s *MemoryStoreSuite) TestListAppliesScopeFilter() {
	owner := id.NewUserID()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	inA := s.newRecord(models.KindCredential, s.orgA, owner, base)
	inB := s.newRecord(models.KindCredential, s.orgB, id.NewUserID(), base.Add(time.Hour))
	s.Require().NoError(s.store.Create(s.ctx, inA))
	s.Require().NoError(s.store.Create(s.ctx, inB))

	s.Run("All sees both", func() {
		out, err := s.store.List(s.ctx, Query{Scope: scope.Filter{All: true}, Kind: models.KindCredential})
		s.Require().NoError(err)
		s.Len(out, 2)
	})

	s.Run("org filter sees only its tenant", func() {
		out, err := s.store.List(s.ctx, Query{Scope: scope.Filter{OrgID: &s.orgA}, Kind: models.KindCredential})
		s.Require().NoError(err)
		s.Require().Len(out, 1)
		s.Equal(inA.ID, out[0].ID)
	})

	s.Run("owner filter sees only owned", func() {
		out, err := s.store.List(s.ctx, Query{Scope: scope.Filter{OwnerUserID: &owner}})
		s.Require().NoError(err)
		s.Require().Len(out, 1)
		s.Equal(inA.ID, out[0].ID)
	})

	s.Run("empty filter fails closed", func() {
		out, err := s.store.List(s.ctx, Query{})
		s.Require().NoError(err)
		s.Empty(out)
	})
}

func (s *MemoryStoreSuite) TestListOrdering() {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	second := s.newRecord(models.KindCredential, s.orgA, id.NewUserID(), base.Add(time.Hour))
	first := s.newRecord(models.KindCredential, s.orgA, id.NewUserID(), base)
	s.Require().NoError(s.store.Create(s.ctx, second))
	s.Require().NoError(s.store.Create(s.ctx, first))

	out, err := s.store.List(s.ctx, Query{Scope: scope.Filter{All: true}})
	s.Require().NoError(err)
	s.Require().Len(out, 2)
	s.Equal(first.ID, out[0].ID)
	s.Equal(second.ID, out[1].ID)
}

func (s *MemoryStoreSuite) TestUpdateAndDelete() {
	record := s.newRecord(models.KindCredential, s.orgA, id.NewUserID(), time.Now())
	s.Require().NoError(s.store.Create(s.ctx, record))

	record.ManualOverride = "verified"
	s.Require().NoError(s.store.Update(s.ctx, record))
	found, err := s.store.Find(s.ctx, record.ID)
	s.Require().NoError(err)
	s.Equal("verified", found.ManualOverride)

	s.Require().NoError(s.store.Delete(s.ctx, record.ID))
	s.Require().ErrorIs(s.store.Delete(s.ctx, record.ID), sentinel.ErrNotFound)

	missing := s.newRecord(models.KindCredential, s.orgA, id.NewUserID(), time.Now())
	s.Require().ErrorIs(s.store.Update(s.ctx, missing), sentinel.ErrNotFound)
}
