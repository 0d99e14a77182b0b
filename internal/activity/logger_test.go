package activity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "veristaff/pkg/domain"
	"veristaff/pkg/requestcontext"
)

type recordingStore struct {
	entries   []Entry
	appendErr error
}

func (s *recordingStore) Append(_ context.Context, entry Entry) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *recordingStore) List(_ context.Context, _ ListQuery) ([]Entry, error) {
	return s.entries, nil
}

type fakePublisher struct {
	published []Entry
	full      bool
}

func (p *fakePublisher) TryPublish(entry Entry) bool {
	if p.full {
		return false
	}
	p.published = append(p.published, entry)
	return true
}

type LoggerSuite struct {
	suite.Suite
	store *recordingStore
	ctx   context.Context
	actor requestcontext.Actor
}

func (s *LoggerSuite) SetupTest() {
	s.store = &recordingStore{}
	s.actor = requestcontext.Actor{UserID: id.NewUserID(), OrgID: id.NewOrgID(), Role: "admin"}
	ctx := requestcontext.WithActor(context.Background(), s.actor)
	ctx = requestcontext.WithRequestID(ctx, "req-123")
	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.9", "Chrome 133 (Windows)")
	s.ctx = requestcontext.WithTime(ctx, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerSuite))
}

func (s *LoggerSuite) newLogger(opts ...Option) *Logger {
	return NewLogger(s.store, slog.New(slog.NewTextHandler(io.Discard, nil)), opts...)
}

func (s *LoggerSuite) TestRecordCapturesRequestContext() {
	orgID := s.actor.OrgID
	s.newLogger().Record(s.ctx, ActionCreated, "credential", "rec-1", "Jane Doe", "record created", &orgID, map[string]string{"kind": "credential"})

	s.Require().Len(s.store.entries, 1)
	entry := s.store.entries[0]
	s.Equal(s.actor.UserID, entry.ActorUserID)
	s.Equal(ActionCreated, entry.Action)
	s.Equal("credential", entry.Entity)
	s.Equal("Jane Doe", entry.EntityName)
	s.False(entry.ID.IsNil())
	s.Equal(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), entry.CreatedAt)

	// Correlation metadata rides along without the caller naming it.
	s.Equal("req-123", entry.Metadata["request_id"])
	s.Equal("203.0.113.9", entry.Metadata["client_ip"])
	s.Equal("Chrome 133 (Windows)", entry.Metadata["user_agent"])
	s.Equal("credential", entry.Metadata["kind"])
}

func (s *LoggerSuite) TestAppendFailureDoesNotPanicOrPropagate() {
	s.store.appendErr = errors.New("disk full")

	// Record returns nothing; the mutation it describes must not fail.
	s.NotPanics(func() {
		s.newLogger().Record(s.ctx, ActionDeleted, "credential", "rec-1", "Jane Doe", "record deleted", nil, nil)
	})
	s.Empty(s.store.entries)
}

func (s *LoggerSuite) TestPublisherReceivesCommittedEntries() {
	pub := &fakePublisher{}
	s.newLogger(WithPublisher(pub)).Record(s.ctx, ActionUpdated, "credential", "rec-1", "Jane Doe", "record updated", nil, nil)

	s.Require().Len(pub.published, 1)
	s.Equal(ActionUpdated, pub.published[0].Action)
}

func (s *LoggerSuite) TestFullPublisherBufferDoesNotBlockOrFail() {
	pub := &fakePublisher{full: true}
	logger := s.newLogger(WithPublisher(pub))

	logger.Record(s.ctx, ActionUpdated, "credential", "rec-1", "Jane Doe", "record updated", nil, nil)

	// The durable trail still has the entry; only the feed dropped it.
	s.Len(s.store.entries, 1)
	s.Empty(pub.published)
}

func (s *LoggerSuite) TestStoreFailureSkipsPublish() {
	s.store.appendErr = errors.New("disk full")
	pub := &fakePublisher{}

	s.newLogger(WithPublisher(pub)).Record(s.ctx, ActionCreated, "credential", "rec-1", "Jane Doe", "record created", nil, nil)

	// Never publish what was not durably recorded.
	s.Empty(pub.published)
}
