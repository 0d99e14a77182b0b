// Package service orchestrates record CRUD: scope guard, storage, audit
// trail, and status decoration, in that order. Derived values (status,
// color, document URL) are computed on every read and never persisted;
// "today" changes daily and caching would serve silently stale statuses.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"veristaff/internal/activity"
	"veristaff/internal/compliance"
	"veristaff/internal/documents"
	recordmetrics "veristaff/internal/records/metrics"
	"veristaff/internal/records/models"
	"veristaff/internal/records/store"
	"veristaff/internal/scope"
	id "veristaff/pkg/domain"
	dErrors "veristaff/pkg/domain-errors"
	"veristaff/pkg/platform/sentinel"
	"veristaff/pkg/requestcontext"
)

const tracerName = "veristaff/records"

// View is a record decorated with its derived status and resolved document
// URL, ready for the transport layer.
type View struct {
	*models.Record
	Status      compliance.Status `json:"status"`
	Color       compliance.Color  `json:"color"`
	DocumentURL string            `json:"document_url,omitempty"`
}

// Input carries the mutable fields of a record write.
type Input struct {
	Kind           models.Kind
	OrgID          *id.OrgID
	OwnerUserID    id.UserID
	CandidateName  string
	IssueDate      *time.Time
	ExpiryDate     *time.Time
	ManualOverride string
	DocumentRef    string
	Attributes     map[string]string
}

// Service is the record CRUD orchestrator.
type Service struct {
	records  store.Store
	audit    *activity.Logger
	resolver documents.Resolver
	logger   *slog.Logger
	metrics  *recordmetrics.Metrics
	tracer   trace.Tracer
}

// Option configures the Service.
type Option func(*Service)

// WithMetrics attaches the records metrics collector.
func WithMetrics(m *recordmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithResolver attaches the document URL resolver.
func WithResolver(r documents.Resolver) Option {
	return func(s *Service) { s.resolver = r }
}

func New(records store.Store, audit *activity.Logger, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		records: records,
		audit:   audit,
		logger:  logger,
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the actor's visible records of one kind, decorated.
func (s *Service) List(ctx context.Context, kind models.Kind) ([]View, error) {
	ctx, span := s.tracer.Start(ctx, "records.List",
		trace.WithAttributes(attribute.String("record.kind", string(kind))))
	defer span.End()

	_, filter, err := s.readScope(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.records.List(ctx, store.Query{Scope: filter, Kind: kind})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list records")
	}
	return s.decorateAll(ctx, records), nil
}

// Get returns one record by id, decorated. Out-of-scope records yield
// CodeForbidden, distinct from CodeNotFound, and the legitimate view is
// recorded in the audit trail.
func (s *Service) Get(ctx context.Context, recordID id.RecordID) (*View, error) {
	ctx, span := s.tracer.Start(ctx, "records.Get")
	defer span.End()

	record, err := s.findInScope(ctx, recordID, scope.AuthorizeRead)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, activity.ActionViewed, string(record.Kind), record.ID.String(),
		record.CandidateName, "record viewed", record.OrgID, nil)

	view := s.decorate(ctx, record)
	return &view, nil
}

// Create validates, authorizes, persists, and audits a new record.
func (s *Service) Create(ctx context.Context, input Input) (*View, error) {
	ctx, span := s.tracer.Start(ctx, "records.Create",
		trace.WithAttributes(attribute.String("record.kind", string(input.Kind))))
	defer span.End()

	now := requestcontext.Now(ctx)
	record, err := models.New(id.NewRecordID(), input.Kind, input.OwnerUserID, input.CandidateName, now)
	if err != nil {
		return nil, err
	}
	applyInput(record, input, now)
	if err := record.Validate(); err != nil {
		return nil, err
	}

	if err := s.authorizeWrite(ctx, record); err != nil {
		return nil, err
	}

	if err := s.records.Create(ctx, record); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create record")
	}

	s.audit.Record(ctx, activity.ActionCreated, string(record.Kind), record.ID.String(),
		record.CandidateName, "record created", record.OrgID, nil)
	s.countOp(record.Kind, "create")

	view := s.decorate(ctx, record)
	return &view, nil
}

// Update applies input to an existing record. The write is re-authorized
// against both the stored record and the updated shape so a write can
// neither escape the actor's scope nor move a record into it.
func (s *Service) Update(ctx context.Context, recordID id.RecordID, input Input) (*View, error) {
	ctx, span := s.tracer.Start(ctx, "records.Update")
	defer span.End()

	record, err := s.findInScope(ctx, recordID, scope.AuthorizeWrite)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	record.CandidateName = input.CandidateName
	applyInput(record, input, now)
	if err := record.Validate(); err != nil {
		return nil, err
	}
	if err := s.authorizeWrite(ctx, record); err != nil {
		return nil, err
	}

	if err := s.records.Update(ctx, record); err != nil {
		if dErrors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "record not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update record")
	}

	s.audit.Record(ctx, activity.ActionUpdated, string(record.Kind), record.ID.String(),
		record.CandidateName, "record updated", record.OrgID, nil)
	s.countOp(record.Kind, "update")

	view := s.decorate(ctx, record)
	return &view, nil
}

// Delete removes a record after re-checking scope.
func (s *Service) Delete(ctx context.Context, recordID id.RecordID) error {
	ctx, span := s.tracer.Start(ctx, "records.Delete")
	defer span.End()

	record, err := s.findInScope(ctx, recordID, scope.AuthorizeWrite)
	if err != nil {
		return err
	}

	if err := s.records.Delete(ctx, recordID); err != nil {
		if dErrors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "record not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete record")
	}

	s.audit.Record(ctx, activity.ActionDeleted, string(record.Kind), record.ID.String(),
		record.CandidateName, "record deleted", record.OrgID, nil)
	s.countOp(record.Kind, "delete")
	return nil
}

// findInScope loads a record and applies the given scope check. NotFound
// and Forbidden stay distinct: the denial is only reachable once existence
// is established.
func (s *Service) findInScope(ctx context.Context, recordID id.RecordID, authorize func(requestcontext.Actor, *models.Record) error) (*models.Record, error) {
	if recordID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "record id is required")
	}
	record, err := s.records.Find(ctx, recordID)
	if err != nil {
		if dErrors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "record not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load record")
	}

	actor, ok := requestcontext.GetActor(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if err := authorize(actor, record); err != nil {
		s.countDenial()
		return nil, err
	}
	return record, nil
}

func (s *Service) authorizeWrite(ctx context.Context, record *models.Record) error {
	actor, ok := requestcontext.GetActor(ctx)
	if !ok {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if err := scope.AuthorizeWrite(actor, record); err != nil {
		s.countDenial()
		return err
	}
	return nil
}

func (s *Service) readScope(ctx context.Context) (requestcontext.Actor, scope.Filter, error) {
	actor, ok := requestcontext.GetActor(ctx)
	if !ok {
		return requestcontext.Actor{}, scope.Filter{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	filter, err := scope.ReadFilter(actor)
	if err != nil {
		s.countDenial()
		return requestcontext.Actor{}, scope.Filter{}, err
	}
	return actor, filter, nil
}

func (s *Service) decorateAll(ctx context.Context, records []*models.Record) []View {
	views := make([]View, 0, len(records))
	for _, record := range records {
		views = append(views, s.decorate(ctx, record))
	}
	return views
}

func (s *Service) decorate(ctx context.Context, record *models.Record) View {
	today := requestcontext.Now(ctx)
	status, color := compliance.DeriveStatus(today, record.ExpiryDate, record.ManualOverride)

	view := View{Record: record, Status: status, Color: color}
	if s.resolver != nil && record.DocumentRef != "" {
		url, err := s.resolver.ResolveURL(ctx, record.DocumentRef)
		if err != nil {
			s.logger.WarnContext(ctx, "document url resolution failed",
				"record_id", record.ID, "error", err)
		} else {
			view.DocumentURL = url
		}
	}
	return view
}

func applyInput(record *models.Record, input Input, now time.Time) {
	record.OrgID = input.OrgID
	record.IssueDate = input.IssueDate
	record.ExpiryDate = input.ExpiryDate
	record.ManualOverride = input.ManualOverride
	record.DocumentRef = input.DocumentRef
	record.Attributes = input.Attributes
	record.UpdatedAt = now
}

func (s *Service) countOp(kind models.Kind, operation string) {
	if s.metrics != nil {
		s.metrics.Operations.WithLabelValues(string(kind), operation).Inc()
	}
}

func (s *Service) countDenial() {
	if s.metrics != nil {
		s.metrics.ScopeDenials.Inc()
	}
}
