package compliance

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"veristaff/internal/records/models"
	"veristaff/internal/records/store"
	"veristaff/internal/scope"
	id "veristaff/pkg/domain"
	dErrors "veristaff/pkg/domain-errors"
	"veristaff/pkg/requestcontext"
)

const tracerName = "veristaff/compliance"

// Service computes candidate compliance summaries on demand. The six kind
// listings fan out concurrently; the roll-up itself is pure.
type Service struct {
	records store.Store
	tracer  trace.Tracer
}

func NewService(records store.Store) *Service {
	return &Service{
		records: records,
		tracer:  otel.Tracer(tracerName),
	}
}

// CandidateSummary rolls one candidate's records across all six kinds into
// a score and tier. The actor's scope filter bounds every listing, so an
// admin of organization A computing a summary for a candidate whose records
// live under organization B sees an empty portfolio, never B's data.
func (s *Service) CandidateSummary(ctx context.Context, candidate id.UserID, candidateName string) (Summary, error) {
	ctx, span := s.tracer.Start(ctx, "compliance.CandidateSummary",
		trace.WithAttributes(attribute.String("candidate.id", candidate.String())))
	defer span.End()

	actor, ok := requestcontext.GetActor(ctx)
	if !ok {
		return Summary{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if err := scope.AuthorizeCandidateView(actor, candidate); err != nil {
		return Summary{}, err
	}
	filter, err := scope.ReadFilter(actor)
	if err != nil {
		return Summary{}, err
	}

	records, err := s.listAllKinds(ctx, filter, candidate)
	if err != nil {
		return Summary{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidate records")
	}

	today := requestcontext.Now(ctx)
	summary := ComputeCompliance(today, candidateName, records)
	span.SetAttributes(
		attribute.Int("compliance.score", summary.Score),
		attribute.String("compliance.tier", string(summary.Tier)),
	)
	return summary, nil
}

func (s *Service) listAllKinds(ctx context.Context, filter scope.Filter, candidate id.UserID) ([]*models.Record, error) {
	var (
		mu  sync.Mutex
		all []*models.Record
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range models.Kinds() {
		g.Go(func() error {
			records, err := s.records.List(gctx, store.Query{
				Scope: filter,
				Kind:  kind,
				Owner: &candidate,
			})
			if err != nil {
				return err
			}
			mu.Lock()
			all = append(all, records...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return all, nil
}
