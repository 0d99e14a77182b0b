package activity

import (
	"context"
	"log/slog"

	activitymetrics "veristaff/internal/activity/metrics"
	id "veristaff/pkg/domain"
	"veristaff/pkg/requestcontext"
)

// Publisher fans a committed entry out to downstream consumers (the
// notification collaborator reads the feed). TryPublish must never block
// the request path; a full buffer drops the entry and reports false.
type Publisher interface {
	TryPublish(entry Entry) bool
}

// Logger appends one immutable entry per successful mutation.
//
// Durability policy: the store append runs synchronously inside the request,
// after the mutation is confirmed persisted and before it is acknowledged.
// An append failure does not roll the mutation back (the trail is a
// diagnostic record, not a transactional ledger) but it is always surfaced
// to operators via the structured log and the append-failure counter, never
// silently dropped.
type Logger struct {
	store     Store
	publisher Publisher
	logger    *slog.Logger
	metrics   *activitymetrics.Metrics
}

// Option configures the Logger.
type Option func(*Logger)

// WithPublisher attaches the downstream feed publisher.
func WithPublisher(p Publisher) Option {
	return func(l *Logger) { l.publisher = p }
}

// WithMetrics attaches the activity metrics collector.
func WithMetrics(m *activitymetrics.Metrics) Option {
	return func(l *Logger) { l.metrics = m }
}

func NewLogger(store Store, logger *slog.Logger, opts ...Option) *Logger {
	l := &Logger{store: store, logger: logger}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record appends an audit entry for a confirmed mutation. Fire-and-forget
// from the caller's perspective: it never returns an error.
//
// Actor identity, correlation id, and client metadata are read from the
// request context so call sites only describe the mutation itself.
func (l *Logger) Record(ctx context.Context, action Action, entity, entityID, entityName, description string, orgID *id.OrgID, metadata map[string]string) {
	actor, _ := requestcontext.GetActor(ctx)

	entry := Entry{
		ID:          id.NewEntryID(),
		OrgID:       orgID,
		ActorUserID: actor.UserID,
		Action:      action,
		Entity:      entity,
		EntityID:    entityID,
		EntityName:  entityName,
		Description: description,
		Metadata:    enrich(ctx, metadata),
		CreatedAt:   requestcontext.Now(ctx).UTC(),
	}

	if err := l.store.Append(ctx, entry); err != nil {
		if l.metrics != nil {
			l.metrics.AppendFailures.Inc()
		}
		l.logger.ErrorContext(ctx, "activity append failed",
			"action", action,
			"entity", entity,
			"entity_id", entityID,
			"error", err,
		)
		return
	}
	if l.metrics != nil {
		l.metrics.EntriesAppended.Inc()
	}

	if l.publisher != nil {
		if !l.publisher.TryPublish(entry) {
			if l.metrics != nil {
				l.metrics.PublishDrops.Inc()
			}
			l.logger.WarnContext(ctx, "activity publish buffer full, entry dropped",
				"entity", entity,
				"entity_id", entityID,
			)
		}
	}
}

// List returns audit entries for the given query. Scope resolution happens
// in the transport layer via the scope guard; the logger only reads.
func (l *Logger) List(ctx context.Context, query ListQuery) ([]Entry, error) {
	return l.store.List(ctx, query)
}

func enrich(ctx context.Context, metadata map[string]string) map[string]string {
	requestID := requestcontext.RequestID(ctx)
	clientIP := requestcontext.ClientIP(ctx)
	userAgent := requestcontext.UserAgent(ctx)
	if requestID == "" && clientIP == "" && userAgent == "" {
		return metadata
	}
	enriched := make(map[string]string, len(metadata)+3)
	for k, v := range metadata {
		enriched[k] = v
	}
	if requestID != "" {
		enriched["request_id"] = requestID
	}
	if clientIP != "" {
		enriched["client_ip"] = clientIP
	}
	if userAgent != "" {
		enriched["user_agent"] = userAgent
	}
	return enriched
}
