// Package publisher fans committed activity entries out to the downstream
// feed (the notification collaborator consumes it). Emission is buffered
// and non-blocking: a slow or unavailable broker never stalls a request,
// and drops are counted instead of hidden.
package publisher

import (
	"context"
	"encoding/json"
	"log/slog"

	"veristaff/internal/activity"
	activitymetrics "veristaff/internal/activity/metrics"
)

// Producer is the broker-facing side, satisfied by platform/kafka.Client.
type Producer interface {
	Produce(ctx context.Context, key, value []byte) error
}

const defaultBuffer = 1024

// Feed buffers entries in a channel drained by Run.
type Feed struct {
	producer Producer
	inbox    chan activity.Entry
	logger   *slog.Logger
	metrics  *activitymetrics.Metrics
}

// Option configures the Feed.
type Option func(*Feed)

// WithBuffer overrides the inbox capacity.
func WithBuffer(n int) Option {
	return func(f *Feed) {
		if n > 0 {
			f.inbox = make(chan activity.Entry, n)
		}
	}
}

// WithMetrics attaches the activity metrics collector.
func WithMetrics(m *activitymetrics.Metrics) Option {
	return func(f *Feed) { f.metrics = m }
}

func New(producer Producer, logger *slog.Logger, opts ...Option) *Feed {
	f := &Feed{
		producer: producer,
		inbox:    make(chan activity.Entry, defaultBuffer),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// TryPublish enqueues an entry without blocking. Reports false when the
// buffer is full; the caller counts the drop.
func (f *Feed) TryPublish(entry activity.Entry) bool {
	select {
	case f.inbox <- entry:
		return true
	default:
		return false
	}
}

// Run drains the inbox until ctx is cancelled. Produce failures are logged
// and the entry is dropped; the durable trail already holds it, the feed is
// best-effort by policy.
func (f *Feed) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case entry := <-f.inbox:
			f.emit(ctx, entry)
		}
	}
}

func (f *Feed) emit(ctx context.Context, entry activity.Entry) {
	value, err := json.Marshal(entry)
	if err != nil {
		f.logger.ErrorContext(ctx, "activity feed marshal failed", "entry_id", entry.ID, "error", err)
		return
	}
	if err := f.producer.Produce(ctx, []byte(entry.ID.String()), value); err != nil {
		f.logger.ErrorContext(ctx, "activity feed produce failed", "entry_id", entry.ID, "error", err)
		return
	}
	if f.metrics != nil {
		f.metrics.EntriesPublished.Inc()
	}
}
