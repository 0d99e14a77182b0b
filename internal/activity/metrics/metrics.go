// Package metrics exposes Prometheus metrics for the activity module.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the activity trail counters. AppendFailures is the
// operator-facing signal for the audit policy: a failed audit write never
// fails the triggering mutation, so it must surface here instead.
type Metrics struct {
	EntriesAppended  prometheus.Counter
	AppendFailures   prometheus.Counter
	EntriesPublished prometheus.Counter
	PublishDrops     prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		EntriesAppended: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veristaff_activity_entries_appended_total",
			Help: "Activity log entries appended.",
		}),
		AppendFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veristaff_activity_append_failures_total",
			Help: "Activity log append failures (mutation still succeeded).",
		}),
		EntriesPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veristaff_activity_entries_published_total",
			Help: "Activity entries published to the downstream feed.",
		}),
		PublishDrops: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veristaff_activity_publish_drops_total",
			Help: "Activity entries dropped because the publish buffer was full.",
		}),
	}
}
