// Package metrics exposes Prometheus metrics for the records module.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the record CRUD counters, labeled by kind and operation.
type Metrics struct {
	Operations   *prometheus.CounterVec
	ScopeDenials prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Operations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veristaff_record_operations_total",
			Help: "Successful record operations by kind and operation.",
		}, []string{"kind", "operation"}),
		ScopeDenials: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veristaff_record_scope_denials_total",
			Help: "Record operations denied by the tenant scope guard.",
		}),
	}
}
