// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package localex

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/localex/pkg/sql/opt/exchange"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts the work done by local exchange placement. The counters are
// safe for concurrent use, so one Metrics can be shared by many optimizers.
type Metrics struct {
	// ExchangesInserted counts the local exchanges inserted, by kind.
	ExchangesInserted *prometheus.CounterVec
	// PlansRewritten counts the plans that were rewritten successfully.
	PlansRewritten prometheus.Counter
	// PlanErrors counts the plans that could not be rewritten.
	PlanErrors prometheus.Counter
}

// NewMetrics returns a new set of metrics. They are not registered with any
// registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ExchangesInserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sql",
			Subsystem: "localex",
			Name:      "exchanges_inserted_total",
			Help:      "Number of local exchanges inserted into physical plans.",
		}, []string{"kind"}),
		PlansRewritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sql",
			Subsystem: "localex",
			Name:      "plans_rewritten_total",
			Help:      "Number of physical plans rewritten by local exchange placement.",
		}),
		PlanErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sql",
			Subsystem: "localex",
			Name:      "plan_errors_total",
			Help:      "Number of physical plans that failed local exchange placement.",
		}),
	}
	// Initialize the label values so that all kinds are exported from the
	// start.
	for k := exchange.Kind(0); k < exchange.NumKinds; k++ {
		m.ExchangesInserted.WithLabelValues(k.String())
	}
	return m
}

// Register registers all the metrics with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.ExchangesInserted, m.PlansRewritten, m.PlanErrors} {
		if err := reg.Register(c); err != nil {
			return errors.Wrap(err, "registering local exchange metrics")
		}
	}
	return nil
}

func (m *Metrics) exchangeInserted(kind exchange.Kind) {
	m.ExchangesInserted.WithLabelValues(kind.String()).Inc()
}
