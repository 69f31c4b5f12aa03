package host

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Invocation outcomes.
const (
	OutcomeCommitted  = "committed"
	OutcomeRolledBack = "rolled_back"
	OutcomeSimulated  = "simulated"
	OutcomeViewed     = "viewed"
)

// Metrics counts and times top-level invocations.
type Metrics struct {
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewMetrics creates the host collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "boscora",
			Subsystem: "host",
			Name:      "invocations_total",
			Help:      "Top-level contract invocations by contract, method and outcome.",
		}, []string{"contract", "method", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "boscora",
			Subsystem: "host",
			Name:      "invocation_duration_seconds",
			Help:      "Wall time of top-level contract invocations.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"contract", "method"}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.invocations, m.duration} {
			if err := reg.Register(c); err != nil {
				return nil, fmt.Errorf("host: register metrics: %w", err)
			}
		}
	}
	return m, nil
}

func (m *Metrics) observe(contract, method, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.invocations.WithLabelValues(contract, method, outcome).Inc()
	m.duration.WithLabelValues(contract, method).Observe(d.Seconds())
}
