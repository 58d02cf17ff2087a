package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds all Prometheus metrics for the gateway.
type Metrics struct {
	Registrations      *prometheus.CounterVec
	Compensations      *prometheus.CounterVec
	Logins             *prometheus.CounterVec
	OrphanedProfiles   prometheus.Counter
	DownstreamDuration *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg.
// Pass prometheus.DefaultRegisterer in main and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "idgate_registrations_total",
			Help: "Registration saga results by terminal outcome and failed step",
		}, []string{"outcome", "step"}),
		Compensations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "idgate_compensations_total",
			Help: "Profile deletions attempted to roll back a failed identity creation",
		}, []string{"outcome"}),
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "idgate_logins_total",
			Help: "Password grant attempts by outcome",
		}, []string{"outcome"}),
		OrphanedProfiles: factory.NewCounter(prometheus.CounterOpts{
			Name: "idgate_orphaned_profiles_total",
			Help: "Profiles left behind because compensation failed",
		}),
		DownstreamDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "idgate_downstream_request_duration_seconds",
			Help:    "Latency of calls to the identity provider and profile service",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "operation", "outcome"}),
	}
}

// NewNoop returns metrics bound to a throwaway registry.
func NewNoop() *Metrics {
	return New(prometheus.NewRegistry())
}

func (m *Metrics) ObserveRegistration(outcome, step string) {
	m.Registrations.WithLabelValues(outcome, step).Inc()
}

func (m *Metrics) ObserveCompensation(outcome string) {
	m.Compensations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveLogin(outcome string) {
	m.Logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementOrphanedProfiles() {
	m.OrphanedProfiles.Inc()
}

// ObserveDownstream records the duration of one outbound call.
func (m *Metrics) ObserveDownstream(service, operation string, start time.Time, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.DownstreamDuration.WithLabelValues(service, operation, outcome).Observe(time.Since(start).Seconds())
}
