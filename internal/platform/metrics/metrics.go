package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus metrics for the storage gateway.
type Metrics struct {
	PatientsCreated   prometheus.Counter
	IdentitiesErased  prometheus.Counter
	AuditAppended     prometheus.Counter
	IntegrityWarnings *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
}

// New creates gateway metrics and registers them on the given registerer.
// Passing a fresh registry keeps tests independent.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PatientsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "medvault_patients_created_total",
			Help: "Total number of patient record pairs created.",
		}),
		IdentitiesErased: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "medvault_identities_erased_total",
			Help: "Total number of identity records erased on data-subject request.",
		}),
		AuditAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "medvault_audit_entries_total",
			Help: "Total number of audit entries appended.",
		}),
		IntegrityWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medvault_integrity_warnings_total",
			Help: "Non-fatal integrity anomalies surfaced on read paths.",
		}, []string{"kind"}),
		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "medvault_gateway_operation_seconds",
			Help:    "Duration of gateway operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	reg.MustRegister(
		m.PatientsCreated,
		m.IdentitiesErased,
		m.AuditAppended,
		m.IntegrityWarnings,
		m.OperationDuration,
	)
	return m
}

// NewNop returns metrics backed by an unexported registry, for tests and
// callers that do not scrape.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
