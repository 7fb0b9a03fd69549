package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// AuditTotal counts completed order audits by verdict (pass, fail, error).
	AuditTotal *prometheus.CounterVec
	// AuditFieldMismatch counts individual field mismatches found by audits.
	AuditFieldMismatch *prometheus.CounterVec
	// UpstreamFetchTotal counts record fetches against the order store.
	UpstreamFetchTotal *prometheus.CounterVec
	// UpstreamFetchLatency records fetch latency in milliseconds.
	UpstreamFetchLatency *prometheus.HistogramVec
)

// MustRegisterDomainMetrics initialises and registers the audit-domain
// Prometheus collectors. Safe to call more than once.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		AuditTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_audit_total",
			Help:      "Count of completed order audits by verdict.",
		}, []string{"verdict"})
		AuditFieldMismatch = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_audit_field_mismatch_total",
			Help:      "Count of audited fields that diverged from the stored value.",
		}, []string{"field"})
		UpstreamFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_fetch_total",
			Help:      "Count of record fetches against the order store by outcome.",
		}, []string{"thing", "result"})
		UpstreamFetchLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_fetch_duration_ms",
			Help:      "Latency of record fetches against the order store in milliseconds.",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"thing"})

		registerCounterVec(reg, &AuditTotal)
		registerCounterVec(reg, &AuditFieldMismatch)
		registerCounterVec(reg, &UpstreamFetchTotal)
		registerHistogramVec(reg, &UpstreamFetchLatency)
	})
}
