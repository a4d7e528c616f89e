package metrics

import "github.com/prometheus/client_golang/prometheus"

// BackendMetrics counts and times calls to the clinic backend API.
type BackendMetrics struct {
	requestsTotal  *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	slotQueries    *prometheus.CounterVec
}

func NewBackendMetrics(reg prometheus.Registerer) *BackendMetrics {
	m := &BackendMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "siddhaka",
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Total calls to the clinic backend API",
		}, []string{"operation", "outcome"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "siddhaka",
			Subsystem: "backend",
			Name:      "request_latency_seconds",
			Help:      "Latency of clinic backend API calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		slotQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "siddhaka",
			Subsystem: "workflow",
			Name:      "slot_queries_total",
			Help:      "Slot availability queries by result",
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestLatency, m.slotQueries)
	return m
}

// ObserveRequest records one backend call. outcome is "ok", "rejected" or "error".
func (m *BackendMetrics) ObserveRequest(operation, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(operation, outcome).Inc()
	m.requestLatency.WithLabelValues(operation).Observe(seconds)
}

// ObserveSlotQuery records whether a slot query was applied, empty or superseded.
func (m *BackendMetrics) ObserveSlotQuery(result string) {
	if m == nil {
		return
	}
	m.slotQueries.WithLabelValues(result).Inc()
}
