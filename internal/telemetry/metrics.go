// Package telemetry holds the Prometheus collectors of an admin API client.
package telemetry

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shopify_client"

// Metrics groups the client collectors. A nil *Metrics records nothing.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	retriesTotal        *prometheus.CounterVec
	throttlesTotal      prometheus.Counter
	callBudgetRemaining prometheus.Gauge
	pagesTotal          *prometheus.CounterVec
	filePollsTotal      *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg. A nil reg returns nil. Clients
// sharing a registerer share the collectors already registered on it.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}

	return &Metrics{
		httpRequestsTotal: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of admin API HTTP requests",
		}, []string{"method", "status"})),

		httpRequestDuration: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of admin API HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"})),

		retriesTotal: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Total number of retried operations",
		}, []string{"operation"})),

		throttlesTotal: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "throttles_total",
			Help:      "Total number of call budget cooldowns",
		})),

		callBudgetRemaining: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "call_budget_remaining",
			Help:      "Remaining call budget reported by the last response",
		})),

		pagesTotal: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_total",
			Help:      "Total number of list pages fetched",
		}, []string{"resource"})),

		filePollsTotal: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_polls_total",
			Help:      "Total number of file status polls",
		}, []string{"status"})),
	}
}

// register adds collector to reg. When an equal collector is already
// registered the existing one is returned. A collector that cannot be
// registered still records but is not exported.
func register[T prometheus.Collector](reg prometheus.Registerer, collector T) T {
	err := reg.Register(collector)
	if err == nil {
		return collector
	}

	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(T); ok {
			return existing
		}
	}

	return collector
}

// ObserveRequest records one transport call. status is 0 for transport errors.
func (m *Metrics) ObserveRequest(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}

	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}

	m.httpRequestsTotal.WithLabelValues(method, label).Inc()
	m.httpRequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// RecordRetry records one retry of operation.
func (m *Metrics) RecordRetry(operation string) {
	if m == nil {
		return
	}

	m.retriesTotal.WithLabelValues(operation).Inc()
}

// RecordCallBudget records the remaining budget and whether a cooldown ran.
func (m *Metrics) RecordCallBudget(remaining int, throttled bool) {
	if m == nil {
		return
	}

	m.callBudgetRemaining.Set(float64(remaining))

	if throttled {
		m.throttlesTotal.Inc()
	}
}

// RecordPage records one fetched list page.
func (m *Metrics) RecordPage(resource string) {
	if m == nil {
		return
	}

	m.pagesTotal.WithLabelValues(resource).Inc()
}

// RecordFilePoll records one file status observation.
func (m *Metrics) RecordFilePoll(status string) {
	if m == nil {
		return
	}

	m.filePollsTotal.WithLabelValues(status).Inc()
}
