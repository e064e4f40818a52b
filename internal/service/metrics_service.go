package service

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/noah-isme/uniportal/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for backend calls,
// schedule resolution and navigation decisions.
type MetricsService struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	resolutions     *prometheus.CounterVec
	gateDecisions   *prometheus.CounterVec
	strategyErrors  *prometheus.CounterVec

	requestCount         uint64
	requestErrorCount    uint64
	requestDurationTotal uint64
	resolvedCount        uint64
	unresolvedCount      uint64
	failedCount          uint64
	strategyNotFound     uint64
	strategyErrorCount   uint64
}

// NewMetricsService registers the client collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portal_request_duration_seconds",
		Help:    "Duration of portal backend requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_requests_total",
		Help: "Total number of portal backend requests",
	}, []string{"method", "path", "status"})

	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_resolutions_total",
		Help: "Schedule resolutions by winning strategy",
	}, []string{"strategy"})

	gateDecisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gate_decisions_total",
		Help: "Navigation decisions by rule",
	}, []string{"rule"})

	strategyErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_strategy_errors_total",
		Help: "Schedule resolution strategy errors by outcome",
	}, []string{"strategy", "outcome"})

	registry.MustRegister(requestDuration, requestTotal, resolutions, gateDecisions, strategyErrors)

	return &MetricsService{
		registry:        registry,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		resolutions:     resolutions,
		gateDecisions:   gateDecisions,
		strategyErrors:  strategyErrors,
	}
}

// Registry returns the underlying registry for embedding applications.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records one backend call.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
	if status >= http.StatusBadRequest {
		atomic.AddUint64(&m.requestErrorCount, 1)
	}
}

// RecordResolution counts which strategy produced a window; an empty strategy
// means no window was open.
func (m *MetricsService) RecordResolution(strategy string) {
	if m == nil {
		return
	}
	if strategy == "" {
		m.resolutions.WithLabelValues("none").Inc()
		atomic.AddUint64(&m.unresolvedCount, 1)
		return
	}
	m.resolutions.WithLabelValues(strategy).Inc()
	atomic.AddUint64(&m.resolvedCount, 1)
}

// RecordResolutionFailure counts a resolution aborted by a strategy error.
func (m *MetricsService) RecordResolutionFailure(strategy string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues("error").Inc()
	m.strategyErrors.WithLabelValues(strategy, "aborted").Inc()
	atomic.AddUint64(&m.failedCount, 1)
}

// RecordStrategyFailure counts a strategy that answered with an error. 404s
// fall through to the next strategy and are labelled not_found.
func (m *MetricsService) RecordStrategyFailure(strategy string, notFound bool) {
	if m == nil {
		return
	}
	outcome := "error"
	if notFound {
		outcome = "not_found"
		atomic.AddUint64(&m.strategyNotFound, 1)
	} else {
		atomic.AddUint64(&m.strategyErrorCount, 1)
	}
	m.strategyErrors.WithLabelValues(strategy, outcome).Inc()
}

// RecordGateDecision counts navigation outcomes by the rule that decided them.
func (m *MetricsService) RecordGateDecision(rule string) {
	if m == nil {
		return
	}
	m.gateDecisions.WithLabelValues(rule).Inc()
}

// Snapshot returns aggregated counters.
func (m *MetricsService) Snapshot() models.ClientMetrics {
	if m == nil {
		return models.ClientMetrics{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	duration := atomic.LoadUint64(&m.requestDurationTotal)

	var avgMs float64
	if requests > 0 {
		avgMs = float64(duration) / float64(requests) / float64(time.Millisecond)
	}

	return models.ClientMetrics{
		RequestsTotal:            requests,
		RequestErrors:            atomic.LoadUint64(&m.requestErrorCount),
		AverageRequestDurationMs: avgMs,
		Resolved:                 atomic.LoadUint64(&m.resolvedCount),
		Unresolved:               atomic.LoadUint64(&m.unresolvedCount),
		ResolutionFailures:       atomic.LoadUint64(&m.failedCount),
		StrategyNotFound:         atomic.LoadUint64(&m.strategyNotFound),
		StrategyErrors:           atomic.LoadUint64(&m.strategyErrorCount),
		GeneratedAt:              time.Now().UTC(),
	}
}
