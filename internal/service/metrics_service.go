package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/johnnyphung-laccd/calricula/internal/models"
)

// Transition outcomes reported by ObserveTransition.
const (
	TransitionApplied  = "applied"
	TransitionDenied   = "denied"
	TransitionInvalid  = "invalid"
	TransitionConflict = "conflict"
)

// MetricsService encapsulates Prometheus instrumentation on a private registry.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheOps        *prometheus.CounterVec
	cacheLatency    *prometheus.HistogramVec
	audits          *prometheus.CounterVec
	ruleResults     *prometheus.CounterVec
	auditScore      prometheus.Histogram
	transitions     *prometheus.CounterVec
	sweepDuration   *prometheus.HistogramVec
}

// NewMetricsService registers the collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Cache lookups and writes by result",
		}, []string{"op", "result"}),
		cacheLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cache_operation_seconds",
			Help:    "Latency of cache operations",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		}, []string{"op"}),
		audits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "compliance_audits_total",
			Help: "Compliance audits run, by record type and overall status",
		}, []string{"record_type", "overall_status"}),
		ruleResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "compliance_rule_results_total",
			Help: "Rule results emitted, by rule and status",
		}, []string{"rule_id", "status"}),
		auditScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "compliance_audit_score",
			Help:    "Distribution of compliance scores",
			Buckets: []float64{50, 60, 70, 80, 90, 95, 100},
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "workflow_transitions_total",
			Help: "Workflow transition attempts by record type, operation and outcome",
		}, []string{"record_type", "operation", "outcome"}),
		sweepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "compliance_sweep_duration_seconds",
			Help:    "Duration of department compliance sweeps",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}, []string{"status"}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(m.requestDuration, m.requestTotal, m.cacheOps, m.cacheLatency, m.audits,
		m.ruleResults, m.auditScore, m.transitions, m.sweepDuration, goroutines)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Registry exposes the underlying registry for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheLookup records a cache read as hit, miss or error.
func (m *MetricsService) RecordCacheLookup(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheOps.WithLabelValues("get", result).Inc()
	m.cacheLatency.WithLabelValues("get").Observe(duration.Seconds())
}

// RecordCacheWrite records a cache write.
func (m *MetricsService) RecordCacheWrite(ok bool, duration time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.cacheOps.WithLabelValues("set", result).Inc()
	m.cacheLatency.WithLabelValues("set").Observe(duration.Seconds())
}

// ObserveAudit records an audit report.
func (m *MetricsService) ObserveAudit(recordType models.RecordType, report *models.ComplianceAuditReport) {
	if m == nil || report == nil {
		return
	}
	m.audits.WithLabelValues(string(recordType), string(report.OverallStatus)).Inc()
	m.auditScore.Observe(report.Score)
	for _, result := range report.Results {
		m.ruleResults.WithLabelValues(result.RuleID, string(result.Status)).Inc()
	}
}

// ObserveTransition records a workflow transition attempt.
func (m *MetricsService) ObserveTransition(recordType models.RecordType, op models.TransitionOperation, outcome string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(recordType), string(op), outcome).Inc()
}

// ObserveSweep records how long a department sweep took.
func (m *MetricsService) ObserveSweep(status models.SweepStatus, duration time.Duration) {
	if m == nil {
		return
	}
	m.sweepDuration.WithLabelValues(string(status)).Observe(duration.Seconds())
}
