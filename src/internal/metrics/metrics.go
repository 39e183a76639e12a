package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "business_credits"

// Metrics holds the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	workflowOutcomes *prometheus.CounterVec
	ledgerCalls      *prometheus.CounterVec
	ledgerDuration   *prometheus.HistogramVec
	swapTransitions  *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
			},
			[]string{"method", "path"},
		),
		workflowOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "workflow",
				Name:      "outcomes_total",
				Help:      "Workflow completions by outcome (success or failure kind).",
			},
			[]string{"workflow", "outcome"},
		),
		ledgerCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "calls_total",
				Help:      "Remote ledger calls by operation and result.",
			},
			[]string{"operation", "result"},
		),
		ledgerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "call_duration_seconds",
				Help:      "Duration of remote ledger calls.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"operation"},
		),
		swapTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "swap",
				Name:      "transitions_total",
				Help:      "Swap intent state transitions by target status.",
			},
			[]string{"status"},
		),
	}

	m.registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.workflowOutcomes,
		m.ledgerCalls,
		m.ledgerDuration,
		m.swapTransitions,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, status).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) RecordWorkflowOutcome(workflow, outcome string) {
	if m == nil {
		return
	}
	m.workflowOutcomes.WithLabelValues(workflow, outcome).Inc()
}

func (m *Metrics) ObserveLedgerCall(operation, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ledgerCalls.WithLabelValues(operation, result).Inc()
	m.ledgerDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *Metrics) RecordSwapTransition(status string) {
	if m == nil {
		return
	}
	m.swapTransitions.WithLabelValues(status).Inc()
}
