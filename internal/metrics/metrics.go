package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	Namespace = "bridge_monitor"

	StatusSuccess = "success"
	StatusError   = "error"
)

// Labels holds constant labels applied to all metrics.
type Labels struct {
	Environment string
}

func (l Labels) toPrometheusLabels() prometheus.Labels {
	labels := prometheus.Labels{}
	if l.Environment != "" {
		labels["environment"] = l.Environment
	}
	return labels
}

type Metrics struct {
	blocksEvaluated    *prometheus.CounterVec
	findings           *prometheus.CounterVec
	suppressedFailures *prometheus.CounterVec
	lastEvaluatedBlock prometheus.Gauge
	evaluationDuration prometheus.Histogram

	rpcCalls    *prometheus.CounterVec
	rpcDuration *prometheus.HistogramVec

	alertsEmitted *prometheus.CounterVec
}

// New creates a new Metrics instance and registers all metrics with the provided registerer.
func New(reg prometheus.Registerer) (*Metrics, error) {
	return NewWithLabels(reg, Labels{})
}

// NewWithLabels creates a new Metrics instance with constant labels applied to all metrics.
func NewWithLabels(reg prometheus.Registerer, labels Labels) (*Metrics, error) {
	promLabels := labels.toPrometheusLabels()
	if len(promLabels) > 0 {
		reg = prometheus.WrapRegistererWith(promLabels, reg)
	}

	return newMetrics(reg)
}

func newMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		blocksEvaluated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "blocks_evaluated_total",
			Help:      "Total block heights evaluated by mode and status",
		}, []string{"mode", "status"}),
		findings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "findings_total",
			Help:      "Total findings produced by alert id",
		}, []string{"alert_id"}),
		suppressedFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "suppressed_failures_total",
			Help:      "Block evaluations whose failure was converted into an empty result",
		}, []string{"mode", "kind"}),
		lastEvaluatedBlock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "last_evaluated_block",
			Help:      "Highest block height handed to the dispatcher",
		}),
		evaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "evaluation_duration_seconds",
			Help:      "Time to evaluate a single block height",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		rpcCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "rpc",
			Name:      "calls_total",
			Help:      "Total RPC calls by method and status",
		}, []string{"method", "status"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "rpc",
			Name:      "duration_seconds",
			Help:      "RPC call duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method"}),
		alertsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "alerts_emitted_total",
			Help:      "Alerts handed to the alerting transport by status",
		}, []string{"status"}),
	}

	collectors := []prometheus.Collector{
		m.blocksEvaluated,
		m.findings,
		m.suppressedFailures,
		m.lastEvaluatedBlock,
		m.evaluationDuration,
		m.rpcCalls,
		m.rpcDuration,
		m.alertsEmitted,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// RecordEvaluation records one dispatcher evaluation.
func (m *Metrics) RecordEvaluation(mode string, block uint64, err error, durationSeconds float64) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.blocksEvaluated.WithLabelValues(mode, status).Inc()
	m.evaluationDuration.Observe(durationSeconds)
	m.lastEvaluatedBlock.Set(float64(block))
}

// RecordSuppressed counts a failure swallowed at the dispatcher boundary.
func (m *Metrics) RecordSuppressed(mode, kind string) {
	m.suppressedFailures.WithLabelValues(mode, kind).Inc()
}

func (m *Metrics) RecordFinding(alertID string) {
	m.findings.WithLabelValues(alertID).Inc()
}

func (m *Metrics) RecordRPCCall(method string, err error, durationSeconds float64) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.rpcCalls.WithLabelValues(method, status).Inc()
	m.rpcDuration.WithLabelValues(method).Observe(durationSeconds)
}

func (m *Metrics) RecordAlertEmitted(err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.alertsEmitted.WithLabelValues(status).Inc()
}
