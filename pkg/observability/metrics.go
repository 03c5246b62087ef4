package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "checkout"

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	ServiceName string
	// Registry defaults to a fresh registry with Go and process collectors.
	Registry *prometheus.Registry
}

// CheckoutMetrics holds the Prometheus instruments for the decisioning pipeline.
type CheckoutMetrics struct {
	registry           *prometheus.Registry
	decisionsTotal     *prometheus.CounterVec
	decisionDuration   prometheus.Histogram
	rankingsTotal      prometheus.Counter
	degradedCardsTotal prometheus.Counter
	approvalProbs      prometheus.Histogram
	configFallbacks    *prometheus.CounterVec
	rejectedRequests   *prometheus.CounterVec
}

// InitMetrics creates and registers the pipeline metrics.
// Returns the metrics and an HTTP handler for the /metrics endpoint.
func InitMetrics(cfg MetricsConfig) (*CheckoutMetrics, http.Handler, error) {
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	constLabels := prometheus.Labels{}
	if cfg.ServiceName != "" {
		constLabels["service"] = cfg.ServiceName
	}

	m := &CheckoutMetrics{
		registry: reg,
		decisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "decisions_total",
			Help:        "Total checkout decisions by outcome.",
			ConstLabels: constLabels,
		}, []string{"decision"}),
		decisionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   metricsNamespace,
			Name:        "decision_duration_seconds",
			Help:        "Time spent producing a decision contract.",
			Buckets:     []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.005, 0.01, 0.05},
			ConstLabels: constLabels,
		}),
		rankingsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "rankings_total",
			Help:        "Total card rankings produced.",
			ConstLabels: constLabels,
		}),
		degradedCardsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "ranking_degraded_cards_total",
			Help:        "Candidate cards that could not be scored and were ranked with a degraded breakdown.",
			ConstLabels: constLabels,
		}),
		approvalProbs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   metricsNamespace,
			Name:        "approval_probability",
			Help:        "Distribution of calibrated approval probabilities.",
			Buckets:     prometheus.LinearBuckets(0.1, 0.1, 9),
			ConstLabels: constLabels,
		}),
		configFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "config_fallbacks_total",
			Help:        "Configuration files replaced by embedded defaults, by file.",
			ConstLabels: constLabels,
		}, []string{"file"}),
		rejectedRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        "rejected_requests_total",
			Help:        "Requests rejected before scoring, by operation.",
			ConstLabels: constLabels,
		}, []string{"operation"}),
	}

	for _, c := range []prometheus.Collector{
		m.decisionsTotal, m.decisionDuration, m.rankingsTotal, m.degradedCardsTotal,
		m.approvalProbs, m.configFallbacks, m.rejectedRequests,
	} {
		if err := reg.Register(c); err != nil {
			return nil, nil, err
		}
	}

	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})

	return m, handler, nil
}

// Registry exposes the underlying registry, mainly for tests.
func (m *CheckoutMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordDecision counts a decision and observes how long it took.
func (m *CheckoutMetrics) RecordDecision(decision string, elapsed time.Duration) {
	m.decisionsTotal.WithLabelValues(decision).Inc()
	m.decisionDuration.Observe(elapsed.Seconds())
}

// RecordRanking counts a ranking and any degraded candidates in it.
func (m *CheckoutMetrics) RecordRanking(_ int, degraded int) {
	m.rankingsTotal.Inc()
	if degraded > 0 {
		m.degradedCardsTotal.Add(float64(degraded))
	}
}

// RecordApproval observes a calibrated approval probability.
func (m *CheckoutMetrics) RecordApproval(p float64) {
	m.approvalProbs.Observe(p)
}

// RecordConfigFallback counts a configuration file replaced by its embedded default.
func (m *CheckoutMetrics) RecordConfigFallback(file string) {
	m.configFallbacks.WithLabelValues(file).Inc()
}

// RecordRejection counts a request rejected by input validation.
func (m *CheckoutMetrics) RecordRejection(operation string) {
	m.rejectedRequests.WithLabelValues(operation).Inc()
}
