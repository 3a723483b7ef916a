// Package metrics provides the centralized Prometheus metrics registry for
// the edge engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PipelineRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cfb_edge",
		Name:      "pipeline_runs_total",
		Help:      "Total number of pipeline runs by outcome",
	}, []string{"outcome"})
	PipelineStepFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cfb_edge",
		Name:      "pipeline_step_failures_total",
		Help:      "Total number of pipeline step failures by step",
	}, []string{"step"})
	EdgesMaterializedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cfb_edge",
		Name:      "edges_materialized_total",
		Help:      "Total number of edges materialized by market type",
	}, []string{"market"})
	BetsApprovedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cfb_edge",
		Name:      "bets_approved_total",
		Help:      "Total number of bets approved by the decision gate",
	})
	BetsRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cfb_edge",
		Name:      "bets_rejected_total",
		Help:      "Total number of bets rejected by gate rule",
	}, []string{"rule"})
	BetsGradedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cfb_edge",
		Name:      "bets_graded_total",
		Help:      "Total number of bets graded by result",
	}, []string{"result"})
	MonitoringAlertsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cfb_edge",
		Name:      "monitoring_alerts_total",
		Help:      "Total number of monitoring alerts raised by category",
	}, []string{"category"})
	FeedErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cfb_edge",
		Name:      "feed_errors_total",
		Help:      "Total number of feed fetch failures by feed",
	}, []string{"feed"})
)

// Gauge metrics
var (
	ProjectionCoverage = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "cfb_edge",
		Name:      "projection_coverage_ratio",
		Help:      "Fraction of slate games with a current projection",
	})
	SlateGames = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "cfb_edge",
		Name:      "slate_games",
		Help:      "Number of games in the most recent slate",
	})
	LastRunTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "cfb_edge",
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix timestamp of the last completed pipeline run",
	})
	AverageCLV = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "cfb_edge",
		Name:      "average_clv_points",
		Help:      "Average closing line value across graded bets",
	})
)

// Histogram metrics
var (
	PipelineStepDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cfb_edge",
		Name:      "pipeline_step_duration_seconds",
		Help:      "Duration of each pipeline step in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"step"})
	EffectiveEdgeMagnitude = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "cfb_edge",
		Name:      "effective_edge_points",
		Help:      "Distribution of absolute effective edge in points",
		Buckets:   []float64{0.5, 1, 1.5, 2, 2.5, 3, 3.5, 4, 5, 6, 8},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(PipelineRunsTotal)
		registry.MustRegister(PipelineStepFailuresTotal)
		registry.MustRegister(EdgesMaterializedTotal)
		registry.MustRegister(BetsApprovedTotal)
		registry.MustRegister(BetsRejectedTotal)
		registry.MustRegister(BetsGradedTotal)
		registry.MustRegister(MonitoringAlertsTotal)
		registry.MustRegister(FeedErrorsTotal)

		// Register gauge metrics
		registry.MustRegister(ProjectionCoverage)
		registry.MustRegister(SlateGames)
		registry.MustRegister(LastRunTimestamp)
		registry.MustRegister(AverageCLV)

		// Register histogram metrics
		registry.MustRegister(PipelineStepDuration)
		registry.MustRegister(EffectiveEdgeMagnitude)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordPipelineRun records a completed pipeline run.
func RecordPipelineRun(outcome string) {
	PipelineRunsTotal.WithLabelValues(outcome).Inc()
}

// RecordStepFailure records a pipeline step failure.
func RecordStepFailure(step string) {
	PipelineStepFailuresTotal.WithLabelValues(step).Inc()
}

// RecordStepDuration records how long a pipeline step took.
func RecordStepDuration(step string, seconds float64) {
	PipelineStepDuration.WithLabelValues(step).Observe(seconds)
}

// RecordEdge records a materialized edge.
func RecordEdge(market string, effectiveEdge float64) {
	EdgesMaterializedTotal.WithLabelValues(market).Inc()
	if effectiveEdge < 0 {
		effectiveEdge = -effectiveEdge
	}
	EffectiveEdgeMagnitude.Observe(effectiveEdge)
}

// RecordApproval records a bet approved by the decision gate.
func RecordApproval() {
	BetsApprovedTotal.Inc()
}

// RecordRejection records a bet rejected by the decision gate. The label
// is the rejecting rule's identifier, a closed set, never the formatted
// reason text.
func RecordRejection(rule string) {
	BetsRejectedTotal.WithLabelValues(rule).Inc()
}

// RecordGradedBet records a graded bet result.
func RecordGradedBet(result string) {
	BetsGradedTotal.WithLabelValues(result).Inc()
}

// RecordAlert records a monitoring alert.
func RecordAlert(category string) {
	MonitoringAlertsTotal.WithLabelValues(category).Inc()
}

// RecordFeedError records a feed fetch failure.
func RecordFeedError(feed string) {
	FeedErrorsTotal.WithLabelValues(feed).Inc()
}
