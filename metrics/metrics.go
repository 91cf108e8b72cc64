// Package metrics provides Prometheus observability metrics for the schedule analytics engine.
// It includes Critical and Important metrics for business and operational visibility.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

// factory allows us to register metrics to our custom Registry directly
var factory = promauto.With(Registry)

// =============================================================================
// CRITICAL METRICS - Business Impact Visibility
// =============================================================================

// ConflictsDetected counts conflicts by type and severity across analysis runs.
var ConflictsDetected = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "analytics",
	Name:      "conflicts_detected_total",
	Help:      "Conflicts detected by type and severity",
}, []string{"type", "severity"})

// CoverageGapHeadcount tracks the last observed shortfall per role.
var CoverageGapHeadcount = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "analytics",
	Name:      "coverage_gap_headcount",
	Help:      "Headcount shortfall per role in the most recent report",
}, []string{"role"})

// CoveragePercent tracks the last observed coverage per role.
var CoveragePercent = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "analytics",
	Name:      "coverage_percent",
	Help:      "Coverage percentage per role in the most recent report",
}, []string{"role"})

// SuggestionsTotal counts optimization suggestions by type.
var SuggestionsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "optimizer",
	Name:      "suggestions_total",
	Help:      "Optimization suggestions produced by type",
}, []string{"type"})

// =============================================================================
// IMPORTANT METRICS - Operational Health
// =============================================================================

// RecordsSkippedTotal counts input records excluded from analysis by warning code.
var RecordsSkippedTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "analytics",
	Name:      "records_skipped_total",
	Help:      "Input records excluded from analysis by reason",
}, []string{"reason"})

// RejectedRequestsTotal counts requests rejected for an inconsistent filter.
var RejectedRequestsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "analytics",
	Name:      "rejected_requests_total",
	Help:      "Analysis requests rejected before computation",
})

// ReportDurationSeconds tracks time to compute a report, by report kind.
var ReportDurationSeconds = factory.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "analytics",
	Name:      "report_duration_seconds",
	Help:      "Time taken to compute a report",
	Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
}, []string{"report"})

// IntervalsAnalyzed tracks the size of each analyzed interval set.
var IntervalsAnalyzed = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "analytics",
	Name:      "intervals_analyzed",
	Help:      "Number of intervals per analysis run",
	Buckets:   []float64{1, 10, 50, 100, 500, 1000, 5000, 10000, 50000},
})

// ParserRecordsTotal tracks records successfully parsed by input kind.
var ParserRecordsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "records_total",
	Help:      "Total input records successfully parsed",
}, []string{"kind"})

// ParserErrorsTotal tracks parse errors by input kind.
var ParserErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "errors_total",
	Help:      "Total parse errors by input kind",
}, []string{"kind"})

// =============================================================================
// Helper Functions
// =============================================================================

// ResetCoverageGauges clears per-role gauges before publishing a new report,
// so roles that disappeared from the data do not keep stale values.
func ResetCoverageGauges() {
	CoverageGapHeadcount.Reset()
	CoveragePercent.Reset()
}
