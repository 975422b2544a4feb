package prometheus

import (
	"strconv"
	"time"

	"github.com/turtacn/LabelScan-Intelligence/pkg/errors"
	"github.com/turtacn/LabelScan-Intelligence/pkg/types/scoring"
)

// Buckets.
var (
	DefaultHTTPDurationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
	EvaluationDurationBuckets  = []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05, .1, .25}
	ScoreBuckets               = []float64{20, 40, 60, 75, 90, 100}
)

// AppMetrics holds every LabelScan metric.
type AppMetrics struct {
	// Scoring
	EvaluationsTotal   CounterVec
	EvaluationDuration HistogramVec
	ScoreDistribution  HistogramVec
	AutoFailsTotal     CounterVec
	RiskMatchesTotal   CounterVec
	RuleFiringsTotal   CounterVec
	CacheAccessTotal   CounterVec

	// Scan history
	ScanOperationsTotal CounterVec

	// Catalog
	CatalogEntries      GaugeVec
	CatalogReloadsTotal CounterVec

	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Worker
	MessagesProcessedTotal CounterVec
	MessageProcessDuration HistogramVec

	// Health
	HealthCheckStatus GaugeVec
}

// NewAppMetrics registers all metrics with collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.EvaluationsTotal = collector.RegisterCounter("evaluations_total", "Ingredient list evaluations", "frequency", "grade")
	m.EvaluationDuration = collector.RegisterHistogram("evaluation_duration_seconds", "Engine evaluation duration", EvaluationDurationBuckets, "frequency")
	m.ScoreDistribution = collector.RegisterHistogram("score", "Distribution of final scores", ScoreBuckets, "frequency")
	m.AutoFailsTotal = collector.RegisterCounter("auto_fails_total", "Evaluations short-circuited by an Auto-Fail ingredient")
	m.RiskMatchesTotal = collector.RegisterCounter("risk_matches_total", "Matched risks by tier", "tier")
	m.RuleFiringsTotal = collector.RegisterCounter("rule_firings_total", "Stacking rule firings", "rule")
	m.CacheAccessTotal = collector.RegisterCounter("score_cache_access_total", "Score cache lookups", "result")

	m.ScanOperationsTotal = collector.RegisterCounter("scan_operations_total", "Scan history operations", "operation", "code")

	m.CatalogEntries = collector.RegisterGauge("catalog_entries", "Entries in the active catalog", "version")
	m.CatalogReloadsTotal = collector.RegisterCounter("catalog_reloads_total", "Catalog reload attempts", "status")

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "route", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "route")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "In-flight HTTP requests")

	m.MessagesProcessedTotal = collector.RegisterCounter("messages_processed_total", "Consumed messages", "topic", "status")
	m.MessageProcessDuration = collector.RegisterHistogram("message_process_duration_seconds", "Message handling duration", DefaultHTTPDurationBuckets, "topic")

	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	return m
}

// ─────────────────────────────────────────────────────────────────────────────
// Recording helpers
// ─────────────────────────────────────────────────────────────────────────────

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(m *AppMetrics, method, route string, statusCode int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordMessage records one consumed message.
func RecordMessage(m *AppMetrics, topic string, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.MessagesProcessedTotal.WithLabelValues(topic, status).Inc()
	m.MessageProcessDuration.WithLabelValues(topic).Observe(duration.Seconds())
}

// RecordCatalogReload records a reload attempt and, on success, the new size.
func RecordCatalogReload(m *AppMetrics, version string, entries int, err error) {
	if err != nil {
		m.CatalogReloadsTotal.WithLabelValues("error").Inc()
		return
	}
	m.CatalogReloadsTotal.WithLabelValues("ok").Inc()
	m.CatalogEntries.WithLabelValues(version).Set(float64(entries))
}

// SetHealth records the up/down state of a component.
func SetHealth(m *AppMetrics, component string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	m.HealthCheckStatus.WithLabelValues(component).Set(v)
}

// ─────────────────────────────────────────────────────────────────────────────
// ScanMetrics
// ─────────────────────────────────────────────────────────────────────────────

// ScanMetrics adapts AppMetrics to the scan service's Metrics port.
type ScanMetrics struct {
	m *AppMetrics
}

// NewScanMetrics wraps m.
func NewScanMetrics(m *AppMetrics) *ScanMetrics {
	return &ScanMetrics{m: m}
}

// RecordEvaluation records one engine evaluation.
func (s *ScanMetrics) RecordEvaluation(freq scoring.Frequency, res *scoring.ScoreResult, duration time.Duration) {
	f := string(freq)
	s.m.EvaluationDuration.WithLabelValues(f).Observe(duration.Seconds())
	if res == nil {
		return
	}
	s.m.EvaluationsTotal.WithLabelValues(f, string(res.Grade)).Inc()
	s.m.ScoreDistribution.WithLabelValues(f).Observe(float64(res.Score))
	if res.AutoFailed() {
		s.m.AutoFailsTotal.WithLabelValues().Inc()
	}
	for _, r := range res.Risks {
		s.m.RiskMatchesTotal.WithLabelValues(r.Tier).Inc()
	}
	for _, rp := range res.RulePenalties {
		s.m.RuleFiringsTotal.WithLabelValues(rp.Rule).Inc()
	}
}

// RecordCacheAccess records a score cache lookup.
func (s *ScanMetrics) RecordCacheAccess(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	s.m.CacheAccessTotal.WithLabelValues(result).Inc()
}

// RecordScanOperation records a history operation labelled by its outcome code.
func (s *ScanMetrics) RecordScanOperation(op string, err error) {
	code := "OK"
	if err != nil {
		code = string(errors.GetCode(err))
	}
	s.m.ScanOperationsTotal.WithLabelValues(op, code).Inc()
}

//Personal.AI order the ending
