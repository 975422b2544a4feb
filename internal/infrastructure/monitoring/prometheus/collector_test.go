package prometheus

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LabelScan-Intelligence/internal/testutil"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", Subsystem: "unit"}, testutil.NewMockLogger())
	require.NoError(t, err)
	return c
}

func scrapeMetrics(t *testing.T, collector MetricsCollector) string {
	t.Helper()
	w := httptest.NewRecorder()
	collector.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewMetricsCollector_EmptyNamespace(t *testing.T) {
	t.Parallel()
	_, err := NewMetricsCollector(CollectorConfig{}, testutil.NewMockLogger())
	assert.Error(t, err)
}

func TestNewMetricsCollector_RuntimeCollectors(t *testing.T) {
	t.Parallel()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "rt", EnableGoMetrics: true, EnableProcessMetrics: true}, testutil.NewMockLogger())
	require.NoError(t, err)
	out := scrapeMetrics(t, c)
	assert.Contains(t, out, "go_goroutines")
}

func TestRegisterCounter(t *testing.T) {
	t.Parallel()
	c := newTestCollector(t)
	vec := c.RegisterCounter("requests_total", "help", "method")
	vec.WithLabelValues("GET").Inc()
	vec.WithLabelValues("GET").Add(2)

	assert.Contains(t, scrapeMetrics(t, c), `test_unit_requests_total{method="GET"} 3`)
}

func TestRegister_Idempotent(t *testing.T) {
	t.Parallel()
	c := newTestCollector(t)
	a := c.RegisterCounter("dup_total", "help", "x")
	b := c.RegisterCounter("dup_total", "help", "x")
	a.WithLabelValues("1").Inc()
	b.WithLabelValues("1").Inc()

	assert.Contains(t, scrapeMetrics(t, c), `test_unit_dup_total{x="1"} 2`)
}

func TestRegister_TypeMismatchIsNoop(t *testing.T) {
	t.Parallel()
	log := testutil.NewMockLogger()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test"}, log)
	require.NoError(t, err)

	c.RegisterCounter("thing", "help")
	g := c.RegisterGauge("thing", "help")
	assert.IsType(t, noopGaugeVec{}, g)
	g.WithLabelValues().Set(5)
	assert.True(t, log.HasMessage("warn", "metric type mismatch"))
}

func TestRegisterGaugeAndHistogram(t *testing.T) {
	t.Parallel()
	c := newTestCollector(t)
	g := c.RegisterGauge("queue_depth", "help", "queue")
	g.WithLabelValues("ocr").Set(4)
	g.WithLabelValues("ocr").Dec()

	h := c.RegisterHistogram("latency_seconds", "help", []float64{0.1, 1})
	timer := NewTimer(h.WithLabelValues())
	assert.GreaterOrEqual(t, timer.ObserveDuration(), time.Duration(0))

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_queue_depth{queue="ocr"} 3`)
	assert.Contains(t, out, `test_unit_latency_seconds_count 1`)
}

func TestMustRegister(t *testing.T) {
	t.Parallel()
	c := newTestCollector(t)
	c.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "external_total", Help: "h"}))
	assert.Contains(t, scrapeMetrics(t, c), "external_total 0")
}

func TestNilTimerHistogram(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, func() { NewTimer(nil).ObserveDuration() })
}

//Personal.AI order the ending
