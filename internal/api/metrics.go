package api

import (
	"fmt"
	"io"
	"net/http"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"botlint/internal/engine"
	"botlint/internal/issue"
	"botlint/internal/report"
	"botlint/internal/version"
)

// MetricsCollector keeps process-local counters and writes them in the
// Prometheus text exposition format.
type MetricsCollector struct {
	analysesTotal     *Counter
	issuesTotal       *Counter
	suppressedTotal   *Counter
	rateLimitExceeded *Counter
	errorsTotal       *Counter

	analyzeDuration *Histogram

	lastHealth  *Gauge
	goroutines  *Gauge
	memoryAlloc *Gauge

	startTime time.Time
}

// Counter is a monotonically increasing counter
type Counter struct {
	name   string
	help   string
	labels []string
	values sync.Map // label key -> *uint64
}

// Histogram tracks distributions of values
type Histogram struct {
	name    string
	help    string
	labels  []string
	buckets []float64
	values  sync.Map // label key -> *histogramValue
}

type histogramValue struct {
	mu      sync.Mutex
	sum     float64
	count   uint64
	buckets []uint64 // last slot is +Inf
}

// Gauge is a metric that can go up and down
type Gauge struct {
	name   string
	help   string
	labels []string
	values sync.Map // label key -> *float64
}

// NewMetricsCollector creates a collector with every botlint metric registered.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		analysesTotal: &Counter{
			name:   "botlint_analyses_total",
			help:   "Analyses served, by endpoint",
			labels: []string{"endpoint"},
		},
		issuesTotal: &Counter{
			name:   "botlint_issues_total",
			help:   "Issues reported after filtering, by severity",
			labels: []string{"severity"},
		},
		suppressedTotal: &Counter{
			name: "botlint_suppressed_issues_total",
			help: "Issues hidden by the allowlist",
		},
		rateLimitExceeded: &Counter{
			name: "botlint_ratelimit_exceeded_total",
			help: "Requests rejected by the rate limiter",
		},
		errorsTotal: &Counter{
			name:   "botlint_errors_total",
			help:   "Failed requests, by error code",
			labels: []string{"code"},
		},
		analyzeDuration: &Histogram{
			name:    "botlint_analyze_duration_seconds",
			help:    "Time spent analyzing and rendering one request",
			labels:  []string{"endpoint"},
			buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		lastHealth: &Gauge{
			name:   "botlint_last_health_penalty",
			help:   "Health penalty of the most recent analysis",
			labels: []string{"health"},
		},
		goroutines: &Gauge{
			name: "botlint_goroutines",
			help: "Number of goroutines",
		},
		memoryAlloc: &Gauge{
			name: "botlint_memory_alloc_bytes",
			help: "Allocated heap memory in bytes",
		},
		startTime: time.Now(),
	}
}

// RecordAnalysis records one finished analysis.
func (m *MetricsCollector) RecordAnalysis(endpoint string, res *engine.Result, duration time.Duration) {
	if m == nil {
		return
	}
	m.analysesTotal.Inc(endpoint)
	m.analyzeDuration.Observe(duration.Seconds(), endpoint)
	for _, sev := range issue.Severities {
		if n := res.Report.BySeverity[string(sev)]; n > 0 {
			m.issuesTotal.Add(uint64(n), string(sev))
		}
	}
	if res.Suppressed > 0 {
		m.suppressedTotal.Add(uint64(res.Suppressed))
	}
	m.lastHealth.Reset()
	penalty := report.Penalty(
		res.Report.CountSeverity(issue.SeverityCritical),
		res.Report.CountSeverity(issue.SeverityHigh),
		res.Report.CountSeverity(issue.SeverityMedium))
	m.lastHealth.Set(float64(penalty), res.Summary.OverallHealth)
}

// RecordRateLimitExceeded records a rejected request.
func (m *MetricsCollector) RecordRateLimitExceeded() {
	if m == nil {
		return
	}
	m.rateLimitExceeded.Inc()
}

// RecordError records a failed request by its error code.
func (m *MetricsCollector) RecordError(code string) {
	if m == nil {
		return
	}
	m.errorsTotal.Inc(code)
}

// WritePrometheus writes every metric in Prometheus text format.
func (m *MetricsCollector) WritePrometheus(w io.Writer) {
	m.goroutines.Set(float64(runtime.NumGoroutine()))
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	m.memoryAlloc.Set(float64(memStats.Alloc))

	fmt.Fprintf(w, "# HELP botlint_info botlint build information\n")
	fmt.Fprintf(w, "# TYPE botlint_info gauge\n")
	fmt.Fprintf(w, "botlint_info{version=%q} 1\n\n", version.Version)

	fmt.Fprintf(w, "# HELP botlint_uptime_seconds Time since the server started\n")
	fmt.Fprintf(w, "# TYPE botlint_uptime_seconds counter\n")
	fmt.Fprintf(w, "botlint_uptime_seconds %.3f\n\n", time.Since(m.startTime).Seconds())

	for _, c := range []*Counter{m.analysesTotal, m.issuesTotal, m.suppressedTotal, m.rateLimitExceeded, m.errorsTotal} {
		c.write(w)
	}
	m.analyzeDuration.write(w)
	for _, g := range []*Gauge{m.lastHealth, m.goroutines, m.memoryAlloc} {
		g.write(w)
	}
}

// Inc adds one to the series for labelValues.
func (c *Counter) Inc(labelValues ...string) {
	c.Add(1, labelValues...)
}

// Add adds delta to the series for labelValues.
func (c *Counter) Add(delta uint64, labelValues ...string) {
	val, _ := c.values.LoadOrStore(labelKey(c.labels, labelValues), new(uint64))
	atomic.AddUint64(val.(*uint64), delta)
}

func (c *Counter) write(w io.Writer) {
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n", c.name, c.help, c.name)
	for _, key := range sortedKeys(&c.values) {
		val, _ := c.values.Load(key)
		fmt.Fprintf(w, "%s%s %d\n", c.name, key, atomic.LoadUint64(val.(*uint64)))
	}
	fmt.Fprintln(w)
}

// Observe records value in the series for labelValues.
func (h *Histogram) Observe(value float64, labelValues ...string) {
	val, _ := h.values.LoadOrStore(labelKey(h.labels, labelValues), &histogramValue{
		buckets: make([]uint64, len(h.buckets)+1),
	})
	hv := val.(*histogramValue)

	hv.mu.Lock()
	defer hv.mu.Unlock()
	hv.sum += value
	hv.count++
	idx := sort.SearchFloat64s(h.buckets, value)
	hv.buckets[idx]++
}

func (h *Histogram) write(w io.Writer) {
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s histogram\n", h.name, h.help, h.name)
	for _, key := range sortedKeys(&h.values) {
		val, _ := h.values.Load(key)
		hv := val.(*histogramValue)

		hv.mu.Lock()
		var cumulative uint64
		for i, bound := range h.buckets {
			cumulative += hv.buckets[i]
			fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, withLabel(key, "le", fmt.Sprintf("%g", bound)), cumulative)
		}
		cumulative += hv.buckets[len(h.buckets)]
		fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, withLabel(key, "le", "+Inf"), cumulative)
		fmt.Fprintf(w, "%s_sum%s %.6f\n", h.name, key, hv.sum)
		fmt.Fprintf(w, "%s_count%s %d\n", h.name, key, hv.count)
		hv.mu.Unlock()
	}
	fmt.Fprintln(w)
}

// Set stores value for labelValues.
func (g *Gauge) Set(value float64, labelValues ...string) {
	v := value
	g.values.Store(labelKey(g.labels, labelValues), &v)
}

// Reset drops every series.
func (g *Gauge) Reset() {
	g.values.Range(func(key, _ any) bool {
		g.values.Delete(key)
		return true
	})
}

func (g *Gauge) write(w io.Writer) {
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s gauge\n", g.name, g.help, g.name)
	for _, key := range sortedKeys(&g.values) {
		val, _ := g.values.Load(key)
		fmt.Fprintf(w, "%s%s %g\n", g.name, key, *val.(*float64))
	}
	fmt.Fprintln(w)
}

// labelKey renders label pairs as {a="x",b="y"}, or "" without labels.
func labelKey(labels, values []string) string {
	if len(labels) == 0 || len(values) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(labels))
	for i, label := range labels {
		if i < len(values) {
			pairs = append(pairs, fmt.Sprintf("%s=%q", label, values[i]))
		}
	}
	return "{" + strings.Join(pairs, ",") + "}"
}

func withLabel(key, name, value string) string {
	pair := fmt.Sprintf("%s=%q", name, value)
	if key == "" {
		return "{" + pair + "}"
	}
	return key[:len(key)-1] + "," + pair + "}"
}

func sortedKeys(m *sync.Map) []string {
	var keys []string
	m.Range(func(key, _ any) bool {
		keys = append(keys, key.(string))
		return true
	})
	sort.Strings(keys)
	return keys
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	s.metrics.WritePrometheus(w)
}
