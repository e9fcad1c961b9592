package bench

import (
	"strconv"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// latency bounds in microseconds
const (
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
)

// Metrics collects per-iteration outcomes. Safe for concurrent use.
type Metrics struct {
	mu sync.Mutex

	histogram   *hdrhistogram.Histogram
	total       int64
	errors      int64
	statusCodes map[int]int64

	startTime time.Time
	endTime   time.Time
}

// Summary is the final result of a bench run. Latencies are milliseconds.
type Summary struct {
	Duration    time.Duration `json:"-"`
	DurationMs  int64         `json:"duration_ms"`
	Count       int64         `json:"count"`
	Errors      int64         `json:"errors"`
	StatusCodes map[int]int64 `json:"status_codes"`
	RPS         float64       `json:"rps"`
	ErrorRate   float64       `json:"error_rate"`
	P50         float64       `json:"p50"`
	P90         float64       `json:"p90"`
	P99         float64       `json:"p99"`
	Min         float64       `json:"min"`
	Max         float64       `json:"max"`
	Mean        float64       `json:"mean"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		// 1us to 60s range, 3 significant digits
		histogram:   hdrhistogram.New(minLatencyUs, maxLatencyUs, 3),
		statusCodes: make(map[int]int64),
	}
}

// Start marks the beginning of the run
func (m *Metrics) Start() {
	m.mu.Lock()
	m.startTime = time.Now()
	m.mu.Unlock()
}

// Stop marks the end of the run
func (m *Metrics) Stop() {
	m.mu.Lock()
	m.endTime = time.Now()
	m.mu.Unlock()
}

// Record records one iteration. status is ignored when err is set.
func (m *Metrics) Record(status int, duration time.Duration, err error) {
	latencyUs := duration.Microseconds()
	if latencyUs < minLatencyUs {
		latencyUs = minLatencyUs
	}
	if latencyUs > maxLatencyUs {
		latencyUs = maxLatencyUs
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.total++
	if err != nil {
		m.errors++
		return
	}
	m.statusCodes[status]++
	_ = m.histogram.RecordValue(latencyUs)
}

// GetSummary returns the metrics summary
func (m *Metrics) GetSummary() *Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	duration := m.endTime.Sub(m.startTime)
	if m.endTime.IsZero() {
		duration = time.Since(m.startTime)
	}

	rps := float64(0)
	if duration.Seconds() > 0 {
		rps = float64(m.total) / duration.Seconds()
	}

	errorRate := float64(0)
	if m.total > 0 {
		errorRate = float64(m.errors) / float64(m.total)
	}

	codes := make(map[int]int64, len(m.statusCodes))
	for code, n := range m.statusCodes {
		codes[code] = n
	}

	return &Summary{
		Duration:    duration,
		DurationMs:  duration.Milliseconds(),
		Count:       m.total,
		Errors:      m.errors,
		StatusCodes: codes,
		RPS:         rps,
		ErrorRate:   errorRate,
		P50:         usToMs(m.histogram.ValueAtQuantile(50)),
		P90:         usToMs(m.histogram.ValueAtQuantile(90)),
		P99:         usToMs(m.histogram.ValueAtQuantile(99)),
		Min:         usToMs(m.histogram.Min()),
		Max:         usToMs(m.histogram.Max()),
		Mean:        m.histogram.Mean() / 1000,
	}
}

func usToMs(us int64) float64 {
	return float64(us) / 1000
}

// EvaluateThresholds evaluates t against s
func EvaluateThresholds(s *Summary, t Thresholds) []ThresholdResult {
	var results []ThresholdResult

	latency := func(name string, limit time.Duration, actualMs float64) {
		if limit <= 0 {
			return
		}
		limitMs := float64(limit.Microseconds()) / 1000
		results = append(results, ThresholdResult{
			Name:     name,
			Passed:   actualMs <= limitMs,
			Expected: "< " + limit.String(),
			Actual:   formatFloat(actualMs) + "ms",
		})
	}

	latency("p50", t.P50, s.P50)
	latency("p90", t.P90, s.P90)
	latency("p99", t.P99, s.P99)
	latency("max latency", t.MaxLatency, s.Max)

	if t.ErrorRate > 0 {
		results = append(results, ThresholdResult{
			Name:     "error rate",
			Passed:   s.ErrorRate <= t.ErrorRate,
			Expected: formatPercent(t.ErrorRate),
			Actual:   formatPercent(s.ErrorRate),
		})
	}

	if t.MinRPS > 0 {
		results = append(results, ThresholdResult{
			Name:     "min RPS",
			Passed:   s.RPS >= t.MinRPS,
			Expected: "> " + formatFloat(t.MinRPS),
			Actual:   formatFloat(s.RPS),
		})
	}

	return results
}

func formatPercent(f float64) string {
	return formatFloat(f*100) + "%"
}

func formatFloat(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}
