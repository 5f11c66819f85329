package monitor

import (
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// SystemMetrics tracks overall game-server performance.
type SystemMetrics struct {
	// Latency histograms
	QuoteLatency *LatencyHistogram
	APILatency   *LatencyHistogram

	// Counters
	ticksProcessed uint64
	tradesExecuted uint64
	giftsReceived  uint64
	quoteErrors    uint64
	apiRequests    uint64
	apiErrors      uint64

	startedAt time.Time
}

// LatencyHistogram tracks latency samples with a sliding window and lazy
// stats computation.
type LatencyHistogram struct {
	mu          sync.Mutex
	samples     []float64
	maxSize     int
	dirty       bool
	cachedStats LatencyStats
}

// NewSystemMetrics creates a new metrics instance.
func NewSystemMetrics() *SystemMetrics {
	return &SystemMetrics{
		QuoteLatency: NewLatencyHistogram(1000),
		APILatency:   NewLatencyHistogram(1000),
		startedAt:    time.Now(),
	}
}

// NewLatencyHistogram creates a sliding window histogram.
func NewLatencyHistogram(size int) *LatencyHistogram {
	if size <= 0 {
		size = 1000
	}
	return &LatencyHistogram{
		samples: make([]float64, 0, size),
		maxSize: size,
		dirty:   true,
	}
}

// Record adds a latency sample in milliseconds.
func (h *LatencyHistogram) Record(latencyMs float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.samples) >= h.maxSize {
		h.samples = h.samples[1:]
	}
	h.samples = append(h.samples, latencyMs)
	h.dirty = true
}

// RecordDuration converts duration to ms and records.
func (h *LatencyHistogram) RecordDuration(d time.Duration) {
	h.Record(float64(d.Nanoseconds()) / 1e6)
}

// Stats returns min, max, avg, p50, p95, p99. Recomputes only when samples
// have changed since the last call.
func (h *LatencyHistogram) Stats() LatencyStats {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.dirty && h.cachedStats.Count > 0 {
		return h.cachedStats
	}

	n := len(h.samples)
	if n == 0 {
		return LatencyStats{}
	}

	sorted := make([]float64, n)
	copy(sorted, h.samples)
	sort.Float64s(sorted)

	var sum float64
	min, max := sorted[0], sorted[n-1]
	for _, v := range sorted {
		sum += v
	}

	h.cachedStats = LatencyStats{
		Min:   min,
		Max:   max,
		Avg:   sum / float64(n),
		P50:   sorted[n/2],
		P95:   sorted[int(float64(n)*0.95)],
		P99:   sorted[int(float64(n)*0.99)],
		Count: n,
	}
	h.dirty = false

	return h.cachedStats
}

// LatencyStats holds computed latency statistics.
type LatencyStats struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	Count int     `json:"count"`
}

// IncrementTicks increments the processed update-cycle counter.
func (m *SystemMetrics) IncrementTicks() {
	atomic.AddUint64(&m.ticksProcessed, 1)
}

// IncrementTrades increments the executed-trades counter.
func (m *SystemMetrics) IncrementTrades() {
	atomic.AddUint64(&m.tradesExecuted, 1)
}

// IncrementGifts increments the credited-gifts counter.
func (m *SystemMetrics) IncrementGifts() {
	atomic.AddUint64(&m.giftsReceived, 1)
}

// IncrementQuoteErrors increments the failed-quote-fetch counter.
func (m *SystemMetrics) IncrementQuoteErrors() {
	atomic.AddUint64(&m.quoteErrors, 1)
}

// IncrementAPI increments the handled-request counter.
func (m *SystemMetrics) IncrementAPI() {
	atomic.AddUint64(&m.apiRequests, 1)
}

// IncrementAPIErrors increments the 4xx/5xx response counter.
func (m *SystemMetrics) IncrementAPIErrors() {
	atomic.AddUint64(&m.apiErrors, 1)
}

// MetricsSnapshot is a point-in-time view of the counters and histograms.
type MetricsSnapshot struct {
	QuoteLatency   LatencyStats `json:"quote_latency"`
	APILatency     LatencyStats `json:"api_latency"`
	TicksProcessed uint64       `json:"ticks_processed"`
	TradesExecuted uint64       `json:"trades_executed"`
	GiftsReceived  uint64       `json:"gifts_received"`
	QuoteErrors    uint64       `json:"quote_errors"`
	APIRequests    uint64       `json:"api_requests"`
	APIErrors      uint64       `json:"api_errors"`
	GoroutineCount int          `json:"goroutine_count"`
	HeapAlloc      uint64       `json:"heap_alloc_bytes"`
	UptimeSeconds  float64      `json:"uptime_seconds"`
	Timestamp      time.Time    `json:"timestamp"`
}

// GetSnapshot returns a point-in-time metrics snapshot.
func (m *SystemMetrics) GetSnapshot() MetricsSnapshot {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return MetricsSnapshot{
		QuoteLatency:   m.QuoteLatency.Stats(),
		APILatency:     m.APILatency.Stats(),
		TicksProcessed: atomic.LoadUint64(&m.ticksProcessed),
		TradesExecuted: atomic.LoadUint64(&m.tradesExecuted),
		GiftsReceived:  atomic.LoadUint64(&m.giftsReceived),
		QuoteErrors:    atomic.LoadUint64(&m.quoteErrors),
		APIRequests:    atomic.LoadUint64(&m.apiRequests),
		APIErrors:      atomic.LoadUint64(&m.apiErrors),
		GoroutineCount: runtime.NumGoroutine(),
		HeapAlloc:      memStats.HeapAlloc,
		UptimeSeconds:  time.Since(m.startedAt).Seconds(),
		Timestamp:      time.Now(),
	}
}

// Timer helps measure operation duration.
type Timer struct {
	start     time.Time
	histogram *LatencyHistogram
}

// NewTimer creates a timer that records to the given histogram.
func NewTimer(h *LatencyHistogram) *Timer {
	return &Timer{
		start:     time.Now(),
		histogram: h,
	}
}

// Stop records elapsed time to histogram.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	if t.histogram != nil {
		t.histogram.RecordDuration(elapsed)
	}
	return elapsed
}
