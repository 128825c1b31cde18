package health

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// LatencyRecorder aggregates request latencies and outcome counts for the
// daemon status surface. Prometheus histograms cover scraping; this keeps
// exact in-process percentiles for `hightide status` without a scrape.
type LatencyRecorder struct {
	mu       sync.Mutex
	hist     *hdrhistogram.Histogram
	requests int64
	errors   int64
}

// NewLatencyRecorder creates a recorder tracking 1us to 60s with 3
// significant figures.
func NewLatencyRecorder() *LatencyRecorder {
	return &LatencyRecorder{
		hist: hdrhistogram.New(1, time.Minute.Microseconds(), 3),
	}
}

// Record adds one completed request.
func (r *LatencyRecorder) Record(d time.Duration, failed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.requests++
	if failed {
		r.errors++
	}
	_ = r.hist.RecordValue(d.Microseconds())
}

// LatencySnapshot is a point-in-time summary of recorded requests.
type LatencySnapshot struct {
	Requests int64
	Errors   int64
	Mean     time.Duration
	P50      time.Duration
	P95      time.Duration
	P99      time.Duration
	Max      time.Duration
}

// Snapshot returns the current summary.
func (r *LatencyRecorder) Snapshot() LatencySnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return LatencySnapshot{
		Requests: r.requests,
		Errors:   r.errors,
		Mean:     time.Duration(r.hist.Mean()) * time.Microsecond,
		P50:      time.Duration(r.hist.ValueAtQuantile(50)) * time.Microsecond,
		P95:      time.Duration(r.hist.ValueAtQuantile(95)) * time.Microsecond,
		P99:      time.Duration(r.hist.ValueAtQuantile(99)) * time.Microsecond,
		Max:      time.Duration(r.hist.Max()) * time.Microsecond,
	}
}
