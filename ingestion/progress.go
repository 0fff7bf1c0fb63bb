package ingestion

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker prints a one-line progress report each time another
// interval of references completes. Pass its Observe method to WithProgress.
type ProgressTracker struct {
	w     io.Writer
	total int
	every int

	mu       sync.Mutex
	start    time.Time
	last     RunStats
	reported int64
}

// NewProgressTracker reports to w for a run of total references, once
// every references. every below 1 reports on each completion.
func NewProgressTracker(w io.Writer, total, every int) *ProgressTracker {
	return &ProgressTracker{w: w, total: total, every: max(every, 1)}
}

// Start resets the tracker and its clock. Observations before Start are ignored.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.start = time.Now()
	p.last = RunStats{}
	p.reported = 0
}

// Observe records a pipeline snapshot.
func (p *ProgressTracker) Observe(rs RunStats) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.start.IsZero() {
		return
	}
	p.last = rs
	if rs.Total-p.reported >= int64(p.every) {
		p.reported = rs.Total
		fmt.Fprint(p.w, p.line())
	}
}

// Finish prints the last observed state and ends the line.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.start.IsZero() {
		return
	}
	fmt.Fprintln(p.w, p.line())
}

// Elapsed is the time since Start, or zero before it.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.start.IsZero() {
		return 0
	}
	return time.Since(p.start)
}

// line must be called with the lock held.
func (p *ProgressTracker) line() string {
	done := min(p.last.Total, int64(p.total))
	percent := 0.0
	if p.total > 0 {
		percent = float64(done) / float64(p.total) * 100
	}
	perSecond := float64(done) / time.Since(p.start).Seconds()

	return fmt.Sprintf("\rProgress: %d/%d (%.1f%%) new=%d existing=%d failed=%d - %.1f refs/s",
		done, p.total, percent, p.last.New, p.last.Existing, p.last.Failed, perSecond)
}
