package ingestion

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_ReportsEveryInterval(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 25)
	tracker.Start()

	tracker.Observe(RunStats{New: 10, Total: 10})
	assert.Empty(t, buf.String(), "under the interval")

	tracker.Observe(RunStats{New: 20, Existing: 4, Failed: 1, Total: 25})
	assert.Contains(t, buf.String(), "Progress: 25/100 (25.0%) new=20 existing=4 failed=1")
	assert.Contains(t, buf.String(), "refs/s")

	buf.Reset()
	tracker.Observe(RunStats{New: 40, Total: 40})
	assert.Empty(t, buf.String(), "next report is due at 50")

	tracker.Observe(RunStats{New: 50, Total: 50})
	assert.Contains(t, buf.String(), "50/100")
}

func TestProgressTracker_Finish(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 100)

	tracker.Start()
	tracker.Observe(RunStats{New: 7, Failed: 3, Total: 10})
	assert.Empty(t, buf.String())
	tracker.Finish()

	out := buf.String()
	assert.Contains(t, out, "10/10 (100.0%) new=7 existing=0 failed=3")
	assert.Equal(t, byte('\n'), out[len(out)-1])
	assert.Greater(t, tracker.Elapsed(), time.Duration(0))
}

func TestProgressTracker_PartialRun(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 5)

	tracker.Start()
	tracker.Observe(RunStats{New: 3, Total: 3})
	tracker.Finish()
	assert.Contains(t, buf.String(), "3/10 (30.0%)", "a stopped run reports what completed")
}

func TestProgressTracker_ZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 0, 10)

	tracker.Start()
	tracker.Finish()
	assert.Contains(t, buf.String(), "0/0 (0.0%)")
}

func TestProgressTracker_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 1)

	tracker.Observe(RunStats{New: 50, Total: 50})
	tracker.Finish()
	assert.Empty(t, buf.String())
	assert.Zero(t, tracker.Elapsed())
}

func TestProgressTracker_ConcurrentObserve(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 10)
	tracker.Start()

	var wg sync.WaitGroup
	for i := 1; i <= 100; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			tracker.Observe(RunStats{New: n, Total: n})
		}(int64(i))
	}
	wg.Wait()
	tracker.Finish()
	assert.Contains(t, buf.String(), "refs/s\n")
}
