package ingestion

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// Stats counts reference outcomes for one run. Every method is safe for
// concurrent use. Counters only ever grow.
type Stats struct {
	newDocs       atomic.Int64
	existing      atomic.Int64
	fetchFailed   atomic.Int64
	publishFailed atomic.Int64
}

func (s *Stats) addNew()           { s.newDocs.Add(1) }
func (s *Stats) addExisting()      { s.existing.Add(1) }
func (s *Stats) addFetchFailed()   { s.fetchFailed.Add(1) }
func (s *Stats) addPublishFailed() { s.publishFailed.Add(1) }

// Snapshot returns a point-in-time copy of the counters. Total is derived
// from the counters read, so New + Existing + Failed == Total holds for
// every snapshot even while workers are still running.
func (s *Stats) Snapshot() RunStats {
	rs := RunStats{
		New:           s.newDocs.Load(),
		Existing:      s.existing.Load(),
		FetchFailed:   s.fetchFailed.Load(),
		PublishFailed: s.publishFailed.Load(),
	}
	rs.Failed = rs.FetchFailed + rs.PublishFailed
	rs.Total = rs.New + rs.Existing + rs.Failed
	return rs
}

// Outcomes counts results for documents published outside the reference
// sequence (pack overviews and overrides).
type Outcomes struct {
	New      int
	Existing int
	Failed   int
}

func (o Outcomes) String() string {
	return fmt.Sprintf("new=%d existing=%d failed=%d", o.New, o.Existing, o.Failed)
}

// RunStats is the result of a run.
type RunStats struct {
	New      int64
	Existing int64
	// FetchFailed and PublishFailed break Failed down by the subsystem that broke.
	FetchFailed   int64
	PublishFailed int64
	Failed        int64
	Total         int64

	PackDocuments     Outcomes
	OverrideDocuments Outcomes

	Duration time.Duration
}

// DedupRatio is the share of processed references that were already stored.
func (rs RunStats) DedupRatio() float64 {
	if rs.Total == 0 {
		return 0
	}
	return float64(rs.Existing) / float64(rs.Total)
}

func (rs RunStats) String() string {
	return fmt.Sprintf("new=%d existing=%d failed=%d (fetch=%d publish=%d) total=%d",
		rs.New, rs.Existing, rs.Failed, rs.FetchFailed, rs.PublishFailed, rs.Total)
}

// Summary renders the multi-line report printed at the end of an ingest.
func (rs RunStats) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "References processed: %d\n", rs.Total)
	fmt.Fprintf(&b, "  New:            %d\n", rs.New)
	fmt.Fprintf(&b, "  Existing:       %d\n", rs.Existing)
	fmt.Fprintf(&b, "  Fetch failed:   %d\n", rs.FetchFailed)
	fmt.Fprintf(&b, "  Publish failed: %d\n", rs.PublishFailed)
	fmt.Fprintf(&b, "Pack overview:    %s\n", rs.PackDocuments)
	fmt.Fprintf(&b, "Overrides:        %s\n", rs.OverrideDocuments)
	fmt.Fprintf(&b, "Dedup ratio:      %.1f%%\n", rs.DedupRatio()*100)
	fmt.Fprintf(&b, "Duration:         %s", rs.Duration.Round(time.Millisecond))
	return b.String()
}
