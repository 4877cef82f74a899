package pipeline

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/outline"
)

// build is what one successful outline build contributes to the stats.
type build struct {
	at       time.Time
	duration time.Duration
	pages    int
	titled   bool
	levels   [doctree.MaxLevel]int
	rejected map[string]int
}

// LatencySummary describes build durations in milliseconds.
type LatencySummary struct {
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// StatsSnapshot aggregates the outlines built within the window.
type StatsSnapshot struct {
	Count           int            `json:"count"`
	Untitled        int            `json:"untitled"`
	Pages           int            `json:"pages"`
	Headings        int            `json:"headings"`
	HeadingsPerDoc  float64        `json:"headings_per_doc"`
	HeadingsByLevel map[string]int `json:"headings_by_level"`
	Rejected        map[string]int `json:"rejected"`
	Latency         LatencySummary `json:"latency"`
}

// Stats keeps the outline builds of a rolling window. A nil *Stats
// ignores Record.
type Stats struct {
	mu     sync.Mutex
	builds []build
	window time.Duration
}

func NewStats(window time.Duration) *Stats {
	if window <= 0 {
		window = time.Hour
	}
	return &Stats{window: window}
}

// Record adds a built outline.
func (s *Stats) Record(res *outline.Result) {
	if s == nil || res == nil {
		return
	}
	b := build{
		duration: max(res.Report.Duration, 0),
		pages:    res.Report.Pages,
		rejected: maps.Clone(res.Report.Rejected),
	}
	if res.Outline != nil {
		b.titled = res.Outline.Title != ""
		for _, h := range res.Outline.Outline {
			if h.Level.Valid() {
				b.levels[h.Level-doctree.H1]++
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	b.at = time.Now()
	s.pruneLocked(b.at)
	s.builds = append(s.builds, b)
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(time.Now())

	snap := StatsSnapshot{
		Count:           len(s.builds),
		HeadingsByLevel: make(map[string]int),
		Rejected:        make(map[string]int),
	}
	if len(s.builds) == 0 {
		return snap
	}

	ms := make([]int64, 0, len(s.builds))
	var sum int64
	for _, b := range s.builds {
		d := b.duration.Milliseconds()
		ms = append(ms, d)
		sum += d
		snap.Pages += b.pages
		if !b.titled {
			snap.Untitled++
		}
		for i, n := range b.levels {
			if n == 0 {
				continue
			}
			snap.HeadingsByLevel[(doctree.H1 + doctree.Level(i)).String()] += n
			snap.Headings += n
		}
		for reason, n := range b.rejected {
			snap.Rejected[reason] += n
		}
	}
	snap.HeadingsPerDoc = float64(snap.Headings) / float64(len(s.builds))

	slices.Sort(ms)
	snap.Latency = LatencySummary{
		MinMs: ms[0],
		MaxMs: ms[len(ms)-1],
		AvgMs: float64(sum) / float64(len(ms)),
		P50Ms: percentile(ms, 50),
		P95Ms: percentile(ms, 95),
		P99Ms: percentile(ms, 99),
	}
	return snap
}

func (s *Stats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	i := 0
	for i < len(s.builds) && s.builds[i].at.Before(cutoff) {
		i++
	}
	s.builds = slices.Delete(s.builds, 0, i)
}

// percentile interpolates linearly between the closest ranks.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}
	rank := float64(len(sorted)-1) * pct / 100
	lo := int(rank)
	if lo+1 >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := rank - float64(lo)
	return float64(sorted[lo]) + float64(sorted[lo+1]-sorted[lo])*frac
}
