package telemetry

import (
	"sort"
	"sync"
	"time"
)

// PerfStats tracks execution time for each pipeline stage over a rolling
// sample window. It implements the solver's StageTimer interface.
type PerfStats struct {
	mu         sync.Mutex
	samples    map[string][]time.Duration
	maxSamples int
}

// NewPerfStats creates a new performance stats tracker.
func NewPerfStats() *PerfStats {
	return &PerfStats{
		samples:    make(map[string][]time.Duration),
		maxSamples: 120, // ~2 seconds of samples at 60 steps/s
	}
}

// Record adds a duration sample for the named stage.
func (p *PerfStats) Record(name string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.samples[name] = append(p.samples[name], d)
	if len(p.samples[name]) > p.maxSamples {
		p.samples[name] = p.samples[name][1:]
	}
}

// Avg returns the average duration for the named stage.
func (p *PerfStats) Avg(name string) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.avgLocked(name)
}

func (p *PerfStats) avgLocked(name string) time.Duration {
	s := p.samples[name]
	if len(s) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range s {
		total += d
	}
	return total / time.Duration(len(s))
}

// Total returns the sum of all average stage durations.
func (p *PerfStats) Total() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	var total time.Duration
	for name := range p.samples {
		total += p.avgLocked(name)
	}
	return total
}

// SortedNames returns stage names sorted by average duration (descending).
func (p *PerfStats) SortedNames() []string {
	p.mu.Lock()
	names := make([]string, 0, len(p.samples))
	for name := range p.samples {
		names = append(names, name)
	}
	avgs := make(map[string]time.Duration, len(names))
	for _, name := range names {
		avgs[name] = p.avgLocked(name)
	}
	p.mu.Unlock()

	sort.Slice(names, func(i, j int) bool {
		return avgs[names[i]] > avgs[names[j]]
	})
	return names
}

// PerfRecord is one stage's timing snapshot for CSV output.
type PerfRecord struct {
	Step      int64   `csv:"step"`
	Stage     string  `csv:"stage"`
	AvgMicros float64 `csv:"avg_us"`
}

// Snapshot returns one record per stage at the given step, ordered by
// average duration.
func (p *PerfStats) Snapshot(step int64) []PerfRecord {
	names := p.SortedNames()
	records := make([]PerfRecord, 0, len(names))
	for _, name := range names {
		records = append(records, PerfRecord{
			Step:      step,
			Stage:     name,
			AvgMicros: float64(p.Avg(name)) / float64(time.Microsecond),
		})
	}
	return records
}
