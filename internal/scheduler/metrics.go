package scheduler

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// RunStats summarizes recent committed run durations.
type RunStats struct {
	Runs   int     `json:"runs"`
	MeanMs float64 `json:"mean_ms"`
	P95Ms  float64 `json:"p95_ms"`
	MaxMs  float64 `json:"max_ms"`
}

// Stats aggregates the sliding window of run durations.
func (s *Scheduler) Stats() RunStats {
	s.mu.Lock()
	samples := make([]float64, len(s.samples))
	copy(samples, s.samples)
	s.mu.Unlock()

	if len(samples) == 0 {
		return RunStats{}
	}

	sort.Float64s(samples)
	return RunStats{
		Runs:   len(samples),
		MeanMs: stat.Mean(samples, nil),
		P95Ms:  stat.Quantile(0.95, stat.Empirical, samples, nil),
		MaxMs:  samples[len(samples)-1],
	}
}
