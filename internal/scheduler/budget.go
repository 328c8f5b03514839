package scheduler

import "github.com/aristath/stagehand/internal/events"

// Latency budgets in milliseconds, by execution path and input size.
// Worker runs get more headroom because dispatch and serialization are
// part of the measured wall clock.
const (
	mainBudgetSmallMs = 120
	mainBudgetLargeMs = 200
	mainBudgetCutover = 500

	workerBudgetSmallMs = 160
	workerBudgetLargeMs = 250
	workerBudgetCutover = 1000
)

// BudgetFor returns the latency budget in milliseconds for a computation
// over count shows on the given path.
func BudgetFor(count int, worker bool) float64 {
	if worker {
		if count > workerBudgetCutover {
			return workerBudgetLargeMs
		}
		return workerBudgetSmallMs
	}
	if count > mainBudgetCutover {
		return mainBudgetLargeMs
	}
	return mainBudgetSmallMs
}

// checkBudget compares a measured duration against its budget and emits
// the advisory over-budget event on breach. It never blocks or retries
// the computation.
func (s *Scheduler) checkBudget(count int, ms float64, worker bool) {
	budget := BudgetFor(count, worker)
	if ms <= budget {
		return
	}

	s.log.Warn().
		Int("count", count).
		Float64("ms", ms).
		Float64("budget", budget).
		Bool("worker", worker).
		Msg("Computation over latency budget")

	s.bus.Publish(&events.BudgetExceededData{
		Count:  count,
		Ms:     ms,
		Budget: budget,
		Worker: worker,
	})
}
