// Package scheduler decides where the scoring computation runs (inline,
// deferred to an idle slot, or offloaded to a one-shot worker) and
// guarantees that only the most recent non-superseded result is ever
// committed.
package scheduler

import "time"

// Strategy is an execution strategy for one computation.
type Strategy string

const (
	StrategySync   Strategy = "sync"
	StrategyIdle   Strategy = "idle"
	StrategyWorker Strategy = "worker"
)

// Defaults for the strategy policy.
const (
	DefaultWorkerThreshold = 500
	DefaultWorkerTimeout   = 5 * time.Second
)

// IdleRunner schedules work into an idle slot. Schedule returns a cancel
// function; cancelling after the callback ran is a no-op.
type IdleRunner interface {
	Schedule(fn func()) (cancel func())
}

// Options configures the scheduler's strategy policy.
type Options struct {
	// WorkerThreshold is the show count above which the computation is
	// offloaded to a worker. Zero means DefaultWorkerThreshold.
	WorkerThreshold int

	// WorkerTimeout bounds how long a worker dispatch may take before the
	// scheduler falls back to a synchronous run. Zero means
	// DefaultWorkerTimeout. A dead worker must never hang a computation
	// cycle.
	WorkerTimeout time.Duration

	// WorkerEnabled reports whether a worker execution context is
	// available in this environment.
	WorkerEnabled bool

	// TestMode suppresses worker offload so automated tests stay on the
	// calling goroutine unless they opt in.
	TestMode bool

	// Idle is the idle-scheduling primitive. Nil degrades deferred
	// execution to immediate synchronous execution.
	Idle IdleRunner
}

// withDefaults fills zero-valued options.
func (o Options) withDefaults() Options {
	if o.WorkerThreshold == 0 {
		o.WorkerThreshold = DefaultWorkerThreshold
	}
	if o.WorkerTimeout == 0 {
		o.WorkerTimeout = DefaultWorkerTimeout
	}
	return o
}

// SelectStrategy picks the execution strategy for an input of the given
// cardinality. Worker offload wins for large inputs when available; an
// idle runner defers everything else; otherwise the computation runs
// synchronously on the calling goroutine.
func SelectStrategy(count int, opts Options) Strategy {
	opts = opts.withDefaults()
	if count > opts.WorkerThreshold && opts.WorkerEnabled && !opts.TestMode {
		return StrategyWorker
	}
	if opts.Idle != nil {
		return StrategyIdle
	}
	return StrategySync
}

// GoroutineIdleRunner approximates an idle slot by deferring work to a
// timer goroutine after a short yield, giving in-flight request handling
// a chance to finish first.
type GoroutineIdleRunner struct {
	Delay time.Duration
}

// Schedule defers fn and returns a cancel function.
func (r *GoroutineIdleRunner) Schedule(fn func()) func() {
	delay := r.Delay
	if delay == 0 {
		delay = 10 * time.Millisecond
	}
	timer := time.AfterFunc(delay, fn)
	return func() { timer.Stop() }
}
