package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/aristath/stagehand/internal/actions"
	"github.com/aristath/stagehand/internal/actions/workers"
	"github.com/aristath/stagehand/internal/domain"
	"github.com/aristath/stagehand/internal/events"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Result is one committed computation outcome.
type Result struct {
	RunID      string             `json:"run_id"`
	Strategy   Strategy           `json:"strategy"`
	Actions    []domain.HubAction `json:"actions"`
	Ms         float64            `json:"ms"`
	Count      int                `json:"count"`
	ComputedAt time.Time          `json:"computed_at"`
}

// Scheduler runs the scoring engine under an adaptive execution strategy.
// Every Submit supersedes the previous one: in-flight deferred or worker
// computations for older inputs are cancelled, and their results are
// discarded at commit time if they sneak past cancellation.
type Scheduler struct {
	engine *actions.Engine
	bus    *events.Bus
	opts   Options
	log    zerolog.Logger

	mu           sync.Mutex
	generation   uint64
	current      *Result
	cancelIdle   func()
	cancelWorker context.CancelFunc
	onCommit     func(Result)
	samples      []float64 // recent run durations in ms, newest last
}

// maxSamples bounds the run-duration window used for stats.
const maxSamples = 256

// New creates a scheduler around the given engine and event bus.
func New(engine *actions.Engine, bus *events.Bus, opts Options, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		engine: engine,
		bus:    bus,
		opts:   opts.withDefaults(),
		log:    log.With().Str("component", "execution_scheduler").Logger(),
	}
}

// OnCommit registers a callback invoked with every committed result.
// The callback runs on whichever goroutine committed the result.
func (s *Scheduler) OnCommit(fn func(Result)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCommit = fn
}

// Current returns the most recently committed result, or nil before the
// first commit.
func (s *Scheduler) Current() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	res := *s.current
	return &res
}

// Submit schedules a computation over the given inputs and returns the
// strategy chosen for it. Synchronous runs complete before Submit
// returns; idle and worker runs complete asynchronously and commit only
// if no newer Submit supersedes them first.
func (s *Scheduler) Submit(now time.Time, shows []domain.Show, travel []domain.TravelItem) Strategy {
	runID := uuid.NewString()

	s.mu.Lock()
	s.generation++
	gen := s.generation
	if s.cancelIdle != nil {
		s.cancelIdle()
		s.cancelIdle = nil
	}
	if s.cancelWorker != nil {
		s.cancelWorker()
		s.cancelWorker = nil
	}

	strategy := SelectStrategy(len(shows), s.opts)

	if strategy == StrategyIdle {
		s.cancelIdle = s.opts.Idle.Schedule(func() {
			s.runInline(gen, runID, StrategyIdle, now, shows, travel)
		})
	}
	s.mu.Unlock()

	s.log.Debug().
		Str("run_id", runID).
		Str("strategy", string(strategy)).
		Int("shows", len(shows)).
		Msg("Computation scheduled")

	s.bus.Publish(&events.StrategySelectedData{
		RunID:    runID,
		Strategy: string(strategy),
		Count:    len(shows),
	})

	switch strategy {
	case StrategyWorker:
		go s.runWorker(gen, runID, now, shows, travel)
	case StrategySync:
		s.runInline(gen, runID, StrategySync, now, shows, travel)
	}

	return strategy
}

// runInline computes on the calling goroutine and commits.
func (s *Scheduler) runInline(gen uint64, runID string, strategy Strategy, now time.Time, shows []domain.Show, travel []domain.TravelItem) {
	start := time.Now()
	acts := s.engine.Compute(now, shows, travel)
	ms := float64(time.Since(start).Nanoseconds()) / 1e6

	s.commit(gen, Result{
		RunID:      runID,
		Strategy:   strategy,
		Actions:    acts,
		Ms:         ms,
		Count:      len(shows),
		ComputedAt: time.Now().UTC(),
	})
}

// runWorker dispatches to a one-shot worker; on failure or timeout it
// falls back to a synchronous run for the same generation.
func (s *Scheduler) runWorker(gen uint64, runID string, now time.Time, shows []domain.Show, travel []domain.TravelItem) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.WorkerTimeout)
	defer cancel()

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.cancelWorker = cancel
	s.mu.Unlock()

	worker := workers.Spawn(s.engine, s.log)
	resp, err := worker.Dispatch(ctx, workers.Request{Now: now, Shows: shows, Travel: travel})

	if err != nil || !resp.OK {
		if err != nil {
			s.log.Warn().Err(err).Str("run_id", runID).Msg("Worker dispatch failed, falling back to synchronous run")
		} else {
			s.log.Warn().Str("error", resp.Error).Str("run_id", runID).Msg("Worker reported failure, falling back to synchronous run")
		}

		s.mu.Lock()
		stale := gen != s.generation
		s.mu.Unlock()
		if stale {
			return
		}
		s.runInline(gen, runID, StrategySync, now, shows, travel)
		return
	}

	s.commit(gen, Result{
		RunID:      runID,
		Strategy:   StrategyWorker,
		Actions:    resp.Actions,
		Ms:         resp.Ms,
		Count:      len(shows),
		ComputedAt: time.Now().UTC(),
	})
}

// commit installs a result if its generation is still current; stale
// results are discarded so an out-of-order completion can never
// overwrite a newer one.
func (s *Scheduler) commit(gen uint64, res Result) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		s.log.Debug().
			Str("run_id", res.RunID).
			Uint64("generation", gen).
			Msg("Discarding superseded result")
		return
	}
	s.current = &res
	s.samples = append(s.samples, res.Ms)
	if len(s.samples) > maxSamples {
		s.samples = s.samples[len(s.samples)-maxSamples:]
	}
	onCommit := s.onCommit
	s.mu.Unlock()

	s.checkBudget(res.Count, res.Ms, res.Strategy == StrategyWorker)

	s.bus.Publish(&events.ActionsComputedData{
		RunID:   res.RunID,
		Count:   res.Count,
		Actions: len(res.Actions),
		Ms:      res.Ms,
		Worker:  res.Strategy == StrategyWorker,
	})

	if onCommit != nil {
		onCommit(res)
	}
}
