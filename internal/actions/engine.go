// Package actions implements the scoring engine that ranks shows and
// travel data into a prioritized list of hub actions.
package actions

import (
	"sort"
	"time"

	"github.com/aristath/stagehand/internal/actions/rules"
	"github.com/aristath/stagehand/internal/domain"
	"github.com/rs/zerolog"
)

// Engine is the pure scoring engine. Compute is deterministic,
// side-effect-free and performs no I/O; it is safe to run on any
// goroutine, including the one-shot worker.
type Engine struct {
	registry *rules.Registry
	log      zerolog.Logger
}

// NewEngine creates an engine with the five canonical rule families.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		registry: rules.NewPopulatedRegistry(log),
		log:      log.With().Str("component", "action_engine").Logger(),
	}
}

// NewEngineWithRegistry creates an engine over a custom rule registry.
func NewEngineWithRegistry(registry *rules.Registry, log zerolog.Logger) *Engine {
	return &Engine{
		registry: registry,
		log:      log.With().Str("component", "action_engine").Logger(),
	}
}

// Compute evaluates every rule family over the inputs and returns the
// merged actions sorted by score descending, ties broken by ascending
// date string (missing dates sort first). The sort is stable, so repeated
// calls over identical inputs yield identical output.
func (e *Engine) Compute(now time.Time, shows []domain.Show, travel []domain.TravelItem) []domain.HubAction {
	ctx := &rules.Context{Now: now, Shows: shows, Travel: travel}

	acts := e.registry.EvaluateAll(ctx)

	sort.SliceStable(acts, func(i, j int) bool {
		if acts[i].Score != acts[j].Score {
			return acts[i].Score > acts[j].Score
		}
		return acts[i].Date < acts[j].Date
	})

	if acts == nil {
		acts = []domain.HubAction{}
	}

	e.log.Debug().
		Int("shows", len(shows)).
		Int("travel", len(travel)).
		Int("actions", len(acts)).
		Msg("Actions computed")

	return acts
}
