package rules

import (
	"math"

	"github.com/aristath/stagehand/internal/domain"
	"github.com/rs/zerolog"
)

// costRatio is the pessimistic cost estimate applied to every show's fee.
// With the ratio fixed at 0.55 the net-loss condition below can only fire
// for non-positive fees. That is the shipped behavior and it is kept
// literal here pending a configurable cost model; see DESIGN.md.
const costRatio = 0.55

// ProjectedLossRule estimates a pessimistic cost for every show regardless
// of status and flags shows whose projected net is negative.
type ProjectedLossRule struct {
	log zerolog.Logger
}

// NewProjectedLossRule creates the projected-loss rule.
func NewProjectedLossRule(log zerolog.Logger) *ProjectedLossRule {
	return &ProjectedLossRule{log: log.With().Str("rule", "projected_loss").Logger()}
}

// Name returns the rule name.
func (r *ProjectedLossRule) Name() string { return "projected_loss" }

// Kind returns the action kind.
func (r *ProjectedLossRule) Kind() domain.ActionKind { return domain.KindFinRisk }

// Evaluate produces one financial-risk action per show with a projected
// net loss. Urgency decays to zero once the show is more than 30 days out.
func (r *ProjectedLossRule) Evaluate(ctx *Context) []domain.HubAction {
	var actions []domain.HubAction

	for _, show := range ctx.Shows {
		cost := show.Fee * costRatio
		net := show.Fee - cost
		if !(net < 0) {
			continue
		}
		date, ok := domain.ParseISO(show.Date)
		if !ok {
			continue
		}
		diff := domain.DaysUntil(ctx.Now, date)
		decay := math.Max(0, float64(30-diff))

		score := 85 + decay + feeWeight(math.Abs(net))
		actions = append(actions, domain.HubAction{
			ID:         show.ID,
			Kind:       domain.KindFinRisk,
			Label:      showLabel(show),
			Meta:       "Projected net loss on current terms",
			Score:      score,
			Date:       show.Date,
			DismissKey: "fin:" + show.ID,
			Amount:     show.Fee,
			Status:     show.Status,
			City:       show.City,
			Country:    show.Country,
			Impact:     tierAbove(score, 110, 95),
		})
	}

	return actions
}
