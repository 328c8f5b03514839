package rules

import (
	"fmt"

	"github.com/aristath/stagehand/internal/domain"
	"github.com/rs/zerolog"
)

// NearTermUrgencyRule flags pending and offer shows coming up within ten
// days: the closer the date, the less time is left to close the deal.
type NearTermUrgencyRule struct {
	log zerolog.Logger
}

// NewNearTermUrgencyRule creates the near-term urgency rule.
func NewNearTermUrgencyRule(log zerolog.Logger) *NearTermUrgencyRule {
	return &NearTermUrgencyRule{log: log.With().Str("rule", "near_term_urgency").Logger()}
}

// Name returns the rule name.
func (r *NearTermUrgencyRule) Name() string { return "near_term_urgency" }

// Kind returns the action kind.
func (r *NearTermUrgencyRule) Kind() domain.ActionKind { return domain.KindUrgency }

// Evaluate produces one urgency action per unsettled show 0-10 days out.
// A show dated exactly now still fires (day diff zero is in range).
func (r *NearTermUrgencyRule) Evaluate(ctx *Context) []domain.HubAction {
	var actions []domain.HubAction

	for _, show := range ctx.Shows {
		if show.Status != domain.StatusPending && show.Status != domain.StatusOffer {
			continue
		}
		date, ok := domain.ParseISO(show.Date)
		if !ok {
			continue
		}
		diff := domain.DaysUntil(ctx.Now, date)
		if diff < 0 || diff > 10 {
			continue
		}

		score := 70 + float64(10-diff) + feeWeight(show.Fee)
		actions = append(actions, domain.HubAction{
			ID:         show.ID,
			Kind:       domain.KindUrgency,
			Label:      showLabel(show),
			Meta:       fmt.Sprintf("Show in %dd, still %s", diff, show.Status),
			Score:      score,
			Date:       show.Date,
			DismissKey: "urg:" + show.ID,
			Amount:     show.Fee,
			Status:     show.Status,
			City:       show.City,
			Country:    show.Country,
			Impact:     tierAbove(score, 110, 90),
		})
	}

	return actions
}
