package rules

import (
	"fmt"

	"github.com/aristath/stagehand/internal/domain"
	"github.com/rs/zerolog"
)

// StaleOfferRule flags offers sitting 5-30 days out: far enough that they
// are not urgent yet, close enough that silence means the deal is going
// cold and deserves a follow-up.
type StaleOfferRule struct {
	log zerolog.Logger
}

// NewStaleOfferRule creates the stale-offer rule.
func NewStaleOfferRule(log zerolog.Logger) *StaleOfferRule {
	return &StaleOfferRule{log: log.With().Str("rule", "stale_offer").Logger()}
}

// Name returns the rule name.
func (r *StaleOfferRule) Name() string { return "stale_offer" }

// Kind returns the action kind.
func (r *StaleOfferRule) Kind() domain.ActionKind { return domain.KindOffer }

// Evaluate produces one follow-up action per offer 5-30 days out (inclusive).
func (r *StaleOfferRule) Evaluate(ctx *Context) []domain.HubAction {
	var actions []domain.HubAction

	for _, show := range ctx.Shows {
		if show.Status != domain.StatusOffer {
			continue
		}
		date, ok := domain.ParseISO(show.Date)
		if !ok {
			continue
		}
		diff := domain.DaysUntil(ctx.Now, date)
		if diff < 5 || diff > 30 {
			continue
		}

		capped := diff
		if capped > 25 {
			capped = 25
		}
		score := 65 + float64(25-capped) + feeWeight(show.Fee)/3
		actions = append(actions, domain.HubAction{
			ID:         show.ID,
			Kind:       domain.KindOffer,
			Label:      showLabel(show),
			Meta:       fmt.Sprintf("Offer idle, show in %dd", diff),
			Score:      score,
			Date:       show.Date,
			DismissKey: "off:" + show.ID,
			Amount:     show.Fee,
			Status:     show.Status,
			City:       show.City,
			Country:    show.Country,
			Impact:     tierMedOrLow(score, 90),
		})
	}

	return actions
}
