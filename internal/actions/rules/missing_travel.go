package rules

import (
	"fmt"
	"time"

	"github.com/aristath/stagehand/internal/domain"
	"github.com/rs/zerolog"
)

// MissingTravelRule flags confirmed shows within two weeks that have no
// travel booked near their date. The match is deliberately coarse: any
// travel item within a day of the show date counts as "travel arranged",
// regardless of which show it belongs to.
type MissingTravelRule struct {
	log zerolog.Logger
}

// NewMissingTravelRule creates the missing-travel rule.
func NewMissingTravelRule(log zerolog.Logger) *MissingTravelRule {
	return &MissingTravelRule{log: log.With().Str("rule", "missing_travel").Logger()}
}

// Name returns the rule name.
func (r *MissingTravelRule) Name() string { return "missing_travel" }

// Kind returns the action kind.
func (r *MissingTravelRule) Kind() domain.ActionKind { return domain.KindOpportunity }

// Evaluate produces one opportunity action per confirmed show 0-14 days out
// with no travel within a day of it. This rule tops out at the med tier.
func (r *MissingTravelRule) Evaluate(ctx *Context) []domain.HubAction {
	var actions []domain.HubAction

	// Parse travel dates once per pass.
	travelDates := make([]time.Time, 0, len(ctx.Travel))
	for _, item := range ctx.Travel {
		if date, ok := domain.ParseISO(item.Date); ok {
			travelDates = append(travelDates, date)
		}
	}

	for _, show := range ctx.Shows {
		if show.Status != domain.StatusConfirmed {
			continue
		}
		date, ok := domain.ParseISO(show.Date)
		if !ok {
			continue
		}
		diff := domain.DaysUntil(ctx.Now, date)
		if diff < 0 || diff > 14 {
			continue
		}
		if travelNear(travelDates, date) {
			continue
		}

		score := 55 + float64(14-diff) + feeWeight(show.Fee)/2
		actions = append(actions, domain.HubAction{
			ID:         show.ID,
			Kind:       domain.KindOpportunity,
			Label:      showLabel(show),
			Meta:       fmt.Sprintf("No travel booked, show in %dd", diff),
			Score:      score,
			Date:       show.Date,
			DismissKey: "opp:" + show.ID,
			Amount:     show.Fee,
			Status:     show.Status,
			City:       show.City,
			Country:    show.Country,
			Impact:     tierMedOrLow(score, 80),
		})
	}

	return actions
}

// travelNear reports whether any travel date lies within one day of the
// show date.
func travelNear(travelDates []time.Time, showDate time.Time) bool {
	for _, t := range travelDates {
		delta := showDate.Sub(t)
		if delta < 0 {
			delta = -delta
		}
		if delta <= 24*time.Hour {
			return true
		}
	}
	return false
}
