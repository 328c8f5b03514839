package rules

import (
	"fmt"

	"github.com/aristath/stagehand/internal/domain"
	"github.com/rs/zerolog"
)

// OverdueInvoiceRule flags pending shows whose date has already passed:
// the show happened but the deal was never confirmed, so the invoice is
// at risk. Urgency grows with every day since the show.
type OverdueInvoiceRule struct {
	log zerolog.Logger
}

// NewOverdueInvoiceRule creates the overdue invoice rule.
func NewOverdueInvoiceRule(log zerolog.Logger) *OverdueInvoiceRule {
	return &OverdueInvoiceRule{log: log.With().Str("rule", "overdue_invoice").Logger()}
}

// Name returns the rule name.
func (r *OverdueInvoiceRule) Name() string { return "overdue_invoice" }

// Kind returns the action kind.
func (r *OverdueInvoiceRule) Kind() domain.ActionKind { return domain.KindRisk }

// Evaluate produces one risk action per pending show strictly in the past.
// A show dated exactly now does not fire: the day diff must be positive.
func (r *OverdueInvoiceRule) Evaluate(ctx *Context) []domain.HubAction {
	var actions []domain.HubAction

	for _, show := range ctx.Shows {
		if show.Status != domain.StatusPending {
			continue
		}
		date, ok := domain.ParseISO(show.Date)
		if !ok {
			continue
		}
		diff := domain.DaysSince(ctx.Now, date)
		if diff <= 0 {
			continue
		}

		score := 110 + float64(diff) + feeWeight(show.Fee)
		actions = append(actions, domain.HubAction{
			ID:         show.ID,
			Kind:       domain.KindRisk,
			Label:      showLabel(show),
			Meta:       fmt.Sprintf("Invoice pending, show %dd ago", diff),
			Score:      score,
			Date:       show.Date,
			DismissKey: "risk:" + show.ID,
			Amount:     show.Fee,
			Status:     show.Status,
			City:       show.City,
			Country:    show.Country,
			Impact:     tierAbove(score, 130, 110),
		})
	}

	return actions
}
