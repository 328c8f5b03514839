package rules

import (
	"testing"
	"time"

	"github.com/aristath/stagehand/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func isoDaysFromNow(days int) string {
	return testNow.AddDate(0, 0, days).Format(time.RFC3339)
}

func evalCtx(shows []domain.Show, travel []domain.TravelItem) *Context {
	return &Context{Now: testNow, Shows: shows, Travel: travel}
}

func TestOverdueInvoiceRule(t *testing.T) {
	rule := NewOverdueInvoiceRule(zerolog.Nop())

	t.Run("pending show in the past fires", func(t *testing.T) {
		shows := []domain.Show{{
			ID: "s1", Date: isoDaysFromNow(-12), City: "Berlin",
			Fee: 5000, Status: domain.StatusPending,
		}}
		actions := rule.Evaluate(evalCtx(shows, nil))
		require.Len(t, actions, 1)

		a := actions[0]
		assert.Equal(t, domain.KindRisk, a.Kind)
		assert.Equal(t, "risk:s1", a.DismissKey)
		assert.Equal(t, "Berlin", a.Label)
		// 110 + 12 + feeWeight(5000) where feeWeight caps at 60
		assert.Greater(t, a.Score, 130.0)
		assert.Equal(t, domain.ImpactHigh, a.Impact)
	})

	t.Run("show dated exactly now does not fire", func(t *testing.T) {
		shows := []domain.Show{{
			ID: "s1", Date: testNow.Format(time.RFC3339),
			Fee: 5000, Status: domain.StatusPending,
		}}
		assert.Empty(t, rule.Evaluate(evalCtx(shows, nil)))
	})

	t.Run("confirmed shows are ignored", func(t *testing.T) {
		shows := []domain.Show{{
			ID: "s1", Date: isoDaysFromNow(-12),
			Fee: 5000, Status: domain.StatusConfirmed,
		}}
		assert.Empty(t, rule.Evaluate(evalCtx(shows, nil)))
	})

	t.Run("malformed date is silently excluded", func(t *testing.T) {
		shows := []domain.Show{{
			ID: "s1", Date: "not-a-date",
			Fee: 5000, Status: domain.StatusPending,
		}}
		assert.Empty(t, rule.Evaluate(evalCtx(shows, nil)))
	})

	t.Run("small overdue with zero fee lands in low tier", func(t *testing.T) {
		// Score 110 + 1 + 0 = 111 > 110 -> med; use diff=1 fee=0
		shows := []domain.Show{{
			ID: "s1", Date: isoDaysFromNow(-1),
			Fee: 0, Status: domain.StatusPending,
		}}
		actions := rule.Evaluate(evalCtx(shows, nil))
		require.Len(t, actions, 1)
		assert.Equal(t, domain.ImpactMed, actions[0].Impact)
		assert.Equal(t, 111.0, actions[0].Score)
	})
}

func TestNearTermUrgencyRule(t *testing.T) {
	rule := NewNearTermUrgencyRule(zerolog.Nop())

	t.Run("show dated exactly now fires", func(t *testing.T) {
		shows := []domain.Show{{
			ID: "s1", Date: testNow.Format(time.RFC3339),
			Fee: 1000, Status: domain.StatusPending,
		}}
		actions := rule.Evaluate(evalCtx(shows, nil))
		require.Len(t, actions, 1)
		assert.Equal(t, "urg:s1", actions[0].DismissKey)
	})

	t.Run("offers fire too", func(t *testing.T) {
		shows := []domain.Show{{
			ID: "s1", Date: isoDaysFromNow(5),
			Fee: 1000, Status: domain.StatusOffer,
		}}
		require.Len(t, rule.Evaluate(evalCtx(shows, nil)), 1)
	})

	t.Run("eleven days out is outside the window", func(t *testing.T) {
		shows := []domain.Show{{
			ID: "s1", Date: isoDaysFromNow(11),
			Fee: 1000, Status: domain.StatusPending,
		}}
		assert.Empty(t, rule.Evaluate(evalCtx(shows, nil)))
	})

	t.Run("past shows are out of scope", func(t *testing.T) {
		shows := []domain.Show{{
			ID: "s1", Date: isoDaysFromNow(-1),
			Fee: 1000, Status: domain.StatusPending,
		}}
		assert.Empty(t, rule.Evaluate(evalCtx(shows, nil)))
	})

	t.Run("closer shows score higher", func(t *testing.T) {
		near := rule.Evaluate(evalCtx([]domain.Show{{
			ID: "a", Date: isoDaysFromNow(1), Fee: 1000, Status: domain.StatusPending,
		}}, nil))
		far := rule.Evaluate(evalCtx([]domain.Show{{
			ID: "b", Date: isoDaysFromNow(9), Fee: 1000, Status: domain.StatusPending,
		}}, nil))
		require.Len(t, near, 1)
		require.Len(t, far, 1)
		assert.Greater(t, near[0].Score, far[0].Score)
	})
}

func TestMissingTravelRule(t *testing.T) {
	rule := NewMissingTravelRule(zerolog.Nop())

	confirmedShow := domain.Show{
		ID: "s1", Date: isoDaysFromNow(10), City: "Lisbon",
		Fee: 3000, Status: domain.StatusConfirmed,
	}

	t.Run("confirmed show without travel fires", func(t *testing.T) {
		actions := rule.Evaluate(evalCtx([]domain.Show{confirmedShow}, nil))
		require.Len(t, actions, 1)
		assert.Equal(t, "opp:s1", actions[0].DismissKey)
		assert.Equal(t, domain.KindOpportunity, actions[0].Kind)
	})

	t.Run("travel within a day suppresses", func(t *testing.T) {
		travel := []domain.TravelItem{{ID: "t1", Date: isoDaysFromNow(11)}}
		assert.Empty(t, rule.Evaluate(evalCtx([]domain.Show{confirmedShow}, travel)))
	})

	t.Run("travel three days away re-triggers", func(t *testing.T) {
		travel := []domain.TravelItem{{ID: "t1", Date: isoDaysFromNow(13)}}
		require.Len(t, rule.Evaluate(evalCtx([]domain.Show{confirmedShow}, travel)), 1)
	})

	t.Run("travel match ignores show association", func(t *testing.T) {
		// Any travel near the date counts, not just travel for this show.
		travel := []domain.TravelItem{{ID: "unrelated", Date: isoDaysFromNow(10), Title: "Other trip"}}
		assert.Empty(t, rule.Evaluate(evalCtx([]domain.Show{confirmedShow}, travel)))
	})

	t.Run("pending shows are out of scope", func(t *testing.T) {
		show := confirmedShow
		show.Status = domain.StatusPending
		assert.Empty(t, rule.Evaluate(evalCtx([]domain.Show{show}, nil)))
	})

	t.Run("fifteen days out is outside the window", func(t *testing.T) {
		show := confirmedShow
		show.Date = isoDaysFromNow(15)
		assert.Empty(t, rule.Evaluate(evalCtx([]domain.Show{show}, nil)))
	})

	t.Run("never reaches high tier", func(t *testing.T) {
		// Max score: 55 + 14 + 60/2 = 99 with a huge fee, still med.
		show := domain.Show{
			ID: "s1", Date: isoDaysFromNow(0), Fee: 10000000,
			Status: domain.StatusConfirmed,
		}
		actions := rule.Evaluate(evalCtx([]domain.Show{show}, nil))
		require.Len(t, actions, 1)
		assert.Equal(t, domain.ImpactMed, actions[0].Impact)
	})
}

func TestStaleOfferRule(t *testing.T) {
	rule := NewStaleOfferRule(zerolog.Nop())

	t.Run("offer in window fires", func(t *testing.T) {
		shows := []domain.Show{{
			ID: "s1", Date: isoDaysFromNow(12), Fee: 2000, Status: domain.StatusOffer,
		}}
		actions := rule.Evaluate(evalCtx(shows, nil))
		require.Len(t, actions, 1)
		assert.Equal(t, "off:s1", actions[0].DismissKey)
	})

	t.Run("window boundaries are inclusive", func(t *testing.T) {
		for _, days := range []int{5, 30} {
			shows := []domain.Show{{
				ID: "s1", Date: isoDaysFromNow(days), Fee: 2000, Status: domain.StatusOffer,
			}}
			require.Len(t, rule.Evaluate(evalCtx(shows, nil)), 1, "days=%d", days)
		}
		for _, days := range []int{4, 31} {
			shows := []domain.Show{{
				ID: "s1", Date: isoDaysFromNow(days), Fee: 2000, Status: domain.StatusOffer,
			}}
			assert.Empty(t, rule.Evaluate(evalCtx(shows, nil)), "days=%d", days)
		}
	})

	t.Run("decay caps at 25 days", func(t *testing.T) {
		at25 := rule.Evaluate(evalCtx([]domain.Show{{
			ID: "a", Date: isoDaysFromNow(25), Fee: 0, Status: domain.StatusOffer,
		}}, nil))
		at30 := rule.Evaluate(evalCtx([]domain.Show{{
			ID: "b", Date: isoDaysFromNow(30), Fee: 0, Status: domain.StatusOffer,
		}}, nil))
		require.Len(t, at25, 1)
		require.Len(t, at30, 1)
		assert.Equal(t, at25[0].Score, at30[0].Score)
		assert.Equal(t, 65.0, at30[0].Score)
	})
}

func TestProjectedLossRule(t *testing.T) {
	rule := NewProjectedLossRule(zerolog.Nop())

	t.Run("positive fees never fire", func(t *testing.T) {
		shows := []domain.Show{
			{ID: "a", Date: isoDaysFromNow(5), Fee: 100, Status: domain.StatusConfirmed},
			{ID: "b", Date: isoDaysFromNow(5), Fee: 0.01, Status: domain.StatusPending},
		}
		assert.Empty(t, rule.Evaluate(evalCtx(shows, nil)))
	})

	t.Run("zero fee never fires", func(t *testing.T) {
		shows := []domain.Show{{
			ID: "a", Date: isoDaysFromNow(5), Fee: 0, Status: domain.StatusConfirmed,
		}}
		assert.Empty(t, rule.Evaluate(evalCtx(shows, nil)))
	})

	t.Run("negative fee fires regardless of status", func(t *testing.T) {
		shows := []domain.Show{{
			ID: "a", Date: isoDaysFromNow(5), Fee: -1000, Status: domain.StatusConfirmed,
		}}
		actions := rule.Evaluate(evalCtx(shows, nil))
		require.Len(t, actions, 1)
		assert.Equal(t, domain.KindFinRisk, actions[0].Kind)
		assert.Equal(t, "fin:a", actions[0].DismissKey)
	})

	t.Run("decay floors at zero beyond 30 days", func(t *testing.T) {
		near := rule.Evaluate(evalCtx([]domain.Show{{
			ID: "a", Date: isoDaysFromNow(5), Fee: -1000, Status: domain.StatusOffer,
		}}, nil))
		far := rule.Evaluate(evalCtx([]domain.Show{{
			ID: "b", Date: isoDaysFromNow(60), Fee: -1000, Status: domain.StatusOffer,
		}}, nil))
		require.Len(t, near, 1)
		require.Len(t, far, 1)
		assert.Greater(t, near[0].Score, far[0].Score)
		// Beyond 30 days decay is zero: 85 + feeWeight(|net|)
		assert.InDelta(t, 85, far[0].Score-feeWeight(450), 1e-9)
	})
}

func TestFeeWeight(t *testing.T) {
	assert.Equal(t, 0.0, feeWeight(0))
	assert.Equal(t, 0.0, feeWeight(-500))
	assert.InDelta(t, 54.01, feeWeight(1000), 0.05)
	assert.Equal(t, 60.0, feeWeight(10000000))
}

func TestRegistryOrder(t *testing.T) {
	registry := NewPopulatedRegistry(zerolog.Nop())
	rules := registry.Rules()
	require.Len(t, rules, 5)

	kinds := make([]domain.ActionKind, 0, len(rules))
	for _, r := range rules {
		kinds = append(kinds, r.Kind())
	}
	assert.Equal(t, []domain.ActionKind{
		domain.KindRisk,
		domain.KindUrgency,
		domain.KindOpportunity,
		domain.KindOffer,
		domain.KindFinRisk,
	}, kinds)
}

func TestShowContributesToMultipleRules(t *testing.T) {
	registry := NewPopulatedRegistry(zerolog.Nop())

	// An offer 7 days out fires both near-term urgency and stale offer.
	shows := []domain.Show{{
		ID: "s1", Date: isoDaysFromNow(7), Fee: 2000, Status: domain.StatusOffer,
	}}
	actions := registry.EvaluateAll(evalCtx(shows, nil))

	kinds := map[domain.ActionKind]bool{}
	for _, a := range actions {
		kinds[a.Kind] = true
	}
	assert.True(t, kinds[domain.KindUrgency])
	assert.True(t, kinds[domain.KindOffer])
}
