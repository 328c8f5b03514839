// Package finance aggregates tour revenue across currencies.
package finance

import (
	"fmt"

	"github.com/aristath/stagehand/internal/currency"
	"github.com/aristath/stagehand/internal/domain"
	"github.com/rs/zerolog"
)

// ShowLister is the slice of the shows repository the service needs.
type ShowLister interface {
	List() ([]domain.Show, error)
}

// Summary is the aggregated revenue view for the dashboard header.
type Summary struct {
	Base           currency.Code `json:"base"`
	TotalFees      float64       `json:"total_fees"`
	ConfirmedFees  float64       `json:"confirmed_fees"`
	PendingFees    float64       `json:"pending_fees"`
	Shows          int           `json:"shows"`
	ExcludedOffers int           `json:"excluded_offers"`
}

// Service computes revenue summaries over the live rate table.
type Service struct {
	shows    ShowLister
	provider *currency.Provider
	log      zerolog.Logger
}

// NewService creates a new finance service.
func NewService(shows ShowLister, provider *currency.Provider, log zerolog.Logger) *Service {
	return &Service{
		shows:    shows,
		provider: provider,
		log:      log.With().Str("service", "finance").Logger(),
	}
}

// Summarize totals all show fees in the requested base currency. Offers
// are excluded from every total; they are unrealized revenue.
func (s *Service) Summarize(base currency.Code) (*Summary, error) {
	if base == "" {
		base = currency.BaseCurrency
	}

	shows, err := s.shows.List()
	if err != nil {
		return nil, fmt.Errorf("failed to load shows: %w", err)
	}

	normalizer := currency.NewNormalizer(s.provider.Current(), s.log)

	all := make([]currency.FeeRecord, 0, len(shows))
	confirmed := make([]currency.FeeRecord, 0, len(shows))
	pending := make([]currency.FeeRecord, 0, len(shows))
	offers := 0

	for _, show := range shows {
		rec := currency.FeeRecord{
			Fee:         show.Fee,
			FeeCurrency: currency.Code(show.FeeCurrency),
			Date:        show.Date,
			Status:      show.Status,
		}
		all = append(all, rec)

		switch show.Status {
		case domain.StatusConfirmed:
			confirmed = append(confirmed, rec)
		case domain.StatusPending:
			pending = append(pending, rec)
		case domain.StatusOffer:
			offers++
		}
	}

	return &Summary{
		Base:           base,
		TotalFees:      normalizer.SumFees(all, base),
		ConfirmedFees:  normalizer.SumFees(confirmed, base),
		PendingFees:    normalizer.SumFees(pending, base),
		Shows:          len(shows),
		ExcludedOffers: offers,
	}, nil
}
