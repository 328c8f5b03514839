// Package services contains cross-module application services.
package services

import (
	"fmt"

	"github.com/aristath/stagehand/internal/clients/exchangerate"
	"github.com/aristath/stagehand/internal/currency"
	"github.com/aristath/stagehand/internal/events"
	"github.com/rs/zerolog"
)

// RateSyncService refreshes the current month's row of the rate table
// from the exchange rate API. It rebuilds the immutable table and swaps
// it into the provider, so normalization in flight keeps its snapshot.
type RateSyncService struct {
	client   *exchangerate.Client
	provider *currency.Provider
	bus      *events.Bus
	log      zerolog.Logger
}

// NewRateSyncService creates a new rate sync service.
func NewRateSyncService(
	client *exchangerate.Client,
	provider *currency.Provider,
	bus *events.Bus,
	log zerolog.Logger,
) *RateSyncService {
	return &RateSyncService{
		client:   client,
		provider: provider,
		bus:      bus,
		log:      log.With().Str("service", "rate_sync").Logger(),
	}
}

// Sync fetches the current month's EUR-base snapshot and merges it into
// the live table. Fetch failures leave the previous table untouched;
// stale rates beat no rates.
func (s *RateSyncService) Sync() error {
	month, rates, err := s.client.GetCurrentRates()
	if err != nil {
		s.log.Warn().Err(err).Msg("Rate fetch failed, keeping previous table")
		return fmt.Errorf("rate sync failed: %w", err)
	}

	row := make(map[currency.Code]float64, len(rates))
	for ccy, rate := range rates {
		if rate <= 0 {
			continue
		}
		row[currency.Code(ccy)] = rate
	}
	if len(row) == 0 {
		return fmt.Errorf("rate sync for %s produced no usable rates", month)
	}

	months := s.provider.Current().Months()
	months[month] = row
	s.provider.Swap(currency.NewTable(months))

	s.log.Info().
		Str("month", month).
		Int("currencies", len(row)).
		Msg("Rate table refreshed")

	s.bus.Publish(&events.RatesSyncedData{
		Month:      month,
		Currencies: len(row),
	})

	return nil
}

// Name returns the job name for scheduling and logging.
func (s *RateSyncService) Name() string {
	return "rate_sync"
}
