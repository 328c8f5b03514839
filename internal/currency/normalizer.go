package currency

import (
	"math"

	"github.com/aristath/stagehand/internal/domain"
	"github.com/rs/zerolog"
)

// Conversion is the result of converting an amount to a base currency.
// Rate is the effective from-to-base multiplier, not an intermediate leg.
type Conversion struct {
	Value float64 `json:"value"`
	Rate  float64 `json:"rate"`
}

// FeeRecord is the minimal shape SumFees needs from a dated monetary record.
type FeeRecord struct {
	Fee         float64
	FeeCurrency Code
	Date        string
	Status      domain.ShowStatus
}

// Normalizer converts dated, multi-currency amounts into a base currency
// using an injected immutable monthly rate table.
type Normalizer struct {
	table *Table
	log   zerolog.Logger
}

// NewNormalizer creates a normalizer over the given rate table.
func NewNormalizer(table *Table, log zerolog.Logger) *Normalizer {
	return &Normalizer{
		table: table,
		log:   log.With().Str("service", "currency").Logger(),
	}
}

// RateToBase returns the units-per-EUR multiplier for a currency at the
// month of the given date. EUR is always 1 and needs no date. Returns
// ok=false when the date is missing/unparseable for a non-EUR currency or
// the currency is absent from the resolved monthly row.
func (n *Normalizer) RateToBase(date string, ccy Code) (float64, bool) {
	if ccy == BaseCurrency {
		return 1, true
	}
	key, ok := MonthKey(date)
	if !ok {
		return 0, false
	}
	row, ok := n.table.resolve(key)
	if !ok {
		return 0, false
	}
	rate, ok := row[ccy]
	return rate, ok
}

// ConvertToBase converts amount dated in the from currency into the base
// currency. When base is not EUR the conversion composes through the EUR
// pivot. Returns ok=false for NaN amounts or when a required rate is
// unavailable.
func (n *Normalizer) ConvertToBase(amount float64, date string, from, base Code) (Conversion, bool) {
	if math.IsNaN(amount) {
		return Conversion{}, false
	}
	if from == base {
		return Conversion{Value: amount, Rate: 1}, true
	}

	fromRate, ok := n.RateToBase(date, from)
	if !ok || fromRate == 0 {
		return Conversion{}, false
	}

	baseRate := 1.0
	if base != BaseCurrency {
		baseRate, ok = n.RateToBase(date, base)
		if !ok {
			return Conversion{}, false
		}
	}

	effective := baseRate / fromRate
	return Conversion{Value: amount * effective, Rate: effective}, true
}

// SumFees totals a collection of dated multi-currency fees in the base
// currency. Offers are skipped outright: they are not realized revenue.
// When no rate is available for a record the raw unconverted fee is added
// instead of dropping the record; mixing currencies transiently beats
// silently losing money.
func (n *Normalizer) SumFees(records []FeeRecord, base Code) float64 {
	total := 0.0
	for _, rec := range records {
		if rec.Status == domain.StatusOffer {
			continue
		}

		ccy := rec.FeeCurrency
		if ccy == "" {
			ccy = BaseCurrency
		}

		if ccy == base {
			total += rec.Fee
			continue
		}

		conv, ok := n.ConvertToBase(rec.Fee, rec.Date, ccy, base)
		if !ok {
			n.log.Debug().
				Str("date", rec.Date).
				Str("currency", string(ccy)).
				Float64("fee", rec.Fee).
				Msg("No rate available, adding raw unconverted fee")
			total += rec.Fee
			continue
		}
		total += conv.Value
	}
	return total
}
