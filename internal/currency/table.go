// Package currency provides currency-safe monetary normalization against a
// monthly historical rate table with EUR as the pivot currency.
package currency

import (
	"fmt"
	"sort"

	"github.com/aristath/stagehand/internal/domain"
)

// Code is an ISO 4217 currency code.
type Code string

// BaseCurrency is the pivot all conversions route through.
const BaseCurrency Code = "EUR"

// Table maps "YYYY-MM" month keys to per-currency multipliers expressing
// units of that currency per 1 EUR. A Table is immutable once built; swapping
// rates means building a new Table and replacing the reference.
type Table struct {
	months map[string]map[Code]float64
	keys   []string // month keys, ascending
}

// NewTable builds an immutable rate table from monthly rows.
// The input map is copied, so callers may reuse or mutate it afterwards.
func NewTable(months map[string]map[Code]float64) *Table {
	t := &Table{
		months: make(map[string]map[Code]float64, len(months)),
		keys:   make([]string, 0, len(months)),
	}
	for key, row := range months {
		rowCopy := make(map[Code]float64, len(row))
		for ccy, rate := range row {
			rowCopy[ccy] = rate
		}
		t.months[key] = rowCopy
		t.keys = append(t.keys, key)
	}
	sort.Strings(t.keys)
	return t
}

// Months returns a copy of the table's monthly rows.
func (t *Table) Months() map[string]map[Code]float64 {
	out := make(map[string]map[Code]float64, len(t.months))
	for key, row := range t.months {
		rowCopy := make(map[Code]float64, len(row))
		for ccy, rate := range row {
			rowCopy[ccy] = rate
		}
		out[key] = rowCopy
	}
	return out
}

// LatestMonth returns the most recent month key in the table.
func (t *Table) LatestMonth() string {
	if len(t.keys) == 0 {
		return ""
	}
	return t.keys[len(t.keys)-1]
}

// resolve finds the monthly row for the requested key: the exact month if
// present, otherwise the nearest earlier month, otherwise the latest known
// month. Rate history is sparse; the most recent known rate beats a hard
// failure and stays deterministic.
func (t *Table) resolve(key string) (map[Code]float64, bool) {
	if len(t.keys) == 0 {
		return nil, false
	}
	if row, ok := t.months[key]; ok {
		return row, true
	}
	// Greatest key lexicographically <= the requested key.
	idx := sort.SearchStrings(t.keys, key)
	if idx > 0 {
		return t.months[t.keys[idx-1]], true
	}
	// Requested month predates all history: fall back to the latest month.
	return t.months[t.keys[len(t.keys)-1]], true
}

// MonthKey derives the "YYYY-MM" table key from an ISO date string.
func MonthKey(date string) (string, bool) {
	parsed, ok := domain.ParseISO(date)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d", parsed.Year(), int(parsed.Month())), true
}

// DefaultTable returns the reference rate table covering 2025-01 through
// 2025-09 for USD, GBP and AUD against the EUR pivot.
func DefaultTable() *Table {
	return NewTable(map[string]map[Code]float64{
		"2025-01": {"USD": 1.09, "GBP": 0.84, "AUD": 1.62},
		"2025-02": {"USD": 1.08, "GBP": 0.83, "AUD": 1.63},
		"2025-03": {"USD": 1.09, "GBP": 0.84, "AUD": 1.64},
		"2025-04": {"USD": 1.10, "GBP": 0.85, "AUD": 1.66},
		"2025-05": {"USD": 1.11, "GBP": 0.85, "AUD": 1.68},
		"2025-06": {"USD": 1.12, "GBP": 0.85, "AUD": 1.69},
		"2025-07": {"USD": 1.10, "GBP": 0.86, "AUD": 1.67},
		"2025-08": {"USD": 1.09, "GBP": 0.86, "AUD": 1.66},
		"2025-09": {"USD": 1.08, "GBP": 0.87, "AUD": 1.65},
	})
}
