// Package domain contains the core business types for Stagehand.
// The domain layer is pure: no infrastructure dependencies, no I/O.
package domain

import (
	"math"
	"time"
)

// ShowStatus represents the pipeline state of a show.
// Unknown statuses are carried through unchanged but never scored.
type ShowStatus string

const (
	StatusConfirmed ShowStatus = "confirmed"
	StatusPending   ShowStatus = "pending"
	StatusOffer     ShowStatus = "offer"
)

// ActionKind identifies which rule family produced a HubAction.
type ActionKind string

const (
	KindRisk        ActionKind = "risk"
	KindUrgency     ActionKind = "urgency"
	KindOpportunity ActionKind = "opportunity"
	KindOffer       ActionKind = "offer"
	KindFinRisk     ActionKind = "finrisk"
)

// ImpactTier is the coarse high/med/low bucketing of an action's score.
type ImpactTier string

const (
	ImpactHigh ImpactTier = "high"
	ImpactMed  ImpactTier = "med"
	ImpactLow  ImpactTier = "low"
)

// Show is a scheduled tour date with a negotiated fee and pipeline status.
// Shows are owned by their store; the engine reads them and never mutates.
type Show struct {
	ID          string     `json:"id"`
	Date        string     `json:"date"` // ISO-8601
	City        string     `json:"city,omitempty"`
	Country     string     `json:"country,omitempty"`
	Fee         float64    `json:"fee"`
	FeeCurrency string     `json:"fee_currency,omitempty"` // Defaults to EUR when empty
	Status      ShowStatus `json:"status"`
}

// TravelItem is a booked travel segment. Only its date matters to the engine:
// travel within a day of a show counts as "travel arranged" for that show.
type TravelItem struct {
	ID    string `json:"id"`
	Date  string `json:"date"` // ISO-8601
	Title string `json:"title,omitempty"`
}

// HubAction is one ranked, actionable finding derived from a show.
// A single show may yield multiple actions from different rule families.
type HubAction struct {
	ID         string     `json:"id"`
	Kind       ActionKind `json:"kind"`
	Label      string     `json:"label"`
	Meta       string     `json:"meta"`
	Score      float64    `json:"score"`
	Date       string     `json:"date,omitempty"`
	DismissKey string     `json:"dismiss_key"`
	Amount     float64    `json:"amount"`
	Status     ShowStatus `json:"status"`
	City       string     `json:"city,omitempty"`
	Country    string     `json:"country,omitempty"`
	Impact     ImpactTier `json:"impact"`
}

// isoLayouts are the accepted date formats, tried in order.
// Covers both full timestamps and bare dates as they appear in show data.
var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseISO parses an ISO-8601 date string. Returns ok=false for empty or
// malformed input. Rules treat a false here as "this show does not fire",
// which mirrors the tolerate-and-exclude contract for bad dates.
func ParseISO(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DaysSince returns the rounded number of days from date to now.
// Positive when the date is in the past.
func DaysSince(now, date time.Time) int {
	return int(math.Round(now.Sub(date).Hours() / 24))
}

// DaysUntil returns the rounded number of days from now to date.
// Positive when the date is in the future.
func DaysUntil(now, date time.Time) int {
	return int(math.Round(date.Sub(now).Hours() / 24))
}
