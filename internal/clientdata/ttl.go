package clientdata

import "time"

// TTL constants for different data types.
// These are added to time.Now() when storing to calculate expires_at.
const (
	// Current exchange rates move intraday; keep them short-lived.
	TTLExchangeRate = time.Hour

	// Closed months never change again, and the current month only moves
	// on the hourly sync, so monthly snapshots can live long.
	TTLMonthlyRates = 14 * 24 * time.Hour
)
