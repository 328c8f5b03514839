// Package exchangerate provides currency exchange rate fetching and caching functionality.
package exchangerate

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aristath/stagehand/internal/clientdata"
	"github.com/rs/zerolog"
)

// Client fetches EUR-base rate snapshots from a frankfurter-compatible API.
type Client struct {
	baseURL   string
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *clientdata.Repository
	now       func() time.Time
}

// NewClient creates a new exchange rate client.
// cacheRepo is optional - if nil, caching is disabled.
func NewClient(baseURL string, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.frankfurter.app"
	}
	return &Client{
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		log:       log.With().Str("client", "exchangerate").Logger(),
		cacheRepo: cacheRepo,
		now:       time.Now,
	}
}

// GetMonthRates fetches the EUR-base rate snapshot for a month ("2025-08").
// Closed months are served from cache almost always; the current month is
// refreshed hourly. If the API fails, stale cached data is returned when
// available (stale data > no data).
func (c *Client) GetMonthRates(month string) (map[string]float64, error) {
	if _, err := time.Parse("2006-01", month); err != nil {
		return nil, fmt.Errorf("invalid month %q: %w", month, err)
	}

	// Check persistent cache for fresh data
	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh("monthly_rates", month)
		if err == nil && data != nil {
			var cached map[string]float64
			if err := json.Unmarshal(data, &cached); err == nil {
				c.log.Debug().Str("month", month).Msg("Cache hit")
				return cached, nil
			}
		}
	}

	url := fmt.Sprintf("%s/%s?from=EUR", c.baseURL, c.datePathFor(month))
	c.log.Debug().Str("url", url).Msg("Fetching rates")

	resp, err := c.client.Get(url)
	if err != nil {
		if stale, ok := c.getStaleFromCache(month); ok {
			c.log.Warn().Err(err).Str("month", month).Msg("API failed, using stale cached rates")
			return stale, nil
		}
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if stale, ok := c.getStaleFromCache(month); ok {
			c.log.Warn().Int("status", resp.StatusCode).Str("month", month).Msg("API error, using stale cached rates")
			return stale, nil
		}
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var result struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if stale, ok := c.getStaleFromCache(month); ok {
			c.log.Warn().Err(err).Str("month", month).Msg("Failed to parse API response, using stale cached rates")
			return stale, nil
		}
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(result.Rates) == 0 {
		if stale, ok := c.getStaleFromCache(month); ok {
			c.log.Warn().Str("month", month).Msg("Empty rate set in API response, using stale cached rates")
			return stale, nil
		}
		return nil, fmt.Errorf("no rates in response for %s", month)
	}

	// Cache persistently; the current month gets a short TTL so the
	// hourly sync keeps it moving.
	if c.cacheRepo != nil {
		ttl := clientdata.TTLMonthlyRates
		if month == c.now().UTC().Format("2006-01") {
			ttl = clientdata.TTLExchangeRate
		}
		if err := c.cacheRepo.Store("monthly_rates", month, result.Rates, ttl); err != nil {
			c.log.Warn().Err(err).Str("month", month).Msg("Failed to cache rates")
		}
	}

	c.log.Info().
		Str("month", month).
		Int("currencies", len(result.Rates)).
		Msg("Fetched rates")

	return result.Rates, nil
}

// GetCurrentRates fetches the snapshot for the current month.
func (c *Client) GetCurrentRates() (string, map[string]float64, error) {
	month := c.now().UTC().Format("2006-01")
	rates, err := c.GetMonthRates(month)
	return month, rates, err
}

// datePathFor maps a month to the API date path: past months pin to the
// first of the month, the current month uses the rolling latest rate.
func (c *Client) datePathFor(month string) string {
	if month == c.now().UTC().Format("2006-01") {
		return "latest"
	}
	return month + "-01"
}

// getStaleFromCache retrieves cached rates even if expired.
func (c *Client) getStaleFromCache(month string) (map[string]float64, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}

	data, err := c.cacheRepo.Get("monthly_rates", month)
	if err != nil || data == nil {
		return nil, false
	}

	var cached map[string]float64
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false
	}

	return cached, true
}
