package server

import (
	"net/http"

	"github.com/aristath/stagehand/internal/currency"
)

// handleFinanceSummary totals all show fees in the requested base
// currency (EUR by default).
func (s *Server) handleFinanceSummary(w http.ResponseWriter, r *http.Request) {
	base := currency.Code(r.URL.Query().Get("base"))

	summary, err := s.finance.Summarize(base)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, summary)
}

// handleGetRates returns the live monthly rate table.
func (s *Server) handleGetRates(w http.ResponseWriter, r *http.Request) {
	table := s.rateProvider.Current()

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"base":         currency.BaseCurrency,
		"latest_month": table.LatestMonth(),
		"months":       table.Months(),
	})
}

// handleSyncRates triggers an immediate rate sync outside the cron
// schedule.
func (s *Server) handleSyncRates(w http.ResponseWriter, r *http.Request) {
	if s.rateSync == nil {
		s.writeError(w, http.StatusServiceUnavailable, "rate sync is disabled")
		return
	}

	if err := s.rateSync.Sync(); err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	table := s.rateProvider.Current()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "synced",
		"latest_month": table.LatestMonth(),
	})
}
