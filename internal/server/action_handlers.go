package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/stagehand/internal/domain"
	"github.com/go-chi/chi/v5"
)

// actionsResponse is the payload for GET /api/actions.
type actionsResponse struct {
	RunID      string             `json:"run_id"`
	Strategy   string             `json:"strategy"`
	ComputedAt time.Time          `json:"computed_at"`
	Ms         float64            `json:"ms"`
	Total      int                `json:"total"`
	Suppressed int                `json:"suppressed"`
	Actions    []domain.HubAction `json:"actions"`
}

// handleGetActions returns the most recent ranked action list with
// dismissed and snoozed entries filtered out. When nothing has been
// computed yet it schedules a run; if that run is deferred, the client
// gets a 202 and retries.
func (s *Server) handleGetActions(w http.ResponseWriter, r *http.Request) {
	res := s.scheduler.Current()
	if res == nil {
		strategy, err := s.submitFromStores()
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		res = s.scheduler.Current()
		if res == nil {
			s.writeJSON(w, http.StatusAccepted, map[string]string{
				"status":   "computing",
				"strategy": string(strategy),
			})
			return
		}
	}

	active, err := s.prefsRepo.ActiveKeys(time.Now().UTC())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	visible := make([]domain.HubAction, 0, len(res.Actions))
	for _, action := range res.Actions {
		if active[action.DismissKey] {
			continue
		}
		visible = append(visible, action)
	}

	s.writeJSON(w, http.StatusOK, actionsResponse{
		RunID:      res.RunID,
		Strategy:   string(res.Strategy),
		ComputedAt: res.ComputedAt,
		Ms:         res.Ms,
		Total:      len(res.Actions),
		Suppressed: len(res.Actions) - len(visible),
		Actions:    visible,
	})
}

// handleRecomputeActions schedules a fresh computation over the stored
// shows and travel data.
func (s *Server) handleRecomputeActions(w http.ResponseWriter, r *http.Request) {
	strategy, err := s.submitFromStores()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusAccepted, map[string]string{
		"status":   "scheduled",
		"strategy": string(strategy),
	})
}

// submitFromStores loads the current shows and travel data and submits
// them to the scheduler.
func (s *Server) submitFromStores() (string, error) {
	showList, err := s.showRepo.List()
	if err != nil {
		return "", err
	}
	travelList, err := s.travelRepo.List()
	if err != nil {
		return "", err
	}

	strategy := s.scheduler.Submit(time.Now().UTC(), showList, travelList)
	return string(strategy), nil
}

// handleDismissAction permanently suppresses an action key.
func (s *Server) handleDismissAction(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		s.writeError(w, http.StatusBadRequest, "missing action key")
		return
	}

	if err := s.prefsRepo.Dismiss(key); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"status": "dismissed", "key": key})
}

// handleSnoozeAction suppresses an action key for a number of hours
// (default 24).
func (s *Server) handleSnoozeAction(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		s.writeError(w, http.StatusBadRequest, "missing action key")
		return
	}

	var body struct {
		Hours float64 `json:"hours"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	if body.Hours <= 0 {
		body.Hours = 24
	}

	until := time.Now().UTC().Add(time.Duration(body.Hours * float64(time.Hour)))
	if err := s.prefsRepo.Snooze(key, until); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "snoozed",
		"key":    key,
		"until":  until.Format(time.RFC3339),
	})
}

// handleListPrefs lists all stored suppressions.
func (s *Server) handleListPrefs(w http.ResponseWriter, r *http.Request) {
	list, err := s.prefsRepo.List()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"prefs": list})
}

// handleClearPref removes a suppression so the action can resurface.
func (s *Server) handleClearPref(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		s.writeError(w, http.StatusBadRequest, "missing action key")
		return
	}

	if err := s.prefsRepo.Clear(key); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"status": "cleared", "key": key})
}
