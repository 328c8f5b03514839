package server

import (
	"encoding/json"
	"net/http"

	"github.com/aristath/stagehand/internal/domain"
	"github.com/go-chi/chi/v5"
)

// handleListShows returns all shows ordered by date.
func (s *Server) handleListShows(w http.ResponseWriter, r *http.Request) {
	var (
		list []domain.Show
		err  error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		list, err = s.showRepo.ListByStatus(domain.ShowStatus(status))
	} else {
		list, err = s.showRepo.List()
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"shows": list})
}

// handleGetShow returns a single show.
func (s *Server) handleGetShow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	show, err := s.showRepo.GetByID(id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if show == nil {
		s.writeError(w, http.StatusNotFound, "show not found")
		return
	}

	s.writeJSON(w, http.StatusOK, show)
}

// handlePutShow creates or updates a show. The id in the path wins over
// any id in the body.
func (s *Server) handlePutShow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var show domain.Show
	if err := json.NewDecoder(r.Body).Decode(&show); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid show payload")
		return
	}
	show.ID = id

	if err := s.showRepo.Upsert(show); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, show)
}

// handleDeleteShow removes a show.
func (s *Server) handleDeleteShow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.showRepo.Delete(id); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// handleListTravel returns all travel items ordered by date.
func (s *Server) handleListTravel(w http.ResponseWriter, r *http.Request) {
	list, err := s.travelRepo.List()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"travel": list})
}

// handlePutTravel creates or updates a travel item.
func (s *Server) handlePutTravel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var item domain.TravelItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid travel payload")
		return
	}
	item.ID = id

	if err := s.travelRepo.Upsert(item); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, item)
}

// handleDeleteTravel removes a travel item.
func (s *Server) handleDeleteTravel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.travelRepo.Delete(id); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}
