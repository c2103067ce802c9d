package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleSaveRenovation(w http.ResponseWriter, r *http.Request) {
	serialNumber := chi.URLParam(r, "serialNumber")

	var req renovationRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	var renovationDate *time.Time
	if req.RenovationDate != nil {
		renovationDate = &req.RenovationDate.Time
	}

	renovation, err := s.renovations.Save(r.Context(), serialNumber, req.Description, renovationDate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toRenovationResponse(renovation))
}

func (s *Server) handleListRenovations(w http.ResponseWriter, r *http.Request) {
	serialNumber := chi.URLParam(r, "serialNumber")

	renovations, err := s.renovations.ListForDevice(r.Context(), serialNumber)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := make([]*renovationResponse, 0, len(renovations))
	for _, renovation := range renovations {
		resp = append(resp, toRenovationResponse(renovation))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteRenovation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.renovations.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusNoContent, nil)
}
