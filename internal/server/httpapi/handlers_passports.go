package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tuvarna/devicebackend/internal/server/models"
	"github.com/tuvarna/devicebackend/internal/server/services"
)

func passportAttrs(req passportRequest) services.PassportAttrs {
	return services.PassportAttrs{
		Name:             req.Name,
		Model:            req.Model,
		SerialPrefix:     req.SerialPrefix,
		FromSerialNumber: req.FromSerialNumber,
		ToSerialNumber:   req.ToSerialNumber,
		WarrantyMonths:   req.WarrantyMonths,
	}
}

func (s *Server) handleCreatePassport(w http.ResponseWriter, r *http.Request) {
	var req passportRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	passport, err := s.passports.Create(r.Context(), passportAttrs(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toPassportResponse(passport))
}

func (s *Server) handleUpdatePassport(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	var req passportRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	passport, err := s.passports.Update(r.Context(), id, passportAttrs(req))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toPassportResponse(passport))
}

func (s *Server) handleGetPassport(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	passport, err := s.passports.FindPassportByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if passport == nil {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "Passport not found"})
		return
	}
	s.writeJSON(w, http.StatusOK, toPassportResponse(passport))
}

func (s *Server) handleResolvePassport(w http.ResponseWriter, r *http.Request) {
	serialID := chi.URLParam(r, "serialID")

	passport, err := s.passports.FindPassportBySerialID(r.Context(), serialID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toPassportResponse(passport))
}

func (s *Server) handlePassportCandidates(w http.ResponseWriter, r *http.Request) {
	serialID := chi.URLParam(r, "serialID")

	passports, err := s.passports.GetPassportsBySerialPrefix(r.Context(), serialID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := make([]*passportResponse, 0, len(passports))
	for _, p := range passports {
		resp = append(resp, toPassportResponse(p))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListPassports(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)

	result, err := s.passports.GetPassports(r.Context(), page, size)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, mapPage(result, func(p *models.Passport) *passportResponse {
		return toPassportResponse(p)
	}))
}

func (s *Server) handleDeletePassport(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	if err := s.passports.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusNoContent, nil)
}

// pathID parses the {id} route parameter, answering 400 on garbage.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid id"})
		return 0, false
	}
	return id, true
}

// pageParams reads the 1-based page number and page size, with defaults.
func pageParams(r *http.Request) (int, int) {
	page := 1
	size := 10
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil && v > 0 {
		size = v
	}
	return page, size
}

// searchTermParam distinguishes an absent searchTerm (nil) from an empty one.
func searchTermParam(r *http.Request) *string {
	values, ok := r.URL.Query()["searchTerm"]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}
