package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tuvarna/devicebackend/internal/server/models"
	"github.com/tuvarna/devicebackend/internal/server/services"
)

func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req userRegisterRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	user, err := s.users.Register(r.Context(), services.UserRegisterAttrs{
		FullName:     req.FullName,
		Password:     req.Password,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		SerialNumber: req.SerialNumber,
		PurchaseDate: req.PurchaseDate.Time,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	token, user, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, loginResponse{Token: token, User: toUserResponse(user)})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	user, err := s.users.GetUserByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleGetUserByUsername(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := s.users.GetUserByUsername(r.Context(), username)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)

	result, err := s.users.GetUsers(r.Context(), searchTermParam(r), page, size)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, mapPage(result, func(u *models.User) *userResponse {
		return toUserResponse(u)
	}))
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	var req userUpdateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	user, err := s.users.UpdateUser(r.Context(), id, services.UserUpdateAttrs{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	var req passwordUpdateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	if err := s.users.UpdatePassword(r.Context(), id, req.OldPassword, req.NewPassword); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusNoContent, nil)
}
