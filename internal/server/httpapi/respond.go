package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tuvarna/devicebackend/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			s.logger.Error(context.Background(), "error encoding response", "error", err)
		}
	}
}

// writeError maps an error kind to an HTTP status. Service errors keep their
// caller-facing message; anything else is collapsed into a generic answer and
// logged with full detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFromError(err)

	message := "Internal error"
	var svcErr *common.Error
	if errors.As(err, &svcErr) {
		message = svcErr.Error()
	}

	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	s.writeJSON(w, status, errorResponse{Error: message})
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, common.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrNotRegistered):
		return http.StatusNotFound
	case errors.Is(err, common.ErrInvalidSerialNumber):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON parses the request body into dst, answering 400 on malformed
// input. It reports whether decoding succeeded.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Malformed request body"})
		return false
	}
	return true
}
