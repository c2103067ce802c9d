package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tuvarna/devicebackend/internal/server/models"
	"github.com/tuvarna/devicebackend/internal/server/services"
)

func (s *Server) handleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	var req deviceCreateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	ownerID := req.UserID
	if ownerID == 0 {
		// no explicit owner in the request: register to the caller
		if id, ok := userIDFromContext(r.Context()); ok {
			ownerID = id
		}
	}

	device, err := s.devices.RegisterNewDevice(r.Context(), req.SerialNumber, req.PurchaseDate.Time, ownerID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toDeviceResponse(device))
}

func (s *Server) handleAddAnonymousDevice(w http.ResponseWriter, r *http.Request) {
	var req anonymousDeviceRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	device, err := s.devices.AddAnonymousDevice(r.Context(), req.SerialNumber, req.PurchaseDate.Time)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toDeviceResponse(device))
}

func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	serialNumber := chi.URLParam(r, "serialNumber")

	device, err := s.devices.FindDevice(r.Context(), serialNumber)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if device == nil {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "Device not found"})
		return
	}
	s.writeJSON(w, http.StatusOK, toDeviceResponse(device))
}

func (s *Server) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	serialNumber := chi.URLParam(r, "serialNumber")

	var req deviceUpdateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	device, err := s.devices.UpdateDevice(r.Context(), serialNumber, services.DeviceUpdateAttrs{
		PurchaseDate: req.PurchaseDate.Time,
		Comment:      req.Comment,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toDeviceResponse(device))
}

func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	serialNumber := chi.URLParam(r, "serialNumber")

	if err := s.devices.DeleteDevice(r.Context(), serialNumber); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)

	result, err := s.devices.GetDevices(r.Context(), searchTermParam(r), page, size)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, mapPage(result, func(d *models.Device) *deviceResponse {
		return toDeviceResponse(d)
	}))
}

func (s *Server) handleInvoiceUploadURL(w http.ResponseWriter, r *http.Request) {
	serialNumber := chi.URLParam(r, "serialNumber")

	key, url, err := s.attachments.GetInvoiceUploadURL(r.Context(), serialNumber)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, uploadURLResponse{Key: key, URL: url})
}

func (s *Server) handleInvoiceDownloadURL(w http.ResponseWriter, r *http.Request) {
	serialNumber := chi.URLParam(r, "serialNumber")
	key := r.URL.Query().Get("key")

	url, err := s.attachments.GetInvoiceDownloadURL(r.Context(), serialNumber, key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, downloadURLResponse{URL: url})
}
