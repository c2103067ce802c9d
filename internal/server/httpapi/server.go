// Package httpapi exposes the device registry over a JSON REST API.
// Handlers translate between wire DTOs and the services; the error taxonomy
// maps onto HTTP status codes in one place (respond.go).
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tuvarna/devicebackend/internal/logging"
	"github.com/tuvarna/devicebackend/internal/server/models"
	"github.com/tuvarna/devicebackend/internal/server/paging"
	"github.com/tuvarna/devicebackend/internal/server/services"
)

// PassportService is the slice of the passport service the handlers consume.
type PassportService interface {
	Create(ctx context.Context, attrs services.PassportAttrs) (*models.Passport, error)
	Update(ctx context.Context, id int64, attrs services.PassportAttrs) (*models.Passport, error)
	FindPassportByID(ctx context.Context, id int64) (*models.Passport, error)
	FindPassportBySerialID(ctx context.Context, serialID string) (*models.Passport, error)
	GetPassportsBySerialPrefix(ctx context.Context, serialID string) ([]*models.Passport, error)
	GetPassports(ctx context.Context, page, size int) (*paging.Page[*models.Passport], error)
	Delete(ctx context.Context, id int64) error
}

// DeviceService is the slice of the device service the handlers consume.
type DeviceService interface {
	RegisterNewDevice(ctx context.Context, serialNumber string, purchaseDate time.Time, ownerID int64) (*models.Device, error)
	AddAnonymousDevice(ctx context.Context, serialNumber string, purchaseDate time.Time) (*models.Device, error)
	FindDevice(ctx context.Context, serialNumber string) (*models.Device, error)
	UpdateDevice(ctx context.Context, serialNumber string, attrs services.DeviceUpdateAttrs) (*models.Device, error)
	DeleteDevice(ctx context.Context, serialNumber string) error
	GetDevices(ctx context.Context, searchTerm *string, page, size int) (*paging.Page[*models.Device], error)
}

// RenovationService is the slice of the renovation service the handlers consume.
type RenovationService interface {
	Save(ctx context.Context, serialNumber string, description *string, renovationDate *time.Time) (*models.Renovation, error)
	ListForDevice(ctx context.Context, serialNumber string) ([]*models.Renovation, error)
	Delete(ctx context.Context, id string) error
}

// UserService is the slice of the user service the handlers consume.
type UserService interface {
	Register(ctx context.Context, attrs services.UserRegisterAttrs) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, *models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUsers(ctx context.Context, searchTerm *string, page, size int) (*paging.Page[*models.User], error)
	UpdateUser(ctx context.Context, id int64, attrs services.UserUpdateAttrs) (*models.User, error)
	UpdatePassword(ctx context.Context, id int64, oldPassword, newPassword string) error
}

// AttachmentService is the slice of the attachment service the handlers consume.
type AttachmentService interface {
	GetInvoiceUploadURL(ctx context.Context, serialNumber string) (string, string, error)
	GetInvoiceDownloadURL(ctx context.Context, serialNumber string, key string) (string, error)
}

// Server holds the HTTP transport state and the services it fronts.
type Server struct {
	addr        string
	logger      logging.Logger
	secret      []byte
	passports   PassportService
	devices     DeviceService
	renovations RenovationService
	users       UserService
	attachments AttachmentService
}

// NewServer constructs the HTTP transport.
func NewServer(
	addr string,
	logger logging.Logger,
	secret []byte,
	passports PassportService,
	devices DeviceService,
	renovations RenovationService,
	users UserService,
	attachments AttachmentService,
) *Server {
	return &Server{
		addr:        addr,
		logger:      logger,
		secret:      secret,
		passports:   passports,
		devices:     devices,
		renovations: renovations,
		users:       users,
		attachments: attachments,
	}
}

// Router wires the REST surface. Registration, login and anonymous device
// registration are public; everything else requires a bearer token.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Post("/api/users", s.handleRegisterUser)
	r.Post("/api/auth/login", s.handleLogin)
	r.Post("/api/devices/anonymous", s.handleAddAnonymousDevice)

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)

		r.Route("/api/passports", func(r chi.Router) {
			r.Post("/", s.handleCreatePassport)
			r.Get("/", s.handleListPassports)
			r.Get("/{id}", s.handleGetPassport)
			r.Put("/{id}", s.handleUpdatePassport)
			r.Delete("/{id}", s.handleDeletePassport)
			r.Get("/by-serial/{serialID}", s.handleResolvePassport)
			r.Get("/by-prefix/{serialID}", s.handlePassportCandidates)
		})

		r.Route("/api/devices", func(r chi.Router) {
			r.Post("/", s.handleRegisterDevice)
			r.Get("/", s.handleListDevices)
			r.Get("/{serialNumber}", s.handleGetDevice)
			r.Put("/{serialNumber}", s.handleUpdateDevice)
			r.Delete("/{serialNumber}", s.handleDeleteDevice)
			r.Post("/{serialNumber}/renovations", s.handleSaveRenovation)
			r.Get("/{serialNumber}/renovations", s.handleListRenovations)
			r.Post("/{serialNumber}/invoice/upload-url", s.handleInvoiceUploadURL)
			r.Get("/{serialNumber}/invoice/download-url", s.handleInvoiceDownloadURL)
		})

		r.Delete("/api/renovations/{id}", s.handleDeleteRenovation)

		r.Route("/api/users", func(r chi.Router) {
			r.Get("/", s.handleListUsers)
			r.Get("/by-username/{username}", s.handleGetUserByUsername)
			r.Get("/{id}", s.handleGetUser)
			r.Put("/{id}", s.handleUpdateUser)
			r.Put("/{id}/password", s.handleUpdatePassword)
		})
	})

	return r
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info(ctx, "HTTP server listening", "addr", s.addr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
