// Package server initializes and runs the device registry server.
// It opens the database, applies migrations, wires the services and starts
// the HTTP API with graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/tuvarna/devicebackend/internal/logging"
	"github.com/tuvarna/devicebackend/internal/server/config"
	"github.com/tuvarna/devicebackend/internal/server/httpapi"
	"github.com/tuvarna/devicebackend/internal/server/repositories/repomanager"
	"github.com/tuvarna/devicebackend/internal/server/services"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	passportService := services.NewPassportService(db, rm)
	deviceService := services.NewDeviceService(db, rm, passportService)
	renovationService := services.NewRenovationService(db, rm, deviceService)
	userService := services.NewUserService(db, rm, deviceService, cfg)
	attachmentService := services.NewAttachmentService(cfg, deviceService)

	server := httpapi.NewServer(
		cfg.EndpointAddr,
		logger,
		[]byte(cfg.SecretKey),
		passportService,
		deviceService,
		renovationService,
		userService,
		attachmentService,
	)

	return &App{config: cfg, logger: logger, db: db, server: server}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
