package client

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/MKhiriev/go-event-companion/internal/config"
	"github.com/MKhiriev/go-event-companion/internal/handler/debug"
	"github.com/MKhiriev/go-event-companion/internal/logger"
	"github.com/MKhiriev/go-event-companion/internal/service"
)

// App is the long-running client process: it keeps the local cache in sync in
// the background and exposes the debug HTTP surface while it runs.
type App struct {
	services *service.ClientServices
	cfg      *config.ClientConfig
	logger   *logger.Logger
}

func NewApp(services *service.ClientServices, cfg *config.ClientConfig, log *logger.Logger) (*App, error) {
	if services == nil || cfg == nil {
		return nil, errors.New("client app requires services and config")
	}

	return &App{services: services, cfg: cfg, logger: log}, nil
}

// Run starts the background sync machinery and blocks until SIGINT or
// SIGTERM. The startup sync is best-effort: a cold start without network
// still comes up and serves whatever the cache holds.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.services.Mirror.Start(ctx)
	defer a.services.Mirror.Stop()

	a.services.Engine.SetOnline(true)
	if result := a.services.Engine.TriggeredSync(ctx, "startup"); result.Skipped != "" {
		a.logger.Info().Str("skipped", result.Skipped).Msg("startup sync skipped")
	}

	a.services.Job.Start(ctx, a.cfg.Sync.Interval)
	defer a.services.Job.Stop()

	debugServer := a.startDebugServer()

	<-ctx.Done()
	a.logger.Info().Msg("shutdown signal received")

	if debugServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := debugServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn().Err(err).Msg("debug server shutdown")
		}
	}

	return nil
}

func (a *App) startDebugServer() *http.Server {
	if a.cfg.Debug.HTTPAddress == "" {
		return nil
	}

	handler := debug.NewHandler(a.services, a.logger)
	srv := &http.Server{
		Addr:    a.cfg.Debug.HTTPAddress,
		Handler: handler.Init(),
	}

	go func() {
		a.logger.Info().Str("address", srv.Addr).Msg("debug http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error().Err(err).Msg("debug http server stopped")
		}
	}()

	return srv
}
