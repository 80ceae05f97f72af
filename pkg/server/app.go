package server

import (
	"context"
	"errors"
	"io"

	"PriceCast/internal/usecase"
	xhttp "PriceCast/pkg/http"
	applogger "PriceCast/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	httpServer *xhttp.Server
	warmer     *usecase.Warmer
	forecasts  io.Closer
	cache      io.Closer
	l          *applogger.Logger
	warmOnRun  bool
}

// New creates a new App instance with all dependencies. warmer may be nil.
func New(
	httpServer *xhttp.Server,
	warmer *usecase.Warmer,
	forecasts io.Closer,
	cache io.Closer,
	l *applogger.Logger,
	warmOnRun bool,
) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{
		httpServer: httpServer,
		warmer:     warmer,
		forecasts:  forecasts,
		cache:      cache,
		l:          l,
		warmOnRun:  warmOnRun,
	}
}

// Run starts the HTTP server and the cache warmer, then blocks until ctx is
// done or the server fails. Shutdown runs in both cases.
func (a *App) Run(ctx context.Context) error {
	errCh := a.httpServer.Start()

	if a.warmer != nil {
		a.warmer.Start()
		if a.warmOnRun {
			go func() {
				n := a.warmer.RunOnce(ctx)
				a.l.Info("initial history warm finished", applogger.Int("refreshed", n))
			}()
		}
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.l.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			a.l.Error("http server error", applogger.Error(err))
			runErr = err
		}
	}

	return errors.Join(runErr, a.shutdown())
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	a.l.Info("shutting down...")

	if a.warmer != nil {
		a.warmer.Stop()
	}

	var errs []error
	if err := a.httpServer.Stop(context.Background()); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
		errs = append(errs, err)
	}

	// Sinks drain only after the server stops accepting forecasts.
	if a.forecasts != nil {
		if err := a.forecasts.Close(); err != nil {
			a.l.Warn("forecast sinks close error", applogger.Error(err))
			errs = append(errs, err)
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.l.Warn("cache close error", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	a.l.Info("shutdown complete")
	return errors.Join(errs...)
}
