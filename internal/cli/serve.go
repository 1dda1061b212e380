package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/sentinel/pkg/adapters/http"
)

// ShutdownTimeout bounds graceful shutdown of the HTTP server.
const ShutdownTimeout = 5 * time.Second

// StartSweeper schedules pruning of expired transcripts when the backend supports it.
// The returned stop func is never nil.
func StartSweeper(app *App) (func(), error) {
	if app.Storage.Pruner == nil || app.Settings.SweepSchedule == "" {
		return func() {}, nil
	}
	sw, err := NewSweeper(app.Settings.SweepSchedule, app.Storage.Pruner, app.Metrics, app.Logger)
	if err != nil {
		return nil, err
	}
	sw.Start()
	app.Logger.Debug("session sweeper started", "schedule", app.Settings.SweepSchedule)
	return sw.Stop, nil
}

// NewHTTPHandler builds the API handler for app.
func NewHTTPHandler(app *App) (http.Handler, error) {
	srv, err := httpAdapter.NewServer(app.Console,
		httpAdapter.WithLogger(app.Logger),
		httpAdapter.WithRateLimit(app.Settings.RateLimit, app.Settings.RateBurst),
		httpAdapter.WithMetrics(app.Registry),
	)
	if err != nil {
		return nil, err
	}
	return srv.Handler(), nil
}

// Serve runs the HTTP API on ln until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, app *App, ln net.Listener) error {
	handler, err := NewHTTPHandler(app)
	if err != nil {
		return err
	}
	stopSweeper, err := StartSweeper(app)
	if err != nil {
		return err
	}
	defer stopSweeper()

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Event streams end with ctx instead of holding up shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		app.Logger.Info("sentinel server listening", "addr", ln.Addr().String())
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		app.Logger.Info("shutting down server")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Warn("graceful shutdown did not complete", "timeout", ShutdownTimeout, "error", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		app.Logger.Info("server stopped gracefully")
		return nil
	}
}
