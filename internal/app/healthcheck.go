package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/specialistvlad/evalgraph/internal/ctxlog"
)

// healthHandler reports liveness together with the number of the last
// finished round.
func (app *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctxlog.FromContext(app.ctx).Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK round=%d\n", app.lastRound.Load())
}

// readyHandler answers 503 until a round has finished with no binding
// waiting on a fetching input.
func (app *App) readyHandler(w http.ResponseWriter, r *http.Request) {
	round, fetching := app.lastRound.Load(), app.fetching.Load()
	switch {
	case round == 0:
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintln(w, "NOT READY no round finished")
	case fetching > 0:
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintf(w, "NOT READY round=%d fetching=%d\n", round, fetching)
	default:
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "READY round=%d\n", round)
	}
}

// healthCheckServer starts the probe server on the configured port. A
// non-positive port disables it.
func (app *App) healthCheckServer() {
	logger := ctxlog.FromContext(app.ctx)
	if app.config.HealthcheckPort <= 0 {
		logger.Debug("Health check server disabled.")
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", app.healthHandler)
	mux.HandleFunc("/ready", app.readyHandler)

	addr := fmt.Sprintf(":%d", app.config.HealthcheckPort)
	app.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return app.ctx },
	}

	go func() {
		logger.Info("🩺 Health check server starting", "address", addr, "routes", []string{"/health", "/ready"})
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Health check server failed", "error", err)
		}
	}()
}

func (app *App) closeHealthCheckServer() error {
	if app.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ctxlog.FromContext(app.ctx).Info("🩺 Shutting down health check server...")
	if err := app.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("health check server shutdown: %w", err)
	}
	return nil
}
