package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/r3e-network/discovery-pipeline/internal/logging"
)

// NewRouter builds a chi.Router pre-wired with recovery, request logging,
// health/ready/metrics endpoints. Callers mount their own routes under it.
func NewRouter(logger *logging.Logger, health *HealthChecker) chi.Router {
	r := chi.NewRouter()
	r.Use(Recovery(logger))
	r.Use(RequestLogging(logger))

	r.Get("/health", health.HealthHandler())
	r.Get("/ready", health.ReadyHandler())
	r.Get("/live", LivenessHandler())
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// Serve runs an http.Server on addr until ctx is cancelled, then shuts it
// down gracefully within 10s.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *logging.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithContext(ctx).WithField("addr", addr).Info("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
