// Command dryrun drives the session-scoped container lifecycle: spin up
// labelled workload containers, trigger the code analyzer against them, and
// tear them down by label query.
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/r3e-network/discovery-pipeline/internal/config"
	"github.com/r3e-network/discovery-pipeline/internal/httpserver"
	"github.com/r3e-network/discovery-pipeline/internal/logging"
	"github.com/r3e-network/discovery-pipeline/pkg/dryrun"
	"github.com/r3e-network/discovery-pipeline/pkg/version"
)

const serviceName = "dryrun-orchestrator"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.New("DRYRUN")
	logger := logging.NewFromEnv(serviceName)

	dockerClient, err := dryrun.NewDockerClient()
	if err != nil {
		logger.WithError(err).Fatal("failed to create docker client")
	}
	defer dockerClient.Close()

	samplesPath := cfg.String("SAMPLES_PATH", "/var/lib/dryrun/samples")
	orchestrator := dryrun.New(dryrun.Config{
		NetworkName:           cfg.String("NETWORK_NAME", "dryrun_net"),
		SamplesPath:           samplesPath,
		CodeAnalyzerDryRunURL: cfg.String("CODE_ANALYZER_URL", ""),
	}, dockerClient, logger)

	health := httpserver.NewHealthChecker(version.Version)
	health.SetReady(true)
	router := httpserver.NewRouter(logger, health)

	router.Group(func(r chi.Router) {
		r.Use(httpserver.RequireAPIKey(cfg.String("API_KEY", "")))
		dryrun.NewHandlers(orchestrator).Mount(r)
	})

	// /api/repos and /api/status sit outside the API-key group since they
	// expose no session-mutating actions; rate limit them since no API key
	// gates abuse.
	router.Group(func(r chi.Router) {
		r.Use(httpserver.RateLimit(cfg.Float64("PUBLIC_RATE_LIMIT_RPS", 20), cfg.Int("PUBLIC_RATE_LIMIT_BURST", 40)))

		r.Get("/api/repos", func(w http.ResponseWriter, r *http.Request) {
			repos, err := dryrun.EnumerateRepos(samplesPath)
			if err != nil {
				httpserver.WriteError(w, r, err)
				return
			}
			httpserver.WriteJSON(w, http.StatusOK, map[string]interface{}{"repos": repos})
		})
		r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
			httpserver.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})

	if err := httpserver.Serve(ctx, cfg.Bind(), router, logger); err != nil {
		logger.WithError(err).Fatal("server exited with error")
	}
}
