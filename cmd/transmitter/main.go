// Command transmitter consumes approved events from the event mesh, batches
// them, and ships them to an external analytics destination.
package main

import (
	"context"
	"database/sql"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/r3e-network/discovery-pipeline/internal/config"
	"github.com/r3e-network/discovery-pipeline/internal/httpserver"
	"github.com/r3e-network/discovery-pipeline/internal/logging"
	"github.com/r3e-network/discovery-pipeline/pkg/cloudevent"
	"github.com/r3e-network/discovery-pipeline/pkg/transmitter"
	"github.com/r3e-network/discovery-pipeline/pkg/version"
)

const serviceName = "transmitter"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.New("TRANSMITTER")
	logger := logging.NewFromEnv(serviceName)

	db, err := sql.Open("postgres", cfg.Require("DATABASE_URL"))
	if err != nil {
		logger.WithError(err).Fatal("failed to open database connection")
	}
	defer db.Close()

	ledger := transmitter.NewLedger(db)
	if err := ledger.Bootstrap(ctx); err != nil {
		logger.WithError(err).Fatal("failed to bootstrap batch ledger schema")
	}

	destinationURL := cfg.Require("DESTINATION_URL")
	tcfg := transmitter.DefaultConfig(destinationURL)
	tcfg.BatchSize = cfg.Int("BATCH_SIZE", tcfg.BatchSize)
	tcfg.BatchInterval = cfg.Duration("BATCH_INTERVAL", tcfg.BatchInterval)
	if cfg.String("ENCODING", "raw") == "graph" {
		tcfg.Encoding = transmitter.EncodingGraph
	}

	queue := transmitter.NewQueue()
	egress := transmitter.NewEgressClient(cfg.String("DESTINATION_AUTH_TOKEN", ""))
	tx := transmitter.New(tcfg, queue, ledger, egress, logger)

	amqpURL := cfg.Require("AMQP_URL")
	bindings, err := cloudevent.NewPublisher(amqpURL, cloudevent.ExchangeDiscovery)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect for approved-queue binding declaration")
	}
	if err := bindings.DeclareQueueBinding(cloudevent.QueueTransmitter, "approved.*"); err != nil {
		logger.WithError(err).Fatal("failed to declare transmitter.approved binding")
	}
	bindings.Close()

	consumer, err := cloudevent.NewConsumer(amqpURL, cloudevent.QueueTransmitter, cfg.Int("PREFETCH", 20),
		func(ctx context.Context, env cloudevent.Envelope, raw amqp.Delivery) error {
			tx.Enqueue(env)
			return nil
		})
	if err != nil {
		logger.WithError(err).Fatal("failed to start approved-queue consumer")
	}
	defer consumer.Close()

	go tx.Run(ctx)
	go func() {
		if err := consumer.Run(ctx); err != nil {
			logger.WithError(err).Error("consumer exited with error")
		}
	}()

	health := httpserver.NewHealthChecker(version.Version)
	health.RegisterCheck("database", func() error { return db.PingContext(ctx) })

	// The transmitter builds its router directly rather than via
	// httpserver.NewRouter, since /ready here must surface circuit_breaker
	// state instead of the generic ready/not_ready body.
	router := chi.NewRouter()
	router.Use(httpserver.Recovery(logger))
	router.Use(httpserver.RequestLogging(logger))

	router.Get("/health", health.HealthHandler)
	router.Get("/live", httpserver.LivenessHandler)
	router.Handle("/metrics", promhttp.Handler())

	router.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if tx.BreakerState() == "open" {
			httpserver.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":          "not_ready",
				"circuit_breaker": "open",
			})
			return
		}
		httpserver.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	router.Get("/api/v1/stats", func(w http.ResponseWriter, r *http.Request) {
		stats, err := tx.Stats(r.Context())
		if err != nil {
			httpserver.WriteError(w, r, err)
			return
		}
		httpserver.WriteJSON(w, http.StatusOK, stats)
	})

	if err := httpserver.Serve(ctx, cfg.Bind(), router, logger); err != nil {
		logger.WithError(err).Fatal("server exited with error")
	}
}
