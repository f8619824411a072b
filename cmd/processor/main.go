// Command processor consumes discovered events from the three enrichment
// queues, runs them through the five-stage pipeline, and republishes scored
// events on the processing exchange.
package main

import (
	"context"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-redis/redis/v8"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/r3e-network/discovery-pipeline/internal/config"
	"github.com/r3e-network/discovery-pipeline/internal/httpserver"
	"github.com/r3e-network/discovery-pipeline/internal/logging"
	"github.com/r3e-network/discovery-pipeline/pkg/cloudevent"
	"github.com/r3e-network/discovery-pipeline/pkg/processor"
	"github.com/r3e-network/discovery-pipeline/pkg/version"
)

const serviceName = "processor"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.New("PROCESSOR")
	logger := logging.NewFromEnv(serviceName)

	amqpURL := cfg.Require("AMQP_URL")

	publisher, err := cloudevent.NewPublisher(amqpURL, cloudevent.ExchangeProcessing)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect publisher to event mesh")
	}
	defer publisher.Close()

	// Binding declarations for the enrichment queues belong to the discovery
	// exchange, not the processing exchange this process publishes scored
	// events on — use a short-lived Publisher against that exchange purely
	// to declare them.
	discoveryBindings, err := cloudevent.NewPublisher(amqpURL, cloudevent.ExchangeDiscovery)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect for enrichment binding declarations")
	}
	enrichmentQueues := []string{
		cloudevent.QueueEnrichServer,
		cloudevent.QueueEnrichRepository,
		cloudevent.QueueEnrichDatabase,
	}
	for _, q := range enrichmentQueues {
		if err := discoveryBindings.DeclareQueueBinding(q, "discovered.*"); err != nil {
			logger.WithError(err).WithField("queue", q).Fatal("failed to declare enrichment binding")
		}
	}
	discoveryBindings.Close()

	correlation := processor.NewMemoryStore()
	if redisAddr := cfg.String("REDIS_ADDR", ""); redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
		correlation = processor.NewRedisSeededStore(rdb)
	}

	pipeline := processor.NewPipeline(correlation, publisher)

	handler := func(ctx context.Context, env cloudevent.Envelope, raw amqp.Delivery) error {
		return pipeline.Process(ctx, env)
	}

	queues := []string{
		cloudevent.QueueEnrichServer,
		cloudevent.QueueEnrichRepository,
		cloudevent.QueueEnrichDatabase,
	}

	prefetch := cfg.Int("PREFETCH", 10)

	var wg sync.WaitGroup
	for _, queue := range queues {
		consumer, err := cloudevent.NewConsumer(amqpURL, queue, prefetch, handler)
		if err != nil {
			logger.WithError(err).WithField("queue", queue).Fatal("failed to start consumer")
		}
		defer consumer.Close()

		wg.Add(1)
		go func(q string, c *cloudevent.Consumer) {
			defer wg.Done()
			if err := c.Run(ctx); err != nil {
				logger.WithError(err).WithField("queue", q).Error("consumer exited with error")
			}
		}(queue, consumer)
	}

	health := httpserver.NewHealthChecker(version.Version)
	health.SetReady(true)
	router := httpserver.NewRouter(logger, health)

	go func() {
		if err := httpserver.Serve(ctx, cfg.Bind(), router, logger); err != nil {
			logger.WithError(err).Error("http server exited with error")
		}
	}()

	wg.Wait()
}
