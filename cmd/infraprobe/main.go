// Command infraprobe wraps the SSH probe harness (pkg/probe) behind the
// collector /analyze and /discover surface, bounding concurrent probes with
// a counting semaphore.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/r3e-network/discovery-pipeline/internal/config"
	"github.com/r3e-network/discovery-pipeline/internal/httpserver"
	"github.com/r3e-network/discovery-pipeline/internal/logging"
	"github.com/r3e-network/discovery-pipeline/internal/svcerrors"
	"github.com/r3e-network/discovery-pipeline/pkg/cloudevent"
	"github.com/r3e-network/discovery-pipeline/pkg/collector"
	"github.com/r3e-network/discovery-pipeline/pkg/credentials"
	"github.com/r3e-network/discovery-pipeline/pkg/probe"
	"github.com/r3e-network/discovery-pipeline/pkg/tracing"
	"github.com/r3e-network/discovery-pipeline/pkg/version"
)

const collectorName = "infra-probe"

const defaultConcurrency = 10

type target struct {
	Host       string
	Port       int
	Username   string
	Password   string
	PrivateKey string
	Passphrase string
}

func (t target) credentials() credentials.Credentials {
	if t.PrivateKey != "" {
		return credentials.NewKeyCredentials(t.Username, t.PrivateKey, t.Passphrase)
	}
	return credentials.NewPasswordCredentials(t.Username, t.Password)
}

type analyzer struct {
	cfg  probe.Config
	sema *collector.Semaphore
}

func (a *analyzer) Analyze(ctx context.Context, t target) ([]collector.Record, error) {
	a.sema.Acquire()
	defer a.sema.Release()

	result, err := probe.Probe(ctx, a.cfg, t.Host, t.Port, t.credentials())
	if err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"host":             t.Host,
		"hostname":         result.Hostname,
		"os_release":       result.OSRelease,
		"kernel_release":   result.KernelRelease,
		"architecture":     result.Architecture,
		"cpu_count":        result.CPUCount,
		"cpu_model":        result.CPUModel,
		"memory_gb":        result.MemoryGB,
		"disk_usage_root":  result.DiskUsageRoot,
		"virtualization":   result.Virtualization,
		"packages":         result.Packages,
		"running_services": result.RunningServices,
		"network_addrs":    result.NetworkAddrs,
		"routes":           result.Routes,
		"resolv_conf":      result.ResolvConf,
	}
	return []collector.Record{
		{Entity: "infrastructure", Data: data},
	}, nil
}

type discoverRequest struct {
	ScanID        string `json:"scan_id"`
	Targets       []target `json:"targets"`
	ProgressURL   string `json:"progress_url"`
	CompletionURL string `json:"completion_url"`
	APIKey        string `json:"api_key"`
	MaxTargets    int `json:"max_targets"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.New("INFRAPROBE")
	logger := logging.NewFromEnv(collectorName)

	var publisher *cloudevent.Publisher
	if amqpURL := cfg.String("AMQP_URL", ""); amqpURL != "" {
		p, err := cloudevent.NewPublisher(amqpURL, cloudevent.ExchangeDiscovery)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to event mesh")
		}
		defer p.Close()
		publisher = p
	}

	concurrency := cfg.Int("MAX_CONCURRENT_PROBES", defaultConcurrency)
	engine := &collector.Engine[target]{
		CollectorName: collectorName,
		Publisher:     publisher,
		Logger:        logger,
		Analyzer: &analyzer{
			cfg:  probe.DefaultConfig(),
			sema: collector.NewSemaphore(concurrency),
		},
		Tracer: tracing.NewGlobalTracer(collectorName),
	}

	health := httpserver.NewHealthChecker(version.Version)
	health.SetReady(true)
	router := httpserver.NewRouter(logger, health)

	router.Post("/api/v1/discover", func(w http.ResponseWriter, r *http.Request) {
		var req discoverRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpserver.WriteError(w, r, svcerrors.Validation("invalid request body"))
			return
		}

		scanReq := collector.ScanRequest{
			ScanID:        req.ScanID,
			ProgressURL:   req.ProgressURL,
			CompletionURL: req.CompletionURL,
			APIKey:        req.APIKey,
			Limits:        collector.Limits{MaxTargets: req.MaxTargets},
		}
		go engine.Run(context.Background(), scanReq, req.Targets)

		httpserver.WriteJSON(w, http.StatusAccepted, map[string]string{"scan_id": req.ScanID, "status": "accepted"})
	})

	router.Post("/api/v1/analyze", func(w http.ResponseWriter, r *http.Request) {
		var t target
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			httpserver.WriteError(w, r, svcerrors.Validation("invalid request body"))
			return
		}
		records, err := engine.Analyzer.Analyze(r.Context(), t)
		if err != nil {
			httpserver.WriteError(w, r, svcerrors.Internal("analysis failed", err))
			return
		}
		httpserver.WriteJSON(w, http.StatusOK, map[string]interface{}{"records": records})
	})

	if err := httpserver.Serve(ctx, cfg.Bind(), router, logger); err != nil {
		logger.WithError(err).Fatal("server exited with error")
	}
}
