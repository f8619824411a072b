// Command networkscanner probes configured hosts/ports for open TCP
// services and banner strings, emitting server/service discovery records.
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
	"github.com/r3e-network/discovery-pipeline/pkg/tracing"
	"github.com/r3e-network/discovery-pipeline/pkg/version"
)

const collectorName = "network-scanner"

// target is one host:port pair to probe.
type target struct {
	Host string
	Port int
}

// wellKnownDBPorts flags a database candidate at 0.5 "port only" confidence;
// the processor's stage 1 raises this to 0.85 once it sees a confirming
// banner.
var wellKnownDBPorts = map[int]string{
	3306:  "mysql",
	5432:  "postgresql",
	27017: "mongodb",
	6379:  "redis",
	1433:  "mssql",
	1521:  "oracle",
	5984:  "couchdb",
	9042:  "cassandra",
	9200:  "elastic",
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
	defer conn.Close()

	banner := readBanner(conn)

	metadata := map[string]interface{}{"banner": banner}
	if dbType, ok := wellKnownDBPorts[t.Port]; ok {
		metadata["database_candidate"] = true
		metadata["candidate_type"] = dbType
		metadata["candidate_confidence"] = 0.5
	}

	data := map[string]interface{}{
		"host":     t.Host,
		"port":     t.Port,
		"metadata": metadata,
	}
	return []collector.Record{
		{Entity: "server", Data: data},
	}, nil
}

// readBanner reads whatever a service sends unprompted within a short
// window; many services (databases, mail, ssh) greet on connect.
func readBanner(conn net.Conn) string {
	_ = conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	buf := make([]byte, 256)
	n, err := conn.Read(buf)
	if err != nil || n == 0 {
		return ""
	}
	return string(buf[:n])
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

func targetsFrom(req discoverRequest) []target {
	var targets []target
	for _, h := range req.Hosts {
		for _, p := range req.Ports {
			targets = append(targets, target{Host: h, Port: p})
		}
	}
	return targets
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.New("NETWORKSCANNER")
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

		scanReq := collector.ScanRequest{
			ScanID:        req.ScanID,
			ProgressURL:   req.ProgressURL,
			CompletionURL: req.CompletionURL,
			APIKey:        req.APIKey,
			Limits:        collector.Limits{MaxTargets: req.MaxTargets},
		}
		go engine.Run(context.Background(), scanReq, targetsFrom(req))

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
