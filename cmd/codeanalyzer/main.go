// Command codeanalyzer walks configured scan paths and emits repository,
// codebase, and dependency discovery records. File-language detection and
// manifest parsing are shallow by design: LanguageDetector and
// ManifestParser are pluggable collaborators with a minimal built-in table,
// not deep implementations.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/r3e-network/discovery-pipeline/internal/config"
	"github.com/r3e-network/discovery-pipeline/internal/httpserver"
	"github.com/r3e-network/discovery-pipeline/internal/logging"
	"github.com/r3e-network/discovery-pipeline/internal/svcerrors"
	"github.com/r3e-network/discovery-pipeline/pkg/cloudevent"
	"github.com/r3e-network/discovery-pipeline/pkg/collector"
	"github.com/r3e-network/discovery-pipeline/pkg/tracing"
	"github.com/r3e-network/discovery-pipeline/pkg/version"
)

const collectorName = "code-analyzer"

// LanguageDetector maps a file extension to a language name.
type LanguageDetector interface {
	Detect(path string) (language string, ok bool)
}

// ManifestParser extracts declared dependency names from one manifest file.
type ManifestParser interface {
	Manifests() []string
	Parse(path string) ([]string, error)
}

type extensionDetector struct {
	byExt map[string]string
}

func defaultLanguageDetector() LanguageDetector {
	return extensionDetector{byExt: map[string]string{
		".go":   "go",
		".py":   "python",
		".js":   "javascript",
		".ts":   "typescript",
		".java": "java",
		".rb":   "ruby",
		".rs":   "rust",
		".php":  "php",
	}}
}

func (d extensionDetector) Detect(path string) (string, bool) {
	lang, ok := d.byExt[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}

type manifestParser struct{}

func defaultManifestParser() ManifestParser { return manifestParser{} }

func (manifestParser) Manifests() []string {
	return []string{"go.mod", "package.json", "requirements.txt", "pom.xml", "Gemfile"}
}

// Parse returns declared dependency names. This is a minimal, best-effort
// line scan; it does not resolve version constraints or transitive
// dependencies.
func (manifestParser) Parse(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var deps []string
	base := filepath.Base(path)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch base {
		case "go.mod":
			if strings.HasPrefix(line, "\t") || (strings.Contains(line, "/") && !strings.HasPrefix(line, "module") && !strings.HasPrefix(line, "go ")) {
				fields := strings.Fields(line)
				if len(fields) > 0 {
					deps = append(deps, fields[0])
				}
			}
		case "requirements.txt":
			name := strings.FieldsFunc(line, func(r rune) bool { return r == '=' || r == '<' || r == '>' })[0]
			deps = append(deps, strings.TrimSpace(name))
		}
	}
	return deps, nil
}

// repoTarget is one root directory to walk for a codebase.
type repoTarget struct {
	Path string
}

type analyzer struct {
	detector LanguageDetector
	parser   ManifestParser
}

func (a *analyzer) Analyze(ctx context.Context, t repoTarget) ([]collector.Record, error) {
	languages := map[string]int{}
	var manifests []string

	err := filepath.WalkDir(t.Path, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && d.Name() != "." {
				return filepath.SkipDir
			}
			return nil
		}
		if lang, ok := a.detector.Detect(path); ok {
			languages[lang]++
		}
		for _, m := range a.parser.Manifests() {
			if d.Name() == m {
				manifests = append(manifests, path)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	records := []collector.Record{
		{Entity: "repository", Data: map[string]interface{}{
			"path": t.Path,
			"name": filepath.Base(t.Path),
		}},
		{Entity: "codebase", Data: map[string]interface{}{
			"path":      t.Path,
			"languages": languages,
		}},
	}

	for _, m := range manifests {
		deps, parseErr := a.parser.Parse(m)
		if parseErr != nil {
			continue
		}
		for _, dep := range deps {
			records = append(records, collector.Record{Entity: "dependency", Data: map[string]interface{}{
				"repository_path": t.Path,
				"manifest":        m,
				"name":            dep,
			}})
		}
	}

	return records, nil
}

type discoverRequest struct {
	ScanID        string `json:"scan_id"`
	ScanPaths     []string `json:"scan_paths"`
	ProgressURL   string `json:"progress_url"`
	CompletionURL string `json:"completion_url"`
	APIKey        string `json:"api_key"`
	MaxTargets    int `json:"max_targets"`
}

type dryRunTarget struct {
	RepoName string `json:"repo_name"`
}

type dryRunRequest struct {
	SessionID string `json:"session_id"`
	Targets   []dryRunTarget `json:"targets"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.New("CODEANALYZER")
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

	engine := &collector.Engine[repoTarget]{
		CollectorName: collectorName,
		Publisher:     publisher,
		Logger:        logger,
		Analyzer:      &analyzer{detector: defaultLanguageDetector(), parser: defaultManifestParser()},
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

		var targets []repoTarget
		for _, p := range req.ScanPaths {
			targets = append(targets, repoTarget{Path: p})
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
		var t repoTarget
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

	// dryRunRequest/handler is the endpoint the dry-run orchestrator invokes
	// non-blocking after bringing up labelled containers: analyze each
	// container's mounted repository path.
	router.Post("/api/v1/dryrun", func(w http.ResponseWriter, r *http.Request) {
		var req dryRunRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpserver.WriteError(w, r, svcerrors.Validation("invalid request body"))
			return
		}

		var targets []repoTarget
		for _, t := range req.Targets {
			targets = append(targets, repoTarget{Path: filepath.Join("/app", t.RepoName)})
		}

		scanReq := collector.ScanRequest{ScanID: req.SessionID}
		go engine.Run(context.Background(), scanReq, targets)

		httpserver.WriteJSON(w, http.StatusAccepted, map[string]string{"session_id": req.SessionID, "status": "accepted"})
	})

	if err := httpserver.Serve(ctx, cfg.Bind(), router, logger); err != nil {
		logger.WithError(err).Fatal("server exited with error")
	}
}
