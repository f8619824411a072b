package dryrun

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/r3e-network/discovery-pipeline/internal/logging"
)

// Config bounds the orchestrator's filesystem and network surface.
type Config struct {
	NetworkName           string
	SamplesPath            string
	CodeAnalyzerDryRunURL  string
}

// Orchestrator owns the session-scoped container lifecycle.
type Orchestrator struct {
	cfg    Config
	docker *DockerClient
	logger *logging.Logger

	httpClient *http.Client
}

func New(cfg Config, docker *DockerClient, logger *logging.Logger) *Orchestrator {
	return &Orchestrator{cfg: cfg, docker: docker, logger: logger, httpClient: &http.Client{Timeout: 10 * time.Second}}
}

// ContainerStatus is returned by the containers-listing endpoint.
type ContainerStatus struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	RepoName string `json:"repo_name"`
	State    string `json:"state"`
}

// StartResult is returned by Start.
type StartResult struct {
	SessionID  string            `json:"session_id"`
	Containers []ContainerStatus `json:"containers"`
}

// Start validates sessionID, ensures the shared network, enumerates sample
// repositories, and runs one labelled container per repository. Once
// containers are up it triggers the code analyzer's dry-run endpoint; that
// call is non-blocking with respect to the session response (failures are
// logged, not surfaced as a session-creation error).
func (o *Orchestrator) Start(ctx context.Context, sessionID string) (StartResult, error) {
	if err := ValidateSessionID(sessionID); err != nil {
		return StartResult{}, err
	}

	if _, err := o.docker.EnsureNetwork(ctx, o.cfg.NetworkName); err != nil {
		return StartResult{}, err
	}

	repos, err := EnumerateRepos(o.cfg.SamplesPath)
	if err != nil {
		return StartResult{}, err
	}

	result := StartResult{SessionID: sessionID}
	for _, repo := range repos {
		image := ImageForRepo(repo.Path)
		containerName := fmt.Sprintf("dryrun-%s-%s", sessionID, repo.Name)
		labels := sessionLabels(sessionID, repo.Name)

		id, runErr := o.docker.RunRepoContainer(ctx, o.cfg.NetworkName, image, containerName, repo.Path, repo.Name, labels)
		if runErr != nil {
			o.logger.WithContext(ctx).WithError(runErr).WithField("repo", repo.Name).Error("dryrun: failed to start container")
			continue
		}
		result.Containers = append(result.Containers, ContainerStatus{ID: id, Name: containerName, RepoName: repo.Name, State: "running"})
	}

	go o.triggerCodeAnalysis(context.Background(), sessionID, result.Containers)

	return result, nil
}

func (o *Orchestrator) triggerCodeAnalysis(ctx context.Context, sessionID string, containers []ContainerStatus) {
	if o.cfg.CodeAnalyzerDryRunURL == "" {
		return
	}
	body, err := json.Marshal(map[string]interface{}{
		"session_id": sessionID,
		"targets":    containers,
	})
	if err != nil {
		o.logger.WithContext(ctx).WithError(err).Warn("dryrun: failed to encode code-analyzer trigger")
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.CodeAnalyzerDryRunURL, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := o.httpClient.Do(req)
	if err != nil {
		o.logger.WithContext(ctx).WithError(err).Warn("dryrun: code-analyzer trigger failed")
		return
	}
	defer resp.Body.Close()
}

// CleanupResult is returned by Cleanup.
type CleanupResult struct {
	CleanedContainers int      `json:"cleaned_containers"`
	Failures          []string `json:"failures,omitempty"`
}

// Cleanup stops and removes every container labelled for sessionID. It is
// idempotent: a second call on an already-clean session returns
// cleaned_containers=0 with no error.
func (o *Orchestrator) Cleanup(ctx context.Context, sessionID string) (CleanupResult, error) {
	if err := ValidateSessionID(sessionID); err != nil {
		return CleanupResult{}, err
	}

	containers, err := o.docker.ContainersByLabel(ctx, sessionID)
	if err != nil {
		return CleanupResult{}, err
	}

	var result CleanupResult
	for _, c := range containers {
		if err := o.docker.StopAndRemove(ctx, c.ID); err != nil {
			result.Failures = append(result.Failures, fmt.Sprintf("%s: %v", c.ID, err))
			continue
		}
		result.CleanedContainers++
	}
	return result, nil
}

// Containers returns the status of every container labelled for sessionID.
func (o *Orchestrator) Containers(ctx context.Context, sessionID string) ([]ContainerStatus, error) {
	if err := ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	containers, err := o.docker.ContainersByLabel(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]ContainerStatus, 0, len(containers))
	for _, c := range containers {
		out = append(out, ContainerStatus{
			ID:       c.ID,
			Name:     trimLeadingSlash(firstOrEmpty(c.Names)),
			RepoName: c.Labels[LabelRepoName],
			State:    c.State,
		})
	}
	return out, nil
}

func firstOrEmpty(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

func trimLeadingSlash(s string) string {
	if len(s) > 0 && s[0] == '/' {
		return s[1:]
	}
	return s
}
