// Package scancallback implements the collector-to-approval-API progress and
// completion reporting protocol.
package scancallback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/r3e-network/discovery-pipeline/internal/logging"
)

// Status values accepted by report_complete.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusTimeout   = "timeout"
	StatusPartial   = "partial"
)

// Client reports scan progress and completion over HTTP. Transport errors
// are logged and swallowed — the scan must not abort on a callback failure.
type Client struct {
	ScanID        string
	Collector     string
	ProgressURL   string
	CompletionURL string
	APIKey        string

	httpClient *http.Client
	logger     *logging.Logger

	sequence       int64
	discoveryCount int64
}

func New(scanID, collector, progressURL, completionURL, apiKey string, logger *logging.Logger) *Client {
	return &Client{
		ScanID:        scanID,
		Collector:     collector,
		ProgressURL:   progressURL,
		CompletionURL: completionURL,
		APIKey:        apiKey,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		logger:        logger,
	}
}

type progressPayload struct {
	ScanID         string `json:"scan_id"`
	Collector      string `json:"collector"`
	Sequence       int64  `json:"sequence"`
	Phase          string `json:"phase"`
	Progress       int    `json:"progress"`
	DiscoveryCount int64  `json:"discovery_count"`
	Message        string `json:"message"`
	Timestamp      string `json:"timestamp"`
}

type completionPayload struct {
	ScanID         string `json:"scan_id"`
	Collector      string `json:"collector"`
	Status         string `json:"status"`
	DiscoveryCount int64  `json:"discovery_count"`
	ErrorMessage   string `json:"error_message,omitempty"`
	Timestamp      string `json:"timestamp"`
}

// IncrementDiscoveryCount advances the counter surfaced on subsequent
// progress messages.
func (c *Client) IncrementDiscoveryCount(n int64) {
	if n == 0 {
		n = 1
	}
	atomic.AddInt64(&c.discoveryCount, n)
}

// ReportProgress posts one progress record. Errors are logged, never
// returned.
func (c *Client) ReportProgress(ctx context.Context, phase string, percent int, message string) {
	seq := atomic.AddInt64(&c.sequence, 1)
	payload := progressPayload{
		ScanID:         c.ScanID,
		Collector:      c.Collector,
		Sequence:       seq,
		Phase:          phase,
		Progress:       percent,
		DiscoveryCount: atomic.LoadInt64(&c.discoveryCount),
		Message:        message,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}
	c.post(ctx, c.ProgressURL, payload)
}

// ReportComplete posts the terminal record for the scan.
func (c *Client) ReportComplete(ctx context.Context, status, errMessage string) {
	payload := completionPayload{
		ScanID:         c.ScanID,
		Collector:      c.Collector,
		Status:         status,
		DiscoveryCount: atomic.LoadInt64(&c.discoveryCount),
		ErrorMessage:   errMessage,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}
	c.post(ctx, c.CompletionURL, payload)
}

func (c *Client) post(ctx context.Context, url string, payload interface{}) {
	if url == "" {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		c.logger.WithContext(ctx).WithError(err).Warn("scancallback: marshal failed")
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		c.logger.WithContext(ctx).WithError(err).Warn("scancallback: build request failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("X-Internal-API-Key", c.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithContext(ctx).WithError(err).Warn("scancallback: post failed, continuing scan")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		c.logger.WithContext(ctx).WithField("status", resp.StatusCode).Warn(
			fmt.Sprintf("scancallback: non-2xx response from %s", url))
	}
}
