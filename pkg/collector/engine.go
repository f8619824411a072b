// Package collector implements the autonomous scan lifecycle shared by every
// collector: enumerate targets, analyze each, publish discovered records,
// report progress and completion.
package collector

import (
	"context"
	"fmt"

	"github.com/r3e-network/discovery-pipeline/internal/logging"
	"github.com/r3e-network/discovery-pipeline/pkg/cloudevent"
	"github.com/r3e-network/discovery-pipeline/pkg/metrics"
	"github.com/r3e-network/discovery-pipeline/pkg/scancallback"
	"github.com/r3e-network/discovery-pipeline/pkg/tracing"
)

// Analyzer produces zero or more discovered records for one target. An error
// marks that target failed; the scan continues with the next target.
type Analyzer[Target any] interface {
	Analyze(ctx context.Context, target Target) (records []Record, err error)
}

// Record is one discovered item ready to publish, already tagged with its
// entity kind (e.g. "server", "repository") for routing-key resolution.
type Record struct {
	Entity string
	Data map[string]interface{}
}

// Limits bounds a scan's safety limits.
type Limits struct {
	MaxTargets int
}

// ScanRequest describes one autonomous /discover invocation.
type ScanRequest struct {
	ScanID        string
	ProgressURL   string
	CompletionURL string
	APIKey        string
	Limits        Limits
}

// Engine drives the enumerate/analyze/publish/report loop for one collector.
type Engine[Target any] struct {
	CollectorName string
	Publisher *cloudevent.Publisher
	Logger *logging.Logger
	Analyzer Analyzer[Target]
	Tracer *tracing.Tracer
}

// Run executes one autonomous scan to completion. It never returns an error
// for partial target failures — those are folded into the completion
// status — only for conditions that prevent the scan from starting at all
// (e.g. enumeration failure).
func (e *Engine[Target]) Run(ctx context.Context, req ScanRequest, targets []Target) {
	ctx, endSpan := e.Tracer.StartSpan(ctx, "collector.scan", map[string]string{
		"collector": e.CollectorName,
		"scan_id":   req.ScanID,
	})
	defer func() { endSpan(nil) }()

	cb := scancallback.New(req.ScanID, e.CollectorName, req.ProgressURL, req.CompletionURL, req.APIKey, e.Logger)

	if req.Limits.MaxTargets > 0 && len(targets) > req.Limits.MaxTargets {
		targets = targets[:req.Limits.MaxTargets]
	}

	total := len(targets)
	cb.ReportProgress(ctx, "initializing", 0, fmt.Sprintf("enumerated %d targets", total))

	failed := 0
	for i, target := range targets {
		percent := (i + 1) * 100 / max(total, 1)
		cb.ReportProgress(ctx, "scanning", percent, fmt.Sprintf("analyzing target %d/%d", i+1, total))

		targetCtx, endTargetSpan := e.Tracer.StartSpan(ctx, "collector.analyze_target", map[string]string{
			"collector": e.CollectorName,
		})
		records, err := e.Analyzer.Analyze(targetCtx, target)
		endTargetSpan(err)
		if err != nil {
			failed++
			metrics.TargetsAnalyzed.WithLabelValues(e.CollectorName, "failed").Inc()
			e.Logger.WithContext(ctx).WithError(err).WithField("target_index", i).
				Warn("collector: target analysis failed, continuing scan")
			continue
		}
		metrics.TargetsAnalyzed.WithLabelValues(e.CollectorName, "ok").Inc()

		for _, rec := range records {
			routingKey, eventType := cloudevent.DiscoveredRoutingKey(rec.Entity)
			env := cloudevent.New(cloudevent.CollectorSource(e.CollectorName), eventType, req.ScanID, rec.Data)
			if e.Publisher != nil {
				if pubErr := e.Publisher.Publish(ctx, routingKey, env); pubErr != nil {
					e.Logger.WithContext(ctx).WithError(pubErr).Warn("collector: publish failed")
					continue
				}
			}
			metrics.EventsPublished.WithLabelValues(routingKey).Inc()
			cb.IncrementDiscoveryCount(1)
		}
	}

	status, errMessage := completionStatus(failed, total)
	metrics.ScansCompleted.WithLabelValues(e.CollectorName, status).Inc()
	cb.ReportComplete(ctx, status, errMessage)
}

// completionStatus derives the terminal scan status.
func completionStatus(failed, total int) (status, errMessage string) {
	switch {
	case total == 0 || failed == 0:
		return scancallback.StatusCompleted, ""
	case failed == total:
		return scancallback.StatusFailed, fmt.Sprintf("%d/%d targets failed analysis", failed, total)
	default:
		return scancallback.StatusPartial, fmt.Sprintf("%d/%d targets failed analysis", failed, total)
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
