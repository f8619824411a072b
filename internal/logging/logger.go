// Package logging provides the structured logger shared by every service in
// the pipeline.
package logging

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ctxKey int

const (
	traceIDKey ctxKey = iota
	scanIDKey
)

// Logger wraps logrus with a fixed service tag and trace-ID propagation.
type Logger struct {
	*logrus.Logger
	service string
}

// New builds a Logger for service with the given level and format ("json" or
// "text").
func New(service, level, format string) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	if format == "text" {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	l.AddHook(newRedactionHook())

	return &Logger{Logger: l, service: service}
}

// NewFromEnv builds a Logger reading LOG_LEVEL/LOG_FORMAT, defaulting to
// info/json.
func NewFromEnv(service string) *Logger {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	format := os.Getenv("LOG_FORMAT")
	if format == "" {
		format = "json"
	}
	return New(service, level, format)
}

// WithTraceID returns a context carrying traceID.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceID extracts the trace ID from ctx, if any.
func TraceID(ctx context.Context) string {
	v, _ := ctx.Value(traceIDKey).(string)
	return v
}

// NewTraceID generates a fresh trace ID.
func NewTraceID() string {
	return uuid.NewString()
}

// WithScanID returns a context carrying scanID for log correlation.
func WithScanID(ctx context.Context, scanID string) context.Context {
	return context.WithValue(ctx, scanIDKey, scanID)
}

// ScanID extracts the scan ID from ctx, if any.
func ScanID(ctx context.Context) string {
	v, _ := ctx.Value(scanIDKey).(string)
	return v
}

// WithContext returns a logrus Entry carrying the service tag and any
// trace/scan IDs found on ctx.
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	entry := l.WithField("service", l.service)
	if tid := TraceID(ctx); tid != "" {
		entry = entry.WithField("trace_id", tid)
	}
	if sid := ScanID(ctx); sid != "" {
		entry = entry.WithField("scan_id", sid)
	}
	return entry
}

// LogRequest logs one completed HTTP request.
func (l *Logger) LogRequest(ctx context.Context, method, path string, status int, durationMS int64) {
	l.WithContext(ctx).WithFields(logrus.Fields{
		"method":      method,
		"path":        path,
		"status":      status,
		"duration_ms": durationMS,
	}).Info("request completed")
}
