package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"golang.org/x/time/rate"

	"github.com/r3e-network/discovery-pipeline/internal/logging"
	"github.com/r3e-network/discovery-pipeline/internal/svcerrors"
)

// Recovery recovers from panics in downstream handlers, logs the stack trace
// and converts the panic into a 500 JSON response.
func Recovery(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.WithContext(r.Context()).WithFields(map[string]interface{}{
						"panic":  fmt.Sprintf("%v", rec),
						"stack":  string(debug.Stack()),
						"path":   r.URL.Path,
						"method": r.Method,
					}).Error("panic recovered")
					WriteError(w, r, svcerrors.Internal("internal server error", nil))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// RequestLogging attaches/propagates a trace ID and logs each completed
// request.
func RequestLogging(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			traceID := r.Header.Get("X-Trace-ID")
			if traceID == "" {
				traceID = logging.NewTraceID()
			}
			ctx := logging.WithTraceID(r.Context(), traceID)
			r = r.WithContext(ctx)
			r.Header.Set("X-Trace-ID", traceID)
			w.Header().Set("X-Trace-ID", traceID)

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			logger.LogRequest(ctx, r.Method, r.URL.Path, sw.status, time.Since(start).Milliseconds())
		})
	}
}

// RequireAPIKey enforces a constant-time compare of X-Internal-API-Key
// against expected. An empty expected disables the check (unauthenticated
// deployments for local dev).
func RequireAPIKey(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if expected == "" {
				next.ServeHTTP(w, r)
				return
			}
			got := r.Header.Get("X-Internal-API-Key")
			if !constantTimeEqual(got, expected) {
				WriteError(w, r, svcerrors.Unauthorized("missing or invalid X-Internal-API-Key"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit caps requests per second (with burst) per process, for the
// unauthenticated surfaces of the dry-run orchestrator that sit behind no
// API key and would otherwise let a misbehaving client spin up unbounded
// containers.
func RateLimit(requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 100
	}
	if burst <= 0 {
		burst = int(requestsPerSecond * 2)
	}
	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				WriteError(w, r, svcerrors.RateLimited("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	var v byte
	for i := 0; i < len(a); i++ {
		v |= a[i] ^ b[i]
	}
	return v == 0
}

// WriteError writes a ServiceError (or a generic error, wrapped as internal)
// as a structured JSON response.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	se, ok := err.(*svcerrors.ServiceError)
	if !ok {
		se = svcerrors.Internal("internal server error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(se.HTTPStatus)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error":    se.Code,
		"message":  se.Message,
		"details":  se.Details,
		"trace_id": logging.TraceID(r.Context()),
	})
}

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
