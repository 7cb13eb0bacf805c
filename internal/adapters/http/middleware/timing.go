package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gymportal/internal/adapters/metrics"
)

// DefaultSlowRequest is the threshold used when none is configured.
const DefaultSlowRequest = 500 * time.Millisecond

// unmatchedPath labels every request outside the route table, and every 404,
// so scanners cannot blow up histogram cardinality.
const unmatchedPath = "unmatched"

// RouteLabel names the registered route a request belongs to, or "" for none.
type RouteLabel func(r *http.Request) string

// MuxRoute labels a request with the path part of the mux pattern it would be
// dispatched to, e.g. "/admin/outbox/{id}/retry".
func MuxRoute(mux *http.ServeMux) RouteLabel {
	return func(r *http.Request) string {
		_, pattern := mux.Handler(r)
		if _, path, ok := strings.Cut(pattern, " "); ok {
			return path
		}
		return pattern
	}
}

// requestIDCounter is an atomic counter for request IDs.
var requestIDCounter uint64

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code and delegates to the underlying ResponseWriter.
// PRE: code is a valid HTTP status code
// POST: status stored, header written to underlying ResponseWriter
func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// statusWriterPool reduces allocations on the hot path.
var statusWriterPool = sync.Pool{
	New: func() any {
		return &statusWriter{}
	},
}

// Timing returns middleware that logs request duration and feeds the request histogram.
// Normal requests log at DEBUG; requests at or above threshold log at WARN.
// Histogram paths come from route, never from the raw URL; a nil route labels
// everything unmatched. A nil m only logs; threshold <= 0 means DefaultSlowRequest.
func Timing(m *metrics.Metrics, threshold time.Duration, route RouteLabel) func(http.Handler) http.Handler {
	if threshold <= 0 {
		threshold = DefaultSlowRequest
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			label := unmatchedPath
			if route != nil {
				if p := route(r); p != "" {
					label = p
				}
			}
			start := time.Now()
			reqID := atomic.AddUint64(&requestIDCounter, 1)

			sw := statusWriterPool.Get().(*statusWriter)
			sw.ResponseWriter = w
			sw.status = http.StatusOK
			defer func() {
				elapsed := time.Since(start)
				attrs := []any{
					"request_id", reqID,
					"method", r.Method,
					"path", path,
					"status", sw.status,
					"duration_ms", float64(elapsed.Microseconds()) / 1000.0,
				}
				if elapsed >= threshold {
					slog.Warn("slow_request", attrs...)
				} else {
					slog.Debug("request", attrs...)
				}

				if sw.status == http.StatusNotFound {
					label = unmatchedPath
				}
				m.ObserveRequest(r.Method, label, sw.status, elapsed)

				sw.ResponseWriter = nil
				statusWriterPool.Put(sw)
			}()

			next.ServeHTTP(sw, r)
		})
	}
}
