// Package middleware provides HTTP middleware shared by all API routes.
package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/libreshelf/librarian/pkg/metrics"
)

// RequestLogger returns middleware that logs HTTP requests at DEBUG level and
// records them in the metrics registry. Pass nil logger to disable logging;
// pass nil metrics to skip recording. Both nil makes it a no-op.
func RequestLogger(logger *zap.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if logger == nil && m == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status code
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)

			if logger != nil {
				logger.Debug("HTTP request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", wrapped.statusCode),
					zap.Duration("duration", duration),
					zap.String("remote_addr", r.RemoteAddr),
				)
			}

			// Label by route pattern, not raw path, to keep metric
			// cardinality bounded.
			m.RecordHTTPRequest(r.Method, routeLabel(r), wrapped.statusCode, duration)
		})
	}
}

func routeLabel(r *http.Request) string {
	if r.Pattern != "" {
		return r.Pattern
	}
	return r.URL.Path
}

type responseWriter struct {
	http.ResponseWriter
	statusCode    int
	headerWritten bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.headerWritten {
		return
	}
	rw.statusCode = code
	rw.headerWritten = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.headerWritten {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}
