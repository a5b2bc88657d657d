package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// loggerKey is the context key for the request-scoped logger.
type loggerKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Logger returns a middleware that logs HTTP requests and threads a child
// logger carrying the request ID through the request context. Downstream
// code retrieves it with GetLogger; the parent logger is never mutated.
func Logger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := newResponseWriter(w)

			requestID := GetRequestID(r.Context())
			reqLog := log.With().Str("request_id", requestID).Logger()
			ctx := context.WithValue(r.Context(), loggerKey{}, reqLog)

			next.ServeHTTP(wrapped, r.WithContext(ctx))

			duration := time.Since(start)

			spanCtx := trace.SpanContextFromContext(ctx)
			traceID := ""
			if spanCtx.IsValid() {
				traceID = spanCtx.TraceID().String()
			}

			reqLog.Info().
				Str("trace_id", traceID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapped.statusCode).
				Int64("bytes", wrapped.written).
				Dur("duration", duration).
				Str("remote_addr", r.RemoteAddr).
				Msg("request completed")
		})
	}
}

// GetLogger returns the request-scoped logger, or a disabled logger when the
// context carries none.
func GetLogger(ctx context.Context) zerolog.Logger {
	if log, ok := ctx.Value(loggerKey{}).(zerolog.Logger); ok {
		return log
	}
	return zerolog.Nop()
}
