package middleware

import (
	"context"
	"log/slog"
	"net/http"
)

const loggerContextKey contextKey = "logger"

// WithLogger attaches a request-scoped logger, pre-tagged with the
// request ID, to the context.
func WithLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := base
			if id := GetRequestID(r.Context()); id != "" {
				logger = base.With(slog.String("request_id", id))
			}
			ctx := context.WithValue(r.Context(), loggerContextKey, logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoggerFrom returns the request-scoped logger, or the default logger
// when none was attached.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
