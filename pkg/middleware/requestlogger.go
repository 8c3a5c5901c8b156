package middleware

import (
	"log/slog"
	"net/http"

	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/logger"
)

// RequestLogger stores a request-scoped logger in the context, enriched with
// correlation_id, session_id, user_id, trace_id and span_id. Mount it after
// RequestLogging, Tracing, OptionalAuth and the session middleware so every
// field is known; handlers read it back with logger.FromContext.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			enriched := logger.WithContext(ctx, base)
			if userID := UserIDFromContext(ctx); userID != "" {
				enriched = enriched.With(slog.String("user_id", userID))
			}

			next.ServeHTTP(w, r.WithContext(logger.NewContext(ctx, enriched)))
		})
	}
}
