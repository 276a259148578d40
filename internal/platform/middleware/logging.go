package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"mintbank/pkg/requestcontext"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestLogging assigns each request a correlation ID, places it on the
// context, and logs one line per request with method, path, status and
// duration. It sits at the top of the router so every endpoint is covered.
func RequestLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			requestID := uuid.NewString()
			ctx := requestcontext.WithRequestID(req.Context(), requestID)
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, req.WithContext(ctx))

			logger.InfoContext(ctx, "http request",
				"request_id", requestID,
				"method", req.Method,
				"path", req.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
