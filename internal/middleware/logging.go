package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// statusWriter captures the response status code for logging.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Logging logs every request with method, path, status, user ID and
// duration. Client errors log at warn, server errors at error.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		userID := GetUserID(r.Context()) // empty if pre-auth
		duration := time.Since(start).Milliseconds()

		switch {
		case sw.status >= 500:
			slog.Error("Request error",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"user_id", userID,
				"duration_ms", duration,
			)
		case sw.status >= 400:
			slog.Warn("Request rejected",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"user_id", userID,
				"duration_ms", duration,
			)
		default:
			slog.Info("Request ok",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"user_id", userID,
				"duration_ms", duration,
			)
		}
	})
}
