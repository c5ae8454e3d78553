package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// requestLog collects fields filled in further down the chain.
type requestLog struct {
	userID string
}

const requestLogKey contextKey = "request_log"

// setLoggedUser records the authenticated user for the request log line.
func setLoggedUser(ctx context.Context, userID string) {
	if l, ok := ctx.Value(requestLogKey).(*requestLog); ok {
		l.userID = userID
	}
}

// Logging logs every request with its status, duration and user ID.
// Server errors log at error level, client errors at warn.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		entry := &requestLog{}
		rec := newStatusRecorder(w)

		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestLogKey, entry)))

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"user_id", entry.userID,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		switch {
		case rec.status >= http.StatusInternalServerError:
			slog.Error("HTTP error", attrs...)
		case rec.status >= http.StatusBadRequest:
			slog.Warn("HTTP error", attrs...)
		default:
			slog.Info("HTTP ok", attrs...)
		}
	})
}
