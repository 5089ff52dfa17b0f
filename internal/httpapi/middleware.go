package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
)

type ctxKey int

const requestMetaKey ctxKey = iota

// requestMeta is shared by pointer down the chain so inner handlers can
// fill in who the caller turned out to be before the request is logged.
type requestMeta struct {
	id     string
	userID string
}

func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-Id")
			if id == "" || len(id) > 128 {
				id = uuid.NewString()
			}
			w.Header().Set("X-Request-Id", id)
			ctx := context.WithValue(r.Context(), requestMetaKey, &requestMeta{id: id})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetRequestID(ctx context.Context) (string, bool) {
	meta, ok := ctx.Value(requestMetaKey).(*requestMeta)
	if !ok {
		return "", false
	}
	return meta.id, true
}

// setRequestUser records the authenticated user for the request log line.
func setRequestUser(ctx context.Context, userID string) {
	if meta, ok := ctx.Value(requestMetaKey).(*requestMeta); ok {
		meta.userID = userID
	}
}

func requestFields(r *http.Request) []any {
	var fields []any
	if meta, ok := r.Context().Value(requestMetaKey).(*requestMeta); ok {
		fields = append(fields, "request_id", meta.id)
		if meta.userID != "" {
			fields = append(fields, "user_id", meta.userID)
		}
	}
	if r.Pattern != "" {
		fields = append(fields, "route", r.Pattern)
	}
	return fields
}

// RequestLogger must sit inside RequestID. 5xx responses log at error level.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: 200}

			next.ServeHTTP(rec, r)

			fields := append([]any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"bytes", rec.bytes,
				"duration_ms", time.Since(start).Milliseconds(),
			}, requestFields(r)...)
			level := slog.LevelInfo
			if rec.status >= 500 {
				level = slog.LevelError
			}
			logger.Log(r.Context(), level, "http request", fields...)
		})
	}
}

func Recoverer(logger *slog.Logger, isProd bool) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					fields := append([]any{"panic", rec}, requestFields(r)...)
					if !isProd {
						fields = append(fields, "stack", string(debug.Stack()))
					}
					logger.Error("panic", fields...)
					WriteError(w, http.StatusInternalServerError, "internal_error", "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.status = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	n, err := r.ResponseWriter.Write(p)
	r.bytes += n
	return n, err
}
