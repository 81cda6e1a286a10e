package middleware

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/oklog/ulid/v2"
)

const (
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
)

// maxRequestIDLength bounds client supplied ids before they reach the logs.
const maxRequestIDLength = 128

// RequestID reuses the caller's X-Request-ID or assigns a ULID, and echoes
// it in the response.
func RequestID() drift.HandlerFunc {
	return func(c *drift.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = ulid.Make().String()
		}

		c.Set(RequestIDKey, id)
		c.Response.Header().Set(RequestIDHeader, id)

		c.Next()
	}
}

func GetRequestID(c *drift.Context) string {
	if v, ok := c.Get(RequestIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// Logger writes one line per request. The query string is left out since
// stream tokens travel there.
func Logger(logger *slog.Logger) drift.HandlerFunc {
	return func(c *drift.Context) {
		start := time.Now()

		c.Next()

		attrs := []slog.Attr{
			slog.String("request_id", GetRequestID(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			slog.String("remote_addr", c.Request.RemoteAddr),
			slog.String("user_agent", c.Request.UserAgent()),
		}
		if id := GetUserID(c); id != uuid.Nil {
			attrs = append(attrs, slog.String("user_id", id.String()))
		}

		logger.LogAttrs(c.Request.Context(), slog.LevelInfo, "request", attrs...)
	}
}
