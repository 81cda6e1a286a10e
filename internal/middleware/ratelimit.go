package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/evenground/evenground-api/internal/cache"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type RateLimiter interface {
	CheckUserRateLimit(ctx context.Context, scope, userID string, ratePerMinute int) (*cache.RateLimitResult, error)
}

// RateLimit allows each authenticated user ratePerMinute requests on scope.
// It must run after Auth. A nil limiter or a non-positive rate disables it,
// and limiter errors let the request through.
func RateLimit(limiter RateLimiter, scope string, ratePerMinute int, logger *slog.Logger) drift.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *drift.Context) {
		userID := GetUserID(c)
		if limiter == nil || ratePerMinute <= 0 || userID == uuid.Nil {
			c.Next()
			return
		}

		result, err := limiter.CheckUserRateLimit(c.Request.Context(), scope, userID.String(), ratePerMinute)
		if err != nil {
			logger.Warn("rate limit check failed",
				slog.String("request_id", GetRequestID(c)),
				slog.String("scope", scope),
				slog.String("error", err.Error()),
			)
			c.Next()
			return
		}

		c.Response.Header().Set("X-RateLimit-Limit", strconv.Itoa(ratePerMinute))
		c.Response.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))

		if !result.Allowed {
			seconds := int(result.RetryAfter.Seconds())
			if seconds < 1 {
				seconds = 1
			}
			logger.Info("rate limit exceeded",
				slog.String("request_id", GetRequestID(c)),
				slog.String("scope", scope),
				slog.String("user_id", userID.String()),
				slog.Int("retry_after_seconds", seconds),
			)
			c.Response.Header().Set("Retry-After", strconv.Itoa(seconds))
			_ = c.JSON(http.StatusTooManyRequests, map[string]string{
				"error": fmt.Sprintf("rate limit exceeded, retry after %d seconds", seconds),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
