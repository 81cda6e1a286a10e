package middleware

import (
	"strings"

	"github.com/evenground/evenground-api/internal/services"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
)

// StreamTokenParam carries the access token for clients that cannot set
// headers, such as the browser EventSource.
const StreamTokenParam = "access_token"

// Identity is the authenticated caller.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

func bearerToken(c *drift.Context) (string, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", "missing authorization header"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", "invalid authorization header format"
	}
	return parts[1], ""
}

func authenticate(c *drift.Context, jwtService *services.JWTService, token string) {
	claims, err := jwtService.ValidateAccessToken(token)
	if err != nil {
		c.Unauthorized("invalid or expired token")
		return
	}

	c.Set(UserIDKey, claims.UserID)
	c.Set(UserEmailKey, claims.Email)

	c.Next()
}

func Auth(jwtService *services.JWTService) drift.HandlerFunc {
	return func(c *drift.Context) {
		token, problem := bearerToken(c)
		if problem != "" {
			c.Unauthorized(problem)
			return
		}
		authenticate(c, jwtService, token)
	}
}

// StreamAuth is Auth that also accepts the token in the access_token query
// parameter when no Authorization header is present.
func StreamAuth(jwtService *services.JWTService) drift.HandlerFunc {
	return func(c *drift.Context) {
		if c.GetHeader("Authorization") == "" {
			token := c.QueryParam(StreamTokenParam)
			if token == "" {
				c.Unauthorized("missing authorization header")
				return
			}
			authenticate(c, jwtService, token)
			return
		}

		token, problem := bearerToken(c)
		if problem != "" {
			c.Unauthorized(problem)
			return
		}
		authenticate(c, jwtService, token)
	}
}

func GetUserID(c *drift.Context) uuid.UUID {
	if id, ok := c.Get(UserIDKey); ok {
		if uid, ok := id.(uuid.UUID); ok {
			return uid
		}
	}
	return uuid.Nil
}

func GetUserEmail(c *drift.Context) string {
	if email, ok := c.Get(UserEmailKey); ok {
		if e, ok := email.(string); ok {
			return e
		}
	}
	return ""
}

// GetIdentity returns the caller set by Auth. ok is false on routes that
// are not behind Auth.
func GetIdentity(c *drift.Context) (Identity, bool) {
	id := GetUserID(c)
	if id == uuid.Nil {
		return Identity{}, false
	}
	return Identity{UserID: id, Email: GetUserEmail(c)}, true
}
