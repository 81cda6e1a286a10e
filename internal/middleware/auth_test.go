package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/evenground/evenground-api/internal/services"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *services.JWTService {
	return services.NewJWTService("test-secret-key", 15*time.Minute, 24*time.Hour)
}

func generateTestToken(t *testing.T, jwtSvc *services.JWTService, userID uuid.UUID, email string) string {
	t.Helper()
	pair, err := jwtSvc.GenerateTokenPair(userID, email)
	require.NoError(t, err)
	return pair.AccessToken
}

// protectedApp serves GET /protected behind mw and records the identity the
// handler saw.
func protectedApp(mw drift.HandlerFunc, seen *Identity) http.Handler {
	app := drift.New()
	app.Use(mw)
	app.Get("/protected", func(c *drift.Context) {
		if seen != nil {
			*seen, _ = GetIdentity(c)
		}
		_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	return app
}

func serve(app http.Handler, target, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func TestAuth_Rejections(t *testing.T) {
	jwtSvc := newTestJWTService()
	app := protectedApp(Auth(jwtSvc), nil)

	testCases := []struct {
		name          string
		authorization string
		want          string
	}{
		{"missing header", "", "missing authorization header"},
		{"not bearer", "Token some-token", "invalid authorization header format"},
		{"only bearer", "Bearer", "invalid authorization header format"},
		{"garbage token", "Bearer invalid-token", "invalid or expired token"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(app, "/protected", tc.authorization)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.want)
		})
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	jwtSvc := services.NewJWTService("test-secret-key", time.Millisecond, 24*time.Hour)
	token := generateTestToken(t, jwtSvc, uuid.New(), "parent@example.com")

	time.Sleep(10 * time.Millisecond)

	rec := serve(protectedApp(Auth(jwtSvc), nil), "/protected", "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or expired token")
}

func TestAuth_WrongSecret(t *testing.T) {
	issuer := services.NewJWTService("secret-1", 15*time.Minute, 24*time.Hour)
	verifier := services.NewJWTService("secret-2", 15*time.Minute, 24*time.Hour)
	token := generateTestToken(t, issuer, uuid.New(), "parent@example.com")

	rec := serve(protectedApp(Auth(verifier), nil), "/protected", "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_RefreshTokenIsRejected(t *testing.T) {
	jwtSvc := newTestJWTService()
	pair, err := jwtSvc.GenerateTokenPair(uuid.New(), "parent@example.com")
	require.NoError(t, err)

	rec := serve(protectedApp(Auth(jwtSvc), nil), "/protected", "Bearer "+pair.RefreshToken)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_ValidToken(t *testing.T) {
	jwtSvc := newTestJWTService()
	userID := uuid.New()
	token := generateTestToken(t, jwtSvc, userID, "parent@example.com")

	var seen Identity
	rec := serve(protectedApp(Auth(jwtSvc), &seen), "/protected", "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, Identity{UserID: userID, Email: "parent@example.com"}, seen)
}

func TestAuth_BearerCaseInsensitive(t *testing.T) {
	jwtSvc := newTestJWTService()
	token := generateTestToken(t, jwtSvc, uuid.New(), "parent@example.com")
	app := protectedApp(Auth(jwtSvc), nil)

	for _, bearer := range []string{"bearer", "BEARER", "BeArEr"} {
		t.Run(bearer, func(t *testing.T) {
			rec := serve(app, "/protected", bearer+" "+token)

			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestAuth_IgnoresQueryToken(t *testing.T) {
	jwtSvc := newTestJWTService()
	token := generateTestToken(t, jwtSvc, uuid.New(), "parent@example.com")

	rec := serve(protectedApp(Auth(jwtSvc), nil), "/protected?access_token="+token, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStreamAuth(t *testing.T) {
	jwtSvc := newTestJWTService()
	userID := uuid.New()
	token := generateTestToken(t, jwtSvc, userID, "parent@example.com")

	t.Run("query token", func(t *testing.T) {
		var seen Identity
		rec := serve(protectedApp(StreamAuth(jwtSvc), &seen), "/protected?access_token="+token, "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, userID, seen.UserID)
	})

	t.Run("header wins", func(t *testing.T) {
		rec := serve(protectedApp(StreamAuth(jwtSvc), nil), "/protected?access_token="+token, "Bearer bogus")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("nothing", func(t *testing.T) {
		rec := serve(protectedApp(StreamAuth(jwtSvc), nil), "/protected", "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "missing authorization header")
	})

	t.Run("bad query token", func(t *testing.T) {
		rec := serve(protectedApp(StreamAuth(jwtSvc), nil), "/protected?access_token=nope", "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestGetIdentity_NotSet(t *testing.T) {
	app := drift.New()

	var (
		ok    = true
		id    uuid.UUID
		email = "unset"
	)
	app.Get("/test", func(c *drift.Context) {
		_, ok = GetIdentity(c)
		id = GetUserID(c)
		email = GetUserEmail(c)
		_ = c.JSON(http.StatusOK, nil)
	})

	serve(app, "/test", "")

	assert.False(t, ok)
	assert.Equal(t, uuid.Nil, id)
	assert.Equal(t, "", email)
}
