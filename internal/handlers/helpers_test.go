package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/evenground/evenground-api/internal/middleware"
	"github.com/evenground/evenground-api/internal/testutil"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newApp(method, path string, h drift.HandlerFunc, withAuth bool) http.Handler {
	app := drift.New()
	app.Use(driftmw.BodyParser())
	if withAuth {
		app.Use(middleware.Auth(testutil.TestJWTService()))
	}
	switch method {
	case http.MethodGet:
		app.Get(path, h)
	case http.MethodPatch:
		app.Patch(path, h)
	case http.MethodDelete:
		app.Delete(path, h)
	default:
		app.Post(path, h)
	}
	return app
}

func newPublicApp(method, path string, h drift.HandlerFunc) http.Handler {
	return newApp(method, path, h, false)
}

// newAuthedApp mounts h behind Auth using the shared test JWT secret.
func newAuthedApp(method, path string, h drift.HandlerFunc) http.Handler {
	return newApp(method, path, h, true)
}
