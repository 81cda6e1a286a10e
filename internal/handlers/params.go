package handlers

import (
	"github.com/evenground/evenground-api/internal/middleware"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

// callerID writes a 401 and reports false when the route is not behind Auth.
func callerID(c *drift.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		c.Unauthorized("not authenticated")
		return uuid.Nil, false
	}
	return id.UserID, true
}

// paramUUID parses a path parameter, writing a 400 naming what on failure.
func paramUUID(c *drift.Context, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.BadRequest("invalid " + what + " id")
		return uuid.Nil, false
	}
	return id, true
}
