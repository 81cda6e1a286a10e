package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/evenground/evenground-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	redis Pinger
}

// NewHealthHandler reports on db and, when non-nil, redis.
func NewHealthHandler(db, redis Pinger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

func probe(ctx context.Context, p Pinger) string {
	if err := p.Ping(ctx); err != nil {
		return "unavailable"
	}
	return "ok"
}

func (h *HealthHandler) Check(c *drift.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := dto.HealthResponse{Status: "ok", Database: probe(ctx, h.db)}
	if h.redis != nil {
		resp.Redis = probe(ctx, h.redis)
	}

	status := http.StatusOK
	// Redis is optional; only the database decides the status.
	if resp.Database != "ok" {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}

	_ = c.JSON(status, resp)
}
