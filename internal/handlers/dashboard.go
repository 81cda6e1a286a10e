package handlers

import (
	"log/slog"
	"time"

	"github.com/evenground/evenground-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type DashboardHandler struct {
	dashboardService DashboardServiceInterface
	logger           *slog.Logger
	now              func() time.Time
}

func NewDashboardHandler(dashboardService DashboardServiceInterface, logger *slog.Logger) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{dashboardService: dashboardService, logger: logger, now: time.Now}
}

func (h *DashboardHandler) Get(c *drift.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	d, err := h.dashboardService.Build(c.Request.Context(), userID, h.now())
	if err != nil {
		respondError(c, h.logger, "build dashboard", err)
		return
	}

	_ = c.JSON(200, dto.DashboardResponse{
		Family:        familyResponse(d.Family),
		NeedsApproval: requestResponses(d.NeedsApproval),
		Upcoming:      requestResponses(d.Upcoming),
		Recent:        requestResponses(d.Recent),
	})
}
