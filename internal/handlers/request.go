package handlers

import (
	"log/slog"
	"strconv"

	"github.com/evenground/evenground-api/internal/services"
	"github.com/evenground/evenground-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type RequestHandler struct {
	requestService RequestServiceInterface
	logger         *slog.Logger
}

func NewRequestHandler(requestService RequestServiceInterface, logger *slog.Logger) *RequestHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RequestHandler{requestService: requestService, logger: logger}
}

func (h *RequestHandler) Types(c *drift.Context) {
	_ = c.JSON(200, dto.RequestTypesResponse{Types: h.requestService.Types()})
}

func (h *RequestHandler) Create(c *drift.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req dto.CreateRequestRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	created, err := h.requestService.Create(c.Request.Context(), userID, services.CreateRequestInput{
		Type:      req.Type,
		Details:   req.Details,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		respondError(c, h.logger, "create request", err)
		return
	}

	_ = c.JSON(201, requestResponse(created))
}

// List accepts optional status and limit query parameters.
func (h *RequestHandler) List(c *drift.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	limit := 0
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 0 {
			c.BadRequest("limit must be a non-negative number")
			return
		}
		limit = n
	}

	reqs, err := h.requestService.List(c.Request.Context(), userID, c.QueryParam("status"), limit)
	if err != nil {
		respondError(c, h.logger, "list requests", err)
		return
	}

	_ = c.JSON(200, requestResponses(reqs))
}

func (h *RequestHandler) Get(c *drift.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	requestID, ok := paramUUID(c, "id", "request")
	if !ok {
		return
	}

	req, err := h.requestService.Get(c.Request.Context(), userID, requestID)
	if err != nil {
		respondError(c, h.logger, "get request", err)
		return
	}

	_ = c.JSON(200, requestResponse(req))
}

func (h *RequestHandler) Decide(c *drift.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	requestID, ok := paramUUID(c, "id", "request")
	if !ok {
		return
	}

	var body dto.DecisionRequest
	if err := c.BindJSON(&body); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	decided, err := h.requestService.Decide(c.Request.Context(), userID, requestID, body.Decision)
	if err != nil {
		respondError(c, h.logger, "decide request", err)
		return
	}

	_ = c.JSON(200, requestResponse(decided))
}
