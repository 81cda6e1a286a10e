package handlers

import (
	"log/slog"

	"github.com/m1z23r/drift/pkg/drift"
)

type FamilyHandler struct {
	familyService FamilyServiceInterface
	logger        *slog.Logger
}

func NewFamilyHandler(familyService FamilyServiceInterface, logger *slog.Logger) *FamilyHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FamilyHandler{familyService: familyService, logger: logger}
}

// Create makes the caller the founder of a new family. Repeating it returns
// the same family.
func (h *FamilyHandler) Create(c *drift.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	family, err := h.familyService.Create(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, "create family", err)
		return
	}

	_ = c.JSON(201, familyResponse(family))
}

func (h *FamilyHandler) Get(c *drift.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	family, err := h.familyService.Current(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, "get family", err)
		return
	}

	_ = c.JSON(200, familyResponse(family))
}

func (h *FamilyHandler) Members(c *drift.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	members, err := h.familyService.Members(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, "list members", err)
		return
	}

	_ = c.JSON(200, memberResponses(members))
}
