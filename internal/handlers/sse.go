package handlers

import (
	"log/slog"

	"github.com/evenground/evenground-api/internal/sse"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type SSEHandler struct {
	hub           SSEHubInterface
	familyService FamilyServiceInterface
	logger        *slog.Logger
}

func NewSSEHandler(hub SSEHubInterface, familyService FamilyServiceInterface, logger *slog.Logger) *SSEHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SSEHandler{hub: hub, familyService: familyService, logger: logger}
}

// Connect streams the caller's family events until the client goes away.
func (h *SSEHandler) Connect(c *drift.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	family, err := h.familyService.Current(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, "open event stream", err)
		return
	}

	sseCtx := c.SSE()

	clientID := uuid.New().String()
	client := &sse.Client{
		ID:       clientID,
		UserID:   userID,
		FamilyID: family.ID,
		Send:     make(chan []byte, 256),
	}

	h.hub.Register(client)
	defer h.hub.Unregister(client)

	if err := sseCtx.SendJSON(map[string]string{
		"type":      "connected",
		"client_id": clientID,
		"family_id": family.ID.String(),
	}, "system", ""); err != nil {
		return
	}

	done := c.Request.Context().Done()
	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			if err := sseCtx.Send(string(msg), "message", ""); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
