package handlers

import (
	"log/slog"

	"github.com/evenground/evenground-api/internal/services"
	"github.com/evenground/evenground-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type MessageHandler struct {
	messageService MessageServiceInterface
	logger         *slog.Logger
}

func NewMessageHandler(messageService MessageServiceInterface, logger *slog.Logger) *MessageHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MessageHandler{messageService: messageService, logger: logger}
}

func (h *MessageHandler) List(c *drift.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	requestID, ok := paramUUID(c, "id", "request")
	if !ok {
		return
	}

	msgs, err := h.messageService.List(c.Request.Context(), userID, requestID)
	if err != nil {
		respondError(c, h.logger, "list messages", err)
		return
	}

	_ = c.JSON(200, messageResponses(msgs))
}

// Send answers 201 with the stored message, or 200 with the verdict when the
// tone gate holds the message back.
func (h *MessageHandler) Send(c *drift.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	requestID, ok := paramUUID(c, "id", "request")
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	result, err := h.messageService.Send(c.Request.Context(), userID, requestID, req.Content, req.Choice, req.Rewrite)
	if err != nil {
		respondError(c, h.logger, "send message", err)
		return
	}

	if result.Status == services.SendStatusFlagged {
		_ = c.JSON(200, dto.SendMessageResponse{
			Status:   result.Status,
			Risk:     string(result.Verdict.Risk),
			Reason:   result.Verdict.Reason,
			Rewrite:  result.Verdict.Rewrite,
			Original: result.Original,
		})
		return
	}

	msg := messageResponse(result.Message)
	_ = c.JSON(201, dto.SendMessageResponse{
		Status:  result.Status,
		Message: &msg,
		Risk:    string(result.Verdict.Risk),
	})
}

func (h *MessageHandler) ToneCheck(c *drift.Context) {
	var req dto.ToneCheckRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	v, err := h.messageService.CheckTone(c.Request.Context(), req.Text)
	if err != nil {
		respondError(c, h.logger, "tone check", err)
		return
	}

	_ = c.JSON(200, dto.ToneCheckResponse{
		Risk:    string(v.Risk),
		Reason:  v.Reason,
		Rewrite: v.Rewrite,
	})
}
