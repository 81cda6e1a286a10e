package handlers

import (
	"errors"
	"fmt"
	"html"
	"log/slog"

	"github.com/evenground/evenground-api/internal/repository"
	"github.com/evenground/evenground-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type InviteHandler struct {
	inviteService InviteServiceInterface
	linkURL       func(token string) string
	logger        *slog.Logger
}

func NewInviteHandler(inviteService InviteServiceInterface, linkURL func(token string) string, logger *slog.Logger) *InviteHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &InviteHandler{inviteService: inviteService, linkURL: linkURL, logger: logger}
}

func (h *InviteHandler) Create(c *drift.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req dto.CreateInviteRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	result, err := h.inviteService.Create(c.Request.Context(), userID, req.Email)
	if err != nil {
		respondError(c, h.logger, "create invite", err)
		return
	}

	_ = c.JSON(201, dto.CreateInviteResponse{
		Invite:    inviteResponse(result.Invite),
		Link:      result.Link,
		EmailSent: result.EmailSent,
	})
}

func (h *InviteHandler) List(c *drift.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	invites, err := h.inviteService.ListPending(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, "list invites", err)
		return
	}

	_ = c.JSON(200, inviteResponses(invites))
}

// Send emails a pending invite again. A delivery failure is reported in the
// body, not as an error status.
func (h *InviteHandler) Send(c *drift.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req dto.SendInviteRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Token == "" {
		c.BadRequest("token is required")
		return
	}

	sent, err := h.inviteService.Resend(c.Request.Context(), userID, req.Email, req.Token)
	if err != nil {
		respondError(c, h.logger, "send invite", err)
		return
	}

	_ = c.JSON(200, dto.SendInviteResponse{EmailSent: sent})
}

func (h *InviteHandler) Redeem(c *drift.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req dto.RedeemInviteRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	familyID, err := h.inviteService.Redeem(c.Request.Context(), req.Token, userID)
	if err != nil {
		respondError(c, h.logger, "redeem invite", err)
		return
	}

	_ = c.JSON(200, dto.RedeemInviteResponse{FamilyID: familyID})
}

func (h *InviteHandler) Cancel(c *drift.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	inviteID, ok := paramUUID(c, "inviteId", "invite")
	if !ok {
		return
	}

	if err := h.inviteService.Cancel(c.Request.Context(), userID, inviteID); err != nil {
		respondError(c, h.logger, "cancel invite", err)
		return
	}

	_ = c.JSON(200, map[string]string{"message": "invite cancelled"})
}

// ViewInvite is the public landing page for an invite link.
func (h *InviteHandler) ViewInvite(c *drift.Context) {
	token := c.QueryParam("token")
	if token == "" {
		h.renderError(c, "This invite link is incomplete.")
		return
	}

	preview, err := h.inviteService.Preview(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, repository.ErrInviteNotFound) {
			h.logger.Error("invite preview failed", slog.String("error", err.Error()))
		}
		h.renderError(c, "This invite link is not valid.")
		return
	}

	if !preview.Invite.IsPending() {
		h.renderMessage(c, "This invite has already been used.")
		return
	}
	if preview.Expired {
		h.renderError(c, "This invite has expired. Ask your co-parent to send a new one.")
		return
	}

	inviterName := preview.InviterName
	if inviterName == "" {
		inviterName = "Your co-parent"
	}

	h.renderInvitePage(c, inviterName, h.linkURL(token))
}

const pageStyle = `
        body { font-family: system-ui, sans-serif; max-width: 420px; margin: 50px auto; padding: 20px; text-align: center; color: #374151; }
        h1 { color: #1f2937; }
        h1.error { color: #b91c1c; }
        p { color: #6b7280; margin: 20px 0; }
        a.join { display: inline-block; padding: 12px 24px; background: #2f6f5e; color: #fff; border-radius: 6px; text-decoration: none; }
        a.join:hover { background: #255a4c; }`

func renderPage(c *drift.Context, status int, title, body string) {
	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>%s
    </style>
</head>
<body>
%s
</body>
</html>`, html.EscapeString(title), pageStyle, body)

	_ = c.HTML(status, page)
}

func (h *InviteHandler) renderInvitePage(c *drift.Context, inviterName, link string) {
	renderPage(c, 200, "Join your family on EvenGround", fmt.Sprintf(`    <h1>You're invited</h1>
    <p><strong>%s</strong> has invited you to coordinate on EvenGround.</p>
    <a class="join" href="%s">Join Family</a>`,
		html.EscapeString(inviterName),
		html.EscapeString(link),
	))
}

func (h *InviteHandler) renderMessage(c *drift.Context, message string) {
	renderPage(c, 200, "EvenGround invite", fmt.Sprintf(`    <h1>%s</h1>`, html.EscapeString(message)))
}

func (h *InviteHandler) renderError(c *drift.Context, message string) {
	renderPage(c, 400, "EvenGround invite", fmt.Sprintf(`    <h1 class="error">Invite unavailable</h1>
    <p>%s</p>`, html.EscapeString(message)))
}
