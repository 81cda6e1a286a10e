package dto

import (
	"time"

	"github.com/google/uuid"
)

type FamilyResponse struct {
	ID        uuid.UUID `json:"id"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

type FamilyMemberResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	Role        string    `json:"role"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	JoinedAt    time.Time `json:"joined_at"`
}

type CreateInviteRequest struct {
	Email string `json:"email"`
}

type InviteResponse struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Status    string     `json:"status"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// CreateInviteResponse always carries the link so it can be shared by hand
// when EmailSent is false.
type CreateInviteResponse struct {
	Invite    InviteResponse `json:"invite"`
	Link      string         `json:"link"`
	EmailSent bool           `json:"email_sent"`
}

type SendInviteRequest struct {
	Email string `json:"email,omitempty"`
	Token string `json:"token"`
}

type SendInviteResponse struct {
	EmailSent bool `json:"email_sent"`
}

type RedeemInviteRequest struct {
	Token string `json:"token"`
}

type RedeemInviteResponse struct {
	FamilyID uuid.UUID `json:"family_id"`
}
