package dto

import (
	"time"

	"github.com/google/uuid"
)

type UserResponse struct {
	ID       uuid.UUID        `json:"id"`
	Email    string           `json:"email"`
	Provider string           `json:"provider"`
	Profile  *ProfileResponse `json:"profile,omitempty"`
}

type ProfileResponse struct {
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DisplayName string    `json:"display_name"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UpdateProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
