package dto

import "github.com/google/uuid"

type ConsentURLResponse struct {
	URL string `json:"url"`
}

type ExchangeCodeRequest struct {
	Code string `json:"code"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// SignupRequest creates a password account. Token, when present, is an
// invite token redeemed right after the account exists.
type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Token     string `json:"token,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// SignupResponse carries the new session. InviteError is set when the
// account was created but the invite could not be redeemed.
type SignupResponse struct {
	TokenResponse
	User        UserResponse `json:"user"`
	FamilyID    *uuid.UUID   `json:"family_id,omitempty"`
	InviteError string       `json:"invite_error,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type MagicLinkRequest struct {
	Email string `json:"email"`
}

type MagicLinkVerifyRequest struct {
	Token string `json:"token"`
}
