package dto

import (
	"time"

	"github.com/google/uuid"
)

// SendMessageRequest posts to a request thread. Choice is empty on the first
// attempt, then "original" or "rewrite" after a flagged verdict.
type SendMessageRequest struct {
	Content string `json:"content"`
	Choice  string `json:"choice,omitempty"`
	Rewrite string `json:"rewrite,omitempty"`
}

type MessageResponse struct {
	ID        uuid.UUID `json:"id"`
	RequestID uuid.UUID `json:"request_id"`
	UserID    uuid.UUID `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// SendMessageResponse has Message set when Status is "sent". A "flagged"
// response carries the verdict and the original text instead.
type SendMessageResponse struct {
	Status   string           `json:"status"`
	Message  *MessageResponse `json:"message,omitempty"`
	Risk     string           `json:"risk,omitempty"`
	Reason   string           `json:"reason,omitempty"`
	Rewrite  string           `json:"rewrite,omitempty"`
	Original string           `json:"original,omitempty"`
}

type ToneCheckRequest struct {
	Text string `json:"text"`
}

type ToneCheckResponse struct {
	Risk    string `json:"risk"`
	Reason  string `json:"reason"`
	Rewrite string `json:"rewrite"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis,omitempty"`
}
