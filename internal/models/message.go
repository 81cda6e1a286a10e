package models

import (
	"time"

	"github.com/google/uuid"
)

// Message belongs to exactly one request thread and is never edited.
type Message struct {
	ID        uuid.UUID `json:"id"`
	RequestID uuid.UUID `json:"request_id"`
	UserID    uuid.UUID `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
