package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/evenground/evenground-api/internal/database"
	"github.com/evenground/evenground-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type MessageRepository struct {
	db *database.DB
}

func NewMessageRepository(db *database.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create appends a message to a request thread. The insert only happens when
// userID is a member of the request's family.
func (r *MessageRepository) Create(ctx context.Context, requestID, userID uuid.UUID, content string) (*models.Message, error) {
	var msg models.Message
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO request_messages (request_id, user_id, content)
		SELECT r.id, $2, $3
		FROM requests r
		WHERE r.id = $1 AND EXISTS (
			SELECT 1 FROM family_members fm
			WHERE fm.family_id = r.family_id AND fm.user_id = $2
		)
		RETURNING id, request_id, user_id, content, created_at
	`, requestID, userID, content).Scan(&msg.ID, &msg.RequestID, &msg.UserID, &msg.Content, &msg.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	return &msg, nil
}

func (r *MessageRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]models.Message, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, request_id, user_id, content, created_at
		FROM request_messages
		WHERE request_id = $1
		ORDER BY created_at ASC, id ASC
	`, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.RequestID, &msg.UserID, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
