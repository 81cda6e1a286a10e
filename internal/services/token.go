package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evenground/evenground-api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TokenService persists hashes of refresh tokens and magic-link tokens.
type TokenService struct {
	db *database.DB
}

func NewTokenService(db *database.DB) *TokenService {
	return &TokenService{db: db}
}

func (s *TokenService) StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, userID, tokenHash, expiresAt)
	return err
}

// ConsumeRefreshToken deletes a live refresh token and returns its owner.
// A token can be consumed once; a replayed token yields pgx.ErrNoRows.
func (s *TokenService) ConsumeRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `
		DELETE FROM refresh_tokens
		WHERE token_hash = $1 AND expires_at > NOW()
		RETURNING user_id
	`, tokenHash).Scan(&userID)
	return userID, err
}

func (s *TokenService) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE token_hash = $1`, tokenHash)
	return err
}

func (s *TokenService) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	return err
}

func (s *TokenService) StoreLoginToken(ctx context.Context, tokenHash, email string, expiresAt time.Time) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO login_tokens (token_hash, email, expires_at)
		VALUES ($1, $2, $3)
	`, tokenHash, email, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to store login token: %w", err)
	}
	return nil
}

// ConsumeLoginToken burns a magic-link token and returns the email it was
// issued for.
func (s *TokenService) ConsumeLoginToken(ctx context.Context, tokenHash string) (string, error) {
	var (
		email     string
		expiresAt time.Time
	)
	err := s.db.Pool.QueryRow(ctx, `
		DELETE FROM login_tokens WHERE token_hash = $1
		RETURNING email, expires_at
	`, tokenHash).Scan(&email, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrInvalidLoginToken
	}
	if err != nil {
		return "", fmt.Errorf("failed to consume login token: %w", err)
	}
	if !time.Now().Before(expiresAt) {
		return "", ErrInvalidLoginToken
	}
	return email, nil
}

func (s *TokenService) CleanupExpired(ctx context.Context) error {
	if _, err := s.db.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < NOW()`); err != nil {
		return fmt.Errorf("failed to clean refresh tokens: %w", err)
	}
	if _, err := s.db.Pool.Exec(ctx, `DELETE FROM login_tokens WHERE expires_at < NOW()`); err != nil {
		return fmt.Errorf("failed to clean login tokens: %w", err)
	}
	return nil
}
