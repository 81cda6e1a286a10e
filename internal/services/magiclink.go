package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/evenground/evenground-api/internal/models"
)

type loginTokenStore interface {
	StoreLoginToken(ctx context.Context, tokenHash, email string, expiresAt time.Time) error
	ConsumeLoginToken(ctx context.Context, tokenHash string) (string, error)
}

type emailUserStore interface {
	FindOrCreateByEmail(ctx context.Context, email string) (*models.User, error)
}

// newToken returns 32 crypto-random bytes, hex encoded.
func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// MagicLinkService implements passwordless sign-in by single-use emailed links.
type MagicLinkService struct {
	tokens  loginTokenStore
	users   emailUserStore
	mailer  Mailer
	linkURL func(token string) string
	ttl     time.Duration
	logger  *slog.Logger
}

func NewMagicLinkService(tokens loginTokenStore, users emailUserStore, mailer Mailer, linkURL func(string) string, ttl time.Duration, logger *slog.Logger) *MagicLinkService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MagicLinkService{
		tokens:  tokens,
		users:   users,
		mailer:  mailer,
		linkURL: linkURL,
		ttl:     ttl,
		logger:  logger,
	}
}

// Request issues a link for email. Delivery failures are logged only, so
// callers cannot tell whether an account exists.
func (s *MagicLinkService) Request(ctx context.Context, email string) error {
	email, err := ValidateEmail(email)
	if err != nil {
		return err
	}

	token, err := newToken()
	if err != nil {
		return err
	}
	if err := s.tokens.StoreLoginToken(ctx, HashToken(token), email, time.Now().Add(s.ttl)); err != nil {
		return err
	}

	msg := magicLinkEmail(s.linkURL(token), s.ttl)
	if err := s.mailer.Send(ctx, email, msg.Subject, msg.HTML, msg.Text); err != nil {
		s.logger.Warn("magic link not delivered", "error", err)
	}
	return nil
}

func (s *MagicLinkService) Verify(ctx context.Context, token string) (*models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidLoginToken
	}

	email, err := s.tokens.ConsumeLoginToken(ctx, HashToken(token))
	if err != nil {
		return nil, err
	}
	return s.users.FindOrCreateByEmail(ctx, email)
}
