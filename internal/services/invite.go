package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/evenground/evenground-api/internal/models"
	"github.com/evenground/evenground-api/internal/repository"
	"github.com/evenground/evenground-api/internal/sse"
	"github.com/google/uuid"
)

type profileReader interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

type InviteResult struct {
	Invite    *models.FamilyInvite
	Link      string
	EmailSent bool
}

// InvitePreview is what the public landing page shows for a token.
type InvitePreview struct {
	Invite      *models.FamilyInvite
	InviterName string
	Expired     bool
}

type InviteServiceConfig struct {
	// LinkURL builds the redemption link for a token.
	LinkURL func(token string) string
	// TTL of a new invite. Zero means invites never expire.
	TTL time.Duration
}

type InviteService struct {
	families  FamilyStore
	invites   InviteStore
	profiles  profileReader
	mailer    Mailer
	publisher EventPublisher
	cfg       InviteServiceConfig
	logger    *slog.Logger
	now       func() time.Time
}

func NewInviteService(families FamilyStore, invites InviteStore, profiles profileReader, mailer Mailer, publisher EventPublisher, cfg InviteServiceConfig, logger *slog.Logger) *InviteService {
	if logger == nil {
		logger = slog.Default()
	}
	return &InviteService{
		families:  families,
		invites:   invites,
		profiles:  profiles,
		mailer:    mailer,
		publisher: publisherOrNop(publisher),
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *InviteService) inviterName(ctx context.Context, userID uuid.UUID) string {
	if s.profiles == nil {
		return ""
	}
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return ""
	}
	return p.DisplayName
}

// deliver sends the invite email. Failures are logged and reported as false.
func (s *InviteService) deliver(ctx context.Context, inviterID uuid.UUID, to, link string) bool {
	msg := inviteEmail(s.inviterName(ctx, inviterID), link)
	if err := s.mailer.Send(ctx, to, msg.Subject, msg.HTML, msg.Text); err != nil {
		s.logger.Warn("invite email not delivered", "error", err, "inviter_id", inviterID)
		return false
	}
	return true
}

// Create records a pending invite for the inviter's family and emails the
// link. The invite exists even when the email could not be sent.
func (s *InviteService) Create(ctx context.Context, inviterID uuid.UUID, email string) (*InviteResult, error) {
	email, err := ValidateEmail(email)
	if err != nil {
		return nil, err
	}

	family, err := familyOf(ctx, s.families, inviterID)
	if err != nil {
		return nil, err
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}

	var expiresAt *time.Time
	if s.cfg.TTL > 0 {
		t := s.now().Add(s.cfg.TTL)
		expiresAt = &t
	}

	invite, err := s.invites.Create(ctx, family.ID, inviterID, email, token, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	link := s.cfg.LinkURL(token)
	return &InviteResult{
		Invite:    invite,
		Link:      link,
		EmailSent: s.deliver(ctx, inviterID, email, link),
	}, nil
}

// Resend emails a pending invite of the caller's family again. An empty
// email means the address the invite was created for.
func (s *InviteService) Resend(ctx context.Context, callerID uuid.UUID, email, token string) (bool, error) {
	family, err := familyOf(ctx, s.families, callerID)
	if err != nil {
		return false, err
	}

	invite, err := s.invites.GetByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return false, err
	}
	if invite.FamilyID != family.ID {
		return false, repository.ErrInviteNotFound
	}
	if !invite.IsPending() {
		return false, repository.ErrInviteAlreadyUsed
	}
	if invite.IsExpired(s.now()) {
		return false, repository.ErrInviteExpired
	}

	to := invite.Email
	if strings.TrimSpace(email) != "" {
		if to, err = ValidateEmail(email); err != nil {
			return false, err
		}
	}
	return s.deliver(ctx, callerID, to, s.cfg.LinkURL(invite.Token)), nil
}

// Redeem joins userID to the invite's family. Only one redemption of a token
// can ever succeed.
func (s *InviteService) Redeem(ctx context.Context, token string, userID uuid.UUID) (uuid.UUID, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return uuid.Nil, repository.ErrInviteNotFound
	}

	familyID, err := s.invites.Redeem(ctx, token, userID)
	if err != nil {
		return uuid.Nil, err
	}

	s.publisher.Publish(familyID, sse.EventMemberJoined, map[string]string{"user_id": userID.String()})
	return familyID, nil
}

func (s *InviteService) ListPending(ctx context.Context, userID uuid.UUID) ([]models.FamilyInvite, error) {
	family, err := familyOf(ctx, s.families, userID)
	if err != nil {
		return nil, err
	}
	invites, err := s.invites.ListPending(ctx, family.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	return invites, nil
}

func (s *InviteService) Cancel(ctx context.Context, userID, inviteID uuid.UUID) error {
	family, err := familyOf(ctx, s.families, userID)
	if err != nil {
		return err
	}
	return s.invites.Cancel(ctx, inviteID, family.ID)
}

func (s *InviteService) Preview(ctx context.Context, token string) (*InvitePreview, error) {
	invite, err := s.invites.GetByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}
	return &InvitePreview{
		Invite:      invite,
		InviterName: s.inviterName(ctx, invite.InvitedBy),
		Expired:     invite.IsExpired(s.now()),
	}, nil
}
