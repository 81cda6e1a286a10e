package services

import (
	"context"
	"errors"
	"time"

	"github.com/evenground/evenground-api/internal/models"
	"github.com/evenground/evenground-api/internal/repository"
	"github.com/evenground/evenground-api/internal/toneguard"
	"github.com/google/uuid"
)

var (
	ErrNoFamily           = errors.New("user has no family")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidLoginToken  = errors.New("login link is invalid or has expired")
	ErrEmptyMessage       = errors.New("message cannot be empty")
	ErrInvalidChoice      = errors.New("choice must be original or rewrite")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrFirstNameRequired  = errors.New("first name is required")
	ErrMailerDisabled     = errors.New("mailer is not configured")
	ErrMessageTooLong     = errors.New("message is too long")
	ErrNameTooLong        = errors.New("name is too long")
)

const MinPasswordLength = 8

type FamilyStore interface {
	CreateForFounder(ctx context.Context, userID uuid.UUID) (*models.Family, error)
	GetByMember(ctx context.Context, userID uuid.UUID) (*models.Family, error)
	IsMember(ctx context.Context, familyID, userID uuid.UUID) (bool, error)
	ListMembers(ctx context.Context, familyID uuid.UUID) ([]models.FamilyMember, error)
}

type InviteStore interface {
	Create(ctx context.Context, familyID, invitedBy uuid.UUID, email, token string, expiresAt *time.Time) (*models.FamilyInvite, error)
	GetByToken(ctx context.Context, token string) (*models.FamilyInvite, error)
	ListPending(ctx context.Context, familyID uuid.UUID) ([]models.FamilyInvite, error)
	Redeem(ctx context.Context, token string, userID uuid.UUID) (uuid.UUID, error)
	Cancel(ctx context.Context, inviteID, familyID uuid.UUID) error
}

type RequestStore interface {
	Create(ctx context.Context, nr *models.NewRequest) (*models.Request, error)
	GetByID(ctx context.Context, requestID, familyID uuid.UUID) (*models.Request, error)
	List(ctx context.Context, familyID uuid.UUID, filter repository.RequestFilter) ([]models.Request, error)
	ListNeedsApproval(ctx context.Context, familyID, userID uuid.UUID) ([]models.Request, error)
	ListUpcoming(ctx context.Context, familyID uuid.UUID, from, to time.Time) ([]models.Request, error)
	Decide(ctx context.Context, requestID, deciderID uuid.UUID, status models.RequestStatus) (*models.Request, error)
}

type MessageStore interface {
	Create(ctx context.Context, requestID, userID uuid.UUID, content string) (*models.Message, error)
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]models.Message, error)
}

// Mailer delivers one HTML email with a plain-text alternative.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}

type ToneChecker interface {
	Check(ctx context.Context, text string) toneguard.Verdict
}

// EventPublisher fans domain events out to a family's live streams.
type EventPublisher interface {
	Publish(familyID uuid.UUID, eventType string, data any)
}

type nopPublisher struct{}

func (nopPublisher) Publish(uuid.UUID, string, any) {}

func publisherOrNop(p EventPublisher) EventPublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}
