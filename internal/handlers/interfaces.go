package handlers

import (
	"context"
	"time"

	"github.com/evenground/evenground-api/internal/models"
	"github.com/evenground/evenground-api/internal/oauth"
	"github.com/evenground/evenground-api/internal/services"
	"github.com/evenground/evenground-api/internal/sse"
	"github.com/evenground/evenground-api/internal/toneguard"
	"github.com/google/uuid"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ProfileServiceInterface defines the methods used by handlers from ProfileService
type ProfileServiceInterface interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	Upsert(ctx context.Context, userID uuid.UUID, firstName, lastName string) (*models.Profile, error)
	SeedIfMissing(ctx context.Context, userID uuid.UUID, firstName, lastName string) error
}

// TokenServiceInterface defines the methods used by handlers from TokenService
type TokenServiceInterface interface {
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	ConsumeRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	GenerateTokenPair(userID uuid.UUID, email string) (*services.TokenPair, error)
	ValidateRefreshToken(token string) (uuid.UUID, error)
	RefreshExpiry() time.Duration
}

type MagicLinkServiceInterface interface {
	Request(ctx context.Context, email string) error
	Verify(ctx context.Context, token string) (*models.User, error)
}

type FamilyServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID) (*models.Family, error)
	Current(ctx context.Context, userID uuid.UUID) (*models.Family, error)
	Members(ctx context.Context, userID uuid.UUID) ([]models.FamilyMember, error)
}

type InviteServiceInterface interface {
	Create(ctx context.Context, inviterID uuid.UUID, email string) (*services.InviteResult, error)
	Resend(ctx context.Context, callerID uuid.UUID, email, token string) (bool, error)
	Redeem(ctx context.Context, token string, userID uuid.UUID) (uuid.UUID, error)
	ListPending(ctx context.Context, userID uuid.UUID) ([]models.FamilyInvite, error)
	Cancel(ctx context.Context, userID, inviteID uuid.UUID) error
	Preview(ctx context.Context, token string) (*services.InvitePreview, error)
}

type RequestServiceInterface interface {
	Types() []string
	Create(ctx context.Context, userID uuid.UUID, in services.CreateRequestInput) (*models.Request, error)
	Get(ctx context.Context, userID, requestID uuid.UUID) (*models.Request, error)
	List(ctx context.Context, userID uuid.UUID, status string, limit int) ([]models.Request, error)
	Decide(ctx context.Context, userID, requestID uuid.UUID, decision string) (*models.Request, error)
}

type MessageServiceInterface interface {
	Send(ctx context.Context, userID, requestID uuid.UUID, content, choice, rewrite string) (*services.SendResult, error)
	List(ctx context.Context, userID, requestID uuid.UUID) ([]models.Message, error)
	CheckTone(ctx context.Context, text string) (toneguard.Verdict, error)
}

type DashboardServiceInterface interface {
	Build(ctx context.Context, userID uuid.UUID, now time.Time) (*services.Dashboard, error)
}

// SSEHubInterface defines the methods used by handlers from the family event hub
type SSEHubInterface interface {
	Register(client *sse.Client)
	Unregister(client *sse.Client)
}
