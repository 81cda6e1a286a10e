package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/evenground/evenground-api/internal/database"
	"github.com/evenground/evenground-api/internal/models"
	"github.com/google/uuid"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser inserts an email user with a profile named "Parent N".
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email:    fmt.Sprintf("parent%d@example.com", f.counter),
		Provider: models.ProviderEmail,
	}
	for _, opt := range opts {
		opt(user)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, provider, provider_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, user.Email, user.PasswordHash, user.Provider, user.ProviderID).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	first := fmt.Sprintf("Parent%d", f.counter)
	_, err = f.db.Pool.Exec(ctx, `
		INSERT INTO profiles (user_id, first_name, last_name, display_name)
		VALUES ($1, $2, '', $2)
	`, user.ID, first)
	if err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}
	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

func WithProvider(provider, providerID string) UserOption {
	return func(u *models.User) {
		u.Provider = provider
		u.ProviderID = &providerID
	}
}

// CreateFamily creates a family founded by founder and adds every other
// parent as a member.
func (f *Fixtures) CreateFamily(t *testing.T, founder *models.User, parents ...*models.User) *models.Family {
	t.Helper()
	ctx := context.Background()

	tx, err := f.db.Pool.Begin(ctx)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	family := &models.Family{CreatedBy: founder.ID}
	err = tx.QueryRow(ctx, `
		INSERT INTO families (created_by) VALUES ($1)
		RETURNING id, created_at
	`, founder.ID).Scan(&family.ID, &family.CreatedAt)
	if err != nil {
		t.Fatalf("failed to create family: %v", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO family_members (family_id, user_id, role) VALUES ($1, $2, $3)
	`, family.ID, founder.ID, models.RoleFounder); err != nil {
		t.Fatalf("failed to add founder: %v", err)
	}
	for _, p := range parents {
		if _, err := tx.Exec(ctx, `
			INSERT INTO family_members (family_id, user_id, role) VALUES ($1, $2, $3)
		`, family.ID, p.ID, models.RoleParent); err != nil {
			t.Fatalf("failed to add parent: %v", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("failed to commit transaction: %v", err)
	}
	return family
}

// CreateInvite inserts a pending invite with the given token.
func (f *Fixtures) CreateInvite(t *testing.T, family *models.Family, inviter *models.User, email, token string, expiresAt *time.Time) *models.FamilyInvite {
	t.Helper()

	inv := &models.FamilyInvite{
		FamilyID:  family.ID,
		Email:     email,
		Token:     token,
		Status:    models.InviteStatusPending,
		InvitedBy: inviter.ID,
		ExpiresAt: expiresAt,
	}
	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO family_invites (family_id, email, token, invited_by, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, family.ID, email, token, inviter.ID, expiresAt).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		t.Fatalf("failed to create invite: %v", err)
	}
	return inv
}

// CreateRequest inserts a pending request starting on startDate (YYYY-MM-DD).
func (f *Fixtures) CreateRequest(t *testing.T, family *models.Family, by *models.User, startDate string) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO requests (family_id, requested_by, type, start_date)
		VALUES ($1, $2, 'Other', $3)
		RETURNING id
	`, family.ID, by.ID, startDate).Scan(&id)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	return id
}

// CreateRefreshToken creates a test refresh token
func (f *Fixtures) CreateRefreshToken(t *testing.T, userID uuid.UUID, tokenHash string, expiresAt time.Time) {
	t.Helper()

	_, err := f.db.Pool.Exec(context.Background(), `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, userID, tokenHash, expiresAt)
	if err != nil {
		t.Fatalf("failed to create refresh token: %v", err)
	}
}
