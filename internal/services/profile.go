package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/evenground/evenground-api/internal/database"
	"github.com/evenground/evenground-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const profileColumns = `user_id, first_name, last_name, display_name, updated_at`

const maxNameLength = 100

type ProfileService struct {
	db *database.DB
}

func NewProfileService(db *database.DB) *ProfileService {
	return &ProfileService{db: db}
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	if err := row.Scan(&p.UserID, &p.FirstName, &p.LastName, &p.DisplayName, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	p, err := scanProfile(s.db.Pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

func cleanNames(firstName, lastName string) (string, string, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" {
		return "", "", ErrFirstNameRequired
	}
	if len(firstName) > maxNameLength || len(lastName) > maxNameLength {
		return "", "", ErrNameTooLong
	}
	return firstName, lastName, nil
}

// Upsert writes the onboarding profile. The display name is derived, never
// supplied.
func (s *ProfileService) Upsert(ctx context.Context, userID uuid.UUID, firstName, lastName string) (*models.Profile, error) {
	firstName, lastName, err := cleanNames(firstName, lastName)
	if err != nil {
		return nil, err
	}

	p, err := scanProfile(s.db.Pool.QueryRow(ctx, `
		INSERT INTO profiles (user_id, first_name, last_name, display_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
			SET first_name = EXCLUDED.first_name,
				last_name = EXCLUDED.last_name,
				display_name = EXCLUDED.display_name,
				updated_at = NOW()
		RETURNING `+profileColumns,
		userID, firstName, lastName, models.DisplayName(firstName, lastName)))
	if err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return p, nil
}

// SeedIfMissing fills a profile from provider data on first sign-in and
// leaves an existing one alone.
func (s *ProfileService) SeedIfMissing(ctx context.Context, userID uuid.UUID, firstName, lastName string) error {
	if strings.TrimSpace(firstName) == "" {
		return nil
	}
	firstName, lastName, err := cleanNames(firstName, lastName)
	if err != nil {
		return err
	}

	_, err = s.db.Pool.Exec(ctx, `
		INSERT INTO profiles (user_id, first_name, last_name, display_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, firstName, lastName, models.DisplayName(firstName, lastName))
	if err != nil {
		return fmt.Errorf("failed to seed profile: %w", err)
	}
	return nil
}
