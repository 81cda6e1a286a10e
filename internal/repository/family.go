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

type FamilyRepository struct {
	db *database.DB
}

func NewFamilyRepository(db *database.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

// CreateForFounder returns the family founded by userID, creating it and the
// founder membership if it does not exist yet.
func (r *FamilyRepository) CreateForFounder(ctx context.Context, userID uuid.UUID) (*models.Family, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var family models.Family
	err = tx.QueryRow(ctx, `
		INSERT INTO families (created_by)
		VALUES ($1)
		ON CONFLICT (created_by) DO UPDATE SET created_by = EXCLUDED.created_by
		RETURNING id, created_by, created_at
	`, userID).Scan(&family.ID, &family.CreatedBy, &family.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO family_members (family_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (family_id, user_id) DO NOTHING
	`, family.ID, userID, models.RoleFounder)
	if err != nil {
		return nil, fmt.Errorf("failed to add founder as member: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &family, nil
}

func (r *FamilyRepository) GetByMember(ctx context.Context, userID uuid.UUID) (*models.Family, error) {
	var family models.Family
	err := r.db.Pool.QueryRow(ctx, `
		SELECT f.id, f.created_by, f.created_at
		FROM families f
		INNER JOIN family_members fm ON fm.family_id = f.id
		WHERE fm.user_id = $1
		ORDER BY fm.created_at ASC
		LIMIT 1
	`, userID).Scan(&family.ID, &family.CreatedBy, &family.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFamilyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	return &family, nil
}

func (r *FamilyRepository) IsMember(ctx context.Context, familyID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM family_members WHERE family_id = $1 AND user_id = $2)
	`, familyID, userID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *FamilyRepository) ListMembers(ctx context.Context, familyID uuid.UUID) ([]models.FamilyMember, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT fm.id, fm.family_id, fm.user_id, fm.role, fm.created_at, u.email, COALESCE(p.display_name, '')
		FROM family_members fm
		INNER JOIN users u ON u.id = fm.user_id
		LEFT JOIN profiles p ON p.user_id = fm.user_id
		WHERE fm.family_id = $1
		ORDER BY fm.created_at ASC
	`, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members := []models.FamilyMember{}
	for rows.Next() {
		var m models.FamilyMember
		if err := rows.Scan(&m.ID, &m.FamilyID, &m.UserID, &m.Role, &m.CreatedAt, &m.Email, &m.DisplayName); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
