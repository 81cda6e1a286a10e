package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evenground/evenground-api/internal/database"
	"github.com/evenground/evenground-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const inviteColumns = `id, family_id, email, token, status, invited_by, accepted_by, accepted_at, expires_at, created_at`

type InviteRepository struct {
	db *database.DB
}

func NewInviteRepository(db *database.DB) *InviteRepository {
	return &InviteRepository{db: db}
}

func scanInvite(row pgx.Row) (*models.FamilyInvite, error) {
	var inv models.FamilyInvite
	err := row.Scan(
		&inv.ID, &inv.FamilyID, &inv.Email, &inv.Token, &inv.Status,
		&inv.InvitedBy, &inv.AcceptedBy, &inv.AcceptedAt, &inv.ExpiresAt, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InviteRepository) Create(ctx context.Context, familyID, invitedBy uuid.UUID, email, token string, expiresAt *time.Time) (*models.FamilyInvite, error) {
	inv, err := scanInvite(r.db.Pool.QueryRow(ctx, `
		INSERT INTO family_invites (family_id, email, token, invited_by, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+inviteColumns,
		familyID, email, token, invitedBy, expiresAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}
	return inv, nil
}

func (r *InviteRepository) GetByToken(ctx context.Context, token string) (*models.FamilyInvite, error) {
	inv, err := scanInvite(r.db.Pool.QueryRow(ctx, `
		SELECT `+inviteColumns+`
		FROM family_invites WHERE token = $1
	`, token))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInviteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	return inv, nil
}

func (r *InviteRepository) ListPending(ctx context.Context, familyID uuid.UUID) ([]models.FamilyInvite, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+inviteColumns+`
		FROM family_invites
		WHERE family_id = $1 AND status = 'pending'
		ORDER BY created_at DESC
	`, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	defer rows.Close()

	invites := []models.FamilyInvite{}
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invite: %w", err)
		}
		invites = append(invites, *inv)
	}
	return invites, rows.Err()
}

// Redeem flips a pending, unexpired invite to accepted and adds userID to the
// invite's family as a parent, both in one transaction. The status flip is a
// compare-and-swap so concurrent redemptions of one token produce one winner.
func (r *InviteRepository) Redeem(ctx context.Context, token string, userID uuid.UUID) (uuid.UUID, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var familyID uuid.UUID
	err = tx.QueryRow(ctx, `
		UPDATE family_invites
		SET status = 'accepted', accepted_by = $2, accepted_at = NOW()
		WHERE token = $1 AND status = 'pending' AND (expires_at IS NULL OR expires_at > NOW())
		RETURNING family_id
	`, token, userID).Scan(&familyID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, r.diagnoseRedeem(ctx, tx, token)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to accept invite: %w", err)
	}

	var otherFamily bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM family_members WHERE user_id = $1 AND family_id <> $2)
	`, userID, familyID).Scan(&otherFamily)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if otherFamily {
		return uuid.Nil, ErrAlreadyInFamily
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO family_members (family_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (family_id, user_id) DO NOTHING
	`, familyID, userID, models.RoleParent)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to add member: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return familyID, nil
}

func (r *InviteRepository) diagnoseRedeem(ctx context.Context, tx pgx.Tx, token string) error {
	var status string
	var expiresAt *time.Time
	err := tx.QueryRow(ctx, `
		SELECT status, expires_at FROM family_invites WHERE token = $1
	`, token).Scan(&status, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrInviteNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get invite: %w", err)
	}

	if status != models.InviteStatusPending {
		return ErrInviteAlreadyUsed
	}
	return ErrInviteExpired
}

// Cancel deletes a pending invite belonging to familyID.
func (r *InviteRepository) Cancel(ctx context.Context, inviteID, familyID uuid.UUID) error {
	result, err := r.db.Pool.Exec(ctx, `
		DELETE FROM family_invites
		WHERE id = $1 AND family_id = $2 AND status = 'pending'
	`, inviteID, familyID)
	if err != nil {
		return fmt.Errorf("failed to cancel invite: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrInviteNotFound
	}
	return nil
}
