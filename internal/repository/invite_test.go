package repository

import (
	"context"
	"testing"
	"time"

	"github.com/evenground/evenground-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInviteRepository_Redeem_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewInviteRepository(db)
	userID := uuid.New()
	familyID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE family_invites`).
		WithArgs("tok", userID).
		WillReturnRows(pgxmock.NewRows([]string{"family_id"}).AddRow(familyID))
	mock.ExpectQuery(`family_id <> \$2`).
		WithArgs(userID, familyID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO family_members`).
		WithArgs(familyID, userID, models.RoleParent).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	got, err := repo.Redeem(context.Background(), "tok", userID)

	require.NoError(t, err)
	assert.Equal(t, familyID, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInviteRepository_Redeem_Diagnosis(t *testing.T) {
	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name      string
		status    string
		expiresAt *time.Time
		missing   bool
		want      error
	}{
		{name: "missing token", missing: true, want: ErrInviteNotFound},
		{name: "already accepted", status: models.InviteStatusAccepted, want: ErrInviteAlreadyUsed},
		{name: "expired", status: models.InviteStatusPending, expiresAt: &past, want: ErrInviteExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewInviteRepository(db)
			userID := uuid.New()

			mock.ExpectBegin()
			mock.ExpectQuery(`UPDATE family_invites`).
				WithArgs("tok", userID).
				WillReturnError(pgx.ErrNoRows)
			diag := mock.ExpectQuery(`SELECT status, expires_at FROM family_invites`).WithArgs("tok")
			if tt.missing {
				diag.WillReturnError(pgx.ErrNoRows)
			} else {
				diag.WillReturnRows(pgxmock.NewRows([]string{"status", "expires_at"}).AddRow(tt.status, tt.expiresAt))
			}
			mock.ExpectRollback()

			_, err := repo.Redeem(context.Background(), "tok", userID)

			assert.ErrorIs(t, err, tt.want)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestInviteRepository_Redeem_AlreadyInAnotherFamily(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewInviteRepository(db)
	userID := uuid.New()
	familyID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE family_invites`).
		WithArgs("tok", userID).
		WillReturnRows(pgxmock.NewRows([]string{"family_id"}).AddRow(familyID))
	mock.ExpectQuery(`family_id <> \$2`).
		WithArgs(userID, familyID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, err := repo.Redeem(context.Background(), "tok", userID)

	assert.ErrorIs(t, err, ErrAlreadyInFamily)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInviteRepository_Cancel_NotPending(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewInviteRepository(db)
	inviteID := uuid.New()
	familyID := uuid.New()

	mock.ExpectExec(`DELETE FROM family_invites`).
		WithArgs(inviteID, familyID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Cancel(context.Background(), inviteID, familyID)

	assert.ErrorIs(t, err, ErrInviteNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInviteRepository_GetByToken(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewInviteRepository(db)
	inviteID := uuid.New()
	familyID := uuid.New()
	inviter := uuid.New()
	expires := time.Now().Add(24 * time.Hour)

	rows := pgxmock.NewRows([]string{"id", "family_id", "email", "token", "status", "invited_by", "accepted_by", "accepted_at", "expires_at", "created_at"}).
		AddRow(inviteID, familyID, "co@example.com", "tok", models.InviteStatusPending, inviter, nil, nil, &expires, time.Now())
	mock.ExpectQuery(`FROM family_invites WHERE token`).
		WithArgs("tok").
		WillReturnRows(rows)

	inv, err := repo.GetByToken(context.Background(), "tok")

	require.NoError(t, err)
	assert.Equal(t, inviteID, inv.ID)
	assert.True(t, inv.IsPending())
	assert.Nil(t, inv.AcceptedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}
