package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/evenground/evenground-api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTokenService(t *testing.T) (*TokenService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewTokenService(db), mock
}

func TestTokenService_StoreRefreshToken(t *testing.T) {
	svc, mock := setupTokenService(t)
	ctx := context.Background()
	userID := uuid.New()
	tokenHash := "abc123hash"
	expiresAt := time.Now().Add(24 * time.Hour)

	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(userID, tokenHash, expiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := svc.StoreRefreshToken(ctx, userID, tokenHash, expiresAt)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenService_ConsumeRefreshToken_Valid(t *testing.T) {
	svc, mock := setupTokenService(t)
	ctx := context.Background()
	userID := uuid.New()
	tokenHash := "valid-hash"

	mock.ExpectQuery(`DELETE FROM refresh_tokens\s+WHERE token_hash = \$1 AND expires_at > NOW\(\)\s+RETURNING user_id`).
		WithArgs(tokenHash).
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}).AddRow(userID))

	result, err := svc.ConsumeRefreshToken(ctx, tokenHash)

	assert.NoError(t, err)
	assert.Equal(t, userID, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenService_ConsumeRefreshToken_ReplayOrExpired(t *testing.T) {
	svc, mock := setupTokenService(t)
	ctx := context.Background()
	tokenHash := "used-hash"

	mock.ExpectQuery(`DELETE FROM refresh_tokens`).
		WithArgs(tokenHash).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.ConsumeRefreshToken(ctx, tokenHash)

	assert.True(t, errors.Is(err, pgx.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenService_RevokeRefreshToken(t *testing.T) {
	svc, mock := setupTokenService(t)
	ctx := context.Background()
	tokenHash := "to-be-revoked"

	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE token_hash`).
		WithArgs(tokenHash).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := svc.RevokeRefreshToken(ctx, tokenHash)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenService_RevokeAllUserTokens(t *testing.T) {
	svc, mock := setupTokenService(t)
	ctx := context.Background()
	userID := uuid.New()

	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE user_id`).
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	err := svc.RevokeAllUserTokens(ctx, userID)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenService_StoreLoginToken(t *testing.T) {
	svc, mock := setupTokenService(t)
	ctx := context.Background()
	expiresAt := time.Now().Add(15 * time.Minute)

	mock.ExpectExec(`INSERT INTO login_tokens`).
		WithArgs("login-hash", "parent@example.com", expiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := svc.StoreLoginToken(ctx, "login-hash", "parent@example.com", expiresAt)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenService_ConsumeLoginToken(t *testing.T) {
	testCases := []struct {
		name      string
		expiresAt time.Time
		queryErr  error
		wantEmail string
		wantErr   error
	}{
		{
			name:      "live token",
			expiresAt: time.Now().Add(10 * time.Minute),
			wantEmail: "parent@example.com",
		},
		{
			name:      "expired token",
			expiresAt: time.Now().Add(-time.Minute),
			wantErr:   ErrInvalidLoginToken,
		},
		{
			name:     "unknown or already used",
			queryErr: pgx.ErrNoRows,
			wantErr:  ErrInvalidLoginToken,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, mock := setupTokenService(t)

			q := mock.ExpectQuery(`DELETE FROM login_tokens WHERE token_hash = \$1\s+RETURNING email, expires_at`).
				WithArgs("login-hash")
			if tc.queryErr != nil {
				q.WillReturnError(tc.queryErr)
			} else {
				q.WillReturnRows(pgxmock.NewRows([]string{"email", "expires_at"}).
					AddRow("parent@example.com", tc.expiresAt))
			}

			email, err := svc.ConsumeLoginToken(context.Background(), "login-hash")

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.wantEmail, email)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTokenService_CleanupExpired(t *testing.T) {
	svc, mock := setupTokenService(t)
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE expires_at < NOW`).
		WillReturnResult(pgxmock.NewResult("DELETE", 5))
	mock.ExpectExec(`DELETE FROM login_tokens WHERE expires_at < NOW`).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	err := svc.CleanupExpired(ctx)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
