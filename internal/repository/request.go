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

const requestColumns = `id, family_id, requested_by, type, details, status, start_date, end_date, decided_by, decided_at, created_at`

// RequestFilter narrows List. A zero Limit means no limit.
type RequestFilter struct {
	Status *models.RequestStatus
	Limit  int
}

type RequestRepository struct {
	db *database.DB
}

func NewRequestRepository(db *database.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

func scanRequest(row pgx.Row) (*models.Request, error) {
	var req models.Request
	var status string
	err := row.Scan(
		&req.ID, &req.FamilyID, &req.RequestedBy, &req.Type, &req.Details, &status,
		&req.StartDate, &req.EndDate, &req.DecidedBy, &req.DecidedAt, &req.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	req.Status = models.RequestStatus(status)
	return &req, nil
}

func collectRequests(rows pgx.Rows) ([]models.Request, error) {
	defer rows.Close()

	requests := []models.Request{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}

func (r *RequestRepository) Create(ctx context.Context, nr *models.NewRequest) (*models.Request, error) {
	req, err := scanRequest(r.db.Pool.QueryRow(ctx, `
		INSERT INTO requests (family_id, requested_by, type, details, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+requestColumns,
		nr.FamilyID, nr.RequestedBy, nr.Type, nr.Details, nr.StartDate, nr.EndDate))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return req, nil
}

func (r *RequestRepository) GetByID(ctx context.Context, requestID, familyID uuid.UUID) (*models.Request, error) {
	req, err := scanRequest(r.db.Pool.QueryRow(ctx, `
		SELECT `+requestColumns+`
		FROM requests WHERE id = $1 AND family_id = $2
	`, requestID, familyID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return req, nil
}

// List returns the family's requests, newest first.
func (r *RequestRepository) List(ctx context.Context, familyID uuid.UUID, filter RequestFilter) ([]models.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE family_id = $1`
	args := []any{familyID}

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return collectRequests(rows)
}

// ListNeedsApproval returns pending requests userID did not file.
func (r *RequestRepository) ListNeedsApproval(ctx context.Context, familyID, userID uuid.UUID) ([]models.Request, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+requestColumns+`
		FROM requests
		WHERE family_id = $1 AND status = 'pending' AND requested_by <> $2
		ORDER BY created_at DESC
	`, familyID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	return collectRequests(rows)
}

// ListUpcoming returns approved requests starting within [from, to], soonest first.
func (r *RequestRepository) ListUpcoming(ctx context.Context, familyID uuid.UUID, from, to time.Time) ([]models.Request, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+requestColumns+`
		FROM requests
		WHERE family_id = $1 AND status = 'approved' AND start_date >= $2 AND start_date <= $3
		ORDER BY start_date ASC, created_at ASC
	`, familyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming requests: %w", err)
	}
	return collectRequests(rows)
}

// Decide moves a pending request to status in a single conditional update.
// The decider must belong to the request's family and must not be the requester.
func (r *RequestRepository) Decide(ctx context.Context, requestID, deciderID uuid.UUID, status models.RequestStatus) (*models.Request, error) {
	if !status.IsTerminal() {
		return nil, models.ErrInvalidDecision
	}

	req, err := scanRequest(r.db.Pool.QueryRow(ctx, `
		UPDATE requests r
		SET status = $3, decided_by = $2, decided_at = NOW()
		WHERE r.id = $1
			AND r.status = 'pending'
			AND r.requested_by <> $2
			AND EXISTS (
				SELECT 1 FROM family_members fm
				WHERE fm.family_id = r.family_id AND fm.user_id = $2
			)
		RETURNING `+requestColumns,
		requestID, deciderID, string(status)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.diagnoseDecision(ctx, requestID, deciderID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decide request: %w", err)
	}
	return req, nil
}

func (r *RequestRepository) diagnoseDecision(ctx context.Context, requestID, deciderID uuid.UUID) error {
	var requestedBy uuid.UUID
	var status string
	var member bool
	err := r.db.Pool.QueryRow(ctx, `
		SELECT r.requested_by, r.status, EXISTS (
			SELECT 1 FROM family_members fm
			WHERE fm.family_id = r.family_id AND fm.user_id = $2
		)
		FROM requests r WHERE r.id = $1
	`, requestID, deciderID).Scan(&requestedBy, &status, &member)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrRequestNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get request: %w", err)
	}

	switch {
	case !member:
		return ErrRequestNotFound
	case requestedBy == deciderID:
		return ErrSelfDecision
	default:
		return ErrRequestAlreadyDecided
	}
}
