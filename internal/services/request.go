package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/evenground/evenground-api/internal/models"
	"github.com/evenground/evenground-api/internal/repository"
	"github.com/evenground/evenground-api/internal/sse"
	"github.com/google/uuid"
)

var ErrInvalidStatus = errors.New("status must be pending, approved or declined")

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 50
	MaxListLimit       = 200
)

type CreateRequestInput struct {
	Type      string
	Details   *string
	StartDate string
	EndDate   *string
}

type RequestService struct {
	families  FamilyStore
	requests  RequestStore
	publisher EventPublisher
}

func NewRequestService(families FamilyStore, requests RequestStore, publisher EventPublisher) *RequestService {
	return &RequestService{
		families:  families,
		requests:  requests,
		publisher: publisherOrNop(publisher),
	}
}

func (s *RequestService) Types() []string {
	return append([]string(nil), models.RequestTypes...)
}

func (s *RequestService) Create(ctx context.Context, userID uuid.UUID, in CreateRequestInput) (*models.Request, error) {
	family, err := familyOf(ctx, s.families, userID)
	if err != nil {
		return nil, err
	}

	nr, err := models.BuildNewRequest(family.ID, userID, in.Type, in.Details, in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}

	req, err := s.requests.Create(ctx, nr)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	s.publisher.Publish(family.ID, sse.EventRequestCreated, map[string]string{
		"request_id":   req.ID.String(),
		"requested_by": userID.String(),
	})
	return req, nil
}

func (s *RequestService) Get(ctx context.Context, userID, requestID uuid.UUID) (*models.Request, error) {
	family, err := familyOf(ctx, s.families, userID)
	if err != nil {
		return nil, err
	}
	return s.requests.GetByID(ctx, requestID, family.ID)
}

// List returns the family's requests, newest first. An empty status means
// every status; a zero limit means no limit.
func (s *RequestService) List(ctx context.Context, userID uuid.UUID, status string, limit int) ([]models.Request, error) {
	family, err := familyOf(ctx, s.families, userID)
	if err != nil {
		return nil, err
	}

	filter := repository.RequestFilter{Limit: min(max(limit, 0), MaxListLimit)}
	if status = strings.TrimSpace(status); status != "" {
		st, ok := models.ParseRequestStatus(status)
		if !ok {
			return nil, ErrInvalidStatus
		}
		filter.Status = &st
	}

	reqs, err := s.requests.List(ctx, family.ID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return reqs, nil
}

// Decide approves or declines a pending request on behalf of the other
// parent. The store enforces who may decide and that it happens once.
func (s *RequestService) Decide(ctx context.Context, userID, requestID uuid.UUID, decision string) (*models.Request, error) {
	status, err := models.ParseDecision(decision)
	if err != nil {
		return nil, err
	}

	req, err := s.requests.Decide(ctx, requestID, userID, status)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(req.FamilyID, sse.EventRequestDecided, map[string]string{
		"request_id": req.ID.String(),
		"status":     string(req.Status),
		"decided_by": userID.String(),
	})
	return req, nil
}

