package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/evenground/evenground-api/internal/models"
	"github.com/evenground/evenground-api/internal/repository"
	"github.com/google/uuid"
)

type FamilyService struct {
	families FamilyStore
}

func NewFamilyService(families FamilyStore) *FamilyService {
	return &FamilyService{families: families}
}

// Create makes userID the founder of a new family. Repeating the call returns
// the same family; a parent who already joined someone else's family gets
// repository.ErrAlreadyInFamily.
func (s *FamilyService) Create(ctx context.Context, userID uuid.UUID) (*models.Family, error) {
	existing, err := s.families.GetByMember(ctx, userID)
	switch {
	case err == nil:
		if existing.CreatedBy != userID {
			return nil, repository.ErrAlreadyInFamily
		}
		return existing, nil
	case !errors.Is(err, repository.ErrFamilyNotFound):
		return nil, fmt.Errorf("failed to look up family: %w", err)
	}

	return s.families.CreateForFounder(ctx, userID)
}

// familyOf resolves the family userID belongs to, or ErrNoFamily.
func familyOf(ctx context.Context, families FamilyStore, userID uuid.UUID) (*models.Family, error) {
	family, err := families.GetByMember(ctx, userID)
	if errors.Is(err, repository.ErrFamilyNotFound) {
		return nil, ErrNoFamily
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve family: %w", err)
	}
	return family, nil
}

func (s *FamilyService) Current(ctx context.Context, userID uuid.UUID) (*models.Family, error) {
	return familyOf(ctx, s.families, userID)
}

func (s *FamilyService) Members(ctx context.Context, userID uuid.UUID) ([]models.FamilyMember, error) {
	family, err := s.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	members, err := s.families.ListMembers(ctx, family.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}
