package services

import (
	"context"
	"fmt"
	"time"

	"github.com/evenground/evenground-api/internal/models"
	"github.com/evenground/evenground-api/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const UpcomingWindowDays = 7

type Dashboard struct {
	Family        *models.Family
	NeedsApproval []models.Request
	Upcoming      []models.Request
	Recent        []models.Request
}

type DashboardService struct {
	families    FamilyStore
	requests    RequestStore
	recentLimit int
}

func NewDashboardService(families FamilyStore, requests RequestStore) *DashboardService {
	return &DashboardService{families: families, requests: requests, recentLimit: DefaultRecentLimit}
}

// WithRecentLimit sets how many recent requests Build returns, clamped to
// [1, MaxRecentLimit].
func (s *DashboardService) WithRecentLimit(n int) *DashboardService {
	s.recentLimit = min(max(n, 1), MaxRecentLimit)
	return s
}

// Build assembles the caller's dashboard as of now. The three lists are
// independent reads and are never nil.
func (s *DashboardService) Build(ctx context.Context, userID uuid.UUID, now time.Time) (*Dashboard, error) {
	family, err := familyOf(ctx, s.families, userID)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{Family: family}
	from, to := models.UpcomingWindow(now, UpcomingWindowDays)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		reqs, err := s.requests.ListNeedsApproval(gctx, family.ID, userID)
		if err != nil {
			return fmt.Errorf("needs approval: %w", err)
		}
		d.NeedsApproval = reqs
		return nil
	})
	g.Go(func() error {
		reqs, err := s.requests.ListUpcoming(gctx, family.ID, from, to)
		if err != nil {
			return fmt.Errorf("upcoming: %w", err)
		}
		d.Upcoming = reqs
		return nil
	})
	g.Go(func() error {
		reqs, err := s.requests.List(gctx, family.ID, repository.RequestFilter{Limit: s.recentLimit})
		if err != nil {
			return fmt.Errorf("recent: %w", err)
		}
		d.Recent = reqs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}

	d.NeedsApproval = nonNil(d.NeedsApproval)
	d.Upcoming = nonNil(d.Upcoming)
	d.Recent = nonNil(d.Recent)
	return d, nil
}

func nonNil(reqs []models.Request) []models.Request {
	if reqs == nil {
		return []models.Request{}
	}
	return reqs
}
