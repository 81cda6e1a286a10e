// Package memory is an in-process implementation of the repository stores.
// It follows the same rules as the PostgreSQL stores and backs service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/evenground/evenground-api/internal/models"
	"github.com/evenground/evenground-api/internal/repository"
	"github.com/google/uuid"
)

type Store struct {
	mu       sync.Mutex
	now      func() time.Time
	families map[uuid.UUID]*models.Family
	members  []models.FamilyMember
	invites  map[string]*models.FamilyInvite
	requests map[uuid.UUID]*models.Request
	messages []models.Message
	emails   map[uuid.UUID]string
	names    map[uuid.UUID]string
}

func NewStore() *Store {
	return &Store{
		now:      time.Now,
		families: make(map[uuid.UUID]*models.Family),
		invites:  make(map[string]*models.FamilyInvite),
		requests: make(map[uuid.UUID]*models.Request),
		emails:   make(map[uuid.UUID]string),
		names:    make(map[uuid.UUID]string),
	}
}

// SetClock replaces the store's time source.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// AddUser records the email and display name ListMembers reports for userID.
func (s *Store) AddUser(userID uuid.UUID, email, displayName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emails[userID] = email
	s.names[userID] = displayName
}

func (s *Store) Families() *Families { return &Families{s} }
func (s *Store) Invites() *Invites   { return &Invites{s} }
func (s *Store) Requests() *Requests { return &Requests{s} }
func (s *Store) Messages() *Messages { return &Messages{s} }

// MemberCount counts membership rows of familyID. Used by tests.
func (s *Store) MemberCount(familyID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.members {
		if m.FamilyID == familyID {
			n++
		}
	}
	return n
}

func (s *Store) isMember(familyID, userID uuid.UUID) bool {
	for _, m := range s.members {
		if m.FamilyID == familyID && m.UserID == userID {
			return true
		}
	}
	return false
}

func (s *Store) addMember(familyID, userID uuid.UUID, role string) {
	if s.isMember(familyID, userID) {
		return
	}
	s.members = append(s.members, models.FamilyMember{
		ID:        uuid.New(),
		FamilyID:  familyID,
		UserID:    userID,
		Role:      role,
		CreatedAt: s.now(),
	})
}

type Families struct{ s *Store }

func (f *Families) CreateForFounder(_ context.Context, userID uuid.UUID) (*models.Family, error) {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, fam := range s.families {
		if fam.CreatedBy == userID {
			s.addMember(fam.ID, userID, models.RoleFounder)
			cp := *fam
			return &cp, nil
		}
	}

	fam := &models.Family{ID: uuid.New(), CreatedBy: userID, CreatedAt: s.now()}
	s.families[fam.ID] = fam
	s.addMember(fam.ID, userID, models.RoleFounder)
	cp := *fam
	return &cp, nil
}

func (f *Families) GetByMember(_ context.Context, userID uuid.UUID) (*models.Family, error) {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.members {
		if m.UserID == userID {
			cp := *s.families[m.FamilyID]
			return &cp, nil
		}
	}
	return nil, repository.ErrFamilyNotFound
}

func (f *Families) IsMember(_ context.Context, familyID, userID uuid.UUID) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return f.s.isMember(familyID, userID), nil
}

func (f *Families) ListMembers(_ context.Context, familyID uuid.UUID) ([]models.FamilyMember, error) {
	s := f.s
	s.mu.Lock()
	defer s.mu.Unlock()

	members := []models.FamilyMember{}
	for _, m := range s.members {
		if m.FamilyID == familyID {
			m.Email = s.emails[m.UserID]
			m.DisplayName = s.names[m.UserID]
			members = append(members, m)
		}
	}
	return members, nil
}

type Invites struct{ s *Store }

func (i *Invites) Create(_ context.Context, familyID, invitedBy uuid.UUID, email, token string, expiresAt *time.Time) (*models.FamilyInvite, error) {
	s := i.s
	s.mu.Lock()
	defer s.mu.Unlock()

	inv := &models.FamilyInvite{
		ID:        uuid.New(),
		FamilyID:  familyID,
		Email:     email,
		Token:     token,
		Status:    models.InviteStatusPending,
		InvitedBy: invitedBy,
		ExpiresAt: expiresAt,
		CreatedAt: s.now(),
	}
	s.invites[token] = inv
	cp := *inv
	return &cp, nil
}

func (i *Invites) GetByToken(_ context.Context, token string) (*models.FamilyInvite, error) {
	i.s.mu.Lock()
	defer i.s.mu.Unlock()

	inv, ok := i.s.invites[token]
	if !ok {
		return nil, repository.ErrInviteNotFound
	}
	cp := *inv
	return &cp, nil
}

func (i *Invites) ListPending(_ context.Context, familyID uuid.UUID) ([]models.FamilyInvite, error) {
	s := i.s
	s.mu.Lock()
	defer s.mu.Unlock()

	invites := []models.FamilyInvite{}
	for _, inv := range s.invites {
		if inv.FamilyID == familyID && inv.IsPending() {
			invites = append(invites, *inv)
		}
	}
	sort.Slice(invites, func(a, b int) bool { return invites[a].CreatedAt.After(invites[b].CreatedAt) })
	return invites, nil
}

func (i *Invites) Redeem(_ context.Context, token string, userID uuid.UUID) (uuid.UUID, error) {
	s := i.s
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invites[token]
	switch {
	case !ok:
		return uuid.Nil, repository.ErrInviteNotFound
	case !inv.IsPending():
		return uuid.Nil, repository.ErrInviteAlreadyUsed
	case inv.IsExpired(s.now()):
		return uuid.Nil, repository.ErrInviteExpired
	}

	for _, m := range s.members {
		if m.UserID == userID && m.FamilyID != inv.FamilyID {
			return uuid.Nil, repository.ErrAlreadyInFamily
		}
	}

	now := s.now()
	inv.Status = models.InviteStatusAccepted
	inv.AcceptedBy = &userID
	inv.AcceptedAt = &now
	s.addMember(inv.FamilyID, userID, models.RoleParent)
	return inv.FamilyID, nil
}

func (i *Invites) Cancel(_ context.Context, inviteID, familyID uuid.UUID) error {
	s := i.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, inv := range s.invites {
		if inv.ID == inviteID && inv.FamilyID == familyID && inv.IsPending() {
			delete(s.invites, token)
			return nil
		}
	}
	return repository.ErrInviteNotFound
}

type Requests struct{ s *Store }

func (r *Requests) Create(_ context.Context, nr *models.NewRequest) (*models.Request, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	req := &models.Request{
		ID:          uuid.New(),
		FamilyID:    nr.FamilyID,
		RequestedBy: nr.RequestedBy,
		Type:        nr.Type,
		Details:     nr.Details,
		Status:      models.RequestStatusPending,
		StartDate:   nr.StartDate,
		EndDate:     nr.EndDate,
		CreatedAt:   s.now(),
	}
	s.requests[req.ID] = req
	cp := *req
	return &cp, nil
}

func (r *Requests) GetByID(_ context.Context, requestID, familyID uuid.UUID) (*models.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	req, ok := r.s.requests[requestID]
	if !ok || req.FamilyID != familyID {
		return nil, repository.ErrRequestNotFound
	}
	cp := *req
	return &cp, nil
}

func (r *Requests) selectWhere(keep func(*models.Request) bool) []models.Request {
	out := []models.Request{}
	for _, req := range r.s.requests {
		if keep(req) {
			out = append(out, *req)
		}
	}
	return out
}

func newestFirst(reqs []models.Request) {
	sort.SliceStable(reqs, func(a, b int) bool { return reqs[a].CreatedAt.After(reqs[b].CreatedAt) })
}

func (r *Requests) List(_ context.Context, familyID uuid.UUID, filter repository.RequestFilter) ([]models.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := r.selectWhere(func(req *models.Request) bool {
		return req.FamilyID == familyID && (filter.Status == nil || req.Status == *filter.Status)
	})
	newestFirst(out)
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *Requests) ListNeedsApproval(_ context.Context, familyID, userID uuid.UUID) ([]models.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := r.selectWhere(func(req *models.Request) bool {
		return req.FamilyID == familyID && req.Status == models.RequestStatusPending && req.RequestedBy != userID
	})
	newestFirst(out)
	return out, nil
}

func (r *Requests) ListUpcoming(_ context.Context, familyID uuid.UUID, from, to time.Time) ([]models.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := r.selectWhere(func(req *models.Request) bool {
		return req.FamilyID == familyID && req.Status == models.RequestStatusApproved &&
			!req.StartDate.Before(from) && !req.StartDate.After(to)
	})
	sort.SliceStable(out, func(a, b int) bool { return out[a].StartDate.Before(out[b].StartDate) })
	return out, nil
}

func (r *Requests) Decide(_ context.Context, requestID, deciderID uuid.UUID, status models.RequestStatus) (*models.Request, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if !status.IsTerminal() {
		return nil, models.ErrInvalidDecision
	}

	req, ok := s.requests[requestID]
	if !ok || !s.isMember(req.FamilyID, deciderID) {
		return nil, repository.ErrRequestNotFound
	}
	if req.RequestedBy == deciderID {
		return nil, repository.ErrSelfDecision
	}
	if !req.Status.CanTransitionTo(status) {
		return nil, repository.ErrRequestAlreadyDecided
	}

	now := s.now()
	req.Status = status
	req.DecidedBy = &deciderID
	req.DecidedAt = &now
	cp := *req
	return &cp, nil
}

type Messages struct{ s *Store }

func (m *Messages) Create(_ context.Context, requestID, userID uuid.UUID, content string) (*models.Message, error) {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[requestID]
	if !ok || !s.isMember(req.FamilyID, userID) {
		return nil, repository.ErrRequestNotFound
	}

	msg := models.Message{
		ID:        uuid.New(),
		RequestID: requestID,
		UserID:    userID,
		Content:   content,
		CreatedAt: s.now(),
	}
	s.messages = append(s.messages, msg)
	return &msg, nil
}

func (m *Messages) ListByRequest(_ context.Context, requestID uuid.UUID) ([]models.Message, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	out := []models.Message{}
	for _, msg := range m.s.messages {
		if msg.RequestID == requestID {
			out = append(out, msg)
		}
	}
	return out, nil
}
