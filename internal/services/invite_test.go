package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/evenground/evenground-api/internal/models"
	"github.com/evenground/evenground-api/internal/repository"
	"github.com/evenground/evenground-api/internal/repository/memory"
	"github.com/evenground/evenground-api/internal/sse"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedProfiles map[uuid.UUID]string

func (f fixedProfiles) Get(_ context.Context, userID uuid.UUID) (*models.Profile, error) {
	name, ok := f[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return &models.Profile{UserID: userID, DisplayName: name}, nil
}

type inviteFixture struct {
	store     *memory.Store
	svc       *InviteService
	mailer    *recordingMailer
	publisher *recordingPublisher
	founder   uuid.UUID
	family    *models.Family
}

func inviteLink(token string) string {
	return "https://app.example.com/signup?token=" + token
}

func newInviteFixture(t *testing.T, ttl time.Duration) *inviteFixture {
	t.Helper()
	store := memory.NewStore()
	founder := uuid.New()
	family, err := store.Families().CreateForFounder(context.Background(), founder)
	require.NoError(t, err)

	mailer := &recordingMailer{}
	publisher := &recordingPublisher{}
	svc := NewInviteService(
		store.Families(), store.Invites(), fixedProfiles{founder: "Dana Reyes"},
		mailer, publisher,
		InviteServiceConfig{LinkURL: inviteLink, TTL: ttl}, nil,
	)
	return &inviteFixture{store, svc, mailer, publisher, founder, family}
}

func TestInviteService_Create(t *testing.T) {
	f := newInviteFixture(t, 168*time.Hour)

	res, err := f.svc.Create(context.Background(), f.founder, " CoParent@Example.com ")

	require.NoError(t, err)
	assert.Equal(t, f.family.ID, res.Invite.FamilyID)
	assert.Equal(t, "coparent@example.com", res.Invite.Email)
	assert.Equal(t, models.InviteStatusPending, res.Invite.Status)
	assert.Len(t, res.Invite.Token, 64)
	assert.Equal(t, inviteLink(res.Invite.Token), res.Link)
	require.NotNil(t, res.Invite.ExpiresAt)
	assert.True(t, res.EmailSent)

	sent := f.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "coparent@example.com", sent[0].To)
	assert.Contains(t, sent[0].HTML, res.Link)
	assert.Contains(t, sent[0].Text, "Dana Reyes")
}

func TestInviteService_Create_MailFailureStillCreatesInvite(t *testing.T) {
	f := newInviteFixture(t, 0)
	f.mailer.err = errors.New("smtp down")

	res, err := f.svc.Create(context.Background(), f.founder, "co@example.com")

	require.NoError(t, err)
	assert.False(t, res.EmailSent)
	assert.Nil(t, res.Invite.ExpiresAt)

	pending, err := f.svc.ListPending(context.Background(), f.founder)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestInviteService_Create_Errors(t *testing.T) {
	f := newInviteFixture(t, time.Hour)

	_, err := f.svc.Create(context.Background(), f.founder, "not an email")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = f.svc.Create(context.Background(), uuid.New(), "co@example.com")
	assert.ErrorIs(t, err, ErrNoFamily)
}

func TestInviteService_Create_TokensAreUnique(t *testing.T) {
	f := newInviteFixture(t, time.Hour)
	seen := map[string]bool{}

	for i := 0; i < 20; i++ {
		res, err := f.svc.Create(context.Background(), f.founder, "co@example.com")
		require.NoError(t, err)
		assert.False(t, seen[res.Invite.Token])
		seen[res.Invite.Token] = true
	}
}

func TestInviteService_Redeem(t *testing.T) {
	f := newInviteFixture(t, time.Hour)
	ctx := context.Background()
	res, err := f.svc.Create(ctx, f.founder, "co@example.com")
	require.NoError(t, err)
	partner := uuid.New()

	familyID, err := f.svc.Redeem(ctx, " "+res.Invite.Token+" ", partner)

	require.NoError(t, err)
	assert.Equal(t, f.family.ID, familyID)
	assert.Equal(t, 2, f.store.MemberCount(f.family.ID))
	assert.Equal(t, []string{sse.EventMemberJoined}, f.publisher.Types())

	_, err = f.svc.Redeem(ctx, res.Invite.Token, uuid.New())
	assert.ErrorIs(t, err, repository.ErrInviteAlreadyUsed)
}

func TestInviteService_Redeem_ConcurrentSingleWinner(t *testing.T) {
	f := newInviteFixture(t, time.Hour)
	ctx := context.Background()
	res, err := f.svc.Create(ctx, f.founder, "co@example.com")
	require.NoError(t, err)

	partner := uuid.New()
	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Redeem(ctx, res.Invite.Token, partner); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, repository.ErrInviteAlreadyUsed)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 2, f.store.MemberCount(f.family.ID))
}

func TestInviteService_Redeem_Errors(t *testing.T) {
	f := newInviteFixture(t, time.Hour)
	ctx := context.Background()

	_, err := f.svc.Redeem(ctx, "", uuid.New())
	assert.ErrorIs(t, err, repository.ErrInviteNotFound)

	_, err = f.svc.Redeem(ctx, "missing", uuid.New())
	assert.ErrorIs(t, err, repository.ErrInviteNotFound)

	res, err := f.svc.Create(ctx, f.founder, "co@example.com")
	require.NoError(t, err)
	f.store.SetClock(func() time.Time { return time.Now().Add(2 * time.Hour) })

	_, err = f.svc.Redeem(ctx, res.Invite.Token, uuid.New())
	assert.ErrorIs(t, err, repository.ErrInviteExpired)
	assert.Empty(t, f.publisher.Types())
}

func TestInviteService_Resend(t *testing.T) {
	f := newInviteFixture(t, time.Hour)
	ctx := context.Background()
	res, err := f.svc.Create(ctx, f.founder, "co@example.com")
	require.NoError(t, err)

	sent, err := f.svc.Resend(ctx, f.founder, "", res.Invite.Token)
	require.NoError(t, err)
	assert.True(t, sent)

	sent, err = f.svc.Resend(ctx, f.founder, "other@example.com", res.Invite.Token)
	require.NoError(t, err)
	assert.True(t, sent)

	mails := f.mailer.Sent()
	require.Len(t, mails, 3)
	assert.Equal(t, "co@example.com", mails[1].To)
	assert.Equal(t, "other@example.com", mails[2].To)
}

func TestInviteService_Resend_OtherFamilyOrUsed(t *testing.T) {
	f := newInviteFixture(t, time.Hour)
	ctx := context.Background()
	res, err := f.svc.Create(ctx, f.founder, "co@example.com")
	require.NoError(t, err)

	stranger := uuid.New()
	_, err = f.store.Families().CreateForFounder(ctx, stranger)
	require.NoError(t, err)

	_, err = f.svc.Resend(ctx, stranger, "", res.Invite.Token)
	assert.ErrorIs(t, err, repository.ErrInviteNotFound)

	_, err = f.svc.Redeem(ctx, res.Invite.Token, uuid.New())
	require.NoError(t, err)

	_, err = f.svc.Resend(ctx, f.founder, "", res.Invite.Token)
	assert.ErrorIs(t, err, repository.ErrInviteAlreadyUsed)
}

func TestInviteService_Resend_MailFailureNotPropagated(t *testing.T) {
	f := newInviteFixture(t, time.Hour)
	ctx := context.Background()
	res, err := f.svc.Create(ctx, f.founder, "co@example.com")
	require.NoError(t, err)
	f.mailer.err = errors.New("smtp down")

	sent, err := f.svc.Resend(ctx, f.founder, "", res.Invite.Token)

	assert.NoError(t, err)
	assert.False(t, sent)
}

func TestInviteService_Cancel(t *testing.T) {
	f := newInviteFixture(t, time.Hour)
	ctx := context.Background()
	res, err := f.svc.Create(ctx, f.founder, "co@example.com")
	require.NoError(t, err)

	require.NoError(t, f.svc.Cancel(ctx, f.founder, res.Invite.ID))
	assert.ErrorIs(t, f.svc.Cancel(ctx, f.founder, res.Invite.ID), repository.ErrInviteNotFound)

	_, err = f.svc.Redeem(ctx, res.Invite.Token, uuid.New())
	assert.ErrorIs(t, err, repository.ErrInviteNotFound)
}

func TestInviteService_Preview(t *testing.T) {
	f := newInviteFixture(t, time.Hour)
	ctx := context.Background()
	res, err := f.svc.Create(ctx, f.founder, "co@example.com")
	require.NoError(t, err)

	p, err := f.svc.Preview(ctx, res.Invite.Token)
	require.NoError(t, err)
	assert.Equal(t, "Dana Reyes", p.InviterName)
	assert.False(t, p.Expired)
	assert.True(t, strings.EqualFold(p.Invite.Email, "co@example.com"))

	_, err = f.svc.Preview(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrInviteNotFound)
}
