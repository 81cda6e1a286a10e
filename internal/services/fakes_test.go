package services

import (
	"context"
	"sync"
	"time"

	"github.com/evenground/evenground-api/internal/models"
	"github.com/evenground/evenground-api/internal/toneguard"
	"github.com/google/uuid"
)

type sentMail struct {
	To, Subject, HTML, Text string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *recordingMailer) Send(_ context.Context, to, subject, htmlBody, textBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, subject, htmlBody, textBody})
	return nil
}

func (m *recordingMailer) Sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

type publishedEvent struct {
	FamilyID uuid.UUID
	Type     string
	Data     any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(familyID uuid.UUID, eventType string, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{familyID, eventType, data})
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type stubTone struct {
	verdict toneguard.Verdict
	calls   int
}

func (s *stubTone) Check(_ context.Context, _ string) toneguard.Verdict {
	s.calls++
	return s.verdict
}

type memLoginTokens struct {
	mu     sync.Mutex
	tokens map[string]struct {
		email     string
		expiresAt time.Time
	}
}

func newMemLoginTokens() *memLoginTokens {
	return &memLoginTokens{tokens: make(map[string]struct {
		email     string
		expiresAt time.Time
	})}
}

func (m *memLoginTokens) StoreLoginToken(_ context.Context, hash, email string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[hash] = struct {
		email     string
		expiresAt time.Time
	}{email, expiresAt}
	return nil
}

func (m *memLoginTokens) ConsumeLoginToken(_ context.Context, hash string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[hash]
	if !ok {
		return "", ErrInvalidLoginToken
	}
	delete(m.tokens, hash)
	if !time.Now().Before(t.expiresAt) {
		return "", ErrInvalidLoginToken
	}
	return t.email, nil
}

type memEmailUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func (m *memEmailUsers) FindOrCreateByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.users == nil {
		m.users = make(map[string]*models.User)
	}
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	u := &models.User{ID: uuid.New(), Email: email, Provider: models.ProviderEmail}
	m.users[email] = u
	return u, nil
}
