package toneguard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClassifier struct {
	mu      sync.Mutex
	verdict Verdict
	err     error
	block   bool
	calls   int
}

func (s *stubClassifier) Classify(ctx context.Context, _ string) (Verdict, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.block {
		<-ctx.Done()
		return Verdict{}, ctx.Err()
	}
	return s.verdict, s.err
}

type mapCache struct {
	mu   sync.Mutex
	data map[string]Verdict
}

func (m *mapCache) GetVerdict(_ context.Context, key string) (*Verdict, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return &v, nil
	}
	return nil, nil
}

func (m *mapCache) SetVerdict(_ context.Context, key string, v Verdict) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = v
	return nil
}

func TestGuard_PassesClassifierVerdict(t *testing.T) {
	stub := &stubClassifier{verdict: Verdict{Risk: RiskHigh, Reason: "Threat", Rewrite: "Let's discuss."}}
	g := NewGuard(stub)

	v := g.Check(context.Background(), "I will take the kids and you won't see them")

	assert.Equal(t, RiskHigh, v.Risk)
	assert.Equal(t, "Let's discuss.", v.Rewrite)
}

func TestGuard_FailsOpenOnError(t *testing.T) {
	g := NewGuard(&stubClassifier{err: errors.New("boom")})

	v := g.Check(context.Background(), "Can you confirm pickup at 5pm Friday?")

	assert.Equal(t, Unavailable(), v)
}

func TestGuard_FailsOpenOnTimeout(t *testing.T) {
	g := NewGuard(&stubClassifier{block: true}, WithTimeout(20*time.Millisecond))

	start := time.Now()
	v := g.Check(context.Background(), "Can you confirm pickup at 5pm Friday?")

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, RiskLow, v.Risk)
	assert.Equal(t, ReasonUnavailable, v.Reason)
}

func TestGuard_PhraseFloorAppliesWhenUnavailable(t *testing.T) {
	g := NewGuard(&stubClassifier{err: errors.New("down")})

	v := g.Check(context.Background(), "You always forget the school forms")

	assert.True(t, v.Risk.AtLeast(RiskMedium))
}

func TestGuard_PhraseFloorOverridesLowVerdict(t *testing.T) {
	g := NewGuard(&stubClassifier{verdict: Verdict{Risk: RiskLow, Reason: "Neutral"}})

	v := g.Check(context.Background(), "It's your fault we were late")

	assert.Equal(t, RiskMedium, v.Risk)
}

func TestGuard_NilClassifierUsesPhrasesOnly(t *testing.T) {
	g := NewGuard(nil)

	assert.Equal(t, RiskLow, g.Check(context.Background(), "Can you confirm pickup at 5pm Friday?").Risk)
	assert.Equal(t, RiskMedium, g.Check(context.Background(), "you NEVER answer").Risk)
}

func TestGuard_CachesVerdicts(t *testing.T) {
	stub := &stubClassifier{verdict: Verdict{Risk: RiskMedium, Reason: "Frustrated", Rewrite: "Please reply."}}
	cache := &mapCache{data: map[string]Verdict{}}
	g := NewGuard(stub, WithCache(cache))

	first := g.Check(context.Background(), "Answer me already")
	second := g.Check(context.Background(), "  Answer me already  ")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, stub.calls)
	require.Len(t, cache.data, 1)
}

func TestGuard_DoesNotCacheFailures(t *testing.T) {
	stub := &stubClassifier{err: errors.New("down")}
	cache := &mapCache{data: map[string]Verdict{}}
	g := NewGuard(stub, WithCache(cache))

	g.Check(context.Background(), "hello")
	g.Check(context.Background(), "hello")

	assert.Equal(t, 2, stub.calls)
	assert.Empty(t, cache.data)
}
