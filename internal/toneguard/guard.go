package toneguard

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

const DefaultTimeout = 8 * time.Second

// Guard fronts a Classifier with a timeout, an optional verdict cache and the
// blame-phrase floor. It never returns an error: when the classifier cannot
// answer, the message is treated as low risk.
type Guard struct {
	classifier Classifier
	model      string
	cache      Cache
	timeout    time.Duration
	logger     *slog.Logger
}

type Option func(*Guard)

func WithCache(c Cache) Option {
	return func(g *Guard) { g.cache = c }
}

func WithTimeout(d time.Duration) Option {
	return func(g *Guard) {
		if d > 0 {
			g.timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithModel sets the model name mixed into cache keys.
func WithModel(model string) Option {
	return func(g *Guard) { g.model = model }
}

// NewGuard returns a Guard. A nil classifier leaves only the phrase floor.
func NewGuard(classifier Classifier, opts ...Option) *Guard {
	g := &Guard{
		classifier: classifier,
		model:      DefaultModel,
		timeout:    DefaultTimeout,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Guard) Check(ctx context.Context, text string) Verdict {
	text = strings.TrimSpace(text)
	return ApplyPhraseFloor(text, g.classify(ctx, text))
}

func (g *Guard) classify(ctx context.Context, text string) Verdict {
	if g.classifier == nil {
		return Unavailable()
	}

	key := CacheKey(g.model, text)
	if g.cache != nil {
		cached, err := g.cache.GetVerdict(ctx, key)
		if err != nil {
			g.logger.Warn("tone cache read failed", slog.String("error", err.Error()))
		} else if cached != nil {
			return *cached
		}
	}

	cctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	v, err := g.classifier.Classify(cctx, text)
	if err != nil {
		g.logger.Warn("tone check failed, allowing message",
			slog.String("error", err.Error()),
			slog.Duration("timeout", g.timeout),
		)
		return Unavailable()
	}

	if g.cache != nil {
		if err := g.cache.SetVerdict(ctx, key, v); err != nil {
			g.logger.Warn("tone cache write failed", slog.String("error", err.Error()))
		}
	}
	return v
}
