// Package toneguard classifies the emotional risk of co-parenting messages
// and proposes neutral rewrites.
package toneguard

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// ReasonUnavailable is reported whenever no classifier verdict could be obtained.
const ReasonUnavailable = "Tone check unavailable"

func ParseRisk(s string) (Risk, bool) {
	switch Risk(strings.ToLower(strings.TrimSpace(s))) {
	case RiskLow:
		return RiskLow, true
	case RiskMedium:
		return RiskMedium, true
	case RiskHigh:
		return RiskHigh, true
	}
	return "", false
}

func (r Risk) rank() int {
	switch r {
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	}
	return 0
}

// AtLeast reports whether r is as severe as other or more.
func (r Risk) AtLeast(other Risk) bool {
	return r.rank() >= other.rank()
}

// Flagged reports whether a message at this risk must be confirmed before sending.
func (r Risk) Flagged() bool {
	return r.AtLeast(RiskMedium)
}

type Verdict struct {
	Risk    Risk   `json:"risk"`
	Reason  string `json:"reason"`
	Rewrite string `json:"rewrite"`
}

func Unavailable() Verdict {
	return Verdict{Risk: RiskLow, Reason: ReasonUnavailable}
}

// Classifier is an opaque tone oracle, typically an LLM.
type Classifier interface {
	Classify(ctx context.Context, text string) (Verdict, error)
}

// Cache stores classifier verdicts by key.
type Cache interface {
	GetVerdict(ctx context.Context, key string) (*Verdict, error)
	SetVerdict(ctx context.Context, key string, v Verdict) error
}

// CacheKey derives the cache key for text under a given model.
func CacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(sum[:])
}
