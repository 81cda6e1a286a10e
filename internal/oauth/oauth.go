// Package oauth wraps third-party sign-in providers.
package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
)

var ErrUnverifiedEmail = errors.New("provider email is not verified")

// UserInfo is what a provider tells us about the person signing in.
// GivenName and FamilyName seed the profile on first sign-in.
type UserInfo struct {
	ID         string
	Email      string
	Name       string
	GivenName  string
	FamilyName string
	Provider   string
}

type Provider interface {
	GetConsentURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*UserInfo, error)
	Name() string
}

func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
