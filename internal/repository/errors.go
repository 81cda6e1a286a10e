// Package repository holds the PostgreSQL stores for families, invites,
// requests and message threads.
package repository

import (
	"errors"

	"github.com/evenground/evenground-api/internal/models"
)

var (
	ErrFamilyNotFound    = errors.New("family not found")
	ErrAlreadyInFamily   = errors.New("user already belongs to another family")
	ErrInviteNotFound    = errors.New("invite not found")
	ErrInviteExpired     = errors.New("invite has expired")
	ErrInviteAlreadyUsed = errors.New("invite has already been used")

	ErrRequestNotFound       = errors.New("request not found")
	ErrRequestAlreadyDecided = errors.New("request has already been decided")
	ErrSelfDecision          = models.ErrSelfDecision
)
