package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/evenground/evenground-api/internal/models"
	"github.com/evenground/evenground-api/internal/repository"
	"github.com/evenground/evenground-api/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
)

var badRequestErrors = []error{
	models.ErrTypeRequired,
	models.ErrTypeTooLong,
	models.ErrStartDateRequired,
	models.ErrInvalidDate,
	models.ErrEndBeforeStart,
	models.ErrInvalidDecision,
	services.ErrInvalidStatus,
	services.ErrEmptyMessage,
	services.ErrMessageTooLong,
	services.ErrInvalidChoice,
	services.ErrInvalidEmail,
	services.ErrWeakPassword,
	services.ErrFirstNameRequired,
	services.ErrNameTooLong,
}

var notFoundErrors = []error{
	services.ErrNoFamily,
	services.ErrProfileNotFound,
	repository.ErrFamilyNotFound,
	repository.ErrInviteNotFound,
	repository.ErrRequestNotFound,
}

var conflictErrors = []error{
	repository.ErrInviteAlreadyUsed,
	repository.ErrRequestAlreadyDecided,
	repository.ErrAlreadyInFamily,
	services.ErrEmailTaken,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondError maps a service error to a response. Unknown errors are logged
// with op and answered with a generic 500.
func respondError(c *drift.Context, logger *slog.Logger, op string, err error) {
	switch {
	case isAny(err, badRequestErrors):
		c.BadRequest(err.Error())
	case isAny(err, notFoundErrors):
		c.NotFound(err.Error())
	case isAny(err, conflictErrors):
		_ = c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, repository.ErrInviteExpired):
		_ = c.JSON(http.StatusGone, map[string]string{"error": err.Error()})
	case errors.Is(err, repository.ErrSelfDecision):
		c.Forbidden(err.Error())
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidLoginToken):
		c.Unauthorized(err.Error())
	default:
		logger.Error(op+" failed", slog.String("error", err.Error()))
		c.InternalServerError(op + " failed")
	}
}
