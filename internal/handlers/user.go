package handlers

import (
	"errors"
	"log/slog"

	"github.com/evenground/evenground-api/internal/models"
	"github.com/evenground/evenground-api/internal/services"
	"github.com/evenground/evenground-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type UserHandler struct {
	userService    UserServiceInterface
	profileService ProfileServiceInterface
	logger         *slog.Logger
}

func NewUserHandler(userService UserServiceInterface, profileService ProfileServiceInterface, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{userService: userService, profileService: profileService, logger: logger}
}

func (h *UserHandler) GetMe(c *drift.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	user, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		c.NotFound("user not found")
		return
	}

	var profile *models.Profile
	if p, err := h.profileService.Get(ctx, userID); err == nil {
		profile = p
	} else if !errors.Is(err, services.ErrProfileNotFound) {
		h.logger.Warn("profile lookup failed", slog.String("error", err.Error()), slog.String("user_id", userID.String()))
	}

	_ = c.JSON(200, userResponse(user, profile))
}

func (h *UserHandler) GetProfile(c *drift.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	profile, err := h.profileService.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, "get profile", err)
		return
	}

	_ = c.JSON(200, profileResponse(profile))
}

// UpdateProfile creates the profile on first call, as part of onboarding.
func (h *UserHandler) UpdateProfile(c *drift.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	profile, err := h.profileService.Upsert(c.Request.Context(), userID, req.FirstName, req.LastName)
	if err != nil {
		respondError(c, h.logger, "update profile", err)
		return
	}

	_ = c.JSON(200, profileResponse(profile))
}
