package handlers

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/evenground/evenground-api/internal/config"
	"github.com/evenground/evenground-api/internal/middleware"
	"github.com/evenground/evenground-api/internal/models"
	"github.com/evenground/evenground-api/internal/oauth"
	"github.com/evenground/evenground-api/internal/repository"
	"github.com/evenground/evenground-api/internal/services"
	"github.com/evenground/evenground-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	stateTTL    = 10 * time.Minute
	authCodeTTL = 30 * time.Second
)

type AuthHandler struct {
	cfg            *config.Config
	providers      map[string]oauth.Provider
	userService    UserServiceInterface
	profileService ProfileServiceInterface
	tokenService   TokenServiceInterface
	jwtService     JWTServiceInterface
	magicLinks     MagicLinkServiceInterface
	inviteService  InviteServiceInterface
	logger         *slog.Logger
	states         sync.Map
	authCodes      sync.Map
}

type stateData struct {
	expiresAt time.Time
}

type authCodeData struct {
	userID    uuid.UUID
	expiresAt time.Time
}

func NewAuthHandler(
	cfg *config.Config,
	userService UserServiceInterface,
	profileService ProfileServiceInterface,
	tokenService TokenServiceInterface,
	jwtService JWTServiceInterface,
	magicLinks MagicLinkServiceInterface,
	inviteService InviteServiceInterface,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &AuthHandler{
		cfg:            cfg,
		providers:      make(map[string]oauth.Provider),
		userService:    userService,
		profileService: profileService,
		tokenService:   tokenService,
		jwtService:     jwtService,
		magicLinks:     magicLinks,
		inviteService:  inviteService,
		logger:         logger,
	}

	if google := oauth.NewGoogleProvider(cfg.Google); google.IsConfigured() {
		h.providers[google.Name()] = google
	}

	go h.cleanupStates()

	return h
}

func (h *AuthHandler) cleanupStates() {
	ticker := time.NewTicker(1 * time.Minute)
	for range ticker.C {
		h.sweep(time.Now())
	}
}

func (h *AuthHandler) sweep(now time.Time) {
	h.states.Range(func(key, value any) bool {
		if sd, ok := value.(stateData); ok && now.After(sd.expiresAt) {
			h.states.Delete(key)
		}
		return true
	})
	h.authCodes.Range(func(key, value any) bool {
		if acd, ok := value.(authCodeData); ok && now.After(acd.expiresAt) {
			h.authCodes.Delete(key)
		}
		return true
	})
}

// issueTokens creates a session for user and records its refresh token.
func (h *AuthHandler) issueTokens(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	pair, err := h.jwtService.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	expiresAt := time.Now().Add(h.jwtService.RefreshExpiry())
	if err := h.tokenService.StoreRefreshToken(ctx, user.ID, services.HashToken(pair.RefreshToken), expiresAt); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

func (h *AuthHandler) respondWithTokens(c *drift.Context, user *models.User) {
	tokens, err := h.issueTokens(c.Request.Context(), user)
	if err != nil {
		h.logger.Error("token issue failed", slog.String("error", err.Error()), slog.String("user_id", user.ID.String()))
		c.InternalServerError("failed to generate tokens")
		return
	}
	_ = c.JSON(200, tokens)
}

func (h *AuthHandler) Signup(c *drift.Context) {
	var req dto.SignupRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	ctx := c.Request.Context()

	user, err := h.userService.Register(ctx, req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, "signup", err)
		return
	}

	if err := h.profileService.SeedIfMissing(ctx, user.ID, req.FirstName, req.LastName); err != nil {
		h.logger.Warn("profile not seeded at signup", slog.String("error", err.Error()), slog.String("user_id", user.ID.String()))
	}

	tokens, err := h.issueTokens(ctx, user)
	if err != nil {
		h.logger.Error("token issue failed", slog.String("error", err.Error()), slog.String("user_id", user.ID.String()))
		c.InternalServerError("failed to generate tokens")
		return
	}

	resp := dto.SignupResponse{TokenResponse: *tokens, User: userResponse(user, nil)}

	// The account stands even if the invite cannot be redeemed.
	if token := strings.TrimSpace(req.Token); token != "" {
		familyID, err := h.inviteService.Redeem(ctx, token, user.ID)
		switch {
		case err == nil:
			resp.FamilyID = &familyID
		case isAny(err, inviteErrors):
			resp.InviteError = err.Error()
		default:
			h.logger.Error("invite redemption at signup failed", slog.String("error", err.Error()), slog.String("user_id", user.ID.String()))
			resp.InviteError = "could not join family"
		}
	}

	_ = c.JSON(201, resp)
}

var inviteErrors = []error{
	repository.ErrInviteNotFound,
	repository.ErrInviteExpired,
	repository.ErrInviteAlreadyUsed,
	repository.ErrAlreadyInFamily,
}

func (h *AuthHandler) Login(c *drift.Context) {
	var req dto.LoginRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, "login", err)
		return
	}

	h.respondWithTokens(c, user)
}

// RequestMagicLink answers 202 whether or not the address has an account.
func (h *AuthHandler) RequestMagicLink(c *drift.Context) {
	var req dto.MagicLinkRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if err := h.magicLinks.Request(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.logger, "magic link", err)
		return
	}

	_ = c.JSON(202, map[string]string{"message": "check your inbox for a sign-in link"})
}

func (h *AuthHandler) VerifyMagicLink(c *drift.Context) {
	var req dto.MagicLinkVerifyRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	user, err := h.magicLinks.Verify(c.Request.Context(), req.Token)
	if err != nil {
		respondError(c, h.logger, "magic link verification", err)
		return
	}

	h.respondWithTokens(c, user)
}

func (h *AuthHandler) GetConsentURL(c *drift.Context) {
	provider := c.Param("provider")

	p, ok := h.providers[provider]
	if !ok {
		c.BadRequest("unsupported provider: " + provider)
		return
	}

	state, err := oauth.GenerateState()
	if err != nil {
		c.InternalServerError("failed to generate state")
		return
	}

	h.states.Store(state, stateData{expiresAt: time.Now().Add(stateTTL)})

	_ = c.JSON(200, dto.ConsentURLResponse{
		URL: p.GetConsentURL(state),
	})
}

func (h *AuthHandler) Callback(c *drift.Context) {
	p, ok := h.providers[c.Param("provider")]
	if !ok {
		h.redirectWithError(c, "unsupported provider")
		return
	}

	state := c.QueryParam("state")
	if state == "" {
		h.redirectWithError(c, "missing state parameter")
		return
	}

	sd, ok := h.states.LoadAndDelete(state)
	if !ok {
		h.redirectWithError(c, "invalid or expired state")
		return
	}
	if sdTyped, ok := sd.(stateData); !ok || time.Now().After(sdTyped.expiresAt) {
		h.redirectWithError(c, "state expired")
		return
	}

	code := c.QueryParam("code")
	if code == "" {
		h.redirectWithError(c, "missing authorization code")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	info, err := p.ExchangeCode(ctx, code)
	if err != nil {
		if errors.Is(err, oauth.ErrUnverifiedEmail) {
			h.redirectWithError(c, "your Google email address is not verified")
			return
		}
		h.logger.Warn("oauth code exchange failed", slog.String("provider", p.Name()), slog.String("error", err.Error()))
		h.redirectWithError(c, "failed to exchange code")
		return
	}

	user, err := h.userService.FindOrCreateFromOAuth(ctx, info)
	if err != nil {
		h.logger.Error("oauth user upsert failed", slog.String("provider", p.Name()), slog.String("error", err.Error()))
		h.redirectWithError(c, "failed to create user")
		return
	}

	if err := h.profileService.SeedIfMissing(ctx, user.ID, info.GivenName, info.FamilyName); err != nil {
		h.logger.Warn("profile not seeded from provider", slog.String("error", err.Error()), slog.String("user_id", user.ID.String()))
	}

	authCode, err := oauth.GenerateState()
	if err != nil {
		h.redirectWithError(c, "failed to generate auth code")
		return
	}

	h.authCodes.Store(authCode, authCodeData{
		userID:    user.ID,
		expiresAt: time.Now().Add(authCodeTTL),
	})

	redirectURL := fmt.Sprintf("%s?code=%s",
		h.cfg.FrontendCallbackURL,
		url.QueryEscape(authCode),
	)

	h.renderCallbackPage(c, redirectURL, "")
}

func (h *AuthHandler) ExchangeCode(c *drift.Context) {
	var req dto.ExchangeCodeRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Code == "" {
		c.BadRequest("code is required")
		return
	}

	acd, ok := h.authCodes.LoadAndDelete(req.Code)
	if !ok {
		c.Unauthorized("invalid or expired code")
		return
	}

	codeData, ok := acd.(authCodeData)
	if !ok || time.Now().After(codeData.expiresAt) {
		c.Unauthorized("code expired")
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), codeData.userID)
	if err != nil {
		c.Unauthorized("user not found")
		return
	}

	h.respondWithTokens(c, user)
}

// RefreshToken rotates a session. The presented refresh token is consumed,
// so replaying it fails.
func (h *AuthHandler) RefreshToken(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.RefreshToken == "" {
		c.BadRequest("refresh_token is required")
		return
	}

	userID, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.Unauthorized("invalid refresh token")
		return
	}

	ctx := c.Request.Context()

	storedUserID, err := h.tokenService.ConsumeRefreshToken(ctx, services.HashToken(req.RefreshToken))
	if err != nil || storedUserID != userID {
		c.Unauthorized("refresh token not found or expired")
		return
	}

	user, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		c.Unauthorized("user not found")
		return
	}

	h.respondWithTokens(c, user)
}

func (h *AuthHandler) Logout(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.RefreshToken != "" {
		tokenHash := services.HashToken(req.RefreshToken)
		if err := h.tokenService.RevokeRefreshToken(c.Request.Context(), tokenHash); err != nil {
			h.logger.Warn("refresh token revoke failed", slog.String("error", err.Error()))
		}
	}

	_ = c.JSON(200, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) LogoutAll(c *drift.Context) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		c.Unauthorized("not authenticated")
		return
	}

	if err := h.tokenService.RevokeAllUserTokens(c.Request.Context(), id.UserID); err != nil {
		c.InternalServerError("failed to revoke tokens")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "all sessions logged out"})
}

func (h *AuthHandler) redirectWithError(c *drift.Context, errMsg string) {
	redirectURL := fmt.Sprintf("%s?error=%s",
		h.cfg.FrontendCallbackURL,
		url.QueryEscape(errMsg),
	)
	h.renderCallbackPage(c, redirectURL, errMsg)
}

// renderCallbackPage sends the browser on to the web client. A non-empty
// errMsg renders the failure variant.
func (h *AuthHandler) renderCallbackPage(c *drift.Context, next, errMsg string) {
	title := "Signed in"
	heading := "You're signed in"
	subtitle := "Taking you to EvenGround..."
	headingColor := "#1f2937"
	statusCode := 200

	if errMsg != "" {
		title = "Sign-in failed"
		heading = "Sign-in failed"
		subtitle = errMsg
		headingColor = "#b91c1c"
		statusCode = 400
	}

	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>
        body { font-family: system-ui, -apple-system, sans-serif; background: #f7f7f5; color: #374151; margin: 0; padding: 40px 20px; }
        .card { max-width: 400px; margin: 0 auto; background: #fff; border: 1px solid #e5e7eb; border-radius: 12px; padding: 40px 32px; text-align: center; }
        h1 { font-size: 20px; font-weight: 600; color: %s; margin: 0 0 8px 0; }
        p { color: #6b7280; font-size: 14px; margin: 0 0 12px 0; }
        a { color: #2f6f5e; }
    </style>
</head>
<body>
    <div class="card">
        <h1>%s</h1>
        <p>%s</p>
        <p><a href="%s">Continue</a></p>
    </div>
    <script>
        window.location.href = %q;
    </script>
</body>
</html>`,
		html.EscapeString(title),
		headingColor,
		html.EscapeString(heading),
		html.EscapeString(subtitle),
		html.EscapeString(next),
		next,
	)

	_ = c.HTML(statusCode, page)
}
