package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evenground/evenground-api/internal/cache"
	"github.com/evenground/evenground-api/internal/config"
	"github.com/evenground/evenground-api/internal/database"
	"github.com/evenground/evenground-api/internal/handlers"
	authmw "github.com/evenground/evenground-api/internal/middleware"
	"github.com/evenground/evenground-api/internal/repository"
	"github.com/evenground/evenground-api/internal/services"
	"github.com/evenground/evenground-api/internal/sse"
	"github.com/evenground/evenground-api/internal/toneguard"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := initLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Redis backs the tone cache and the tone-check rate limit. Both are
	// skipped when REDIS_URL is unset; the interfaces stay nil in that case.
	var (
		redisPinger handlers.Pinger
		limiter     authmw.RateLimiter
		guardOpts   = []toneguard.Option{
			toneguard.WithLogger(logger),
			toneguard.WithModel(cfg.Tone.Model),
			toneguard.WithTimeout(cfg.Tone.Timeout),
		}
	)
	if cfg.RedisURL != "" {
		rc, err := cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer rc.Close()

		redisPinger = rc
		limiter = rc
		guardOpts = append(guardOpts, toneguard.WithCache(cache.NewToneCache(rc, cfg.Tone.CacheTTL)))
	} else {
		logger.Info("redis not configured, tone cache and rate limit disabled")
	}

	var classifier toneguard.Classifier
	if cfg.Tone.OpenAIAPIKey != "" {
		classifier = toneguard.NewOpenAIClassifier(cfg.Tone.OpenAIAPIKey, cfg.Tone.OpenAIBaseURL, cfg.Tone.Model)
	} else {
		logger.Warn("OPENAI_API_KEY not set, tone checks use the phrase list only")
	}
	guard := toneguard.NewGuard(classifier, guardOpts...)

	mailer, err := services.NewMailer(ctx, cfg)
	if err != nil {
		logger.Error("failed to configure mailer", slog.String("error", err.Error()))
		os.Exit(1)
	}

	hub := sse.NewHub()
	go hub.Run()

	familyRepo := repository.NewFamilyRepository(db)
	inviteRepo := repository.NewInviteRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	userService := services.NewUserService(db)
	profileService := services.NewProfileService(db)
	tokenService := services.NewTokenService(db)
	magicLinkService := services.NewMagicLinkService(tokenService, userService, mailer, cfg.MagicLinkURL, cfg.MagicLinkExpiry, logger)
	familyService := services.NewFamilyService(familyRepo)
	inviteService := services.NewInviteService(familyRepo, inviteRepo, profileService, mailer, hub, services.InviteServiceConfig{
		LinkURL: cfg.InviteURL,
		TTL:     cfg.InviteTTL,
	}, logger)
	requestService := services.NewRequestService(familyRepo, requestRepo, hub)
	messageService := services.NewMessageService(familyRepo, requestRepo, messageRepo, guard, hub)
	dashboardService := services.NewDashboardService(familyRepo, requestRepo).WithRecentLimit(cfg.DashboardRecentLimit)

	authHandler := handlers.NewAuthHandler(cfg, userService, profileService, tokenService, jwtService, magicLinkService, inviteService, logger)
	userHandler := handlers.NewUserHandler(userService, profileService, logger)
	familyHandler := handlers.NewFamilyHandler(familyService, logger)
	inviteHandler := handlers.NewInviteHandler(inviteService, cfg.InviteURL, logger)
	requestHandler := handlers.NewRequestHandler(requestService, logger)
	messageHandler := handlers.NewMessageHandler(messageService, logger)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, logger)
	sseHandler := handlers.NewSSEHandler(hub, familyService, logger)
	healthHandler := handlers.NewHealthHandler(db, redisPinger)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", authmw.RequestIDHeader},
		MaxAge:       86400,
	}))
	app.Use(authmw.RequestID())
	app.Use(authmw.Logger(logger))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	api.Get("/health", healthHandler.Check)

	auth := api.Group("/auth")
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/login", authHandler.Login)
	auth.Post("/magic-link", authHandler.RequestMagicLink)
	auth.Post("/magic-link/verify", authHandler.VerifyMagicLink)
	auth.Get("/:provider/consent", authHandler.GetConsentURL)
	auth.Get("/:provider/callback", authHandler.Callback)
	auth.Post("/exchange", authHandler.ExchangeCode)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)

	// EventSource cannot set headers, so the stream also accepts ?access_token=.
	stream := api.Group("")
	stream.Use(authmw.StreamAuth(jwtService))
	stream.Get("/family/events", sseHandler.Connect)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))

	protected.Post("/auth/logout-all", authHandler.LogoutAll)

	protected.Get("/users/me", userHandler.GetMe)
	protected.Get("/profile", userHandler.GetProfile)
	protected.Patch("/profile", userHandler.UpdateProfile)

	protected.Post("/family", familyHandler.Create)
	protected.Get("/family", familyHandler.Get)
	protected.Get("/family/members", familyHandler.Members)

	protected.Post("/invites", inviteHandler.Create)
	protected.Get("/invites", inviteHandler.List)
	protected.Post("/invites/send", inviteHandler.Send)
	protected.Post("/invites/redeem", inviteHandler.Redeem)
	protected.Delete("/invites/:inviteId", inviteHandler.Cancel)

	protected.Get("/request-types", requestHandler.Types)
	protected.Get("/requests", requestHandler.List)
	protected.Post("/requests", requestHandler.Create)
	protected.Get("/requests/:id", requestHandler.Get)
	protected.Post("/requests/:id/decision", requestHandler.Decide)
	protected.Get("/requests/:id/messages", messageHandler.List)
	protected.Post("/requests/:id/messages", messageHandler.Send)

	protected.Get("/dashboard", dashboardHandler.Get)

	tone := api.Group("")
	tone.Use(authmw.Auth(jwtService))
	tone.Use(authmw.RateLimit(limiter, "tone", cfg.Tone.RatePerMinute, logger))
	tone.Post("/tone-check", messageHandler.ToneCheck)

	// Public invite landing page (no auth required)
	app.Get("/invite", inviteHandler.ViewInvite)

	go cleanupExpiredTokens(ctx, tokenService, logger)

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		logger.Info("server starting", slog.String("addr", addr), slog.String("env", cfg.Env))
		if err := app.Run(addr); err != nil {
			logger.Error("server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
}

// cleanupExpiredTokens prunes expired refresh and login tokens hourly.
func cleanupExpiredTokens(ctx context.Context, tokens *services.TokenService, logger *slog.Logger) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := tokens.CleanupExpired(ctx); err != nil {
				logger.Warn("token cleanup failed", slog.String("error", err.Error()))
			}
		}
	}
}

func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}

	var h slog.Handler
	if cfg.LogFormat == "text" {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
