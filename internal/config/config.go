// Package config loads EvenGround configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Env         string `env:"ENV" envDefault:"development"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	RedisURL    string `env:"REDIS_URL"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	JWTSecret        string        `env:"JWT_SECRET,required"`
	JWTAccessExpiry  time.Duration `env:"JWT_ACCESS_EXPIRY" envDefault:"15m"`
	JWTRefreshExpiry time.Duration `env:"JWT_REFRESH_EXPIRY" envDefault:"168h"`
	MagicLinkExpiry  time.Duration `env:"MAGIC_LINK_EXPIRY" envDefault:"15m"`

	// SiteURL is where the web client is hosted; invite and magic links point at it.
	SiteURL             string `env:"SITE_URL" envDefault:"http://localhost:3000"`
	BaseURL             string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	FrontendCallbackURL string `env:"FRONTEND_CALLBACK_URL" envDefault:"http://localhost:3000/auth/callback"`

	InviteTTL time.Duration `env:"INVITE_TTL" envDefault:"168h"`

	DashboardRecentLimit int `env:"DASHBOARD_RECENT_LIMIT" envDefault:"10"`

	Google OAuthConfig `envPrefix:"GOOGLE_"`

	MailProvider string     `env:"MAIL_PROVIDER"`
	SMTP         SMTPConfig `envPrefix:"SMTP_"`
	SES          SESConfig  `envPrefix:"SES_"`

	Tone ToneConfig
}

type SMTPConfig struct {
	Host     string `env:"HOST"`
	Port     string `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"`
}

type SESConfig struct {
	Region    string `env:"REGION" envDefault:"us-east-1"`
	FromEmail string `env:"FROM_EMAIL"`
	FromName  string `env:"FROM_NAME" envDefault:"EvenGround"`
}

type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"`
}

type ToneConfig struct {
	OpenAIAPIKey  string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string        `env:"OPENAI_BASE_URL"`
	Model         string        `env:"TONE_CHECK_MODEL" envDefault:"gpt-4o-mini"`
	Timeout       time.Duration `env:"TONE_CHECK_TIMEOUT" envDefault:"8s"`
	CacheTTL      time.Duration `env:"TONE_CHECK_CACHE_TTL" envDefault:"24h"`
	RatePerMinute int           `env:"TONE_CHECK_RATE_PER_MINUTE" envDefault:"30"`
}

const (
	MailProviderSMTP = "smtp"
	MailProviderSES  = "ses"
)

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.MailProvider = strings.ToLower(strings.TrimSpace(cfg.MailProvider))
	switch cfg.MailProvider {
	case "", MailProviderSMTP, MailProviderSES:
	default:
		return nil, fmt.Errorf("unsupported MAIL_PROVIDER %q", cfg.MailProvider)
	}

	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// InviteURL is the signup link embedded in invite emails.
func (c *Config) InviteURL(token string) string {
	return c.SiteURL + "/signup?token=" + token
}

func (c *Config) MagicLinkURL(token string) string {
	return c.SiteURL + "/auth/magic?token=" + token
}
