package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// Database: postgres://... or sqlite://<path>
	DatabaseURL string

	// Uploads
	UploadDir      string
	UploadMaxBytes int

	// Loader
	MinSubscribers    int64
	CategoryDelimiter string

	// Queries
	LargeAccountThreshold int64
	GrowthWindowDays      int
	GrowthThreshold       float64
	PageLimitDefault      int
	PageLimitMax          int

	// CORS
	CORSOrigins string // Comma-separated allowed origins, e.g. "https://example.com,https://app.example.com"

	// Rate limiting. RedisURL shares limiter state between replicas when set.
	RateLimitMax int // requests per minute per client, 0 disables
	RedisURL     string

	// Inbox job
	InboxDir      string
	InboxSchedule string // cron spec, e.g. "@every 1m"

	// SMTP
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPTLS      string // "none", "tls" or "starttls"

	EmailNotifyOnFailure bool
	EmailNotifyOnSuccess bool

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"

	SiteTitle string // env: SITE_TITLE, default: "SocialPulse"
}

// Load reads configuration from environment variables with sensible defaults.
// Malformed numeric values are reported together.
func Load() (*Config, error) {
	p := &parser{}

	cfg := &Config{
		Env:         getEnv("ENV", "development"),
		ServerAddr:  getEnv("SERVER_ADDR", ":3000"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:3000"),
		DatabaseURL: getEnv("DATABASE_URL", "sqlite://data/social_media.db"),

		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		UploadMaxBytes: p.int("UPLOAD_MAX_BYTES", 64<<20),

		MinSubscribers:    p.int64("MIN_SUBSCRIBERS", 1000),
		CategoryDelimiter: getEnv("CATEGORY_DELIMITER", ";"),

		LargeAccountThreshold: p.int64("LARGE_ACCOUNT_THRESHOLD", 1_000_000),
		GrowthWindowDays:      p.int("GROWTH_WINDOW_DAYS", 30),
		GrowthThreshold:       p.float("GROWTH_THRESHOLD", 10.0),
		PageLimitDefault:      p.int("PAGE_LIMIT_DEFAULT", 10),
		PageLimitMax:          p.int("PAGE_LIMIT_MAX", 100),

		CORSOrigins: getEnv("CORS_ORIGINS", ""),

		RateLimitMax: p.int("RATE_LIMIT_MAX", 0),
		RedisURL:     getEnv("REDIS_URL", ""),

		InboxDir:      getEnv("INBOX_DIR", ""),
		InboxSchedule: getEnv("INBOX_SCHEDULE", "@every 1m"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     p.int("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "SocialPulse"),
		SMTPTLS:      getEnv("SMTP_TLS", "starttls"),

		EmailNotifyOnFailure: getEnv("EMAIL_NOTIFY_ON_FAILURE", "true") == "true",
		EmailNotifyOnSuccess: getEnv("EMAIL_NOTIFY_ON_SUCCESS", "") == "true",

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", ""),

		SiteTitle: getEnv("SITE_TITLE", "SocialPulse"),
	}

	// Colored text for local work, JSON for log collectors elsewhere.
	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
		if cfg.IsDev() {
			cfg.LogFormat = "text"
		}
	}

	if err := errors.Join(append(p.errs, cfg.validate()...)...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() []error {
	var errs []error
	if c.UploadMaxBytes <= 0 {
		errs = append(errs, errors.New("UPLOAD_MAX_BYTES must be positive"))
	}
	if c.CategoryDelimiter == "" {
		errs = append(errs, errors.New("CATEGORY_DELIMITER must not be empty"))
	}
	if c.GrowthWindowDays < 1 {
		errs = append(errs, errors.New("GROWTH_WINDOW_DAYS must be at least 1"))
	}
	if math.IsNaN(c.GrowthThreshold) || math.IsInf(c.GrowthThreshold, 0) {
		errs = append(errs, fmt.Errorf("GROWTH_THRESHOLD must be a finite number, got %v", c.GrowthThreshold))
	}
	if c.PageLimitDefault < 1 || c.PageLimitMax < c.PageLimitDefault {
		errs = append(errs, errors.New("PAGE_LIMIT_DEFAULT must be between 1 and PAGE_LIMIT_MAX"))
	}
	if c.RateLimitMax < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX must not be negative"))
	}
	switch c.SMTPTLS {
	case "none", "tls", "starttls":
	default:
		errs = append(errs, fmt.Errorf("SMTP_TLS must be none, tls or starttls, got %q", c.SMTPTLS))
	}
	return errs
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parser collects conversion errors for numeric variables.
type parser struct {
	errs []error
}

func (p *parser) int(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return fallback
	}
	return n
}

func (p *parser) int64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return fallback
	}
	return n
}

func (p *parser) float(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid number %q", key, v))
		return fallback
	}
	return f
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsEmailEnabled returns true if SMTP is configured.
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}
