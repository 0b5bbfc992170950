// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir  string `env:"TL_DATA_DIR" envDefault:"./data"`
	Port     int    `env:"TL_PORT" envDefault:"8000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	DevMode  bool   `env:"DEV_MODE" envDefault:"false"`

	// Auth
	JWTSecret       string `env:"TL_JWT_SECRET" envDefault:"dev-secret-change-me"`
	TokenExpiryMins int    `env:"TL_TOKEN_EXPIRY_MINUTES" envDefault:"60"`

	// Public site metadata
	AdSensePublisher string `env:"TL_ADSENSE_PUB_ID" envDefault:"pub-9065075656013134"`
	SiteBaseURL      string `env:"TL_SITE_BASE_URL" envDefault:"https://trendlotto.example.com"`

	// KIS (Korea Investment & Securities) realtime quote API
	KISAppKey    string `env:"KIS_APP_KEY"`
	KISAppSecret string `env:"KIS_APP_SECRET"`

	// Telegram notifications (server-side alert checker)
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string `env:"TELEGRAM_CHAT_ID"`

	// S3-compatible backup target (backups skipped when unset)
	BackupBucket    string `env:"TL_BACKUP_BUCKET"`
	BackupEndpoint  string `env:"TL_BACKUP_ENDPOINT"`
	BackupAccessKey string `env:"TL_BACKUP_ACCESS_KEY"`
	BackupSecretKey string `env:"TL_BACKUP_SECRET_KEY"`
	BackupRegion    string `env:"TL_BACKUP_REGION" envDefault:"auto"`
	BackupKeep      int    `env:"TL_BACKUP_KEEP" envDefault:"7"`
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	// Always resolve the data directory to an absolute path and make sure
	// it exists before any database is opened.
	absDataDir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	cfg.DataDir = absDataDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration invariants
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.TokenExpiryMins <= 0 {
		return fmt.Errorf("token expiry must be positive, got %d", c.TokenExpiryMins)
	}
	return nil
}

// BackupEnabled reports whether S3 backup credentials are configured
func (c *Config) BackupEnabled() bool {
	return c.BackupBucket != "" && c.BackupAccessKey != "" && c.BackupSecretKey != ""
}
