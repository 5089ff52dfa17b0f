package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env       string
	Addr      string
	DBDSN     string
	DBMigrate bool
	LogLevel  string

	TokenSecret string
	TokenIssuer string
	TokenTTL    time.Duration

	StrictInvites bool
	LoginRate     int

	AdminBootstrapUsername string
	AdminBootstrapPassword string

	FCMProjectID   string
	FCMCredentials string
}

// Load reads an optional .env file (APP_ENV_FILE, default ".env") into the
// process environment without overriding variables that are already set.
func Load() (Config, error) {
	path := os.Getenv("APP_ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if err := loadDotEnvFile(path, os.Setenv, os.Getenv); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return LoadFromEnv(os.Getenv)
}

func LoadFromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Env:                    getenv("APP_ENV"),
		Addr:                   getenv("APP_ADDR"),
		DBDSN:                  getenv("APP_DB_DSN"),
		LogLevel:               getenv("APP_LOG_LEVEL"),
		TokenSecret:            getenv("APP_TOKEN_SECRET"),
		TokenIssuer:            strings.TrimSpace(getenv("APP_TOKEN_ISSUER")),
		AdminBootstrapUsername: strings.TrimSpace(getenv("APP_ADMIN_BOOTSTRAP_USERNAME")),
		AdminBootstrapPassword: getenv("APP_ADMIN_BOOTSTRAP_PASSWORD"),
		FCMProjectID:           strings.TrimSpace(getenv("APP_FCM_PROJECT_ID")),
		FCMCredentials:         strings.TrimSpace(getenv("APP_FCM_CREDENTIALS")),
	}

	if cfg.Env == "" {
		cfg.Env = "dev"
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8080"
	}
	if cfg.TokenIssuer == "" {
		cfg.TokenIssuer = "gamenight"
	}

	switch cfg.Env {
	case "dev", "prod", "test":
	default:
		return Config{}, errors.New("APP_ENV: must be one of dev, test, prod")
	}

	ttlRaw := getenv("APP_TOKEN_TTL")
	if ttlRaw == "" {
		cfg.TokenTTL = 24 * time.Hour
	} else {
		ttl, err := time.ParseDuration(ttlRaw)
		if err != nil {
			return Config{}, fmt.Errorf("APP_TOKEN_TTL: %w", err)
		}
		if ttl <= 0 {
			return Config{}, errors.New("APP_TOKEN_TTL: must be > 0")
		}
		cfg.TokenTTL = ttl
	}

	var err error
	if cfg.StrictInvites, err = parseBool(getenv("APP_STRICT_INVITES"), true); err != nil {
		return Config{}, fmt.Errorf("APP_STRICT_INVITES: %w", err)
	}
	if cfg.DBMigrate, err = parseBool(getenv("APP_DB_MIGRATE"), true); err != nil {
		return Config{}, fmt.Errorf("APP_DB_MIGRATE: %w", err)
	}

	cfg.LoginRate = 10
	if raw := strings.TrimSpace(getenv("APP_LOGIN_RATE")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return Config{}, errors.New("APP_LOGIN_RATE: must be a positive integer")
		}
		cfg.LoginRate = n
	}

	if cfg.AdminBootstrapPassword != "" && cfg.AdminBootstrapUsername == "" {
		cfg.AdminBootstrapUsername = "admin"
	}

	if cfg.IsProd() {
		if cfg.DBDSN == "" {
			return Config{}, errors.New("APP_DB_DSN: required in prod")
		}
		if len(cfg.TokenSecret) < 32 {
			return Config{}, errors.New("APP_TOKEN_SECRET: must be at least 32 bytes in prod")
		}
	}

	return cfg, nil
}

func (c Config) IsProd() bool { return c.Env == "prod" }

func (c Config) FCMEnabled() bool { return c.FCMCredentials != "" }

func parseBool(raw string, def bool) (bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	return strconv.ParseBool(raw)
}
