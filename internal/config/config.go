package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName         = "RenaissanceMiniApp"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultShutdownDelay   = 10 * time.Second
	defaultIdempotencyTTL  = 24 * time.Hour
	defaultUpstreamTimeout = 10 * time.Second
	defaultWalletStorePath = "data/wallet.json"
	idemTTLSecondsEnvVar   = "IDEMPOTENCY_TTL_SECONDS"
	idemTTLDurEnvVar       = "IDEMPOTENCY_TTL"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
	upstreamTimeoutEnvVar  = "UPSTREAM_TIMEOUT"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName  string
	AppEnv   string
	Port     string
	LogLevel string

	// Local stores. Both are optional in development: without a database the
	// service falls back to in-memory repositories, without Redis the
	// idempotency and rate-limit middlewares are disabled.
	DatabaseURL string
	RedisURL    string

	// Remote identity authority (system of record for accounts and OTP).
	AuthorityBaseURL string

	// Companion directory service. Leaving either value empty disables
	// directory sync entirely; that is not an error.
	DirectoryBaseURL string
	DirectoryAPIKey  string

	// Blob storage for avatar uploads.
	BlobBaseURL string
	BlobToken   string

	// Device wallet store. The secret is optional: when set, key material is
	// sealed with it instead of being written as plaintext.
	WalletStorePath   string
	WalletStoreSecret string

	ShutdownPeriod  time.Duration
	IdempotencyTTL  time.Duration
	UpstreamTimeout time.Duration
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:           getEnv("APP_NAME", defaultAppName),
		AppEnv:            getEnv("APP_ENV", defaultAppEnv),
		Port:              getEnv("PORT", defaultPort),
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		AuthorityBaseURL:  strings.TrimRight(os.Getenv("AUTHORITY_BASE_URL"), "/"),
		DirectoryBaseURL:  strings.TrimRight(os.Getenv("DIRECTORY_BASE_URL"), "/"),
		DirectoryAPIKey:   os.Getenv("DIRECTORY_API_KEY"),
		BlobBaseURL:       strings.TrimRight(os.Getenv("BLOB_BASE_URL"), "/"),
		BlobToken:         os.Getenv("BLOB_TOKEN"),
		WalletStorePath:   getEnv("WALLET_STORE_PATH", defaultWalletStorePath),
		WalletStoreSecret: os.Getenv("WALLET_STORE_SECRET"),
		ShutdownPeriod:    defaultShutdownDelay,
		IdempotencyTTL:    defaultIdempotencyTTL,
		UpstreamTimeout:   defaultUpstreamTimeout,
	}

	if v := os.Getenv(shutdownSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownSecondsEnvVar, err)
		}
		cfg.ShutdownPeriod = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(shutdownDurationEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownDurationEnvVar, err)
		}
		cfg.ShutdownPeriod = d
	}

	if v := os.Getenv(idemTTLSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", idemTTLSecondsEnvVar, err)
		}
		cfg.IdempotencyTTL = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(idemTTLDurEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", idemTTLDurEnvVar, err)
		}
		cfg.IdempotencyTTL = d
	}

	if v := os.Getenv(upstreamTimeoutEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", upstreamTimeoutEnvVar, err)
		}
		cfg.UpstreamTimeout = d
	}

	if cfg.AuthorityBaseURL == "" {
		return Config{}, fmt.Errorf("AUTHORITY_BASE_URL must be set")
	}

	if !cfg.IsDev() {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
	}

	return cfg, nil
}

// DirectoryConfigured reports whether the companion directory sync is enabled.
func (c Config) DirectoryConfigured() bool {
	return c.DirectoryBaseURL != "" && c.DirectoryAPIKey != ""
}

// IsDev reports whether the service runs in a development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
