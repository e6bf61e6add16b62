// Package config handles application configuration loading from environment
// variables and an optional .env file. It provides a centralized Config
// struct used across the application.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// devFlashSecret signs flash cookies in development only.
const devFlashSecret = "dev-only-flash-secret-change-me-please"

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// REST backend
	APIBaseURL     string
	APITimeout     time.Duration
	PageSize       int
	SearchDebounce time.Duration

	// Valkey (Redis-compatible session and state store)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Sessions and toasts
	SessionTTL    time.Duration
	FlashSecret   string
	AuthRateLimit int // sign-in/sign-up attempts per minute per client

	// S3-compatible avatar storage (optional)
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string
}

// Load reads the .env file named by ENV_FILE (default ".env") if it exists,
// then the environment. Variables already set in the environment win over
// the file. Returns an error if critical values are missing or invalid.
func Load() (*Config, error) {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err == nil {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("config load %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config stat %s: %w", path, err)
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("app_host", "0.0.0.0")
	v.SetDefault("app_port", "8080")
	v.SetDefault("app_env", "development")
	v.SetDefault("api_base_url", "http://localhost:5000")
	v.SetDefault("api_timeout", 10*time.Second)
	v.SetDefault("page_size", 10)
	v.SetDefault("search_debounce", 300*time.Millisecond)
	v.SetDefault("valkey_host", "localhost")
	v.SetDefault("valkey_port", "6379")
	v.SetDefault("valkey_password", "")
	v.SetDefault("session_ttl", 24*time.Hour)
	v.SetDefault("flash_secret", devFlashSecret)
	v.SetDefault("auth_rate_limit", 10)
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_region", "us-east-1")
	v.SetDefault("s3_access_key", "")
	v.SetDefault("s3_secret_key", "")
	v.SetDefault("s3_bucket", "")
	v.SetDefault("s3_public_url", "")
	v.AutomaticEnv()

	cfg := &Config{
		Host: v.GetString("app_host"),
		Port: v.GetString("app_port"),
		Env:  v.GetString("app_env"),

		APIBaseURL:     strings.TrimRight(v.GetString("api_base_url"), "/"),
		APITimeout:     v.GetDuration("api_timeout"),
		PageSize:       v.GetInt("page_size"),
		SearchDebounce: v.GetDuration("search_debounce"),

		ValkeyHost:     v.GetString("valkey_host"),
		ValkeyPort:     v.GetString("valkey_port"),
		ValkeyPassword: v.GetString("valkey_password"),

		SessionTTL:    v.GetDuration("session_ttl"),
		FlashSecret:   v.GetString("flash_secret"),
		AuthRateLimit: v.GetInt("auth_rate_limit"),

		S3Endpoint:  v.GetString("s3_endpoint"),
		S3Region:    v.GetString("s3_region"),
		S3AccessKey: v.GetString("s3_access_key"),
		S3SecretKey: v.GetString("s3_secret_key"),
		S3Bucket:    v.GetString("s3_bucket"),
		S3PublicURL: v.GetString("s3_public_url"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute http(s) URL, got %q", c.APIBaseURL)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	if c.AuthRateLimit <= 0 {
		return fmt.Errorf("AUTH_RATE_LIMIT must be positive, got %d", c.AuthRateLimit)
	}
	if c.Env == "production" {
		if c.FlashSecret == devFlashSecret || len(c.FlashSecret) < 32 {
			return fmt.Errorf("FLASH_SECRET must be set to at least 32 characters in production")
		}
	}
	return nil
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// StorageEnabled reports whether avatar uploads are configured.
func (c *Config) StorageEnabled() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}
