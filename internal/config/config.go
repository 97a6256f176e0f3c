package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration shared by both fronts.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Staff    FrontConfig
	Portal   FrontConfig
	Cache    CacheConfig
	Queue    QueueConfig
	Auth     AuthConfig
}

// AuthConfig tunes the credential-hashing collaborator.
type AuthConfig struct {
	BcryptCost int
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// FrontConfig carries the per-front listen port and session cookie settings.
// Cookie name and signing key are opaque secrets sourced from the
// environment; their absence is startup-fatal for the front that needs them.
type FrontConfig struct {
	Port             string
	CookieName       string
	CookieKey        string
	CookieExpiryDays int
}

// CacheConfig bounds the directory and ticket-queue caches.
type CacheConfig struct {
	DirectoryTTLSeconds int
	QueueTTLSeconds     int
}

// QueueConfig controls dashboard pagination.
type QueueConfig struct {
	PageSize int
}

// Load reads configuration from environment variables, applying defaults
// where possible. Front-specific cookie validation happens in Validate so
// one front can start without the other's secrets.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "galactic-support-portal"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Staff: FrontConfig{
			Port:             getEnv("STAFF_PORT", "8080"),
			CookieName:       os.Getenv("STAFF_COOKIE_NAME"),
			CookieKey:        os.Getenv("STAFF_COOKIE_KEY"),
			CookieExpiryDays: getEnvAsInt("STAFF_COOKIE_EXPIRY_DAYS", 7),
		},
		Portal: FrontConfig{
			Port:             getEnv("PORTAL_PORT", "8081"),
			CookieName:       os.Getenv("PORTAL_COOKIE_NAME"),
			CookieKey:        os.Getenv("PORTAL_COOKIE_KEY"),
			CookieExpiryDays: getEnvAsInt("PORTAL_COOKIE_EXPIRY_DAYS", 7),
		},
		Cache: CacheConfig{
			DirectoryTTLSeconds: getEnvAsInt("DIRECTORY_CACHE_TTL_SECONDS", 600),
			QueueTTLSeconds:     getEnvAsInt("QUEUE_CACHE_TTL_SECONDS", 60),
		},
		Queue: QueueConfig{
			PageSize: getEnvAsInt("QUEUE_PAGE_SIZE", 50),
		},
		Auth: AuthConfig{
			BcryptCost: getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
	}

	return cfg, nil
}

// Validate reports the startup-fatal condition of a missing connection URI.
func (c PostgresConfig) Validate() error {
	if c.DSN == "" {
		return errors.New("POSTGRES_DSN not set")
	}
	return nil
}

// Validate checks the cookie settings required before a front can serve.
func (f FrontConfig) Validate() error {
	if f.CookieName == "" {
		return errors.New("session cookie name not set")
	}
	if f.CookieKey == "" {
		return errors.New("session cookie signing key not set")
	}
	return nil
}

// CookieExpiry returns the session lifetime.
func (f FrontConfig) CookieExpiry() time.Duration {
	days := f.CookieExpiryDays
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}

// Addr returns the HTTP bind address for the front.
func (f FrontConfig) Addr(host string) string {
	return fmt.Sprintf("%s:%s", host, f.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// DirectoryTTL returns the directory cache lifetime.
func (c CacheConfig) DirectoryTTL() time.Duration {
	return time.Duration(c.DirectoryTTLSeconds) * time.Second
}

// QueueTTL returns the ticket-queue cache lifetime.
func (c CacheConfig) QueueTTL() time.Duration {
	return time.Duration(c.QueueTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
