package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const minSecretLength = 16

var ErrSecretRequired = errors.New("JWT_SECRET is required")

type Config struct {
	Port     string
	LogLevel string

	DatabaseURL   string
	DBMaxConns    int32
	DBMinConns    int32
	DBAutoMigrate bool
	CORSOrigins   string
	JWTSecret     string
	TokenTTL      time.Duration
	LegacyHashes  bool

	ImageFetchTimeout time.Duration
	ImageMaxBytes     int
	FetchConcurrency  int
	MaxImages         int
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	// Ignore error if .env file doesn't exist (e.g. in production)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "3001"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = buildDatabaseURL()
	}

	p := parser{}
	cfg.DBMaxConns = int32(p.intVar("DB_MAX_CONNS", 10))
	cfg.DBMinConns = int32(p.intVar("DB_MIN_CONNS", 2))
	cfg.DBAutoMigrate = p.boolVar("DB_AUTO_MIGRATE", false)
	cfg.TokenTTL = p.durationVar("TOKEN_TTL", 72*time.Hour)
	cfg.LegacyHashes = p.boolVar("AUTH_LEGACY_HASHES", true)
	cfg.ImageFetchTimeout = p.durationVar("IMAGE_FETCH_TIMEOUT", 0)
	cfg.ImageMaxBytes = p.intVar("IMAGE_MAX_BYTES", 20<<20)
	cfg.FetchConcurrency = p.intVar("PDF_FETCH_CONCURRENCY", 1)
	cfg.MaxImages = p.intVar("PDF_MAX_IMAGES", 0)
	if err := errors.Join(p.errs...); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrSecretRequired
	}
	if len(c.JWTSecret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLength)
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.FetchConcurrency < 1 {
		return errors.New("PDF_FETCH_CONCURRENCY must be at least 1")
	}
	if c.MaxImages < 0 || c.ImageMaxBytes < 0 {
		return errors.New("PDF_MAX_IMAGES and IMAGE_MAX_BYTES must not be negative")
	}
	return nil
}

func buildDatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getEnv("DB_USER", "postgres"), getEnv("DB_PASSWORD", "postgres")),
		Host:     getEnv("DB_HOST", "localhost") + ":" + getEnv("DB_PORT", "5432"),
		Path:     "/" + getEnv("DB_DATABASE", "imoveis"),
		RawQuery: "sslmode=" + getEnv("DB_SSLMODE", "disable"),
	}
	return u.String()
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// parser collects conversion errors so every bad variable is reported at once.
type parser struct {
	errs []error
}

func (p *parser) intVar(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (p *parser) boolVar(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

func (p *parser) durationVar(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}
