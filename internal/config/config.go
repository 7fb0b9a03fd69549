// Package config loads the service configuration from the environment, with
// optional .env files for local development.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv string
	Port   string

	// Upstream Bubble Data API.
	BubbleAPIBase  string `validate:"required,url"`
	BubbleAPIToken string `validate:"required"`

	// Optional Redis. Without it the reference cache is disabled, the rate
	// limiter runs in-process, and background audits are unavailable.
	RedisURL string

	CacheTTL           time.Duration
	CORSAllowedOrigins []string
	RateLimit          string `validate:"required"`

	// Outbound resilience knobs for upstream fetches.
	FetchConcurrency   int `validate:"min=1"`
	OutboundTimeout    time.Duration
	RetryBase          time.Duration
	RetryMaxAttempts   int     `validate:"min=1"`
	RetryJitterPercent float64 `validate:"min=0,max=100"`
	CircuitMinRequests int     `validate:"min=1"`
	CircuitFailureRate float64 `validate:"gt=0,lte=1"`
	CircuitOpenFor     time.Duration

	// Worker.
	QueueConcurrency int `validate:"min=1"`
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		BubbleAPIBase:      strings.TrimRight(strings.TrimSpace(k.String("BUBBLE_API_BASE")), "/"),
		BubbleAPIToken:     strings.TrimSpace(k.String("BUBBLE_API_TOKEN")),
		RedisURL:           strings.TrimSpace(k.String("REDIS_URL")),
		CacheTTL:           parseDuration(k.String("CACHE_TTL"), "10m"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		RateLimit:          valueOrDefault(k.String("RATE_LIMIT"), "120-M"),
		FetchConcurrency:   intOrDefault(k, "FETCH_CONCURRENCY", 8),
		OutboundTimeout:    parseDuration(k.String("OUTBOUND_TIMEOUT"), "10s"),
		RetryBase:          parseDuration(k.String("RETRY_BASE"), "100ms"),
		RetryMaxAttempts:   intOrDefault(k, "RETRY_MAX_ATTEMPTS", 4),
		RetryJitterPercent: floatOrDefault(k, "RETRY_JITTER_PERCENT", 20),
		CircuitMinRequests: intOrDefault(k, "CIRCUIT_MIN_REQUESTS", 10),
		CircuitFailureRate: floatOrDefault(k, "CIRCUIT_FAILURE_RATE", 0.5),
		CircuitOpenFor:     parseDuration(k.String("CIRCUIT_OPEN_FOR"), "30s"),
		QueueConcurrency:   intOrDefault(k, "QUEUE_CONCURRENCY", 4),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func intOrDefault(k *koanf.Koanf, key string, fallback int) int {
	if !k.Exists(key) || strings.TrimSpace(k.String(key)) == "" {
		return fallback
	}
	return k.Int(key)
}

func floatOrDefault(k *koanf.Koanf, key string, fallback float64) float64 {
	if !k.Exists(key) || strings.TrimSpace(k.String(key)) == "" {
		return fallback
	}
	return k.Float64(key)
}

// MustLoad behaves like Load but panics on error. Useful for command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
