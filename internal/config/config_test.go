package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"BUBBLE_API_BASE":  "https://app.example.com/api/1.1/obj",
		"BUBBLE_API_TOKEN": "secret",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(baseEnv())
	require.NoError(t, err)

	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, "https://app.example.com/api/1.1/obj", cfg.BubbleAPIBase)
	require.Equal(t, 10*time.Minute, cfg.CacheTTL)
	require.Equal(t, "120-M", cfg.RateLimit)
	require.Equal(t, 8, cfg.FetchConcurrency)
	require.Equal(t, 4, cfg.RetryMaxAttempts)
	require.Equal(t, 0.5, cfg.CircuitFailureRate)
}

func TestLoadRequiresUpstream(t *testing.T) {
	env := baseEnv()
	env["BUBBLE_API_TOKEN"] = ""
	_, err := LoadForTests(env)
	require.Error(t, err)

	env = baseEnv()
	env["BUBBLE_API_BASE"] = "not a url"
	_, err = LoadForTests(env)
	require.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	env := baseEnv()
	env["PORT"] = "9090"
	env["CACHE_TTL"] = "1h"
	env["CORS_ALLOWED_ORIGINS"] = "https://a.example.com, https://b.example.com"
	env["FETCH_CONCURRENCY"] = "2"

	cfg, err := LoadForTests(env)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, time.Hour, cfg.CacheTTL)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
	require.Equal(t, 2, cfg.FetchConcurrency)
}

func TestLoadTrimsBaseURL(t *testing.T) {
	env := baseEnv()
	env["BUBBLE_API_BASE"] = "https://app.example.com/api/1.1/obj/"
	cfg, err := LoadForTests(env)
	require.NoError(t, err)
	require.Equal(t, "https://app.example.com/api/1.1/obj", cfg.BubbleAPIBase)
}
