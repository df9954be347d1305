package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, 72*time.Hour, cfg.TokenTimeout)
	assert.Equal(t, 4, cfg.FeedPageSize)
	assert.Equal(t, "local", cfg.MediaBackend)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("FEED_PAGE_SIZE", "10")
	t.Setenv("TOKEN_TIMEOUT", "1h")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("S3_PUBLIC_URL", "https://cdn.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 10, cfg.FeedPageSize)
	assert.Equal(t, time.Hour, cfg.TokenTimeout)
	assert.False(t, cfg.RateLimitEnabled)
	assert.Equal(t, "https://cdn.example.com", cfg.S3PublicURL)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:          "8080",
			DBDriver:      "sqlite",
			SessionStore:  "cookie",
			MediaBackend:  "local",
			MailBackend:   "log",
			TokenTimeout:  time.Hour,
			FeedPageSize:  4,
			SessionSecret: defaultSessionSecret,
			SecretKey:     defaultSecretKey,
		}
	}

	t.Run("valid development config", func(t *testing.T) {
		require.NoError(t, valid().Validate())
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := valid()
		cfg.DBDriver = "oracle"
		require.Error(t, cfg.Validate())
	})

	t.Run("s3 without bucket", func(t *testing.T) {
		cfg := valid()
		cfg.MediaBackend = "s3"
		require.Error(t, cfg.Validate())
	})

	t.Run("default secrets in production", func(t *testing.T) {
		cfg := valid()
		cfg.GinMode = "release"
		require.Error(t, cfg.Validate())

		cfg.SessionSecret = "0123456789abcdef0123456789abcdef"
		cfg.SecretKey = "fedcba9876543210fedcba9876543210"
		require.NoError(t, cfg.Validate())
	})
}
