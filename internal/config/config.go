// Package config loads application configuration from the environment,
// an optional .env file and an optional config.yml.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultSessionSecret = "default-secret-key-change-me"
	defaultSecretKey     = "default-token-key-change-me"
)

type Config struct {
	Port    string `mapstructure:"PORT"`
	GinMode string `mapstructure:"GIN_MODE"`

	DBDriver   string `mapstructure:"DB_DRIVER"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`
	DBLogLevel string `mapstructure:"DB_LOG_LEVEL"`

	RedisHost     string `mapstructure:"REDIS_HOST"`
	RedisPort     string `mapstructure:"REDIS_PORT"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	SessionStore  string `mapstructure:"SESSION_STORE"`
	SessionSecret string `mapstructure:"SESSION_SECRET"`

	SecretKey    string        `mapstructure:"SECRET_KEY"`
	TokenTimeout time.Duration `mapstructure:"TOKEN_TIMEOUT"`

	SiteDomain   string `mapstructure:"SITE_DOMAIN"`
	SiteProtocol string `mapstructure:"SITE_PROTOCOL"`
	FeedPageSize int    `mapstructure:"FEED_PAGE_SIZE"`

	MediaBackend string `mapstructure:"MEDIA_BACKEND"`
	MediaRoot    string `mapstructure:"MEDIA_ROOT"`
	MediaURL     string `mapstructure:"MEDIA_URL"`

	S3Bucket    string `mapstructure:"S3_BUCKET"`
	S3Region    string `mapstructure:"S3_REGION"`
	S3Endpoint  string `mapstructure:"S3_ENDPOINT"`
	S3AccessKey string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey string `mapstructure:"S3_SECRET_KEY"`
	S3PublicURL string `mapstructure:"S3_PUBLIC_URL"`

	MailBackend  string `mapstructure:"MAIL_BACKEND"`
	MailFrom     string `mapstructure:"MAIL_FROM"`
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`

	RateLimitEnabled  bool          `mapstructure:"RATE_LIMIT_ENABLED"`
	RateLimitRequests int           `mapstructure:"RATE_LIMIT_REQUESTS"`
	RateLimitWindow   time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
}

// Load reads configuration. A missing .env or config.yml is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_USER", "bloguser")
	v.SetDefault("DB_PASSWORD", "blogpassword")
	v.SetDefault("DB_NAME", "geoblog")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_LOG_LEVEL", "warn")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("SESSION_STORE", "redis")
	v.SetDefault("SESSION_SECRET", defaultSessionSecret)
	v.SetDefault("SECRET_KEY", defaultSecretKey)
	v.SetDefault("TOKEN_TIMEOUT", 72*time.Hour)
	v.SetDefault("SITE_DOMAIN", "")
	v.SetDefault("SITE_PROTOCOL", "http")
	v.SetDefault("FEED_PAGE_SIZE", 4)
	v.SetDefault("MEDIA_BACKEND", "local")
	v.SetDefault("MEDIA_ROOT", "./media")
	v.SetDefault("MEDIA_URL", "/media/")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_PUBLIC_URL", "")
	v.SetDefault("MAIL_BACKEND", "log")
	v.SetDefault("MAIL_FROM", "noreply@geoblog.local")
	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_REQUESTS", 10)
	v.SetDefault("RATE_LIMIT_WINDOW", 15*time.Minute)
	v.SetDefault("LOG_LEVEL", "info")
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// Validate checks required values and refuses default secrets in production.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.SessionStore {
	case "redis", "cookie":
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q", c.SessionStore)
	}
	switch c.MediaBackend {
	case "local":
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET is required when MEDIA_BACKEND is s3")
		}
	default:
		return fmt.Errorf("unsupported MEDIA_BACKEND %q", c.MediaBackend)
	}
	switch c.MailBackend {
	case "smtp", "log":
	default:
		return fmt.Errorf("unsupported MAIL_BACKEND %q", c.MailBackend)
	}
	if c.TokenTimeout <= 0 {
		return errors.New("TOKEN_TIMEOUT must be positive")
	}
	if c.FeedPageSize < 1 {
		return errors.New("FEED_PAGE_SIZE must be at least 1")
	}

	if c.IsProduction() {
		if c.SessionSecret == defaultSessionSecret || len(c.SessionSecret) < 32 {
			return errors.New("SESSION_SECRET must be changed and at least 32 characters in production")
		}
		if c.SecretKey == defaultSecretKey || len(c.SecretKey) < 32 {
			return errors.New("SECRET_KEY must be changed and at least 32 characters in production")
		}
	}
	return nil
}
