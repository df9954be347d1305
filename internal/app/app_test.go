package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yukikurage/geoblog/internal/config"
	"github.com/yukikurage/geoblog/internal/mail"
	"github.com/yukikurage/geoblog/internal/media"
	"github.com/yukikurage/geoblog/internal/models"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		DBDriver:     "sqlite",
		DBName:       filepath.Join(dir, "geoblog.db"),
		DBLogLevel:   "silent",
		MediaBackend: "local",
		MediaRoot:    filepath.Join(dir, "media"),
		MediaURL:     "/media/",
		MailBackend:  "log",
		SecretKey:    "secret",
		TokenTimeout: time.Hour,
		FeedPageSize: 4,
		SiteProtocol: "http",
	}
}

func TestNew(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.IsType(t, &media.LocalStorage{}, a.Storage)
	assert.IsType(t, &mail.LogMailer{}, a.Mailer)
	assert.True(t, a.DB.Migrator().HasTable(&models.Post{}))

	user, err := a.Admin.CreatePrivilegedUser("root@example.com", "long-enough", true)
	require.NoError(t, err)
	assert.True(t, user.Admin)

	found, err := a.Auth.GetUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "root@example.com", found.Email)
}

func TestNewStorage(t *testing.T) {
	cfg := testConfig(t)
	cfg.MediaBackend = "s3"
	cfg.S3Bucket = "geoblog"
	cfg.S3Region = "us-east-1"
	cfg.S3Endpoint = "http://localhost:9000"
	cfg.S3AccessKey = "key"
	cfg.S3SecretKey = "secret"

	storage, err := NewStorage(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/geoblog/blog/emoji/x.jpg", storage.URL("blog/emoji/x.jpg"))

	cfg.S3PublicURL = "https://cdn.example.com/media/"
	storage, err = NewStorage(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/media/blog/emoji/x.jpg", storage.URL("blog/emoji/x.jpg"))

	cfg.MediaBackend = "ftp"
	_, err = NewStorage(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewMailer(t *testing.T) {
	cfg := testConfig(t)
	assert.IsType(t, &mail.LogMailer{}, NewMailer(cfg, zap.NewNop()))

	cfg.MailBackend = "smtp"
	assert.IsType(t, &mail.SMTPMailer{}, NewMailer(cfg, zap.NewNop()))
}
