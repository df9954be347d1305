// Package app wires configuration into the database, storage, mailer and
// services shared by the server and the admin CLI.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yukikurage/geoblog/internal/config"
	"github.com/yukikurage/geoblog/internal/database"
	"github.com/yukikurage/geoblog/internal/mail"
	"github.com/yukikurage/geoblog/internal/media"
	"github.com/yukikurage/geoblog/internal/repository"
	"github.com/yukikurage/geoblog/internal/services"
	"github.com/yukikurage/geoblog/internal/token"
)

type App struct {
	Config  *config.Config
	Log     *zap.Logger
	DB      *gorm.DB
	Storage media.Storage
	Mailer  mail.Mailer

	Users   repository.UserRepository
	Posts   repository.PostRepository
	Catalog repository.CatalogRepository

	Auth     *services.AuthService
	Profiles *services.ProfileService
	Content  *services.PostService
	Admin    *services.AdminService
}

// New connects to the database, runs migrations and builds the services.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	db, err := database.Connect(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, log); err != nil {
		return nil, err
	}

	storage, err := NewStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return Build(cfg, log, db, storage, NewMailer(cfg, log)), nil
}

// Build assembles the repositories and services on top of open resources.
func Build(cfg *config.Config, log *zap.Logger, db *gorm.DB, storage media.Storage, mailer mail.Mailer) *App {
	a := &App{
		Config:  cfg,
		Log:     log,
		DB:      db,
		Storage: storage,
		Mailer:  mailer,
		Users:   repository.NewUserRepository(db),
		Posts:   repository.NewPostRepository(db),
		Catalog: repository.NewCatalogRepository(db),
	}

	issuer := token.NewIssuer(cfg.SecretKey, cfg.TokenTimeout)
	site := services.Site{Protocol: cfg.SiteProtocol, Domain: cfg.SiteDomain}

	a.Auth = services.NewAuthService(a.Users, issuer, mailer, site, log)
	a.Profiles = services.NewProfileService(a.Users, a.Catalog, storage, log)
	a.Content = services.NewPostService(a.Posts, a.Catalog, storage, cfg.FeedPageSize, log)
	a.Admin = services.NewAdminService(a.Users, a.Posts, a.Catalog, storage, log)
	return a
}

// Close waits for background mail and releases the database connection pool.
func (a *App) Close() error {
	a.Auth.Wait()
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NewStorage returns the media backend selected by MEDIA_BACKEND.
func NewStorage(ctx context.Context, cfg *config.Config) (media.Storage, error) {
	switch cfg.MediaBackend {
	case "local":
		return media.NewLocalStorage(cfg.MediaRoot, cfg.MediaURL), nil
	case "s3":
		return media.NewS3Storage(ctx, media.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
	default:
		return nil, fmt.Errorf("unsupported media backend %q", cfg.MediaBackend)
	}
}

// NewMailer returns the mail backend selected by MAIL_BACKEND.
func NewMailer(cfg *config.Config, log *zap.Logger) mail.Mailer {
	if cfg.MailBackend == "smtp" {
		return mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	}
	return mail.NewLogMailer(log)
}
