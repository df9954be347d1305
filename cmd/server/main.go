package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yukikurage/geoblog/internal/app"
	"github.com/yukikurage/geoblog/internal/config"
	"github.com/yukikurage/geoblog/internal/handlers"
	"github.com/yukikurage/geoblog/internal/logger"
	"github.com/yukikurage/geoblog/internal/media"
	"github.com/yukikurage/geoblog/internal/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize application", zap.Error(err))
	}
	defer func() { _ = a.Close() }()

	store, err := newSessionStore(cfg)
	if err != nil {
		log.Fatal("failed to create session store", zap.Error(err))
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimitEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisHost + ":" + cfg.RedisPort,
			Password: cfg.RedisPassword,
		})
		defer func() { _ = rdb.Close() }()
		limiter = middleware.NewRateLimiter(rdb, cfg.RateLimitRequests, cfg.RateLimitWindow, log)
	}

	var mediaRoot string
	if local, ok := a.Storage.(*media.LocalStorage); ok {
		mediaRoot = local.Root()
	}

	url := a.Storage.URL
	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:         handlers.NewAuthHandler(a.Auth, log),
		Posts:        handlers.NewPostHandler(a.Content, url, log),
		Profiles:     handlers.NewProfileHandler(a.Profiles, url, log),
		Admin:        handlers.NewAdminHandler(a.Admin, url, log),
		Users:        a.Auth,
		SessionStore: store,
		Limiter:      limiter,
		MediaRoot:    mediaRoot,
		Log:          log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	switch cfg.SessionStore {
	case "cookie":
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	default:
		rs, err := redisStore.NewStore(
			10,
			"tcp",
			cfg.RedisHost+":"+cfg.RedisPort,
			"",
			cfg.RedisPassword,
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, err
		}
		store = rs
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}
