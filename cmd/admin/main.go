package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/yukikurage/geoblog/internal/app"
	"github.com/yukikurage/geoblog/internal/config"
	"github.com/yukikurage/geoblog/internal/logger"
	"github.com/yukikurage/geoblog/internal/seed"
)

const usage = `usage: admin <command> [flags]

commands:
  createsuperuser -email E -password P   create an active admin user
  createstaffuser -email E -password P   create an active staff user
  seed [-demo N] [-posts M]              add reference data and N demo users
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, os.Args[1], os.Args[2:]); err != nil {
		log.Error("command failed", zap.String("command", os.Args[1]), zap.Error(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger, cmd string, args []string) error {
	switch cmd {
	case "createsuperuser", "createstaffuser":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		if err := fs.Parse(args); err != nil {
			return err
		}

		a, err := app.New(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		user, err := a.Admin.CreatePrivilegedUser(*email, *password, cmd == "createsuperuser")
		if err != nil {
			return err
		}
		log.Info("user created",
			zap.Uint64("user_id", user.ID),
			zap.String("email", user.Email),
			zap.Bool("admin", user.Admin),
		)
		return nil

	case "seed":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		demo := fs.Int("demo", 0, "number of demo users to create")
		posts := fs.Int("posts", 3, "posts per demo user")
		if err := fs.Parse(args); err != nil {
			return err
		}

		a, err := app.New(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		seeder := seed.New(a.Users, a.Catalog, a.Admin, a.Content, log)
		if err := seeder.Reference(ctx); err != nil {
			return err
		}
		if *demo > 0 {
			return seeder.Demo(ctx, *demo, *posts)
		}
		return nil

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}
