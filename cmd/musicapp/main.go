package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/crypto/bcrypt"

	"musicapp/internal/app/users"
	"musicapp/internal/config"
	"musicapp/internal/logging"
	"musicapp/internal/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:   "musicapp",
		Usage:  "Music catalog web frontend",
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the web server (default)",
				Action: serveAction,
			},
			{
				Name:  "migrate",
				Usage: "Create the durable session table",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "database-url",
						Usage:   "Postgres connection string",
						Sources: cli.EnvVars("DATABASE_URL"),
					},
				},
				Action: migrateAction,
			},
			{
				Name:  "hash-password",
				Usage: "Print the bcrypt hash of a password",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "password"},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "cost",
						Usage: "bcrypt cost",
						Value: bcrypt.DefaultCost,
					},
				},
				Action: hashPasswordAction,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("musicapp failed")
	}
}

func serveAction(ctx context.Context, _ *cli.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	logging.SetGlobal(logger)

	return serve(ctx, cfg, logger)
}

func migrateAction(ctx context.Context, cmd *cli.Command) error {
	dsn := cmd.String("database-url")
	if dsn == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	db, err := openDatabase(ctx, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := session.Migrate(ctx, db); err != nil {
		return err
	}
	log.Info().Msg("session table ready")
	return nil
}

func hashPasswordAction(_ context.Context, cmd *cli.Command) error {
	password := cmd.StringArg("password")
	if password == "" {
		return fmt.Errorf("a password argument is required")
	}
	hash, err := users.HashPassword(password, int(cmd.Int("cost")))
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}
