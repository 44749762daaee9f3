package main

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/rs/zerolog"

	"musicapp/internal/apiclient"
	"musicapp/internal/app/albums"
	"musicapp/internal/app/artists"
	"musicapp/internal/app/favorites"
	"musicapp/internal/app/playlists"
	"musicapp/internal/app/search"
	"musicapp/internal/app/songs"
	"musicapp/internal/app/users"
	"musicapp/internal/config"
	"musicapp/internal/httpapi"
	"musicapp/internal/session"
	"musicapp/internal/store"
	"musicapp/internal/web"
	assets "musicapp/web"
)

func serve(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	dataStore := store.New()

	var client *apiclient.Client
	if cfg.API.Enabled() {
		c, err := apiclient.New(cfg.API)
		if err != nil {
			return fmt.Errorf("backend api client: %w", err)
		}
		client = c
		logger.Info().Str("base_url", cfg.API.BaseURL).Msg("backend api configured")
	}

	var userOpts []users.Option
	if cfg.Auth.Mode == config.AuthModeRemote {
		userOpts = append(userOpts, users.WithRemote(client))
		logger.Info().Msg("credentials are verified by the backend api")
	}

	services := httpapi.Services{
		Users:     users.New(dataStore, userOpts...),
		Artists:   artists.New(dataStore),
		Albums:    albums.New(dataStore),
		Songs:     songs.New(dataStore),
		Playlists: playlists.New(dataStore),
		Favorites: favorites.New(dataStore),
		Search:    search.New(dataStore),
	}

	if cfg.Server.Seed {
		if err := bootstrapDemoData(ctx, dataStore, services); err != nil {
			return err
		}
		logger.Info().Msg("demo data loaded")
	}

	sessionStore, closeStore, err := openSessionStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	manager, err := session.NewManager(sessionStore, session.OptionsFromConfig(cfg.Auth))
	if err != nil {
		return fmt.Errorf("session manager: %w", err)
	}

	templatesFS, err := fs.Sub(assets.TemplatesFS, "templates")
	if err != nil {
		return fmt.Errorf("templates: %w", err)
	}
	staticFS, err := fs.Sub(assets.StaticFS, "static")
	if err != nil {
		return fmt.Errorf("static assets: %w", err)
	}

	serverCfg := web.ServerConfig{
		Server:      cfg.Server,
		Auth:        cfg.Auth,
		CORS:        cfg.CORS,
		TemplatesFS: templatesFS,
		StaticFS:    staticFS,
		Services:    services,
		Sessions:    manager,
		Logger:      logger,
	}
	if client != nil {
		serverCfg.Uploads = client
	}

	srv, err := web.NewServer(serverCfg)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

func openSessionStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (session.Store, func(), error) {
	if cfg.Auth.SessionStore != config.SessionStorePostgres {
		return session.NewMemoryStore(), func() {}, nil
	}

	db, err := openDatabase(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	if err := session.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	logger.Info().Msg("sessions are stored in postgres")
	return session.NewSQLStore(db), func() { _ = db.Close() }, nil
}
