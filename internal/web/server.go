// Package web serves the HTML frontend and mounts the JSON API beside it.
package web

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"musicapp/internal/config"
	"musicapp/internal/http/middleware"
	"musicapp/internal/httpapi"
	"musicapp/internal/session"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Server      config.ServerConfig
	Auth        config.AuthConfig
	CORS        config.CORSConfig
	TemplatesFS fs.FS
	StaticFS    fs.FS
	Services    httpapi.Services
	Sessions    *session.Manager
	Uploads     Uploads
	Logger      zerolog.Logger
}

// Server is the HTTP server for the web application.
type Server struct {
	router   chi.Router
	server   *http.Server
	handlers *Handlers
	api      *httpapi.Server
	policy   session.Policy
	logger   zerolog.Logger
	shutdown time.Duration
}

// NewServer creates a new web server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Sessions == nil {
		return nil, errors.New("session manager is required")
	}

	templates, err := NewTemplates(cfg.TemplatesFS)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	policy := session.PolicyFromConfig(cfg.Auth)
	s := &Server{
		router:   chi.NewRouter(),
		handlers: NewHandlers(cfg.Services, cfg.Sessions, policy, cfg.Auth.LogoutPath, templates, cfg.Uploads),
		api:      httpapi.New(cfg.Services, cfg.Sessions, policy),
		policy:   policy,
		logger:   cfg.Logger,
		shutdown: cfg.Server.ShutdownTimeout,
	}

	s.setupMiddleware(cfg)
	s.setupRoutes(cfg)

	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

func (s *Server) setupMiddleware(cfg ServerConfig) {
	s.router.Use(chimw.RealIP)
	s.router.Use(middleware.RequestLogging(s.logger))
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.CORS(cfg.CORS.AllowedOrigin))
	s.router.Use(cfg.Sessions.Middleware)
}

func (s *Server) setupRoutes(cfg ServerConfig) {
	h := s.handlers
	authed := session.RequireAuth(s.policy)

	fileServer := http.FileServer(http.FS(cfg.StaticFS))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	s.router.Get("/uploads/*", h.Upload)

	s.router.Mount(cfg.Auth.APIPrefix, s.api.Routes())

	s.router.Get("/", h.Home)
	s.router.Get("/Artists", h.Artists)
	s.router.Get("/Artists/{id}", h.Artist)
	s.router.Get("/Albums/{id}", h.Album)
	s.router.Get("/Search", h.Search)
	s.router.Get("/Songs", h.Songs)
	s.router.Get("/Songs/{id}", h.Song)
	s.router.Post("/Songs/{id}/Play", h.PlaySong)
	s.router.Get("/Users/{id}", h.User)

	s.router.Group(func(r chi.Router) {
		r.Use(authed)
		r.Get("/Playlists", h.Playlists)
		r.Get("/Playlists/{id}", h.Playlist)
		r.Post("/Playlists", h.CreatePlaylist)
		r.Post("/Playlists/{id}/Delete", h.DeletePlaylist)
		r.Post("/Playlists/{id}/Songs", h.AddPlaylistSong)
		r.Post("/Playlists/{id}/Songs/{songID}/Remove", h.RemovePlaylistSong)
		r.Post("/Playlists/{id}/Albums", h.AddPlaylistAlbum)
		r.Post("/Playlists/{id}/Copy", h.CopyPlaylist)
		r.Get("/Favorites", h.Favorites)
		r.Post("/Favorites/Toggle", h.ToggleFavorite)
		r.Get("/Profile", h.Profile)
		r.Post("/Users/{id}/Follow", h.Follow)
		r.Post("/Users/{id}/Unfollow", h.Unfollow)
	})

	s.router.Get(cfg.Auth.LoginPath, h.LoginForm)
	s.router.Post(cfg.Auth.LoginPath, h.Login)
	s.router.Get("/Account/Register", h.RegisterForm)
	s.router.Post("/Account/Register", h.Register)
	s.router.Post(cfg.Auth.LogoutPath, h.Logout)
	s.router.Get(cfg.Auth.AccessDeniedPath, h.AccessDenied)

	s.router.NotFound(h.NotFound)
}

// Handler exposes the configured router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.server.Addr).Msg("http server starting")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info().Msg("shutting down http server")
	}

	timeout := s.shutdown
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info().Msg("http server stopped")
	return nil
}
