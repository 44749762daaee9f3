// Package httpapi serves the JSON API mounted under the API prefix.
package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"musicapp/internal/app/albums"
	"musicapp/internal/app/artists"
	"musicapp/internal/app/favorites"
	"musicapp/internal/app/playlists"
	"musicapp/internal/app/search"
	"musicapp/internal/app/songs"
	"musicapp/internal/app/users"
	"musicapp/internal/http/respond"
	"musicapp/internal/models"
	"musicapp/internal/session"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Services groups the application services the API exposes.
type Services struct {
	Users     users.Service
	Artists   artists.Service
	Albums    albums.Service
	Songs     songs.Service
	Playlists playlists.Service
	Favorites favorites.Service
	Search    search.Service
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users     users.Service
	artists   artists.Service
	albums    albums.Service
	songs     songs.Service
	playlists playlists.Service
	favorites favorites.Service
	search    search.Service

	sessions *session.Manager
	policy   session.Policy
}

// New configures a Server. Requests must already have passed through the
// session middleware.
func New(svc Services, sessions *session.Manager, policy session.Policy) *Server {
	return &Server{
		users:     svc.Users,
		artists:   svc.Artists,
		albums:    svc.Albums,
		songs:     svc.Songs,
		playlists: svc.Playlists,
		favorites: svc.Favorites,
		search:    svc.Search,
		sessions:  sessions,
		policy:    policy,
	}
}

// Routes returns the API router, meant to be mounted at the API prefix.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	authed := session.RequireAuth(s.policy)
	admin := session.RequireRole(s.policy, models.RoleAdmin)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/register", s.handleRegister)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/logout", s.handleLogout)
	})

	r.Route("/me", func(r chi.Router) {
		r.Use(authed)
		r.Get("/", s.handleMe)
		r.Put("/", s.handleUpdateMe)
		r.Post("/password", s.handleChangePassword)
		r.Get("/playlists", s.handleMyPlaylists)
		r.Get("/favorites", s.handleListFavorites)
		r.Post("/favorites", s.handleAddFavorite)
		r.Delete("/favorites", s.handleRemoveFavorite)
		r.Get("/favorites/check", s.handleCheckFavorite)
	})

	r.Route("/artists", func(r chi.Router) {
		r.Get("/", s.handleListArtists)
		r.Get("/{id}", s.handleGetArtist)
		r.With(admin).Post("/", s.handleCreateArtist)
		r.With(admin).Put("/{id}", s.handleUpdateArtist)
		r.With(admin).Delete("/{id}", s.handleDeleteArtist)
	})

	r.Route("/albums", func(r chi.Router) {
		r.Get("/", s.handleListAlbums)
		r.Get("/{id}", s.handleGetAlbum)
		r.With(admin).Post("/", s.handleCreateAlbum)
		r.With(admin).Put("/{id}", s.handleUpdateAlbum)
		r.With(admin).Delete("/{id}", s.handleDeleteAlbum)
	})

	r.Route("/songs", func(r chi.Router) {
		r.Get("/", s.handleListSongs)
		r.Get("/{id}", s.handleGetSong)
		r.Get("/{id}/playlists", s.handleSongPlaylists)
		r.Post("/{id}/play", s.handlePlaySong)
		r.With(admin).Post("/", s.handleCreateSong)
		r.With(admin).Put("/{id}", s.handleUpdateSong)
		r.With(admin).Delete("/{id}", s.handleDeleteSong)
	})

	r.Route("/playlists", func(r chi.Router) {
		r.Get("/", s.handleListPlaylists)
		r.Group(func(r chi.Router) {
			r.Use(authed)
			r.Get("/{id}", s.handleGetPlaylist)
			r.Post("/", s.handleCreatePlaylist)
			r.Put("/{id}", s.handleUpdatePlaylist)
			r.Delete("/{id}", s.handleDeletePlaylist)
			r.Post("/{id}/songs", s.handleAddPlaylistSong)
			r.Delete("/{id}/songs/{songID}", s.handleRemovePlaylistSong)
			r.Post("/{id}/albums", s.handleAddPlaylistAlbum)
			r.Post("/{id}/copy", s.handleCopyPlaylist)
		})
	})

	r.Get("/search", s.handleSearch)

	r.Route("/roles", func(r chi.Router) {
		r.Use(admin)
		r.Get("/", s.handleListRoles)
		r.Post("/", s.handleCreateRole)
	})

	r.Route("/users", func(r chi.Router) {
		r.With(admin).Get("/", s.handleListUsers)
		r.Get("/{id}", s.handleGetUser)
		r.Get("/{id}/followers", s.handleFollowers)
		r.Get("/{id}/following", s.handleFollowing)
		r.With(authed).Post("/{id}/follow", s.handleFollow)
		r.With(authed).Delete("/{id}/follow", s.handleUnfollow)
		r.With(admin).Delete("/{id}", s.handleDeleteUser)
		r.With(admin).Put("/{id}/roles/{role}", s.handleAssignRole)
		r.With(admin).Delete("/{id}/roles/{role}", s.handleRevokeRole)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusNotFound, CodeNotFound, "No such endpoint.", r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusMethodNotAllowed, "MethodNotAllowed", "Method not allowed.", r.Method)
	})

	return r
}

// actor returns the authenticated user id, or zero for anonymous requests.
func actor(r *http.Request) int64 {
	if p, ok := session.FromContext(r.Context()); ok {
		return p.UserID()
	}
	return 0
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(w, "invalid "+name)
		return 0, false
	}
	return id, true
}

func queryID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		badRequest(w, "invalid "+name)
		return 0, false
	}
	return id, true
}

// pageParams reads page and pageSize. Absent values fall back to the first
// page of defaultPageSize items.
func pageParams(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	q := r.URL.Query()
	page, size := 1, defaultPageSize
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequest(w, "invalid page")
			return 0, 0, false
		}
		page = n
	}
	if raw := q.Get("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequest(w, "invalid pageSize")
			return 0, 0, false
		}
		size = min(n, maxPageSize)
	}
	return page, size, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := respond.Decode(r, v); err != nil {
		badRequest(w, "invalid JSON payload")
		return false
	}
	return true
}
