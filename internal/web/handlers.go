package web

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"musicapp/internal/apiclient"
	"musicapp/internal/app/albums"
	"musicapp/internal/app/artists"
	"musicapp/internal/app/favorites"
	"musicapp/internal/app/playlists"
	"musicapp/internal/app/search"
	"musicapp/internal/app/songs"
	"musicapp/internal/app/users"
	"musicapp/internal/http/middleware"
	"musicapp/internal/httpapi"
	"musicapp/internal/logging"
	"musicapp/internal/models"
	"musicapp/internal/session"
	"musicapp/internal/store"
)

const (
	artistsPageSize = 24
	songsPageSize   = 25
	homeSongCount   = 10
	homeListCount   = 6
)

// Uploads fetches files stored by the backend API.
type Uploads interface {
	Fetch(ctx context.Context, path, rawQuery string) (*http.Response, error)
}

// Handlers contains HTTP handlers for the web application.
type Handlers struct {
	users     users.Service
	artists   artists.Service
	albums    albums.Service
	songs     songs.Service
	playlists playlists.Service
	favorites favorites.Service
	search    search.Service

	sessions  *session.Manager
	policy    session.Policy
	logout    string
	templates *Templates
	uploads   Uploads
}

// NewHandlers creates a new Handlers instance. uploads may be nil when no
// backend API is configured.
func NewHandlers(svc httpapi.Services, sessions *session.Manager, policy session.Policy, logoutPath string, templates *Templates, uploads Uploads) *Handlers {
	return &Handlers{
		users:     svc.Users,
		artists:   svc.Artists,
		albums:    svc.Albums,
		songs:     svc.Songs,
		playlists: svc.Playlists,
		favorites: svc.Favorites,
		search:    svc.Search,
		sessions:  sessions,
		policy:    policy,
		logout:    logoutPath,
		templates: templates,
		uploads:   uploads,
	}
}

func (h *Handlers) page(r *http.Request, title string) PageData {
	data := PageData{
		Title:       title,
		CurrentPath: r.URL.RequestURI(),
		LoginPath:   h.policy.LoginPath,
		LogoutPath:  h.logout,
	}
	if p, ok := session.FromContext(r.Context()); ok {
		user := p.User
		data.User = &user
		data.IsAdmin = p.HasRole(models.RoleAdmin)
	}
	return data
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.templates.Render(&buf, name, data); err != nil {
		logging.FromContext(r.Context()).Error().Err(err).Str("template", name).Msg("render failed")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// fail answers err the way a browser expects: a login redirect for 401, the
// access denied redirect for 403 and an error page otherwise.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, _ := httpapi.Status(err)
	switch status {
	case http.StatusUnauthorized:
		h.policy.Challenge(w, r)
		return
	case http.StatusForbidden:
		h.policy.Forbid(w, r)
		return
	}

	msg := http.StatusText(status)
	if status < http.StatusInternalServerError {
		msg = userMessage(err, msg)
	} else {
		logging.FromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("page failed")
	}
	h.renderError(w, r, status, msg)
}

func (h *Handlers) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	data := ErrorPageData{
		PageData: h.page(r, http.StatusText(status)),
		Status:   status,
		Message:  msg,
	}
	if status >= http.StatusInternalServerError {
		data.RequestID = middleware.RequestID(r.Context())
	}
	h.render(w, r, status, "error", data)
}

func userMessage(err error, fallback string) string {
	var verr *store.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	if errors.Is(err, store.ErrNotFound) {
		return "The page you are looking for does not exist."
	}
	return fallback
}

func principal(r *http.Request) (session.Principal, bool) {
	return session.FromContext(r.Context())
}

func viewer(r *http.Request) int64 {
	if p, ok := principal(r); ok {
		return p.UserID()
	}
	return 0
}

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, store.ErrNotFound
	}
	return id, nil
}

func formID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.PostFormValue(name)), 10, 64)
	if err != nil || id <= 0 {
		return 0, store.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}

func pageNumber(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func playlistPath(id int64) string {
	return "/Playlists/" + strconv.FormatInt(id, 10)
}

func userPath(id int64) string {
	return "/Users/" + strconv.FormatInt(id, 10)
}

// Home shows public playlists and the most played songs (GET /).
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lists, err := h.playlists.Public(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	all, err := h.songs.List(ctx, store.SongFilter{})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Song.PlayCount > all[j].Song.PlayCount })

	if len(lists) > homeListCount {
		lists = lists[:homeListCount]
	}
	if len(all) > homeSongCount {
		all = all[:homeSongCount]
	}
	h.render(w, r, http.StatusOK, "home", HomePageData{
		PageData:  h.page(r, "Home"),
		Playlists: lists,
		Songs:     all,
	})
}

// Artists lists artists a page at a time (GET /Artists).
func (h *Handlers) Artists(w http.ResponseWriter, r *http.Request) {
	list, err := h.artists.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "artists", ArtistsPageData{
		PageData: h.page(r, "Artists"),
		Artists:  models.Paginate(list, pageNumber(r), artistsPageSize),
	})
}

// Artist shows one artist (GET /Artists/{id}).
func (h *Handlers) Artist(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	detail, err := h.artists.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	tracks, err := h.songs.List(r.Context(), store.SongFilter{ArtistID: id})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "artist", ArtistPageData{
		PageData: h.page(r, detail.Artist.Name),
		Artist:   detail.Artist,
		Albums:   detail.Albums,
		Songs:    tracks,
	})
}

// Album shows one album and its tracks (GET /Albums/{id}).
func (h *Handlers) Album(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	detail, err := h.albums.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data := AlbumPageData{
		PageData: h.page(r, detail.Album.Title),
		Album:    detail.Album,
		Artist:   detail.Artist,
		Tracks:   detail.Tracks,
	}
	if uid := viewer(r); uid != 0 {
		if data.Playlists, err = h.playlists.Mine(r.Context(), uid); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	h.render(w, r, http.StatusOK, "album", data)
}

// Songs lists songs, optionally filtered by ?q= (GET /Songs).
func (h *Handlers) Songs(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	list, err := h.songs.List(r.Context(), store.SongFilter{Query: q})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "songs", SongsPageData{
		PageData: h.page(r, "Songs"),
		Query:    q,
		Songs:    models.Paginate(list, pageNumber(r), songsPageSize),
	})
}

// Song shows one song (GET /Songs/{id}).
func (h *Handlers) Song(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := idParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	view, err := h.songs.Get(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	uid := viewer(r)
	data := SongPageData{PageData: h.page(r, view.Song.Title), Song: view}
	if data.Featured, err = h.playlists.Featuring(ctx, uid, id); err != nil {
		h.fail(w, r, err)
		return
	}
	if uid != 0 {
		if data.Playlists, err = h.playlists.Mine(ctx, uid); err != nil {
			h.fail(w, r, err)
			return
		}
		req := models.FavoriteRequest{ContentType: string(models.ContentSong), ContentID: id}
		if data.IsFavorite, err = h.favorites.IsFavorite(ctx, uid, req); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	h.render(w, r, http.StatusOK, "song", data)
}

// PlaySong counts a play and returns to the song (POST /Songs/{id}/Play).
func (h *Handlers) PlaySong(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.songs.Play(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, "/Songs/"+strconv.FormatInt(id, 10))
}

// Search looks up songs, artists, albums and public playlists (GET /Search?q=).
// A query that is too short renders the form with a hint instead of failing.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	data := SearchPageData{PageData: h.page(r, "Search"), Query: q}
	if q != "" {
		res, err := h.search.Search(r.Context(), q, search.DefaultLimit)
		var verr *store.ValidationError
		switch {
		case errors.As(err, &verr):
			data.Message = "Enter at least 2 characters."
		case err != nil:
			h.fail(w, r, err)
			return
		default:
			data.Results = res
		}
	}
	h.render(w, r, http.StatusOK, "search", data)
}

// Playlists lists the viewer's own and the public playlists (GET /Playlists).
func (h *Handlers) Playlists(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	mine, err := h.playlists.Mine(ctx, viewer(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	public, err := h.playlists.Public(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "playlists", PlaylistsPageData{
		PageData: h.page(r, "Playlists"),
		Mine:     mine,
		Public:   public,
	})
}

// Playlist shows one playlist (GET /Playlists/{id}).
func (h *Handlers) Playlist(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	uid := viewer(r)
	detail, err := h.playlists.Get(r.Context(), uid, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "playlist", PlaylistPageData{
		PageData: h.page(r, detail.Playlist.Name),
		Playlist: detail.Playlist,
		Owner:    detail.Owner,
		Songs:    detail.Songs,
		IsOwner:  uid != 0 && detail.Playlist.OwnerID == uid,
	})
}

// CreatePlaylist handles the new playlist form (POST /Playlists).
func (h *Handlers) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	p := models.Playlist{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		IsPublic: r.PostFormValue("isPublic") != "",
	}
	if desc := strings.TrimSpace(r.PostFormValue("description")); desc != "" {
		p.Description = &desc
	}
	created, err := h.playlists.Create(r.Context(), viewer(r), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, playlistPath(created.ID))
}

// DeletePlaylist removes a playlist (POST /Playlists/{id}/Delete).
func (h *Handlers) DeletePlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.playlists.Delete(r.Context(), viewer(r), id); err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, "/Playlists")
}

// AddPlaylistSong appends the posted songId (POST /Playlists/{id}/Songs).
func (h *Handlers) AddPlaylistSong(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	songID, err := formID(r, "songId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, _, err := h.playlists.AddSong(r.Context(), viewer(r), id, songID); err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, playlistPath(id))
}

// AddPlaylistAlbum appends every track of the posted albumId
// (POST /Playlists/{id}/Albums).
func (h *Handlers) AddPlaylistAlbum(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	albumID, err := formID(r, "albumId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, _, err := h.playlists.AddAlbum(r.Context(), viewer(r), id, albumID); err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, playlistPath(id))
}

// CopyPlaylist saves a private copy into the viewer's library and opens it
// (POST /Playlists/{id}/Copy).
func (h *Handlers) CopyPlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	cp, err := h.playlists.Copy(r.Context(), viewer(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, playlistPath(cp.ID))
}

// RemovePlaylistSong drops one song (POST /Playlists/{id}/Songs/{songID}/Remove).
func (h *Handlers) RemovePlaylistSong(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	songID, err := idParam(r, "songID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.playlists.RemoveSong(r.Context(), viewer(r), id, songID); err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, playlistPath(id))
}

// Favorites lists the viewer's favorites (GET /Favorites).
func (h *Handlers) Favorites(w http.ResponseWriter, r *http.Request) {
	list, err := h.favorites.List(r.Context(), viewer(r), r.URL.Query().Get("type"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "favorites", FavoritesPageData{
		PageData:  h.page(r, "Favorites"),
		Favorites: list,
	})
}

// ToggleFavorite adds or removes a favorite (POST /Favorites/Toggle).
func (h *Handlers) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := formID(r, "contentId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	uid := viewer(r)
	req := models.FavoriteRequest{ContentType: r.PostFormValue("contentType"), ContentID: id}

	exists, err := h.favorites.IsFavorite(ctx, uid, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if exists {
		err = h.favorites.Remove(ctx, uid, req)
	} else {
		_, _, err = h.favorites.Add(ctx, uid, req)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, session.SafeReturnURL(r.PostFormValue("returnUrl"), "/Favorites"))
}

// Profile shows the signed-in user's own profile (GET /Profile).
func (h *Handlers) Profile(w http.ResponseWriter, r *http.Request) {
	uid := viewer(r)
	profile, err := h.users.Profile(r.Context(), uid)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	mine, err := h.playlists.Mine(r.Context(), uid)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "profile", ProfilePageData{
		PageData:  h.page(r, "My profile"),
		Profile:   profile.User,
		Roles:     profile.Roles,
		Stats:     profile.Stats,
		Playlists: mine,
		Self:      true,
	})
}

// User shows another user's profile and public playlists (GET /Users/{id}).
func (h *Handlers) User(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := idParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	uid := viewer(r)
	if uid == id {
		redirect(w, r, "/Profile")
		return
	}
	profile, err := h.users.Profile(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	public, err := h.playlists.Public(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	owned := make([]models.Playlist, 0, len(public))
	for _, p := range public {
		if p.OwnerID == id {
			owned = append(owned, p)
		}
	}

	data := ProfilePageData{
		PageData:  h.page(r, profile.User.Username),
		Profile:   profile.User,
		Roles:     profile.Roles,
		Stats:     profile.Stats,
		Playlists: owned,
	}
	if uid != 0 {
		if data.IsFollowing, err = h.users.IsFollowing(ctx, uid, id); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	h.render(w, r, http.StatusOK, "profile", data)
}

// Follow starts following a user (POST /Users/{id}/Follow).
func (h *Handlers) Follow(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, _, err := h.users.Follow(r.Context(), viewer(r), id); err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, userPath(id))
}

// Unfollow stops following a user (POST /Users/{id}/Unfollow).
func (h *Handlers) Unfollow(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.users.Unfollow(r.Context(), viewer(r), id); err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, userPath(id))
}

// LoginForm shows the login page (GET /Account/Login).
func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	returnURL := session.SafeReturnURL(r.URL.Query().Get("ReturnUrl"), "/")
	if _, ok := principal(r); ok {
		redirect(w, r, returnURL)
		return
	}
	h.render(w, r, http.StatusOK, "login", LoginPageData{
		PageData:  h.page(r, "Sign in"),
		ReturnURL: returnURL,
	})
}

// Login verifies credentials and starts a cookie session (POST /Account/Login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	login := strings.TrimSpace(r.PostFormValue("usernameOrEmail"))
	remember := r.PostFormValue("rememberMe") != ""
	returnURL := session.SafeReturnURL(r.PostFormValue("returnUrl"), "/")

	summary, err := h.users.Authenticate(ctx, login, r.PostFormValue("password"))
	if errors.Is(err, store.ErrInvalidCredentials) {
		logging.FromContext(ctx).Info().Str("login", login).Msg("login rejected")
		data := LoginPageData{
			PageData:        h.page(r, "Sign in"),
			UsernameOrEmail: login,
			RememberMe:      remember,
			ReturnURL:       returnURL,
		}
		data.Error = "Invalid username/email or password."
		h.render(w, r, http.StatusUnauthorized, "login", data)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if _, err := h.sessions.SignIn(ctx, w, summary, remember); err != nil {
		h.fail(w, r, err)
		return
	}
	logging.FromContext(ctx).Info().Int64("user_id", summary.ID).Msg("signed in")
	http.Redirect(w, r, returnURL, http.StatusFound)
}

// RegisterForm shows the registration page (GET /Account/Register).
func (h *Handlers) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "register", RegisterPageData{
		PageData: h.page(r, "Create account"),
	})
}

// Register creates an account and signs it in (POST /Account/Register).
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	in := users.RegisterInput{
		FirstName:       strings.TrimSpace(r.PostFormValue("firstName")),
		LastName:        strings.TrimSpace(r.PostFormValue("lastName")),
		Username:        strings.TrimSpace(r.PostFormValue("username")),
		Email:           strings.TrimSpace(r.PostFormValue("email")),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
	}

	summary, err := h.users.Register(ctx, in)
	if err != nil {
		status, _ := httpapi.Status(err)
		if status != http.StatusBadRequest && status != http.StatusConflict {
			h.fail(w, r, err)
			return
		}
		data := RegisterPageData{
			PageData: h.page(r, "Create account"),
			Form: RegisterForm{
				FirstName: in.FirstName,
				LastName:  in.LastName,
				Username:  in.Username,
				Email:     in.Email,
			},
		}
		var verr *store.ValidationError
		if errors.As(err, &verr) {
			data.Fields = verr.Fields
			data.Error = "Please correct the highlighted fields."
		} else {
			data.Error = err.Error()
		}
		h.render(w, r, status, "register", data)
		return
	}

	if _, err := h.sessions.SignIn(ctx, w, summary, false); err != nil {
		h.fail(w, r, err)
		return
	}
	redirect(w, r, "/Profile")
}

// Logout ends the session (POST /Account/Logout).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.SignOut(r.Context(), w, r); err != nil {
		logging.FromContext(r.Context()).Warn().Err(err).Msg("sign out failed")
	}
	redirect(w, r, "/")
}

// AccessDenied explains a refused request (GET /Account/AccessDenied).
func (h *Handlers) AccessDenied(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusForbidden, "You do not have permission to view this page.")
}

// NotFound renders the 404 page for unknown routes.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound, "The page you are looking for does not exist.")
}

const uploadsPrefix = "/uploads/"

// uploadPath cleans a decoded request path and reports whether it still
// names a file under /uploads/.
func uploadPath(raw string) (string, bool) {
	cleaned := path.Clean("/" + raw)
	if !strings.HasPrefix(cleaned, uploadsPrefix) || len(cleaned) == len(uploadsPrefix) {
		return "", false
	}
	return cleaned, true
}

var proxiedHeaders = []string{"Content-Type", "Content-Length", "Cache-Control", "ETag", "Last-Modified"}

// Upload streams a file from the backend API (GET /uploads/*).
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	if h.uploads == nil {
		http.NotFound(w, r)
		return
	}
	target, ok := uploadPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	resp, err := h.uploads.Fetch(r.Context(), target, r.URL.RawQuery)
	if err != nil {
		var apiErr *apiclient.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			http.NotFound(w, r)
			return
		}
		logging.FromContext(r.Context()).Warn().Err(err).Str("path", r.URL.Path).Msg("upload proxy failed")
		h.renderError(w, r, http.StatusBadGateway, "The backend service is unavailable.")
		return
	}
	defer resp.Body.Close()

	for _, name := range proxiedHeaders {
		if v := resp.Header.Get(name); v != "" {
			w.Header().Set(name, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		logging.FromContext(r.Context()).Debug().Err(err).Msg("upload copy interrupted")
	}
}
