package web

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"musicapp/internal/models"
)

// Templates manages HTML template rendering.
type Templates struct {
	templates map[string]*template.Template
	funcs     template.FuncMap
}

// NewTemplates loads every page under pages/ together with the layouts and partials.
func NewTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{
		templates: make(map[string]*template.Template),
		funcs:     defaultFuncs(),
	}
	if err := t.load(templatesFS); err != nil {
		return nil, err
	}
	return t, nil
}

// Render executes the base layout for page into w.
func (t *Templates) Render(w io.Writer, page string, data any) error {
	tmpl, ok := t.templates[page]
	if !ok {
		return fmt.Errorf("template %q not found", page)
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}

func (t *Templates) load(templatesFS fs.FS) error {
	layouts, err := fs.Glob(templatesFS, "layouts/*.html")
	if err != nil {
		return fmt.Errorf("finding layouts: %w", err)
	}
	partials, err := fs.Glob(templatesFS, "partials/*.html")
	if err != nil {
		return fmt.Errorf("finding partials: %w", err)
	}
	pages, err := fs.Glob(templatesFS, "pages/*.html")
	if err != nil {
		return fmt.Errorf("finding pages: %w", err)
	}
	if len(pages) == 0 {
		return fmt.Errorf("no page templates found")
	}

	common := append(layouts, partials...)
	for _, page := range pages {
		name := strings.TrimSuffix(path.Base(page), ".html")
		files := append([]string{page}, common...)

		tmpl, err := template.New(name).Funcs(t.funcs).ParseFS(templatesFS, files...)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}
		t.templates[name] = tmpl
	}
	return nil
}

func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"formatDatePtr": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
		"duration": models.FormatDuration,
		"str": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"num": func(n *int) int {
			if n == nil {
				return 0
			}
			return *n
		},
		"add": func(a, b int) int {
			return a + b
		},
		"toggle": func(kind string, id int64, on bool, returnURL string) FavoriteToggle {
			return FavoriteToggle{Type: kind, ID: id, On: on, Return: returnURL}
		},
	}
}

// FavoriteToggle feeds the favorite button partial.
type FavoriteToggle struct {
	Type   string
	ID     int64
	On     bool
	Return string
}

// PageData contains common data passed to all page templates.
type PageData struct {
	Title       string
	User        *models.AuthUserSummary
	IsAdmin     bool
	CurrentPath string
	LoginPath   string
	LogoutPath  string
	Error       string
}

// ErrorPageData describes a rendered error page. RequestID is set for
// server errors so a report can be matched to the log line.
type ErrorPageData struct {
	PageData
	Status    int
	Message   string
	RequestID string
}

// HomePageData lists what the landing page shows.
type HomePageData struct {
	PageData
	Playlists []models.Playlist
	Songs     []models.SongView
}

// ArtistsPageData is the artist index.
type ArtistsPageData struct {
	PageData
	Artists models.Page[models.Artist]
}

// ArtistPageData is one artist with discography and songs.
type ArtistPageData struct {
	PageData
	Artist models.Artist
	Albums []models.Album
	Songs  []models.SongView
}

// AlbumPageData is one album with its tracks.
// Playlists are the viewer's own, offered as targets for the whole album.
type AlbumPageData struct {
	PageData
	Album     models.Album
	Artist    models.Artist
	Tracks    []models.SongView
	Playlists []models.Playlist
}

// SongsPageData is the searchable song list.
type SongsPageData struct {
	PageData
	Query string
	Songs models.Page[models.SongView]
}

// SongPageData is one song. Playlists are the viewer's own, offered as
// targets for "add to playlist". Featured lists the visible playlists that
// already hold the song.
type SongPageData struct {
	PageData
	Song       models.SongView
	Playlists  []models.Playlist
	Featured   []models.Playlist
	IsFavorite bool
}

// SearchPageData is the cross-catalog search page.
type SearchPageData struct {
	PageData
	Query   string
	Message string
	Results models.SearchResults
}

// PlaylistsPageData lists the viewer's and the public playlists.
type PlaylistsPageData struct {
	PageData
	Mine   []models.Playlist
	Public []models.Playlist
}

// PlaylistPageData is one playlist with its songs.
type PlaylistPageData struct {
	PageData
	Playlist models.Playlist
	Owner    string
	Songs    []models.SongView
	IsOwner  bool
}

// FavoritesPageData lists the viewer's favorites.
type FavoritesPageData struct {
	PageData
	Favorites []models.FavoriteView
}

// ProfilePageData is a user profile; Self is set when viewing one's own.
type ProfilePageData struct {
	PageData
	Profile     models.User
	Roles       []string
	Stats       models.ProfileStats
	Playlists   []models.Playlist
	Self        bool
	IsFollowing bool
}

// LoginPageData backs the login form.
type LoginPageData struct {
	PageData
	UsernameOrEmail string
	RememberMe      bool
	ReturnURL       string
}

// RegisterPageData backs the registration form.
type RegisterPageData struct {
	PageData
	Form   RegisterForm
	Fields map[string]string
}

// RegisterForm echoes the submitted registration values.
type RegisterForm struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
}
