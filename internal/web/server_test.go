package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

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
	"musicapp/internal/models"
	"musicapp/internal/session"
	"musicapp/internal/store"
	assets "musicapp/web"
)

type fakeUploads struct {
	resp  *http.Response
	err   error
	path  string
	query string
}

func (f *fakeUploads) Fetch(_ context.Context, path, rawQuery string) (*http.Response, error) {
	f.path, f.query = path, rawQuery
	return f.resp, f.err
}

type testSite struct {
	handler http.Handler
	store   *store.Store
	cookie  string
	songID  int64
}

func newTestSite(t *testing.T, uploads Uploads) testSite {
	t.Helper()
	ctx := context.Background()
	st := store.New()
	userSvc := users.New(st, users.WithHashCost(bcrypt.MinCost))

	mgr, err := session.NewManager(session.NewMemoryStore(), session.Options{
		SigningKey: []byte("0123456789abcdef0123456789abcdef"),
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	templates, err := fs.Sub(assets.TemplatesFS, "templates")
	if err != nil {
		t.Fatalf("templates fs: %v", err)
	}
	static, err := fs.Sub(assets.StaticFS, "static")
	if err != nil {
		t.Fatalf("static fs: %v", err)
	}

	srv, err := NewServer(ServerConfig{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0, ShutdownTimeout: time.Second},
		Auth: config.AuthConfig{
			LoginPath:        "/Account/Login",
			LogoutPath:       "/Account/Logout",
			AccessDeniedPath: "/Account/AccessDenied",
			APIPrefix:        "/api",
		},
		TemplatesFS: templates,
		StaticFS:    static,
		Services: httpapi.Services{
			Users:     userSvc,
			Artists:   artists.New(st),
			Albums:    albums.New(st),
			Songs:     songs.New(st),
			Playlists: playlists.New(st),
			Favorites: favorites.New(st),
			Search:    search.New(st),
		},
		Sessions: mgr,
		Uploads:  uploads,
		Logger:   zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	for _, name := range []string{"alice", "bob"} {
		if _, err := userSvc.Register(ctx, users.RegisterInput{
			FirstName:       strings.ToUpper(name[:1]) + name[1:],
			Username:        name,
			Email:           name + "@example.com",
			Password:        name + "123",
			ConfirmPassword: name + "123",
		}); err != nil {
			t.Fatalf("Register(%s): %v", name, err)
		}
	}

	artist, err := st.CreateArtist(ctx, models.Artist{Name: "Portishead", IsActive: true})
	if err != nil {
		t.Fatalf("CreateArtist: %v", err)
	}
	song, err := st.CreateSong(ctx, models.Song{Title: "Glory Box", ArtistID: &artist.ID, DurationSeconds: 301})
	if err != nil {
		t.Fatalf("CreateSong: %v", err)
	}

	return testSite{handler: srv.Handler(), store: st, cookie: mgr.CookieName(), songID: song.ID}
}

func (s testSite) get(t *testing.T, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func (s testSite) post(t *testing.T, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func (s testSite) signIn(t *testing.T, username string) *http.Cookie {
	t.Helper()
	rr := s.post(t, "/Account/Login", url.Values{
		"usernameOrEmail": {username},
		"password":        {username + "123"},
	})
	if rr.Code != http.StatusFound {
		t.Fatalf("sign in %s: status %d body %s", username, rr.Code, rr.Body.String())
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == s.cookie && c.Value != "" {
			return c
		}
	}
	t.Fatalf("sign in %s: no %s cookie", username, s.cookie)
	return nil
}

func TestPublicPagesRender(t *testing.T) {
	site := newTestSite(t, nil)

	tests := []struct {
		path string
		want string
	}{
		{"/", "Glory Box"},
		{"/Artists", "Portishead"},
		{"/Songs?q=glory", "Glory Box"},
		{"/Songs/1", "5:01"},
		{"/Account/Login", "Sign in"},
		{"/Account/Register", "Create account"},
	}
	for _, tc := range tests {
		rr := site.get(t, tc.path)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tc.path, rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Fatalf("%s: unexpected content type %q", tc.path, ct)
		}
		if !strings.Contains(rr.Body.String(), tc.want) {
			t.Fatalf("%s: body does not contain %q", tc.path, tc.want)
		}
	}
}

func TestOutOfRangePageRendersEmpty(t *testing.T) {
	site := newTestSite(t, nil)

	for _, path := range []string{
		"/Artists?page=9223372036854775807",
		"/Songs?page=9223372036854775807",
		"/api/artists?page=9223372036854775807",
	} {
		if rr := site.get(t, path); rr.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rr.Code)
		}
	}
}

func TestUnknownEntityRendersNotFound(t *testing.T) {
	site := newTestSite(t, nil)

	for _, path := range []string{"/Songs/999", "/Artists/abc", "/no/such/page"} {
		rr := site.get(t, path)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "404") {
			t.Fatalf("%s: expected the error page", path)
		}
	}
}

func TestBrowserAndAPIChallenges(t *testing.T) {
	site := newTestSite(t, nil)

	rr := site.get(t, "/Playlists")
	if rr.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/Account/Login?ReturnUrl=%2FPlaylists" {
		t.Fatalf("unexpected location %q", loc)
	}

	rr = site.get(t, "/api/me")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for the API, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected a JSON envelope, got %q", ct)
	}
}

func TestLoginRedirectsToReturnURL(t *testing.T) {
	site := newTestSite(t, nil)

	tests := []struct {
		name      string
		returnURL string
		want      string
	}{
		{"local path", "/Playlists", "/Playlists"},
		{"protocol relative", "//evil.example.com", "/"},
		{"absolute", "https://evil.example.com/", "/"},
		{"empty", "", "/"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := site.post(t, "/Account/Login", url.Values{
				"usernameOrEmail": {"alice"},
				"password":        {"alice123"},
				"returnUrl":       {tc.returnURL},
			})
			if rr.Code != http.StatusFound {
				t.Fatalf("expected 302, got %d", rr.Code)
			}
			if loc := rr.Header().Get("Location"); loc != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, loc)
			}
		})
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	site := newTestSite(t, nil)

	rr := site.post(t, "/Account/Login", url.Values{
		"usernameOrEmail": {"alice"},
		"password":        {"wrong"},
		"returnUrl":       {"/Playlists"},
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Invalid username/email or password.") {
		t.Fatalf("expected the error message, got %s", body)
	}
	if !strings.Contains(body, `value="alice"`) {
		t.Fatalf("expected the login to be echoed back")
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == site.cookie && c.Value != "" {
			t.Fatalf("no session cookie may be issued on failure")
		}
	}
}

func TestSignedInPlaylistFlow(t *testing.T) {
	site := newTestSite(t, nil)
	alice := site.signIn(t, "alice")
	bob := site.signIn(t, "bob")

	rr := site.get(t, "/Playlists", alice)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	rr = site.post(t, "/Playlists", url.Values{"name": {"Late nights"}}, alice)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("create: expected 303, got %d body %s", rr.Code, rr.Body.String())
	}
	location := rr.Header().Get("Location")
	if !strings.HasPrefix(location, "/Playlists/") {
		t.Fatalf("unexpected location %q", location)
	}

	rr = site.post(t, location+"/Songs", url.Values{"songId": {"1"}}, alice)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("add song: expected 303, got %d", rr.Code)
	}

	rr = site.get(t, location, alice)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Glory Box") {
		t.Fatalf("owner view: status %d", rr.Code)
	}

	// private playlists are invisible to everyone else
	if rr := site.get(t, location, bob); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for another user, got %d", rr.Code)
	}
	rr = site.get(t, location)
	if rr.Code != http.StatusFound {
		t.Fatalf("expected a login redirect anonymously, got %d", rr.Code)
	}
	if want := "/Account/Login?ReturnUrl=" + url.QueryEscape(location); rr.Header().Get("Location") != want {
		t.Fatalf("expected %q, got %q", want, rr.Header().Get("Location"))
	}

	rr = site.post(t, location+"/Delete", nil, alice)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/Playlists" {
		t.Fatalf("delete: status %d location %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestCopyPlaylistAndAddAlbum(t *testing.T) {
	site := newTestSite(t, nil)
	ctx := context.Background()
	alice := site.signIn(t, "alice")
	bob := site.signIn(t, "bob")

	listed, _ := site.store.ListArtists(ctx)
	album, err := site.store.CreateAlbum(ctx, models.Album{Title: "Dummy", ArtistID: listed[0].ID})
	if err != nil {
		t.Fatalf("CreateAlbum: %v", err)
	}
	for _, title := range []string{"Mysterons", "Sour Times"} {
		if _, err := site.store.CreateSong(ctx, models.Song{Title: title, AlbumID: &album.ID}); err != nil {
			t.Fatalf("CreateSong: %v", err)
		}
	}
	albumPath := fmt.Sprintf("/Albums/%d", album.ID)

	rr := site.post(t, "/Playlists", url.Values{"name": {"Bristol"}, "isPublic": {"on"}}, alice)
	location := rr.Header().Get("Location")
	if rr.Code != http.StatusSeeOther || location == "" {
		t.Fatalf("create: status %d", rr.Code)
	}

	rr = site.get(t, albumPath, alice)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), location+"/Albums") {
		t.Fatalf("album page does not offer the playlist: status %d", rr.Code)
	}
	albumForm := url.Values{"albumId": {fmt.Sprint(album.ID)}}
	if rr := site.post(t, location+"/Albums", albumForm, bob); rr.Code != http.StatusFound {
		t.Fatalf("bob adding album: expected access denied redirect, got %d", rr.Code)
	}
	rr = site.post(t, location+"/Albums", albumForm, alice)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != location {
		t.Fatalf("add album: status %d location %q", rr.Code, rr.Header().Get("Location"))
	}
	body := site.get(t, location, alice).Body.String()
	if !strings.Contains(body, "Mysterons") || !strings.Contains(body, "Sour Times") {
		t.Fatalf("album tracks missing from playlist")
	}

	rr = site.post(t, location+"/Copy", nil, bob)
	copyLocation := rr.Header().Get("Location")
	if rr.Code != http.StatusSeeOther || copyLocation == location || !strings.HasPrefix(copyLocation, "/Playlists/") {
		t.Fatalf("copy: status %d location %q", rr.Code, copyLocation)
	}
	rr = site.get(t, copyLocation, bob)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Bristol (Copy)") || !strings.Contains(rr.Body.String(), "private") {
		t.Fatalf("copy view: status %d", rr.Code)
	}
	if rr := site.get(t, copyLocation, alice); rr.Code != http.StatusNotFound {
		t.Fatalf("copy is private to bob, alice got %d", rr.Code)
	}

	songs, _ := site.store.ListSongs(ctx, store.SongFilter{Query: "Mysterons"})
	rr = site.get(t, fmt.Sprintf("/Songs/%d", songs[0].Song.ID))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Featured in") || strings.Contains(rr.Body.String(), "Bristol (Copy)") {
		t.Fatalf("anonymous song page should list only the public playlist: status %d", rr.Code)
	}
}

func TestSearchPage(t *testing.T) {
	site := newTestSite(t, nil)

	tests := []struct {
		path string
		want string
	}{
		{"/Search", "Search"},
		{"/Search?q=g", "Enter at least 2 characters."},
		{"/Search?q=glory", "Glory Box"},
		{"/Search?q=portis", "/Artists/1"},
		{"/Search?q=nothing-here", "Nothing matches"},
	}
	for _, tc := range tests {
		rr := site.get(t, tc.path)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tc.path, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), tc.want) {
			t.Fatalf("%s: body does not contain %q", tc.path, tc.want)
		}
	}
}

func TestFavoriteToggle(t *testing.T) {
	site := newTestSite(t, nil)
	alice := site.signIn(t, "alice")

	form := url.Values{"contentType": {"Song"}, "contentId": {"1"}, "returnUrl": {"/Songs/1"}}
	rr := site.post(t, "/Favorites/Toggle", form, alice)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/Songs/1" {
		t.Fatalf("toggle on: status %d location %q", rr.Code, rr.Header().Get("Location"))
	}

	rr = site.get(t, "/Favorites", alice)
	if !strings.Contains(rr.Body.String(), "Glory Box") {
		t.Fatalf("expected the favorite to be listed")
	}

	site.post(t, "/Favorites/Toggle", form, alice)
	on, err := site.store.IsFavorite(context.Background(), 1, models.SongTarget{SongID: site.songID})
	if err != nil {
		t.Fatalf("IsFavorite: %v", err)
	}
	if on {
		t.Fatalf("second toggle should remove the favorite")
	}

	rr = site.post(t, "/Favorites/Toggle", url.Values{"contentType": {"Mixtape"}, "contentId": {"1"}}, alice)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an unknown type, got %d", rr.Code)
	}
}

func TestFollowFromProfile(t *testing.T) {
	site := newTestSite(t, nil)
	alice := site.signIn(t, "alice")

	rr := site.post(t, "/Users/2/Follow", nil, alice)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/Users/2" {
		t.Fatalf("follow: status %d location %q", rr.Code, rr.Header().Get("Location"))
	}
	rr = site.get(t, "/Users/2", alice)
	if !strings.Contains(rr.Body.String(), "Unfollow") {
		t.Fatalf("expected an unfollow button")
	}

	rr = site.post(t, "/Users/1/Follow", nil, alice)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("self follow: expected 400, got %d", rr.Code)
	}

	rr = site.get(t, "/Users/1", alice)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/Profile" {
		t.Fatalf("own profile should redirect, got %d", rr.Code)
	}
	rr = site.get(t, "/Profile", alice)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "1</strong> following") {
		t.Fatalf("profile: status %d", rr.Code)
	}
}

func TestRegisterShowsFieldErrors(t *testing.T) {
	site := newTestSite(t, nil)

	rr := site.post(t, "/Account/Register", url.Values{
		"username":        {"carol"},
		"email":           {"carol@example.com"},
		"password":        {"abc"},
		"confirmPassword": {"abc"},
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `class="field-error"`) || !strings.Contains(rr.Body.String(), `value="carol"`) {
		t.Fatalf("expected field errors and echoed values")
	}

	rr = site.post(t, "/Account/Register", url.Values{
		"username":        {"alice"},
		"email":           {"other@example.com"},
		"password":        {"secret1"},
		"confirmPassword": {"secret1"},
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a taken username, got %d", rr.Code)
	}

	rr = site.post(t, "/Account/Register", url.Values{
		"username":        {"carol"},
		"email":           {"carol@example.com"},
		"password":        {"secret1"},
		"confirmPassword": {"secret1"},
	})
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/Profile" {
		t.Fatalf("register: status %d location %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestLogoutClearsSession(t *testing.T) {
	site := newTestSite(t, nil)
	alice := site.signIn(t, "alice")

	if rr := site.get(t, "/Account/Logout", alice); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET logout must not be routed, got %d", rr.Code)
	}
	if rr := site.get(t, "/Playlists", alice); rr.Code != http.StatusOK {
		t.Fatalf("session should survive a GET to the logout path, got %d", rr.Code)
	}

	rr := site.post(t, "/Account/Logout", nil, alice)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rr.Code)
	}
	if rr := site.get(t, "/Playlists", alice); rr.Code != http.StatusFound {
		t.Fatalf("revoked cookie should be challenged, got %d", rr.Code)
	}
}

func TestStaticAssets(t *testing.T) {
	site := newTestSite(t, nil)

	rr := site.get(t, "/static/app.css")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Content-Type"), "text/css") {
		t.Fatalf("unexpected content type %q", rr.Header().Get("Content-Type"))
	}
}

func TestUploadsProxy(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		site := newTestSite(t, nil)
		if rr := site.get(t, "/uploads/covers/a.png"); rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
	})

	t.Run("streams the backend file", func(t *testing.T) {
		header := http.Header{}
		header.Set("Content-Type", "image/png")
		header.Set("ETag", `"abc"`)
		header.Set("Set-Cookie", "backend=1")
		up := &fakeUploads{resp: &http.Response{
			StatusCode: http.StatusOK,
			Header:     header,
			Body:       io.NopCloser(strings.NewReader("PNG")),
		}}
		site := newTestSite(t, up)

		rr := site.get(t, "/uploads/covers/a.png?size=small")
		if rr.Code != http.StatusOK || rr.Body.String() != "PNG" {
			t.Fatalf("status %d body %q", rr.Code, rr.Body.String())
		}
		if up.path != "/uploads/covers/a.png" || up.query != "size=small" {
			t.Fatalf("unexpected upstream request %q ? %q", up.path, up.query)
		}
		if rr.Header().Get("ETag") != `"abc"` || rr.Header().Get("Content-Type") != "image/png" {
			t.Fatalf("headers not copied: %v", rr.Header())
		}
		if rr.Header().Get("Set-Cookie") != "" {
			t.Fatalf("backend cookies must not leak")
		}
	})

	t.Run("backend missing file", func(t *testing.T) {
		site := newTestSite(t, &fakeUploads{err: &apiclient.Error{StatusCode: http.StatusNotFound}})
		if rr := site.get(t, "/uploads/covers/a.png"); rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
	})

	t.Run("backend down", func(t *testing.T) {
		site := newTestSite(t, &fakeUploads{err: errors.Join(apiclient.ErrUnavailable, errors.New("dial tcp"))})
		rr := site.get(t, "/uploads/covers/a.png")
		if rr.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", rr.Code)
		}
		id := rr.Header().Get("X-Request-ID")
		if id == "" || !strings.Contains(rr.Body.String(), "Request ID: <code>"+id+"</code>") {
			t.Fatalf("error page does not show request id %q", id)
		}
	})
}

func TestUploadsProxyStaysUnderUploads(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		if r.URL.Path == "/api/auth/login" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"token":"svc-token","success":true}`)
			return
		}
		if r.Header.Get("Authorization") != "Bearer svc-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, "served "+r.URL.Path)
	}))
	defer backend.Close()

	client, err := apiclient.New(config.APISettings{
		BaseURL:  backend.URL,
		Username: "frontend",
		Password: "secret",
		Timeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("apiclient.New: %v", err)
	}
	site := newTestSite(t, client)

	for _, target := range []string{
		"/uploads/../api/users",
		"/uploads/%2e%2e/api/users",
		"/uploads/..%2Fapi%2Fusers",
		"/uploads/covers/../../api/users",
		"/uploads/",
	} {
		if rr := site.get(t, target); rr.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d (%q)", target, rr.Code, rr.Body.String())
		}
	}
	mu.Lock()
	if len(paths) != 0 {
		t.Fatalf("backend must not be contacted for rejected paths, saw %v", paths)
	}
	mu.Unlock()

	rr := site.get(t, "/uploads/covers/./a.png")
	if rr.Code != http.StatusOK || rr.Body.String() != "served /uploads/covers/a.png" {
		t.Fatalf("status %d body %q", rr.Code, rr.Body.String())
	}
}
