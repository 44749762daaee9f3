package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"musicapp/internal/config"
	"musicapp/internal/models"
	"musicapp/internal/store"
)

func newTestClient(t *testing.T, srv *httptest.Server, mutate func(*config.APISettings)) *Client {
	t.Helper()
	cfg := config.APISettings{BaseURL: srv.URL, Timeout: time.Second}
	if mutate != nil {
		mutate(&cfg)
	}
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(config.APISettings{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = New(config.APISettings{BaseURL: "ftp://example.com"})
	assert.Error(t, err)
}

func TestResolveCollapsesDotSegments(t *testing.T) {
	c, err := New(config.APISettings{BaseURL: "https://backend.example/v1/"})
	require.NoError(t, err)

	assert.Equal(t, "https://backend.example/v1/uploads/a.png", c.resolve("uploads/a.png", ""))
	assert.Equal(t, "https://backend.example/v1/x?y=1", c.resolve("/uploads/../../x", "y=1"))
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var body loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		if body.Password != "alice123" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(models.LoginResponse{Success: false, Message: "Invalid credentials"})
			return
		}
		_, _ = io.WriteString(w, `{"token":"t1","refreshToken":"r1","success":true,"message":"ok",
			"user":{"id":2,"username":"alice","email":"alice@example.com","firstName":"Alice","lastName":"","profileImageUrl":"","roles":["User"]}}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, nil)

	resp, err := c.Login(context.Background(), "alice", "alice123")
	require.NoError(t, err)
	assert.Equal(t, "t1", resp.Token)
	assert.Equal(t, "r1", resp.RefreshToken)
	require.NotNil(t, resp.User)
	assert.Equal(t, int64(2), resp.User.ID)
	assert.Equal(t, []string{"User"}, resp.User.Roles)

	_, err = c.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, store.ErrInvalidCredentials)
}

func TestErrorEnvelopeIsDecoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"NotFound","message":"No such file","details":"covers/x.png","timestamp":"2024-03-01T09:00:00Z"}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, nil)
	_, err := c.Fetch(context.Background(), "/uploads/covers/x.png", "")

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "NotFound", apiErr.Envelope.Error)
	assert.Equal(t, "covers/x.png", apiErr.Envelope.Details)
	assert.Contains(t, apiErr.Error(), "No such file")
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(t, srv, func(cfg *config.APISettings) { cfg.Timeout = 50 * time.Millisecond })

	_, err := c.Login(context.Background(), "alice", "alice123")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(config.APISettings{BaseURL: url, Timeout: time.Second})
	require.NoError(t, err)

	_, err = c.Login(context.Background(), "alice", "alice123")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFetchUsesServiceToken(t *testing.T) {
	var logins atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			n := logins.Add(1)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(models.LoginResponse{Success: true, Token: map[int32]string{1: "stale", 2: "fresh"}[n]})
		case "/uploads/covers/a.png":
			if r.Header.Get("Authorization") != "Bearer fresh" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			assert.Equal(t, "size=small", r.URL.RawQuery)
			w.Header().Set("Content-Type", "image/png")
			_, _ = io.WriteString(w, "PNG")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv, func(cfg *config.APISettings) {
		cfg.Username = "frontend"
		cfg.Password = "secret"
	})

	resp, err := c.Fetch(context.Background(), "/uploads/covers/a.png", "size=small")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "PNG", string(body))
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, int32(2), logins.Load(), "a rejected token is refreshed once")
}

func TestRateLimiterHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.LoginResponse{Success: true})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, func(cfg *config.APISettings) { cfg.RequestsPerSecond = 0.001 })

	_, err := c.Login(context.Background(), "a", "b")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Login(ctx, "a", "b")
	assert.Error(t, err)
}
