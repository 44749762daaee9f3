// Package apiclient talks to the backend music API configured by ApiSettings.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"musicapp/internal/config"
	"musicapp/internal/models"
	"musicapp/internal/store"
)

const userAgent = "musicapp/1.0"

var (
	// ErrNotConfigured is returned when no base URL is set.
	ErrNotConfigured = errors.New("backend api is not configured")
	// ErrTimeout is returned when the backend does not answer in time.
	ErrTimeout = errors.New("backend api timed out")
	// ErrUnavailable is returned when the backend cannot be reached.
	ErrUnavailable = errors.New("backend api unavailable")
)

// Error is a non-2xx answer from the backend.
type Error struct {
	StatusCode int
	Envelope   models.ErrorEnvelope
}

func (e *Error) Error() string {
	msg := e.Envelope.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("backend api returned %d: %s", e.StatusCode, msg)
}

// Client is a rate-limited backend API client. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration
	username   string
	password   string

	tokenMu sync.Mutex
	token   string
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New builds a client from the API settings.
func New(cfg config.APISettings, opts ...Option) (*Client, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		if b := int(cfg.RequestsPerSecond); b > 1 {
			burst = b
		}
	}

	c := &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, burst),
		timeout:    timeout,
		username:   cfg.Username,
		password:   cfg.Password,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type loginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

// Login posts credentials to the backend. Rejected credentials yield
// store.ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, usernameOrEmail, password string) (models.LoginResponse, error) {
	var out models.LoginResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", loginRequest{usernameOrEmail, password}, &out)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusBadRequest) {
			return models.LoginResponse{}, store.ErrInvalidCredentials
		}
		return models.LoginResponse{}, err
	}
	if !out.Success {
		return out, store.ErrInvalidCredentials
	}
	return out, nil
}

// Fetch performs a GET against the backend and returns the raw response for
// streaming. The caller closes the body. When service credentials are
// configured the request is authenticated with a cached bearer token.
func (c *Client) Fetch(ctx context.Context, path, rawQuery string) (*http.Response, error) {
	token, err := c.serviceToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.fetch(ctx, path, rawQuery, token)
	if err != nil {
		var apiErr *Error
		if token != "" && errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			c.resetToken()
			if token, err = c.serviceToken(ctx); err != nil {
				return nil, err
			}
			return c.fetch(ctx, path, rawQuery, token)
		}
		return nil, err
	}
	return resp, nil
}

func (c *Client) fetch(ctx context.Context, path, rawQuery, token string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, classify(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(path, rawQuery), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp, nil
}

func (c *Client) serviceToken(ctx context.Context) (string, error) {
	if c.username == "" {
		return "", nil
	}
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()
	if c.token != "" {
		return c.token, nil
	}
	resp, err := c.Login(ctx, c.username, c.password)
	if err != nil {
		return "", fmt.Errorf("service login: %w", err)
	}
	c.token = resp.Token
	return c.token, nil
}

func (c *Client) resetToken() {
	c.tokenMu.Lock()
	c.token = ""
	c.tokenMu.Unlock()
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return classify(err)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path, ""), body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("method", method).Str("path", path).Msg("backend request failed")
		return classify(err)
	}
	defer resp.Body.Close()
	zerolog.Ctx(ctx).Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("backend request")

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// resolve joins ref onto the base URL. Dot segments are collapsed so a
// request can never climb above the base path.
func (c *Client) resolve(ref, rawQuery string) string {
	u := *c.baseURL
	u.Path = path.Join(c.baseURL.Path, path.Clean("/"+ref))
	u.RawQuery = rawQuery
	return u.String()
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if len(data) > 0 {
		_ = json.Unmarshal(data, &apiErr.Envelope)
	}
	return apiErr
}

func classify(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
