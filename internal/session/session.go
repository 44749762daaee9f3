package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"musicapp/internal/config"
	"musicapp/internal/models"
)

// Options configures a Manager.
type Options struct {
	CookieName    string
	CookieSecure  bool
	SlidingWindow time.Duration
	MaxAge        time.Duration
	SigningKey    []byte
	Issuer        string
	Now           func() time.Time
}

// OptionsFromConfig maps the auth configuration onto manager options.
func OptionsFromConfig(cfg config.AuthConfig) Options {
	return Options{
		CookieName:    cfg.CookieName,
		CookieSecure:  cfg.CookieSecure,
		SlidingWindow: cfg.SlidingWindow,
		MaxAge:        cfg.MaxAge,
		SigningKey:    []byte(cfg.SigningKey),
		Issuer:        cfg.Issuer,
	}
}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	SessionID  string
	User       models.AuthUserSummary
	Persistent bool
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// UserID returns the authenticated user's id.
func (p Principal) UserID() int64 {
	return p.User.ID
}

// HasRole reports whether the principal holds role.
func (p Principal) HasRole(role string) bool {
	return p.User.HasRole(role)
}

// Issued is the result of a login or refresh.
type Issued struct {
	Principal    Principal
	Token        string
	RefreshToken string
}

// Manager issues, validates, slides and revokes sessions.
type Manager struct {
	store  Store
	signer signer
	opts   Options
	now    func() time.Time
}

// NewManager validates opts and returns a Manager backed by st.
func NewManager(st Store, opts Options) (*Manager, error) {
	if st == nil {
		return nil, errors.New("session store is required")
	}
	if len(opts.SigningKey) < 32 {
		return nil, errors.New("signing key must be at least 32 bytes")
	}
	if opts.CookieName == "" {
		opts.CookieName = "MusicApp.Auth"
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = 7 * 24 * time.Hour
	}
	if opts.SlidingWindow <= 0 || opts.SlidingWindow > opts.MaxAge {
		opts.SlidingWindow = opts.MaxAge
	}
	if opts.Issuer == "" {
		opts.Issuer = "musicapp"
	}
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	return &Manager{
		store:  st,
		signer: signer{key: opts.SigningKey, issuer: opts.Issuer, now: now},
		opts:   opts,
		now:    now,
	}, nil
}

// CookieName returns the configured auth cookie name.
func (m *Manager) CookieName() string {
	return m.opts.CookieName
}

// Issue creates a session record for user and signs its token pair.
func (m *Manager) Issue(ctx context.Context, user models.AuthUserSummary, persistent bool) (Issued, error) {
	now := m.now()
	rec := Record{
		ID:         uuid.NewString(),
		User:       user,
		Persistent: persistent,
		IssuedAt:   now,
		ExpiresAt:  m.slide(now, now),
		RenewedAt:  now,
		RefreshID:  uuid.NewString(),
	}
	if err := m.store.Create(ctx, rec); err != nil {
		return Issued{}, fmt.Errorf("create session: %w", err)
	}
	return m.issued(rec)
}

// SignIn issues a session and writes the auth cookie.
func (m *Manager) SignIn(ctx context.Context, w http.ResponseWriter, user models.AuthUserSummary, persistent bool) (Issued, error) {
	issued, err := m.Issue(ctx, user, persistent)
	if err != nil {
		return Issued{}, err
	}
	m.writeCookie(w, issued.Token, issued.Principal.Persistent, issued.Principal.ExpiresAt)
	return issued, nil
}

// Authenticate validates an access token and slides the session expiry.
func (m *Manager) Authenticate(ctx context.Context, raw string) (Principal, error) {
	rec, err := m.authenticate(ctx, raw)
	if err != nil {
		return Principal{}, err
	}
	return principalOf(rec), nil
}

func (m *Manager) authenticate(ctx context.Context, raw string) (Record, error) {
	if raw == "" {
		return Record{}, ErrNoCredential
	}
	claims, err := m.signer.parse(raw, TokenAccess)
	if err != nil {
		return Record{}, err
	}
	rec, err := m.store.Get(ctx, claims.ID)
	if err != nil {
		return Record{}, err
	}
	if uid, err := claims.UserID(); err != nil || uid != rec.User.ID {
		return Record{}, fmt.Errorf("%w: subject mismatch", ErrInvalidToken)
	}

	now := m.now()
	if !now.Before(rec.ExpiresAt) {
		_ = m.store.Delete(ctx, rec.ID)
		return Record{}, ErrExpired
	}

	if next := m.slide(rec.IssuedAt, now); next.After(rec.ExpiresAt) {
		if err := m.store.Touch(ctx, rec.ID, next); err != nil {
			return Record{}, fmt.Errorf("slide session: %w", err)
		}
		rec.ExpiresAt = next
	}
	return rec, nil
}

// Refresh exchanges a refresh token for a new token pair on the same
// session. Each refresh token is single use; replaying one revokes the session.
func (m *Manager) Refresh(ctx context.Context, raw string) (Issued, error) {
	claims, err := m.signer.parse(raw, TokenRefresh)
	if err != nil {
		return Issued{}, err
	}
	rec, err := m.store.Get(ctx, claims.SessionID)
	if err != nil {
		return Issued{}, err
	}
	if claims.ID != rec.RefreshID {
		_ = m.store.Delete(ctx, rec.ID)
		return Issued{}, ErrRefreshReused
	}

	now := m.now()
	if !now.Before(rec.ExpiresAt) {
		_ = m.store.Delete(ctx, rec.ID)
		return Issued{}, ErrExpired
	}

	next := uuid.NewString()
	expiresAt := m.slide(rec.IssuedAt, now)
	if err := m.store.RotateRefresh(ctx, rec.ID, claims.ID, next, expiresAt); err != nil {
		if errors.Is(err, ErrRefreshReused) {
			_ = m.store.Delete(ctx, rec.ID)
		}
		return Issued{}, err
	}
	rec.RefreshID = next
	if expiresAt.After(rec.ExpiresAt) {
		rec.ExpiresAt = expiresAt
	}
	return m.issued(rec)
}

// SignOut revokes the session behind the request credential, if any, and
// clears the auth cookie.
func (m *Manager) SignOut(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	m.clearCookie(w)

	raw, _ := m.credential(r)
	if raw == "" {
		return nil
	}
	id, err := m.sessionID(raw)
	if err != nil {
		return nil
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// RevokeUser deletes every session of a user.
func (m *Manager) RevokeUser(ctx context.Context, userID int64) (int, error) {
	return m.store.DeleteByUser(ctx, userID)
}

// slide computes min(now+window, issuedAt+maxAge).
func (m *Manager) slide(issuedAt, now time.Time) time.Time {
	next := now.Add(m.opts.SlidingWindow)
	if deadline := issuedAt.Add(m.opts.MaxAge); next.After(deadline) {
		return deadline
	}
	return next
}

func (m *Manager) issued(rec Record) (Issued, error) {
	subject := strconv.FormatInt(rec.User.ID, 10)
	deadline := jwt.NewNumericDate(rec.Deadline(m.opts.MaxAge))

	access, err := m.signer.sign(Claims{
		Type:     TokenAccess,
		Username: rec.User.Username,
		Email:    rec.User.Email,
		Roles:    rec.User.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        rec.ID,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(rec.IssuedAt),
			ExpiresAt: deadline,
		},
	})
	if err != nil {
		return Issued{}, err
	}

	refresh, err := m.signer.sign(Claims{
		Type:      TokenRefresh,
		SessionID: rec.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        rec.RefreshID,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(m.now()),
			ExpiresAt: deadline,
		},
	})
	if err != nil {
		return Issued{}, err
	}

	return Issued{Principal: principalOf(rec), Token: access, RefreshToken: refresh}, nil
}

// sessionID extracts the jti of a correctly signed access token even when
// it has expired, so logout still revokes the record.
func (m *Manager) sessionID(raw string) (string, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return m.signer.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil || claims.Type != TokenAccess || claims.ID == "" {
		return "", ErrInvalidToken
	}
	return claims.ID, nil
}

// credential returns the bearer token or, failing that, the auth cookie value.
func (m *Manager) credential(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token), false
		}
	}
	if c, err := r.Cookie(m.opts.CookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}

func (m *Manager) writeCookie(w http.ResponseWriter, value string, persistent bool, expiresAt time.Time) {
	c := &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if persistent {
		c.Expires = expiresAt
		c.MaxAge = int(expiresAt.Sub(m.now()).Seconds())
		if c.MaxAge <= 0 {
			c.MaxAge = -1
		}
	}
	http.SetCookie(w, c)
}

func (m *Manager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

func principalOf(rec Record) Principal {
	return Principal{
		SessionID:  rec.ID,
		User:       rec.User,
		Persistent: rec.Persistent,
		IssuedAt:   rec.IssuedAt,
		ExpiresAt:  rec.ExpiresAt,
	}
}
