package session

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"musicapp/internal/config"
	"musicapp/internal/http/respond"
	"musicapp/internal/logging"
)

type contextKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the authenticated principal, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}

// Middleware authenticates the request credential when present. Requests
// without a valid credential continue anonymously; protection is applied
// by RequireAuth and RequireRole.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, fromCookie := m.credential(r)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		rec, err := m.authenticate(ctx, raw)
		if err != nil {
			if !errors.Is(err, ErrNoCredential) {
				zerolog.Ctx(ctx).Debug().Err(err).Msg("credential rejected")
			}
			if fromCookie {
				m.clearCookie(w)
			}
			next.ServeHTTP(w, r)
			return
		}

		if fromCookie && rec.Persistent && m.now().Sub(rec.RenewedAt) > m.opts.SlidingWindow/2 {
			if err := m.store.MarkRenewed(ctx, rec.ID, m.now()); err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Msg("renew session cookie")
			} else {
				m.writeCookie(w, raw, true, rec.ExpiresAt)
			}
		}

		ctx = WithPrincipal(ctx, principalOf(rec))
		ctx = logging.WithUserID(ctx, rec.User.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Policy decides how unauthenticated and forbidden requests are answered.
type Policy struct {
	LoginPath        string
	AccessDeniedPath string
	APIPrefix        string
}

// PolicyFromConfig builds a Policy from the auth configuration.
func PolicyFromConfig(cfg config.AuthConfig) Policy {
	return Policy{
		LoginPath:        cfg.LoginPath,
		AccessDeniedPath: cfg.AccessDeniedPath,
		APIPrefix:        cfg.APIPrefix,
	}
}

// IsAPIPath reports whether path is the API prefix or lies beneath it.
// The comparison ignores case and respects segment boundaries, so
// "/apiary" is not an API path.
func (p Policy) IsAPIPath(path string) bool {
	prefix := strings.TrimRight(p.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api"
	}
	if len(path) < len(prefix) || !strings.EqualFold(path[:len(prefix)], prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}

// Challenge answers an unauthenticated request: 401 for API paths, a
// redirect to the login page carrying ReturnUrl otherwise.
func (p Policy) Challenge(w http.ResponseWriter, r *http.Request) {
	if p.IsAPIPath(r.URL.Path) {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized", "Authentication is required.", "")
		return
	}
	http.Redirect(w, r, withReturnURL(p.LoginPath, r.URL.RequestURI()), http.StatusFound)
}

// Forbid answers an authenticated request lacking permission: 403 for
// API paths, a redirect to the access denied page otherwise.
func (p Policy) Forbid(w http.ResponseWriter, r *http.Request) {
	if p.IsAPIPath(r.URL.Path) {
		respond.Error(w, http.StatusForbidden, "Forbidden", "You do not have permission to perform this action.", "")
		return
	}
	http.Redirect(w, r, withReturnURL(p.AccessDeniedPath, r.URL.RequestURI()), http.StatusFound)
}

// RequireAuth lets only authenticated requests through.
func RequireAuth(p Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := FromContext(r.Context()); !ok {
				p.Challenge(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole lets through authenticated requests holding any of roles.
func RequireRole(p Policy, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := FromContext(r.Context())
			if !ok {
				p.Challenge(w, r)
				return
			}
			for _, role := range roles {
				if principal.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			p.Forbid(w, r)
		})
	}
}

func withReturnURL(path, returnURL string) string {
	q := url.Values{}
	q.Set("ReturnUrl", returnURL)
	return path + "?" + q.Encode()
}

// SafeReturnURL returns raw when it is a local path, fallback otherwise.
// Protocol-relative and backslash forms are rejected.
func SafeReturnURL(raw, fallback string) string {
	if raw == "" || raw[0] != '/' {
		return fallback
	}
	if len(raw) > 1 && (raw[1] == '/' || raw[1] == '\\') {
		return fallback
	}
	if strings.ContainsAny(raw, "\r\n") {
		return fallback
	}
	return raw
}
