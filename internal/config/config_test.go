package config

import (
	"strings"
	"testing"
	"time"
)

const testKey = "0123456789abcdef0123456789abcdef"

func lookupFrom(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(map[string]string{"AUTH_SIGNING_KEY": testKey}))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}

	if cfg.Auth.CookieName != "MusicApp.Auth" || !cfg.Auth.CookieSecure {
		t.Fatalf("unexpected cookie policy %+v", cfg.Auth)
	}
	if cfg.Auth.LoginPath != "/Account/Login" || cfg.Auth.LogoutPath != "/Account/Logout" || cfg.Auth.AccessDeniedPath != "/Account/AccessDenied" {
		t.Fatalf("unexpected redirect paths %+v", cfg.Auth)
	}
	if cfg.Auth.APIPrefix != "/api" {
		t.Fatalf("APIPrefix = %q", cfg.Auth.APIPrefix)
	}
	if cfg.Auth.SlidingWindow != 7*24*time.Hour || cfg.Auth.MaxAge != 7*24*time.Hour {
		t.Fatalf("unexpected expiry %v / %v", cfg.Auth.SlidingWindow, cfg.Auth.MaxAge)
	}
	if cfg.Auth.Mode != AuthModeLocal || cfg.Auth.SessionStore != SessionStoreMemory {
		t.Fatalf("unexpected modes %q / %q", cfg.Auth.Mode, cfg.Auth.SessionStore)
	}
	if cfg.API.Enabled() {
		t.Fatalf("API should be disabled without a base URL")
	}
	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Fatalf("Addr = %q", cfg.Server.Addr())
	}
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(map[string]string{
		"AUTH_SIGNING_KEY":                 testKey,
		"AUTH_COOKIE_SECURE":               "false",
		"AUTH_MODE":                        "Remote",
		"API_SETTINGS_BASE_URL":            "https://api.example.com/",
		"API_SETTINGS_TIMEOUT":             "3s",
		"API_SETTINGS_REQUESTS_PER_SECOND": "2.5",
		"PORT":                             "9000",
		"LOG_FORMAT":                       "text",
	}))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Auth.CookieSecure {
		t.Fatalf("expected insecure cookie for local dev")
	}
	if cfg.Auth.Mode != AuthModeRemote {
		t.Fatalf("Mode = %q", cfg.Auth.Mode)
	}
	if cfg.API.BaseURL != "https://api.example.com" || cfg.API.Timeout != 3*time.Second || cfg.API.RequestsPerSecond != 2.5 {
		t.Fatalf("unexpected api settings %+v", cfg.API)
	}
	if cfg.Server.Port != 9000 || cfg.Logging.Format != "text" {
		t.Fatalf("unexpected server/logging %+v %+v", cfg.Server, cfg.Logging)
	}
}

func TestFromEnvFailures(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "missing signing key",
			env:  map[string]string{},
			want: "AUTH_SIGNING_KEY",
		},
		{
			name: "short signing key",
			env:  map[string]string{"AUTH_SIGNING_KEY": "short"},
			want: "AUTH_SIGNING_KEY",
		},
		{
			name: "relative api url",
			env:  map[string]string{"AUTH_SIGNING_KEY": testKey, "API_SETTINGS_BASE_URL": "api.example.com"},
			want: "API_SETTINGS_BASE_URL",
		},
		{
			name: "remote mode without api",
			env:  map[string]string{"AUTH_SIGNING_KEY": testKey, "AUTH_MODE": "remote"},
			want: "AUTH_MODE=remote",
		},
		{
			name: "postgres sessions without database",
			env:  map[string]string{"AUTH_SIGNING_KEY": testKey, "SESSION_STORE": "postgres"},
			want: "DATABASE_URL",
		},
		{
			name: "bad duration",
			env:  map[string]string{"AUTH_SIGNING_KEY": testKey, "AUTH_MAX_AGE": "a week"},
			want: "AUTH_MAX_AGE",
		},
		{
			name: "bad port",
			env:  map[string]string{"AUTH_SIGNING_KEY": testKey, "PORT": "70000"},
			want: "PORT",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromEnv(lookupFrom(tc.env))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}
