package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration. It is built once by Load
// and passed by value afterwards.
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	API      APISettings
	Database DatabaseConfig
	Logging  LoggingConfig
	CORS     CORSConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Seed            bool
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AuthMode selects where credentials are verified.
type AuthMode string

const (
	AuthModeLocal  AuthMode = "local"
	AuthModeRemote AuthMode = "remote"
)

// SessionStoreKind selects the session record backend.
type SessionStoreKind string

const (
	SessionStoreMemory   SessionStoreKind = "memory"
	SessionStorePostgres SessionStoreKind = "postgres"
)

// AuthConfig holds cookie and session policy.
type AuthConfig struct {
	Mode             AuthMode
	CookieName       string
	CookieSecure     bool
	LoginPath        string
	LogoutPath       string
	AccessDeniedPath string
	APIPrefix        string
	SigningKey       string
	Issuer           string
	SlidingWindow    time.Duration
	MaxAge           time.Duration
	SessionStore     SessionStoreKind
}

// APISettings configures the outbound backend API client.
type APISettings struct {
	BaseURL           string
	Username          string
	Password          string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Enabled reports whether a backend API is configured.
func (a APISettings) Enabled() bool {
	return a.BaseURL != ""
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigin string
}

// Load reads .env files when present, then the environment.
func Load() (Config, error) {
	for _, file := range []string{".env", "config/local.env"} {
		_ = godotenv.Load(file)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a lookup function and validates it.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	env := reader{lookup: lookup}
	var cfg Config

	cfg.Server = ServerConfig{
		Host:            env.str("HOST", "0.0.0.0"),
		Port:            env.integer("PORT", 8080),
		ReadTimeout:     env.duration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    env.duration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ShutdownTimeout: env.duration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		Seed:            env.flag("SEED_DATA", true),
	}

	cfg.Auth = AuthConfig{
		Mode:             AuthMode(strings.ToLower(env.str("AUTH_MODE", string(AuthModeLocal)))),
		CookieName:       env.str("AUTH_COOKIE_NAME", "MusicApp.Auth"),
		CookieSecure:     env.flag("AUTH_COOKIE_SECURE", true),
		LoginPath:        env.str("AUTH_LOGIN_PATH", "/Account/Login"),
		LogoutPath:       env.str("AUTH_LOGOUT_PATH", "/Account/Logout"),
		AccessDeniedPath: env.str("AUTH_ACCESS_DENIED_PATH", "/Account/AccessDenied"),
		APIPrefix:        strings.TrimRight(env.str("AUTH_API_PREFIX", "/api"), "/"),
		SigningKey:       env.str("AUTH_SIGNING_KEY", ""),
		Issuer:           env.str("AUTH_ISSUER", "musicapp"),
		SlidingWindow:    env.duration("AUTH_SLIDING_WINDOW", 7*24*time.Hour),
		MaxAge:           env.duration("AUTH_MAX_AGE", 7*24*time.Hour),
		SessionStore:     SessionStoreKind(strings.ToLower(env.str("SESSION_STORE", string(SessionStoreMemory)))),
	}

	cfg.API = APISettings{
		BaseURL:           strings.TrimRight(env.str("API_SETTINGS_BASE_URL", ""), "/"),
		Username:          env.str("API_SETTINGS_USERNAME", ""),
		Password:          env.str("API_SETTINGS_PASSWORD", ""),
		Timeout:           env.duration("API_SETTINGS_TIMEOUT", 10*time.Second),
		RequestsPerSecond: env.number("API_SETTINGS_REQUESTS_PER_SECOND", 20),
	}

	cfg.Database = DatabaseConfig{URL: env.str("DATABASE_URL", "")}
	cfg.Logging = LoggingConfig{
		Level:  strings.ToLower(env.str("LOG_LEVEL", "info")),
		Format: strings.ToLower(env.str("LOG_FORMAT", "json")),
	}
	cfg.CORS = CORSConfig{AllowedOrigin: env.str("CORS_ALLOWED_ORIGIN", "")}

	if len(env.errs) > 0 {
		return Config{}, fmt.Errorf("parse config: %s", strings.Join(env.errs, "; "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required configuration is present and valid
func (c Config) Validate() error {
	var problems []string

	if len(c.Auth.SigningKey) < 32 {
		problems = append(problems, "AUTH_SIGNING_KEY must be at least 32 bytes")
	}
	if c.Auth.CookieName == "" {
		problems = append(problems, "AUTH_COOKIE_NAME must not be empty")
	}
	for name, p := range map[string]string{
		"AUTH_LOGIN_PATH":         c.Auth.LoginPath,
		"AUTH_LOGOUT_PATH":        c.Auth.LogoutPath,
		"AUTH_ACCESS_DENIED_PATH": c.Auth.AccessDeniedPath,
		"AUTH_API_PREFIX":         c.Auth.APIPrefix,
	} {
		if !strings.HasPrefix(p, "/") {
			problems = append(problems, name+" must start with /")
		}
	}
	if c.Auth.SlidingWindow <= 0 || c.Auth.MaxAge <= 0 {
		problems = append(problems, "AUTH_SLIDING_WINDOW and AUTH_MAX_AGE must be positive")
	}
	switch c.Auth.Mode {
	case AuthModeLocal:
	case AuthModeRemote:
		if !c.API.Enabled() {
			problems = append(problems, "AUTH_MODE=remote requires API_SETTINGS_BASE_URL")
		}
	default:
		problems = append(problems, fmt.Sprintf("AUTH_MODE %q is not one of local, remote", c.Auth.Mode))
	}
	switch c.Auth.SessionStore {
	case SessionStoreMemory:
	case SessionStorePostgres:
		if c.Database.URL == "" {
			problems = append(problems, "SESSION_STORE=postgres requires DATABASE_URL")
		}
	default:
		problems = append(problems, fmt.Sprintf("SESSION_STORE %q is not one of memory, postgres", c.Auth.SessionStore))
	}

	if c.API.BaseURL != "" {
		u, err := url.Parse(c.API.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			problems = append(problems, "API_SETTINGS_BASE_URL must be an absolute http(s) URL")
		}
	}
	if c.API.Timeout <= 0 {
		problems = append(problems, "API_SETTINGS_TIMEOUT must be positive")
	}
	if c.API.RequestsPerSecond <= 0 {
		problems = append(problems, "API_SETTINGS_REQUESTS_PER_SECOND must be positive")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, "PORT must be between 1 and 65535")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		problems = append(problems, "LOG_LEVEL must be one of: debug, info, warn, error")
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		problems = append(problems, "LOG_FORMAT must be one of: json, text")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

type reader struct {
	lookup func(string) (string, bool)
	errs   []string
}

func (r *reader) str(key, fallback string) string {
	if v, ok := r.lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func (r *reader) integer(key string, fallback int) int {
	raw := r.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("invalid %s: %v", key, err))
		return fallback
	}
	return v
}

func (r *reader) number(key string, fallback float64) float64 {
	raw := r.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("invalid %s: %v", key, err))
		return fallback
	}
	return v
}

func (r *reader) flag(key string, fallback bool) bool {
	raw := r.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("invalid %s: %v", key, err))
		return fallback
	}
	return v
}

func (r *reader) duration(key string, fallback time.Duration) time.Duration {
	raw := r.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("invalid %s: %v", key, err))
		return fallback
	}
	return v
}
