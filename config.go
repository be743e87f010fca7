package ramblings

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/narsaynorath/ramblings/theme"
)

// ServerConfig holds the runtime settings of serve mode. The site itself is
// described by siteconfig.Config.
type ServerConfig struct {
	Addr         string // Listen address (default ":8000")
	DatabasePath string // SQLite path (default "data/ramblings.db")
	GeneratedDir string // Processed assets for serve mode (default "data/generated")

	AdminPassword     string // Plain admin password
	AdminPasswordHash string // bcrypt hash; takes precedence over AdminPassword
	SessionSecret     string // Required when the CMS is active
	CookieSecure      bool   // Set true for HTTPS

	PostCacheTTL time.Duration // Post cache TTL (default 5min)
}

func (c *ServerConfig) setDefaults() {
	if c.Addr == "" {
		c.Addr = ":8000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/ramblings.db"
	}
	if c.GeneratedDir == "" {
		c.GeneratedDir = "data/generated"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
}

// ServerConfigFromEnv reads ADDR, DATABASE_PATH, ADMIN_PASSWORD,
// ADMIN_PASSWORD_HASH, ADMIN_SESSION_SECRET and COOKIE_SECURE.
func ServerConfigFromEnv() ServerConfig {
	return ServerConfig{
		Addr:              EnvOr("ADDR", ":8000"),
		DatabasePath:      EnvOr("DATABASE_PATH", "data/ramblings.db"),
		AdminPassword:     EnvOr("ADMIN_PASSWORD", ""),
		AdminPasswordHash: EnvOr("ADMIN_PASSWORD_HASH", ""),
		SessionSecret:     EnvOr("ADMIN_SESSION_SECRET", ""),
		CookieSecure:      EnvOr("COOKIE_SECURE", "") == "true",
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithServerConfig replaces the serve mode settings.
func WithServerConfig(cfg ServerConfig) Option {
	return func(a *App) {
		cfg.setDefaults()
		a.Server = cfg
	}
}

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithRoot sets the directory that plugin paths are resolved against
// (default "."). The original site config uses paths relative to its own
// directory.
func WithRoot(dir string) Option {
	return func(a *App) {
		a.root = dir
	}
}

// WithLogger sets the application logger.
func WithLogger(log zerolog.Logger) Option {
	return func(a *App) {
		a.Log = log
	}
}

// WithThemeStore replaces the cookie-backed theme store.
func WithThemeStore(s theme.Store) Option {
	return func(a *App) {
		a.themes = s
	}
}
