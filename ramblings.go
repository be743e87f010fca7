// Package ramblings is a blog engine driven by a declarative site
// configuration. Every plugin activation of the configuration binds to a
// component: content sources, the markdown transformer and its sub-plugins,
// image processing, the web app manifest, the theme toggle and the CMS.
//
// The same App builds a static site (Build) or serves it with Echo (Start).
// Templates are provided through ViewFuncs.
package ramblings

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/narsaynorath/ramblings/logger"
	"github.com/narsaynorath/ramblings/manifest"
	"github.com/narsaynorath/ramblings/siteconfig"
	"github.com/narsaynorath/ramblings/theme"
)

// ViewFuncs holds the templ components the engine calls when rendering
// pages. Every view receives the Site so the layout can render the head
// tags and the theme toggle.
type ViewFuncs struct {
	Home           func(site Site, posts []BlogPost, tags []string) templ.Component
	Post           func(site Site, post BlogPost, related []BlogPost, prev, next *BlogPost) templ.Component
	Tag            func(site Site, tag string, posts []BlogPost, tags []string) templ.Component
	AdminLogin     func(site Site, showError bool, csrfToken string) templ.Component
	AdminDashboard func(site Site, posts []BlogPost, message string, csrfToken string) templ.Component
	AdminForm      func(site Site, post BlogPost, csrfToken string) templ.Component
	AdminImages    func(site Site, images []Image, csrfToken string) templ.Component
	NotFound       func(site Site) templ.Component
	ServerError    func(site Site) templ.Component
}

// App is the central application. It wires together the resolved plugin
// pipeline, the store, cache, handlers, middleware and templates.
type App struct {
	Config   *siteconfig.Config
	Server   ServerConfig
	Pipeline *Pipeline
	Echo     *echo.Echo
	Store    *Store
	Cache    *PostCache
	Views    ViewFuncs
	Log      zerolog.Logger

	themes       theme.Store
	manifest     *manifest.Manifest
	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	staticDir    string
	root         string
}

// New resolves the plugins of cfg and creates an App. Unknown or malformed
// plugin activations fail here.
func New(cfg *siteconfig.Config, views ViewFuncs, opts ...Option) (*App, error) {
	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		Log:       logger.Nop(),
		staticDir: "public",
		root:      ".",
	}
	a.Server.setDefaults()

	for _, opt := range opts {
		opt(a)
	}

	p, err := Resolve(cfg, a.root)
	if err != nil {
		return nil, err
	}
	a.Pipeline = p
	if a.themes == nil {
		a.themes = theme.CookieStore{Path: "/", Secure: a.Server.CookieSecure}
	}
	return a, nil
}

// Open initializes the store and cache and syncs content into them.
func (a *App) Open(ctx context.Context) error {
	store, err := NewStore(a.Server.DatabasePath)
	if err != nil {
		return fmt.Errorf("ramblings: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewPostCache(a.Store, a.Server.PostCacheTTL)

	m, err := a.writeSiteAssets(a.Server.GeneratedDir)
	if err != nil {
		return fmt.Errorf("ramblings: site assets: %w", err)
	}
	a.manifest = m

	if err := a.Sync(ctx); err != nil {
		return fmt.Errorf("ramblings: %w", err)
	}
	return nil
}

// Start opens the app, sets up middleware and routes, and serves until ctx
// is cancelled.
func (a *App) Start(ctx context.Context) error {
	if a.Pipeline.CMS {
		if a.Server.AdminPassword == "" && a.Server.AdminPasswordHash == "" {
			return fmt.Errorf("ramblings: ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required when netlify-cms is active")
		}
		if a.Server.SessionSecret == "" {
			return fmt.Errorf("ramblings: ADMIN_SESSION_SECRET is required when netlify-cms is active")
		}
	}

	if err := a.Open(ctx); err != nil {
		return err
	}
	a.Setup()

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info().Str("addr", a.Server.Addr).Msg("serving")
		if err := a.Echo.Start(a.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.Echo.Shutdown(shutdownCtx)
}

// Setup registers middleware, routes and custom routes. Start calls it; tests
// call it directly after Open.
func (a *App) Setup() {
	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Framework assets first; anything else under /public falls through to
	// the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/"+Stylesheet, echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.GET("/public/"+ThemeScript, echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.GET("/public/"+HighlightCSS, a.generatedFile(filepath.Join("public", HighlightCSS)))
	e.Static("/public", a.staticDir)
	e.Static("/static", filepath.Join(a.Server.GeneratedDir, "static"))

	if name := a.faviconName(); name != "" {
		e.GET("/"+name, a.generatedFile(name))
	}
	if a.manifest != nil {
		e.GET("/"+manifest.FileName, a.generatedFile(manifest.FileName))
		e.Static("/icons", filepath.Join(a.Server.GeneratedDir, "icons"))
	}
	e.GET("/robots.txt", a.handleRobots)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/blog/", handleBlogRedirect)
	e.GET("/", a.handleHome)
	e.GET("/blog/:slug/", a.handlePost)
	e.GET("/tags/:tag/", a.handleTag)

	if a.Pipeline.DarkMode {
		e.POST("/theme/", a.handleTheme)
	}

	if a.Pipeline.CMS {
		if a.loginLimiter == nil {
			a.loginLimiter = NewLoginLimiter(5, time.Minute)
		}
		e.GET("/admin/", a.handleAdmin)
		e.POST("/admin/login/", a.handleAdminLogin)
		e.POST("/admin/logout/", handleAdminLogout)
		e.GET("/admin/new/", a.handleAdminNew)
		e.GET("/admin/post/:slug/", a.handleAdminPost)
		e.POST("/admin/save/", a.handleAdminSave)
		e.POST("/admin/post/:slug/delete/", a.handleAdminDelete)
		e.GET("/admin/images/", a.handleImageList)
		e.POST("/admin/images/upload/", a.handleImageUpload)
		e.POST("/admin/images/:filename/delete/", a.handleImageDelete)
		e.GET("/media/:filename", a.handleMedia)
	}
}

// generatedFile serves a file written by writeSiteAssets.
func (a *App) generatedFile(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.File(filepath.Join(a.Server.GeneratedDir, name))
	}
}

// site returns the view context for a request. c is nil in the static build.
func (a *App) site(c echo.Context) Site {
	s := Site{
		Metadata: a.Config.Metadata,
		DarkMode: a.Pipeline.DarkMode,
		Helmet:   a.Pipeline.Helmet,
		CMS:      a.Pipeline.CMS,
		Manifest: a.manifest,
	}
	if name := a.faviconName(); name != "" {
		s.Favicon = "/" + name
	}
	if c != nil && a.Pipeline.DarkMode {
		s.Theme = a.themes.Current(c)
		s.ThemeAction = "/theme/"
	}
	return s
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or an error if empty.
func MustEnv(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("ramblings: required environment variable %s is not set", key)
	}
	return v, nil
}
