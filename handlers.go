package ramblings

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/narsaynorath/ramblings/theme"
)

func (a *App) handleHome(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(a.site(c), posts, tags))
}

func (a *App) handlePost(c echo.Context) error {
	slug := c.Param("slug")
	post, err := a.Cache.GetPost(slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.site(c)))
		}
		return err
	}
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	prev, next := Neighbors(post, posts)
	return Render(c, a.Views.Post(a.site(c), post, FilterRelatedPosts(post, posts), prev, next))
}

func (a *App) handleTag(c echo.Context) error {
	tag, err := url.PathUnescape(c.Param("tag"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tag")
	}
	posts, err := a.Cache.ListPosts(tag)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.site(c)))
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	return Render(c, a.Views.Tag(a.site(c), normalizeTag(tag), posts, tags))
}

// handleTheme stores the requested theme and sends the visitor back. A post
// without a theme value flips the current one.
func (a *App) handleTheme(c echo.Context) error {
	var requested theme.Theme
	if v := c.FormValue("theme"); v != "" {
		requested = theme.Parse(v)
	} else {
		theme.Derive(a.themes.Current(c)).Request(func(t theme.Theme) { requested = t })
	}
	if err := a.themes.Set(c, requested); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, sameOriginReferer(c))
}

// sameOriginReferer returns the path of the Referer when it points at this
// host, else "/".
func sameOriginReferer(c echo.Context) string {
	ref, err := url.Parse(c.Request().Referer())
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != c.Request().Host) {
		return "/"
	}
	if !strings.HasPrefix(ref.Path, "/") || strings.HasPrefix(ref.Path, "//") {
		return "/"
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts, tags)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

func (a *App) handleRobots(c echo.Context) error {
	return c.String(http.StatusOK, Robots(a.Config.Metadata.SiteURL, a.Pipeline.CMS))
}

// Robots returns the robots.txt body.
func Robots(siteURL string, cms bool) string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	if cms {
		b.WriteString("Disallow: /admin/\n")
	}
	b.WriteString("Allow: /\n\nSitemap: ")
	b.WriteString(strings.TrimSuffix(siteURL, "/") + "/sitemap.xml\n")
	return b.String()
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.site(c)))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Log.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("server error")
		_ = RenderStatus(c, code, a.Views.ServerError(a.site(c)))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
