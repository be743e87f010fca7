package ramblings

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/narsaynorath/ramblings/content"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(a.site(c), false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminNew(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	draft := BlogPost{Date: time.Now().Format("2006-01-02")}
	return Render(c, a.Views.AdminForm(a.site(c), draft, CsrfToken(c)))
}

func (a *App) handleAdminPost(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	post, err := a.Store.GetPostAny(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return err
	}
	return Render(c, a.Views.AdminForm(a.site(c), post, CsrfToken(c)))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	if !a.checkPassword(c.FormValue("password")) {
		a.loginLimiter.Record(ip)
		a.Log.Warn().Str("ip", ip).Msg("failed admin login")
		return Render(c, a.Views.AdminLogin(a.site(c), true, CsrfToken(c)))
	}
	a.loginLimiter.Reset(ip)
	if err := setAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// checkPassword compares against the bcrypt hash when one is configured,
// else against the plain password in constant time.
func (a *App) checkPassword(pass string) bool {
	if a.Server.AdminPasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(a.Server.AdminPasswordHash), []byte(pass)) == nil
	}
	if a.Server.AdminPassword == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(pass), []byte(a.Server.AdminPassword)) == 1
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// handleAdminSave writes the post back to the blog source as markdown and
// re-syncs the index.
func (a *App) handleAdminSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	dir, err := a.blogDir()
	if err != nil {
		return err
	}
	title := strings.TrimSpace(c.FormValue("title"))
	slug := strings.TrimSpace(c.FormValue("slug"))
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" || slug != Slugify(slug) {
		return adminRedirect(c, "Slug is required and may only contain a-z, 0-9 and dashes.")
	}
	date := strings.TrimSpace(c.FormValue("date"))
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return adminRedirect(c, "Invalid date format. Use YYYY-MM-DD.")
	}
	tags := FilterEmpty(strings.Split(c.FormValue("tags"), ","))
	for i := range tags {
		tags[i] = normalizeTag(tags[i])
		if !ValidTag(tags[i]) {
			return adminRedirect(c, "Tags may not contain slashes.")
		}
	}

	// a renamed post moves to its new directory
	if original := strings.TrimSpace(c.FormValue("original_slug")); original != "" && original != slug {
		if err := content.RemovePost(dir, original); err != nil {
			return err
		}
	}

	file, err := content.WritePost(dir, content.Post{
		Slug: slug,
		Frontmatter: content.Frontmatter{
			Title:       title,
			Date:        date,
			Description: strings.TrimSpace(c.FormValue("summary")),
			Tags:        tags,
			Draft:       c.FormValue("published") == "",
		},
		Body: strings.ReplaceAll(c.FormValue("content"), "\r\n", "\n"),
	})
	if err != nil {
		return err
	}
	a.Log.Info().Str("slug", slug).Str("file", file).Msg("post saved")

	if err := a.Sync(c.Request().Context()); err != nil {
		return err
	}
	return a.renderAdminDashboard(c, "saved")
}

func (a *App) handleAdminDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	dir, err := a.blogDir()
	if err != nil {
		return err
	}
	slug := c.Param("slug")
	post, err := a.Store.GetPostAny(slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return err
	}
	// only posts living in the blog source can be removed from here
	if filepath.Base(post.Source) != "index.md" || filepath.Dir(filepath.Dir(post.Source)) != filepath.Clean(dir) {
		return adminRedirect(c, fmt.Sprintf("%s is not managed by the CMS.", post.Source))
	}
	if err := content.RemovePost(dir, filepath.Base(filepath.Dir(post.Source))); err != nil {
		return err
	}
	if err := a.Sync(c.Request().Context()); err != nil {
		return err
	}
	return a.renderAdminDashboard(c, "deleted")
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	posts, err := a.Store.ListAllPosts()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(a.site(c), posts, msg, CsrfToken(c)))
}

// blogDir is where the CMS writes posts.
func (a *App) blogDir() (string, error) {
	src, ok := a.Pipeline.Source(BlogSource)
	if !ok {
		return "", fmt.Errorf("netlify-cms needs a source-filesystem named %q", BlogSource)
	}
	return src.Path, nil
}

func adminRedirect(c echo.Context, msg string) error {
	return c.Redirect(http.StatusSeeOther, "/admin/?msg="+url.QueryEscape(msg))
}
