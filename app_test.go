package ramblings_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narsaynorath/ramblings"
	"github.com/narsaynorath/ramblings/plugin"
	"github.com/narsaynorath/ramblings/siteconfig"
	"github.com/narsaynorath/ramblings/views"
)

const helloPost = `---
title: Hello World
date: 2024-03-01
description: The first post.
tags: [go, meta]
---

Hello from **ramblings**. ![a dot](./dot.png)
`

const secondPost = `---
title: Second
date: 2024-04-01
tags: [go]
---

Second post.
`

const draftPost = `---
title: Not Yet
date: 2024-05-01
draft: true
---

Work in progress.
`

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 0xff, A: 0xff})
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

// testSite lays out a content tree under a temp dir and returns the dir and
// a configuration pointing at it.
func testSite(t *testing.T, extra ...plugin.Activation) (string, *siteconfig.Config) {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "content", "blog", "hello-world", "index.md"), helloPost)
	writePNG(t, filepath.Join(dir, "content", "blog", "hello-world", "dot.png"), 40, 20)
	writeFile(t, filepath.Join(dir, "content", "blog", "second", "index.md"), secondPost)
	writeFile(t, filepath.Join(dir, "content", "blog", "not-yet", "index.md"), draftPost)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "content", "assets"), 0o755))

	cfg := &siteconfig.Config{
		Metadata: siteconfig.SiteMetadata{
			Title:   "ramblings",
			Author:  siteconfig.Author{Name: "Test Author", Summary: "writes tests."},
			SiteURL: "https://example.com/",
			Social:  siteconfig.Social{GitHub: "tester"},
		},
		Plugins: append(plugin.List{
			plugin.New(plugin.SourceFilesystem, map[string]any{"path": "content/blog", "name": "blog"}),
			plugin.New(plugin.SourceFilesystem, map[string]any{"path": "content/assets", "name": "assets"}),
			plugin.New(plugin.TransformerRemark, map[string]any{
				"plugins": []any{
					map[string]any{"resolve": string(plugin.RemarkImages), "options": map[string]any{"maxWidth": 20}},
					string(plugin.RemarkPrismJS),
					string(plugin.RemarkSmartypants),
				},
			}),
			plugin.Bare(plugin.TransformerSharp),
			plugin.Bare(plugin.DarkMode),
			plugin.Bare(plugin.ReactHelmet),
		}, extra...),
	}
	return dir, cfg
}

func newTestApp(t *testing.T, extra ...plugin.Activation) (*ramblings.App, string) {
	t.Helper()
	dir, cfg := testSite(t, extra...)
	app, err := ramblings.New(cfg, views.Funcs(),
		ramblings.WithRoot(dir),
		ramblings.WithStaticDir(filepath.Join(dir, "public")),
		ramblings.WithServerConfig(ramblings.ServerConfig{
			DatabasePath:  filepath.Join(dir, "data", "test.db"),
			GeneratedDir:  filepath.Join(dir, "data", "generated"),
			AdminPassword: "letmein",
			SessionSecret: "0123456789abcdef0123456789abcdef",
		}),
	)
	require.NoError(t, err)
	require.NoError(t, app.Open(context.Background()))
	app.Setup()
	t.Cleanup(func() { _ = app.Close() })
	return app, dir
}

func get(t *testing.T, app *ramblings.App, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

func TestHomeListsPublishedPosts(t *testing.T) {
	app, _ := newTestApp(t)

	rec := get(t, app, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Hello World")
	assert.Contains(t, body, "Second")
	assert.NotContains(t, body, "Not Yet")
	assert.Contains(t, body, `href="/tags/go/"`)
	assert.Contains(t, rec.Header().Get("Vary"), "Cookie")
}

func TestPostPage(t *testing.T) {
	app, _ := newTestApp(t)

	rec := get(t, app, "/blog/hello-world/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<strong>ramblings</strong>")
	assert.Contains(t, body, `src="/static/`)
	assert.Contains(t, body, `<link rel="canonical" href="https://example.com/blog/hello-world/"/>`)
	assert.Contains(t, body, `application/ld+json`)
	assert.Contains(t, body, `rel="next"`)

	// the referenced image is published under /static
	m := regexp.MustCompile(`src="(/static/[^"]+)"`).FindStringSubmatch(body)
	require.Len(t, m, 2)
	img := get(t, app, m[1])
	assert.Equal(t, http.StatusOK, img.Code)
	assert.Contains(t, img.Header().Get("Cache-Control"), "immutable")
}

func TestDraftAndMissingPostsAre404(t *testing.T) {
	app, _ := newTestApp(t)

	assert.Equal(t, http.StatusNotFound, get(t, app, "/blog/not-yet/").Code)
	rec := get(t, app, "/blog/nope/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not Found")
	assert.Equal(t, http.StatusNotFound, get(t, app, "/tags/nothing/").Code)
}

func TestTagPage(t *testing.T) {
	app, _ := newTestApp(t)

	rec := get(t, app, "/tags/meta/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1 post tagged")
	assert.Contains(t, rec.Body.String(), "Hello World")
	assert.NotContains(t, rec.Body.String(), `href="/blog/second/"`)
}

func TestTrailingSlashRedirect(t *testing.T) {
	app, _ := newTestApp(t)

	rec := get(t, app, "/blog/hello-world")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/blog/hello-world/", rec.Header().Get("Location"))

	rec = get(t, app, "/blog/")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestThemeToggleFollowsCookie(t *testing.T) {
	app, _ := newTestApp(t)

	light := get(t, app, "/").Body.String()
	assert.Contains(t, light, `<html lang="en">`)
	assert.Contains(t, light, `aria-label="Switch to dark theme"`)

	dark := get(t, app, "/", &http.Cookie{Name: "theme", Value: "dark"}).Body.String()
	assert.Contains(t, dark, `<html lang="en" class="dark">`)
	assert.Contains(t, dark, `aria-label="Switch to light theme"`)

	odd := get(t, app, "/", &http.Cookie{Name: "theme", Value: "sepia"}).Body.String()
	assert.Contains(t, odd, `aria-label="Switch to dark theme"`)
}

func TestThemeEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	post := func(form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/theme/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Referer", "http://example.com/blog/hello-world/")
		if cookie != nil {
			req.AddCookie(cookie)
		}
		rec := httptest.NewRecorder()
		app.Echo.ServeHTTP(rec, req)
		return rec
	}
	themeCookie := func(rec *httptest.ResponseRecorder) string {
		for _, c := range rec.Result().Cookies() {
			if c.Name == "theme" {
				return c.Value
			}
		}
		return ""
	}

	rec := post(url.Values{"theme": {"dark"}}, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/blog/hello-world/", rec.Header().Get("Location"))
	assert.Equal(t, "dark", themeCookie(rec))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	// without a value the current theme is flipped
	rec = post(url.Values{}, &http.Cookie{Name: "theme", Value: "dark"})
	assert.Equal(t, "light", themeCookie(rec))
	rec = post(url.Values{}, nil)
	assert.Equal(t, "dark", themeCookie(rec))
}

func TestThemeEndpointRequiresDarkMode(t *testing.T) {
	dir, cfg := testSite(t)
	var kept plugin.List
	for _, a := range cfg.Plugins {
		if a.Kind != plugin.DarkMode {
			kept = append(kept, a)
		}
	}
	cfg.Plugins = kept
	app, err := ramblings.New(cfg, views.Funcs(),
		ramblings.WithRoot(dir),
		ramblings.WithServerConfig(ramblings.ServerConfig{
			DatabasePath: filepath.Join(dir, "test.db"),
			GeneratedDir: filepath.Join(dir, "generated"),
		}),
	)
	require.NoError(t, err)
	require.NoError(t, app.Open(context.Background()))
	app.Setup()
	t.Cleanup(func() { _ = app.Close() })

	body := get(t, app, "/").Body.String()
	assert.NotContains(t, body, "data-theme-toggle")
	assert.NotContains(t, body, `action="/theme/"`)

	req := httptest.NewRequest(http.MethodPost, "/theme/", nil)
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	assert.NotEqual(t, http.StatusSeeOther, rec.Code)
}

func TestFeedsAndRobots(t *testing.T) {
	app, _ := newTestApp(t)

	sitemap := get(t, app, "/sitemap.xml")
	require.Equal(t, http.StatusOK, sitemap.Code)
	assert.Contains(t, sitemap.Body.String(), "<loc>https://example.com/blog/hello-world/</loc>")
	assert.NotContains(t, sitemap.Body.String(), "not-yet")

	feed := get(t, app, "/feed.xml")
	require.Equal(t, http.StatusOK, feed.Code)
	assert.Contains(t, feed.Body.String(), "<title>Second</title>")

	robots := get(t, app, "/robots.txt")
	require.Equal(t, http.StatusOK, robots.Code)
	assert.Contains(t, robots.Body.String(), "Sitemap: https://example.com/sitemap.xml")
	assert.NotContains(t, robots.Body.String(), "/admin/")
}

func TestPublicAssets(t *testing.T) {
	app, _ := newTestApp(t)

	for _, p := range []string{"/public/style.css", "/public/theme.js", "/public/highlight.css"} {
		rec := get(t, app, p)
		assert.Equal(t, http.StatusOK, rec.Code, p)
	}
	assert.Contains(t, get(t, app, "/public/highlight.css").Body.String(), "html.dark .chroma")
}

var csrfRe = regexp.MustCompile(`name="_csrf" value="([^"]+)"`)

// adminClient logs into a live server and returns a client holding the
// session, plus a function fetching a fresh CSRF token.
func adminClient(t *testing.T, srv *httptest.Server) (*http.Client, func() string) {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	token := func() string {
		resp, err := client.Get(srv.URL + "/admin/")
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		m := csrfRe.FindStringSubmatch(string(body))
		require.Len(t, m, 2, "csrf token in %s", body)
		return m[1]
	}

	resp, err := client.PostForm(srv.URL+"/admin/login/", url.Values{"_csrf": {token()}, "password": {"letmein"}})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	return client, token
}

func TestAdminRequiresLogin(t *testing.T) {
	app, _ := newTestApp(t, plugin.Bare(plugin.NetlifyCMS))

	rec := get(t, app, "/admin/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `type="password"`)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	assert.Equal(t, http.StatusSeeOther, get(t, app, "/admin/new/").Code)
	assert.Contains(t, get(t, app, "/robots.txt").Body.String(), "Disallow: /admin/")
}

func TestAdminRejectsWrongPassword(t *testing.T) {
	app, _ := newTestApp(t, plugin.Bare(plugin.NetlifyCMS))
	srv := httptest.NewServer(app.Echo)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	resp, err := client.Get(srv.URL + "/admin/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	token := csrfRe.FindStringSubmatch(string(body))[1]

	resp, err = client.PostForm(srv.URL+"/admin/login/", url.Values{"_csrf": {token}, "password": {"wrong"}})
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Wrong password")

	// missing token
	resp, err = client.PostForm(srv.URL+"/admin/login/", url.Values{"password": {"letmein"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminSaveWritesMarkdownAndSyncs(t *testing.T) {
	app, dir := newTestApp(t, plugin.Bare(plugin.NetlifyCMS))
	srv := httptest.NewServer(app.Echo)
	t.Cleanup(srv.Close)
	client, token := adminClient(t, srv)

	resp, err := client.PostForm(srv.URL+"/admin/save/", url.Values{
		"_csrf":     {token()},
		"title":     {"Fresh Thoughts"},
		"slug":      {"fresh-thoughts"},
		"date":      {"2024-06-01"},
		"tags":      {"Go, Web"},
		"summary":   {"Something new."},
		"content":   {"Some *new* thoughts."},
		"published": {"1"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, err := os.ReadFile(filepath.Join(dir, "content", "blog", "fresh-thoughts", "index.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "title: Fresh Thoughts")
	assert.Contains(t, string(data), "Some *new* thoughts.")

	rec := get(t, app, "/blog/fresh-thoughts/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<em>new</em>")

	// rename moves the post
	resp, err = client.PostForm(srv.URL+"/admin/save/", url.Values{
		"_csrf":         {token()},
		"original_slug": {"fresh-thoughts"},
		"title":         {"Fresh Thoughts"},
		"slug":          {"renamed"},
		"date":          {"2024-06-01"},
		"content":       {"Moved."},
		"published":     {"1"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.NoFileExists(t, filepath.Join(dir, "content", "blog", "fresh-thoughts", "index.md"))
	assert.Equal(t, http.StatusOK, get(t, app, "/blog/renamed/").Code)
	assert.Equal(t, http.StatusNotFound, get(t, app, "/blog/fresh-thoughts/").Code)

	// invalid slug
	resp, err = client.PostForm(srv.URL+"/admin/save/", url.Values{
		"_csrf": {token()},
		"title": {"Bad"},
		"slug":  {"Not A Slug"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "msg=")

	// tags become page paths and may not contain slashes
	resp, err = client.PostForm(srv.URL+"/admin/save/", url.Values{
		"_csrf": {token()},
		"title": {"Bad Tags"},
		"slug":  {"bad-tags"},
		"tags":  {"c/c++"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.NoDirExists(t, filepath.Join(dir, "content", "blog", "bad-tags"))

	// delete
	resp, err = client.PostForm(srv.URL+"/admin/post/renamed/delete/", url.Values{"_csrf": {token()}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NoFileExists(t, filepath.Join(dir, "content", "blog", "renamed", "index.md"))
	assert.Equal(t, http.StatusNotFound, get(t, app, "/blog/renamed/").Code)
}

func TestAdminImageUpload(t *testing.T) {
	app, dir := newTestApp(t, plugin.Bare(plugin.NetlifyCMS))
	srv := httptest.NewServer(app.Echo)
	t.Cleanup(srv.Close)
	client, token := adminClient(t, srv)

	src := filepath.Join(t.TempDir(), "Holiday Photo.png")
	writePNG(t, src, 1200, 600)
	data, err := os.ReadFile(src)
	require.NoError(t, err)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("_csrf", token()))
	fw, err := mw.CreateFormFile("image", "Holiday Photo.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := client.Post(srv.URL+"/admin/images/upload/", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	page, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(page), "![Holiday Photo.png](../../assets/uploads/holiday-photo.jpg)")
	assert.Contains(t, string(page), "800×400")

	assert.FileExists(t, filepath.Join(dir, "content", "assets", "uploads", "holiday-photo.jpg"))
	media, err := client.Get(srv.URL + "/media/holiday-photo.jpg")
	require.NoError(t, err)
	media.Body.Close()
	assert.Equal(t, http.StatusOK, media.StatusCode)

	resp, err = client.PostForm(srv.URL+"/admin/images/holiday-photo.jpg/delete/", url.Values{"_csrf": {token()}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NoFileExists(t, filepath.Join(dir, "content", "assets", "uploads", "holiday-photo.jpg"))
}
