package views

import (
	"bytes"
	"context"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narsaynorath/ramblings"
	"github.com/narsaynorath/ramblings/siteconfig"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func testSite() ramblings.Site {
	return ramblings.Site{
		Metadata: siteconfig.SiteMetadata{
			Title:       "ramblings",
			Description: "A personal blog",
			SiteURL:     "https://example.com/",
			Author:      siteconfig.Author{Name: "Nar", Summary: "writes."},
			Social:      siteconfig.Social{GitHub: "nar"},
		},
		DarkMode: true,
		Helmet:   true,
	}
}

func TestThemeToggleServerMode(t *testing.T) {
	site := testSite()
	site.ThemeAction = "/theme/"

	site.Theme = "dark"
	out := render(t, ThemeToggle(site))
	assert.Contains(t, out, `action="/theme/"`)
	assert.Contains(t, out, `name="theme" value="light"`)
	assert.NotContains(t, out, "data-theme-when")

	site.Theme = ""
	out = render(t, ThemeToggle(site))
	assert.Contains(t, out, `name="theme" value="dark"`)
}

func TestThemeToggleStaticMode(t *testing.T) {
	out := render(t, ThemeToggle(testSite()))
	assert.Contains(t, out, `<span data-theme-when="light"><button type="button" class="theme-toggle" data-theme-toggle data-theme-next="dark"`)
	assert.Contains(t, out, `<span data-theme-when="dark"><button type="button" class="theme-toggle" data-theme-toggle data-theme-next="light"`)
	assert.NotContains(t, out, "<form")
}

func TestLayoutDarkClass(t *testing.T) {
	site := testSite()
	site.ThemeAction = "/theme/"
	site.Theme = "dark"
	assert.Contains(t, render(t, NotFound(site)), `<html lang="en" class="dark">`)

	site.DarkMode = false
	out := render(t, NotFound(site))
	assert.Contains(t, out, `<html lang="en">`)
	assert.NotContains(t, out, "theme-toggle")
}

func TestHeadTags(t *testing.T) {
	out := render(t, Home(testSite(), nil, nil))
	assert.Contains(t, out, "<title>All posts | ramblings</title>")
	assert.Contains(t, out, `<meta name="description" content="A personal blog"/>`)
	assert.Contains(t, out, `<meta property="og:type" content="website"/>`)
	assert.Contains(t, out, "No blog posts found.")

	site := testSite()
	site.Helmet = false
	out = render(t, Home(site, nil, nil))
	assert.NotContains(t, out, "og:title")
	assert.NotContains(t, out, "application/ld+json")
}

func TestPostEscapesContent(t *testing.T) {
	post := ramblings.BlogPost{
		Slug:    "x",
		Title:   `<script>alert(1)</script>`,
		Date:    "2024-03-01",
		Summary: "summary",
		HTML:    "<p>rendered</p>",
		Tags:    []string{"go"},
	}
	next := ramblings.BlogPost{Slug: "y", Title: "Next one", Link: "/blog/y/"}
	out := render(t, Post(testSite(), post, nil, nil, &next))
	assert.NotContains(t, out, "<script>alert(1)</script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "<p>rendered</p>")
	assert.Contains(t, out, "March 1, 2024")
	assert.Contains(t, out, `<a rel="next" href="/blog/y/">Next one →</a>`)
	assert.Contains(t, out, `<meta property="og:type" content="article"/>`)
}

func TestTagPage(t *testing.T) {
	posts := []ramblings.BlogPost{{Slug: "a", Title: "A", Link: "/blog/a/"}, {Slug: "b", Title: "B", Link: "/blog/b/"}}
	out := render(t, Tag(testSite(), "go", posts, []string{"go", "web"}))
	assert.Contains(t, out, "2 posts tagged &#34;go&#34;")
	assert.Contains(t, out, `<a href="/tags/go/" aria-current="page">#go</a>`)
}

func TestAdminViewsCarryCSRF(t *testing.T) {
	site := testSite()
	posts := []ramblings.BlogPost{{Slug: "a", Title: "A", Date: "2024-01-01"}}
	images := []ramblings.Image{{Filename: "pic.jpg", OriginalName: "pic.jpg", Width: 800, Height: 600, Path: "../../assets/uploads/pic.jpg"}}

	for name, c := range map[string]templ.Component{
		"login":     AdminLogin(site, true, "tok"),
		"dashboard": AdminDashboard(site, posts, "saved", "tok"),
		"form":      AdminForm(site, posts[0], "tok"),
		"images":    AdminImages(site, images, "tok"),
	} {
		assert.Contains(t, render(t, c), `name="_csrf" value="tok"`, name)
	}

	assert.Contains(t, render(t, AdminLogin(site, true, "tok")), "Wrong password.")
	assert.Contains(t, render(t, AdminDashboard(site, posts, "", "tok")), `action="/admin/post/a/delete/"`)
	assert.Contains(t, render(t, AdminImages(site, images, "tok")), "![pic.jpg](../../assets/uploads/pic.jpg)")
	assert.Contains(t, render(t, AdminForm(site, ramblings.BlogPost{}, "tok")), "New post")
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "January 2, 2006", FormatDate("2006-01-02"))
	assert.Equal(t, "someday", FormatDate("someday"))
}
