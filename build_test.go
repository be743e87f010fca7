package ramblings_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/narsaynorath/ramblings"
	"github.com/narsaynorath/ramblings/plugin"
	"github.com/narsaynorath/ramblings/views"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestBuildWritesStaticSite(t *testing.T) {
	dir, cfg := testSite(t,
		plugin.Bare(plugin.NetlifyCMS),
		plugin.New(plugin.PluginSharp, map[string]any{"icon": "icon.png"}),
		plugin.New(plugin.Manifest, map[string]any{"name": "ramblings", "theme_color": "#663399", "icon": "icon.png"}),
	)
	writePNG(t, filepath.Join(dir, "icon.png"), 64, 64)

	app, err := ramblings.New(cfg, views.Funcs(), ramblings.WithRoot(dir))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "public")
	res, err := app.Build(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Posts)
	assert.Equal(t, 2, res.Tags)
	assert.Equal(t, 1, res.Assets)

	for _, f := range []string{
		"index.html",
		"404.html",
		"blog/hello-world/index.html",
		"blog/second/index.html",
		"tags/go/index.html",
		"tags/meta/index.html",
		"sitemap.xml",
		"feed.xml",
		"robots.txt",
		"favicon.png",
		"manifest.webmanifest",
		"icons/icon-192x192.png",
		"public/highlight.css",
		"public/theme.js",
		"public/style.css",
		"admin/index.html",
		"admin/config.yml",
	} {
		assert.FileExists(t, filepath.Join(out, filepath.FromSlash(f)))
	}
	assert.NoDirExists(t, filepath.Join(out, "blog", "not-yet"))

	home := readFile(t, filepath.Join(out, "index.html"))
	// both toggle states are rendered and the script picks one
	assert.Contains(t, home, `data-theme-when="light"`)
	assert.Contains(t, home, `data-theme-when="dark"`)
	assert.Contains(t, home, `<script src="/public/theme.js"></script>`)
	assert.NotContains(t, home, `action="/theme/"`)
	assert.Contains(t, home, `<link rel="manifest"`)
	assert.Contains(t, home, `<link rel="icon" href="/favicon.png"/>`)

	post := readFile(t, filepath.Join(out, "blog", "hello-world", "index.html"))
	start := strings.Index(post, `src="/static/`)
	require.GreaterOrEqual(t, start, 0)
	src := post[start+len(`src="`):]
	src = src[:strings.Index(src, `"`)]
	assert.FileExists(t, filepath.Join(out, filepath.FromSlash(strings.TrimPrefix(src, "/"))))

	var cms ramblings.CMSConfig
	require.NoError(t, yaml.Unmarshal([]byte(readFile(t, filepath.Join(out, "admin", "config.yml"))), &cms))
	assert.Equal(t, "git-gateway", cms.Backend.Name)
	assert.Equal(t, "content/assets/uploads", cms.MediaFolder)
	require.Len(t, cms.Collections, 1)
	assert.Equal(t, "content/blog", cms.Collections[0].Folder)

	assert.Contains(t, readFile(t, filepath.Join(out, "robots.txt")), "Disallow: /admin/")
}

func TestBuildIsRepeatable(t *testing.T) {
	dir, cfg := testSite(t)
	app, err := ramblings.New(cfg, views.Funcs(), ramblings.WithRoot(dir))
	require.NoError(t, err)

	out := t.TempDir()
	_, err = app.Build(context.Background(), out)
	require.NoError(t, err)
	first := readFile(t, filepath.Join(out, "blog", "hello-world", "index.html"))

	_, err = app.Build(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, first, readFile(t, filepath.Join(out, "blog", "hello-world", "index.html")))
}

func TestBuildRejectsDuplicateSlugs(t *testing.T) {
	dir, cfg := testSite(t)
	writeFile(t, filepath.Join(dir, "content", "blog", "hello-world.md"), "---\ntitle: Clash\n---\nbody\n")

	app, err := ramblings.New(cfg, views.Funcs(), ramblings.WithRoot(dir))
	require.NoError(t, err)
	_, err = app.Build(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate slug")
}

func TestBuildRejectsUnsafePaths(t *testing.T) {
	for name, post := range map[string]string{
		"slug escaping the output dir": "---\ntitle: Escape\nslug: ../../escaped-slug\n---\nbody\n",
		"slug with uppercase":          "---\ntitle: Upper\nslug: Upper-Case\n---\nbody\n",
		"tag escaping the output dir":  "---\ntitle: Escape\ntags: [\"../../escaped-tag\"]\n---\nbody\n",
		"tag with a slash":             "---\ntitle: Cpp\ntags: [\"c/c++\"]\n---\nbody\n",
	} {
		t.Run(name, func(t *testing.T) {
			dir, cfg := testSite(t)
			writeFile(t, filepath.Join(dir, "content", "blog", "hostile", "index.md"), post)

			app, err := ramblings.New(cfg, views.Funcs(), ramblings.WithRoot(dir))
			require.NoError(t, err)

			_, err = app.Collect(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid")

			site := filepath.Join(dir, "site")
			_, err = app.Build(context.Background(), filepath.Join(site, "public"))
			require.Error(t, err)
			assert.NoDirExists(t, filepath.Join(site, "escaped-slug"))
			assert.NoDirExists(t, filepath.Join(site, "escaped-tag"))
			assert.NoDirExists(t, filepath.Join(site, "public", "tags", "c"))
		})
	}
}

func TestBuildCancelled(t *testing.T) {
	dir, cfg := testSite(t)
	app, err := ramblings.New(cfg, views.Funcs(), ramblings.WithRoot(dir))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = app.Build(ctx, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}
