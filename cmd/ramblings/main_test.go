package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narsaynorath/ramblings/siteconfig"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	original := version
	t.Cleanup(func() { version = original })
	version = "1.2.3"

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ramblings 1.2.3")
}

func TestConfigDefaultPrintsLoadableYAML(t *testing.T) {
	out, err := execute(t, "config", "--default")
	require.NoError(t, err)

	cfg, err := siteconfig.Parse("default", []byte(out))
	require.NoError(t, err)
	assert.Equal(t, siteconfig.Default().Metadata.Title, cfg.Metadata.Title)
}

func TestConfigReportsMissingFile(t *testing.T) {
	_, err := execute(t, "config", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestNewThenBuild(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "my-blog")

	out, err := execute(t, "new", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "site.yaml")

	cfg, err := siteconfig.Load(filepath.Join(dir, "site.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "My Blog", cfg.Metadata.Title)
	assert.FileExists(t, filepath.Join(dir, "content", "blog", "hello-world", "index.md"))
	assert.FileExists(t, filepath.Join(dir, ".env.example"))

	_, err = execute(t, "new", dir)
	require.Error(t, err, "existing directory must not be overwritten")

	outDir := filepath.Join(t.TempDir(), "public")
	out, err = execute(t, "build", "--config", filepath.Join(dir, "site.yaml"), "--out", outDir, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "built 1 posts")

	page, err := os.ReadFile(filepath.Join(outDir, "blog", "hello-world", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "Hello World")
	assert.FileExists(t, filepath.Join(outDir, "manifest.webmanifest"))
	assert.FileExists(t, filepath.Join(outDir, "favicon.png"))
	assert.FileExists(t, filepath.Join(outDir, "admin", "config.yml"))
}

func TestBuildExampleSite(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "public")
	out, err := execute(t, "build", "--config", filepath.Join("..", "..", "example", "site.yaml"), "--out", outDir, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "built 1 posts")

	for _, f := range []string{
		"blog/hello-world/index.html",
		"tags/meta/index.html",
		"favicon.ico",
		"manifest.webmanifest",
		"admin/config.yml",
	} {
		assert.FileExists(t, filepath.Join(outDir, filepath.FromSlash(f)))
	}
}

func TestToTitle(t *testing.T) {
	assert.Equal(t, "My Blog", toTitle("my-blog"))
	assert.Equal(t, "Myblog", toTitle("myblog"))
}
