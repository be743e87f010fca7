package ramblings

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/a-h/templ"
	"gopkg.in/yaml.v3"
)

// CMSConfig is the admin/config.yml consumed by the Netlify CMS app of the
// static build.
type CMSConfig struct {
	Backend      CMSBackend      `yaml:"backend"`
	MediaFolder  string          `yaml:"media_folder"`
	PublicFolder string          `yaml:"public_folder,omitempty"`
	Collections  []CMSCollection `yaml:"collections"`
}

type CMSBackend struct {
	Name   string `yaml:"name"`
	Branch string `yaml:"branch,omitempty"`
}

type CMSCollection struct {
	Name   string     `yaml:"name"`
	Label  string     `yaml:"label"`
	Folder string     `yaml:"folder"`
	Create bool       `yaml:"create"`
	Path   string     `yaml:"path,omitempty"`
	Slug   string     `yaml:"slug,omitempty"`
	Fields []CMSField `yaml:"fields"`
}

type CMSField struct {
	Label    string `yaml:"label"`
	Name     string `yaml:"name"`
	Widget   string `yaml:"widget"`
	Required *bool  `yaml:"required,omitempty"`
	Default  any    `yaml:"default,omitempty"`
}

// cmsConfig describes the blog source as a folder collection.
func (a *App) cmsConfig() (CMSConfig, error) {
	blog, err := a.blogDir()
	if err != nil {
		return CMSConfig{}, err
	}
	media, err := a.mediaDir()
	if err != nil {
		return CMSConfig{}, err
	}
	optional := false
	return CMSConfig{
		Backend:      CMSBackend{Name: "git-gateway", Branch: "master"},
		MediaFolder:  a.repoPath(media),
		PublicFolder: path.Dir(a.mediaPath("x")),
		Collections: []CMSCollection{{
			Name:   BlogSource,
			Label:  "Blog",
			Folder: a.repoPath(blog),
			Create: true,
			Path:   "{{slug}}/index",
			Slug:   "{{slug}}",
			Fields: []CMSField{
				{Label: "Title", Name: "title", Widget: "string"},
				{Label: "Publish Date", Name: "date", Widget: "datetime"},
				{Label: "Description", Name: "description", Widget: "string", Required: &optional},
				{Label: "Tags", Name: "tags", Widget: "list", Required: &optional},
				{Label: "Draft", Name: "draft", Widget: "boolean", Default: false},
				{Label: "Body", Name: "body", Widget: "markdown"},
			},
		}},
	}, nil
}

// repoPath makes p relative to the site root, slash separated.
func (a *App) repoPath(p string) string {
	rel, err := filepath.Rel(a.root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

// WriteCMSConfig encodes cfg as YAML.
func WriteCMSConfig(w io.Writer, cfg CMSConfig) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

const cmsIndex = `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1.0" />
  <meta name="robots" content="noindex" />
  <title>Content Manager | %s</title>
  <script src="https://identity.netlify.com/v1/netlify-identity-widget.js"></script>
</head>
<body>
  <script src="https://unpkg.com/netlify-cms@^2.0.0/dist/netlify-cms.js"></script>
</body>
</html>
`

// writeCMS writes admin/index.html and admin/config.yml under outDir.
func (a *App) writeCMS(outDir string) error {
	cfg, err := a.cmsConfig()
	if err != nil {
		return err
	}
	dir := filepath.Join(outDir, "admin")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, "config.yml"))
	if err != nil {
		return err
	}
	if err := WriteCMSConfig(f, cfg); err != nil {
		_ = f.Close()
		return fmt.Errorf("cms config: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	index := fmt.Sprintf(cmsIndex, templ.EscapeString(a.Config.Metadata.Title))
	return os.WriteFile(filepath.Join(dir, "index.html"), []byte(index), 0o644)
}
