// Package content reads filesystem content sources: markdown posts with YAML
// front matter and plain asset files.
package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// ErrNoFrontmatter is returned by SplitFrontmatter when the document has an
// opening delimiter but no closing one.
var ErrNoFrontmatter = errors.New("unterminated front matter")

// DefaultIgnore skips dotfiles and editor backups.
var DefaultIgnore = []string{"**/.*", "**/.*/**", "**/*~"}

// Source is a named directory of content.
type Source struct {
	Name   string
	Path   string
	Ignore []string
}

// Frontmatter is the YAML header of a markdown document.
type Frontmatter struct {
	Title       string   `yaml:"title"`
	Date        string   `yaml:"date"`
	Description string   `yaml:"description,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	Draft       bool     `yaml:"draft,omitempty"`
	Slug        string   `yaml:"slug,omitempty"`
}

// Node is one file from a source.
type Node struct {
	Source      string
	Path        string // filesystem path
	RelPath     string // slash-separated path inside the source
	Ext         string
	Size        int64
	ModTime     time.Time
	Frontmatter Frontmatter
	Body        []byte // markdown body without front matter; nil for assets
}

// IsMarkdown reports whether the node is a markdown document.
func (n Node) IsMarkdown() bool {
	return isMarkdown(n.Ext)
}

// Slug derives the URL slug: the front matter slug, else the directory name
// for index documents, else the file name without extension.
func (n Node) Slug() string {
	if n.Frontmatter.Slug != "" {
		return n.Frontmatter.Slug
	}
	base := strings.TrimSuffix(path.Base(n.RelPath), path.Ext(n.RelPath))
	if base == "index" {
		if dir := path.Dir(n.RelPath); dir != "." {
			return path.Base(dir)
		}
	}
	return base
}

func isMarkdown(ext string) bool {
	switch strings.ToLower(ext) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// Load walks src and returns its files sorted by relative path. Markdown
// files have their front matter decoded.
func Load(ctx context.Context, src Source) ([]Node, error) {
	info, err := os.Stat(src.Path)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", src.Name, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %s: %s is not a directory", src.Name, src.Path)
	}

	ignore := append(append([]string{}, DefaultIgnore...), src.Ignore...)
	fsys := os.DirFS(src.Path)

	var nodes []Node
	err = doublestar.GlobWalk(fsys, "**", func(rel string, d fs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || ignored(rel, ignore) {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		n := Node{
			Source:  src.Name,
			Path:    filepath.Join(src.Path, filepath.FromSlash(rel)),
			RelPath: rel,
			Ext:     strings.ToLower(path.Ext(rel)),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		}
		if n.IsMarkdown() {
			data, err := fs.ReadFile(fsys, rel)
			if err != nil {
				return err
			}
			fm, body, err := SplitFrontmatter(data)
			if err != nil {
				return fmt.Errorf("%s: %w", n.Path, err)
			}
			n.Frontmatter = fm
			n.Body = body
		}
		nodes = append(nodes, n)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", src.Name, err)
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].RelPath < nodes[j].RelPath })
	return nodes, nil
}

func ignored(rel string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

var delimiter = []byte("---")

// SplitFrontmatter separates a leading "---" YAML block from the body.
// Documents without front matter return a zero Frontmatter and the input.
func SplitFrontmatter(data []byte) (Frontmatter, []byte, error) {
	var fm Frontmatter
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	normalized := bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, append(delimiter, '\n')) {
		return fm, data, nil
	}
	rest := normalized[len(delimiter)+1:]

	var header []byte
	switch {
	case bytes.HasPrefix(rest, append(delimiter, '\n')):
		rest = rest[len(delimiter)+1:]
	case bytes.Equal(rest, delimiter):
		rest = nil
	default:
		end := bytes.Index(rest, []byte("\n---\n"))
		if end < 0 {
			if !bytes.HasSuffix(rest, []byte("\n---")) {
				return fm, nil, ErrNoFrontmatter
			}
			header = rest[:len(rest)-len("\n---")]
			rest = nil
		} else {
			header = rest[:end]
			rest = rest[end+len("\n---\n"):]
		}
	}

	if len(bytes.TrimSpace(header)) > 0 {
		if err := yaml.Unmarshal(header, &fm); err != nil {
			return fm, nil, fmt.Errorf("front matter: %w", err)
		}
	}
	return fm, rest, nil
}

// Post is a markdown document written back to a source directory.
type Post struct {
	Slug        string
	Frontmatter Frontmatter
	Body        string
}

// WritePost stores p as <dir>/<slug>/index.md and returns the file path.
func WritePost(dir string, p Post) (string, error) {
	if p.Slug == "" || strings.ContainsAny(p.Slug, `/\`) || p.Slug == "." || p.Slug == ".." {
		return "", fmt.Errorf("invalid slug %q", p.Slug)
	}
	header, err := yaml.Marshal(p.Frontmatter)
	if err != nil {
		return "", fmt.Errorf("encode front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n\n")
	buf.WriteString(strings.TrimLeft(p.Body, "\n"))
	if !strings.HasSuffix(p.Body, "\n") {
		buf.WriteByte('\n')
	}

	postDir := filepath.Join(dir, p.Slug)
	if err := os.MkdirAll(postDir, 0o755); err != nil {
		return "", err
	}
	file := filepath.Join(postDir, "index.md")
	if err := os.WriteFile(file, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return file, nil
}

// RemovePost deletes <dir>/<slug>/index.md and the directory when it is empty.
func RemovePost(dir, slug string) error {
	if slug == "" || strings.ContainsAny(slug, `/\`) || slug == "." || slug == ".." {
		return fmt.Errorf("invalid slug %q", slug)
	}
	postDir := filepath.Join(dir, slug)
	if err := os.Remove(filepath.Join(postDir, "index.md")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	// leave directories that still hold co-located files
	_ = os.Remove(postDir)
	return nil
}
