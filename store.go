package ramblings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite driver
)

// ErrNotFound is returned when a requested post or image does not exist.
var ErrNotFound = errors.New("not found")

// Store is the SQLite index of rendered posts and uploaded images. The
// markdown sources stay the source of truth; Sync rebuilds the posts table.
type Store struct {
	db *sqlx.DB
}

type postRow struct {
	Slug      string `db:"slug"`
	Title     string `db:"title"`
	Date      string `db:"date"`
	Tags      string `db:"tags"`
	Summary   string `db:"summary"`
	Content   string `db:"content"`
	HTML      string `db:"html"`
	Source    string `db:"source"`
	Published bool   `db:"published"`
}

func (r postRow) post() BlogPost {
	return BlogPost{
		Slug:      r.Slug,
		Title:     r.Title,
		Date:      r.Date,
		Tags:      ParseTags(r.Tags),
		Summary:   r.Summary,
		Content:   r.Content,
		HTML:      r.HTML,
		Source:    r.Source,
		Link:      "/blog/" + r.Slug + "/",
		Published: r.Published,
	}
}

const postColumns = `slug, title, date, tags, summary, content, html, source, published`

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-8000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", pragma, err)
		}
	}
	// single writer
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    slug TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    date TEXT NOT NULL,
    tags TEXT NOT NULL,
    summary TEXT NOT NULL,
    content TEXT NOT NULL,
    html TEXT NOT NULL,
    source TEXT NOT NULL DEFAULT '',
    published INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS images (
    filename TEXT PRIMARY KEY,
    original_name TEXT NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    size INTEGER NOT NULL,
    uploaded_at TEXT NOT NULL
);
`)
	return err
}

// ListPosts returns all published posts ordered by date descending.
// If tag is non-empty, results are filtered to posts containing that tag.
func (s *Store) ListPosts(tag string) ([]BlogPost, error) {
	var rows []postRow
	var err error
	if tag == "" {
		err = s.db.Select(&rows, `SELECT `+postColumns+` FROM posts WHERE published = 1 ORDER BY date DESC, slug`)
	} else {
		err = s.db.Select(&rows, `SELECT `+postColumns+` FROM posts WHERE published = 1 AND instr(tags, ',' || ? || ',') > 0 ORDER BY date DESC, slug`,
			normalizeTag(tag))
	}
	if err != nil {
		return nil, err
	}
	return toPosts(rows), nil
}

// ListAllPosts returns every post (published and drafts) ordered by date descending.
func (s *Store) ListAllPosts() ([]BlogPost, error) {
	var rows []postRow
	if err := s.db.Select(&rows, `SELECT `+postColumns+` FROM posts ORDER BY date DESC, slug`); err != nil {
		return nil, err
	}
	return toPosts(rows), nil
}

// ListTags returns a sorted, deduplicated slice of all tags from published posts.
func (s *Store) ListTags() ([]string, error) {
	var all []string
	if err := s.db.Select(&all, `SELECT tags FROM posts WHERE published = 1`); err != nil {
		return nil, err
	}
	set := make(map[string]struct{})
	for _, tags := range all {
		for _, t := range ParseTags(tags) {
			set[t] = struct{}{}
		}
	}
	result := make([]string, 0, len(set))
	for t := range set {
		result = append(result, t)
	}
	sort.Strings(result)
	return result, nil
}

// GetPost returns a single published post by slug.
func (s *Store) GetPost(slug string) (BlogPost, error) {
	return s.getPost(`SELECT `+postColumns+` FROM posts WHERE slug = ? AND published = 1`, slug)
}

// GetPostAny returns a post by slug regardless of published status (for admin).
func (s *Store) GetPostAny(slug string) (BlogPost, error) {
	return s.getPost(`SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug)
}

func (s *Store) getPost(query, slug string) (BlogPost, error) {
	var row postRow
	if err := s.db.Get(&row, query, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return BlogPost{}, ErrNotFound
		}
		return BlogPost{}, err
	}
	return row.post(), nil
}

// SavePost upserts a blog post. Tags are normalized to lowercase.
func (s *Store) SavePost(p BlogPost) error {
	_, err := s.db.NamedExec(`INSERT OR REPLACE INTO posts (`+postColumns+`)
		VALUES (:slug, :title, :date, :tags, :summary, :content, :html, :source, :published)`, toRow(p))
	return err
}

// ReplacePosts swaps the whole posts table for posts in one transaction.
func (s *Store) ReplacePosts(ctx context.Context, posts []BlogPost) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM posts`); err != nil {
		return err
	}
	for _, p := range posts {
		if _, err := tx.NamedExecContext(ctx, `INSERT OR REPLACE INTO posts (`+postColumns+`)
			VALUES (:slug, :title, :date, :tags, :summary, :content, :html, :source, :published)`, toRow(p)); err != nil {
			return fmt.Errorf("insert %s: %w", p.Slug, err)
		}
	}
	return tx.Commit()
}

// DeletePost removes a post by slug.
func (s *Store) DeletePost(slug string) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE slug = ?`, slug)
	return err
}

// ListImages returns uploaded images, newest first.
func (s *Store) ListImages() ([]Image, error) {
	var images []Image
	if err := s.db.Select(&images, `SELECT filename, original_name, width, height, size, uploaded_at FROM images ORDER BY uploaded_at DESC, filename`); err != nil {
		return nil, err
	}
	return images, nil
}

// HasImage reports whether filename is already taken.
func (s *Store) HasImage(filename string) (bool, error) {
	var n int
	if err := s.db.Get(&n, `SELECT COUNT(*) FROM images WHERE filename = ?`, filename); err != nil {
		return false, err
	}
	return n > 0, nil
}

// SaveImage records an uploaded image.
func (s *Store) SaveImage(img Image) error {
	_, err := s.db.NamedExec(`INSERT OR REPLACE INTO images (filename, original_name, width, height, size, uploaded_at)
		VALUES (:filename, :original_name, :width, :height, :size, :uploaded_at)`, img)
	return err
}

// DeleteImage removes an image record.
func (s *Store) DeleteImage(filename string) error {
	_, err := s.db.Exec(`DELETE FROM images WHERE filename = ?`, filename)
	return err
}

func toRow(p BlogPost) postRow {
	normalized := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		if t = normalizeTag(t); t != "" {
			normalized = append(normalized, t)
		}
	}
	return postRow{
		Slug:      p.Slug,
		Title:     p.Title,
		Date:      p.Date,
		Tags:      "," + strings.Join(normalized, ",") + ",",
		Summary:   p.Summary,
		Content:   p.Content,
		HTML:      p.HTML,
		Source:    p.Source,
		Published: p.Published,
	}
}

func toPosts(rows []postRow) []BlogPost {
	posts := make([]BlogPost, 0, len(rows))
	for _, r := range rows {
		posts = append(posts, r.post())
	}
	return posts
}

// ParseTags splits a comma-delimited tag string (e.g. ",go,web,") into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
