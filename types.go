package ramblings

import (
	"github.com/narsaynorath/ramblings/manifest"
	"github.com/narsaynorath/ramblings/siteconfig"
)

// BlogPost is a rendered markdown document indexed in SQLite.
type BlogPost struct {
	Title     string
	Date      string
	Tags      []string
	Summary   string
	Link      string
	Slug      string
	Content   string // markdown source
	HTML      string
	Source    string // filesystem path of the document
	Published bool
}

// Image is an uploaded media file.
type Image struct {
	Filename     string `db:"filename"`
	OriginalName string `db:"original_name"`
	Width        int    `db:"width"`
	Height       int    `db:"height"`
	Size         int    `db:"size"`
	UploadedAt   string `db:"uploaded_at"`

	// Path is the reference to use from a post's markdown.
	Path string `db:"-"`
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	JSONLD      string
}

// Site is what every view receives: the site metadata, the activated
// features and the visitor's theme.
type Site struct {
	Metadata siteconfig.SiteMetadata

	// Theme is the raw stored theme value; it may be empty.
	Theme string
	// ThemeAction is the toggle's POST target. Empty in the static build,
	// where the toggle is driven by the embedded script.
	ThemeAction string

	DarkMode bool // dark-mode
	Helmet   bool // react-helmet
	CMS      bool // netlify-cms
	Manifest *manifest.Manifest
	Favicon  string
}

// URL returns the canonical site URL.
func (s Site) URL() string { return s.Metadata.SiteURL }
