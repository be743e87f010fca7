package ramblings

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// BuildResult summarizes a static export.
type BuildResult struct {
	Posts    int
	Tags     int
	Assets   int
	Duration time.Duration
}

// Build exports the whole site as static files under outDir. The static
// build has no visitor, so the theme toggle is driven by the embedded script.
func (a *App) Build(ctx context.Context, outDir string) (BuildResult, error) {
	start := time.Now()
	var res BuildResult

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return res, err
	}
	col, err := a.Collect(ctx)
	if err != nil {
		return res, err
	}
	m, err := a.writeSiteAssets(outDir)
	if err != nil {
		return res, fmt.Errorf("site assets: %w", err)
	}
	a.manifest = m
	if err := a.writeAssets(col.Assets, outDir); err != nil {
		return res, err
	}

	site := a.site(nil)
	posts := col.Published()
	tags := col.Tags()

	if err := RenderFile(ctx, filepath.Join(outDir, "index.html"), a.Views.Home(site, posts, tags)); err != nil {
		return res, fmt.Errorf("index: %w", err)
	}
	for _, p := range posts {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		prev, next := Neighbors(p, posts)
		page := a.Views.Post(site, p, FilterRelatedPosts(p, posts), prev, next)
		if err := RenderFile(ctx, filepath.Join(outDir, "blog", p.Slug, "index.html"), page); err != nil {
			return res, fmt.Errorf("post %s: %w", p.Slug, err)
		}
	}
	for _, t := range tags {
		page := a.Views.Tag(site, t, FilterByTag(posts, t), tags)
		if err := RenderFile(ctx, filepath.Join(outDir, "tags", t, "index.html"), page); err != nil {
			return res, fmt.Errorf("tag %s: %w", t, err)
		}
	}
	if err := RenderFile(ctx, filepath.Join(outDir, "404.html"), a.Views.NotFound(site)); err != nil {
		return res, fmt.Errorf("404: %w", err)
	}

	var buf bytes.Buffer
	if err := WriteSitemap(&buf, a.Config.Metadata.SiteURL, posts, tags); err != nil {
		return res, err
	}
	if err := os.WriteFile(filepath.Join(outDir, "sitemap.xml"), buf.Bytes(), 0o644); err != nil {
		return res, err
	}
	buf.Reset()
	if err := WriteFeed(&buf, a.Config.Metadata, posts); err != nil {
		return res, err
	}
	if err := os.WriteFile(filepath.Join(outDir, "feed.xml"), buf.Bytes(), 0o644); err != nil {
		return res, err
	}
	robots := Robots(a.Config.Metadata.SiteURL, a.Pipeline.CMS)
	if err := os.WriteFile(filepath.Join(outDir, "robots.txt"), []byte(robots), 0o644); err != nil {
		return res, err
	}

	if a.Pipeline.CMS {
		if err := a.writeCMS(outDir); err != nil {
			return res, err
		}
	}

	res = BuildResult{
		Posts:    len(posts),
		Tags:     len(tags),
		Assets:   len(col.Assets),
		Duration: time.Since(start),
	}
	a.Log.Info().
		Int("posts", res.Posts).
		Int("tags", res.Tags).
		Int("assets", res.Assets).
		Dur("took", res.Duration).
		Str("out", outDir).
		Msg("site built")
	return res, nil
}
