package ramblings

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/narsaynorath/ramblings/content"
	"github.com/narsaynorath/ramblings/markdown"
)

// dateLayouts are the front matter date formats accepted, most specific first.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Collection is the rendered content of every post source.
type Collection struct {
	Posts  []BlogPost // drafts included, newest first
	Assets []markdown.Asset
}

// Published returns the non-draft posts.
func (c Collection) Published() []BlogPost {
	var out []BlogPost
	for _, p := range c.Posts {
		if p.Published {
			out = append(out, p)
		}
	}
	return out
}

// Tags returns the sorted tags of published posts.
func (c Collection) Tags() []string {
	set := map[string]struct{}{}
	for _, p := range c.Published() {
		for _, t := range p.Tags {
			if t = normalizeTag(t); t != "" {
				set[t] = struct{}{}
			}
		}
	}
	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Collect loads the post sources and renders their markdown documents.
// Without transformer-remark there are no posts.
func (a *App) Collect(ctx context.Context) (Collection, error) {
	var col Collection
	if a.Pipeline.Renderer == nil {
		a.Log.Warn().Msg("transformer-remark is not activated; no posts will be rendered")
		return col, nil
	}

	seenSlugs := map[string]string{}
	seenAssets := map[string]bool{}
	for _, src := range a.Pipeline.PostSources() {
		nodes, err := content.Load(ctx, src)
		if err != nil {
			return col, err
		}
		for _, n := range nodes {
			if !n.IsMarkdown() {
				continue
			}
			post, assets, err := a.renderNode(n)
			if err != nil {
				return col, err
			}
			if prev, ok := seenSlugs[post.Slug]; ok {
				return col, fmt.Errorf("duplicate slug %q: %s and %s", post.Slug, prev, n.Path)
			}
			seenSlugs[post.Slug] = n.Path
			col.Posts = append(col.Posts, post)
			for _, as := range assets {
				if !seenAssets[as.Target] {
					seenAssets[as.Target] = true
					col.Assets = append(col.Assets, as)
				}
			}
		}
	}
	sortPosts(col.Posts)
	a.Log.Debug().Int("posts", len(col.Posts)).Int("assets", len(col.Assets)).Msg("content collected")
	return col, nil
}

func (a *App) renderNode(n content.Node) (BlogPost, []markdown.Asset, error) {
	res, err := a.Pipeline.Renderer.Render(n.Path, n.Body)
	if err != nil {
		return BlogPost{}, nil, err
	}
	fm := n.Frontmatter
	if fm.Slug != "" && fm.Slug != Slugify(fm.Slug) {
		return BlogPost{}, nil, fmt.Errorf("%s: invalid slug %q: only a-z, 0-9 and dashes are allowed", n.Path, fm.Slug)
	}
	tags := FilterEmpty(fm.Tags)
	for _, t := range tags {
		if !ValidTag(t) {
			return BlogPost{}, nil, fmt.Errorf("%s: invalid tag %q", n.Path, t)
		}
	}
	title := fm.Title
	if title == "" {
		title = n.Slug()
	}
	date := normalizeDate(fm.Date)
	if date == "" {
		date = n.ModTime.UTC().Format("2006-01-02")
	}
	summary := fm.Description
	if summary == "" {
		summary = res.Excerpt
	}
	return BlogPost{
		Slug:      n.Slug(),
		Title:     title,
		Date:      date,
		Tags:      tags,
		Summary:   summary,
		Content:   string(n.Body),
		HTML:      res.HTML,
		Source:    n.Path,
		Link:      "/blog/" + n.Slug() + "/",
		Published: !fm.Draft,
	}, res.Assets, nil
}

// Sync renders the post sources into the store and registers their assets
// for serving.
func (a *App) Sync(ctx context.Context) error {
	col, err := a.Collect(ctx)
	if err != nil {
		return err
	}
	if err := a.Store.ReplacePosts(ctx, col.Posts); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err := a.writeAssets(col.Assets, a.Server.GeneratedDir); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	a.Cache.Invalidate()
	a.Log.Info().Int("posts", len(col.Posts)).Msg("content synced")
	return nil
}

// normalizeDate reduces a front matter date to YYYY-MM-DD, or "" when it
// cannot be parsed.
func normalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

func sortPosts(posts []BlogPost) {
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].Date != posts[j].Date {
			return posts[i].Date > posts[j].Date
		}
		return posts[i].Slug < posts[j].Slug
	})
}
