package ramblings

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
)

// Slugify converts a title to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// ValidTag reports whether a tag can name its own page: it must not be a
// path element like "." or "..", nor contain a path separator.
func ValidTag(t string) bool {
	t = strings.TrimSpace(t)
	return t != "" && t != "." && t != ".." && !strings.ContainsAny(t, `/\`)
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// FilterRelatedPosts finds posts that share at least one tag with current.
func FilterRelatedPosts(current BlogPost, posts []BlogPost) []BlogPost {
	tagSet := make(map[string]struct{})
	for _, t := range current.Tags {
		if tag := normalizeTag(t); tag != "" {
			tagSet[tag] = struct{}{}
		}
	}
	var related []BlogPost
	for _, p := range posts {
		if p.Slug == current.Slug {
			continue
		}
		for _, t := range p.Tags {
			if _, ok := tagSet[normalizeTag(t)]; ok {
				related = append(related, p)
				break
			}
		}
	}
	return related
}

// Neighbors returns the posts published right before and after current in
// posts, which are ordered newest first.
func Neighbors(current BlogPost, posts []BlogPost) (prev, next *BlogPost) {
	for i := range posts {
		if posts[i].Slug != current.Slug {
			continue
		}
		if i+1 < len(posts) {
			prev = &posts[i+1]
		}
		if i > 0 {
			next = &posts[i-1]
		}
		break
	}
	return prev, next
}

// JoinTags joins tags with ", ".
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// PathEscape escapes a string for use in a URL path.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema.
func WebsiteJsonLD(site Site) string {
	meta := site.Metadata
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        meta.Title,
		"url":         BuildURL(meta.SiteURL),
		"description": meta.Description,
	}
	if meta.Author.Name != "" {
		data["author"] = author(site)
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD returns a JSON-LD string for a BlogPosting schema.
func BlogPostingJsonLD(post BlogPost, site Site) string {
	meta := site.Metadata
	postURL := BuildURL(meta.SiteURL, "blog", post.Slug)
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.Title,
		"description":   post.Summary,
		"datePublished": post.Date,
		"url":           postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if meta.Author.Name != "" {
		data["author"] = author(site)
	}
	if meta.Title != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  meta.Title,
		}
	}
	if len(post.Tags) > 0 {
		data["keywords"] = strings.Join(post.Tags, ", ")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func author(site Site) map[string]interface{} {
	a := map[string]interface{}{
		"@type": "Person",
		"name":  site.Metadata.Author.Name,
	}
	if gh := site.Metadata.Social.GitHub; gh != "" {
		a["sameAs"] = []string{"https://github.com/" + gh}
	}
	return a
}
