// Package views holds the default templates of the blog.
package views

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/narsaynorath/ramblings"
	"github.com/narsaynorath/ramblings/markdown"
)

// Funcs returns the default ViewFuncs.
func Funcs() ramblings.ViewFuncs {
	return ramblings.ViewFuncs{
		Home:           Home,
		Post:           Post,
		Tag:            Tag,
		AdminLogin:     AdminLogin,
		AdminDashboard: AdminDashboard,
		AdminForm:      AdminForm,
		AdminImages:    AdminImages,
		NotFound:       NotFound,
		ServerError:    ServerError,
	}
}

// Home lists every post after the author bio.
func Home(site ramblings.Site, posts []ramblings.BlogPost, tags []string) templ.Component {
	meta := ramblings.PageMeta{
		Title:  "All posts",
		URL:    ramblings.BuildURL(site.URL()),
		JSONLD: ramblings.WebsiteJsonLD(site),
	}
	return layout(site, meta, true, component(func(h *html) {
		h.component(bio(site))
		h.component(postList(posts))
		if len(tags) > 0 {
			h.component(tagList(tags, ""))
		}
	}))
}

// Post renders one post with its neighbors and related posts.
func Post(site ramblings.Site, post ramblings.BlogPost, related []ramblings.BlogPost, prev, next *ramblings.BlogPost) templ.Component {
	meta := ramblings.PageMeta{
		Title:       post.Title,
		Description: post.Summary,
		URL:         ramblings.BuildURL(site.URL(), "blog", post.Slug),
		OGType:      "article",
		JSONLD:      ramblings.BlogPostingJsonLD(post, site),
	}
	return layout(site, meta, false, component(func(h *html) {
		h.raw(`<article class="post"><header><h1>`)
		h.text(post.Title)
		h.raw(`</h1><p class="meta">`)
		h.text(FormatDate(post.Date))
		h.raw(`</p></header><section class="post-body">`)
		h.component(markdown.HTML(post.HTML))
		h.raw(`</section>`)
		if len(post.Tags) > 0 {
			h.component(tagList(post.Tags, ""))
		}
		h.raw(`<hr/>`)
		h.component(bio(site))
		h.raw(`</article>`)

		if prev != nil || next != nil {
			h.raw(`<nav class="post-nav"><ul>`)
			if prev != nil {
				h.raw(`<li><a rel="prev"`)
				h.attr("href", prev.Link)
				h.raw(`>← `)
				h.text(prev.Title)
				h.raw(`</a></li>`)
			}
			if next != nil {
				h.raw(`<li><a rel="next"`)
				h.attr("href", next.Link)
				h.raw(`>`)
				h.text(next.Title)
				h.raw(` →</a></li>`)
			}
			h.raw(`</ul></nav>`)
		}
		if len(related) > 0 {
			h.raw(`<aside class="related"><h4>Related</h4><ul>`)
			for _, p := range related {
				h.raw(`<li><a`)
				h.attr("href", p.Link)
				h.raw(`>`)
				h.text(p.Title)
				h.raw(`</a></li>`)
			}
			h.raw(`</ul></aside>`)
		}
	}))
}

// Tag lists the posts carrying tag.
func Tag(site ramblings.Site, tag string, posts []ramblings.BlogPost, tags []string) templ.Component {
	meta := ramblings.PageMeta{
		Title: "#" + tag,
		URL:   ramblings.BuildURL(site.URL(), "tags", tag),
	}
	return layout(site, meta, false, component(func(h *html) {
		h.raw(`<h2>`)
		h.text(pluralPosts(len(posts)) + ` tagged "` + tag + `"`)
		h.raw(`</h2>`)
		h.component(postList(posts))
		h.component(tagList(tags, tag))
	}))
}

// NotFound is the 404 page.
func NotFound(site ramblings.Site) templ.Component {
	return layout(site, ramblings.PageMeta{Title: "404: Not Found"}, false, component(func(h *html) {
		h.raw(`<h1>Not Found</h1><p>You just hit a route that doesn't exist... the sadness.</p><p><a href="/">Back home</a></p>`)
	}))
}

// ServerError is the 500 page.
func ServerError(site ramblings.Site) templ.Component {
	return layout(site, ramblings.PageMeta{Title: "Something went wrong"}, false, component(func(h *html) {
		h.raw(`<h1>Something went wrong</h1><p>Please try again in a moment.</p><p><a href="/">Back home</a></p>`)
	}))
}

func bio(site ramblings.Site) templ.Component {
	return component(func(h *html) {
		author := site.Metadata.Author
		if author.Name == "" {
			return
		}
		h.raw(`<div class="bio"><p>Written by <strong>`)
		h.text(author.Name)
		h.raw(`</strong> `)
		h.text(author.Summary)
		if gh := site.Metadata.Social.GitHub; gh != "" {
			h.raw(` <a href="https://github.com/`)
			h.text(gh)
			h.raw(`">You should follow them on GitHub</a>`)
		}
		h.raw(`</p></div>`)
	})
}

func postList(posts []ramblings.BlogPost) templ.Component {
	return component(func(h *html) {
		h.raw(`<div class="post-list">`)
		if len(posts) == 0 {
			h.raw(`<p>No blog posts found.</p>`)
		}
		for _, p := range posts {
			h.raw(`<article><header><h3><a`)
			h.attr("href", p.Link)
			h.raw(`>`)
			h.text(p.Title)
			h.raw(`</a></h3><small>`)
			h.text(FormatDate(p.Date))
			h.raw(`</small></header><section><p>`)
			h.text(p.Summary)
			h.raw(`</p></section></article>`)
		}
		h.raw(`</div>`)
	})
}

func tagList(tags []string, active string) templ.Component {
	return component(func(h *html) {
		h.raw(`<p class="tags">`)
		for _, t := range tags {
			h.raw(`<a`)
			h.attr("href", TagURL(t))
			if t == active {
				h.raw(` aria-current="page"`)
			}
			h.raw(`>#`)
			h.text(t)
			h.raw(`</a>`)
		}
		h.raw(`</p>`)
	})
}

func pluralPosts(n int) string {
	if n == 1 {
		return "1 post"
	}
	return strconv.Itoa(n) + " posts"
}
