package views

import (
	"github.com/a-h/templ"

	"github.com/narsaynorath/ramblings"
	"github.com/narsaynorath/ramblings/manifest"
	"github.com/narsaynorath/ramblings/theme"
)

// layout wraps body in the document shell: head tags, the site header with
// the theme toggle, and the footer.
func layout(site ramblings.Site, meta ramblings.PageMeta, home bool, body templ.Component) templ.Component {
	return component(func(h *html) {
		h.raw(`<!DOCTYPE html><html lang="en"`)
		if site.DarkMode && theme.Parse(site.Theme) == theme.Dark {
			h.raw(` class="dark"`)
		}
		h.raw(`><head>`)
		h.component(head(site, meta))
		h.raw(`</head><body><header class="site-header">`)
		if home {
			h.raw(`<h1><a href="/">`)
			h.text(site.Metadata.Title)
			h.raw(`</a></h1>`)
		} else {
			h.raw(`<h3><a href="/">`)
			h.text(site.Metadata.Title)
			h.raw(`</a></h3>`)
		}
		if site.DarkMode {
			h.component(ThemeToggle(site))
		}
		h.raw(`</header><main>`)
		h.component(body)
		h.raw(`</main><footer><small>© `)
		h.text(site.Metadata.Author.Name)
		h.raw(` · <a href="/feed.xml">rss</a>`)
		if gh := site.Metadata.Social.GitHub; gh != "" {
			h.raw(` · <a href="https://github.com/`)
			h.text(gh)
			h.raw(`">github</a>`)
		}
		h.raw(`</small></footer></body></html>`)
	})
}

// ThemeToggle renders the toggle for the visitor's theme. In the static
// build there is no visitor, so both states are rendered and the stylesheet
// shows the one matching the class set by the theme script.
func ThemeToggle(site ramblings.Site) templ.Component {
	if site.ThemeAction != "" {
		return theme.Toggle(site.Theme, site.ThemeAction)
	}
	return component(func(h *html) {
		for _, t := range []theme.Theme{theme.Light, theme.Dark} {
			h.raw(`<span data-theme-when="` + t.String() + `">`)
			h.component(theme.Toggle(t.String(), ""))
			h.raw(`</span>`)
		}
	})
}

func head(site ramblings.Site, meta ramblings.PageMeta) templ.Component {
	return component(func(h *html) {
		h.raw(`<meta charset="utf-8"/><meta name="viewport" content="width=device-width, initial-scale=1"/>`)

		title := site.Metadata.Title
		if meta.Title != "" && meta.Title != title {
			title = meta.Title + " | " + title
		}
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title>`)

		if site.Helmet {
			description := meta.Description
			if description == "" {
				description = site.Metadata.Description
			}
			ogType := meta.OGType
			if ogType == "" {
				ogType = "website"
			}
			h.raw(`<meta name="description"`)
			h.attr("content", description)
			h.raw(`/>`)
			if meta.URL != "" {
				h.raw(`<link rel="canonical"`)
				h.attr("href", meta.URL)
				h.raw(`/><meta property="og:url"`)
				h.attr("content", meta.URL)
				h.raw(`/>`)
			}
			h.raw(`<meta property="og:title"`)
			h.attr("content", title)
			h.raw(`/><meta property="og:description"`)
			h.attr("content", description)
			h.raw(`/><meta property="og:type"`)
			h.attr("content", ogType)
			h.raw(`/><meta name="twitter:card" content="summary"/><meta name="twitter:creator"`)
			h.attr("content", site.Metadata.Author.Name)
			h.raw(`/>`)
			if meta.JSONLD != "" {
				// json.Marshal escapes <, so the payload cannot close the element
				h.raw(`<script type="application/ld+json">`)
				h.raw(meta.JSONLD)
				h.raw(`</script>`)
			}
		}

		if site.Favicon != "" {
			h.raw(`<link rel="icon"`)
			h.attr("href", site.Favicon)
			h.raw(`/>`)
		}
		if site.Manifest != nil {
			h.component(manifest.HeadTags(*site.Manifest))
		}
		h.raw(`<link rel="alternate" type="application/rss+xml" href="/feed.xml"`)
		h.attr("title", site.Metadata.Title)
		h.raw(`/>`)
		h.raw(`<link rel="stylesheet" href="/public/` + ramblings.Stylesheet + `"/>`)
		h.raw(`<link rel="stylesheet" href="/public/` + ramblings.HighlightCSS + `"/>`)
		if site.DarkMode && site.ThemeAction == "" {
			h.raw(`<script src="/public/` + ramblings.ThemeScript + `"></script>`)
		}
	})
}
