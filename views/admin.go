package views

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/narsaynorath/ramblings"
)

func adminPage(site ramblings.Site, title string, body templ.Component) templ.Component {
	return layout(site, ramblings.PageMeta{Title: title}, false, component(func(h *html) {
		h.raw(`<div class="admin">`)
		h.component(body)
		h.raw(`</div>`)
	}))
}

func csrfField(h *html, token string) {
	h.raw(`<input type="hidden" name="_csrf"`)
	h.attr("value", token)
	h.raw(`/>`)
}

// AdminLogin is the CMS login form.
func AdminLogin(site ramblings.Site, showError bool, csrfToken string) templ.Component {
	return adminPage(site, "Content Manager", component(func(h *html) {
		h.raw(`<h2>Content Manager</h2>`)
		if showError {
			h.raw(`<p role="alert">Wrong password.</p>`)
		}
		h.raw(`<form method="post" action="/admin/login/">`)
		csrfField(h, csrfToken)
		h.raw(`<label>Password <input type="password" name="password" autocomplete="current-password" required/></label>`)
		h.raw(`<button type="submit">Log in</button></form>`)
	}))
}

// AdminDashboard lists every post, drafts included.
func AdminDashboard(site ramblings.Site, posts []ramblings.BlogPost, message string, csrfToken string) templ.Component {
	return adminPage(site, "Content Manager", component(func(h *html) {
		h.raw(`<h2>Posts</h2>`)
		if message != "" {
			h.raw(`<p role="status">`)
			h.text(message)
			h.raw(`</p>`)
		}
		h.raw(`<p><a href="/admin/new/">New post</a> · <a href="/admin/images/">Images</a></p>`)
		h.raw(`<table><thead><tr><th>Title</th><th>Date</th><th>Status</th><th></th></tr></thead><tbody>`)
		for _, p := range posts {
			h.raw(`<tr><td><a`)
			h.attr("href", "/admin/post/"+ramblings.PathEscape(p.Slug)+"/")
			h.raw(`>`)
			h.text(p.Title)
			h.raw(`</a></td><td>`)
			h.text(p.Date)
			h.raw(`</td><td>`)
			if p.Published {
				h.raw(`published`)
			} else {
				h.raw(`draft`)
			}
			h.raw(`</td><td><form method="post"`)
			h.attr("action", "/admin/post/"+ramblings.PathEscape(p.Slug)+"/delete/")
			h.raw(`>`)
			csrfField(h, csrfToken)
			h.raw(`<button type="submit">Delete</button></form></td></tr>`)
		}
		h.raw(`</tbody></table>`)
		h.raw(`<form method="post" action="/admin/logout/">`)
		csrfField(h, csrfToken)
		h.raw(`<button type="submit">Log out</button></form>`)
	}))
}

// AdminForm edits a post. An empty slug means a new post.
func AdminForm(site ramblings.Site, post ramblings.BlogPost, csrfToken string) templ.Component {
	return adminPage(site, "Edit post", component(func(h *html) {
		h.raw(`<h2>`)
		if post.Slug == "" {
			h.raw(`New post`)
		} else {
			h.text(post.Title)
		}
		h.raw(`</h2><form method="post" action="/admin/save/">`)
		csrfField(h, csrfToken)
		h.raw(`<input type="hidden" name="original_slug"`)
		h.attr("value", post.Slug)
		h.raw(`/>`)

		field := func(label, name, value string) {
			h.raw(`<label>` + label + ` <input type="text"`)
			h.attr("name", name)
			h.attr("value", value)
			h.raw(`/></label>`)
		}
		field("Title", "title", post.Title)
		field("Slug", "slug", post.Slug)
		field("Date", "date", post.Date)
		field("Tags", "tags", ramblings.JoinTags(post.Tags))
		field("Description", "summary", post.Summary)

		h.raw(`<label>Body <textarea name="content" rows="24">`)
		h.text(post.Content)
		h.raw(`</textarea></label><label><input type="checkbox" name="published" value="1"`)
		if post.Published || post.Slug == "" {
			h.raw(` checked`)
		}
		h.raw(`/> Published</label><button type="submit">Save</button></form>`)
		h.raw(`<p><a href="/admin/">Back</a></p>`)
	}))
}

// AdminImages lists uploads with the reference to paste into a post.
func AdminImages(site ramblings.Site, images []ramblings.Image, csrfToken string) templ.Component {
	return adminPage(site, "Images", component(func(h *html) {
		h.raw(`<h2>Images</h2><form method="post" action="/admin/images/upload/" enctype="multipart/form-data">`)
		csrfField(h, csrfToken)
		h.raw(`<input type="file" name="image" accept="image/*" required/><button type="submit">Upload</button></form>`)
		h.raw(`<ul class="images">`)
		for _, img := range images {
			h.raw(`<li><img loading="lazy" width="160"`)
			h.attr("src", "/media/"+ramblings.PathEscape(img.Filename))
			h.attr("alt", img.OriginalName)
			h.raw(`/><code>`)
			h.text("![" + img.OriginalName + "](" + img.Path + ")")
			h.raw(`</code> <small>`)
			h.text(strconv.Itoa(img.Width) + "×" + strconv.Itoa(img.Height))
			h.raw(`</small><form method="post"`)
			h.attr("action", "/admin/images/"+ramblings.PathEscape(img.Filename)+"/delete/")
			h.raw(`>`)
			csrfField(h, csrfToken)
			h.raw(`<button type="submit">Delete</button></form></li>`)
		}
		h.raw(`</ul><p><a href="/admin/">Back</a></p>`)
	}))
}
