// Package markdown turns blog posts into HTML with goldmark. Each remark
// sub-plugin of the site configuration maps onto a goldmark extension, AST
// transformer or node renderer.
package markdown

import (
	"bytes"
	"fmt"
	"html"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/narsaynorath/ramblings/plugin"
)

// StaticPrefix is the URL prefix of copied and processed files.
const StaticPrefix = "/static"

// Options selects the transformations applied to every document.
type Options struct {
	Images      *ImagesOptions // remark-images
	Iframes     *IframeOptions // remark-responsive-iframe
	Highlight   bool           // remark-prismjs
	CopyLinked  bool           // remark-copy-linked-files
	Smartypants bool           // remark-smartypants
}

// ImagesOptions constrain local images.
type ImagesOptions struct {
	MaxWidth int
}

// IframeOptions style the wrapper around embedded iframes.
type IframeOptions struct {
	WrapperStyle string
}

// FromPlugins maps transformer-remark sub-plugins onto Options.
func FromPlugins(list plugin.List) (Options, error) {
	var opts Options
	for _, a := range list {
		switch a.Kind {
		case plugin.RemarkImages:
			var o plugin.RemarkImagesOptions
			if err := a.Decode(&o); err != nil {
				return opts, err
			}
			if o.MaxWidth == 0 {
				o.MaxWidth = plugin.DefaultImageMaxWidth
			}
			opts.Images = &ImagesOptions{MaxWidth: o.MaxWidth}
		case plugin.RemarkResponsiveIframe:
			var o plugin.ResponsiveIframeOptions
			if err := a.Decode(&o); err != nil {
				return opts, err
			}
			opts.Iframes = &IframeOptions{WrapperStyle: o.WrapperStyle}
		case plugin.RemarkPrismJS:
			opts.Highlight = true
		case plugin.RemarkCopyLinkedFiles:
			opts.CopyLinked = true
		case plugin.RemarkSmartypants:
			opts.Smartypants = true
		default:
			return opts, fmt.Errorf("%s: %w", a.Resolve, plugin.ErrUnknownPlugin)
		}
	}
	return opts, nil
}

// AssetKind tells the build how to materialize an asset.
type AssetKind int

const (
	// AssetFile is copied verbatim.
	AssetFile AssetKind = iota
	// AssetImage is resized to MaxWidth.
	AssetImage
)

// Asset is a local file referenced from a document.
type Asset struct {
	Kind     AssetKind
	Source   string // filesystem path
	Target   string // URL path, under StaticPrefix
	MaxWidth int
}

// Result is a rendered document.
type Result struct {
	HTML    string
	Excerpt string
	Assets  []Asset
}

// Renderer converts markdown documents. It is safe for concurrent use.
type Renderer struct {
	md   goldmark.Markdown
	opts Options
}

var stateKey = parser.NewContextKey()

type renderState struct {
	dir    string
	assets []Asset
	seen   map[string]string
}

// New configures a goldmark pipeline for opts.
func New(opts Options) *Renderer {
	exts := []goldmark.Extender{extension.GFM}
	if opts.Smartypants {
		exts = append(exts, extension.Typographer)
	}

	var nodeRenderers []util.PrioritizedValue
	if opts.Highlight {
		nodeRenderers = append(nodeRenderers, util.Prioritized(&codeRenderer{}, 100))
	}
	if opts.Iframes != nil {
		nodeRenderers = append(nodeRenderers, util.Prioritized(&iframeRenderer{style: opts.Iframes.WrapperStyle}, 100))
	}

	md := goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(util.Prioritized(&linkTransformer{opts: opts}, 100)),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(),
			renderer.WithNodeRenderers(nodeRenderers...),
		),
	)
	return &Renderer{md: md, opts: opts}
}

// Options returns the options the renderer was built with.
func (r *Renderer) Options() Options { return r.opts }

// Render converts src. srcPath locates the document on disk so relative
// links can be resolved; it may be empty for documents without a file.
func (r *Renderer) Render(srcPath string, src []byte) (Result, error) {
	st := &renderState{seen: map[string]string{}}
	if srcPath != "" {
		st.dir = filepath.Dir(srcPath)
	}
	pc := parser.NewContext()
	pc.Set(stateKey, st)

	doc := r.md.Parser().Parse(text.NewReader(src), parser.WithContext(pc))

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, src, doc); err != nil {
		return Result{}, fmt.Errorf("render %s: %w", srcPath, err)
	}
	return Result{
		HTML:    buf.String(),
		Excerpt: excerpt(doc, src, 140),
		Assets:  st.assets,
	}, nil
}

// HTML wraps already rendered markup as a templ component.
func HTML(rendered string) templ.Component {
	return templ.Raw(rendered)
}

// excerpt collects paragraph text up to limit runes.
func excerpt(doc ast.Node, src []byte, limit int) string {
	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Kind() == ast.KindParagraph && b.Len() > 0 {
				b.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}
		if n.Type() == ast.TypeBlock {
			switch n.Kind() {
			case ast.KindDocument, ast.KindParagraph, ast.KindTextBlock, ast.KindBlockquote, ast.KindList, ast.KindListItem:
			default:
				return ast.WalkSkipChildren, nil
			}
		}
		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			// typographer output is entity-encoded
			b.WriteString(html.UnescapeString(string(node.Value)))
		}
		return ast.WalkContinue, nil
	})
	out := strings.Join(strings.Fields(b.String()), " ")
	if utf8.RuneCountInString(out) <= limit {
		return out
	}
	runes := []rune(out)
	return strings.TrimSpace(string(runes[:limit])) + "…"
}

func isLocal(dest string) bool {
	if dest == "" || strings.HasPrefix(dest, "/") || strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "?") {
		return false
	}
	u, err := url.Parse(dest)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}

// SafeURL validates and sanitizes a URL for use in HTML attributes.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil {
		return ""
	}
	if parsed.Scheme == "" {
		// relative paths like "salty_egg.jpg" or "../other/"
		if strings.Contains(val, ":") {
			return ""
		}
		return html.EscapeString(val)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}

func targetName(name string) string {
	return path.Base(filepath.ToSlash(name))
}
