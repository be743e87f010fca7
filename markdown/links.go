package markdown

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/narsaynorath/ramblings/imaging"
)

// linkTransformer rewrites local image and file references to their
// published locations and records them as assets. Links with unsafe schemes
// are neutralized.
type linkTransformer struct {
	opts Options
}

func (t *linkTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	st, _ := pc.Get(stateKey).(*renderState)
	if st == nil {
		return
	}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Image:
			t.image(st, node)
		case *ast.Link:
			t.link(st, node)
		}
		return ast.WalkContinue, nil
	})
}

func (t *linkTransformer) image(st *renderState, node *ast.Image) {
	dest := string(node.Destination)
	if !isLocal(dest) {
		if SafeURL(dest) == "" {
			node.Destination = []byte("#")
		}
		return
	}
	src := resolveLocal(st.dir, dest)
	if src == "" {
		return
	}
	if t.opts.Images != nil && imaging.IsImage(filepath.Ext(src)) {
		target := st.add(AssetImage, src, t.opts.Images.MaxWidth)
		if target == "" {
			return
		}
		node.Destination = []byte(target)
		node.SetAttributeString("loading", []byte("lazy"))
		node.SetAttributeString("decoding", []byte("async"))
		node.SetAttributeString("class", []byte("post-image"))
		node.SetAttributeString("style", []byte("max-width: "+strconv.Itoa(t.opts.Images.MaxWidth)+"px; width: 100%; height: auto;"))
		return
	}
	if t.opts.CopyLinked {
		if target := st.add(AssetFile, src, 0); target != "" {
			node.Destination = []byte(target)
		}
	}
}

func (t *linkTransformer) link(st *renderState, node *ast.Link) {
	dest := string(node.Destination)
	if !isLocal(dest) {
		if SafeURL(dest) == "" {
			node.Destination = []byte("#")
		}
		return
	}
	if !t.opts.CopyLinked {
		return
	}
	// links to other posts stay as they are
	ext := strings.ToLower(filepath.Ext(stripQuery(dest)))
	if ext == "" || ext == ".md" || ext == ".markdown" || ext == ".html" {
		return
	}
	src := resolveLocal(st.dir, dest)
	if src == "" {
		return
	}
	if target := st.add(AssetFile, src, 0); target != "" {
		node.Destination = []byte(target)
	}
}

// add records an asset and returns its URL, or "" when src is unreadable.
func (st *renderState) add(kind AssetKind, src string, maxWidth int) string {
	if target, ok := st.seen[src]; ok {
		return target
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	target := StaticPrefix + "/" + hex.EncodeToString(sum[:])[:12] + "/" + targetName(src)
	st.seen[src] = target
	st.assets = append(st.assets, Asset{Kind: kind, Source: src, Target: target, MaxWidth: maxWidth})
	return target
}

func resolveLocal(dir, dest string) string {
	if dir == "" {
		return ""
	}
	dest = stripQuery(dest)
	if unescaped, err := url.PathUnescape(dest); err == nil {
		dest = unescaped
	}
	return filepath.Join(dir, filepath.FromSlash(dest))
}

func stripQuery(dest string) string {
	if i := strings.IndexAny(dest, "?#"); i >= 0 {
		return dest[:i]
	}
	return dest
}
