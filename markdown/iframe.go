package markdown

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

var (
	iframeRe   = regexp.MustCompile(`(?is)<iframe\b([^>]*)>(.*?)</iframe>`)
	dimRe      = regexp.MustCompile(`(?i)\b(width|height)\s*=\s*["']?(\d+(?:\.\d+)?)`)
	styleRe    = regexp.MustCompile(`(?i)\bstyle\s*=\s*("[^"]*"|'[^']*')`)
	iframeFill = "position: absolute; top: 0; left: 0; width: 100%; height: 100%"
)

// iframeRenderer wraps embedded iframes with fixed dimensions in a container
// that keeps their aspect ratio at any width.
type iframeRenderer struct {
	style string
}

func (r *iframeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindHTMLBlock, r.render)
}

func (r *iframeRenderer) render(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.HTMLBlock)

	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(source))
	}
	if n.HasClosure() {
		buf.Write(n.ClosureLine.Value(source))
	}
	_, _ = w.WriteString(wrapIframes(buf.String(), r.style))
	return ast.WalkSkipChildren, nil
}

// wrapIframes rewrites every iframe in markup that declares both width and
// height. Others are left untouched.
func wrapIframes(markup, wrapperStyle string) string {
	return iframeRe.ReplaceAllStringFunc(markup, func(frame string) string {
		m := iframeRe.FindStringSubmatch(frame)
		attrs, inner := m[1], m[2]

		var width, height float64
		for _, d := range dimRe.FindAllStringSubmatch(attrs, -1) {
			v, err := strconv.ParseFloat(d[2], 64)
			if err != nil {
				continue
			}
			if strings.EqualFold(d[1], "width") {
				width = v
			} else {
				height = v
			}
		}
		if width <= 0 || height <= 0 {
			return frame
		}

		attrs = styleRe.ReplaceAllString(attrs, "")
		ratio := strconv.FormatFloat(height/width*100, 'f', 4, 64)
		ratio = strings.TrimRight(strings.TrimRight(ratio, "0"), ".")

		style := "padding-bottom: " + ratio + "%; position: relative; height: 0; overflow: hidden;"
		if wrapperStyle != "" {
			style += " " + strings.TrimSpace(wrapperStyle)
		}
		return `<div class="responsive-iframe" style="` + style + `">` +
			`<iframe` + strings.TrimRight(attrs, " ") + ` style="` + iframeFill + `">` + inner + `</iframe>` +
			`</div>`
	})
}
