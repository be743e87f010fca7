package markdown

import (
	"bytes"
	"html"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// Highlight styles for the light and dark themes.
const (
	LightStyle = "github"
	DarkStyle  = "github-dark"
)

var formatter = chromahtml.New(
	chromahtml.WithClasses(true),
	chromahtml.PreventSurroundingPre(false),
	chromahtml.WithLineNumbers(false),
)

// codeRenderer highlights fenced code blocks with chroma. Blocks without a
// language, or with one chroma does not know, fall back to plain <pre>.
type codeRenderer struct{}

func (r *codeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.render)
}

func (r *codeRenderer) render(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		code.Write(line.Value(source))
	}

	lang := strings.ToLower(string(n.Language(source)))
	_, _ = w.WriteString(Highlight(code.String(), lang))
	_ = w.WriteByte('\n')
	return ast.WalkSkipChildren, nil
}

// Highlight returns code as highlighted HTML, or escaped inside a plain <pre>
// when lang is empty or unknown.
func Highlight(code, lang string) string {
	plain := `<pre class="chroma"><code>` + html.EscapeString(code) + `</code></pre>`
	if lang == "" || lang == "text" {
		return plain
	}
	lexer := lexers.Get(lang)
	if lexer == nil {
		return plain
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return plain
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style(LightStyle), iterator); err != nil {
		return plain
	}
	return buf.String()
}

// HighlightCSS writes the stylesheet for highlighted code. Dark rules are
// scoped under html.dark so they follow the theme toggle.
func HighlightCSS(w io.Writer) error {
	if err := formatter.WriteCSS(w, style(LightStyle)); err != nil {
		return err
	}
	var dark bytes.Buffer
	if err := formatter.WriteCSS(&dark, style(DarkStyle)); err != nil {
		return err
	}
	_, err := io.WriteString(w, strings.ReplaceAll(dark.String(), ".chroma", "html.dark .chroma"))
	return err
}

func style(name string) *chroma.Style {
	if s := styles.Get(name); s != nil {
		return s
	}
	return styles.Fallback
}
