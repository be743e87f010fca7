// Package icons provides the inline SVG symbols used by the theme toggle.
package icons

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Kind selects one of the two theme symbols.
type Kind int

const (
	// DarkMode is the moon. It names the theme a click requests, so the
	// toggle shows it while the light (or an unrecognized) theme is active.
	// A toggle that names the active theme instead would show it while dark.
	DarkMode Kind = iota
	// LightMode is the sun, shown while the dark theme is active and a click
	// requests light.
	LightMode
)

func (k Kind) String() string {
	if k == LightMode {
		return "light-mode"
	}
	return "dark-mode"
}

// Props are passed through to the <svg> element.
type Props struct {
	Height string
	Width  string
	Class  string
}

const (
	moonPath = `<path d="M21 12.79A9 9 0 1 1 11.21 3 7 7 0 0 0 21 12.79z"/>`
	sunPath  = `<circle cx="12" cy="12" r="5"/>` +
		`<line x1="12" y1="1" x2="12" y2="3"/><line x1="12" y1="21" x2="12" y2="23"/>` +
		`<line x1="4.22" y1="4.22" x2="5.64" y2="5.64"/><line x1="18.36" y1="18.36" x2="19.78" y2="19.78"/>` +
		`<line x1="1" y1="12" x2="3" y2="12"/><line x1="21" y1="12" x2="23" y2="12"/>` +
		`<line x1="4.22" y1="19.78" x2="5.64" y2="18.36"/><line x1="18.36" y1="5.64" x2="19.78" y2="4.22"/>`
)

// DarkModeIcon renders the moon symbol.
func DarkModeIcon(p Props) templ.Component {
	return svg(DarkMode, p, moonPath)
}

// LightModeIcon renders the sun symbol.
func LightModeIcon(p Props) templ.Component {
	return svg(LightMode, p, sunPath)
}

// ForKind returns the component for k.
func ForKind(k Kind, p Props) templ.Component {
	if k == LightMode {
		return LightModeIcon(p)
	}
	return DarkModeIcon(p)
}

func svg(k Kind, p Props, body string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round" aria-hidden="true" focusable="false"`)
		b.WriteString(` data-icon="` + k.String() + `"`)
		if p.Height != "" {
			b.WriteString(` height="` + templ.EscapeString(p.Height) + `"`)
		}
		if p.Width != "" {
			b.WriteString(` width="` + templ.EscapeString(p.Width) + `"`)
		}
		if p.Class != "" {
			b.WriteString(` class="` + templ.EscapeString(p.Class) + `"`)
		}
		b.WriteString(">")
		b.WriteString(body)
		b.WriteString("</svg>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}
