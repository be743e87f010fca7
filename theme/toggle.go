package theme

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/narsaynorath/ramblings/icons"
)

// Toggle renders the theme control for the current theme value.
//
// With a non-empty action the control is a form that POSTs theme=<next> to
// action. Without one it is a button carrying data-theme-next, which the
// embedded theme script applies client side.
func Toggle(current string, action string) templ.Component {
	s := Derive(current)
	icon := icons.ForKind(s.Icon, icons.Props{Height: IconSize, Width: IconSize})
	label := "Switch to " + s.Next.String() + " theme"

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if action != "" {
			if _, err := io.WriteString(w, `<form class="theme-toggle" method="post" action="`+templ.EscapeString(action)+`">`+
				`<input type="hidden" name="theme" value="`+s.Next.String()+`"/>`+
				`<button type="submit" aria-label="`+label+`" title="`+label+`">`); err != nil {
				return err
			}
			if err := icon.Render(ctx, w); err != nil {
				return err
			}
			_, err := io.WriteString(w, `</button></form>`)
			return err
		}

		if _, err := io.WriteString(w, `<button type="button" class="theme-toggle" data-theme-toggle data-theme-next="`+
			s.Next.String()+`" aria-label="`+label+`" title="`+label+`">`); err != nil {
			return err
		}
		if err := icon.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</button>`)
		return err
	})
}
