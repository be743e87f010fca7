package theme

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Store owns the theme value for a visitor.
type Store interface {
	// Current returns the raw stored value; it may be empty or unrecognized.
	Current(c echo.Context) string
	Set(c echo.Context, t Theme) error
}

// CookieName is the cookie (and localStorage key) holding the theme.
const CookieName = "theme"

// CookieStore keeps the theme in a cookie. It is not HttpOnly so the
// pre-paint script can read it and avoid a flash of the wrong theme.
type CookieStore struct {
	Path   string
	Secure bool
}

// Current returns the raw cookie value, or "" when unset.
func (s CookieStore) Current(c echo.Context) string {
	cookie, err := c.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Set writes t for one year.
func (s CookieStore) Set(c echo.Context, t Theme) error {
	path := s.Path
	if path == "" {
		path = "/"
	}
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    t.String(),
		Path:     path,
		MaxAge:   365 * 24 * 60 * 60,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
