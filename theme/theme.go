// Package theme implements the light/dark theme toggle.
//
// The current theme is owned by a Store (a cookie in server mode, localStorage
// in the static build). The toggle only reads it and requests the opposite.
package theme

import "github.com/narsaynorath/ramblings/icons"

// Theme is the active visual mode.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// IconSize is the fixed height and width of the toggle icon.
const IconSize = "25px"

// Parse maps a raw theme value onto a Theme. Only "dark" is dark; unset and
// unrecognized values are treated as light.
func Parse(s string) Theme {
	if s == string(Dark) {
		return Dark
	}
	return Light
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

func (t Theme) String() string { return string(t) }

// State is what the toggle shows for a given current theme.
type State struct {
	IsDark bool
	Next   Theme
	Icon   icons.Kind
}

// Derive computes the toggle state for the raw current theme value. The icon
// is the theme a click switches to: dark shows icons.LightMode and anything
// else shows icons.DarkMode.
func Derive(current string) State {
	isDark := current == string(Dark)
	if isDark {
		return State{IsDark: true, Next: Light, Icon: icons.LightMode}
	}
	return State{IsDark: false, Next: Dark, Icon: icons.DarkMode}
}

// Request asks set to switch to the next theme.
func (s State) Request(set func(Theme)) {
	if set == nil {
		return
	}
	set(s.Next)
}
