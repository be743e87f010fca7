// Package manifest generates the web app manifest and its icon set.
package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/a-h/templ"

	"github.com/narsaynorath/ramblings/imaging"
	"github.com/narsaynorath/ramblings/plugin"
)

// FileName is the manifest path relative to the site root.
const FileName = "manifest.webmanifest"

// IconSizes are the square icon sizes generated from the source icon.
var IconSizes = []int{48, 72, 96, 144, 192, 256, 384, 512}

// Icon is one entry of the manifest icon list.
type Icon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

// Manifest is the JSON document served at /manifest.webmanifest.
type Manifest struct {
	Name            string `json:"name"`
	ShortName       string `json:"short_name"`
	StartURL        string `json:"start_url"`
	BackgroundColor string `json:"background_color,omitempty"`
	ThemeColor      string `json:"theme_color,omitempty"`
	Display         string `json:"display"`
	Icons           []Icon `json:"icons,omitempty"`
}

// New builds the manifest document from plugin options, filling defaults.
func New(opts plugin.ManifestOptions) Manifest {
	m := Manifest{
		Name:            opts.Name,
		ShortName:       opts.ShortName,
		StartURL:        opts.StartURL,
		BackgroundColor: opts.BackgroundColor,
		ThemeColor:      opts.ThemeColor,
		Display:         opts.Display,
	}
	if m.ShortName == "" {
		m.ShortName = m.Name
	}
	if m.StartURL == "" {
		m.StartURL = "/"
	}
	if m.Display == "" {
		m.Display = "minimal-ui"
	}
	return m
}

// Generate writes the manifest and, when opts.Icon is set, its icons into
// outDir. The icon path is resolved against root.
func Generate(opts plugin.ManifestOptions, root, outDir string) (Manifest, error) {
	m := New(opts)

	if opts.Icon != "" {
		src, err := imaging.DecodeFile(filepath.Join(root, opts.Icon))
		if err != nil {
			return m, fmt.Errorf("manifest icon: %w", err)
		}
		for _, size := range IconSizes {
			name := "icon-" + strconv.Itoa(size) + "x" + strconv.Itoa(size) + ".png"
			if err := imaging.WritePNG(imaging.Square(src, size), filepath.Join(outDir, "icons", name)); err != nil {
				return m, err
			}
			m.Icons = append(m.Icons, Icon{
				Src:   "/icons/" + name,
				Sizes: strconv.Itoa(size) + "x" + strconv.Itoa(size),
				Type:  "image/png",
			})
		}
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return m, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return m, err
	}
	if err := os.WriteFile(filepath.Join(outDir, FileName), data, 0o644); err != nil {
		return m, err
	}
	return m, nil
}

// HeadTags renders the <head> links for the manifest.
func HeadTags(m Manifest) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		out := `<link rel="manifest" href="/` + FileName + `" crossorigin="anonymous"/>`
		if m.ThemeColor != "" {
			out += `<meta name="theme-color" content="` + templ.EscapeString(m.ThemeColor) + `"/>`
		}
		for _, icon := range m.Icons {
			if icon.Sizes == "192x192" {
				out += `<link rel="apple-touch-icon" sizes="` + icon.Sizes + `" href="` + icon.Src + `"/>`
			}
		}
		_, err := io.WriteString(w, out)
		return err
	})
}
