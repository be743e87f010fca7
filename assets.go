package ramblings

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/narsaynorath/ramblings/imaging"
	"github.com/narsaynorath/ramblings/manifest"
	"github.com/narsaynorath/ramblings/markdown"
)

// Generated file names under /public.
const (
	HighlightCSS = "highlight.css"
	ThemeScript  = "theme.js"
	Stylesheet   = "style.css"
)

// writeAssets materializes files referenced from posts under outDir. Images
// are resized when transformer-sharp is active.
func (a *App) writeAssets(assets []markdown.Asset, outDir string) error {
	for _, as := range assets {
		dst := filepath.Join(outDir, filepath.FromSlash(strings.TrimPrefix(as.Target, "/")))
		if _, err := os.Stat(dst); err == nil {
			// targets are content addressed
			continue
		}
		if as.Kind == markdown.AssetImage && a.Pipeline.ProcessImages {
			res, err := imaging.ProcessFile(as.Source, dst, as.MaxWidth)
			if err == nil {
				a.Log.Debug().Str("src", as.Source).Int("width", res.Width).Msg("image processed")
				continue
			}
			// formats the decoder does not know are copied below
			a.Log.Warn().Err(err).Str("src", as.Source).Msg("image not processed")
		}
		if err := copyFile(as.Source, dst); err != nil {
			return fmt.Errorf("asset %s: %w", as.Source, err)
		}
	}
	return nil
}

// writeSiteAssets writes the files every page links to: stylesheets, the
// theme script, the favicon and the web app manifest with its icons. It
// returns the manifest when the plugin is active.
func (a *App) writeSiteAssets(outDir string) (*manifest.Manifest, error) {
	public := filepath.Join(outDir, "public")
	if err := os.MkdirAll(public, 0o755); err != nil {
		return nil, err
	}

	var css bytes.Buffer
	if err := markdown.HighlightCSS(&css); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(public, HighlightCSS), css.Bytes(), 0o644); err != nil {
		return nil, err
	}
	for _, name := range []string{ThemeScript, Stylesheet} {
		data, err := fs.ReadFile(EmbeddedAssets, path.Join("embedded", name))
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(filepath.Join(public, name), data, 0o644); err != nil {
			return nil, err
		}
	}

	if err := a.writeFavicon(outDir); err != nil {
		return nil, err
	}

	if a.Pipeline.Manifest == nil {
		return nil, nil
	}
	m, err := manifest.Generate(*a.Pipeline.Manifest, a.root, outDir)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// writeFavicon publishes the plugin-sharp icon as /favicon.ico. Icons in a
// format the decoder knows are scaled to 32px PNG first.
func (a *App) writeFavicon(outDir string) error {
	if a.Pipeline.Sharp == nil || a.Pipeline.Sharp.Icon == "" {
		return nil
	}
	icon := a.Pipeline.Sharp.Icon
	dst := filepath.Join(outDir, a.faviconName())
	if !imaging.IsImage(filepath.Ext(icon)) {
		return copyFile(icon, dst)
	}
	img, err := imaging.DecodeFile(icon)
	if err != nil {
		return fmt.Errorf("favicon: %w", err)
	}
	return imaging.WritePNG(imaging.Square(img, 32), dst)
}

// faviconName is the favicon path relative to the site root, or "".
func (a *App) faviconName() string {
	if a.Pipeline.Sharp == nil || a.Pipeline.Sharp.Icon == "" {
		return ""
	}
	if imaging.IsImage(filepath.Ext(a.Pipeline.Sharp.Icon)) {
		return "favicon.png"
	}
	return "favicon" + strings.ToLower(filepath.Ext(a.Pipeline.Sharp.Icon))
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
