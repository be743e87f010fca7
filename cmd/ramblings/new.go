package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/spf13/cobra"

	"github.com/narsaynorath/ramblings/imaging"
	"github.com/narsaynorath/ramblings/plugin"
	"github.com/narsaynorath/ramblings/scaffold"
	"github.com/narsaynorath/ramblings/siteconfig"
)

const faviconPath = "static/favicons/favicon-32x32.png"

// scaffoldData holds the template variables passed to every scaffold template.
type scaffoldData struct {
	ProjectName string
	SiteName    string
	Date        string
}

func newNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new <name>",
		Short: "Create a new site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(cmd.OutOrStdout(), args[0])
		},
	}
}

func runNew(out io.Writer, dir string) error {
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("directory %q already exists", dir)
	}

	data := scaffoldData{
		ProjectName: filepath.Base(dir),
		SiteName:    toTitle(filepath.Base(dir)),
		Date:        time.Now().Format("2006-01-02"),
	}

	fmt.Fprintf(out, "Creating new site: %s\n\n", dir)

	root := "templates"
	err := fs.WalkDir(scaffold.Templates, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		outPath := strings.TrimSuffix(filepath.Join(dir, relPath), ".tmpl")
		switch filepath.Base(outPath) {
		case "dotenv":
			outPath = filepath.Join(filepath.Dir(outPath), ".env.example")
		case "gitignore":
			outPath = filepath.Join(filepath.Dir(outPath), ".gitignore")
		}

		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}

		content, err := scaffold.Templates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		tmpl, err := template.New(filepath.Base(path)).Parse(string(content))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return err
		}
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		defer f.Close()
		if err := tmpl.Execute(f, data); err != nil {
			return fmt.Errorf("execute template %s: %w", path, err)
		}

		fmt.Fprintf(out, "  created %s\n", outPath)
		return nil
	})
	if err != nil {
		return err
	}

	if err := writeSiteConfig(filepath.Join(dir, "site.yaml"), data); err != nil {
		return err
	}
	fmt.Fprintf(out, "  created %s\n", filepath.Join(dir, "site.yaml"))

	icon := filepath.Join(dir, faviconPath)
	if err := writePlaceholderIcon(icon); err != nil {
		return err
	}
	fmt.Fprintf(out, "  created %s\n", icon)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Done! Next steps:")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  cd %s\n", dir)
	fmt.Fprintln(out, "  ramblings serve")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Edit site.yaml to describe your site and choose plugins.")
	fmt.Fprintln(out, "Set ADMIN_PASSWORD and ADMIN_SESSION_SECRET to use the content manager.")
	return nil
}

// writeSiteConfig writes the default configuration renamed for the new site.
// Both image plugins point at the generated placeholder icon.
func writeSiteConfig(path string, data scaffoldData) error {
	cfg := siteconfig.Default()
	cfg.Metadata.Title = data.SiteName
	cfg.Metadata.Description = ""
	for i, a := range cfg.Plugins {
		switch a.Kind {
		case plugin.PluginSharp:
			cfg.Plugins[i] = plugin.New(plugin.PluginSharp, map[string]any{"icon": faviconPath})
		case plugin.Manifest:
			opts := make(map[string]any, len(a.Options))
			for k, v := range a.Options {
				opts[k] = v
			}
			opts["name"] = data.SiteName
			opts["short_name"] = data.ProjectName
			cfg.Plugins[i] = plugin.New(plugin.Manifest, opts)
		}
	}
	out, err := siteconfig.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}

// writePlaceholderIcon writes a flat 32x32 icon in the manifest theme color.
func writePlaceholderIcon(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{R: 0x66, G: 0x33, B: 0x99, A: 0xff}}, image.Point{}, draw.Src)
	return imaging.WritePNG(img, path)
}

// toTitle converts a hyphenated or lowercase name to a title-case string.
// e.g. "my-blog" -> "My Blog", "myblog" -> "Myblog"
func toTitle(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
