package ramblings

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/narsaynorath/ramblings/imaging"
)

const (
	uploadWidth   = 800
	uploadsSubdir = "uploads"
)

// mediaDir is where uploads are stored: the assets source when there is
// one, else the blog source.
func (a *App) mediaDir() (string, error) {
	if src, ok := a.Pipeline.Source(AssetsSource); ok {
		return filepath.Join(src.Path, uploadsSubdir), nil
	}
	dir, err := a.blogDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, uploadsSubdir), nil
}

// slugifyFilename converts a filename (without extension) to a URL-safe slug.
func slugifyFilename(name string) string {
	ext := filepath.Ext(name)
	base := Slugify(strings.TrimSuffix(name, ext))
	if base == "" {
		base = "image"
	}
	return base
}

// uniqueFilename appends a counter until the name is free on disk and in the
// store.
func (a *App) uniqueFilename(dir, filename string) (string, error) {
	base := strings.TrimSuffix(filename, ".jpg")
	candidate := filename
	for counter := 2; ; counter++ {
		_, statErr := os.Stat(filepath.Join(dir, candidate))
		taken, err := a.Store.HasImage(candidate)
		if err != nil {
			return "", err
		}
		if errors.Is(statErr, fs.ErrNotExist) && !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d.jpg", base, counter)
	}
}

func (a *App) handleImageUpload(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.String(http.StatusBadRequest, "No image file provided")
	}
	if file.Size > imaging.MaxUploadSize {
		return c.String(http.StatusBadRequest, "File too large (max 10MB)")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	res, data, err := imaging.Process(src, uploadWidth)
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid image: "+err.Error())
	}

	dir, err := a.mediaDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	name, err := a.uniqueFilename(dir, slugifyFilename(file.Filename)+".jpg")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}

	if err := a.Store.SaveImage(Image{
		Filename:     name,
		OriginalName: file.Filename,
		Width:        res.Width,
		Height:       res.Height,
		Size:         res.Size,
		UploadedAt:   time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		return err
	}
	a.Log.Info().Str("file", name).Int("width", res.Width).Msg("image uploaded")

	return a.renderImageList(c)
}

func (a *App) handleImageDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}

	filename := filepath.Base(c.Param("filename"))
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		return c.String(http.StatusBadRequest, "Filename required")
	}

	dir, err := a.mediaDir()
	if err != nil {
		return err
	}
	// ignore error if file already gone
	_ = os.Remove(filepath.Join(dir, filename))

	if err := a.Store.DeleteImage(filename); err != nil {
		return err
	}
	return a.renderImageList(c)
}

func (a *App) handleImageList(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return a.renderImageList(c)
}

// handleMedia serves uploads so the CMS can preview them.
func (a *App) handleMedia(c echo.Context) error {
	dir, err := a.mediaDir()
	if err != nil {
		return err
	}
	return c.File(filepath.Join(dir, filepath.Base(c.Param("filename"))))
}

func (a *App) renderImageList(c echo.Context) error {
	images, err := a.Store.ListImages()
	if err != nil {
		return err
	}
	for i := range images {
		images[i].Path = a.mediaPath(images[i].Filename)
	}
	return Render(c, a.Views.AdminImages(a.site(c), images, CsrfToken(c)))
}

// mediaPath returns the path of an upload relative to a post directory, for
// use in markdown image references.
func (a *App) mediaPath(filename string) string {
	media, err := a.mediaDir()
	if err != nil {
		return filename
	}
	blog, err := a.blogDir()
	if err != nil {
		return filename
	}
	// posts live one level below the blog source
	rel, err := filepath.Rel(filepath.Join(blog, "post"), filepath.Join(media, filename))
	if err != nil {
		return filename
	}
	return filepath.ToSlash(rel)
}
