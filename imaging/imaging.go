// Package imaging resizes and re-encodes images for posts, uploads, favicons
// and manifest icons.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

const (
	// JPEGQuality is used for every JPEG this package writes.
	JPEGQuality = 80
	// MaxUploadSize caps uploaded image files.
	MaxUploadSize = 10 << 20
)

// Result describes an encoded image.
type Result struct {
	Width  int
	Height int
	Format string // "jpeg" or "png"
	Size   int
}

// Resize scales img down to maxWidth, preserving the aspect ratio. Images that
// already fit, and a maxWidth <= 0, return img unchanged.
func Resize(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if maxWidth <= 0 || w <= maxWidth {
		return img
	}
	newH := h * maxWidth / w
	if newH < 1 {
		newH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// Square scales img to a size x size square, centered and letterboxed on a
// transparent background.
func Square(img image.Image, size int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	tw, th := size, size
	if w > h {
		th = h * size / w
	} else if h > w {
		tw = w * size / h
	}
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}
	x := (size - tw) / 2
	y := (size - th) / 2
	draw.CatmullRom.Scale(dst, image.Rect(x, y, x+tw, y+th), img, bounds, draw.Over, nil)
	return dst
}

// Process decodes an image from src, resizes it to maxWidth and encodes it as JPEG.
func Process(src io.Reader, maxWidth int) (Result, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return Result{}, nil, fmt.Errorf("decode image: %w", err)
	}
	img = Resize(img, maxWidth)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return Result{}, nil, fmt.Errorf("encode jpeg: %w", err)
	}
	b := img.Bounds()
	return Result{Width: b.Dx(), Height: b.Dy(), Format: "jpeg", Size: buf.Len()}, buf.Bytes(), nil
}

// ProcessFile resizes the image at src to maxWidth and writes it to dst. JPEG
// sources stay JPEG; everything else is written as PNG to keep transparency.
func ProcessFile(src, dst string, maxWidth int) (Result, error) {
	f, err := os.Open(src)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return Result{}, fmt.Errorf("decode %s: %w", src, err)
	}
	img = Resize(img, maxWidth)

	var buf bytes.Buffer
	if format == "jpeg" {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality})
	} else {
		format = "png"
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return Result{}, fmt.Errorf("encode %s: %w", dst, err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Result{}, err
	}
	if err := os.WriteFile(dst, buf.Bytes(), 0o644); err != nil {
		return Result{}, err
	}
	b := img.Bounds()
	return Result{Width: b.Dx(), Height: b.Dy(), Format: format, Size: buf.Len()}, nil
}

// WritePNG encodes img as PNG at dst, creating parent directories.
func WritePNG(img image.Image, dst string) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode %s: %w", dst, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, buf.Bytes(), 0o644)
}

// DecodeFile decodes the image at path.
func DecodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// IsImage reports whether ext names a raster format this package can decode.
func IsImage(ext string) bool {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".png", ".gif":
		return true
	}
	return false
}
