// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// TextureStagingData holds RGBA pixel data for a texture pending GPU upload.
type TextureStagingData struct {
	// Pixels is the pixel data in RGBA format, 4 bytes per pixel, row-major.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// ImportedTexture represents a texture source: either encoded image bytes held in memory or a file on disk.
type ImportedTexture struct {
	// Name is the identifier this texture is registered under.
	Name string

	// Path is the file path for textures loaded from disk (empty for in-memory data).
	Path string

	// Data contains encoded image bytes (PNG, JPEG, BMP, GIF, WebP, TIFF).
	Data []byte

	// MimeType is the sniffed image format, populated after Decode.
	MimeType string

	// Width is the texture width in pixels (populated after Decode).
	Width int

	// Height is the texture height in pixels (populated after Decode).
	Height int
}

// Decode decodes the texture to raw RGBA pixel data.
// The source bytes are sniffed before decoding so that non-image files are rejected early.
//
// Returns:
//   - []byte: raw RGBA pixel data (4 bytes per pixel, row-major order)
//   - uint32: texture width in pixels
//   - uint32: texture height in pixels
//   - error: error if reading, sniffing or decoding fails
func (t *ImportedTexture) Decode() ([]byte, uint32, uint32, error) {
	img, err := t.Image()
	if err != nil {
		return nil, 0, 0, err
	}
	staging := ToRGBA(img)
	return staging.Pixels, staging.Width, staging.Height, nil
}

// Image decodes the texture into an image.Image without converting its pixel format.
//
// Returns:
//   - image.Image: the decoded image
//   - error: error if reading, sniffing or decoding fails
func (t *ImportedTexture) Image() (image.Image, error) {
	if t == nil {
		return nil, fmt.Errorf("texture is nil")
	}

	data := t.Data
	if len(data) == 0 {
		if t.Path == "" {
			return nil, fmt.Errorf("texture %q has neither data nor path", t.Name)
		}
		b, err := os.ReadFile(t.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read texture file %s: %w", t.Path, err)
		}
		data = b
	}

	kind, err := filetype.Match(data)
	if err != nil || !filetype.IsImage(data) {
		return nil, fmt.Errorf("texture %q is not an image (detected %q)", t.Name, kind.MIME.Value)
	}
	t.MimeType = kind.MIME.Value

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture %q (%s): %w", t.Name, t.MimeType, err)
	}
	b := img.Bounds()
	t.Width, t.Height = b.Dx(), b.Dy()
	return img, nil
}

// ToRGBA converts any image into tightly packed RGBA staging data.
func ToRGBA(img image.Image) TextureStagingData {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*b.Dx() || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	return TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(b.Dx()),
		Height: uint32(b.Dy()),
	}
}
