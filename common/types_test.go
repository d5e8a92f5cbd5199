package common

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImportedTextureDecode(t *testing.T) {
	tex := &ImportedTexture{Name: "grass", Data: encodePNG(t, 3, 2, color.RGBA{R: 10, G: 20, B: 30, A: 255})}

	pixels, w, h, err := tex.Decode()
	require.NoError(t, err)
	assert.Equal(t, uint32(3), w)
	assert.Equal(t, uint32(2), h)
	assert.Len(t, pixels, 3*2*4)
	assert.Equal(t, []byte{10, 20, 30, 255}, pixels[:4])
	assert.Equal(t, "image/png", tex.MimeType)
	assert.Equal(t, 3, tex.Width)
}

func TestImportedTextureRejectsNonImage(t *testing.T) {
	tex := &ImportedTexture{Name: "notes", Data: []byte("just some text, not pixels")}
	_, _, _, err := tex.Decode()
	assert.Error(t, err)

	var nilTex *ImportedTexture
	_, _, _, err = nilTex.Decode()
	assert.Error(t, err)

	_, _, _, err = (&ImportedTexture{Name: "empty"}).Decode()
	assert.Error(t, err)
}

func TestToRGBASubImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.SetRGBA(2, 2, color.RGBA{R: 255, A: 255})
	sub := img.SubImage(image.Rect(2, 2, 4, 4))

	staging := ToRGBA(sub)
	assert.Equal(t, uint32(2), staging.Width)
	assert.Len(t, staging.Pixels, 16)
	assert.Equal(t, []byte{255, 0, 0, 255}, staging.Pixels[:4])
}
