package texture_registry

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-grid/common"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/device/devicetest"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int, c color.RGBA) []byte {
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

func memTexture(t *testing.T, w, h int, c color.RGBA) *common.ImportedTexture {
	return &common.ImportedTexture{Data: pngBytes(t, w, h, c)}
}

var (
	red   = color.RGBA{R: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
)

func TestRegistryAssignsDenseIndices(t *testing.T) {
	r := NewRegistry()
	for i, name := range []string{"grass", "water", "sand"} {
		idx, err := r.Add(name, memTexture(t, 2, 2, red))
		require.NoError(t, err)
		assert.Equal(t, uint32(i), idx)
	}
	assert.Equal(t, 3, r.Count())

	idx, ok := r.Index("water")
	require.True(t, ok)
	assert.Equal(t, uint32(1), idx)
	name, ok := r.Name(2)
	require.True(t, ok)
	assert.Equal(t, "sand", name)

	_, ok = r.Name(3)
	assert.False(t, ok)
	_, ok = r.Index("lava")
	assert.False(t, ok)

	_, err := r.Add("grass", memTexture(t, 2, 2, red))
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Equal(t, 3, r.Count())
}

func TestDecodeAll(t *testing.T) {
	r := NewRegistry(WithDecodeWorkers(2))
	_, err := r.Add("a", memTexture(t, 2, 2, red))
	require.NoError(t, err)
	_, err = r.Add("b", memTexture(t, 4, 1, green))
	require.NoError(t, err)
	_, err = r.Add("c", &common.ImportedTexture{Data: []byte("definitely not an image")})
	require.NoError(t, err)

	err = r.DecodeAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an image")

	a, ok := r.Staging(0)
	require.True(t, ok)
	assert.Equal(t, uint32(2), a.Width)
	assert.Len(t, a.Pixels, 16)
	assert.Equal(t, []byte{255, 0, 0, 255}, a.Pixels[:4])

	b, ok := r.Staging(1)
	require.True(t, ok)
	assert.Equal(t, uint32(4), b.Width)
	assert.Equal(t, uint32(1), b.Height)

	_, ok = r.Staging(2)
	assert.False(t, ok)
}

func TestDecodeAllResizes(t *testing.T) {
	r := NewRegistry(WithResize(true), WithLayerSize(4, 4))
	_, err := r.Add("small", memTexture(t, 2, 2, red))
	require.NoError(t, err)
	_, err = r.Add("exact", memTexture(t, 4, 4, blue))
	require.NoError(t, err)
	require.NoError(t, r.DecodeAll())

	s, ok := r.Staging(0)
	require.True(t, ok)
	assert.Equal(t, uint32(4), s.Width)
	assert.Equal(t, uint32(4), s.Height)
	assert.Len(t, s.Pixels, 64)
	assert.Equal(t, []byte{255, 0, 0, 255}, s.Pixels[60:])
}

func TestTexturesDescriptorArray(t *testing.T) {
	dev := devicetest.NewDevice()
	r := NewRegistry()
	_, err := r.Add("a", memTexture(t, 2, 2, red))
	require.NoError(t, err)
	_, err = r.Add("b", memTexture(t, 3, 1, green))
	require.NoError(t, err)

	images, err := r.Textures(dev, pipeline.StrategyDescriptorArray)
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, uint32(3), images[1].Descriptor().Width)
	assert.False(t, images[0].Descriptor().Layered)

	img := images[0].(*devicetest.Image)
	assert.Equal(t, []byte{255, 0, 0, 255}, img.Layer(0)[:4])
	assert.Equal(t, []string{"image:a", "image:b"}, dev.Live())
}

func TestTexturesAtlas(t *testing.T) {
	dev := devicetest.NewDevice()
	r := NewRegistry()
	for i, c := range []color.RGBA{red, green, blue} {
		_, err := r.Add(string(rune('a'+i)), memTexture(t, 2, 2, c))
		require.NoError(t, err)
	}

	images, err := r.Textures(dev, pipeline.StrategyLayeredAtlas)
	require.NoError(t, err)
	require.Len(t, images, 1)
	desc := images[0].Descriptor()
	assert.Equal(t, uint32(3), desc.Layers)
	assert.True(t, desc.Layered)

	atlas := images[0].(*devicetest.Image)
	assert.Equal(t, []byte{0, 0, 255, 255}, atlas.Layer(2)[:4])
	assert.Len(t, dev.CallsOf(devicetest.OpWriteImage), 3)
}

func TestTexturesAtlasRejectsMixedSizes(t *testing.T) {
	dev := devicetest.NewDevice()
	r := NewRegistry()
	_, err := r.Add("a", memTexture(t, 2, 2, red))
	require.NoError(t, err)
	_, err = r.Add("b", memTexture(t, 4, 4, green))
	require.NoError(t, err)

	_, err = r.Textures(dev, pipeline.StrategyLayeredAtlas)
	assert.ErrorIs(t, err, ErrLayerSizeMismatch)
	assert.Empty(t, dev.Live())

	_, err = r.Textures(dev, pipeline.StrategyDescriptorArray)
	assert.NoError(t, err)
}

func TestTexturesReleasesOnFailure(t *testing.T) {
	dev := devicetest.NewDevice()
	r := NewRegistry()
	_, err := r.Add("a", memTexture(t, 2, 2, red))
	require.NoError(t, err)
	_, err = r.Add("b", memTexture(t, 2, 2, green))
	require.NoError(t, err)

	dev.FailNext(devicetest.OpWriteImage, assert.AnError)
	_, err = r.Textures(dev, pipeline.StrategyDescriptorArray)
	require.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, dev.Live())
}

func TestTexturesEmpty(t *testing.T) {
	_, err := NewRegistry().Textures(devicetest.NewDevice(), pipeline.StrategyLayeredAtlas)
	assert.ErrorIs(t, err, ErrEmptyRegistry)
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "tiles"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tiles", "grass.png"), pngBytes(t, 2, 2, green), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tiles", "water.png"), pngBytes(t, 4, 4, blue), 0o644))

	tomlManifest := `
layer_width = 2
layer_height = 2
resize = true

[[textures]]
name = "grass"
path = "tiles/grass.png"

[[textures]]
name = "water"
path = "tiles/water.png"
`
	yamlManifest := `
layer_width: 2
layer_height: 2
resize: true
textures:
  - name: grass
    path: tiles/grass.png
  - name: water
    path: tiles/water.png
`
	for file, contents := range map[string]string{"tiles.toml": tomlManifest, "tiles.yaml": yamlManifest} {
		t.Run(file, func(t *testing.T) {
			path := filepath.Join(dir, file)
			require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

			r, err := LoadManifest(path)
			require.NoError(t, err)
			assert.Equal(t, 2, r.Count())
			idx, ok := r.Index("water")
			require.True(t, ok)
			assert.Equal(t, uint32(1), idx)

			images, err := r.Textures(devicetest.NewDevice(), pipeline.StrategyLayeredAtlas)
			require.NoError(t, err)
			assert.Equal(t, uint32(2), images[0].Descriptor().Width)
		})
	}
}

func TestParseManifestErrors(t *testing.T) {
	_, err := ParseManifest([]byte("textures = []"), ".json")
	assert.Error(t, err)

	_, err = ParseManifest([]byte("[[textures]]\nname = \"a\"\n"), ".toml")
	assert.ErrorContains(t, err, "name and path are required")

	_, err = ParseManifest([]byte("textures: [: bad"), ".yml")
	assert.Error(t, err)
}
