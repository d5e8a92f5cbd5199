package device

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const layoutTestShader = `
struct Frame {
    viewport: vec4<f32>,
}

@group(0) @binding(0) var<uniform> frame: Frame;
@group(0) @binding(1) var tile_sampler: sampler;
@group(0) @binding(2) var tile_0: texture_2d<f32>;
@group(0) @binding(3) var tile_1: texture_2d<f32>;
@group(0) @binding(4) var tile_2: texture_2d<f32>;

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return textureSampleLevel(tile_2, tile_sampler, frame.viewport.xy, 0.0);
}
`

func arrayLayout(count uint32) DescriptorLayout {
	return DescriptorLayout{
		Label: "grid",
		Entries: []LayoutEntry{
			{Binding: 0, Kind: BindingKindUniformBuffer, Count: 1, Visibility: ShaderStageFragment, MinSize: 16},
			{Binding: 1, Kind: BindingKindSampler, Count: 1, Visibility: ShaderStageFragment},
			{Binding: 2, Kind: BindingKindTexture2D, Count: count, Visibility: ShaderStageFragment},
		},
	}
}

func TestExpandedFlattensArrays(t *testing.T) {
	flat := arrayLayout(3).Expanded()
	require.Len(t, flat, 5)
	for i, e := range flat {
		assert.Equal(t, uint32(i), e.Binding)
		assert.Equal(t, uint32(1), e.Count)
	}
	assert.Equal(t, BindingKindTexture2D, flat[4].Kind)
}

func TestLayoutValidate(t *testing.T) {
	require.NoError(t, arrayLayout(4).Validate())

	dup := arrayLayout(1)
	dup.Entries[1].Binding = 0
	assert.ErrorIs(t, dup.Validate(), ErrInvalidLayout)

	zero := arrayLayout(0)
	assert.ErrorIs(t, zero.Validate(), ErrInvalidLayout)

	samplers := arrayLayout(1)
	samplers.Entries[1].Count = 2
	assert.ErrorIs(t, samplers.Validate(), ErrInvalidLayout)
}

func TestCheckShaderBindings(t *testing.T) {
	s, err := shader.NewShaderFromSource("frag", shader.ShaderTypeFragment, layoutTestShader)
	require.NoError(t, err)

	require.NoError(t, CheckShaderBindings(arrayLayout(3), 0, s))

	err = CheckShaderBindings(arrayLayout(2), 0, s)
	assert.ErrorIs(t, err, ErrShaderCompileFailure)
	assert.ErrorIs(t, err, shader.ErrCompileFailure)

	wrongSize := arrayLayout(3)
	wrongSize.Entries[0].MinSize = 32
	assert.ErrorIs(t, CheckShaderBindings(wrongSize, 0, s), ErrShaderCompileFailure)

	atlas := arrayLayout(1)
	atlas.Entries[2].Kind = BindingKindTexture2DArray
	assert.ErrorIs(t, CheckShaderBindings(atlas, 0, s), ErrShaderCompileFailure)

	// bindings in other groups are not checked against the layout
	assert.NoError(t, CheckShaderBindings(DescriptorLayout{}, 1, s))
}

type stubBuffer struct{ size uint64 }

func (b stubBuffer) Size() uint64       { return b.size }
func (b stubBuffer) Usage() BufferUsage { return BufferUsageUniform }
func (b stubBuffer) Release()           {}

type stubImage struct{ desc ImageDescriptor }

func (i stubImage) Descriptor() ImageDescriptor { return i.desc }
func (i stubImage) Release()                    {}

type stubSampler struct{}

func (stubSampler) Release() {}

func TestCheckBindings(t *testing.T) {
	layout := arrayLayout(2)
	img := stubImage{desc: ImageDescriptor{Width: 4, Height: 4, Layers: 1}}
	valid := []Binding{
		{Binding: 0, Buffer: stubBuffer{size: 16}},
		{Binding: 1, Sampler: stubSampler{}},
		{Binding: 2, Images: []Image{img, img}},
	}
	require.NoError(t, CheckBindings(layout, valid))

	tests := []struct {
		name   string
		mutate func([]Binding) []Binding
	}{
		{"missing entry", func(b []Binding) []Binding { return b[:2] }},
		{"unknown binding", func(b []Binding) []Binding { return append(b, Binding{Binding: 9}) }},
		{"bound twice", func(b []Binding) []Binding { return append(b, b[1]) }},
		{"small buffer", func(b []Binding) []Binding { b[0].Buffer = stubBuffer{size: 8}; return b }},
		{"no sampler", func(b []Binding) []Binding { b[1].Sampler = nil; return b }},
		{"image count", func(b []Binding) []Binding { b[2].Images = b[2].Images[:1]; return b }},
		{"layered image in plain slot", func(b []Binding) []Binding {
			b[2].Images = []Image{img, stubImage{desc: ImageDescriptor{Width: 4, Height: 4, Layers: 2, Layered: true}}}
			return b
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bindings := make([]Binding, len(valid))
			copy(bindings, valid)
			assert.ErrorIs(t, CheckBindings(layout, tt.mutate(bindings)), ErrInvalidLayout)
		})
	}
}
