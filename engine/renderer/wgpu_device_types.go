package renderer

import (
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuBuffer struct {
	dev   *wgpuDevice
	buf   *wgpu.Buffer
	size  uint64
	usage device.BufferUsage
}

func (b *wgpuBuffer) Size() uint64              { return b.size }
func (b *wgpuBuffer) Usage() device.BufferUsage { return b.usage }
func (b *wgpuBuffer) Release()                  { b.dev.forget(b) }

func (b *wgpuBuffer) free() {
	if b.buf != nil {
		b.buf.Release()
		b.buf = nil
	}
}

type wgpuImage struct {
	dev  *wgpuDevice
	desc device.ImageDescriptor
	tex  *wgpu.Texture
	view *wgpu.TextureView
}

func (i *wgpuImage) Descriptor() device.ImageDescriptor { return i.desc }
func (i *wgpuImage) Release()                           { i.dev.forget(i) }

func (i *wgpuImage) free() {
	if i.view != nil {
		i.view.Release()
		i.view = nil
	}
	if i.tex != nil {
		i.tex.Release()
		i.tex = nil
	}
}

type wgpuSampler struct {
	dev  *wgpuDevice
	samp *wgpu.Sampler
}

func (s *wgpuSampler) Release() { s.dev.forget(s) }

func (s *wgpuSampler) free() {
	if s.samp != nil {
		s.samp.Release()
		s.samp = nil
	}
}

// wgpuDescriptorSet pairs a cached bind group layout with the bind group of its last update.
// The layout is owned by the device cache.
type wgpuDescriptorSet struct {
	dev    *wgpuDevice
	layout device.DescriptorLayout
	bgl    *wgpu.BindGroupLayout
	bg     *wgpu.BindGroup
}

func (s *wgpuDescriptorSet) Layout() device.DescriptorLayout { return s.layout }
func (s *wgpuDescriptorSet) Release()                        { s.dev.forget(s) }

func (s *wgpuDescriptorSet) free() {
	if s.bg != nil {
		s.bg.Release()
		s.bg = nil
	}
	s.bgl = nil
}

type wgpuPipeline struct {
	dev    *wgpuDevice
	key    string
	layout *wgpu.PipelineLayout
	pipe   *wgpu.RenderPipeline
}

func (p *wgpuPipeline) Key() string { return p.key }
func (p *wgpuPipeline) Release()    { p.dev.forget(p) }

func (p *wgpuPipeline) free() {
	if p.pipe != nil {
		p.pipe.Release()
		p.pipe = nil
	}
	if p.layout != nil {
		p.layout.Release()
		p.layout = nil
	}
}

func toWGPUBufferUsage(u device.BufferUsage) wgpu.BufferUsage {
	var out wgpu.BufferUsage
	if u&device.BufferUsageUniform != 0 {
		out |= wgpu.BufferUsageUniform
	}
	if u&device.BufferUsageVertex != 0 {
		out |= wgpu.BufferUsageVertex
	}
	if u&device.BufferUsageIndex != 0 {
		out |= wgpu.BufferUsageIndex
	}
	if u&device.BufferUsageCopyDst != 0 {
		out |= wgpu.BufferUsageCopyDst
	}
	return out
}

func toWGPUTextureFormat(f device.ImageFormat) wgpu.TextureFormat {
	if f == device.ImageFormatRGBA8UnormSrgb {
		return wgpu.TextureFormatRGBA8UnormSrgb
	}
	return wgpu.TextureFormatRGBA8Unorm
}

func toWGPUAddressMode(m device.AddressMode) wgpu.AddressMode {
	switch m {
	case device.AddressModeRepeat:
		return wgpu.AddressModeRepeat
	case device.AddressModeMirrorRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeClampToEdge
	}
}

func toWGPUFilterMode(m device.FilterMode) wgpu.FilterMode {
	if m == device.FilterModeLinear {
		return wgpu.FilterModeLinear
	}
	return wgpu.FilterModeNearest
}

func toWGPUShaderStage(s device.ShaderStage) wgpu.ShaderStage {
	var out wgpu.ShaderStage
	if s&device.ShaderStageVertex != 0 {
		out |= wgpu.ShaderStageVertex
	}
	if s&device.ShaderStageFragment != 0 {
		out |= wgpu.ShaderStageFragment
	}
	return out
}

// toWGPULayoutEntry converts one expanded layout entry.
func toWGPULayoutEntry(e device.LayoutEntry) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    e.Binding,
		Visibility: toWGPUShaderStage(e.Visibility),
	}
	switch e.Kind {
	case device.BindingKindUniformBuffer:
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		entry.Buffer.MinBindingSize = e.MinSize
	case device.BindingKindSampler:
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case device.BindingKindTexture2D:
		entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
	case device.BindingKindTexture2DArray:
		entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2DArray
	}
	return entry
}

var vertexFormats = map[shader.VertexFormat]wgpu.VertexFormat{
	shader.VertexFormatFloat32:   wgpu.VertexFormatFloat32,
	shader.VertexFormatFloat32x2: wgpu.VertexFormatFloat32x2,
	shader.VertexFormatFloat32x3: wgpu.VertexFormatFloat32x3,
	shader.VertexFormatFloat32x4: wgpu.VertexFormatFloat32x4,
	shader.VertexFormatUint32:    wgpu.VertexFormatUint32,
	shader.VertexFormatUint32x2:  wgpu.VertexFormatUint32x2,
	shader.VertexFormatUint32x4:  wgpu.VertexFormatUint32x4,
	shader.VertexFormatSint32:    wgpu.VertexFormatSint32,
	shader.VertexFormatSint32x2:  wgpu.VertexFormatSint32x2,
	shader.VertexFormatSint32x4:  wgpu.VertexFormatSint32x4,
}

// toWGPUVertexLayouts converts parsed vertex input structs into per-vertex buffer layouts,
// one buffer slot per struct in declaration order.
func toWGPUVertexLayouts(layouts []shader.VertexLayout) []wgpu.VertexBufferLayout {
	out := make([]wgpu.VertexBufferLayout, 0, len(layouts))
	for _, l := range layouts {
		attrs := make([]wgpu.VertexAttribute, 0, len(l.Attributes))
		for _, a := range l.Attributes {
			attrs = append(attrs, wgpu.VertexAttribute{
				Format:         vertexFormats[a.Format],
				Offset:         a.Offset,
				ShaderLocation: a.Location,
			})
		}
		out = append(out, wgpu.VertexBufferLayout{
			ArrayStride: l.Stride,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes:  attrs,
		})
	}
	return out
}

func toWGPUTopology(t pipeline.Topology) wgpu.PrimitiveTopology {
	if t == pipeline.TopologyTriangleStrip {
		return wgpu.PrimitiveTopologyTriangleStrip
	}
	return wgpu.PrimitiveTopologyTriangleList
}

func toWGPUFrontFace(f pipeline.FrontFace) wgpu.FrontFace {
	if f == pipeline.FrontFaceCW {
		return wgpu.FrontFaceCW
	}
	return wgpu.FrontFaceCCW
}

func toWGPUCullMode(c pipeline.CullMode) wgpu.CullMode {
	switch c {
	case pipeline.CullModeFront:
		return wgpu.CullModeFront
	case pipeline.CullModeBack:
		return wgpu.CullModeBack
	default:
		return wgpu.CullModeNone
	}
}
