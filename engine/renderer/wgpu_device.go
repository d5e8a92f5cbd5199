package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuDevice is the WebGPU implementation of device.Device.
//
// Push constants are emulated: every draw's bytes are written to its own 256 byte slot of a ring
// buffer bound at device.PushConstantGroup with a dynamic offset. Descriptor arrays are expanded
// into consecutive bindings, which the shader pre-processor's slots annotation declares.
type wgpuDevice struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	limits          wgpu.Limits
	surfaceFormat   wgpu.TextureFormat
	msaaTextureView *wgpu.TextureView
	renderPass      *wgpu.RenderPassDescriptor
	width, height   int

	presentMode      wgpu.PresentMode
	sampleCount      MSAASampleCount
	clearColor       wgpu.Color
	forceFallback    bool
	maxDrawsPerFrame int

	// layouts caches bind group layouts by their expanded entry list so sets and pipelines
	// created from equal descriptor layouts share one object.
	layouts map[string]*wgpu.BindGroupLayout

	pushLayout *wgpu.BindGroupLayout
	pushBuffer *wgpu.Buffer
	pushGroup  *wgpu.BindGroup
	pushSlot   int

	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	// frame is the serial of the frame being recorded, or of the last submitted frame between frames.
	frame     device.Fence
	submitted device.Fence
	completed device.Fence

	objects map[wgpuObject]struct{}
}

// wgpuObject is implemented by every handle the device hands out.
type wgpuObject interface {
	free()
}

var _ device.Device = &wgpuDevice{}

// NewWGPUDevice creates a WebGPU device presenting to the given surface.
// The calling goroutine is locked to its OS thread, as wgpu-native requires for surface access.
//
// Parameters:
//   - surfaceDescriptor: the platform surface, typically from Window.SurfaceDescriptor
//   - width: the initial framebuffer width in pixels
//   - height: the initial framebuffer height in pixels
//   - options: functional options configuring adapter selection and presentation
//
// Returns:
//   - device.Device: the device
//   - error: an error if no adapter or device could be obtained
func NewWGPUDevice(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, options ...WGPUDeviceBuilderOption) (device.Device, error) {
	runtime.LockOSThread()
	d := &wgpuDevice{
		mu:               &sync.Mutex{},
		presentMode:      wgpu.PresentModeImmediate,
		sampleCount:      MSAA4x,
		clearColor:       wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0},
		maxDrawsPerFrame: defaultMaxDrawsPerFrame,
		layouts:          make(map[string]*wgpu.BindGroupLayout),
		objects:          make(map[wgpuObject]struct{}),
	}
	for _, opt := range options {
		opt(d)
	}

	d.instance = wgpu.CreateInstance(nil)
	d.surface = d.instance.CreateSurface(surfaceDescriptor)

	a, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: d.forceFallback,
		CompatibleSurface:    d.surface,
	})
	if err != nil {
		d.releaseCore()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	d.adapter = a

	d.limits = wgpu.DefaultLimits()
	dev, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Grid Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: d.limits,
		},
	})
	if err != nil {
		d.releaseCore()
		return nil, fmt.Errorf("request device: %w", err)
	}
	d.device = dev
	d.queue = dev.GetQueue()

	if err := d.createPushRing(); err != nil {
		d.releaseCore()
		return nil, err
	}

	d.configureSurface(width, height)
	return d, nil
}

// createPushRing allocates the dynamic-offset uniform ring used for push constants.
func (d *wgpuDevice) createPushRing() error {
	layout, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Push Constant Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeUniform,
					HasDynamicOffset: true,
					MinBindingSize:   pipeline.TransformSize,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: push constant layout: %w", device.ErrDeviceResourceExhausted, err)
	}
	d.pushLayout = layout

	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Push Constant Ring",
		Size:  uint64(pushSlotSize * d.maxDrawsPerFrame),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("%w: push constant ring: %w", device.ErrDeviceResourceExhausted, err)
	}
	d.pushBuffer = buf

	group, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Push Constant Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: buf, Offset: 0, Size: pushSlotSize},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: push constant group: %w", device.ErrDeviceResourceExhausted, err)
	}
	d.pushGroup = group
	return nil
}

// configureSurface configures the swapchain and rebuilds the cached render pass descriptor.
// Callers hold mu or own d exclusively.
func (d *wgpuDevice) configureSurface(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	d.width, d.height = width, height

	capabilities := d.surface.GetCapabilities(d.adapter)
	d.surfaceFormat = capabilities.Formats[0]

	d.surface.Configure(d.adapter, d.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      d.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: d.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if d.msaaTextureView != nil {
		d.msaaTextureView.Release()
		d.msaaTextureView = nil
	}

	storeOp := wgpu.StoreOpStore
	if d.sampleCount > 1 {
		msaaTexture, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "MSAA Texture",
			Size: wgpu.Extent3D{
				Width:              uint32(width),
				Height:             uint32(height),
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   uint32(d.sampleCount),
			Dimension:     wgpu.TextureDimension2D,
			Format:        d.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err == nil {
			d.msaaTextureView, err = msaaTexture.CreateView(nil)
		}
		if err != nil {
			// fall back to drawing straight into the swapchain
			d.sampleCount = MSAAOff
		} else {
			storeOp = wgpu.StoreOpDiscard
		}
	}

	// View is the MSAA target with the swapchain as ResolveTarget, or the swapchain itself.
	// The swapchain view is filled in per frame.
	d.renderPass = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       d.msaaTextureView,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    storeOp,
				ClearValue: d.clearColor,
			},
		},
	}
}

func (d *wgpuDevice) Capabilities() device.Capabilities {
	return device.Capabilities{
		// sample_slot selects with textureSampleLevel, which is valid in non-uniform control flow
		NonUniformIndexing:       true,
		MaxDescriptorArrayLength: d.limits.MaxSampledTexturesPerShaderStage,
		MaxTextureArrayLayers:    d.limits.MaxTextureArrayLayers,
		MaxUniformBufferSize:     d.limits.MaxUniformBufferBindingSize,
		MaxPushConstantSize:      pushSlotSize,
	}
}

func (d *wgpuDevice) CreateBuffer(label string, size uint64, usage device.BufferUsage) (device.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if size == 0 {
		return nil, fmt.Errorf("%w: buffer %s: zero size", device.ErrDeviceResourceExhausted, label)
	}
	if usage&device.BufferUsageUniform != 0 && size > d.limits.MaxUniformBufferBindingSize {
		return nil, fmt.Errorf("%w: uniform buffer %s: %d bytes exceeds %d", device.ErrDeviceResourceExhausted, label, size, d.limits.MaxUniformBufferBindingSize)
	}

	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: toWGPUBufferUsage(usage),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: buffer %s: %w", device.ErrDeviceResourceExhausted, label, err)
	}
	b := &wgpuBuffer{dev: d, buf: buf, size: size, usage: usage}
	d.objects[b] = struct{}{}
	return b, nil
}

func (d *wgpuDevice) WriteBuffer(buf device.Buffer, offset uint64, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, ok := buf.(*wgpuBuffer)
	if !ok || b.dev != d || b.buf == nil {
		return device.ErrInvalidHandle
	}
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("buffer write of %d bytes at %d exceeds size %d", len(data), offset, b.size)
	}
	d.queue.WriteBuffer(b.buf, offset, data)
	return nil
}

func (d *wgpuDevice) CreateImage(desc device.ImageDescriptor) (device.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if desc.Width == 0 || desc.Height == 0 || desc.Layers == 0 {
		return nil, fmt.Errorf("%w: image %s: empty extent", device.ErrDeviceResourceExhausted, desc.Label)
	}
	if desc.Layers > d.limits.MaxTextureArrayLayers {
		return nil, fmt.Errorf("%w: image %s: %d layers exceeds %d", device.ErrDeviceResourceExhausted, desc.Label, desc.Layers, d.limits.MaxTextureArrayLayers)
	}

	format := toWGPUTextureFormat(desc.Format)
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     desc.Label,
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: desc.Layers,
		},
		Format:        format,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: image %s: %w", device.ErrDeviceResourceExhausted, desc.Label, err)
	}

	dimension := wgpu.TextureViewDimension2D
	if desc.Layered {
		dimension = wgpu.TextureViewDimension2DArray
	}
	view, err := tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           desc.Label + " View",
		Format:          format,
		Dimension:       dimension,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: desc.Layers,
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("%w: image view %s: %w", device.ErrDeviceResourceExhausted, desc.Label, err)
	}

	img := &wgpuImage{dev: d, desc: desc, tex: tex, view: view}
	d.objects[img] = struct{}{}
	return img, nil
}

func (d *wgpuDevice) WriteImage(img device.Image, layer uint32, pixels []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	i, ok := img.(*wgpuImage)
	if !ok || i.dev != d || i.tex == nil {
		return device.ErrInvalidHandle
	}
	if layer >= i.desc.Layers {
		return fmt.Errorf("image %s: layer %d out of range", i.desc.Label, layer)
	}
	if len(pixels) != i.desc.ByteSize() {
		return fmt.Errorf("image %s: %d bytes, expected %d", i.desc.Label, len(pixels), i.desc.ByteSize())
	}

	d.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  i.tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{Z: layer},
			Aspect:   wgpu.TextureAspectAll,
		},
		pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  i.desc.Width * uint32(i.desc.Format.BytesPerPixel()),
			RowsPerImage: i.desc.Height,
		},
		&wgpu.Extent3D{
			Width:              i.desc.Width,
			Height:             i.desc.Height,
			DepthOrArrayLayers: 1,
		},
	)
	return nil
}

func (d *wgpuDevice) CreateSampler(desc device.SamplerDescriptor) (device.Sampler, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	samp, err := d.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         desc.Label,
		AddressModeU:  toWGPUAddressMode(desc.AddressModeU),
		AddressModeV:  toWGPUAddressMode(desc.AddressModeV),
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     toWGPUFilterMode(desc.MagFilter),
		MinFilter:     toWGPUFilterMode(desc.MinFilter),
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: sampler %s: %w", device.ErrDeviceResourceExhausted, desc.Label, err)
	}
	s := &wgpuSampler{dev: d, samp: samp}
	d.objects[s] = struct{}{}
	return s, nil
}

// bindGroupLayout returns the cached bind group layout for a descriptor layout, creating it on first use.
// Callers hold mu.
func (d *wgpuDevice) bindGroupLayout(layout device.DescriptorLayout) (*wgpu.BindGroupLayout, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	flat := layout.Expanded()
	var key strings.Builder
	entries := make([]wgpu.BindGroupLayoutEntry, 0, len(flat))
	for _, e := range flat {
		fmt.Fprintf(&key, "%d:%d:%d:%d;", e.Binding, e.Kind, e.Visibility, e.MinSize)
		entries = append(entries, toWGPULayoutEntry(e))
	}
	if bgl, ok := d.layouts[key.String()]; ok {
		return bgl, nil
	}
	bgl, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   layout.Label,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: layout %s: %w", device.ErrDeviceResourceExhausted, layout.Label, err)
	}
	d.layouts[key.String()] = bgl
	return bgl, nil
}

func (d *wgpuDevice) AllocateDescriptorSet(layout device.DescriptorLayout) (device.DescriptorSet, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	bgl, err := d.bindGroupLayout(layout)
	if err != nil {
		return nil, err
	}
	s := &wgpuDescriptorSet{dev: d, layout: layout, bgl: bgl}
	d.objects[s] = struct{}{}
	return s, nil
}

func (d *wgpuDevice) UpdateDescriptorSet(set device.DescriptorSet, bindings []device.Binding) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := set.(*wgpuDescriptorSet)
	if !ok || s.dev != d || s.bgl == nil {
		return device.ErrInvalidHandle
	}
	if err := device.CheckBindings(s.layout, bindings); err != nil {
		return err
	}

	entries := make([]wgpu.BindGroupEntry, 0, len(bindings))
	for _, b := range bindings {
		switch {
		case b.Buffer != nil:
			buf, ok := b.Buffer.(*wgpuBuffer)
			if !ok || buf.dev != d || buf.buf == nil {
				return device.ErrInvalidHandle
			}
			size := b.Size
			if size == 0 {
				size = wgpu.WholeSize
			}
			entries = append(entries, wgpu.BindGroupEntry{Binding: b.Binding, Buffer: buf.buf, Offset: b.Offset, Size: size})
		case b.Sampler != nil:
			samp, ok := b.Sampler.(*wgpuSampler)
			if !ok || samp.dev != d || samp.samp == nil {
				return device.ErrInvalidHandle
			}
			entries = append(entries, wgpu.BindGroupEntry{Binding: b.Binding, Sampler: samp.samp})
		default:
			// descriptor arrays occupy consecutive bindings, one image each
			for i, img := range b.Images {
				im, ok := img.(*wgpuImage)
				if !ok || im.dev != d || im.view == nil {
					return device.ErrInvalidHandle
				}
				entries = append(entries, wgpu.BindGroupEntry{Binding: b.Binding + uint32(i), TextureView: im.view})
			}
		}
	}

	bg, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   s.layout.Label + " Bind Group",
		Layout:  s.bgl,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("%w: bind group %s: %w", device.ErrDeviceResourceExhausted, s.layout.Label, err)
	}
	if s.bg != nil {
		s.bg.Release()
	}
	s.bg = bg
	return nil
}

func (d *wgpuDevice) CreatePipeline(p pipeline.Pipeline, layout device.DescriptorLayout) (device.PipelineHandle, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", device.ErrShaderCompileFailure, err)
	}
	if p.PushConstantSize() > pushSlotSize {
		return nil, fmt.Errorf("%w: pipeline %s: push constants of %d bytes exceed %d", device.ErrDeviceResourceExhausted, p.PipelineKey(), p.PushConstantSize(), pushSlotSize)
	}

	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)
	for _, s := range []shader.Shader{vertexShader, fragmentShader} {
		if err := shader.Validate(s); err != nil {
			return nil, err
		}
		if err := device.CheckShaderBindings(layout, 0, s); err != nil {
			return nil, err
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	bgl, err := d.bindGroupLayout(layout)
	if err != nil {
		return nil, err
	}

	vs, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          vertexShader.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: vertexShader.Source()},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", device.ErrShaderCompileFailure, vertexShader.Key(), err)
	}
	defer vs.Release()
	fs, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          fragmentShader.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: fragmentShader.Source()},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", device.ErrShaderCompileFailure, fragmentShader.Key(), err)
	}
	defer fs.Release()

	pipelineLayout, err := d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: []*wgpu.BindGroupLayout{bgl, d.pushLayout},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: pipeline layout %s: %w", device.ErrDeviceResourceExhausted, p.PipelineKey(), err)
	}

	target := wgpu.ColorTargetState{
		Format:    d.surfaceFormat,
		WriteMask: wgpu.ColorWriteMaskAll,
	}
	if p.BlendEnabled() {
		target.Blend = &wgpu.BlendState{
			Color: wgpu.BlendComponent{Operation: wgpu.BlendOperationAdd, SrcFactor: wgpu.BlendFactorSrcAlpha, DstFactor: wgpu.BlendFactorOneMinusSrcAlpha},
			Alpha: wgpu.BlendComponent{Operation: wgpu.BlendOperationAdd, SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOneMinusSrcAlpha},
		}
	}

	created, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    toWGPUVertexLayouts(vertexShader.VertexLayouts()),
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  toWGPUTopology(p.Topology()),
			FrontFace: toWGPUFrontFace(p.FrontFace()),
			CullMode:  toWGPUCullMode(p.CullMode()),
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(d.sampleCount),
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		pipelineLayout.Release()
		return nil, fmt.Errorf("%w: %s: %w", device.ErrShaderCompileFailure, p.PipelineKey(), err)
	}

	h := &wgpuPipeline{dev: d, key: p.PipelineKey(), layout: pipelineLayout, pipe: created}
	d.objects[h] = struct{}{}
	return h, nil
}

func (d *wgpuDevice) BeginFrame() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	// a surface image still held means the previous frame was never presented
	if d.frameSurface != nil {
		return errors.New("previous frame surface not yet presented")
	}

	surfaceTexture, err := d.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	if d.sampleCount > 1 {
		d.renderPass.ColorAttachments[0].ResolveTarget = view
	} else {
		d.renderPass.ColorAttachments[0].View = view
	}

	d.frameEncoder = encoder
	d.framePass = encoder.BeginRenderPass(d.renderPass)
	d.frameSurface = surfaceTexture
	d.frameView = view
	d.pushSlot = 0
	d.frame++
	return nil
}

func (d *wgpuDevice) RecordDraw(p device.PipelineHandle, set device.DescriptorSet, pushConstants []byte, vertexCount uint32, vertexBuffers ...device.Buffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.framePass == nil {
		return device.ErrNoFrame
	}
	h, ok := p.(*wgpuPipeline)
	if !ok || h.dev != d || h.pipe == nil {
		return device.ErrInvalidHandle
	}
	s, ok := set.(*wgpuDescriptorSet)
	if !ok || s.dev != d || s.bg == nil {
		return device.ErrInvalidHandle
	}
	if len(pushConstants) > pushSlotSize {
		return fmt.Errorf("push constants of %d bytes exceed %d", len(pushConstants), pushSlotSize)
	}
	if d.pushSlot >= d.maxDrawsPerFrame {
		return fmt.Errorf("%w: more than %d draws in one frame", device.ErrDeviceResourceExhausted, d.maxDrawsPerFrame)
	}

	offset := uint32(d.pushSlot * pushSlotSize)
	if len(pushConstants) > 0 {
		d.queue.WriteBuffer(d.pushBuffer, uint64(offset), pushConstants)
	}
	d.pushSlot++

	d.framePass.SetPipeline(h.pipe)
	d.framePass.SetBindGroup(0, s.bg, nil)
	d.framePass.SetBindGroup(device.PushConstantGroup, d.pushGroup, []uint32{offset})
	for slot, vb := range vertexBuffers {
		b, ok := vb.(*wgpuBuffer)
		if !ok || b.dev != d || b.buf == nil {
			return device.ErrInvalidHandle
		}
		d.framePass.SetVertexBuffer(uint32(slot), b.buf, 0, wgpu.WholeSize)
	}
	d.framePass.Draw(vertexCount, 1, 0, 0)
	return nil
}

func (d *wgpuDevice) EndFrame() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.framePass == nil {
		return device.ErrNoFrame
	}
	d.framePass.End()
	d.framePass = nil

	commandBuffer, err := d.frameEncoder.Finish(nil)
	d.frameEncoder.Release()
	d.frameEncoder = nil
	if err != nil {
		d.releaseFrameSurface()
		return fmt.Errorf("finish frame %d: %w", d.frame, err)
	}

	d.queue.Submit(commandBuffer)
	commandBuffer.Release()
	d.submitted = d.frame
	return nil
}

func (d *wgpuDevice) Present() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.frameSurface == nil {
		return
	}
	d.surface.Present()
	d.releaseFrameSurface()
}

// releaseFrameSurface drops the acquired swapchain image. Callers hold mu.
func (d *wgpuDevice) releaseFrameSurface() {
	if d.frameView != nil {
		d.frameView.Release()
		d.frameView = nil
	}
	if d.frameSurface != nil {
		d.frameSurface.Release()
		d.frameSurface = nil
	}
}

func (d *wgpuDevice) CurrentFrame() device.Fence {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frame
}

func (d *wgpuDevice) WaitFence(f device.Fence) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if f == 0 || f <= d.completed {
		return nil
	}
	if f > d.submitted {
		return fmt.Errorf("wait on frame %d which was never submitted (last %d)", f, d.submitted)
	}
	// Poll with wait blocks until every submission so far has completed
	d.device.Poll(true, nil)
	d.completed = d.submitted
	return nil
}

func (d *wgpuDevice) Resize(width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.configureSurface(width, height)
}

func (d *wgpuDevice) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.device != nil {
		d.device.Poll(true, nil)
		d.completed = d.submitted
	}
	d.releaseFrameSurface()
	for obj := range d.objects {
		obj.free()
	}
	clear(d.objects)
	for _, bgl := range d.layouts {
		bgl.Release()
	}
	clear(d.layouts)
	if d.msaaTextureView != nil {
		d.msaaTextureView.Release()
		d.msaaTextureView = nil
	}
	d.releaseCore()
}

// releaseCore releases the push ring and the device chain in reverse creation order.
func (d *wgpuDevice) releaseCore() {
	if d.pushGroup != nil {
		d.pushGroup.Release()
		d.pushGroup = nil
	}
	if d.pushBuffer != nil {
		d.pushBuffer.Release()
		d.pushBuffer = nil
	}
	if d.pushLayout != nil {
		d.pushLayout.Release()
		d.pushLayout = nil
	}
	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.surface != nil {
		d.surface.Release()
		d.surface = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}

// forget drops a handle from the live set after it released itself.
func (d *wgpuDevice) forget(obj wgpuObject) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.objects[obj]; ok {
		obj.free()
		delete(d.objects, obj)
	}
}
