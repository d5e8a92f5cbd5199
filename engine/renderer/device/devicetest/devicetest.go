// Package devicetest provides a recording device.Device for tests. It performs the same argument
// checks as a real device, keeps buffer and image contents in memory, and records every call in
// order so tests can assert on the frame protocol.
package devicetest

import (
	"fmt"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/shader"
)

// Op names a recorded device call.
type Op string

const (
	OpCreateBuffer          Op = "CreateBuffer"
	OpWriteBuffer           Op = "WriteBuffer"
	OpCreateImage           Op = "CreateImage"
	OpWriteImage            Op = "WriteImage"
	OpCreateSampler         Op = "CreateSampler"
	OpAllocateDescriptorSet Op = "AllocateDescriptorSet"
	OpUpdateDescriptorSet   Op = "UpdateDescriptorSet"
	OpCreatePipeline        Op = "CreatePipeline"
	OpBeginFrame            Op = "BeginFrame"
	OpRecordDraw            Op = "RecordDraw"
	OpEndFrame              Op = "EndFrame"
	OpPresent               Op = "Present"
	OpWaitFence             Op = "WaitFence"
	OpResize                Op = "Resize"
	OpRelease               Op = "Release"
)

// Call is one recorded device call.
type Call struct {
	Op    Op
	Label string
	// Data holds a copy of written bytes for WriteBuffer and WriteImage, and the push constants
	// for RecordDraw.
	Data   []byte
	Offset uint64
	// Fence is the fence waited on by WaitFence, and the frame a RecordDraw was recorded in.
	Fence       device.Fence
	VertexCount uint32
	// Target is the label of the buffer, image, set or pipeline the call operated on.
	Target string
}

// Device is the recording fake.
type Device struct {
	mu *sync.Mutex

	caps     device.Capabilities
	calls    []Call
	failures map[Op][]error

	live      map[releaser]string
	frame     device.Fence
	completed device.Fence
	recording bool
	width     int
	height    int
}

var _ device.Device = &Device{}

// DeviceOption configures a fake Device.
type DeviceOption func(*Device)

// WithCapabilities overrides the reported capabilities.
func WithCapabilities(caps device.Capabilities) DeviceOption {
	return func(d *Device) {
		d.caps = caps
	}
}

// DefaultCapabilities returns capabilities of a desktop class device with non-uniform indexing.
func DefaultCapabilities() device.Capabilities {
	return device.Capabilities{
		NonUniformIndexing:       true,
		MaxDescriptorArrayLength: 16,
		MaxTextureArrayLayers:    256,
		MaxUniformBufferSize:     65536,
		MaxPushConstantSize:      128,
	}
}

// NewDevice creates a fake device.
func NewDevice(opts ...DeviceOption) *Device {
	d := &Device{
		mu:       &sync.Mutex{},
		caps:     DefaultCapabilities(),
		failures: make(map[Op][]error),
		live:     make(map[releaser]string),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FailNext makes the next call of op return err. Multiple failures queue in order.
func (d *Device) FailNext(op Op, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[op] = append(d.failures[op], err)
}

// Calls returns a copy of the recorded calls.
func (d *Device) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.calls)
}

// CallsOf returns the recorded calls of one kind.
func (d *Device) CallsOf(op Op) []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []Call
	for _, c := range d.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Ops returns the op sequence of the recorded calls.
func (d *Device) Ops() []Op {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Op, len(d.calls))
	for i, c := range d.calls {
		out[i] = c.Op
	}
	return out
}

// Reset clears the recorded calls.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = nil
}

// Live returns the labels of every object created and not yet released, sorted.
func (d *Device) Live() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.live))
	for _, label := range d.live {
		out = append(out, label)
	}
	slices.Sort(out)
	return out
}

// CompletedFrame returns the highest fence waited on.
func (d *Device) CompletedFrame() device.Fence {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.completed
}

// Size returns the last size passed to Resize.
func (d *Device) Size() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.width, d.height
}

// record appends a call and pops a queued failure for its op. Callers hold mu.
func (d *Device) record(c Call) error {
	d.calls = append(d.calls, c)
	if q := d.failures[c.Op]; len(q) > 0 {
		d.failures[c.Op] = q[1:]
		return q[0]
	}
	return nil
}

func (d *Device) Capabilities() device.Capabilities {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.caps
}

func (d *Device) CreateBuffer(label string, size uint64, usage device.BufferUsage) (device.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record(Call{Op: OpCreateBuffer, Label: label, Offset: size}); err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, fmt.Errorf("%w: buffer %s: zero size", device.ErrDeviceResourceExhausted, label)
	}
	if usage&device.BufferUsageUniform != 0 && size > d.caps.MaxUniformBufferSize {
		return nil, fmt.Errorf("%w: uniform buffer %s: %d bytes exceeds %d", device.ErrDeviceResourceExhausted, label, size, d.caps.MaxUniformBufferSize)
	}
	b := &Buffer{dev: d, label: label, usage: usage, data: make([]byte, size)}
	d.live[b] = "buffer:" + label
	return b, nil
}

func (d *Device) WriteBuffer(buf device.Buffer, offset uint64, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := buf.(*Buffer)
	if !ok || b.dev != d || b.released {
		return device.ErrInvalidHandle
	}
	if err := d.record(Call{Op: OpWriteBuffer, Target: b.label, Offset: offset, Data: slices.Clone(data)}); err != nil {
		return err
	}
	if offset+uint64(len(data)) > uint64(len(b.data)) {
		return fmt.Errorf("buffer %s: write of %d bytes at %d exceeds size %d", b.label, len(data), offset, len(b.data))
	}
	copy(b.data[offset:], data)
	return nil
}

func (d *Device) CreateImage(desc device.ImageDescriptor) (device.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record(Call{Op: OpCreateImage, Label: desc.Label}); err != nil {
		return nil, err
	}
	if desc.Width == 0 || desc.Height == 0 || desc.Layers == 0 {
		return nil, fmt.Errorf("%w: image %s: empty extent", device.ErrDeviceResourceExhausted, desc.Label)
	}
	if desc.Layers > d.caps.MaxTextureArrayLayers {
		return nil, fmt.Errorf("%w: image %s: %d layers exceeds %d", device.ErrDeviceResourceExhausted, desc.Label, desc.Layers, d.caps.MaxTextureArrayLayers)
	}
	img := &Image{dev: d, desc: desc, layers: make([][]byte, desc.Layers)}
	d.live[img] = "image:" + desc.Label
	return img, nil
}

func (d *Device) WriteImage(img device.Image, layer uint32, pixels []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	i, ok := img.(*Image)
	if !ok || i.dev != d || i.released {
		return device.ErrInvalidHandle
	}
	if err := d.record(Call{Op: OpWriteImage, Target: i.desc.Label, Offset: uint64(layer), Data: slices.Clone(pixels)}); err != nil {
		return err
	}
	if layer >= i.desc.Layers {
		return fmt.Errorf("image %s: layer %d out of range", i.desc.Label, layer)
	}
	if len(pixels) != i.desc.ByteSize() {
		return fmt.Errorf("image %s: %d bytes, expected %d", i.desc.Label, len(pixels), i.desc.ByteSize())
	}
	i.layers[layer] = slices.Clone(pixels)
	return nil
}

func (d *Device) CreateSampler(desc device.SamplerDescriptor) (device.Sampler, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record(Call{Op: OpCreateSampler, Label: desc.Label}); err != nil {
		return nil, err
	}
	s := &Sampler{dev: d, desc: desc}
	d.live[s] = "sampler:" + desc.Label
	return s, nil
}

func (d *Device) AllocateDescriptorSet(layout device.DescriptorLayout) (device.DescriptorSet, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record(Call{Op: OpAllocateDescriptorSet, Label: layout.Label}); err != nil {
		return nil, err
	}
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	for _, e := range layout.Entries {
		if e.Count > 1 && (!d.caps.NonUniformIndexing || e.Count > d.caps.MaxDescriptorArrayLength) {
			return nil, fmt.Errorf("%w: set %s: array of %d at binding %d", device.ErrDeviceResourceExhausted, layout.Label, e.Count, e.Binding)
		}
	}
	s := &DescriptorSet{dev: d, layout: layout}
	d.live[s] = "set:" + layout.Label
	return s, nil
}

func (d *Device) UpdateDescriptorSet(set device.DescriptorSet, bindings []device.Binding) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := set.(*DescriptorSet)
	if !ok || s.dev != d || s.released {
		return device.ErrInvalidHandle
	}
	if err := d.record(Call{Op: OpUpdateDescriptorSet, Target: s.layout.Label}); err != nil {
		return err
	}
	if err := device.CheckBindings(s.layout, bindings); err != nil {
		return err
	}
	s.bindings = slices.Clone(bindings)
	return nil
}

func (d *Device) CreatePipeline(p pipeline.Pipeline, layout device.DescriptorLayout) (device.PipelineHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record(Call{Op: OpCreatePipeline, Label: p.PipelineKey()}); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", device.ErrShaderCompileFailure, err)
	}
	if p.PushConstantSize() > d.caps.MaxPushConstantSize {
		return nil, fmt.Errorf("%w: pipeline %s: push constants of %d bytes exceed %d", device.ErrDeviceResourceExhausted, p.PipelineKey(), p.PushConstantSize(), d.caps.MaxPushConstantSize)
	}
	for _, st := range []shader.ShaderType{shader.ShaderTypeVertex, shader.ShaderTypeFragment} {
		if err := device.CheckShaderBindings(layout, 0, p.Shader(st)); err != nil {
			return nil, err
		}
	}
	h := &Pipeline{dev: d, desc: p, layout: layout}
	d.live[h] = "pipeline:" + p.PipelineKey()
	return h, nil
}

func (d *Device) BeginFrame() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record(Call{Op: OpBeginFrame}); err != nil {
		return err
	}
	d.frame++
	d.recording = true
	return nil
}

func (d *Device) RecordDraw(p device.PipelineHandle, set device.DescriptorSet, pushConstants []byte, vertexCount uint32, vertexBuffers ...device.Buffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.recording {
		return device.ErrNoFrame
	}
	h, ok := p.(*Pipeline)
	if !ok || h.dev != d || h.released {
		return device.ErrInvalidHandle
	}
	s, ok := set.(*DescriptorSet)
	if !ok || s.dev != d || s.released || s.bindings == nil {
		return device.ErrInvalidHandle
	}
	for _, vb := range vertexBuffers {
		b, ok := vb.(*Buffer)
		if !ok || b.dev != d || b.released || b.usage&device.BufferUsageVertex == 0 {
			return device.ErrInvalidHandle
		}
	}
	if err := d.record(Call{
		Op:          OpRecordDraw,
		Label:       h.desc.PipelineKey(),
		Target:      s.layout.Label,
		Data:        slices.Clone(pushConstants),
		Fence:       d.frame,
		VertexCount: vertexCount,
	}); err != nil {
		return err
	}
	if uint32(len(pushConstants)) > d.caps.MaxPushConstantSize {
		return fmt.Errorf("push constants of %d bytes exceed %d", len(pushConstants), d.caps.MaxPushConstantSize)
	}
	return nil
}

func (d *Device) EndFrame() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.recording {
		return device.ErrNoFrame
	}
	d.recording = false
	return d.record(Call{Op: OpEndFrame, Fence: d.frame})
}

func (d *Device) Present() {
	d.mu.Lock()
	defer d.mu.Unlock()
	_ = d.record(Call{Op: OpPresent})
}

func (d *Device) CurrentFrame() device.Fence {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frame
}

func (d *Device) WaitFence(f device.Fence) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record(Call{Op: OpWaitFence, Fence: f}); err != nil {
		return err
	}
	if f > d.frame || (d.recording && f == d.frame) {
		return fmt.Errorf("wait on frame %d which was never submitted", f)
	}
	d.completed = max(d.completed, f)
	return nil
}

func (d *Device) Resize(width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_ = d.record(Call{Op: OpResize})
	d.width, d.height = width, height
}

func (d *Device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	_ = d.record(Call{Op: OpRelease})
	d.completed = d.frame
	for obj := range d.live {
		obj.markReleased()
	}
	clear(d.live)
}

type releaser interface {
	markReleased()
}

// release marks a handle released and drops it from the live set.
func (d *Device) release(obj releaser) {
	d.mu.Lock()
	defer d.mu.Unlock()
	obj.markReleased()
	delete(d.live, obj)
}
