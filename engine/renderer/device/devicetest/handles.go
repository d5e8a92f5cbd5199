package devicetest

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-grid/engine/renderer/pipeline"
)

// Buffer is the fake buffer handle. Its contents are kept in memory.
type Buffer struct {
	dev      *Device
	label    string
	usage    device.BufferUsage
	data     []byte
	released bool
}

var _ device.Buffer = &Buffer{}

// Label returns the creation label.
func (b *Buffer) Label() string { return b.label }

// Contents returns a copy of the buffer bytes.
func (b *Buffer) Contents() []byte {
	b.dev.mu.Lock()
	defer b.dev.mu.Unlock()
	return slices.Clone(b.data)
}

func (b *Buffer) Size() uint64              { return uint64(len(b.data)) }
func (b *Buffer) Usage() device.BufferUsage { return b.usage }

func (b *Buffer) Release() { b.dev.release(b) }

func (b *Buffer) markReleased() { b.released = true }

// Image is the fake image handle. Uploaded layers are kept in memory.
type Image struct {
	dev      *Device
	desc     device.ImageDescriptor
	layers   [][]byte
	released bool
}

var _ device.Image = &Image{}

// Layer returns a copy of the pixels written to a layer, nil if never written.
func (i *Image) Layer(layer uint32) []byte {
	i.dev.mu.Lock()
	defer i.dev.mu.Unlock()
	if int(layer) >= len(i.layers) {
		return nil
	}
	return slices.Clone(i.layers[layer])
}

func (i *Image) Descriptor() device.ImageDescriptor { return i.desc }

func (i *Image) Release() { i.dev.release(i) }

func (i *Image) markReleased() { i.released = true }

// Sampler is the fake sampler handle.
type Sampler struct {
	dev      *Device
	desc     device.SamplerDescriptor
	released bool
}

var _ device.Sampler = &Sampler{}

// Descriptor returns the creation descriptor.
func (s *Sampler) Descriptor() device.SamplerDescriptor { return s.desc }

func (s *Sampler) Release() { s.dev.release(s) }

func (s *Sampler) markReleased() { s.released = true }

// DescriptorSet is the fake descriptor set handle.
type DescriptorSet struct {
	dev      *Device
	layout   device.DescriptorLayout
	bindings []device.Binding
	released bool
}

var _ device.DescriptorSet = &DescriptorSet{}

// Bindings returns the bindings of the last successful update.
func (s *DescriptorSet) Bindings() []device.Binding {
	s.dev.mu.Lock()
	defer s.dev.mu.Unlock()
	return slices.Clone(s.bindings)
}

func (s *DescriptorSet) Layout() device.DescriptorLayout { return s.layout }

func (s *DescriptorSet) Release() { s.dev.release(s) }

func (s *DescriptorSet) markReleased() { s.released = true }

// Pipeline is the fake pipeline handle.
type Pipeline struct {
	dev      *Device
	desc     pipeline.Pipeline
	layout   device.DescriptorLayout
	released bool
}

var _ device.PipelineHandle = &Pipeline{}

// Description returns the pipeline description the handle was created from.
func (p *Pipeline) Description() pipeline.Pipeline { return p.desc }

// Layout returns the descriptor layout the pipeline was created against.
func (p *Pipeline) Layout() device.DescriptorLayout { return p.layout }

func (p *Pipeline) Key() string { return p.desc.PipelineKey() }

func (p *Pipeline) Release() { p.dev.release(p) }

func (p *Pipeline) markReleased() { p.released = true }
