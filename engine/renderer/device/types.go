package device

import "fmt"

// Fence identifies a submitted frame. The zero Fence is always signaled.
type Fence uint64

// BufferUsage is a bit set describing how a buffer is used.
type BufferUsage uint32

const (
	BufferUsageUniform BufferUsage = 1 << iota
	BufferUsageVertex
	BufferUsageIndex
	BufferUsageCopyDst
)

// ImageFormat is the texel format of an image.
type ImageFormat int

const (
	ImageFormatRGBA8Unorm ImageFormat = iota
	ImageFormatRGBA8UnormSrgb
)

// BytesPerPixel returns the texel size of the format.
func (f ImageFormat) BytesPerPixel() int {
	return 4
}

// ImageDescriptor describes a 2D image or a layered 2D image.
type ImageDescriptor struct {
	Label  string
	Width  uint32
	Height uint32
	// Layers is the number of array layers, 1 for a plain 2D image.
	Layers uint32
	Format ImageFormat
	// Layered binds the image as a texture array even when Layers is 1.
	Layered bool
}

// ByteSize returns the size in bytes of one layer of the image.
func (d ImageDescriptor) ByteSize() int {
	return int(d.Width) * int(d.Height) * d.Format.BytesPerPixel()
}

// AddressMode selects how texture coordinates outside [0, 1] are resolved.
type AddressMode int

const (
	AddressModeClampToEdge AddressMode = iota
	AddressModeRepeat
	AddressModeMirrorRepeat
)

// FilterMode selects texel filtering.
type FilterMode int

const (
	FilterModeNearest FilterMode = iota
	FilterModeLinear
)

// SamplerDescriptor describes a texture sampler.
type SamplerDescriptor struct {
	Label        string
	AddressModeU AddressMode
	AddressModeV AddressMode
	MagFilter    FilterMode
	MinFilter    FilterMode
}

// BindingKind classifies one descriptor layout entry.
type BindingKind int

const (
	BindingKindUniformBuffer BindingKind = iota
	BindingKindSampler
	BindingKindTexture2D
	BindingKindTexture2DArray
)

// String returns the lowercase name of the binding kind.
func (k BindingKind) String() string {
	switch k {
	case BindingKindUniformBuffer:
		return "uniform"
	case BindingKindSampler:
		return "sampler"
	case BindingKindTexture2D:
		return "texture_2d"
	case BindingKindTexture2DArray:
		return "texture_2d_array"
	default:
		return fmt.Sprintf("BindingKind(%d)", int(k))
	}
}

// ShaderStage is a bit set of pipeline stages.
type ShaderStage uint32

const (
	ShaderStageVertex ShaderStage = 1 << iota
	ShaderStageFragment
)

// LayoutEntry is one binding slot of a descriptor layout.
type LayoutEntry struct {
	Binding uint32
	Kind    BindingKind
	// Count is the number of array elements. Values above 1 declare a descriptor array.
	Count      uint32
	Visibility ShaderStage
	// MinSize is the minimum buffer size for uniform entries, 0 for no check.
	MinSize uint64
}

// DescriptorLayout describes the resources bound by one descriptor set.
type DescriptorLayout struct {
	Label   string
	Entries []LayoutEntry
}

// Entry returns the entry for the given binding number.
func (l DescriptorLayout) Entry(binding uint32) (LayoutEntry, bool) {
	for _, e := range l.Entries {
		if e.Binding == binding {
			return e, true
		}
	}
	return LayoutEntry{}, false
}

// Validate checks that binding numbers are unique, array counts are positive, and that only
// plain textures are declared as arrays.
//
// Returns:
//   - error: ErrInvalidLayout (wrapped) describing the first problem found
func (l DescriptorLayout) Validate() error {
	seen := make(map[uint32]bool, len(l.Entries))
	for _, e := range l.Entries {
		if seen[e.Binding] {
			return fmt.Errorf("%w: %s: duplicate binding %d", ErrInvalidLayout, l.Label, e.Binding)
		}
		seen[e.Binding] = true
		if e.Count == 0 {
			return fmt.Errorf("%w: %s: binding %d has zero count", ErrInvalidLayout, l.Label, e.Binding)
		}
		if e.Count > 1 && e.Kind != BindingKindTexture2D {
			return fmt.Errorf("%w: %s: binding %d: %s cannot be an array", ErrInvalidLayout, l.Label, e.Binding, e.Kind)
		}
	}
	return nil
}

// Binding assigns resources to one layout entry of a descriptor set.
type Binding struct {
	Binding uint32

	// Buffer, Offset and Size are used by uniform entries. A zero Size binds the rest of the buffer.
	Buffer Buffer
	Offset uint64
	Size   uint64

	// Images are used by texture entries, one per array element.
	Images []Image

	Sampler Sampler
}

// CheckBindings validates a binding list against a layout: every entry must be bound exactly once
// with the resource kind and element count the layout declares.
//
// Parameters:
//   - layout: the layout the descriptor set was allocated with
//   - bindings: the bindings to apply
//
// Returns:
//   - error: ErrInvalidLayout (wrapped) describing the first mismatch
func CheckBindings(layout DescriptorLayout, bindings []Binding) error {
	bound := make(map[uint32]bool, len(bindings))
	for _, b := range bindings {
		e, ok := layout.Entry(b.Binding)
		if !ok {
			return fmt.Errorf("%w: %s: binding %d not in layout", ErrInvalidLayout, layout.Label, b.Binding)
		}
		if bound[b.Binding] {
			return fmt.Errorf("%w: %s: binding %d bound twice", ErrInvalidLayout, layout.Label, b.Binding)
		}
		bound[b.Binding] = true

		switch e.Kind {
		case BindingKindUniformBuffer:
			if b.Buffer == nil {
				return fmt.Errorf("%w: %s: binding %d needs a buffer", ErrInvalidLayout, layout.Label, b.Binding)
			}
			size := b.Size
			if size == 0 {
				size = b.Buffer.Size() - b.Offset
			}
			if e.MinSize > 0 && size < e.MinSize {
				return fmt.Errorf("%w: %s: binding %d buffer range %d smaller than %d", ErrInvalidLayout, layout.Label, b.Binding, size, e.MinSize)
			}
		case BindingKindSampler:
			if b.Sampler == nil {
				return fmt.Errorf("%w: %s: binding %d needs a sampler", ErrInvalidLayout, layout.Label, b.Binding)
			}
		case BindingKindTexture2D, BindingKindTexture2DArray:
			if uint32(len(b.Images)) != e.Count {
				return fmt.Errorf("%w: %s: binding %d expects %d images, got %d", ErrInvalidLayout, layout.Label, b.Binding, e.Count, len(b.Images))
			}
			for i, img := range b.Images {
				if img == nil {
					return fmt.Errorf("%w: %s: binding %d image %d is nil", ErrInvalidLayout, layout.Label, b.Binding, i)
				}
				if layered := img.Descriptor().Layered; layered != (e.Kind == BindingKindTexture2DArray) {
					return fmt.Errorf("%w: %s: binding %d image %d layered=%t does not match %s", ErrInvalidLayout, layout.Label, b.Binding, i, layered, e.Kind)
				}
			}
		}
	}
	for _, e := range layout.Entries {
		if !bound[e.Binding] {
			return fmt.Errorf("%w: %s: binding %d left unbound", ErrInvalidLayout, layout.Label, e.Binding)
		}
	}
	return nil
}

// Capabilities reports the limits the grid renderer selects its binding strategy against.
type Capabilities struct {
	// NonUniformIndexing reports support for divergent indexing into a texture array per fragment.
	NonUniformIndexing       bool
	MaxDescriptorArrayLength uint32
	MaxTextureArrayLayers    uint32
	MaxUniformBufferSize     uint64
	MaxPushConstantSize      uint32
}

// PushConstantGroup is the bind group index shaders read push constants from on devices that
// emulate them with a uniform buffer. Descriptor sets are always bound at group 0.
const PushConstantGroup = 1
