// Package device defines the graphics device contract the grid renderer is written against.
// A Device owns every GPU object it hands out; handles are released through their own Release
// method or all at once by Device.Release.
package device

import "github.com/Carmen-Shannon/oxy-grid/engine/renderer/pipeline"

// Buffer is a device buffer handle.
type Buffer interface {
	// Size returns the buffer size in bytes.
	//
	// Returns:
	//   - uint64: the size requested at creation
	Size() uint64

	// Usage returns the usage flags the buffer was created with.
	//
	// Returns:
	//   - BufferUsage: the usage flags
	Usage() BufferUsage

	// Release frees the buffer. Releasing twice is a no-op.
	Release()
}

// Image is a device image handle, a 2D texture or a layered 2D texture.
type Image interface {
	// Descriptor returns the descriptor the image was created with.
	//
	// Returns:
	//   - ImageDescriptor: the creation descriptor
	Descriptor() ImageDescriptor

	// Release frees the image. Releasing twice is a no-op.
	Release()
}

// Sampler is a device sampler handle.
type Sampler interface {
	// Release frees the sampler. Releasing twice is a no-op.
	Release()
}

// DescriptorSet is a set of resources bound together for a draw.
type DescriptorSet interface {
	// Layout returns the layout the set was allocated with.
	//
	// Returns:
	//   - DescriptorLayout: the allocation layout
	Layout() DescriptorLayout

	// Release frees the set. Releasing twice is a no-op.
	Release()
}

// PipelineHandle is a compiled pipeline variant.
type PipelineHandle interface {
	// Key returns the key of the pipeline description it was created from.
	//
	// Returns:
	//   - string: the pipeline key
	Key() string

	// Release frees the pipeline. Releasing twice is a no-op.
	Release()
}

// Device is the graphics device wrapper consumed by the grid renderer and texture registry.
// Resource creation is safe from any goroutine; frame recording (BeginFrame through Present)
// must happen on a single goroutine.
type Device interface {
	// Capabilities reports the device limits relevant to texture binding.
	//
	// Returns:
	//   - Capabilities: the device limits
	Capabilities() Capabilities

	// CreateBuffer allocates a buffer.
	//
	// Parameters:
	//   - label: a debug label
	//   - size: the size in bytes
	//   - usage: how the buffer will be used
	//
	// Returns:
	//   - Buffer: the new buffer
	//   - error: ErrDeviceResourceExhausted (wrapped) if the allocation fails
	CreateBuffer(label string, size uint64, usage BufferUsage) (Buffer, error)

	// WriteBuffer copies data into a buffer at the given offset. The write is ordered before any
	// draw recorded after it.
	//
	// Parameters:
	//   - buf: the destination buffer
	//   - offset: the byte offset into buf
	//   - data: the bytes to copy
	//
	// Returns:
	//   - error: ErrInvalidHandle or an out of range error
	WriteBuffer(buf Buffer, offset uint64, data []byte) error

	// CreateImage allocates an image.
	//
	// Parameters:
	//   - desc: the image dimensions, layer count and format
	//
	// Returns:
	//   - Image: the new image
	//   - error: ErrDeviceResourceExhausted (wrapped) if the allocation fails
	CreateImage(desc ImageDescriptor) (Image, error)

	// WriteImage uploads one layer of pixels.
	//
	// Parameters:
	//   - img: the destination image
	//   - layer: the array layer, 0 for plain images
	//   - pixels: tightly packed texels, exactly one layer in size
	//
	// Returns:
	//   - error: ErrInvalidHandle or a size error
	WriteImage(img Image, layer uint32, pixels []byte) error

	// CreateSampler creates a sampler.
	//
	// Parameters:
	//   - desc: the sampler descriptor
	//
	// Returns:
	//   - Sampler: the new sampler
	//   - error: ErrDeviceResourceExhausted (wrapped) if creation fails
	CreateSampler(desc SamplerDescriptor) (Sampler, error)

	// AllocateDescriptorSet allocates an unbound descriptor set for a layout.
	//
	// Parameters:
	//   - layout: the layout of the set
	//
	// Returns:
	//   - DescriptorSet: the new set
	//   - error: ErrInvalidLayout or ErrDeviceResourceExhausted (wrapped)
	AllocateDescriptorSet(layout DescriptorLayout) (DescriptorSet, error)

	// UpdateDescriptorSet binds resources to every entry of a set.
	//
	// Parameters:
	//   - set: the set to update
	//   - bindings: one binding per layout entry
	//
	// Returns:
	//   - error: ErrInvalidLayout (wrapped) if the bindings do not match the layout
	UpdateDescriptorSet(set DescriptorSet, bindings []Binding) error

	// CreatePipeline compiles a pipeline variant against a descriptor layout.
	//
	// Parameters:
	//   - p: the pipeline description, including its shader pair
	//   - layout: the layout of the descriptor set bound with the pipeline
	//
	// Returns:
	//   - PipelineHandle: the compiled pipeline
	//   - error: ErrShaderCompileFailure or ErrDeviceResourceExhausted (wrapped)
	CreatePipeline(p pipeline.Pipeline, layout DescriptorLayout) (PipelineHandle, error)

	// BeginFrame acquires the next surface image and starts recording.
	//
	// Returns:
	//   - error: any error acquiring the surface image
	BeginFrame() error

	// RecordDraw records one draw: bind the pipeline and descriptor set, push the constants, bind the
	// vertex buffers in slot order and draw vertexCount vertices.
	//
	// Parameters:
	//   - p: the pipeline to bind
	//   - set: the descriptor set to bind
	//   - pushConstants: bytes pushed with the draw, at most Capabilities().MaxPushConstantSize
	//   - vertexCount: the number of vertices to draw
	//   - vertexBuffers: vertex buffers bound to slots 0..n-1
	//
	// Returns:
	//   - error: ErrNoFrame if no frame was begun, ErrInvalidHandle, or a push constant size error
	RecordDraw(p PipelineHandle, set DescriptorSet, pushConstants []byte, vertexCount uint32, vertexBuffers ...Buffer) error

	// EndFrame finishes recording and submits the frame. The frame's fence becomes CurrentFrame.
	//
	// Returns:
	//   - error: ErrNoFrame if no frame was begun, or a submission error
	EndFrame() error

	// Present shows the most recently submitted frame.
	Present()

	// CurrentFrame returns the fence that signals when the frame being recorded (or, between frames,
	// the last submitted frame) completes on the device.
	//
	// Returns:
	//   - Fence: the frame fence
	CurrentFrame() Fence

	// WaitFence blocks until the device has finished the frame identified by f.
	//
	// Parameters:
	//   - f: the fence to wait on, 0 returns immediately
	//
	// Returns:
	//   - error: any device error while waiting
	WaitFence(f Fence) error

	// Resize reconfigures the surface for a new framebuffer size.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// Release waits for the device to go idle and frees every object it created.
	Release()
}
