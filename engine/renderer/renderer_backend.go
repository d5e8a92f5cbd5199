package renderer

// BackendType identifies the graphics API a renderer's device is created on.
type BackendType int

const (
	// BackendTypeWGPU creates a WebGPU device through wgpu-native.
	BackendTypeWGPU BackendType = iota
)

// PresentMode controls how frames are delivered to the display.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4; higher values are adapter-dependent.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// pushSlotSize is the stride of one draw's push constants in the emulation ring. It matches the
// WebGPU default minUniformBufferOffsetAlignment.
const pushSlotSize = 256

// defaultMaxDrawsPerFrame bounds the number of RecordDraw calls per frame, one push slot each.
const defaultMaxDrawsPerFrame = 64
