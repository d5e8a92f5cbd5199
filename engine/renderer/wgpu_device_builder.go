package renderer

import "github.com/cogentcore/webgpu/wgpu"

// WGPUDeviceBuilderOption is a functional option applied to a WebGPU device during NewWGPUDevice.
type WGPUDeviceBuilderOption func(*wgpuDevice)

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter
//
// Returns:
//   - WGPUDeviceBuilderOption: a function that applies the option
func WithForceSoftwareRenderer(force bool) WGPUDeviceBuilderOption {
	return func(d *wgpuDevice) {
		d.forceFallback = force
	}
}

// WithPresentMode sets the surface present mode.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - WGPUDeviceBuilderOption: a function that applies the option
func WithPresentMode(mode PresentMode) WGPUDeviceBuilderOption {
	return func(d *wgpuDevice) {
		switch mode {
		case PresentModeVSync:
			d.presentMode = wgpu.PresentModeFifo
		default:
			d.presentMode = wgpu.PresentModeImmediate
		}
	}
}

// WithMSAA sets the multisample anti-aliasing sample count. When not specified, the default is MSAA4x.
//
// Parameters:
//   - count: the MSAASampleCount to use
//
// Returns:
//   - WGPUDeviceBuilderOption: a function that applies the option
func WithMSAA(count MSAASampleCount) WGPUDeviceBuilderOption {
	return func(d *wgpuDevice) {
		d.sampleCount = max(count, MSAAOff)
	}
}

// WithClearColor sets the color the frame is cleared to before any layer draws.
func WithClearColor(r, g, b, a float64) WGPUDeviceBuilderOption {
	return func(d *wgpuDevice) {
		d.clearColor = wgpu.Color{R: r, G: g, B: b, A: a}
	}
}

// WithMaxDrawsPerFrame sets how many draws one frame may record. Each draw uses one 256 byte slot
// of the push constant ring.
func WithMaxDrawsPerFrame(n int) WGPUDeviceBuilderOption {
	return func(d *wgpuDevice) {
		if n > 0 {
			d.maxDrawsPerFrame = n
		}
	}
}
