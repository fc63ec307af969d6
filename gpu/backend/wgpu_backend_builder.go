package backend

import "github.com/cogentcore/webgpu/wgpu"

// WGPUBackendOption is a functional option applied to the backend during NewWGPUBackend.
type WGPUBackendOption func(*wgpuBackend)

// WithLabel sets the debug label of the requested device.
//
// Parameters:
//   - label: the device label
//
// Returns:
//   - WGPUBackendOption: a function that applies the label to the backend
func WithLabel(label string) WGPUBackendOption {
	return func(b *wgpuBackend) {
		b.label = label
	}
}

// WithForceFallbackAdapter forces a CPU/software adapter instead of hardware acceleration.
// This requires a software ICD to be installed (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the fallback adapter
//
// Returns:
//   - WGPUBackendOption: a function that applies the option to the backend
func WithForceFallbackAdapter(force bool) WGPUBackendOption {
	return func(b *wgpuBackend) {
		b.forceFallbackAdapter = force
	}
}

// WithSurfaceDescriptor creates a presentation surface and selects an adapter compatible with it.
//
// Parameters:
//   - desc: the platform surface descriptor, e.g. from wgpuglfw.GetSurfaceDescriptor
//
// Returns:
//   - WGPUBackendOption: a function that applies the surface to the backend
func WithSurfaceDescriptor(desc *wgpu.SurfaceDescriptor) WGPUBackendOption {
	return func(b *wgpuBackend) {
		b.surfaceDescriptor = desc
	}
}

// WithMaxBindGroups raises the device's MaxBindGroups limit. Values below the WebGPU default are ignored.
//
// Parameters:
//   - n: the required number of bind groups
//
// Returns:
//   - WGPUBackendOption: a function that applies the limit to the backend
func WithMaxBindGroups(n uint32) WGPUBackendOption {
	return func(b *wgpuBackend) {
		b.maxBindGroups = n
	}
}
