package surface

import (
	"github.com/Carmen-Shannon/oxy-gpu/gpu/backend"
	"github.com/cogentcore/webgpu/wgpu"
)

// WindowOption is a functional option for configuring a Window.
type WindowOption func(w *glfwWindow)

// WithTitle sets the window title.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowOption: option function to apply
func WithTitle(title string) WindowOption {
	return func(w *glfwWindow) {
		w.title = title
	}
}

// WithWidth sets the initial window width.
//
// Parameters:
//   - width: initial width in pixels
//
// Returns:
//   - WindowOption: option function to apply
func WithWidth(width int) WindowOption {
	return func(w *glfwWindow) {
		w.width = width
	}
}

// WithHeight sets the initial window height.
//
// Parameters:
//   - height: initial height in pixels
//
// Returns:
//   - WindowOption: option function to apply
func WithHeight(height int) WindowOption {
	return func(w *glfwWindow) {
		w.height = height
	}
}

// StateOption is a functional option for configuring a State.
type StateOption func(s *State)

// WithPresentMode sets the surface present mode. The default is wgpu.PresentModeFifo.
//
// Parameters:
//   - mode: the present mode
//
// Returns:
//   - StateOption: option function to apply
func WithPresentMode(mode wgpu.PresentMode) StateOption {
	return func(s *State) {
		s.presentMode = mode
	}
}

// WithBackendOptions passes options through to backend.NewWGPUBackend.
//
// Parameters:
//   - options: the backend options
//
// Returns:
//   - StateOption: option function to apply
func WithBackendOptions(options ...backend.WGPUBackendOption) StateOption {
	return func(s *State) {
		s.backendOptions = append(s.backendOptions, options...)
	}
}
