package surface

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/gpu/backend"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrNoSurface is returned when the backend was created without a surface.
	ErrNoSurface = errors.New("surface: backend has no surface")

	// ErrFrameInFlight is returned by BeginFrame while the previous frame is unfinished.
	ErrFrameInFlight = errors.New("surface: previous frame not yet finished")
)

// Frame is one acquired surface image plus the encoder recording into it.
type Frame struct {
	Encoder        *wgpu.CommandEncoder
	SurfaceTexture *wgpu.Texture
	View           *wgpu.TextureView
}

func (f *Frame) release() {
	if f.Encoder != nil {
		f.Encoder.Release()
	}
	if f.View != nil {
		f.View.Release()
	}
	if f.SurfaceTexture != nil {
		f.SurfaceTexture.Release()
	}
}

// State owns a backend acquired for a window's surface and the surface configuration.
// It must be used from the goroutine that created it.
type State struct {
	presentMode    wgpu.PresentMode
	backendOptions []backend.WGPUBackendOption

	backend backend.WGPUBackend
	config  wgpu.SurfaceConfiguration
	frame   *Frame
}

// NewState acquires a device compatible with win and configures its surface at the window's
// framebuffer size. RGBA8Unorm is used when the surface supports it.
//
// Parameters:
//   - win: the window to present to
//   - options: functional options to configure the state
//
// Returns:
//   - *State: the configured state
//   - error: an error if the backend could not be acquired
func NewState(win Window, options ...StateOption) (*State, error) {
	s := &State{presentMode: wgpu.PresentModeFifo}
	for _, opt := range options {
		opt(s)
	}

	opts := append([]backend.WGPUBackendOption{backend.WithSurfaceDescriptor(win.SurfaceDescriptor())}, s.backendOptions...)
	b, err := backend.NewWGPUBackend(opts...)
	if err != nil {
		return nil, fmt.Errorf("surface: %w", err)
	}
	if b.Surface() == nil {
		b.Release()
		return nil, ErrNoSurface
	}
	s.backend = b

	caps := b.Surface().GetCapabilities(b.Adapter())
	format := chooseFormat(caps.Formats)
	if format != wgpu.TextureFormatRGBA8Unorm {
		common.Logger().Info("surface: RGBA8Unorm unsupported, using first surface format", "format", format)
	}

	s.config = wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(win.Width()),
		Height:      uint32(win.Height()),
		PresentMode: s.presentMode,
		AlphaMode:   chooseAlphaMode(caps.AlphaModes),
	}
	s.Reconfigure()
	return s, nil
}

// chooseFormat prefers RGBA8Unorm and otherwise takes the first supported format.
func chooseFormat(formats []wgpu.TextureFormat) wgpu.TextureFormat {
	if slices.Contains(formats, wgpu.TextureFormatRGBA8Unorm) || len(formats) == 0 {
		return wgpu.TextureFormatRGBA8Unorm
	}
	return formats[0]
}

// chooseAlphaMode picks the first supported alpha mode, or Auto when the
// surface reports none.
func chooseAlphaMode(modes []wgpu.CompositeAlphaMode) wgpu.CompositeAlphaMode {
	if len(modes) == 0 {
		return wgpu.CompositeAlphaModeAuto
	}
	return modes[0]
}

// Backend returns the backend owning the device and queue.
func (s *State) Backend() backend.WGPUBackend {
	return s.backend
}

// Format returns the configured surface format.
func (s *State) Format() wgpu.TextureFormat {
	return s.config.Format
}

// Size returns the configured surface size in pixels.
func (s *State) Size() (width, height uint32) {
	return s.config.Width, s.config.Height
}

// Reconfigure applies the current configuration to the surface.
func (s *State) Reconfigure() {
	s.backend.Surface().Configure(s.backend.Adapter(), s.backend.RawDevice(), &s.config)
}

// Resize reconfigures the surface for a new framebuffer size. A zero dimension, as reported
// for a minimized window, is ignored.
//
// Parameters:
//   - width: the new width in pixels
//   - height: the new height in pixels
//
// Returns:
//   - bool: true if the surface was reconfigured
func (s *State) Resize(width, height int) bool {
	if !resizable(width, height) {
		return false
	}
	s.config.Width = uint32(width)
	s.config.Height = uint32(height)
	s.Reconfigure()
	return true
}

func resizable(width, height int) bool {
	return width > 0 && height > 0
}

// BeginFrame acquires the next surface image and starts a frame encoder.
//
// Returns:
//   - *Frame: the acquired frame
//   - error: ErrFrameInFlight, or an error acquiring the image or encoder
func (s *State) BeginFrame() (*Frame, error) {
	if s.frame != nil {
		return nil, ErrFrameInFlight
	}

	surfaceTexture, err := s.backend.Surface().GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("surface: acquire image: %w", err)
	}
	f := &Frame{SurfaceTexture: surfaceTexture}

	f.View, err = surfaceTexture.CreateView(nil)
	if err != nil {
		f.release()
		return nil, fmt.Errorf("surface: create view: %w", err)
	}

	f.Encoder, err = s.backend.RawDevice().CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "Frame Encoder"})
	if err != nil {
		f.release()
		return nil, fmt.Errorf("surface: create encoder: %w", err)
	}

	s.frame = f
	return f, nil
}

// FinishFrame submits the frame's commands and presents the surface image.
//
// Parameters:
//   - f: the frame returned by BeginFrame
//
// Returns:
//   - error: an error if f is not the current frame or its commands could not be finished
func (s *State) FinishFrame(f *Frame) error {
	if f == nil || f != s.frame {
		return fmt.Errorf("surface: frame is not the current frame")
	}
	s.frame = nil
	defer f.release()

	commandBuffer, err := f.Encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("surface: finish frame: %w", err)
	}
	defer commandBuffer.Release()

	s.backend.RawQueue().Submit(commandBuffer)
	s.backend.Surface().Present()
	return nil
}

// Release frees the in-flight frame, if any, and the backend.
func (s *State) Release() {
	if s.frame != nil {
		s.frame.release()
		s.frame = nil
	}
	if s.backend != nil {
		s.backend.Release()
		s.backend = nil
	}
}
