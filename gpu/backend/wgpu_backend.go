package backend

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// WGPUBackend owns a WebGPU instance, adapter, device and queue, and exposes them through
// the Device and Queue interfaces.
type WGPUBackend interface {
	// Device returns the device collaborator.
	//
	// Returns:
	//   - Device: the device wrapper
	Device() Device

	// Queue returns the queue collaborator.
	//
	// Returns:
	//   - Queue: the queue wrapper
	Queue() Queue

	// Instance returns the raw WebGPU instance.
	Instance() *wgpu.Instance

	// Adapter returns the raw WebGPU adapter.
	Adapter() *wgpu.Adapter

	// Surface returns the surface created from WithSurfaceDescriptor, or nil when headless.
	Surface() *wgpu.Surface

	// RawDevice returns the raw WebGPU device.
	RawDevice() *wgpu.Device

	// RawQueue returns the raw WebGPU queue.
	RawQueue() *wgpu.Queue

	// Release frees every object owned by the backend.
	Release()
}

type wgpuBackend struct {
	label                string
	forceFallbackAdapter bool
	maxBindGroups        uint32
	surfaceDescriptor    *wgpu.SurfaceDescriptor

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpuDevice
	queue    *wgpuQueue
}

var _ WGPUBackend = &wgpuBackend{}

// NewWGPUBackend acquires an adapter, device and queue. The backend is headless unless a
// surface descriptor is supplied, in which case the adapter is chosen to be compatible with it.
// The calling goroutine is locked to its OS thread, as native windowing requires.
//
// Parameters:
//   - options: functional options configuring adapter and device selection
//
// Returns:
//   - WGPUBackend: the acquired backend
//   - error: an error if no adapter or device could be acquired
func NewWGPUBackend(options ...WGPUBackendOption) (WGPUBackend, error) {
	runtime.LockOSThread()

	b := &wgpuBackend{
		label:         "oxy-gpu device",
		maxBindGroups: 4,
	}
	for _, opt := range options {
		opt(b)
	}

	b.instance = wgpu.CreateInstance(nil)
	if b.surfaceDescriptor != nil {
		b.surface = b.instance.CreateSurface(b.surfaceDescriptor)
	}

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("backend: failed to request adapter: %w", err)
	}
	b.adapter = adapter

	limits := wgpu.DefaultLimits()
	if b.maxBindGroups > limits.MaxBindGroups {
		limits.MaxBindGroups = b.maxBindGroups
	}

	d, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: b.label,
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("backend: failed to request device: %w", err)
	}
	b.device = &wgpuDevice{device: d}
	b.queue = &wgpuQueue{queue: d.GetQueue(), device: b.device}

	return b, nil
}

func (b *wgpuBackend) Device() Device {
	return b.device
}

func (b *wgpuBackend) Queue() Queue {
	return b.queue
}

func (b *wgpuBackend) Instance() *wgpu.Instance {
	return b.instance
}

func (b *wgpuBackend) Adapter() *wgpu.Adapter {
	return b.adapter
}

func (b *wgpuBackend) Surface() *wgpu.Surface {
	return b.surface
}

func (b *wgpuBackend) RawDevice() *wgpu.Device {
	if b.device == nil {
		return nil
	}
	return b.device.device
}

func (b *wgpuBackend) RawQueue() *wgpu.Queue {
	if b.queue == nil {
		return nil
	}
	return b.queue.queue
}

func (b *wgpuBackend) Release() {
	if b.queue != nil {
		b.queue.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// wgpuDevice adapts a *wgpu.Device to Device.
//
// The cogentcore binding brackets every native creation call in its own error scope and
// returns the result as an ordinary error, so the scopes here collect those returned errors.
type wgpuDevice struct {
	mu     sync.Mutex
	device *wgpu.Device
	scopes ErrorScopes
}

var _ Device = &wgpuDevice{}

// capture records err in the innermost validation scope and returns it unchanged.
func (d *wgpuDevice) capture(err error) error {
	if err == nil {
		return nil
	}
	d.mu.Lock()
	d.scopes.Capture(ErrorFilterValidation, err.Error())
	d.mu.Unlock()
	return err
}

func (d *wgpuDevice) CreateBindGroupLayout(desc *BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	entries := make([]wgpu.BindGroupLayoutEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		if e.Count > 0 {
			return nil, fmt.Errorf("%w: arrayed layout entry at binding %d", ErrUnsupported, e.Binding)
		}
		entries[i] = e.BindGroupLayoutEntry
	}
	layout, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: entries,
	})
	return layout, d.capture(err)
}

func (d *wgpuDevice) CreateBindGroup(desc *BindGroupDescriptor) (*wgpu.BindGroup, error) {
	entries := make([]wgpu.BindGroupEntry, len(desc.Entries))
	for i, e := range desc.Entries {
		if e.IsArray() {
			return nil, fmt.Errorf("%w: arrayed group entry at binding %d", ErrUnsupported, e.Binding)
		}
		entries[i] = e.BindGroupEntry
	}
	group, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  desc.Layout,
		Entries: entries,
	})
	return group, d.capture(err)
}

func (d *wgpuDevice) CreateShaderModule(desc *wgpu.ShaderModuleDescriptor) (*wgpu.ShaderModule, error) {
	module, err := d.device.CreateShaderModule(desc)
	return module, d.capture(err)
}

func (d *wgpuDevice) CreateTexture(desc *wgpu.TextureDescriptor) (*wgpu.Texture, error) {
	tex, err := d.device.CreateTexture(desc)
	return tex, d.capture(err)
}

func (d *wgpuDevice) CreateBuffer(desc *wgpu.BufferDescriptor) (*wgpu.Buffer, error) {
	buf, err := d.device.CreateBuffer(desc)
	return buf, d.capture(err)
}

func (d *wgpuDevice) CreateCommandEncoder(label string) (CommandEncoder, error) {
	enc, err := d.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, d.capture(err)
	}
	return &wgpuCommandEncoder{encoder: enc, device: d}, nil
}

func (d *wgpuDevice) PushErrorScope(filter ErrorFilter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scopes.Push(filter)
}

func (d *wgpuDevice) PopErrorScope() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.scopes.Pop()
}

func (d *wgpuDevice) Poll(wait bool) bool {
	return d.device.Poll(wait, nil)
}

// wgpuQueue adapts a *wgpu.Queue to Queue.
// Write errors are recorded in the device's validation scope as well as returned.
type wgpuQueue struct {
	queue  *wgpu.Queue
	device *wgpuDevice
}

var _ Queue = &wgpuQueue{}

func (q *wgpuQueue) WriteBuffer(buffer *wgpu.Buffer, offset uint64, data []byte) error {
	return q.device.capture(q.queue.WriteBuffer(buffer, offset, data))
}

func (q *wgpuQueue) WriteTexture(destination *wgpu.ImageCopyTexture, data []byte, layout *wgpu.TextureDataLayout, size *wgpu.Extent3D) error {
	return q.device.capture(q.queue.WriteTexture(destination, data, layout, size))
}

func (q *wgpuQueue) Submit(buffers ...*wgpu.CommandBuffer) {
	q.queue.Submit(buffers...)
}

// wgpuCommandEncoder adapts a *wgpu.CommandEncoder to CommandEncoder.
type wgpuCommandEncoder struct {
	encoder *wgpu.CommandEncoder
	device  *wgpuDevice
}

var _ CommandEncoder = &wgpuCommandEncoder{}

func (e *wgpuCommandEncoder) CopyTextureToTexture(source, destination *wgpu.ImageCopyTexture, size *wgpu.Extent3D) error {
	return e.device.capture(e.encoder.CopyTextureToTexture(source, destination, size))
}

func (e *wgpuCommandEncoder) Finish(label string) (*wgpu.CommandBuffer, error) {
	buf, err := e.encoder.Finish(&wgpu.CommandBufferDescriptor{Label: label})
	if err != nil {
		return nil, e.device.capture(err)
	}
	return buf, nil
}

func (e *wgpuCommandEncoder) Release() {
	e.encoder.Release()
}
