// Package gputest provides in-memory Device, Queue and CommandEncoder implementations for
// exercising GPU helpers without a GPU. WGSL modules are validated with naga, and validation
// failures are reported through error scopes the way a real device reports them: the creation
// call itself succeeds and the error surfaces when the scope is popped.
package gputest

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-gpu/gpu/backend"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/naga"
)

// TextureWrite is a recorded Queue.WriteTexture call.
type TextureWrite struct {
	Destination wgpu.ImageCopyTexture
	Data        []byte
	Layout      wgpu.TextureDataLayout
	Size        wgpu.Extent3D
}

// BufferWrite is a recorded Queue.WriteBuffer call.
type BufferWrite struct {
	Buffer *wgpu.Buffer
	Offset uint64
	Data   []byte
}

// TextureCopy is a recorded CommandEncoder.CopyTextureToTexture call.
type TextureCopy struct {
	Source      wgpu.ImageCopyTexture
	Destination wgpu.ImageCopyTexture
	Size        wgpu.Extent3D
}

// Device is a recording fake of backend.Device.
type Device struct {
	mu     sync.Mutex
	scopes backend.ErrorScopes
	calls  int

	modules map[string]*wgpu.ShaderModule

	// Layouts holds every layout descriptor passed to CreateBindGroupLayout.
	Layouts []*backend.BindGroupLayoutDescriptor
	// Groups holds every group descriptor passed to CreateBindGroup.
	Groups []*backend.BindGroupDescriptor
	// Modules holds every shader module descriptor passed to CreateShaderModule.
	Modules []*wgpu.ShaderModuleDescriptor
	// Textures holds every texture descriptor passed to CreateTexture.
	Textures []*wgpu.TextureDescriptor
	// Buffers holds every buffer descriptor passed to CreateBuffer.
	Buffers []*wgpu.BufferDescriptor
	// Uncaptured holds validation errors raised while no matching scope was open.
	Uncaptured []string
	// Encoders holds every encoder handed out by CreateCommandEncoder.
	Encoders []*CommandEncoder
}

var _ backend.Device = &Device{}

// NewDevice returns an empty fake device.
func NewDevice() *Device {
	return &Device{modules: make(map[string]*wgpu.ShaderModule)}
}

// Calls returns the number of creation calls made against the device.
func (d *Device) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// ScopeDepth returns the number of open error scopes.
func (d *Device) ScopeDepth() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.scopes.Depth()
}

func (d *Device) report(message string) {
	if !d.scopes.Capture(backend.ErrorFilterValidation, message) {
		d.Uncaptured = append(d.Uncaptured, message)
	}
}

func (d *Device) CreateBindGroupLayout(desc *backend.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	d.Layouts = append(d.Layouts, desc)
	return &wgpu.BindGroupLayout{}, nil
}

func (d *Device) CreateBindGroup(desc *backend.BindGroupDescriptor) (*wgpu.BindGroup, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	d.Groups = append(d.Groups, desc)
	if desc.Layout == nil {
		d.report(fmt.Sprintf("bind group %q has no layout", desc.Label))
	}
	return &wgpu.BindGroup{}, nil
}

// CreateShaderModule validates WGSL code with naga. Identical code yields the same module handle.
func (d *Device) CreateShaderModule(desc *wgpu.ShaderModuleDescriptor) (*wgpu.ShaderModule, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	d.Modules = append(d.Modules, desc)

	var key string
	switch {
	case desc.WGSLDescriptor != nil:
		key = "wgsl:" + desc.WGSLDescriptor.Code
		if err := validateWGSL(desc.WGSLDescriptor.Code); err != nil {
			d.report(fmt.Sprintf("shader module %q: %v", desc.Label, err))
			return &wgpu.ShaderModule{}, nil
		}
	case desc.SPIRVDescriptor != nil:
		key = fmt.Sprintf("spirv:%v", desc.SPIRVDescriptor.Code)
	default:
		return nil, fmt.Errorf("gputest: shader module %q has no code", desc.Label)
	}

	if m, ok := d.modules[key]; ok {
		return m, nil
	}
	m := &wgpu.ShaderModule{}
	d.modules[key] = m
	return m, nil
}

func (d *Device) CreateTexture(desc *wgpu.TextureDescriptor) (*wgpu.Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	d.Textures = append(d.Textures, desc)
	return &wgpu.Texture{}, nil
}

func (d *Device) CreateBuffer(desc *wgpu.BufferDescriptor) (*wgpu.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	d.Buffers = append(d.Buffers, desc)
	return &wgpu.Buffer{}, nil
}

func (d *Device) CreateCommandEncoder(label string) (backend.CommandEncoder, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	enc := &CommandEncoder{Label: label}
	d.Encoders = append(d.Encoders, enc)
	return enc, nil
}

func (d *Device) PushErrorScope(filter backend.ErrorFilter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scopes.Push(filter)
}

func (d *Device) PopErrorScope() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.scopes.Pop()
}

func (d *Device) Poll(bool) bool {
	return true
}

// validateWGSL runs the naga front end over code.
func validateWGSL(code string) error {
	ast, err := naga.Parse(code)
	if err != nil {
		return err
	}
	_, err = naga.Lower(ast)
	return err
}

// Queue is a recording fake of backend.Queue.
type Queue struct {
	mu sync.Mutex

	// FailWritesAfter makes every WriteBuffer call after the first N fail. Negative disables failures.
	FailWritesAfter int

	TextureWrites []TextureWrite
	BufferWrites  []BufferWrite
	Submitted     []*wgpu.CommandBuffer
}

var _ backend.Queue = &Queue{}

// NewQueue returns an empty fake queue.
func NewQueue() *Queue {
	return &Queue{FailWritesAfter: -1}
}

// Writes returns the number of buffer and texture writes recorded.
func (q *Queue) Writes() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.TextureWrites) + len(q.BufferWrites)
}

func (q *Queue) WriteBuffer(buffer *wgpu.Buffer, offset uint64, data []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.FailWritesAfter >= 0 && len(q.BufferWrites) >= q.FailWritesAfter {
		return fmt.Errorf("gputest: buffer write %d rejected", len(q.BufferWrites))
	}
	q.BufferWrites = append(q.BufferWrites, BufferWrite{Buffer: buffer, Offset: offset, Data: bytes.Clone(data)})
	return nil
}

func (q *Queue) WriteTexture(destination *wgpu.ImageCopyTexture, data []byte, layout *wgpu.TextureDataLayout, size *wgpu.Extent3D) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.TextureWrites = append(q.TextureWrites, TextureWrite{
		Destination: *destination,
		Data:        bytes.Clone(data),
		Layout:      *layout,
		Size:        *size,
	})
	return nil
}

func (q *Queue) Submit(buffers ...*wgpu.CommandBuffer) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.Submitted = append(q.Submitted, buffers...)
}

// CommandEncoder is a recording fake of backend.CommandEncoder.
type CommandEncoder struct {
	Label    string
	Copies   []TextureCopy
	Finished bool
	Released bool
}

var _ backend.CommandEncoder = &CommandEncoder{}

func (e *CommandEncoder) CopyTextureToTexture(source, destination *wgpu.ImageCopyTexture, size *wgpu.Extent3D) error {
	e.Copies = append(e.Copies, TextureCopy{Source: *source, Destination: *destination, Size: *size})
	return nil
}

func (e *CommandEncoder) Finish(string) (*wgpu.CommandBuffer, error) {
	e.Finished = true
	return &wgpu.CommandBuffer{}, nil
}

func (e *CommandEncoder) Release() {
	e.Released = true
}
