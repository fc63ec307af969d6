// Package backend defines the device, queue and command encoder collaborators the oxy-gpu
// helpers are written against, along with a WebGPU implementation of them.
//
// Resource handles and most descriptor types are the cogentcore/webgpu types themselves.
// Bind group descriptors are widened here so they can describe fixed-size resource arrays,
// which the plain WebGPU descriptors cannot.
package backend

import "github.com/cogentcore/webgpu/wgpu"

// Device is the subset of a GPU device the helpers need: resource creation, validation
// error scopes and completion polling.
//
// Creation calls return immediately. Validation of the created object may complete later
// inside the device; wrap a call in PushErrorScope/PopErrorScope to observe it synchronously.
type Device interface {
	// CreateBindGroupLayout creates a bind group layout from the descriptor.
	//
	// Parameters:
	//   - desc: the layout descriptor, entries ordered by binding index
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the created layout
	//   - error: an error if the device rejected the descriptor
	CreateBindGroupLayout(desc *BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error)

	// CreateBindGroup creates a bind group against desc.Layout.
	//
	// Parameters:
	//   - desc: the group descriptor, entries ordered by binding index
	//
	// Returns:
	//   - *wgpu.BindGroup: the created group
	//   - error: an error if the device rejected the descriptor
	CreateBindGroup(desc *BindGroupDescriptor) (*wgpu.BindGroup, error)

	// CreateShaderModule compiles a shader module.
	//
	// Parameters:
	//   - desc: the module descriptor holding WGSL or SPIR-V code
	//
	// Returns:
	//   - *wgpu.ShaderModule: the compiled module
	//   - error: an error if compilation failed
	CreateShaderModule(desc *wgpu.ShaderModuleDescriptor) (*wgpu.ShaderModule, error)

	// CreateTexture allocates a texture.
	//
	// Parameters:
	//   - desc: the texture descriptor
	//
	// Returns:
	//   - *wgpu.Texture: the created texture
	//   - error: an error if the device rejected the descriptor
	CreateTexture(desc *wgpu.TextureDescriptor) (*wgpu.Texture, error)

	// CreateBuffer allocates a buffer.
	//
	// Parameters:
	//   - desc: the buffer descriptor
	//
	// Returns:
	//   - *wgpu.Buffer: the created buffer
	//   - error: an error if the device rejected the descriptor
	CreateBuffer(desc *wgpu.BufferDescriptor) (*wgpu.Buffer, error)

	// CreateCommandEncoder starts a new command encoder.
	//
	// Parameters:
	//   - label: a debug label for the encoder
	//
	// Returns:
	//   - CommandEncoder: the encoder
	//   - error: an error if the encoder could not be created
	CreateCommandEncoder(label string) (CommandEncoder, error)

	// PushErrorScope opens a scope that captures errors matching filter.
	//
	// Parameters:
	//   - filter: the class of errors the scope captures
	PushErrorScope(filter ErrorFilter)

	// PopErrorScope closes the innermost scope, blocking until its result is available.
	//
	// Returns:
	//   - error: the first *GPUError captured by the scope, ErrNoErrorScope if no scope is open, or nil
	PopErrorScope() error

	// Poll processes outstanding device work. With wait set it blocks until the queue is
	// empty; there is no timeout.
	//
	// Parameters:
	//   - wait: whether to block until all submitted work completes
	//
	// Returns:
	//   - bool: true if the queue is empty
	Poll(wait bool) bool
}

// Queue is the subset of a GPU queue the helpers need.
type Queue interface {
	// WriteBuffer copies data into buffer at offset.
	//
	// Parameters:
	//   - buffer: the destination buffer
	//   - offset: the byte offset into the buffer
	//   - data: the bytes to write
	//
	// Returns:
	//   - error: an error if the write was rejected
	WriteBuffer(buffer *wgpu.Buffer, offset uint64, data []byte) error

	// WriteTexture copies data into a texture region.
	//
	// Parameters:
	//   - destination: the texture, mip level, origin and aspect to write
	//   - data: the linear source bytes
	//   - layout: how data is laid out in rows and images
	//   - size: the extent of the region to write
	//
	// Returns:
	//   - error: an error if the write was rejected
	WriteTexture(destination *wgpu.ImageCopyTexture, data []byte, layout *wgpu.TextureDataLayout, size *wgpu.Extent3D) error

	// Submit enqueues finished command buffers for execution.
	//
	// Parameters:
	//   - buffers: the command buffers to submit, in order
	Submit(buffers ...*wgpu.CommandBuffer)
}

// CommandEncoder records GPU commands for later submission.
type CommandEncoder interface {
	// CopyTextureToTexture records a texture region copy.
	//
	// Parameters:
	//   - source: the texture region to copy from
	//   - destination: the texture region to copy to
	//   - size: the extent of the copy
	//
	// Returns:
	//   - error: an error if the copy could not be recorded
	CopyTextureToTexture(source, destination *wgpu.ImageCopyTexture, size *wgpu.Extent3D) error

	// Finish ends recording.
	//
	// Parameters:
	//   - label: a debug label for the command buffer
	//
	// Returns:
	//   - *wgpu.CommandBuffer: the recorded commands
	//   - error: an error if recording failed
	Finish(label string) (*wgpu.CommandBuffer, error)

	// Release frees the encoder.
	Release()
}
