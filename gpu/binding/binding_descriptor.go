// Package binding builds matched bind group layouts and bind groups from a single ordered list
// of binding declarations, so layout entry i and group entry i always describe the same slot.
package binding

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrArityMismatch is returned when a declared array length does not match the number of
// resources supplied, or when an array length of zero is declared.
var ErrArityMismatch = errors.New("binding: arity does not match resource count")

// Kind identifies the resource class of a binding slot.
type Kind int

const (
	// KindUniformBuffer binds a whole buffer as a uniform buffer.
	KindUniformBuffer Kind = iota

	// KindStorageBuffer binds a whole buffer as a read-only or read-write storage buffer.
	KindStorageBuffer

	// KindTexture binds one or more sampled texture views.
	KindTexture

	// KindStorageTexture binds one or more storage texture views.
	KindStorageTexture

	// KindSampler binds one or more samplers.
	KindSampler
)

func (k Kind) String() string {
	switch k {
	case KindUniformBuffer:
		return "uniform buffer"
	case KindStorageBuffer:
		return "storage buffer"
	case KindTexture:
		return "texture"
	case KindStorageTexture:
		return "storage texture"
	case KindSampler:
		return "sampler"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// AllStages is the visibility given to every generated layout entry.
const AllStages = wgpu.ShaderStageVertex | wgpu.ShaderStageFragment | wgpu.ShaderStageCompute

// ArityError describes a descriptor whose declared array length disagrees with its resources.
type ArityError struct {
	// Index is the position of the offending descriptor in the declaration list, or -1 when validated alone.
	Index int
	// Kind is the binding kind of the descriptor.
	Kind Kind
	// Declared is the declared array length; nil for a single resource.
	Declared *uint32
	// Supplied is the number of resource handles supplied.
	Supplied int
}

func (e *ArityError) Error() string {
	declared := "single"
	if e.Declared != nil {
		declared = fmt.Sprintf("array of %d", *e.Declared)
	}
	return fmt.Sprintf("binding: %s at index %d declared %s but %d resources supplied", e.Kind, e.Index, declared, e.Supplied)
}

func (e *ArityError) Unwrap() error {
	return ErrArityMismatch
}

// Descriptor declares one binding slot: its kind, the layout fields for that kind, an optional
// array length and the resources it binds. Resources are borrowed; the descriptor never
// releases them.
type Descriptor struct {
	Kind Kind

	// Only the layout matching Kind is read.
	Buffer         wgpu.BufferBindingLayout
	Texture        wgpu.TextureBindingLayout
	StorageTexture wgpu.StorageTextureBindingLayout
	Sampler        wgpu.SamplerBindingLayout

	// Count is the fixed array length, or nil for a single resource.
	Count *uint32

	Resource Resource
}

// Uniform declares a whole-buffer uniform binding without dynamic offset or minimum size.
//
// Parameters:
//   - buf: the buffer to bind
//
// Returns:
//   - Descriptor: the uniform buffer declaration
func Uniform(buf *wgpu.Buffer) Descriptor {
	return Descriptor{
		Kind: KindUniformBuffer,
		Buffer: wgpu.BufferBindingLayout{
			Type:             wgpu.BufferBindingTypeUniform,
			HasDynamicOffset: false,
			MinBindingSize:   0,
		},
		Resource: BufferResource(buf),
	}
}

// Storage declares a whole-buffer storage binding.
//
// Parameters:
//   - buf: the buffer to bind
//   - readOnly: true for a read-only storage buffer, false for read-write
//
// Returns:
//   - Descriptor: the storage buffer declaration
func Storage(buf *wgpu.Buffer, readOnly bool) Descriptor {
	bindingType := wgpu.BufferBindingTypeStorage
	if readOnly {
		bindingType = wgpu.BufferBindingTypeReadOnlyStorage
	}
	return Descriptor{
		Kind: KindStorageBuffer,
		Buffer: wgpu.BufferBindingLayout{
			Type: bindingType,
		},
		Resource: BufferResource(buf),
	}
}

// Texture declares a single sampled texture view.
//
// Parameters:
//   - view: the texture view to bind
//   - sampleType: the sample type the shader declares
//   - viewDimension: the view dimension the shader declares
//
// Returns:
//   - Descriptor: the texture declaration
func Texture(view *wgpu.TextureView, sampleType wgpu.TextureSampleType, viewDimension wgpu.TextureViewDimension) Descriptor {
	return Descriptor{
		Kind: KindTexture,
		Texture: wgpu.TextureBindingLayout{
			SampleType:    sampleType,
			ViewDimension: viewDimension,
		},
		Resource: TextureViewResource(view),
	}
}

// TextureArray declares a fixed-size array of sampled texture views, all with the same
// sample type and view dimension. The array length is len(views).
//
// Parameters:
//   - views: the texture views to bind, in array order
//   - sampleType: the sample type the shader declares
//   - viewDimension: the view dimension the shader declares
//
// Returns:
//   - Descriptor: the texture array declaration
func TextureArray(views []*wgpu.TextureView, sampleType wgpu.TextureSampleType, viewDimension wgpu.TextureViewDimension) Descriptor {
	d := Texture(nil, sampleType, viewDimension)
	d.Count = arity(len(views))
	d.Resource = TextureViewArrayResource(views)
	return d
}

// StorageTexture declares a single storage texture view.
//
// Parameters:
//   - view: the texture view to bind
//   - access: read-only, write-only or read-write
//   - format: the texel format the shader declares
//   - viewDimension: the view dimension the shader declares
//
// Returns:
//   - Descriptor: the storage texture declaration
func StorageTexture(view *wgpu.TextureView, access wgpu.StorageTextureAccess, format wgpu.TextureFormat, viewDimension wgpu.TextureViewDimension) Descriptor {
	return Descriptor{
		Kind: KindStorageTexture,
		StorageTexture: wgpu.StorageTextureBindingLayout{
			Access:        access,
			Format:        format,
			ViewDimension: viewDimension,
		},
		Resource: TextureViewResource(view),
	}
}

// StorageTextureArray declares a fixed-size array of storage texture views sharing one
// access mode and format.
//
// Parameters:
//   - views: the texture views to bind, in array order
//   - access: read-only, write-only or read-write
//   - format: the texel format the shader declares
//   - viewDimension: the view dimension the shader declares
//
// Returns:
//   - Descriptor: the storage texture array declaration
func StorageTextureArray(views []*wgpu.TextureView, access wgpu.StorageTextureAccess, format wgpu.TextureFormat, viewDimension wgpu.TextureViewDimension) Descriptor {
	d := StorageTexture(nil, access, format, viewDimension)
	d.Count = arity(len(views))
	d.Resource = TextureViewArrayResource(views)
	return d
}

// Sampler declares a single sampler.
//
// Parameters:
//   - s: the sampler to bind
//   - samplerType: filtering, non-filtering or comparison
//
// Returns:
//   - Descriptor: the sampler declaration
func Sampler(s *wgpu.Sampler, samplerType wgpu.SamplerBindingType) Descriptor {
	return Descriptor{
		Kind: KindSampler,
		Sampler: wgpu.SamplerBindingLayout{
			Type: samplerType,
		},
		Resource: SamplerResource(s),
	}
}

// SamplerArray declares a fixed-size array of samplers of one binding type.
//
// Parameters:
//   - samplers: the samplers to bind, in array order
//   - samplerType: filtering, non-filtering or comparison
//
// Returns:
//   - Descriptor: the sampler array declaration
func SamplerArray(samplers []*wgpu.Sampler, samplerType wgpu.SamplerBindingType) Descriptor {
	d := Sampler(nil, samplerType)
	d.Count = arity(len(samplers))
	d.Resource = SamplerArrayResource(samplers)
	return d
}

// WithCount overrides the declared array length. Use it to declare an array whose length
// is fixed by the shader rather than derived from the resources.
//
// Parameters:
//   - n: the declared array length
//
// Returns:
//   - Descriptor: a copy of d declaring an array of n resources
func (d Descriptor) WithCount(n uint32) Descriptor {
	d.Count = &n
	return d
}

// Validate checks that the declared array length matches the resources supplied. A single
// declaration must carry exactly one resource. Nothing else is checked here: a sample type or
// format that disagrees with the bound resource is reported by the device.
//
// Returns:
//   - error: an *ArityError wrapping ErrArityMismatch, or nil
func (d Descriptor) Validate() error {
	return d.validate(-1)
}

func (d Descriptor) validate(index int) error {
	supplied := d.Resource.handleCount()
	want := 1
	if d.Count != nil {
		want = int(*d.Count)
	}
	if (d.Count != nil && *d.Count == 0) || supplied != want {
		return &ArityError{Index: index, Kind: d.Kind, Declared: d.Count, Supplied: supplied}
	}
	return nil
}

// layoutEntry builds the layout half of the slot at index.
func (d Descriptor) layoutEntry(index uint32) wgpu.BindGroupLayoutEntry {
	e := wgpu.BindGroupLayoutEntry{
		Binding:    index,
		Visibility: AllStages,
	}
	switch d.Kind {
	case KindUniformBuffer, KindStorageBuffer:
		e.Buffer = d.Buffer
	case KindTexture:
		e.Texture = d.Texture
	case KindStorageTexture:
		e.StorageTexture = d.StorageTexture
	case KindSampler:
		e.Sampler = d.Sampler
	}
	return e
}

func arity(n int) *uint32 {
	c := uint32(n)
	return &c
}
