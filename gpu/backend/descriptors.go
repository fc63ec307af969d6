package backend

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupLayoutEntry is a wgpu.BindGroupLayoutEntry with an optional array length.
type BindGroupLayoutEntry struct {
	wgpu.BindGroupLayoutEntry

	// Count is the number of resources in an arrayed binding. Zero declares a single resource.
	Count uint32
}

// BindGroupLayoutDescriptor describes a bind group layout whose entries may be arrayed.
type BindGroupLayoutDescriptor struct {
	Label   string
	Entries []BindGroupLayoutEntry
}

// BindGroupEntry is a wgpu.BindGroupEntry that may also carry a resource array.
// Exactly one of the embedded Buffer, Sampler or TextureView, or one of the TextureViews
// or Samplers slices, is set.
type BindGroupEntry struct {
	wgpu.BindGroupEntry

	// TextureViews holds the views of an arrayed texture or storage texture binding.
	TextureViews []*wgpu.TextureView
	// Samplers holds the samplers of an arrayed sampler binding.
	Samplers []*wgpu.Sampler
}

// IsArray reports whether the entry binds a resource array.
func (e BindGroupEntry) IsArray() bool {
	return e.TextureViews != nil || e.Samplers != nil
}

// BindGroupDescriptor describes a bind group built against Layout.
type BindGroupDescriptor struct {
	Label   string
	Layout  *wgpu.BindGroupLayout
	Entries []BindGroupEntry
}
