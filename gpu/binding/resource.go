package binding

import (
	"github.com/Carmen-Shannon/oxy-gpu/gpu/backend"
	"github.com/cogentcore/webgpu/wgpu"
)

// Resource is a borrowed reference to the GPU object(s) bound at one slot. Exactly one of
// Buffer, TextureViews or Samplers is populated.
type Resource struct {
	Buffer       *wgpu.Buffer
	TextureViews []*wgpu.TextureView
	Samplers     []*wgpu.Sampler

	// Array marks the resource as an arrayed binding even when it holds a single handle.
	Array bool
}

// BufferResource references a whole buffer.
func BufferResource(buf *wgpu.Buffer) Resource {
	return Resource{Buffer: buf}
}

// TextureViewResource references a single texture view.
func TextureViewResource(view *wgpu.TextureView) Resource {
	return Resource{TextureViews: []*wgpu.TextureView{view}}
}

// TextureViewArrayResource references an array of texture views.
func TextureViewArrayResource(views []*wgpu.TextureView) Resource {
	return Resource{TextureViews: views, Array: true}
}

// SamplerResource references a single sampler.
func SamplerResource(s *wgpu.Sampler) Resource {
	return Resource{Samplers: []*wgpu.Sampler{s}}
}

// SamplerArrayResource references an array of samplers.
func SamplerArrayResource(samplers []*wgpu.Sampler) Resource {
	return Resource{Samplers: samplers, Array: true}
}

// handleCount returns the number of resource handles referenced.
func (r Resource) handleCount() int {
	switch {
	case r.Buffer != nil:
		return 1
	case r.TextureViews != nil:
		return len(r.TextureViews)
	case r.Samplers != nil:
		return len(r.Samplers)
	default:
		return 0
	}
}

// groupEntry builds the group half of the slot at index.
func (r Resource) groupEntry(index uint32) backend.BindGroupEntry {
	e := backend.BindGroupEntry{
		BindGroupEntry: wgpu.BindGroupEntry{Binding: index},
	}
	switch {
	case r.Buffer != nil:
		e.Buffer = r.Buffer
		e.Offset = 0
		e.Size = wgpu.WholeSize
	case r.TextureViews != nil:
		if r.Array {
			e.TextureViews = r.TextureViews
		} else if len(r.TextureViews) > 0 {
			e.TextureView = r.TextureViews[0]
		}
	case r.Samplers != nil:
		if r.Array {
			e.Samplers = r.Samplers
		} else if len(r.Samplers) > 0 {
			e.Sampler = r.Samplers[0]
		}
	}
	return e
}
