package binding

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-gpu/gpu/backend"
	"github.com/Carmen-Shannon/oxy-gpu/internal/gputest"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mixedDescriptors() []Descriptor {
	views := []*wgpu.TextureView{{}, {}, {}}
	return []Descriptor{
		Uniform(&wgpu.Buffer{}),
		Storage(&wgpu.Buffer{}, true),
		Storage(&wgpu.Buffer{}, false),
		Texture(&wgpu.TextureView{}, wgpu.TextureSampleTypeFloat, wgpu.TextureViewDimension2D),
		TextureArray(views, wgpu.TextureSampleTypeFloat, wgpu.TextureViewDimension2D),
		StorageTexture(&wgpu.TextureView{}, wgpu.StorageTextureAccessWriteOnly, wgpu.TextureFormatRGBA8Unorm, wgpu.TextureViewDimension2D),
		Sampler(&wgpu.Sampler{}, wgpu.SamplerBindingTypeFiltering),
		SamplerArray([]*wgpu.Sampler{{}, {}}, wgpu.SamplerBindingTypeComparison),
	}
}

func TestNewGroupSequentialIndices(t *testing.T) {
	device := gputest.NewDevice()
	descs := mixedDescriptors()

	g, err := NewGroup(device, "material", descs...)
	require.NoError(t, err)
	assert.NotNil(t, g.Layout)
	assert.NotNil(t, g.BindGroup)

	require.Len(t, device.Layouts, 1)
	require.Len(t, device.Groups, 1)
	layout, group := device.Layouts[0], device.Groups[0]

	assert.Equal(t, "material", layout.Label)
	assert.Equal(t, "material", group.Label)
	assert.Same(t, g.Layout, group.Layout)

	require.Len(t, layout.Entries, len(descs))
	require.Len(t, group.Entries, len(descs))
	for i := range descs {
		assert.Equal(t, uint32(i), layout.Entries[i].Binding, "layout entry %d", i)
		assert.Equal(t, uint32(i), group.Entries[i].Binding, "group entry %d", i)
		assert.Equal(t, AllStages, layout.Entries[i].Visibility)
	}
}

func TestNewGroupLayoutKinds(t *testing.T) {
	device := gputest.NewDevice()
	descs := mixedDescriptors()

	_, err := NewGroup(device, "kinds", descs...)
	require.NoError(t, err)
	entries := device.Layouts[0].Entries
	groupEntries := device.Groups[0].Entries

	assert.Equal(t, wgpu.BufferBindingTypeUniform, entries[0].Buffer.Type)
	assert.False(t, entries[0].Buffer.HasDynamicOffset)
	assert.Zero(t, entries[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, entries[1].Buffer.Type)
	assert.Equal(t, wgpu.BufferBindingTypeStorage, entries[2].Buffer.Type)
	assert.Equal(t, uint64(wgpu.WholeSize), groupEntries[0].Size)

	assert.Equal(t, wgpu.TextureSampleTypeFloat, entries[3].Texture.SampleType)
	assert.Zero(t, entries[3].Count)
	assert.NotNil(t, groupEntries[3].TextureView)
	assert.False(t, groupEntries[3].IsArray())

	assert.Equal(t, uint32(3), entries[4].Count)
	assert.Len(t, groupEntries[4].TextureViews, 3)
	assert.Nil(t, groupEntries[4].TextureView)

	assert.Equal(t, wgpu.StorageTextureAccessWriteOnly, entries[5].StorageTexture.Access)
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, entries[5].StorageTexture.Format)

	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, entries[6].Sampler.Type)
	assert.NotNil(t, groupEntries[6].Sampler)

	assert.Equal(t, uint32(2), entries[7].Count)
	assert.Len(t, groupEntries[7].Samplers, 2)
}

func TestNewGroupArityMismatchBeforeDeviceCall(t *testing.T) {
	device := gputest.NewDevice()
	bad := TextureArray([]*wgpu.TextureView{{}, {}}, wgpu.TextureSampleTypeFloat, wgpu.TextureViewDimension2D).WithCount(3)

	_, err := NewGroup(device, "bad", Uniform(&wgpu.Buffer{}), bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrArityMismatch)

	var arityErr *ArityError
	require.True(t, errors.As(err, &arityErr))
	assert.Equal(t, 1, arityErr.Index)
	assert.Equal(t, 2, arityErr.Supplied)
	assert.Equal(t, 0, device.Calls())
}

func TestNewGroupZeroArity(t *testing.T) {
	device := gputest.NewDevice()
	_, err := NewGroup(device, "empty", SamplerArray(nil, wgpu.SamplerBindingTypeFiltering))
	assert.ErrorIs(t, err, ErrArityMismatch)
	assert.Equal(t, 0, device.Calls())
}

func TestDescriptorValidate(t *testing.T) {
	assert.NoError(t, Uniform(&wgpu.Buffer{}).Validate())
	assert.ErrorIs(t, Uniform(nil).Validate(), ErrArityMismatch)
	assert.NoError(t, SamplerArray([]*wgpu.Sampler{{}}, wgpu.SamplerBindingTypeFiltering).Validate())
	assert.ErrorIs(t, Sampler(&wgpu.Sampler{}, wgpu.SamplerBindingTypeFiltering).WithCount(0).Validate(), ErrArityMismatch)
}

func TestDescriptorsEmptyList(t *testing.T) {
	layout, group, err := Descriptors("empty")
	require.NoError(t, err)
	assert.Empty(t, layout.Entries)
	assert.Empty(t, group.Entries)
}

func TestNewGroupWithLayout(t *testing.T) {
	device := gputest.NewDevice()
	layout := &wgpu.BindGroupLayout{}

	g, err := NewGroupWithLayout(device, "reuse", layout,
		BufferResource(&wgpu.Buffer{}),
		TextureViewResource(&wgpu.TextureView{}),
		SamplerArrayResource([]*wgpu.Sampler{{}, {}, {}}),
	)
	require.NoError(t, err)
	assert.NotNil(t, g)

	require.Len(t, device.Groups, 1)
	desc := device.Groups[0]
	assert.Same(t, layout, desc.Layout)
	assert.Empty(t, device.Layouts)
	for i, e := range desc.Entries {
		assert.Equal(t, uint32(i), e.Binding)
	}
	assert.NotNil(t, desc.Entries[0].Buffer)
	assert.NotNil(t, desc.Entries[1].TextureView)
	assert.Len(t, desc.Entries[2].Samplers, 3)
}

func TestNewGroupWithLayoutMismatchSurfacesOnDevice(t *testing.T) {
	device := gputest.NewDevice()
	device.PushErrorScope(backend.ErrorFilterValidation)

	_, err := NewGroupWithLayout(device, "no layout", nil, BufferResource(&wgpu.Buffer{}))
	require.NoError(t, err)
	assert.Error(t, device.PopErrorScope())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "storage texture", KindStorageTexture.String())
	assert.Equal(t, "Kind(42)", Kind(42).String())
}
