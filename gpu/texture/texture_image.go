package texture

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gpu/gpu/backend"
	"github.com/cogentcore/webgpu/wgpu"
)

type uploadKey struct {
	layout Layout
	format wgpu.TextureFormat
}

func native(m *DecodedImage) []byte {
	return m.Pix
}

// uploads lists every supported (image layout, texture format) pair and how the image bytes
// are produced for it. Luma images only upload natively.
var uploads = map[uploadKey]func(*DecodedImage) []byte{
	{LayoutLuma8, wgpu.TextureFormatR8Unorm}: native,
	{LayoutLuma16, TextureFormatR16Unorm}:    native,

	{LayoutRGBA8, wgpu.TextureFormatRGBA8Unorm}:   native,
	{LayoutRGBA16, wgpu.TextureFormatRGBA8Unorm}:  toRGBA8,
	{LayoutRGBA32F, wgpu.TextureFormatRGBA8Unorm}: toRGBA8,

	{LayoutRGBA8, wgpu.TextureFormatRGBA8UnormSrgb}:   native,
	{LayoutRGBA16, wgpu.TextureFormatRGBA8UnormSrgb}:  toRGBA8,
	{LayoutRGBA32F, wgpu.TextureFormatRGBA8UnormSrgb}: toRGBA8,

	{LayoutRGBA8, TextureFormatRGBA16Unorm}:   toRGBA16,
	{LayoutRGBA16, TextureFormatRGBA16Unorm}:  native,
	{LayoutRGBA32F, TextureFormatRGBA16Unorm}: toRGBA16,

	{LayoutRGBA8, wgpu.TextureFormatRGBA32Float}:   toRGBA32F,
	{LayoutRGBA16, wgpu.TextureFormatRGBA32Float}:  toRGBA32F,
	{LayoutRGBA32F, wgpu.TextureFormatRGBA32Float}: native,
}

// FromImage creates a 2D texture sized to img and uploads it as format. RGBA images are
// converted once when their layout differs from format; any other unsupported pair is
// rejected before the device is touched.
//
// Parameters:
//   - device: the device to create the texture on
//   - queue: the queue used for the upload
//   - img: the decoded image
//   - label: a debug label for the texture
//   - format: the texture format
//   - usage: the texture usage, which must include CopyDst
//
// Returns:
//   - *Texture: the created texture
//   - error: a *FormatError for an unsupported layout and format pair, or a create or write error
func FromImage(device backend.Device, queue backend.Queue, img *DecodedImage, label string, format wgpu.TextureFormat, usage wgpu.TextureUsage) (*Texture, error) {
	pixels, ok := uploads[uploadKey{img.Layout, format}]
	if !ok {
		return nil, fmt.Errorf("texture: %s image: %w", img.Layout, &FormatError{Format: format})
	}
	if err := img.validate(); err != nil {
		return nil, err
	}

	desc := &wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(img.Width),
			Height:             uint32(img.Height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	}
	plan, err := PlanFor(desc)
	if err != nil {
		return nil, err
	}
	return upload(device, queue, pixels(img), desc, plan)
}
