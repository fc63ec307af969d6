package texture

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Native 16-bit normalized formats, converted from wgpu's NativeTextureFormat enumeration so
// they can be used in a TextureDescriptor. The device must enable the matching feature.
const (
	TextureFormatR16Unorm    = wgpu.TextureFormat(wgpu.NativeTextureFormatR16Unorm)
	TextureFormatR16Snorm    = wgpu.TextureFormat(wgpu.NativeTextureFormatR16Snorm)
	TextureFormatRG16Unorm   = wgpu.TextureFormat(wgpu.NativeTextureFormatRg16Unorm)
	TextureFormatRG16Snorm   = wgpu.TextureFormat(wgpu.NativeTextureFormatRg16Snorm)
	TextureFormatRGBA16Unorm = wgpu.TextureFormat(wgpu.NativeTextureFormatRgba16Unorm)
	TextureFormatRGBA16Snorm = wgpu.TextureFormat(wgpu.NativeTextureFormatRgba16Snorm)
)

// CopyStrideUndefined marks a TextureDataLayout stride as not given.
const CopyStrideUndefined uint32 = 0xffffffff

// ErrInvalidFormat is matched by every *FormatError.
var ErrInvalidFormat = errors.New("texture: invalid format")

// FormatError reports a pixel format that has no per-pixel byte size, or that a decoded
// image cannot be uploaded as.
type FormatError struct {
	Format wgpu.TextureFormat
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("texture: invalid format %v", e.Format)
}

func (e *FormatError) Is(target error) bool {
	return target == ErrInvalidFormat
}

// formatSizes gives the size in bytes of one texel for formats that can be written linearly.
// Block-compressed, combined depth-stencil and depth24 formats have no entry.
var formatSizes = map[wgpu.TextureFormat]uint32{
	wgpu.TextureFormatR8Unorm:  1,
	wgpu.TextureFormatR8Snorm:  1,
	wgpu.TextureFormatR8Uint:   1,
	wgpu.TextureFormatR8Sint:   1,
	wgpu.TextureFormatStencil8: 1,

	TextureFormatR16Unorm:          2,
	TextureFormatR16Snorm:          2,
	wgpu.TextureFormatR16Uint:      2,
	wgpu.TextureFormatR16Sint:      2,
	wgpu.TextureFormatR16Float:     2,
	wgpu.TextureFormatRG8Unorm:     2,
	wgpu.TextureFormatRG8Snorm:     2,
	wgpu.TextureFormatRG8Uint:      2,
	wgpu.TextureFormatRG8Sint:      2,
	wgpu.TextureFormatDepth16Unorm: 2,

	wgpu.TextureFormatR32Float:       4,
	wgpu.TextureFormatR32Uint:        4,
	wgpu.TextureFormatR32Sint:        4,
	TextureFormatRG16Unorm:           4,
	TextureFormatRG16Snorm:           4,
	wgpu.TextureFormatRG16Uint:       4,
	wgpu.TextureFormatRG16Sint:       4,
	wgpu.TextureFormatRG16Float:      4,
	wgpu.TextureFormatRGBA8Unorm:     4,
	wgpu.TextureFormatRGBA8UnormSrgb: 4,
	wgpu.TextureFormatRGBA8Snorm:     4,
	wgpu.TextureFormatRGBA8Uint:      4,
	wgpu.TextureFormatRGBA8Sint:      4,
	wgpu.TextureFormatBGRA8Unorm:     4,
	wgpu.TextureFormatBGRA8UnormSrgb: 4,
	wgpu.TextureFormatRGB10A2Unorm:   4,
	wgpu.TextureFormatRGB10A2Uint:    4,
	wgpu.TextureFormatRG11B10Ufloat:  4,
	wgpu.TextureFormatRGB9E5Ufloat:   4,
	wgpu.TextureFormatDepth32Float:   4,

	TextureFormatRGBA16Unorm:      8,
	TextureFormatRGBA16Snorm:      8,
	wgpu.TextureFormatRG32Float:   8,
	wgpu.TextureFormatRG32Uint:    8,
	wgpu.TextureFormatRG32Sint:    8,
	wgpu.TextureFormatRGBA16Uint:  8,
	wgpu.TextureFormatRGBA16Sint:  8,
	wgpu.TextureFormatRGBA16Float: 8,

	wgpu.TextureFormatRGBA32Float: 16,
	wgpu.TextureFormatRGBA32Uint:  16,
	wgpu.TextureFormatRGBA32Sint:  16,
}

// BytesPerPixel returns the texel size of format.
//
// Parameters:
//   - format: the texture format
//
// Returns:
//   - uint32: the texel size in bytes
//   - bool: false if format cannot be written as linear texels
func BytesPerPixel(format wgpu.TextureFormat) (uint32, bool) {
	size, ok := formatSizes[format]
	return size, ok
}

// Plan describes how a linear byte buffer maps onto a texture for one upload.
type Plan struct {
	BytesPerPixel uint32
	BytesPerRow   uint32
	// RowsPerImage is the image height for 3D textures and CopyStrideUndefined otherwise.
	RowsPerImage uint32
}

// PlanFor computes the upload layout for a texture described by desc.
//
// Parameters:
//   - desc: the texture descriptor
//
// Returns:
//   - Plan: the upload layout
//   - error: a *FormatError if desc.Format has no per-pixel size
func PlanFor(desc *wgpu.TextureDescriptor) (Plan, error) {
	return planFor(desc.Format, desc.Size, desc.Dimension)
}

func planFor(format wgpu.TextureFormat, size wgpu.Extent3D, dimension wgpu.TextureDimension) (Plan, error) {
	bpp, ok := BytesPerPixel(format)
	if !ok {
		return Plan{}, &FormatError{Format: format}
	}

	p := Plan{
		BytesPerPixel: bpp,
		BytesPerRow:   bpp * size.Width,
		RowsPerImage:  CopyStrideUndefined,
	}
	if dimension == wgpu.TextureDimension3D {
		p.RowsPerImage = size.Height
	}
	return p, nil
}

func (p Plan) layout() *wgpu.TextureDataLayout {
	return &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  p.BytesPerRow,
		RowsPerImage: p.RowsPerImage,
	}
}
