// Package texture creates textures and fills them from raw files, in-memory buffers and decoded
// images, validating the pixel format against the data before anything is created on the device.
package texture

import (
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/gpu/backend"
	"github.com/cogentcore/webgpu/wgpu"
)

// Texture pairs a texture handle with the descriptor it was created from.
type Texture struct {
	Handle     *wgpu.Texture
	Descriptor wgpu.TextureDescriptor
}

// Size returns the texture extent.
func (t *Texture) Size() wgpu.Extent3D {
	return t.Descriptor.Size
}

// Release frees the texture handle.
func (t *Texture) Release() {
	if t.Handle != nil {
		t.Handle.Release()
		t.Handle = nil
	}
}

func (t *Texture) imageCopy() *wgpu.ImageCopyTexture {
	return &wgpu.ImageCopyTexture{
		Texture:  t.Handle,
		MipLevel: 0,
		Origin:   wgpu.Origin3D{X: 0, Y: 0, Z: 0},
		Aspect:   wgpu.TextureAspectAll,
	}
}

// LoadRaw creates a texture from desc and fills it with the bytes of the file at path, which
// must hold tightly packed rows of desc.Format texels covering the full extent.
//
// Parameters:
//   - device: the device to create the texture on
//   - queue: the queue used for the upload
//   - path: the file holding the texel data
//   - desc: the texture descriptor
//
// Returns:
//   - *Texture: the created texture
//   - error: a *FormatError if desc.Format has no per-pixel size, or a read, create or write error
func LoadRaw(device backend.Device, queue backend.Queue, path string, desc *wgpu.TextureDescriptor) (*Texture, error) {
	plan, err := PlanFor(desc)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("texture: read %s: %w", path, err)
	}
	return upload(device, queue, data, desc, plan)
}

// UploadRaw creates a texture from desc and fills it with data. See LoadRaw.
//
// Parameters:
//   - device: the device to create the texture on
//   - queue: the queue used for the upload
//   - data: tightly packed texel rows
//   - desc: the texture descriptor
//
// Returns:
//   - *Texture: the created texture
//   - error: a *FormatError if desc.Format has no per-pixel size, or a create or write error
func UploadRaw(device backend.Device, queue backend.Queue, data []byte, desc *wgpu.TextureDescriptor) (*Texture, error) {
	plan, err := PlanFor(desc)
	if err != nil {
		return nil, err
	}
	return upload(device, queue, data, desc, plan)
}

func upload(device backend.Device, queue backend.Queue, data []byte, desc *wgpu.TextureDescriptor, plan Plan) (*Texture, error) {
	handle, err := device.CreateTexture(desc)
	if err != nil {
		return nil, fmt.Errorf("texture: create %q: %w", desc.Label, err)
	}
	tex := &Texture{Handle: handle, Descriptor: *desc}

	size := desc.Size
	if err := queue.WriteTexture(tex.imageCopy(), data, plan.layout(), &size); err != nil {
		tex.Release()
		return nil, fmt.Errorf("texture: write %q: %w", desc.Label, err)
	}

	common.Logger().Debug("texture: uploaded",
		"label", desc.Label,
		"width", size.Width,
		"height", size.Height,
		"layers", size.DepthOrArrayLayers,
		"bytes", len(data),
	)
	return tex, nil
}

// Copy records a copy of the full extent of src into dst. Textures of different sizes are
// logged as an error and copied anyway, since a region copy within bounds is still valid.
//
// Parameters:
//   - encoder: the encoder to record into
//   - src: the texture to copy from
//   - dst: the texture to copy to
//
// Returns:
//   - error: an error if the encoder rejected the copy
func Copy(encoder backend.CommandEncoder, src, dst *Texture) error {
	size := src.Size()
	if size != dst.Size() {
		common.Logger().Error("texture: copying textures of different sizes",
			"src", src.Descriptor.Label,
			"dst", dst.Descriptor.Label,
			"srcSize", fmt.Sprintf("%dx%dx%d", size.Width, size.Height, size.DepthOrArrayLayers),
			"dstSize", fmt.Sprintf("%dx%dx%d", dst.Size().Width, dst.Size().Height, dst.Size().DepthOrArrayLayers),
		)
	}

	if err := encoder.CopyTextureToTexture(src.imageCopy(), dst.imageCopy(), &size); err != nil {
		return fmt.Errorf("texture: copy %q to %q: %w", src.Descriptor.Label, dst.Descriptor.Label, err)
	}
	return nil
}
