package texture

import (
	"context"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/internal/gputest"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordHandler keeps every record it handles.
type recordHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}

func (h *recordHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordHandler) WithGroup(string) slog.Handler      { return h }

func (h *recordHandler) at(level slog.Level) []slog.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []slog.Record
	for _, r := range h.records {
		if r.Level == level {
			out = append(out, r)
		}
	}
	return out
}

func captureLogs(t *testing.T) *recordHandler {
	t.Helper()
	h := &recordHandler{}
	common.SetLogger(slog.New(h))
	t.Cleanup(func() { common.SetLogger(nil) })
	return h
}

func rawDescriptor(format wgpu.TextureFormat, w, h, d uint32, dim wgpu.TextureDimension) *wgpu.TextureDescriptor {
	return &wgpu.TextureDescriptor{
		Label:         "raw",
		Size:          wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: d},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     dim,
		Format:        format,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	}
}

func TestPlanFor(t *testing.T) {
	plan, err := PlanFor(rawDescriptor(wgpu.TextureFormatRGBA8Unorm, 16, 8, 1, wgpu.TextureDimension2D))
	require.NoError(t, err)
	assert.Equal(t, Plan{BytesPerPixel: 4, BytesPerRow: 64, RowsPerImage: CopyStrideUndefined}, plan)

	plan, err = PlanFor(rawDescriptor(wgpu.TextureFormatR32Float, 4, 3, 2, wgpu.TextureDimension3D))
	require.NoError(t, err)
	assert.Equal(t, Plan{BytesPerPixel: 4, BytesPerRow: 16, RowsPerImage: 3}, plan)
}

func TestPlanForInvalidFormat(t *testing.T) {
	_, err := PlanFor(rawDescriptor(wgpu.TextureFormatDepth24Plus, 4, 4, 1, wgpu.TextureDimension2D))
	require.ErrorIs(t, err, ErrInvalidFormat)

	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, wgpu.TextureFormatDepth24Plus, formatErr.Format)
}

func TestLoadRaw(t *testing.T) {
	device, queue := gputest.NewDevice(), gputest.NewQueue()
	data := make([]byte, 2*2*2*8)
	for i := range data {
		data[i] = byte(i)
	}
	path := filepath.Join(t.TempDir(), "volume.raw")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	desc := rawDescriptor(wgpu.TextureFormatRGBA16Float, 2, 2, 2, wgpu.TextureDimension3D)
	tex, err := LoadRaw(device, queue, path, desc)
	require.NoError(t, err)
	assert.Equal(t, *desc, tex.Descriptor)

	require.Len(t, queue.TextureWrites, 1)
	write := queue.TextureWrites[0]
	assert.Equal(t, data, write.Data)
	assert.Equal(t, uint32(16), write.Layout.BytesPerRow)
	assert.Equal(t, uint32(2), write.Layout.RowsPerImage)
	assert.Equal(t, desc.Size, write.Size)
	assert.Equal(t, wgpu.TextureAspectAll, write.Destination.Aspect)
}

func TestLoadRawInvalidFormat(t *testing.T) {
	device, queue := gputest.NewDevice(), gputest.NewQueue()
	path := filepath.Join(t.TempDir(), "depth.raw")
	require.NoError(t, os.WriteFile(path, make([]byte, 64), 0o644))

	_, err := LoadRaw(device, queue, path, rawDescriptor(wgpu.TextureFormatDepth24Plus, 4, 4, 1, wgpu.TextureDimension2D))
	require.ErrorIs(t, err, ErrInvalidFormat)
	assert.Equal(t, 0, device.Calls())
	assert.Equal(t, 0, queue.Writes())
}

func TestLoadRawMissingFile(t *testing.T) {
	device, queue := gputest.NewDevice(), gputest.NewQueue()

	_, err := LoadRaw(device, queue, filepath.Join(t.TempDir(), "missing.raw"), rawDescriptor(wgpu.TextureFormatR8Unorm, 4, 4, 1, wgpu.TextureDimension2D))
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, 0, device.Calls())
}

func TestUploadRaw(t *testing.T) {
	device, queue := gputest.NewDevice(), gputest.NewQueue()
	data := []byte{1, 2, 3, 4, 5, 6}

	_, err := UploadRaw(device, queue, data, rawDescriptor(wgpu.TextureFormatR8Unorm, 3, 2, 1, wgpu.TextureDimension2D))
	require.NoError(t, err)
	require.Len(t, queue.TextureWrites, 1)
	assert.Equal(t, uint32(3), queue.TextureWrites[0].Layout.BytesPerRow)
	assert.Equal(t, CopyStrideUndefined, queue.TextureWrites[0].Layout.RowsPerImage)
}

func TestFromImageLumaNative(t *testing.T) {
	device, queue := gputest.NewDevice(), gputest.NewQueue()
	img := &DecodedImage{Layout: LayoutLuma8, Width: 3, Height: 2, Pix: []byte{10, 20, 30, 40, 50, 60}}

	tex, err := FromImage(device, queue, img, "luma", wgpu.TextureFormatR8Unorm, wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopyDst)
	require.NoError(t, err)

	require.Len(t, queue.TextureWrites, 1)
	assert.Equal(t, img.Pix, queue.TextureWrites[0].Data)
	assert.Equal(t, uint32(3), queue.TextureWrites[0].Layout.BytesPerRow)

	require.Len(t, device.Textures, 1)
	desc := device.Textures[0]
	assert.Equal(t, wgpu.TextureDimension2D, desc.Dimension)
	assert.Equal(t, uint32(1), desc.MipLevelCount)
	assert.Equal(t, uint32(1), desc.SampleCount)
	assert.Equal(t, wgpu.Extent3D{Width: 3, Height: 2, DepthOrArrayLayers: 1}, tex.Size())
}

func TestFromImageLumaAsRGBAFails(t *testing.T) {
	device, queue := gputest.NewDevice(), gputest.NewQueue()
	img := &DecodedImage{Layout: LayoutLuma8, Width: 2, Height: 1, Pix: []byte{1, 2}}

	_, err := FromImage(device, queue, img, "luma", wgpu.TextureFormatRGBA8Unorm, wgpu.TextureUsageCopyDst)
	require.ErrorIs(t, err, ErrInvalidFormat)

	var formatErr *FormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, formatErr.Format)
	assert.Equal(t, 0, device.Calls())
	assert.Equal(t, 0, queue.Writes())
}

func TestFromImageRGBA16ToRGBA8(t *testing.T) {
	device, queue := gputest.NewDevice(), gputest.NewQueue()
	pix := make([]byte, 8)
	for k, v := range []uint16{0x1234, 0xabcd, 0x00ff, 0xff00} {
		binary.LittleEndian.PutUint16(pix[k*2:], v)
	}
	img := &DecodedImage{Layout: LayoutRGBA16, Width: 1, Height: 1, Pix: pix}

	_, err := FromImage(device, queue, img, "rgba", wgpu.TextureFormatRGBA8UnormSrgb, wgpu.TextureUsageCopyDst)
	require.NoError(t, err)
	require.Len(t, queue.TextureWrites, 1)
	assert.Equal(t, []byte{0x12, 0xab, 0x00, 0xff}, queue.TextureWrites[0].Data)
}

func TestFromImageRGBA8ToRGBA32F(t *testing.T) {
	device, queue := gputest.NewDevice(), gputest.NewQueue()
	img := &DecodedImage{Layout: LayoutRGBA8, Width: 1, Height: 1, Pix: []byte{0, 255, 0, 255}}

	_, err := FromImage(device, queue, img, "rgba", wgpu.TextureFormatRGBA32Float, wgpu.TextureUsageCopyDst)
	require.NoError(t, err)
	require.Len(t, queue.TextureWrites, 1)

	data := queue.TextureWrites[0].Data
	require.Len(t, data, 16)
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(data[0:]))
	assert.Equal(t, uint32(0x3f800000), binary.LittleEndian.Uint32(data[4:]))
	assert.Equal(t, uint32(16), queue.TextureWrites[0].Layout.BytesPerRow)
}

func TestFromImageShortBuffer(t *testing.T) {
	device, queue := gputest.NewDevice(), gputest.NewQueue()
	img := &DecodedImage{Layout: LayoutRGBA8, Width: 2, Height: 2, Pix: []byte{1, 2, 3}}

	_, err := FromImage(device, queue, img, "short", wgpu.TextureFormatRGBA8Unorm, wgpu.TextureUsageCopyDst)
	require.Error(t, err)
	assert.Equal(t, 0, device.Calls())
}

func TestFromGoImage(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range gray.Pix {
		gray.Pix[i] = uint8(i)
	}
	sub := gray.SubImage(image.Rect(1, 1, 3, 3)).(*image.Gray)

	m := FromGoImage(sub)
	assert.Equal(t, LayoutLuma8, m.Layout)
	assert.Equal(t, []byte{5, 6, 9, 10}, m.Pix)
	assert.Equal(t, color.Gray{Y: 9}, m.At(0, 1))

	g16 := image.NewGray16(image.Rect(0, 0, 1, 1))
	g16.SetGray16(0, 0, color.Gray16{Y: 0x1234})
	m = FromGoImage(g16)
	assert.Equal(t, LayoutLuma16, m.Layout)
	assert.Equal(t, []byte{0x34, 0x12}, m.Pix)

	rgba := image.NewRGBA(image.Rect(0, 0, 1, 1))
	rgba.Set(0, 0, color.RGBA{R: 255, G: 128, B: 0, A: 255})
	m = FromGoImage(rgba)
	assert.Equal(t, LayoutRGBA8, m.Layout)
	assert.Equal(t, []byte{255, 128, 0, 255}, m.Pix)

	n64 := image.NewNRGBA64(image.Rect(0, 0, 1, 1))
	n64.SetNRGBA64(0, 0, color.NRGBA64{R: 0x0102, G: 0x0304, B: 0x0506, A: 0xffff})
	m = FromGoImage(n64)
	assert.Equal(t, LayoutRGBA16, m.Layout)
	assert.Equal(t, []byte{0x02, 0x01, 0x04, 0x03, 0x06, 0x05, 0xff, 0xff}, m.Pix)
	assert.Equal(t, color.NRGBA64{R: 0x0102, G: 0x0304, B: 0x0506, A: 0xffff}, m.At(0, 0))
}

func TestDecodePNG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{R: 4, G: 5, B: 6, A: 128})

	path := filepath.Join(t.TempDir(), "tiny.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, src))
	require.NoError(t, f.Close())

	m, err := Decode(path)
	require.NoError(t, err)
	assert.Equal(t, LayoutRGBA8, m.Layout)
	assert.Equal(t, 2, m.Width)
	assert.Equal(t, 1, m.Height)
	assert.Equal(t, []byte{1, 2, 3, 255, 4, 5, 6, 128}, m.Pix)
}

func TestDecodeMissingFile(t *testing.T) {
	_, err := Decode(filepath.Join(t.TempDir(), "missing.png"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestCopy(t *testing.T) {
	logs := captureLogs(t)
	encoder := &gputest.CommandEncoder{}
	size := wgpu.Extent3D{Width: 8, Height: 8, DepthOrArrayLayers: 1}
	src := &Texture{Handle: &wgpu.Texture{}, Descriptor: wgpu.TextureDescriptor{Label: "src", Size: size}}
	dst := &Texture{Handle: &wgpu.Texture{}, Descriptor: wgpu.TextureDescriptor{Label: "dst", Size: size}}

	require.NoError(t, Copy(encoder, src, dst))
	require.Len(t, encoder.Copies, 1)
	assert.Equal(t, size, encoder.Copies[0].Size)
	assert.Same(t, src.Handle, encoder.Copies[0].Source.Texture)
	assert.Same(t, dst.Handle, encoder.Copies[0].Destination.Texture)
	assert.Empty(t, logs.at(slog.LevelError))
}

func TestCopySizeMismatch(t *testing.T) {
	logs := captureLogs(t)
	encoder := &gputest.CommandEncoder{}
	src := &Texture{Handle: &wgpu.Texture{}, Descriptor: wgpu.TextureDescriptor{Label: "src", Size: wgpu.Extent3D{Width: 4, Height: 4, DepthOrArrayLayers: 1}}}
	dst := &Texture{Handle: &wgpu.Texture{}, Descriptor: wgpu.TextureDescriptor{Label: "dst", Size: wgpu.Extent3D{Width: 8, Height: 8, DepthOrArrayLayers: 1}}}

	require.NoError(t, Copy(encoder, src, dst))
	require.Len(t, encoder.Copies, 1)
	assert.Equal(t, src.Size(), encoder.Copies[0].Size)
	assert.Len(t, logs.at(slog.LevelError), 1)
}

func TestBytesPerPixel(t *testing.T) {
	tests := []struct {
		format wgpu.TextureFormat
		want   uint32
	}{
		{wgpu.TextureFormatR8Unorm, 1},
		{TextureFormatR16Unorm, 2},
		{TextureFormatR16Snorm, 2},
		{TextureFormatRG16Unorm, 4},
		{TextureFormatRG16Snorm, 4},
		{wgpu.TextureFormatRGB10A2Unorm, 4},
		{wgpu.TextureFormatRGB10A2Uint, 4},
		{wgpu.TextureFormatRG11B10Ufloat, 4},
		{wgpu.TextureFormatRGB9E5Ufloat, 4},
		{TextureFormatRGBA16Unorm, 8},
		{TextureFormatRGBA16Snorm, 8},
		{wgpu.TextureFormatRGBA32Float, 16},
	}
	for _, tt := range tests {
		got, ok := BytesPerPixel(tt.format)
		assert.True(t, ok, "%v", tt.format)
		assert.Equal(t, tt.want, got, "%v", tt.format)
	}

	_, ok := BytesPerPixel(wgpu.TextureFormatDepth24PlusStencil8)
	assert.False(t, ok)
}

func TestUploadRawPackedFormats(t *testing.T) {
	for _, format := range []wgpu.TextureFormat{
		wgpu.TextureFormatRGB10A2Unorm,
		wgpu.TextureFormatRGB10A2Uint,
		wgpu.TextureFormatRG11B10Ufloat,
		wgpu.TextureFormatRGB9E5Ufloat,
	} {
		device, queue := gputest.NewDevice(), gputest.NewQueue()

		_, err := UploadRaw(device, queue, make([]byte, 2*2*4), rawDescriptor(format, 2, 2, 1, wgpu.TextureDimension2D))
		require.NoError(t, err, "%v", format)
		require.Len(t, queue.TextureWrites, 1)
		assert.Equal(t, uint32(8), queue.TextureWrites[0].Layout.BytesPerRow, "%v", format)
	}
}
