package texture

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Layout is the in-memory pixel layout of a DecodedImage.
type Layout int

const (
	// LayoutLuma8 is one 8-bit channel.
	LayoutLuma8 Layout = iota
	// LayoutLuma16 is one 16-bit little-endian channel.
	LayoutLuma16
	// LayoutRGBA8 is four 8-bit channels, alpha not premultiplied.
	LayoutRGBA8
	// LayoutRGBA16 is four 16-bit little-endian channels, alpha not premultiplied.
	LayoutRGBA16
	// LayoutRGBA32F is four little-endian float32 channels, alpha not premultiplied.
	LayoutRGBA32F
)

func (l Layout) String() string {
	switch l {
	case LayoutLuma8:
		return "luma8"
	case LayoutLuma16:
		return "luma16"
	case LayoutRGBA8:
		return "rgba8"
	case LayoutRGBA16:
		return "rgba16"
	case LayoutRGBA32F:
		return "rgba32f"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

// BytesPerPixel returns the size of one pixel in l, or 0 for an unknown layout.
func (l Layout) BytesPerPixel() int {
	switch l {
	case LayoutLuma8:
		return 1
	case LayoutLuma16:
		return 2
	case LayoutRGBA8:
		return 4
	case LayoutRGBA16:
		return 8
	case LayoutRGBA32F:
		return 16
	default:
		return 0
	}
}

// DecodedImage is a decoded image held as tightly packed rows of GPU-ready bytes.
type DecodedImage struct {
	Layout Layout
	Width  int
	Height int
	Pix    []byte
}

var _ image.Image = (*DecodedImage)(nil)

func (m *DecodedImage) ColorModel() color.Model {
	switch m.Layout {
	case LayoutLuma8:
		return color.GrayModel
	case LayoutLuma16:
		return color.Gray16Model
	case LayoutRGBA8:
		return color.NRGBAModel
	default:
		return color.NRGBA64Model
	}
}

func (m *DecodedImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

func (m *DecodedImage) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(m.Bounds())) {
		return color.Transparent
	}
	i := y*m.Width + x
	switch m.Layout {
	case LayoutLuma8:
		return color.Gray{Y: m.Pix[i]}
	case LayoutLuma16:
		return color.Gray16{Y: binary.LittleEndian.Uint16(m.Pix[i*2:])}
	case LayoutRGBA8:
		p := m.Pix[i*4 : i*4+4]
		return color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
	default:
		r, g, b, a := m.rgba16(i)
		return color.NRGBA64{R: r, G: g, B: b, A: a}
	}
}

// rgba16 returns pixel i of an RGBA layout widened to 16 bits per channel.
func (m *DecodedImage) rgba16(i int) (r, g, b, a uint16) {
	var c [4]uint16
	switch m.Layout {
	case LayoutRGBA8:
		for k := range c {
			v := uint16(m.Pix[i*4+k])
			c[k] = v<<8 | v
		}
	case LayoutRGBA16:
		for k := range c {
			c[k] = binary.LittleEndian.Uint16(m.Pix[i*8+k*2:])
		}
	case LayoutRGBA32F:
		for k := range c {
			f := math.Float32frombits(binary.LittleEndian.Uint32(m.Pix[i*16+k*4:]))
			c[k] = unorm16(f)
		}
	default:
		panic(fmt.Sprintf("texture: %s is not an RGBA layout", m.Layout))
	}
	return c[0], c[1], c[2], c[3]
}

func unorm16(f float32) uint16 {
	switch {
	case math.IsNaN(float64(f)) || f <= 0:
		return 0
	case f >= 1:
		return 0xffff
	default:
		return uint16(f*0xffff + 0.5)
	}
}

func (m *DecodedImage) validate() error {
	want := m.Width * m.Height * m.Layout.BytesPerPixel()
	if m.Width <= 0 || m.Height <= 0 || want == 0 {
		return fmt.Errorf("texture: invalid %s image of %dx%d", m.Layout, m.Width, m.Height)
	}
	if len(m.Pix) != want {
		return fmt.Errorf("texture: %dx%d %s image has %d bytes, want %d", m.Width, m.Height, m.Layout, len(m.Pix), want)
	}
	return nil
}

// toRGBA8 converts an RGBA image to LayoutRGBA8, keeping the high byte of each channel.
func toRGBA8(m *DecodedImage) []byte {
	n := m.Width * m.Height
	out := make([]byte, n*4)
	for i := range n {
		r, g, b, a := m.rgba16(i)
		out[i*4+0] = uint8(r >> 8)
		out[i*4+1] = uint8(g >> 8)
		out[i*4+2] = uint8(b >> 8)
		out[i*4+3] = uint8(a >> 8)
	}
	return out
}

func toRGBA16(m *DecodedImage) []byte {
	n := m.Width * m.Height
	out := make([]byte, n*8)
	for i := range n {
		r, g, b, a := m.rgba16(i)
		binary.LittleEndian.PutUint16(out[i*8+0:], r)
		binary.LittleEndian.PutUint16(out[i*8+2:], g)
		binary.LittleEndian.PutUint16(out[i*8+4:], b)
		binary.LittleEndian.PutUint16(out[i*8+6:], a)
	}
	return out
}

func toRGBA32F(m *DecodedImage) []byte {
	n := m.Width * m.Height
	out := make([]byte, n*16)
	for i := range n {
		r, g, b, a := m.rgba16(i)
		for k, v := range [4]uint16{r, g, b, a} {
			binary.LittleEndian.PutUint32(out[i*16+k*4:], math.Float32bits(float32(v)/0xffff))
		}
	}
	return out
}

// FromGoImage repacks img into a DecodedImage. Gray, Gray16, NRGBA, NRGBA64 and RGBA64 images
// keep their precision; anything else is converted to LayoutRGBA8.
//
// Parameters:
//   - img: the image to repack
//
// Returns:
//   - *DecodedImage: the repacked image
func FromGoImage(img image.Image) *DecodedImage {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	switch src := img.(type) {
	case *image.Gray:
		return &DecodedImage{Layout: LayoutLuma8, Width: w, Height: h, Pix: packRows(src.Pix, src.Stride, src.PixOffset(b.Min.X, b.Min.Y), w, h)}
	case *image.Gray16:
		pix := packRows(src.Pix, src.Stride, src.PixOffset(b.Min.X, b.Min.Y), w*2, h)
		swap16(pix)
		return &DecodedImage{Layout: LayoutLuma16, Width: w, Height: h, Pix: pix}
	case *image.NRGBA:
		return &DecodedImage{Layout: LayoutRGBA8, Width: w, Height: h, Pix: packRows(src.Pix, src.Stride, src.PixOffset(b.Min.X, b.Min.Y), w*4, h)}
	case *image.NRGBA64:
		pix := packRows(src.Pix, src.Stride, src.PixOffset(b.Min.X, b.Min.Y), w*8, h)
		swap16(pix)
		return &DecodedImage{Layout: LayoutRGBA16, Width: w, Height: h, Pix: pix}
	case *image.RGBA64:
		dst := image.NewNRGBA64(image.Rect(0, 0, w, h))
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		swap16(dst.Pix)
		return &DecodedImage{Layout: LayoutRGBA16, Width: w, Height: h, Pix: dst.Pix}
	default:
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return &DecodedImage{Layout: LayoutRGBA8, Width: w, Height: h, Pix: dst.Pix}
	}
}

// packRows copies h rows of rowBytes each out of a strided buffer.
func packRows(pix []byte, stride, offset, rowBytes, h int) []byte {
	out := make([]byte, rowBytes*h)
	for y := range h {
		copy(out[y*rowBytes:(y+1)*rowBytes], pix[offset+y*stride:])
	}
	return out
}

// swap16 converts big-endian 16-bit samples to little-endian in place.
func swap16(pix []byte) {
	for i := 0; i+1 < len(pix); i += 2 {
		pix[i], pix[i+1] = pix[i+1], pix[i]
	}
}

// Decode reads and decodes a PNG, JPEG, BMP, TIFF or WebP image.
//
// Parameters:
//   - path: the image file
//
// Returns:
//   - *DecodedImage: the decoded image
//   - error: a read or decode error
func Decode(path string) (*DecodedImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("texture: open %s: %w", path, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", path, err)
	}
	m := FromGoImage(img)
	common.Logger().Debug("texture: decoded", "path", path, "format", format, "layout", m.Layout, "width", m.Width, "height", m.Height)
	return m, nil
}
