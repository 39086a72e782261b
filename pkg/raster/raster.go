// Package raster provides the RGBA image buffer that passes read and write,
// plus decoding and encoding through github.com/disintegration/imaging.
//
// An [Image] owns an *image.NRGBA (8 bits per channel, straight alpha).
// Passes that compute in floating point read and write [Pixel] values with
// channels in [0, 1].
package raster

import (
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/nprs/pkg/errors"
)

// Image is a mutable RGBA buffer.
type Image struct {
	img *image.NRGBA
}

// New returns a width x height image filled with fill.
func New(width, height int, fill color.Color) *Image {
	return &Image{img: imaging.New(width, height, fill)}
}

// Transparent returns a width x height image with every pixel zeroed.
func Transparent(width, height int) *Image {
	return New(width, height, color.Transparent)
}

// FromImage copies src into a new Image.
func FromImage(src image.Image) *Image {
	return &Image{img: imaging.Clone(src)}
}

// Resolution returns the width and height in pixels.
func (m *Image) Resolution() (width, height int) {
	b := m.img.Bounds()
	return b.Dx(), b.Dy()
}

// NRGBA returns the underlying buffer. Writes through it are visible to m.
func (m *Image) NRGBA() *image.NRGBA {
	return m.img
}

// Replace overwrites m with the contents of src. A src with a different
// resolution is resized to fit m.
func (m *Image) Replace(src image.Image) {
	w, h := m.Resolution()
	b := src.Bounds()
	if b.Dx() != w || b.Dy() != h {
		src = imaging.Resize(src, w, h, imaging.Lanczos)
	}
	next := imaging.Clone(src)
	copy(m.img.Pix, next.Pix)
}

// CopyFrom overwrites m with the contents of src.
func (m *Image) CopyFrom(src *Image) {
	m.Replace(src.img)
}

// Clone returns a deep copy of m.
func (m *Image) Clone() *Image {
	return FromImage(m.img)
}

// Pixel is a straight-alpha color with channels in [0, 1].
type Pixel struct {
	R, G, B, A float64
}

// At returns the pixel at (x, y).
func (m *Image) At(x, y int) Pixel {
	i := m.img.PixOffset(x, y)
	s := m.img.Pix[i : i+4 : i+4]
	return Pixel{
		R: float64(s[0]) / 255,
		G: float64(s[1]) / 255,
		B: float64(s[2]) / 255,
		A: float64(s[3]) / 255,
	}
}

// Set writes p at (x, y), clamping every channel to [0, 1].
func (m *Image) Set(x, y int, p Pixel) {
	i := m.img.PixOffset(x, y)
	s := m.img.Pix[i : i+4 : i+4]
	s[0] = quantize(p.R)
	s[1] = quantize(p.G)
	s[2] = quantize(p.B)
	s[3] = quantize(p.A)
}

// Sample returns the bilinear interpolation of m at (x, y), where pixel
// centers sit on integer coordinates. Coordinates outside the image wrap
// around, so the image repeats in both directions.
func (m *Image) Sample(x, y float64) Pixel {
	w, h := m.Resolution()
	x0, y0 := math.Floor(x), math.Floor(y)
	fx, fy := x-x0, y-y0
	ix, iy := int(x0), int(y0)

	top := lerp(m.At(wrap(ix, w), wrap(iy, h)), m.At(wrap(ix+1, w), wrap(iy, h)), fx)
	bottom := lerp(m.At(wrap(ix, w), wrap(iy+1, h)), m.At(wrap(ix+1, w), wrap(iy+1, h)), fx)
	return lerp(top, bottom, fy)
}

func lerp(a, b Pixel, t float64) Pixel {
	if t == 0 {
		return a
	}
	return Pixel{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: a.A + (b.A-a.A)*t,
	}
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// Map replaces every pixel of m with fn applied to it.
func (m *Image) Map(fn func(Pixel) Pixel) {
	w, h := m.Resolution()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Set(x, y, fn(m.At(x, y)))
		}
	}
}

func quantize(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}

// Format is an encoded image format.
type Format = imaging.Format

// FormatFromName returns the format for a file name or a bare extension
// such as "png" or ".jpg".
func FormatFromName(name string) (Format, error) {
	ext := filepath.Ext(name)
	if ext == "" {
		ext = "." + name
	}
	f, err := imaging.FormatFromExtension(strings.ToLower(ext))
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidFormat, "unsupported image format %q", name)
	}
	return f, nil
}

// Decode reads an image in any supported format. EXIF orientation is
// applied.
func Decode(r io.Reader) (*Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode image")
	}
	return FromImage(img), nil
}

// Encode writes m to w in format.
func Encode(w io.Writer, m *Image, format Format) error {
	if err := imaging.Encode(w, m.img, format, imaging.JPEGQuality(95)); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s", format)
	}
	return nil
}

// Open reads the image at path.
func Open(path string) (*Image, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", path)
	}
	return FromImage(img), nil
}

// Save writes m to path in the format implied by its extension.
func Save(m *Image, path string) error {
	if _, err := FormatFromName(path); err != nil {
		return err
	}
	if err := imaging.Save(m.img, path, imaging.JPEGQuality(95)); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "save %s", path)
	}
	return nil
}
