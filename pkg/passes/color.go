package passes

import (
	"math"

	"github.com/matzehuels/nprs/pkg/bind"
	"github.com/matzehuels/nprs/pkg/raster"
)

// LuminanceMethod selects the channel weights used to compute luminance.
type LuminanceMethod int

const (
	Rec709 LuminanceMethod = iota
	Rec601
	Average
)

func (m LuminanceMethod) String() string {
	switch m {
	case Rec601:
		return "Rec601"
	case Average:
		return "Average"
	default:
		return "Rec709"
	}
}

// Luminance returns the luminance of an RGB triple.
func (m LuminanceMethod) Luminance(r, g, b float64) float64 {
	switch m {
	case Rec601:
		return 0.299*r + 0.587*g + 0.114*b
	case Average:
		return (r + g + b) / 3
	default:
		return 0.2126*r + 0.7152*g + 0.0722*b
	}
}

var decodeLuminanceMethod = bind.Enum(
	bind.Case("Rec709", bind.Unit(Rec709)),
	bind.Case("Rec601", bind.Unit(Rec601)),
	bind.Case("Average", bind.Unit(Average)),
)

// mapFrom writes fn(src(x, y)) to every pixel of dst.
func mapFrom(dst, src *raster.Image, fn func(raster.Pixel) raster.Pixel) {
	w, h := dst.Resolution()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Set(x, y, fn(src.At(x, y)))
		}
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
