package passes

import (
	"math"

	"github.com/matzehuels/nprs/pkg/bind"
	"github.com/matzehuels/nprs/pkg/pass"
	"github.com/matzehuels/nprs/pkg/raster"
)

// BlendKind is the operator of a [BlendMode].
type BlendKind int

const (
	BlendAdd BlendKind = iota
	BlendSubtract
	BlendMultiply
	BlendScreen
	BlendOverlay
)

// BlendMode selects how two images are combined. Lum is only used by
// BlendOverlay.
type BlendMode struct {
	Kind BlendKind
	Lum  LuminanceMethod
}

var decodeBlendMode = bind.Enum(
	bind.Case("Add", bind.Unit(BlendMode{Kind: BlendAdd})),
	bind.Case("Subtract", bind.Unit(BlendMode{Kind: BlendSubtract})),
	bind.Case("Multiply", bind.Unit(BlendMode{Kind: BlendMultiply})),
	bind.Case("Screen", bind.Unit(BlendMode{Kind: BlendScreen})),
	bind.Case("Overlay", bind.Struct([]bind.Field{
		bind.Required("0", decodeLuminanceMethod),
	}, func(f bind.Fields) BlendMode {
		return BlendMode{Kind: BlendOverlay, Lum: bind.Get[LuminanceMethod](f, "0")}
	})),
)

// Blend combines two images channel by channel. The result is mixed with
// the first image by Strength; alpha comes from the first image.
//
// Each input can be scaled and rotated (in radians) around the origin
// before it is combined. Transformed inputs repeat past their edges. A
// zero scale component is treated as 1.
type Blend struct {
	Mode             BlendMode
	RotateA, RotateB float32
	ScaleA, ScaleB   bind.Vec2
	InvertA, InvertB bool
	Invert           bool
	Strength         float64
}

func (Blend) Name() string           { return NameBlend }
func (Blend) Dependencies() []string { return []string{pass.AnyImage, pass.AnyImage} }

func (p Blend) Apply(target *raster.Image, aux []*raster.Image) {
	sampleA := sampler(aux[0], p.ScaleA, p.RotateA)
	sampleB := sampler(aux[1], p.ScaleB, p.RotateB)

	w, h := target.Resolution()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			target.Set(x, y, p.mix(sampleA(x, y), sampleB(x, y)))
		}
	}
}

func (p Blend) mix(src, b raster.Pixel) raster.Pixel {
	a := src
	if p.InvertA {
		a = invertRGB(a)
	}
	if p.InvertB {
		b = invertRGB(b)
	}
	c := p.combine(a, b)
	if p.Invert {
		c = invertRGB(c)
	}
	return raster.Pixel{
		R: a.R + (c.R-a.R)*p.Strength,
		G: a.G + (c.G-a.G)*p.Strength,
		B: a.B + (c.B-a.B)*p.Strength,
		A: src.A,
	}
}

// sampler looks up m at target coordinates divided by scale and rotated by
// -angle.
func sampler(m *raster.Image, scale bind.Vec2, angle float32) func(x, y int) raster.Pixel {
	sx, sy := scale.X, scale.Y
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	if sx == 1 && sy == 1 && angle == 0 {
		return m.At
	}

	sin, cos := math.Sincos(-float64(angle))
	return func(x, y int) raster.Pixel {
		u, v := float64(x)/sx, float64(y)/sy
		return m.Sample(cos*u-sin*v, sin*u+cos*v)
	}
}

func invertRGB(p raster.Pixel) raster.Pixel {
	return raster.Pixel{R: 1 - p.R, G: 1 - p.G, B: 1 - p.B, A: p.A}
}

func (p Blend) combine(a, b raster.Pixel) raster.Pixel {
	var op func(x, y float64) float64

	switch p.Mode.Kind {
	case BlendSubtract:
		op = func(x, y float64) float64 { return x - y }
	case BlendMultiply:
		op = func(x, y float64) float64 { return x * y }
	case BlendScreen:
		op = func(x, y float64) float64 { return 1 - (1-x)*(1-y) }
	case BlendOverlay:
		if p.Mode.Lum.Luminance(a.R, a.G, a.B) < 0.5 {
			op = func(x, y float64) float64 { return 2 * x * y }
		} else {
			op = func(x, y float64) float64 { return 1 - 2*(1-x)*(1-y) }
		}
	default:
		op = func(x, y float64) float64 { return x + y }
	}

	return raster.Pixel{
		R: clamp01(op(a.R, b.R)),
		G: clamp01(op(a.G, b.G)),
		B: clamp01(op(a.B, b.B)),
	}
}

var decodeBlend = bind.Struct([]bind.Field{
	bind.Required("mode", decodeBlendMode),
	bind.Optional("rotate_a", bind.Float32, 0),
	bind.Optional("rotate_b", bind.Float32, 0),
	bind.Optional("scale_a", bind.DecodeVec2, bind.Vec2{X: 1, Y: 1}),
	bind.Optional("scale_b", bind.DecodeVec2, bind.Vec2{X: 1, Y: 1}),
	bind.Optional("invert_a", bind.Bool, false),
	bind.Optional("invert_b", bind.Bool, false),
	bind.Optional("invert", bind.Bool, false),
	bind.Optional("strength", bind.Float64, 1.0),
}, func(f bind.Fields) Blend {
	return Blend{
		Mode:     bind.Get[BlendMode](f, "mode"),
		RotateA:  bind.Get[float32](f, "rotate_a"),
		RotateB:  bind.Get[float32](f, "rotate_b"),
		ScaleA:   bind.Get[bind.Vec2](f, "scale_a"),
		ScaleB:   bind.Get[bind.Vec2](f, "scale_b"),
		InvertA:  bind.Get[bool](f, "invert_a"),
		InvertB:  bind.Get[bool](f, "invert_b"),
		Invert:   bind.Get[bool](f, "invert"),
		Strength: bind.Get[float64](f, "strength"),
	}
})
