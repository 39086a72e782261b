package passes

import (
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/nprs/pkg/bind"
	"github.com/matzehuels/nprs/pkg/pass"
	"github.com/matzehuels/nprs/pkg/raster"
)

// Input copies the source image.
type Input struct{}

func (Input) Name() string           { return NameInput }
func (Input) Dependencies() []string { return []string{pass.MainImage} }

func (Input) Apply(target *raster.Image, aux []*raster.Image) {
	target.CopyFrom(aux[0])
}

var decodeInput = bind.Unit(Input{})

// Luminance converts its dependency to gray.
type Luminance struct {
	Method LuminanceMethod
}

func (Luminance) Name() string           { return NameLuminance }
func (Luminance) Dependencies() []string { return []string{pass.AnyImage} }

func (p Luminance) Apply(target *raster.Image, aux []*raster.Image) {
	mapFrom(target, aux[0], func(c raster.Pixel) raster.Pixel {
		l := p.Method.Luminance(c.R, c.G, c.B)
		return raster.Pixel{R: l, G: l, B: l, A: c.A}
	})
}

var decodeLuminance = bind.Struct([]bind.Field{
	bind.Optional("method", decodeLuminanceMethod, Rec709),
}, func(f bind.Fields) Luminance {
	return Luminance{Method: bind.Get[LuminanceMethod](f, "method")}
})

// Invert inverts the colors of its dependency. Alpha is kept.
type Invert struct{}

func (Invert) Name() string           { return NameInvert }
func (Invert) Dependencies() []string { return []string{pass.AnyImage} }

func (Invert) Apply(target *raster.Image, aux []*raster.Image) {
	target.Replace(imaging.Invert(aux[0].NRGBA()))
}

var decodeInvert = bind.Unit(Invert{})

// Adjust applies contrast, brightness, gamma and saturation corrections in
// that order. Contrast, brightness and saturation are percentages in
// [-100, 100]; zero leaves the image unchanged, as does a gamma of 1.
type Adjust struct {
	Contrast   float64
	Brightness float64
	Gamma      float64
	Saturation float64
}

func (Adjust) Name() string           { return NameAdjust }
func (Adjust) Dependencies() []string { return []string{pass.AnyImage} }

func (p Adjust) Apply(target *raster.Image, aux []*raster.Image) {
	img := aux[0].NRGBA()
	if p.Contrast != 0 {
		img = imaging.AdjustContrast(img, p.Contrast)
	}
	if p.Brightness != 0 {
		img = imaging.AdjustBrightness(img, p.Brightness)
	}
	if p.Gamma != 1 {
		img = imaging.AdjustGamma(img, p.Gamma)
	}
	if p.Saturation != 0 {
		img = imaging.AdjustSaturation(img, p.Saturation)
	}
	target.Replace(img)
}

var decodeAdjust = bind.Struct([]bind.Field{
	bind.Optional("contrast", bind.Float64, 0.0),
	bind.Optional("brightness", bind.Float64, 0.0),
	bind.Optional("gamma", bind.Float64, 1.0),
	bind.Optional("saturation", bind.Float64, 0.0),
}, func(f bind.Fields) Adjust {
	return Adjust{
		Contrast:   bind.Get[float64](f, "contrast"),
		Brightness: bind.Get[float64](f, "brightness"),
		Gamma:      bind.Get[float64](f, "gamma"),
		Saturation: bind.Get[float64](f, "saturation"),
	}
})

// Threshold splits a luminance image into black and white. Pixels brighter
// than Level become white, unless Invert is set.
type Threshold struct {
	Level  float64
	Invert bool
}

func (Threshold) Name() string           { return NameThreshold }
func (Threshold) Dependencies() []string { return []string{NameLuminance} }

func (p Threshold) Apply(target *raster.Image, aux []*raster.Image) {
	mapFrom(target, aux[0], func(c raster.Pixel) raster.Pixel {
		on := c.R > p.Level
		if p.Invert {
			on = !on
		}
		if on {
			return raster.Pixel{R: 1, G: 1, B: 1, A: c.A}
		}
		return raster.Pixel{A: c.A}
	})
}

var decodeThreshold = bind.Struct([]bind.Field{
	bind.Optional("level", bind.Float64, 0.5),
	bind.Optional("invert", bind.Bool, false),
}, func(f bind.Fields) Threshold {
	return Threshold{Level: bind.Get[float64](f, "level"), Invert: bind.Get[bool](f, "invert")}
})

// Tint multiplies every pixel by Color.
type Tint struct {
	Color bind.Color
}

func (Tint) Name() string           { return NameTint }
func (Tint) Dependencies() []string { return []string{pass.AnyImage} }

func (p Tint) Apply(target *raster.Image, aux []*raster.Image) {
	scale := func(v uint8, f float64) uint8 {
		return uint8(clamp01(float64(v)/255*f)*255 + 0.5)
	}
	target.Replace(imaging.AdjustFunc(aux[0].NRGBA(), func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: scale(c.R, p.Color.R),
			G: scale(c.G, p.Color.G),
			B: scale(c.B, p.Color.B),
			A: scale(c.A, p.Color.A),
		}
	}))
}

var decodeTint = bind.Struct([]bind.Field{
	bind.Required("color", bind.DecodeColor),
}, func(f bind.Fields) Tint {
	return Tint{Color: bind.Get[bind.Color](f, "color")}
})
