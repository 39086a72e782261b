package passes

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/nprs/pkg/bind"
	"github.com/matzehuels/nprs/pkg/pass"
	"github.com/matzehuels/nprs/pkg/raster"
)

// GaussianBlur blurs its dependency with a separable gaussian kernel of
// 2*KernelRadius+1 taps.
type GaussianBlur struct {
	Sigma        float64
	KernelRadius int
}

// NewGaussianBlur returns a blur with the default radius for sigma.
func NewGaussianBlur(sigma float64) GaussianBlur {
	return GaussianBlur{Sigma: sigma, KernelRadius: defaultRadius(sigma)}
}

func defaultRadius(sigma float64) int {
	return int(math.Floor(sigma * 3.5))
}

func (GaussianBlur) Name() string           { return NameGaussianBlur }
func (GaussianBlur) Dependencies() []string { return []string{pass.AnyImage} }

func (p GaussianBlur) Apply(target *raster.Image, aux []*raster.Image) {
	target.Replace(convolveSeparable(aux[0].NRGBA(), gaussianKernel(p.Sigma, p.KernelRadius)))
}

var decodeGaussianBlur = bind.Struct([]bind.Field{
	bind.Required("sigma", bind.Float64),
	bind.Derived("kernel_radius", bind.Uint, func(f bind.Fields) uint {
		return uint(max(0, defaultRadius(bind.Get[float64](f, "sigma"))))
	}),
}, func(f bind.Fields) GaussianBlur {
	return GaussianBlur{
		Sigma:        bind.Get[float64](f, "sigma"),
		KernelRadius: int(bind.Get[uint](f, "kernel_radius")),
	}
})

// BoxBlur averages each pixel with its neighbors within Radius.
type BoxBlur struct {
	Radius int
}

func (BoxBlur) Name() string           { return NameBoxBlur }
func (BoxBlur) Dependencies() []string { return []string{pass.AnyImage} }

func (p BoxBlur) Apply(target *raster.Image, aux []*raster.Image) {
	n := 2*p.Radius + 1
	k := make([]float64, n)
	for i := range k {
		k[i] = 1 / float64(n)
	}
	target.Replace(convolveSeparable(aux[0].NRGBA(), k))
}

var decodeBoxBlur = bind.Struct([]bind.Field{
	bind.Required("radius", bind.Uint).WithAlias("size"),
}, func(f bind.Fields) BoxBlur {
	return BoxBlur{Radius: int(bind.Get[uint](f, "radius"))}
})

// Sharpness convolves its dependency with a 3x3 sharpening kernel.
type Sharpness struct {
	Kernel [9]float64
}

// NewSharpness builds the kernel for amount: every direct neighbor weighs
// -amount and the center 4*amount+1.
func NewSharpness(amount float64) Sharpness {
	n := -amount
	c := 4*amount + 1
	return Sharpness{Kernel: [9]float64{
		0, n, 0,
		n, c, n,
		0, n, 0,
	}}
}

func (Sharpness) Name() string           { return NameSharpness }
func (Sharpness) Dependencies() []string { return []string{pass.AnyImage} }

func (p Sharpness) Apply(target *raster.Image, aux []*raster.Image) {
	target.Replace(imaging.Convolve3x3(aux[0].NRGBA(), p.Kernel, nil))
}

type sharpnessBuilder struct {
	amount float64
}

var decodeSharpness = bind.From(bind.Struct([]bind.Field{
	bind.Required("amount", bind.Float64),
}, func(f bind.Fields) sharpnessBuilder {
	return sharpnessBuilder{amount: bind.Get[float64](f, "amount")}
}), func(b sharpnessBuilder) Sharpness {
	return NewSharpness(b.amount)
})

// Bloom adds a glow around the bright areas of its dependency: pixels above
// Threshold are isolated, blurred, then shaped with Gamma and Intensity.
type Bloom struct {
	Lum       LuminanceMethod
	Threshold float64
	Blur      GaussianBlur
	Gamma     float64
	Intensity float64
}

func (Bloom) Name() string           { return NameBloom }
func (Bloom) Dependencies() []string { return []string{pass.AnyImage} }

func (p Bloom) Apply(target *raster.Image, aux []*raster.Image) {
	mapFrom(target, aux[0], func(c raster.Pixel) raster.Pixel {
		if p.Lum.Luminance(c.R, c.G, c.B) > p.Threshold {
			return raster.Pixel{R: 1, G: 1, B: 1, A: 1}
		}
		return raster.Pixel{A: 1}
	})

	bright := target.Clone()
	p.Blur.Apply(target, []*raster.Image{bright})

	target.Map(func(c raster.Pixel) raster.Pixel {
		return raster.Pixel{
			R: p.Intensity * math.Pow(c.R, p.Gamma),
			G: p.Intensity * math.Pow(c.G, p.Gamma),
			B: p.Intensity * math.Pow(c.B, p.Gamma),
			A: c.A,
		}
	})
}

type bloomBuilder struct {
	lum          LuminanceMethod
	threshold    float64
	sigma        float64
	kernelRadius uint
	gamma        float64
	intensity    float64
}

var decodeBloom = bind.From(bind.Struct([]bind.Field{
	bind.Required("lum", decodeLuminanceMethod),
	bind.Required("threshold", bind.Float64),
	bind.Required("sigma", bind.Float64),
	bind.Derived("kernel_radius", bind.Uint, func(f bind.Fields) uint {
		return uint(max(0, defaultRadius(bind.Get[float64](f, "sigma"))))
	}),
	bind.Optional("gamma", bind.Float64, 1/2.2),
	bind.Required("intensity", bind.Float64),
}, func(f bind.Fields) bloomBuilder {
	return bloomBuilder{
		lum:          bind.Get[LuminanceMethod](f, "lum"),
		threshold:    bind.Get[float64](f, "threshold"),
		sigma:        bind.Get[float64](f, "sigma"),
		kernelRadius: bind.Get[uint](f, "kernel_radius"),
		gamma:        bind.Get[float64](f, "gamma"),
		intensity:    bind.Get[float64](f, "intensity"),
	}
}), func(b bloomBuilder) Bloom {
	return Bloom{
		Lum:       b.lum,
		Threshold: b.threshold,
		Blur:      GaussianBlur{Sigma: b.sigma, KernelRadius: int(b.kernelRadius)},
		Gamma:     b.gamma,
		Intensity: b.intensity,
	}
})

// gaussianKernel returns the normalized 1D gaussian of 2*radius+1 taps.
// A non-positive sigma yields the identity kernel.
func gaussianKernel(sigma float64, radius int) []float64 {
	if sigma <= 0 || radius <= 0 {
		return []float64{1}
	}
	k := make([]float64, 2*radius+1)
	var sum float64
	for i := range k {
		x := float64(i - radius)
		k[i] = math.Exp(-x * x / (2 * sigma * sigma))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// convolveSeparable applies the symmetric kernel k horizontally then
// vertically. Samples past the border clamp to the edge.
func convolveSeparable(src *image.NRGBA, k []float64) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	r := len(k) / 2
	tmp := make([]float64, w*h*4)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc [4]float64
			for i, kv := range k {
				sx := min(max(x+i-r, 0), w-1)
				off := src.PixOffset(b.Min.X+sx, b.Min.Y+y)
				for c := range acc {
					acc[c] += kv * float64(src.Pix[off+c])
				}
			}
			copy(tmp[(y*w+x)*4:], acc[:])
		}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc [4]float64
			for i, kv := range k {
				sy := min(max(y+i-r, 0), h-1)
				off := (sy*w + x) * 4
				for c := range acc {
					acc[c] += kv * tmp[off+c]
				}
			}
			off := dst.PixOffset(x, y)
			for c, v := range acc {
				dst.Pix[off+c] = uint8(math.Max(0, math.Min(255, v+0.5)))
			}
		}
	}
	return dst
}
