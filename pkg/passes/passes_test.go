package passes

import (
	"image/color"
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/nprs/pkg/bind"
	"github.com/matzehuels/nprs/pkg/errors"
	"github.com/matzehuels/nprs/pkg/pass"
	"github.com/matzehuels/nprs/pkg/raster"
	"github.com/matzehuels/nprs/pkg/value"
)

func bindPass(t *testing.T, name string, fields map[string]value.Value) pass.Pass {
	t.Helper()
	var v value.Value = value.UnitStruct{Name: name}
	if fields != nil {
		v = value.Struct{Name: name, Fields: fields}
	}
	p, err := Registry().Bind(name, v)
	if err != nil {
		t.Fatalf("Bind(%s): %v", name, err)
	}
	return p
}

func TestRegistryNames(t *testing.T) {
	want := []string{
		NameInput, NameLuminance, NameGaussianBlur, NameBoxBlur, NameSharpness,
		NameInvert, NameAdjust, NameThreshold, NameBlend, NameBloom, NameTint, NameTexture,
	}
	if diff := cmp.Diff(want, Registry().Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want[:len(want)-1], Sandboxed().Names()); diff != "" {
		t.Errorf("Sandboxed().Names() mismatch (-want +got):\n%s", diff)
	}

	for _, info := range Catalog() {
		b, err := Registry().Lookup(info.Name)
		if err != nil || b == nil {
			t.Errorf("Lookup(%s) = %v", info.Name, err)
		}
	}
}

func TestCatalogMatchesDependencies(t *testing.T) {
	for _, info := range Catalog() {
		t.Run(info.Name, func(t *testing.T) {
			var p pass.Pass
			switch info.Name {
			case NameInput:
				p = Input{}
			case NameLuminance:
				p = Luminance{}
			case NameGaussianBlur:
				p = GaussianBlur{}
			case NameBoxBlur:
				p = BoxBlur{}
			case NameSharpness:
				p = Sharpness{}
			case NameInvert:
				p = Invert{}
			case NameAdjust:
				p = Adjust{}
			case NameThreshold:
				p = Threshold{}
			case NameBlend:
				p = Blend{}
			case NameBloom:
				p = Bloom{}
			case NameTint:
				p = Tint{}
			case NameTexture:
				p = Texture{}
			default:
				t.Fatalf("no pass for %s", info.Name)
			}
			if p.Name() != info.Name {
				t.Errorf("Name() = %q, want %q", p.Name(), info.Name)
			}
			if diff := cmp.Diff(info.Dependencies, p.Dependencies()); diff != "" {
				t.Errorf("Dependencies mismatch (-catalog +pass):\n%s", diff)
			}
		})
	}
}

func TestBindDefaults(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]value.Value
		want   pass.Pass
	}{
		{
			name:   NameGaussianBlur,
			fields: map[string]value.Value{"sigma": value.Float(2)},
			want:   GaussianBlur{Sigma: 2, KernelRadius: 7},
		},
		{
			name:   NameGaussianBlur,
			fields: map[string]value.Value{"sigma": value.Float(2), "kernel_radius": value.Int(3)},
			want:   GaussianBlur{Sigma: 2, KernelRadius: 3},
		},
		{
			name:   NameBoxBlur,
			fields: map[string]value.Value{"size": value.Int(2)},
			want:   BoxBlur{Radius: 2},
		},
		{
			name: NameLuminance,
			want: Luminance{Method: Rec709},
		},
		{
			name:   NameLuminance,
			fields: map[string]value.Value{"method": value.UnitStruct{Name: "Average"}},
			want:   Luminance{Method: Average},
		},
		{
			name: NameAdjust,
			want: Adjust{Gamma: 1},
		},
		{
			name: NameThreshold,
			want: Threshold{Level: 0.5},
		},
		{
			name:   NameSharpness,
			fields: map[string]value.Value{"amount": value.Float(1)},
			want:   NewSharpness(1),
		},
		{
			name: NameBlend,
			fields: map[string]value.Value{
				"mode": value.Tuple("Overlay", value.UnitStruct{Name: "Rec601"}),
			},
			want: Blend{
				Mode:     BlendMode{Kind: BlendOverlay, Lum: Rec601},
				ScaleA:   bind.Vec2{X: 1, Y: 1},
				ScaleB:   bind.Vec2{X: 1, Y: 1},
				Strength: 1,
			},
		},
		{
			name: NameTint,
			fields: map[string]value.Value{
				"color": value.Tuple("Color", value.Float(1), value.Float(0.5), value.Float(0)),
			},
			want: Tint{Color: bind.Color{R: 1, G: 0.5, B: 0, A: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bindPass(t, tt.name, tt.fields)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("bound pass mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBindBloom(t *testing.T) {
	p := bindPass(t, NameBloom, map[string]value.Value{
		"lum":       value.UnitStruct{Name: "Rec709"},
		"threshold": value.Float(0.8),
		"sigma":     value.Float(1),
		"intensity": value.Float(2),
	})
	b := p.(Bloom)
	if b.Blur != (GaussianBlur{Sigma: 1, KernelRadius: 3}) {
		t.Errorf("Blur = %+v, want sigma 1 radius 3", b.Blur)
	}
	if math.Abs(b.Gamma-1/2.2) > 1e-9 {
		t.Errorf("Gamma = %v, want 1/2.2", b.Gamma)
	}
	if math.Abs(b.Threshold-0.8) > 1e-6 || b.Intensity != 2 {
		t.Errorf("Bloom = %+v", b)
	}
}

func TestBindErrors(t *testing.T) {
	r := Registry()

	_, err := r.Bind(NameBlend, value.Struct{Name: NameBlend, Fields: map[string]value.Value{
		"mode": value.UnitStruct{Name: "Dissolve"},
	}})
	if !errors.Is(err, errors.ErrCodeUnknownVariant) {
		t.Errorf("unknown blend mode error = %v, want UNKNOWN_VARIANT", err)
	}

	_, err = r.Bind(NameGaussianBlur, value.UnitStruct{Name: NameGaussianBlur})
	if !errors.Is(err, errors.ErrCodeMissingField) {
		t.Errorf("blur without sigma error = %v, want MISSING_FIELD", err)
	}

	_, err = r.Bind(NameBoxBlur, value.Struct{Name: NameBoxBlur, Fields: map[string]value.Value{
		"radius": value.Int(1),
		"size":   value.Int(1),
	}})
	if !errors.Is(err, errors.ErrCodeDuplicateField) {
		t.Errorf("radius + size error = %v, want DUPLICATE_FIELD", err)
	}
}

func TestApplyInput(t *testing.T) {
	src := raster.New(2, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	dst := raster.Transparent(2, 2)
	Input{}.Apply(dst, []*raster.Image{src})
	if dst.At(1, 1) != src.At(1, 1) {
		t.Errorf("Input pixel = %+v, want %+v", dst.At(1, 1), src.At(1, 1))
	}
}

func TestApplyLuminanceAndThreshold(t *testing.T) {
	src := raster.Transparent(2, 1)
	src.Set(0, 0, raster.Pixel{R: 1, G: 1, B: 1, A: 1})
	src.Set(1, 0, raster.Pixel{R: 0.1, A: 1})

	lum := raster.Transparent(2, 1)
	Luminance{Method: Average}.Apply(lum, []*raster.Image{src})
	if got := lum.At(0, 0); got.R != 1 || got.G != 1 || got.B != 1 {
		t.Errorf("white luminance = %+v, want 1", got)
	}

	out := raster.Transparent(2, 1)
	Threshold{Level: 0.5}.Apply(out, []*raster.Image{lum})
	if got := out.At(0, 0); got != (raster.Pixel{R: 1, G: 1, B: 1, A: 1}) {
		t.Errorf("bright pixel = %+v, want white", got)
	}
	if got := out.At(1, 0); got != (raster.Pixel{A: 1}) {
		t.Errorf("dark pixel = %+v, want black", got)
	}

	Threshold{Level: 0.5, Invert: true}.Apply(out, []*raster.Image{lum})
	if got := out.At(0, 0); got != (raster.Pixel{A: 1}) {
		t.Errorf("inverted bright pixel = %+v, want black", got)
	}
}

func TestApplyBlurKeepsUniformImage(t *testing.T) {
	fill := color.NRGBA{R: 100, G: 150, B: 200, A: 255}
	src := raster.New(5, 4, fill)

	for _, p := range []pass.Pass{
		GaussianBlur{Sigma: 1.5, KernelRadius: 5},
		BoxBlur{Radius: 2},
		NewSharpness(0.5),
	} {
		t.Run(p.Name(), func(t *testing.T) {
			dst := raster.Transparent(5, 4)
			p.Apply(dst, []*raster.Image{src})
			if got := dst.NRGBA().NRGBAAt(2, 2); got != fill {
				t.Errorf("pixel = %+v, want %+v", got, fill)
			}
		})
	}
}

func TestGaussianKernel(t *testing.T) {
	k := gaussianKernel(1, 3)
	if len(k) != 7 {
		t.Fatalf("len = %d, want 7", len(k))
	}
	var sum float64
	for _, v := range k {
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("sum = %v, want 1", sum)
	}
	if k[3] <= k[2] || k[2] != k[4] {
		t.Errorf("kernel not symmetric around its peak: %v", k)
	}

	if got := gaussianKernel(0, 3); len(got) != 1 || got[0] != 1 {
		t.Errorf("gaussianKernel(0, 3) = %v, want [1]", got)
	}
}

func TestApplyBlend(t *testing.T) {
	a := raster.New(1, 1, color.NRGBA{R: 51, G: 102, B: 0, A: 255})
	b := raster.New(1, 1, color.NRGBA{R: 51, G: 204, B: 255, A: 128})
	dst := raster.Transparent(1, 1)

	Blend{Mode: BlendMode{Kind: BlendAdd}, Strength: 1}.Apply(dst, []*raster.Image{a, b})
	if got := dst.NRGBA().NRGBAAt(0, 0); got != (color.NRGBA{R: 102, G: 255, B: 255, A: 255}) {
		t.Errorf("Add = %+v", got)
	}

	Blend{Mode: BlendMode{Kind: BlendMultiply}, Strength: 0}.Apply(dst, []*raster.Image{a, b})
	if got := dst.NRGBA().NRGBAAt(0, 0); got != (color.NRGBA{R: 51, G: 102, B: 0, A: 255}) {
		t.Errorf("zero strength = %+v, want first image", got)
	}

	Blend{Mode: BlendMode{Kind: BlendScreen}, Strength: 1, Invert: true}.Apply(dst, []*raster.Image{a, a})
	got := dst.At(0, 0)
	want := 1 - (1 - (1-0.2)*(1-0.2))
	if math.Abs(got.R-want) > 1.0/255 {
		t.Errorf("inverted Screen R = %v, want %v", got.R, want)
	}
}

func TestApplyBlendTransforms(t *testing.T) {
	a := raster.Transparent(2, 1)
	a.Set(0, 0, raster.Pixel{R: 1, A: 1})
	a.Set(1, 0, raster.Pixel{B: 1, A: 1})
	b := raster.New(2, 1, color.Black)
	dst := raster.Transparent(2, 1)

	p := bindPass(t, NameBlend, map[string]value.Value{
		"mode":     value.UnitStruct{Name: "Multiply"},
		"scale_a":  value.Tuple("Vec2", value.Float(0.5), value.Float(1)),
		"invert_b": value.Bool(true),
	})
	p.Apply(dst, []*raster.Image{a, b})

	// Halving the scale samples a at 2x: both pixels read a's red texel,
	// and the inverted black input multiplies by white.
	for x := range 2 {
		if got := dst.NRGBA().NRGBAAt(x, 0); got != (color.NRGBA{R: 255, A: 255}) {
			t.Errorf("pixel %d = %+v, want red", x, got)
		}
	}

	Blend{Mode: BlendMode{Kind: BlendAdd}, InvertA: true, Strength: 1}.Apply(dst, []*raster.Image{a, b})
	if got := dst.NRGBA().NRGBAAt(1, 0); got != (color.NRGBA{R: 255, G: 255, A: 255}) {
		t.Errorf("inverted first input = %+v, want yellow", got)
	}
}

func TestBindTexture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paper.png")
	if err := raster.Save(raster.New(2, 1, color.NRGBA{R: 40, G: 80, B: 120, A: 255}), path); err != nil {
		t.Fatal(err)
	}

	p := bindPass(t, NameTexture, map[string]value.Value{"0": value.Path(path)})
	tex := p.(Texture)
	if tex.Path != path {
		t.Errorf("Path = %q, want %q", tex.Path, path)
	}
	if w, h := tex.Resolution(); w != 2 || h != 1 {
		t.Errorf("Resolution() = %dx%d, want 2x1", w, h)
	}
	named := bindPass(t, NameTexture, map[string]value.Value{"path": value.Path(path)})
	if named.(Texture).String() != tex.String() {
		t.Errorf("String() = %q, want %q", named.(Texture).String(), tex.String())
	}

	dst := raster.Transparent(4, 3)
	tex.Apply(dst, nil)
	if got := dst.NRGBA().NRGBAAt(3, 2); got != (color.NRGBA{R: 40, G: 80, B: 120, A: 255}) {
		t.Errorf("resized pixel = %+v", got)
	}

	tests := []struct {
		name   string
		fields map[string]value.Value
		code   errors.Code
	}{
		{"MissingFile", map[string]value.Value{"0": value.Path(filepath.Join(t.TempDir(), "none.png"))}, errors.ErrCodeFileNotFound},
		{"NotAPath", map[string]value.Value{"0": value.Int(1)}, errors.ErrCodeWrongType},
		{"NoPath", map[string]value.Value{}, errors.ErrCodeMissingField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Registry().Bind(NameTexture, value.Struct{Name: NameTexture, Fields: tt.fields})
			if !errors.Is(err, tt.code) {
				t.Errorf("Bind() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestApplyTintAndInvert(t *testing.T) {
	src := raster.New(1, 1, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
	dst := raster.Transparent(1, 1)

	p := bindPass(t, NameTint, map[string]value.Value{
		"color": value.Tuple("Color", value.Float(1), value.Float(0.5), value.Float(0)),
	})
	p.Apply(dst, []*raster.Image{src})
	if got := dst.NRGBA().NRGBAAt(0, 0); got != (color.NRGBA{R: 200, G: 100, B: 0, A: 255}) {
		t.Errorf("Tint = %+v", got)
	}

	Invert{}.Apply(dst, []*raster.Image{src})
	if got := dst.NRGBA().NRGBAAt(0, 0); got != (color.NRGBA{R: 55, G: 55, B: 55, A: 255}) {
		t.Errorf("Invert = %+v", got)
	}
}

func TestApplyBloomDarkImage(t *testing.T) {
	src := raster.New(3, 3, color.Black)
	dst := raster.Transparent(3, 3)
	b := Bloom{Lum: Rec709, Threshold: 0.5, Blur: NewGaussianBlur(1), Gamma: 1 / 2.2, Intensity: 1}
	b.Apply(dst, []*raster.Image{src})
	if got := dst.At(1, 1); got != (raster.Pixel{A: 1}) {
		t.Errorf("bloom of black = %+v, want opaque black", got)
	}
}
