// Package passes implements the built-in nprs passes and the registration
// table that makes them available to scripts.
//
// [Registry] builds the table explicitly; nothing registers itself at init
// time. Programs that add their own passes start from Registry and call
// [pass.Register] on the result.
package passes

import (
	"slices"

	"github.com/matzehuels/nprs/pkg/pass"
)

// Registered type names.
const (
	NameInput        = "Input"
	NameLuminance    = "Luminance"
	NameGaussianBlur = "GaussianBlur"
	NameBoxBlur      = "BoxBlur"
	NameSharpness    = "Sharpness"
	NameInvert       = "Invert"
	NameAdjust       = "Adjust"
	NameThreshold    = "Threshold"
	NameBlend        = "Blend"
	NameBloom        = "Bloom"
	NameTint         = "Tint"
	NameTexture      = "Texture"
)

// Info describes a built-in pass for listings.
type Info struct {
	Name         string   `json:"name"`
	Dependencies []string `json:"dependencies"`
	Fields       string   `json:"fields"`
	Summary      string   `json:"summary"`
	ReadsFiles   bool     `json:"reads_files,omitempty"`
}

var table = []struct {
	info     Info
	register func(*pass.Registry)
}{
	{
		Info{NameInput, []string{pass.MainImage}, "", "copy of the source image", false},
		func(r *pass.Registry) { pass.Register(r, NameInput, decodeInput) },
	},
	{
		Info{NameLuminance, []string{pass.AnyImage}, "method = Rec709", "grayscale by luminance (Rec709, Rec601, Average)", false},
		func(r *pass.Registry) { pass.Register(r, NameLuminance, decodeLuminance) },
	},
	{
		Info{NameGaussianBlur, []string{pass.AnyImage}, "sigma, kernel_radius = floor(sigma*3.5)", "separable gaussian blur", false},
		func(r *pass.Registry) { pass.Register(r, NameGaussianBlur, decodeGaussianBlur) },
	},
	{
		Info{NameBoxBlur, []string{pass.AnyImage}, "radius (alias size)", "separable box blur", false},
		func(r *pass.Registry) { pass.Register(r, NameBoxBlur, decodeBoxBlur) },
	},
	{
		Info{NameSharpness, []string{pass.AnyImage}, "amount", "3x3 sharpening kernel", false},
		func(r *pass.Registry) { pass.Register(r, NameSharpness, decodeSharpness) },
	},
	{
		Info{NameInvert, []string{pass.AnyImage}, "", "inverted colors", false},
		func(r *pass.Registry) { pass.Register(r, NameInvert, decodeInvert) },
	},
	{
		Info{NameAdjust, []string{pass.AnyImage}, "contrast = 0, brightness = 0, gamma = 1, saturation = 0", "color adjustments (percentages in -100..100)", false},
		func(r *pass.Registry) { pass.Register(r, NameAdjust, decodeAdjust) },
	},
	{
		Info{NameThreshold, []string{NameLuminance}, "level = 0.5, invert = false", "black and white split of a luminance image", false},
		func(r *pass.Registry) { pass.Register(r, NameThreshold, decodeThreshold) },
	},
	{
		Info{NameBlend, []string{pass.AnyImage, pass.AnyImage}, "mode, strength = 1, invert = false, invert_a/invert_b = false, scale_a/scale_b = Vec2(1.0, 1.0), rotate_a/rotate_b = 0.0", "blend two images (Add, Subtract, Multiply, Screen, Overlay(method))", false},
		func(r *pass.Registry) { pass.Register(r, NameBlend, decodeBlend) },
	},
	{
		Info{NameBloom, []string{pass.AnyImage}, "lum, threshold, sigma, kernel_radius = floor(sigma*3.5), gamma = 1/2.2, intensity", "glow from bright areas", false},
		func(r *pass.Registry) { pass.Register(r, NameBloom, decodeBloom) },
	},
	{
		Info{NameTint, []string{pass.AnyImage}, "color", "multiply by a color", false},
		func(r *pass.Registry) { pass.Register(r, NameTint, decodeTint) },
	},
	{
		Info{NameTexture, []string{}, "path", "image file resized to the input resolution", true},
		func(r *pass.Registry) { pass.Register(r, NameTexture, decodeTexture) },
	},
}

// Registry returns a registry holding every built-in pass.
func Registry() *pass.Registry {
	r := pass.NewRegistry()
	for _, e := range table {
		e.register(r)
	}
	return r
}

// Sandboxed returns a registry holding the built-in passes that do not
// read the local filesystem. Scripts from untrusted sources should be
// compiled against it.
func Sandboxed() *pass.Registry {
	r := pass.NewRegistry()
	for _, e := range table {
		if !e.info.ReadsFiles {
			e.register(r)
		}
	}
	return r
}

// Catalog describes the built-in passes in registration order.
func Catalog() []Info {
	out := make([]Info, len(table))
	for i, e := range table {
		out[i] = e.info
		out[i].Dependencies = slices.Clone(e.info.Dependencies)
	}
	return out
}
