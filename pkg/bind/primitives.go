package bind

import (
	"github.com/matzehuels/nprs/pkg/value"
)

// Int binds an Int value.
var Int Decoder[int] = func(v value.Value) (int, error) {
	i, ok := v.(value.Int)
	if !ok {
		return 0, WrongType("int", v)
	}
	return int(i), nil
}

// Uint binds a non-negative Int value.
var Uint Decoder[uint] = func(v value.Value) (uint, error) {
	i, err := Int(v)
	if err != nil || i < 0 {
		return 0, WrongType("unsigned int", v)
	}
	return uint(i), nil
}

// Float32 binds a Float value. Ints are not promoted.
var Float32 Decoder[float32] = func(v value.Value) (float32, error) {
	f, ok := v.(value.Float)
	if !ok {
		return 0, WrongType("float", v)
	}
	return float32(f), nil
}

// Float64 binds a Float value. Ints are not promoted.
var Float64 Decoder[float64] = func(v value.Value) (float64, error) {
	f, ok := v.(value.Float)
	if !ok {
		return 0, WrongType("float", v)
	}
	return float64(f), nil
}

// Bool binds a Bool value.
var Bool Decoder[bool] = func(v value.Value) (bool, error) {
	b, ok := v.(value.Bool)
	if !ok {
		return false, WrongType("bool", v)
	}
	return bool(b), nil
}

// Path binds a Path value.
var Path Decoder[string] = func(v value.Value) (string, error) {
	p, ok := v.(value.Path)
	if !ok {
		return "", WrongType("path", v)
	}
	return string(p), nil
}

// Vec2 is a two-component vector.
type Vec2 struct {
	X, Y float64
}

// Color is a straight-alpha RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

// DecodeVec2 binds Vec2(x, y) or Vec2 { x: .., y: .. }.
var DecodeVec2 Decoder[Vec2] = Struct([]Field{
	Required("x", Float64).AtIndex(0),
	Required("y", Float64).AtIndex(1),
}, func(f Fields) Vec2 {
	return Vec2{X: Get[float64](f, "x"), Y: Get[float64](f, "y")}
})

// DecodeColor binds Color(r, g, b) or Color { r: .., g: .., b: .., a: .. }.
// Alpha defaults to 1.
var DecodeColor Decoder[Color] = Struct([]Field{
	Required("r", Float64).AtIndex(0),
	Required("g", Float64).AtIndex(1),
	Required("b", Float64).AtIndex(2),
	Optional("a", Float64, 1.0).AtIndex(3),
}, func(f Fields) Color {
	return Color{
		R: Get[float64](f, "r"),
		G: Get[float64](f, "g"),
		B: Get[float64](f, "b"),
		A: Get[float64](f, "a"),
	}
})
