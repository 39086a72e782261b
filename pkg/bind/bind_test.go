package bind

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/nprs/pkg/errors"
	"github.com/matzehuels/nprs/pkg/value"
)

type pair struct {
	A, B int
}

var decodePair = Struct([]Field{
	Optional("a", Int, 5),
	Required("b", Int),
}, func(f Fields) pair {
	return pair{A: Get[int](f, "a"), B: Get[int](f, "b")}
})

func foo(fields map[string]value.Value) value.Value {
	return value.Struct{Name: "Foo", Fields: fields}
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name     string
		input    value.Value
		want     pair
		wantCode errors.Code
	}{
		{
			name:  "default applied",
			input: foo(map[string]value.Value{"b": value.Int(7)}),
			want:  pair{A: 5, B: 7},
		},
		{
			name:  "all supplied",
			input: foo(map[string]value.Value{"a": value.Int(1), "b": value.Int(2)}),
			want:  pair{A: 1, B: 2},
		},
		{
			name:     "missing required",
			input:    foo(map[string]value.Value{}),
			wantCode: errors.ErrCodeMissingField,
		},
		{
			name:     "unit struct has no fields",
			input:    value.UnitStruct{Name: "Foo"},
			wantCode: errors.ErrCodeMissingField,
		},
		{
			name:     "unknown field",
			input:    foo(map[string]value.Value{"b": value.Int(1), "c": value.Int(2)}),
			wantCode: errors.ErrCodeUnknownField,
		},
		{
			name:     "nested wrong type",
			input:    foo(map[string]value.Value{"b": value.Float(1)}),
			wantCode: errors.ErrCodeWrongType,
		},
		{
			name:     "not a struct",
			input:    value.Int(3),
			wantCode: errors.ErrCodeWrongType,
		},
		{
			name:  "struct name is not checked",
			input: value.Struct{Name: "Other", Fields: map[string]value.Value{"b": value.Int(9)}},
			want:  pair{A: 5, B: 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodePair(tt.input)
			if tt.wantCode != "" {
				if !errors.Is(err, tt.wantCode) {
					t.Fatalf("decode error = %v, want code %v", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got != tt.want {
				t.Errorf("decode = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStructErrorMessages(t *testing.T) {
	_, err := decodePair(foo(map[string]value.Value{}))
	if got := errors.UserMessage(err); got != "missing required field 'b'" {
		t.Errorf("missing message = %q", got)
	}

	_, err = decodePair(foo(map[string]value.Value{"b": value.Int(1), "c": value.Int(2)}))
	if got := errors.UserMessage(err); got != "unknown field 'c'" {
		t.Errorf("unknown message = %q", got)
	}

	_, err = decodePair(value.Path("x"))
	if got := errors.UserMessage(err); got != "incorrect type. expected struct, tuple struct, or unit struct but got path" {
		t.Errorf("wrong type message = %q", got)
	}
}

func TestAliasAndIndex(t *testing.T) {
	dec := Struct([]Field{
		Required("radius", Int).WithAlias("size"),
	}, func(f Fields) int { return Get[int](f, "radius") })

	got, err := dec(value.Struct{Name: "BoxBlur", Fields: map[string]value.Value{"size": value.Int(4)}})
	if err != nil || got != 4 {
		t.Fatalf("alias decode = (%d, %v), want (4, nil)", got, err)
	}

	_, err = dec(value.Struct{Name: "BoxBlur", Fields: map[string]value.Value{
		"size":   value.Int(4),
		"radius": value.Int(4),
	}})
	if !errors.Is(err, errors.ErrCodeDuplicateField) {
		t.Fatalf("alias + name error = %v, want DUPLICATE_FIELD", err)
	}
	if got := errors.UserMessage(err); got != "duplicate field 'radius'" {
		t.Errorf("duplicate message = %q, want canonical name", got)
	}

	v, err := DecodeVec2(value.Struct{Name: "Vec2", Fields: map[string]value.Value{
		"0": value.Float(1),
		"x": value.Float(1),
		"y": value.Float(2),
	}})
	if !errors.Is(err, errors.ErrCodeDuplicateField) {
		t.Errorf("Vec2 index + name = (%v, %v), want DUPLICATE_FIELD", v, err)
	}
}

func TestDerivedDefault(t *testing.T) {
	type blur struct {
		Sigma  float64
		Radius int
	}
	dec := Struct([]Field{
		Required("sigma", Float64),
		Derived("kernel_radius", Int, func(f Fields) int {
			return int(math.Floor(Get[float64](f, "sigma") * 3.5))
		}),
	}, func(f Fields) blur {
		return blur{Sigma: Get[float64](f, "sigma"), Radius: Get[int](f, "kernel_radius")}
	})

	got, err := dec(value.Struct{Name: "GaussianBlur", Fields: map[string]value.Value{"sigma": value.Float(2)}})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != (blur{Sigma: 2, Radius: 7}) {
		t.Errorf("decode = %+v, want {2 7}", got)
	}

	got, err = dec(value.Struct{Name: "GaussianBlur", Fields: map[string]value.Value{
		"sigma":         value.Float(2),
		"kernel_radius": value.Int(3),
	}})
	if err != nil || got.Radius != 3 {
		t.Errorf("explicit radius = (%+v, %v), want radius 3", got, err)
	}
}

type shape interface{ kind() string }

type circle struct{ R float64 }
type square struct{}

func (circle) kind() string { return "circle" }
func (square) kind() string { return "square" }

var decodeShape = Enum(
	Case("Circle", Struct([]Field{Required("0", Float64)}, func(f Fields) shape {
		return circle{R: Get[float64](f, "0")}
	})),
	Case("Square", Unit[shape](square{})),
)

func TestEnum(t *testing.T) {
	got, err := decodeShape(value.Tuple("Circle", value.Float(1.5)))
	if err != nil {
		t.Fatalf("decode Circle: %v", err)
	}
	if diff := cmp.Diff(shape(circle{R: 1.5}), got); diff != "" {
		t.Errorf("Circle mismatch (-want +got):\n%s", diff)
	}

	got, err = decodeShape(value.UnitStruct{Name: "Square"})
	if err != nil || got.kind() != "square" {
		t.Errorf("decode Square = (%v, %v)", got, err)
	}

	_, err = decodeShape(value.UnitStruct{Name: "Triangle"})
	if !errors.Is(err, errors.ErrCodeUnknownVariant) {
		t.Errorf("unknown variant error = %v, want UNKNOWN_VARIANT", err)
	}

	_, err = decodeShape(value.Struct{Name: "Square", Fields: map[string]value.Value{"x": value.Int(1)}})
	if !errors.Is(err, errors.ErrCodeUnknownField) {
		t.Errorf("unit variant with field error = %v, want UNKNOWN_FIELD", err)
	}

	_, err = decodeShape(value.Bool(true))
	if !errors.Is(err, errors.ErrCodeWrongType) {
		t.Errorf("non-struct error = %v, want WRONG_TYPE", err)
	}
}

func TestFrom(t *testing.T) {
	type builder struct{ Amount float64 }
	type kernel [9]float64

	dec := From(Struct([]Field{Required("amount", Float64)}, func(f Fields) builder {
		return builder{Amount: Get[float64](f, "amount")}
	}), func(b builder) kernel {
		a := b.Amount
		return kernel{0, -a, 0, -a, 4*a + 1, -a, 0, -a, 0}
	})

	got, err := dec(value.Struct{Name: "Sharpness", Fields: map[string]value.Value{"amount": value.Float(0.5)}})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := kernel{0, -0.5, 0, -0.5, 3, -0.5, 0, -0.5, 0}
	if got != want {
		t.Errorf("kernel = %v, want %v", got, want)
	}

	_, err = dec(value.UnitStruct{Name: "Sharpness"})
	if !errors.Is(err, errors.ErrCodeMissingField) {
		t.Errorf("builder error = %v, want MISSING_FIELD", err)
	}
}

func TestPrimitives(t *testing.T) {
	if _, err := Int(value.Float(1)); !errors.Is(err, errors.ErrCodeWrongType) {
		t.Errorf("Int(float) error = %v, want WRONG_TYPE", err)
	}
	if _, err := Float64(value.Int(1)); !errors.Is(err, errors.ErrCodeWrongType) {
		t.Errorf("Float64(int) error = %v, want WRONG_TYPE", err)
	}
	if _, err := Uint(value.Int(-1)); !errors.Is(err, errors.ErrCodeWrongType) {
		t.Errorf("Uint(-1) error = %v, want WRONG_TYPE", err)
	}
	if b, err := Bool(value.Bool(true)); err != nil || !b {
		t.Errorf("Bool(true) = (%v, %v)", b, err)
	}
	if p, err := Path(value.Path("in.png")); err != nil || p != "in.png" {
		t.Errorf("Path = (%q, %v)", p, err)
	}
	if f, err := Float32(value.Float(0.25)); err != nil || f != 0.25 {
		t.Errorf("Float32(0.25) = (%v, %v)", f, err)
	}
}

func TestVectorsAndColor(t *testing.T) {
	v, err := DecodeVec2(value.Tuple("Vec2", value.Float(1), value.Float(2)))
	if err != nil || v != (Vec2{X: 1, Y: 2}) {
		t.Errorf("Vec2 tuple = (%+v, %v)", v, err)
	}

	v, err = DecodeVec2(value.Struct{Name: "Vec2", Fields: map[string]value.Value{
		"x": value.Float(3), "y": value.Float(4),
	}})
	if err != nil || v != (Vec2{X: 3, Y: 4}) {
		t.Errorf("Vec2 named = (%+v, %v)", v, err)
	}

	c, err := DecodeColor(value.Tuple("Color", value.Float(1), value.Float(0.5), value.Float(0)))
	if err != nil {
		t.Fatalf("Color: %v", err)
	}
	if diff := cmp.Diff(Color{R: 1, G: 0.5, B: 0, A: 1}, c); diff != "" {
		t.Errorf("Color mismatch (-want +got):\n%s", diff)
	}

	_, err = DecodeVec2(value.Tuple("Vec2", value.Float(1)))
	if got := errors.UserMessage(err); got != "missing required field 'y'" {
		t.Errorf("Vec2 missing message = %q", got)
	}
}
