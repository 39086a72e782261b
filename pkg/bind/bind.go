// Package bind converts dynamically typed [value.Value] trees into strongly
// typed Go configurations.
//
// A [Decoder] binds one value into one Go type. Decoders compose: struct
// shapes are described once as a list of [Field] descriptors, enums as a
// list of [Variant]s, and a target that needs computed defaults can bind an
// intermediate builder type first and convert it with [From].
//
//	type Blur struct{ Sigma float64; Radius int }
//
//	var decodeBlur = bind.Struct([]bind.Field{
//	    bind.Required("sigma", bind.Float64),
//	    bind.Derived("kernel_radius", bind.Int, func(f bind.Fields) int {
//	        return int(math.Floor(bind.Get[float64](f, "sigma") * 3.5))
//	    }),
//	}, func(f bind.Fields) Blur {
//	    return Blur{Sigma: bind.Get[float64](f, "sigma"), Radius: bind.Get[int](f, "kernel_radius")}
//	})
//
// Binding is pure: a failed bind returns the first error encountered and
// leaves nothing behind. All failures carry one of the binding codes from
// pkg/errors: WRONG_TYPE, DUPLICATE_FIELD, UNKNOWN_FIELD, MISSING_FIELD or
// UNKNOWN_VARIANT. Errors from nested decoders are returned unmodified.
package bind

import (
	"maps"
	"slices"
	"strconv"

	"github.com/matzehuels/nprs/pkg/errors"
	"github.com/matzehuels/nprs/pkg/value"
)

const (
	expectStruct  = "struct, tuple struct, or unit struct"
	expectVariant = "struct variant, tuple struct variant or unit struct variant"
)

// Decoder binds a dynamic value into a T.
type Decoder[T any] func(value.Value) (T, error)

// Fields holds the resolved field values of a struct shape, keyed by
// canonical field name.
type Fields map[string]any

// Get returns the resolved field name as a T. It returns the zero value if
// the field is not resolved yet or holds a different type.
func Get[T any](f Fields, name string) T {
	v, _ := f[name].(T)
	return v
}

// Field describes one field of a struct shape.
type Field struct {
	// Name is the canonical field name. Tuple fields use "0", "1", ....
	Name string
	// Alias is an optional second name accepted in place of Name.
	Alias string
	// Index is a tuple position accepted in place of Name, or -1.
	Index int

	decode func(value.Value) (any, error)
	def    func(Fields) any
}

// Required declares a field that must be supplied.
func Required[T any](name string, dec Decoder[T]) Field {
	return Field{Name: name, Index: -1, decode: erase(dec)}
}

// Optional declares a field that falls back to def when absent.
func Optional[T any](name string, dec Decoder[T], def T) Field {
	f := Required(name, dec)
	f.def = func(Fields) any { return def }
	return f
}

// Derived declares a field whose default is computed from the fields
// resolved before it. Supplied fields are always resolved first; absent
// fields are then defaulted in declaration order.
func Derived[T any](name string, dec Decoder[T], def func(Fields) T) Field {
	f := Required(name, dec)
	f.def = func(resolved Fields) any { return def(resolved) }
	return f
}

// WithAlias returns a copy of f that also accepts alias as its key.
func (f Field) WithAlias(alias string) Field {
	f.Alias = alias
	return f
}

// AtIndex returns a copy of f that also accepts the tuple position i as its
// key, so Vec2(1.0, 2.0) and Vec2 { x: 1.0, y: 2.0 } bind alike.
func (f Field) AtIndex(i int) Field {
	f.Index = i
	return f
}

func (f Field) matches(key string) bool {
	if key == f.Name {
		return true
	}
	if f.Alias != "" && key == f.Alias {
		return true
	}
	return f.Index >= 0 && key == strconv.Itoa(f.Index)
}

func erase[T any](dec Decoder[T]) func(value.Value) (any, error) {
	return func(v value.Value) (any, error) {
		out, err := dec(v)
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}

// Struct returns a decoder for a struct shape. The value must be a struct,
// tuple struct or unit struct; its name is not checked here (enums check
// names, see [Enum]). build receives every field resolved.
func Struct[T any](fields []Field, build func(Fields) T) Decoder[T] {
	return func(v value.Value) (T, error) {
		var zero T
		_, supplied, ok := value.StructProperties(v)
		if !ok {
			return zero, WrongType(expectStruct, v)
		}
		resolved, err := bindFields(fields, supplied)
		if err != nil {
			return zero, err
		}
		return build(resolved), nil
	}
}

// Unit returns a decoder for a shape without fields that always yields out.
func Unit[T any](out T) Decoder[T] {
	return Struct(nil, func(Fields) T { return out })
}

func bindFields(fields []Field, supplied map[string]value.Value) (Fields, error) {
	resolved := make(Fields, len(fields))

	for _, key := range slices.Sorted(maps.Keys(supplied)) {
		i := slices.IndexFunc(fields, func(f Field) bool { return f.matches(key) })
		if i < 0 {
			return nil, errors.New(errors.ErrCodeUnknownField, "unknown field '%s'", key)
		}
		f := fields[i]
		if _, filled := resolved[f.Name]; filled {
			return nil, errors.New(errors.ErrCodeDuplicateField, "duplicate field '%s'", f.Name)
		}
		out, err := f.decode(supplied[key])
		if err != nil {
			return nil, err
		}
		resolved[f.Name] = out
	}

	for _, f := range fields {
		if _, filled := resolved[f.Name]; filled {
			continue
		}
		if f.def == nil {
			return nil, errors.New(errors.ErrCodeMissingField, "missing required field '%s'", f.Name)
		}
		resolved[f.Name] = f.def(resolved)
	}

	return resolved, nil
}

// Variant is one named alternative of an enum shape.
type Variant[T any] struct {
	Name   string
	Decode Decoder[T]
}

// Case declares an enum variant.
func Case[T any](name string, dec Decoder[T]) Variant[T] {
	return Variant[T]{Name: name, Decode: dec}
}

// Enum returns a decoder that dispatches on the struct name of the value.
// Names are matched exactly; the matching variant's decoder binds the
// fields.
func Enum[T any](variants ...Variant[T]) Decoder[T] {
	return func(v value.Value) (T, error) {
		var zero T
		name, ok := value.StructName(v)
		if !ok {
			return zero, WrongType(expectVariant, v)
		}
		for _, variant := range variants {
			if variant.Name == name {
				return variant.Decode(v)
			}
		}
		return zero, errors.New(errors.ErrCodeUnknownVariant, "unknown enum variant '%s'", name)
	}
}

// From binds an intermediate builder B with dec and converts it into T.
// It supports configurations whose defaults cannot be expressed per field.
func From[B, T any](dec Decoder[B], convert func(B) T) Decoder[T] {
	return func(v value.Value) (T, error) {
		b, err := dec(v)
		if err != nil {
			var zero T
			return zero, err
		}
		return convert(b), nil
	}
}

// WrongType builds the WRONG_TYPE error for a value that does not have the
// expected shape.
func WrongType(expected string, got value.Value) error {
	return errors.New(errors.ErrCodeWrongType, "incorrect type. expected %s but got %s", expected, value.TypeName(got))
}
