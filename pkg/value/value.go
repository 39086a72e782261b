// Package value implements the dynamically typed values produced by the
// nprs interpreter.
//
// A [Value] is one of six variants: [Int], [Float], [Path], [Bool],
// [UnitStruct] or [Struct]. The set is closed; every variant implements the
// unexported marker method so type switches over Value are exhaustive.
//
// Struct values carry a name identifying the logical shape being described
// (a pass type, an enum variant, a vector) and a field map. Tuple structs
// such as Vec2(1.0, 2.0) use the keys "0", "1", ....
//
// Values are immutable once produced. Code that needs a modified struct
// builds a new field map.
package value

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Value is a dynamically typed value.
type Value interface {
	isValue()
	fmt.Stringer
}

// Int is a 32-bit signed integer literal.
type Int int32

// Float is a 32-bit floating point literal.
type Float float32

// Path is a string literal, typically a file path.
type Path string

// Bool is a boolean.
type Bool bool

// UnitStruct is a struct with no fields, written as a bare identifier
// (for example Linear or Rec709).
type UnitStruct struct {
	Name string
}

// Struct is a named struct or tuple struct with a field map.
type Struct struct {
	Name   string
	Fields map[string]Value
}

func (Int) isValue()        {}
func (Float) isValue()      {}
func (Path) isValue()       {}
func (Bool) isValue()       {}
func (UnitStruct) isValue() {}
func (Struct) isValue()     {}

func (v Int) String() string   { return strconv.FormatInt(int64(v), 10) }
func (v Float) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 32) }
func (v Path) String() string  { return strconv.Quote(string(v)) }
func (v Bool) String() string  { return strconv.FormatBool(bool(v)) }

func (v UnitStruct) String() string { return v.Name }

// String renders the struct with its fields in key order. Tuple structs
// (keys "0".."n-1") render in call syntax.
func (v Struct) String() string {
	keys := slices.Sorted(maps.Keys(v.Fields))
	parts := make([]string, 0, len(keys))

	if isTuple(v.Fields) {
		for i := range len(v.Fields) {
			parts = append(parts, v.Fields[strconv.Itoa(i)].String())
		}
		return fmt.Sprintf("%s(%s)", v.Name, strings.Join(parts, ", "))
	}

	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, v.Fields[k]))
	}
	return fmt.Sprintf("%s { %s }", v.Name, strings.Join(parts, ", "))
}

func isTuple(fields map[string]Value) bool {
	if len(fields) == 0 {
		return false
	}
	for i := range len(fields) {
		if _, ok := fields[strconv.Itoa(i)]; !ok {
			return false
		}
	}
	return true
}

// StructName returns the name of a UnitStruct or Struct value.
// The second result is false for every other variant.
func StructName(v Value) (string, bool) {
	switch v := v.(type) {
	case UnitStruct:
		return v.Name, true
	case Struct:
		return v.Name, true
	default:
		return "", false
	}
}

// StructProperties splits a UnitStruct or Struct value into its name and
// field map. A UnitStruct yields an empty, non-nil map. The second result
// is false for every other variant.
func StructProperties(v Value) (string, map[string]Value, bool) {
	switch v := v.(type) {
	case UnitStruct:
		return v.Name, map[string]Value{}, true
	case Struct:
		fields := v.Fields
		if fields == nil {
			fields = map[string]Value{}
		}
		return v.Name, fields, true
	default:
		return "", nil, false
	}
}

// TypeName returns a human-readable description of the runtime type of v,
// used in error messages.
func TypeName(v Value) string {
	switch v.(type) {
	case Int:
		return "int"
	case Float:
		return "float"
	case Path:
		return "path"
	case Bool:
		return "bool"
	case UnitStruct:
		return "unit struct"
	case Struct:
		return "struct"
	case nil:
		return "nothing"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Tuple builds a tuple struct from positional fields.
func Tuple(name string, fields ...Value) Struct {
	m := make(map[string]Value, len(fields))
	for i, f := range fields {
		m[strconv.Itoa(i)] = f
	}
	return Struct{Name: name, Fields: m}
}
