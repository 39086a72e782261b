// Package dsl defines the nprs pipeline language: its syntax tree, lexer
// and parser.
//
// A script is a sequence of statements:
//
//	// comments start with // or #
//	let sigma = @sigma or 2.0;              // Assign
//	pass blur = GaussianBlur { sigma: $sigma };  // Pass
//	pass lum = Luminance { method: Rec709 };
//	lum <- blur;                            // Edge
//	blur <- source;
//	display lum;                            // Display
//
// Expressions are literals (1, -2.5, "in.png"), variable reads ($name),
// identifiers (true, Rec709), command-line arguments (@name, optionally
// "@name or EXPR"), tuple structs (Vec2(1.0, 2.0)) and structs with an
// optional update source (Foo { a: 1, ..$base }).
//
// The package only produces syntax. Evaluation lives in pkg/interp.
package dsl

// Statement is one top-level statement of a script.
type Statement interface {
	statement()
}

// Assign binds the value of an expression to a variable: let NAME = EXPR;
type Assign struct {
	Var   string
	Value Expr
}

// PassDecl declares a named pass instance: pass NAME = EXPR;
type PassDecl struct {
	Name  string
	Value Expr
}

// Edge lists the ordered dependencies of a pass: NAME <- DEP, DEP;
type Edge struct {
	Pass         string
	Dependencies []string
}

// Display selects the pass whose output is the final image: display NAME;
type Display struct {
	Pass string
}

func (Assign) statement()   {}
func (PassDecl) statement() {}
func (Edge) statement()     {}
func (Display) statement()  {}

// Expr is an expression node.
type Expr interface {
	expr()
}

// Int is an integer literal.
type Int struct {
	Value int32
}

// Float is a floating point literal.
type Float struct {
	Value float32
}

// Path is a string literal. Raw keeps the surrounding quotes; the
// interpreter strips the first and last character.
type Path struct {
	Raw string
}

// VarAccess reads a variable: $name.
type VarAccess struct {
	Name string
}

// Ident is a bare identifier: true, false or a unit struct name.
type Ident struct {
	Name string
}

// Argument reads a command-line argument: @name, or @name or EXPR with a
// fallback. Default is nil when no fallback is given.
type Argument struct {
	Name    string
	Default Expr
}

// TupleStruct is a named tuple: Name(EXPR, ...).
type TupleStruct struct {
	Name   string
	Fields []Expr
}

// Struct is a named struct literal: Name { field: EXPR, ..$base }.
// Update is the base variable name, empty when absent.
type Struct struct {
	Name   string
	Fields []Field
	Update string
}

// Field is one field of a struct literal.
type Field struct {
	Ident string
	Value Expr
}

func (Int) expr()         {}
func (Float) expr()       {}
func (Path) expr()        {}
func (VarAccess) expr()   {}
func (Ident) expr()       {}
func (Argument) expr()    {}
func (TupleStruct) expr() {}
func (Struct) expr()      {}
