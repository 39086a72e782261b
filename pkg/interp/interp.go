// Package interp evaluates parsed nprs scripts into raw render graphs.
//
// An [Interpreter] runs statements strictly in order over a symbol table
// and a read-only table of command-line argument overrides. Pass
// statements are bound through a [pass.Registry]; edges and the display
// target are collected by name and resolved later by [graph.Build].
//
//	raw, err := interp.Compile("blur.nprs", src, args, passes.Registry())
package interp

import (
	"io"
	"maps"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nprs/pkg/dsl"
	"github.com/matzehuels/nprs/pkg/errors"
	"github.com/matzehuels/nprs/pkg/graph"
	"github.com/matzehuels/nprs/pkg/pass"
	"github.com/matzehuels/nprs/pkg/value"
)

// Interpreter holds the state of one script evaluation. It is not safe for
// concurrent use.
type Interpreter struct {
	registry *pass.Registry
	symbols  map[string]value.Value
	args     map[string]dsl.Expr
	active   map[string]bool

	passes  []graph.NamedPass
	edges   map[string][]string
	display *string

	logger *log.Logger
}

// New returns an interpreter binding passes through registry. When args
// names the same argument more than once, the last override wins.
func New(registry *pass.Registry, args []dsl.Arg) *Interpreter {
	table := make(map[string]dsl.Expr, len(args))
	for _, a := range args {
		table[a.Name] = a.Value
	}
	return &Interpreter{
		registry: registry,
		symbols:  make(map[string]value.Value),
		args:     table,
		active:   make(map[string]bool),
		edges:    make(map[string][]string),
		logger:   log.New(io.Discard),
	}
}

// SetLogger sets the logger that traces each statement at debug level.
func (in *Interpreter) SetLogger(l *log.Logger) {
	if l != nil {
		in.logger = l
	}
}

// Run executes stmts in order and stops at the first error.
func (in *Interpreter) Run(stmts []dsl.Statement) error {
	for _, stmt := range stmts {
		if err := in.exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) exec(stmt dsl.Statement) error {
	switch s := stmt.(type) {
	case dsl.Assign:
		v, err := in.Eval(s.Value)
		if err != nil {
			return err
		}
		in.symbols[s.Var] = v
		in.logger.Debug("let", "var", s.Var, "value", v)

	case dsl.PassDecl:
		v, err := in.Eval(s.Value)
		if err != nil {
			return err
		}
		typ, ok := value.StructName(v)
		if !ok {
			return errors.New(errors.ErrCodeInvalidPassAssignment,
				"invalid pass assignment with left hand side '%s', expected right hand side to be struct, tuple struct, or unit struct", s.Name)
		}
		p, err := in.registry.Bind(typ, v)
		if err != nil {
			return err
		}
		in.passes = append(in.passes, graph.NamedPass{Name: s.Name, Pass: p})
		in.logger.Debug("pass", "name", s.Name, "type", typ)

	case dsl.Edge:
		in.edges[s.Pass] = append([]string(nil), s.Dependencies...)
		in.logger.Debug("edge", "pass", s.Pass, "deps", s.Dependencies)

	case dsl.Display:
		if in.display != nil {
			return errors.New(errors.ErrCodeMultipleDisplays, "multiple display calls")
		}
		name := s.Pass
		in.display = &name
		in.logger.Debug("display", "pass", name)

	default:
		return errors.New(errors.ErrCodeInternal, "unknown statement %T", stmt)
	}
	return nil
}

// Eval evaluates a single expression against the current symbol table.
func (in *Interpreter) Eval(expr dsl.Expr) (value.Value, error) {
	switch e := expr.(type) {
	case dsl.Int:
		return value.Int(e.Value), nil

	case dsl.Float:
		return value.Float(e.Value), nil

	case dsl.Path:
		raw := e.Raw
		if len(raw) < 2 {
			return value.Path(""), nil
		}
		return value.Path(raw[1 : len(raw)-1]), nil

	case dsl.VarAccess:
		v, ok := in.symbols[e.Name]
		if !ok {
			return nil, errors.New(errors.ErrCodeUndefinedVariable, "undefined variable '%s'", e.Name)
		}
		return v, nil

	case dsl.Ident:
		switch e.Name {
		case "true":
			return value.Bool(true), nil
		case "false":
			return value.Bool(false), nil
		default:
			return value.UnitStruct{Name: e.Name}, nil
		}

	case dsl.Argument:
		return in.evalArgument(e)

	case dsl.TupleStruct:
		fields := make([]value.Value, len(e.Fields))
		for i, f := range e.Fields {
			v, err := in.Eval(f)
			if err != nil {
				return nil, err
			}
			fields[i] = v
		}
		return value.Tuple(e.Name, fields...), nil

	case dsl.Struct:
		return in.evalStruct(e)

	default:
		return nil, errors.New(errors.ErrCodeInternal, "unknown expression %T", expr)
	}
}

func (in *Interpreter) evalArgument(e dsl.Argument) (value.Value, error) {
	if override, ok := in.args[e.Name]; ok && !in.active[e.Name] {
		// Inside its own override an argument falls back to its default.
		in.active[e.Name] = true
		defer delete(in.active, e.Name)
		return in.Eval(override)
	}
	if e.Default != nil {
		return in.Eval(e.Default)
	}
	return nil, errors.New(errors.ErrCodeMissingArgument, "missing argument '%s'", e.Name)
}

func (in *Interpreter) evalStruct(e dsl.Struct) (value.Value, error) {
	fields := make(map[string]value.Value, len(e.Fields))
	for _, f := range e.Fields {
		v, err := in.Eval(f.Value)
		if err != nil {
			return nil, err
		}
		fields[f.Ident] = v
	}

	if e.Update != "" {
		base, ok := in.symbols[e.Update]
		if !ok {
			return nil, errors.New(errors.ErrCodeUndefinedVariable, "undefined variable '%s'", e.Update)
		}
		name, inherited, ok := value.StructProperties(base)
		if !ok || name != e.Name {
			return nil, errors.New(errors.ErrCodeInvalidType,
				"cannot update struct '%s' from '$%s' of type %s", e.Name, e.Update, describe(base))
		}
		for k, v := range inherited {
			if _, set := fields[k]; !set {
				fields[k] = v
			}
		}
	}

	return value.Struct{Name: e.Name, Fields: fields}, nil
}

func describe(v value.Value) string {
	if name, ok := value.StructName(v); ok {
		return value.TypeName(v) + " '" + name + "'"
	}
	return value.TypeName(v)
}

// Symbol returns the value last assigned to name.
func (in *Interpreter) Symbol(name string) (value.Value, bool) {
	v, ok := in.symbols[name]
	return v, ok
}

// Graph returns the raw graph accumulated so far. It fails with
// MISSING_DISPLAY when no display statement ran.
func (in *Interpreter) Graph() (graph.Raw, error) {
	if in.display == nil {
		return graph.Raw{}, errors.New(errors.ErrCodeMissingDisplay, "no display statement")
	}
	edges := make(map[string][]string, len(in.edges))
	maps.Copy(edges, in.edges)
	return graph.Raw{
		Passes:  append([]graph.NamedPass(nil), in.passes...),
		Edges:   edges,
		Display: *in.display,
	}, nil
}

// Compile parses src, runs it with args and returns its raw graph. name
// is used in syntax error positions.
func Compile(name, src string, args []dsl.Arg, registry *pass.Registry) (graph.Raw, error) {
	return CompileWithLogger(name, src, args, registry, nil)
}

// CompileWithLogger is [Compile] with statement tracing through logger.
func CompileWithLogger(name, src string, args []dsl.Arg, registry *pass.Registry, logger *log.Logger) (graph.Raw, error) {
	stmts, err := dsl.Parse(name, src)
	if err != nil {
		return graph.Raw{}, err
	}
	in := New(registry, args)
	in.SetLogger(logger)
	if err := in.Run(stmts); err != nil {
		return graph.Raw{}, err
	}
	return in.Graph()
}
