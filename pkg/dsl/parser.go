package dsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/nprs/pkg/errors"
)

// Parser is a recursive-descent parser over a [Lexer]. It stops at the
// first syntax error.
type Parser struct {
	l    *Lexer
	name string

	cur  Token
	peek Token
}

// NewParser returns a parser for src. name identifies the source in error
// messages and may be empty.
func NewParser(name, src string) *Parser {
	p := &Parser{l: NewLexer(src), name: name}
	p.next()
	p.next()
	return p
}

// Parse parses a complete script.
func Parse(name, src string) ([]Statement, error) {
	return NewParser(name, src).ParseScript()
}

// ParseExpr parses src as a single expression.
func ParseExpr(src string) (Expr, error) {
	p := NewParser("", src)
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokEOF); err != nil {
		return nil, err
	}
	return e, nil
}

// Arg is a command-line argument override.
type Arg struct {
	Name  string
	Value Expr
}

// ParseArg parses a NAME=EXPR override as given on the command line.
func ParseArg(s string) (Arg, error) {
	name, src, ok := strings.Cut(strings.TrimSpace(s), "=")
	if !ok {
		return Arg{}, errors.New(errors.ErrCodeInvalidArgument, "argument %q is not of the form NAME=EXPR", s)
	}
	name = strings.TrimSpace(name)
	if err := errors.ValidateIdentifier(name); err != nil {
		return Arg{}, err
	}
	value, err := ParseExpr(src)
	if err != nil {
		return Arg{}, errors.Wrap(errors.ErrCodeInvalidArgument, err, "argument %s", name)
	}
	return Arg{Name: name, Value: value}, nil
}

// ParseArgs parses every override in args.
func ParseArgs(args []string) ([]Arg, error) {
	out := make([]Arg, 0, len(args))
	for _, s := range args {
		a, err := ParseArg(s)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) errorf(tok Token, format string, args ...any) error {
	pos := fmt.Sprintf("%d:%d", tok.Line, tok.Column)
	if p.name != "" {
		pos = p.name + ":" + pos
	}
	return errors.New(errors.ErrCodeInvalidSyntax, "%s: %s", pos, fmt.Sprintf(format, args...))
}

func (p *Parser) expect(tt TokenType) error {
	if p.cur.Type != tt {
		return p.errorf(p.cur, "expected %q, got %s", string(tt), p.cur)
	}
	p.next()
	return nil
}

func (p *Parser) expectIdent() (string, error) {
	if p.cur.Type != TokIdent {
		return "", p.errorf(p.cur, "expected identifier, got %s", p.cur)
	}
	name := p.cur.Lexeme
	p.next()
	return name, nil
}

// ParseScript parses statements until the end of input.
func (p *Parser) ParseScript() ([]Statement, error) {
	var stmts []Statement
	for p.cur.Type != TokEOF {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

func (p *Parser) parseStatement() (Statement, error) {
	var (
		s   Statement
		err error
	)

	switch p.cur.Type {
	case TokLet:
		p.next()
		s, err = p.parseBinding(func(name string, e Expr) Statement { return Assign{Var: name, Value: e} })
	case TokPass:
		p.next()
		s, err = p.parseBinding(func(name string, e Expr) Statement { return PassDecl{Name: name, Value: e} })
	case TokDisplay:
		p.next()
		var name string
		name, err = p.expectIdent()
		s = Display{Pass: name}
	case TokIdent:
		s, err = p.parseEdge()
	default:
		return nil, p.errorf(p.cur, "expected statement, got %s", p.cur)
	}
	if err != nil {
		return nil, err
	}

	if err := p.expect(TokSemicolon); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *Parser) parseBinding(build func(string, Expr) Statement) (Statement, error) {
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokAssign); err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return build(name, e), nil
}

// parseEdge parses NAME <- DEP, DEP. An empty list is allowed.
func (p *Parser) parseEdge() (Statement, error) {
	pass, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokArrow); err != nil {
		return nil, err
	}

	deps := []string{}
	for p.cur.Type == TokIdent {
		deps = append(deps, p.cur.Lexeme)
		p.next()
		if p.cur.Type != TokComma {
			break
		}
		p.next()
	}
	return Edge{Pass: pass, Dependencies: deps}, nil
}

func (p *Parser) parseExpr() (Expr, error) {
	tok := p.cur

	switch tok.Type {
	case TokInt, TokFloat:
		p.next()
		return p.number(tok, false)
	case TokMinus:
		p.next()
		num := p.cur
		if num.Type != TokInt && num.Type != TokFloat {
			return nil, p.errorf(num, "expected number after '-', got %s", num)
		}
		p.next()
		return p.number(num, true)
	case TokString:
		p.next()
		return Path{Raw: tok.Lexeme}, nil
	case TokVar:
		p.next()
		return VarAccess{Name: tok.Lexeme}, nil
	case TokArg:
		p.next()
		arg := Argument{Name: tok.Lexeme}
		if p.cur.Type == TokOr {
			p.next()
			def, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			arg.Default = def
		}
		return arg, nil
	case TokIdent:
		p.next()
		switch p.cur.Type {
		case TokLParen:
			return p.parseTuple(tok.Lexeme)
		case TokLBrace:
			return p.parseStruct(tok.Lexeme)
		}
		return Ident{Name: tok.Lexeme}, nil
	}

	return nil, p.errorf(tok, "expected expression, got %s", tok)
}

func (p *Parser) number(tok Token, negative bool) (Expr, error) {
	lexeme := tok.Lexeme
	if negative {
		lexeme = "-" + lexeme
	}

	if tok.Type == TokInt {
		n, err := strconv.ParseInt(lexeme, 10, 32)
		if err != nil {
			return nil, p.errorf(tok, "integer literal %s out of range", lexeme)
		}
		return Int{Value: int32(n)}, nil
	}

	f, err := strconv.ParseFloat(lexeme, 32)
	if err != nil {
		return nil, p.errorf(tok, "invalid float literal %s", lexeme)
	}
	return Float{Value: float32(f)}, nil
}

func (p *Parser) parseTuple(name string) (Expr, error) {
	p.next() // (

	fields := []Expr{}
	for p.cur.Type != TokRParen {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		fields = append(fields, e)
		if p.cur.Type != TokComma {
			break
		}
		p.next()
	}
	if err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	return TupleStruct{Name: name, Fields: fields}, nil
}

// parseStruct parses the body of Name { f: e, ..., ..$base }. The update
// source must come last; a trailing comma is allowed.
func (p *Parser) parseStruct(name string) (Expr, error) {
	p.next() // {

	s := Struct{Name: name, Fields: []Field{}}
	for p.cur.Type != TokRBrace {
		if p.cur.Type == TokDotDot {
			p.next()
			if p.cur.Type != TokVar {
				return nil, p.errorf(p.cur, "expected $variable after '..', got %s", p.cur)
			}
			s.Update = p.cur.Lexeme
			p.next()
			if p.cur.Type == TokComma {
				p.next()
			}
			break
		}

		ident, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokColon); err != nil {
			return nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		s.Fields = append(s.Fields, Field{Ident: ident, Value: e})

		if p.cur.Type != TokComma {
			break
		}
		p.next()
	}
	if err := p.expect(TokRBrace); err != nil {
		return nil, err
	}
	return s, nil
}
