package dsl

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// TokenType classifies a lexical token.
type TokenType string

const (
	TokIllegal TokenType = "ILLEGAL"
	TokEOF     TokenType = "EOF"

	TokIdent  TokenType = "IDENT"
	TokInt    TokenType = "INT"
	TokFloat  TokenType = "FLOAT"
	TokString TokenType = "STRING"
	TokVar    TokenType = "VAR" // $name
	TokArg    TokenType = "ARG" // @name

	TokLet     TokenType = "let"
	TokPass    TokenType = "pass"
	TokDisplay TokenType = "display"
	TokOr      TokenType = "or"

	TokAssign    TokenType = "="
	TokSemicolon TokenType = ";"
	TokComma     TokenType = ","
	TokColon     TokenType = ":"
	TokLParen    TokenType = "("
	TokRParen    TokenType = ")"
	TokLBrace    TokenType = "{"
	TokRBrace    TokenType = "}"
	TokArrow     TokenType = "<-"
	TokDotDot    TokenType = ".."
	TokMinus     TokenType = "-"
)

var keywords = map[string]TokenType{
	"let":     TokLet,
	"pass":    TokPass,
	"display": TokDisplay,
	"or":      TokOr,
}

// Token is one lexical unit with its source position.
type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
	Column int
}

func (t Token) String() string {
	switch t.Type {
	case TokEOF:
		return "end of input"
	case TokIdent, TokInt, TokFloat, TokString, TokVar, TokArg, TokIllegal:
		return fmt.Sprintf("%s %q", t.Type, t.Lexeme)
	default:
		return fmt.Sprintf("%q", t.Lexeme)
	}
}

// Lexer splits script source into tokens.
type Lexer struct {
	src string

	pos    int // byte offset of the rune after ch
	line   int
	column int

	ch    rune
	width int
	done  bool
}

// NewLexer returns a lexer positioned at the start of src.
func NewLexer(src string) *Lexer {
	l := &Lexer{src: src, line: 1}
	l.readRune()
	return l
}

func (l *Lexer) readRune() {
	if l.pos >= len(l.src) {
		l.ch = 0
		l.width = 0
		l.done = true
		return
	}

	r, w := utf8.DecodeRuneInString(l.src[l.pos:])
	if l.ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.ch = r
	l.width = w
	l.pos += w
}

func (l *Lexer) peekRune() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	return r
}

// NextToken returns the next token. After the input is exhausted it keeps
// returning TokEOF.
func (l *Lexer) NextToken() Token {
	l.skipSpaceAndComments()

	line, col := l.line, l.column
	tok := func(tt TokenType, lexeme string) Token {
		return Token{Type: tt, Lexeme: lexeme, Line: line, Column: col}
	}

	if l.done {
		return tok(TokEOF, "")
	}

	switch {
	case l.ch == '"':
		return l.lexString(line, col)
	case isIdentStart(l.ch):
		word := l.readIdent()
		if kw, ok := keywords[word]; ok {
			return tok(kw, word)
		}
		return tok(TokIdent, word)
	case unicode.IsDigit(l.ch):
		return l.lexNumber(line, col)
	case l.ch == '$' || l.ch == '@':
		sigil := l.ch
		l.readRune()
		if !isIdentStart(l.ch) {
			return tok(TokIllegal, string(sigil))
		}
		name := l.readIdent()
		if sigil == '$' {
			return tok(TokVar, name)
		}
		return tok(TokArg, name)
	}

	ch := l.ch
	l.readRune()

	switch ch {
	case '=':
		return tok(TokAssign, "=")
	case ';':
		return tok(TokSemicolon, ";")
	case ',':
		return tok(TokComma, ",")
	case ':':
		return tok(TokColon, ":")
	case '(':
		return tok(TokLParen, "(")
	case ')':
		return tok(TokRParen, ")")
	case '{':
		return tok(TokLBrace, "{")
	case '}':
		return tok(TokRBrace, "}")
	case '-':
		return tok(TokMinus, "-")
	case '<':
		if l.ch == '-' {
			l.readRune()
			return tok(TokArrow, "<-")
		}
	case '.':
		if l.ch == '.' {
			l.readRune()
			return tok(TokDotDot, "..")
		}
	}
	return tok(TokIllegal, string(ch))
}

func (l *Lexer) skipSpaceAndComments() {
	for !l.done {
		switch {
		case unicode.IsSpace(l.ch):
			l.readRune()
		case l.ch == '#', l.ch == '/' && l.peekRune() == '/':
			for !l.done && l.ch != '\n' {
				l.readRune()
			}
		default:
			return
		}
	}
}

func (l *Lexer) readIdent() string {
	start := l.offset()
	for !l.done && (isIdentStart(l.ch) || unicode.IsDigit(l.ch)) {
		l.readRune()
	}
	return l.src[start:l.offset()]
}

// offset returns the byte offset of the current rune.
func (l *Lexer) offset() int {
	if l.done {
		return len(l.src)
	}
	return l.pos - l.width
}

// lexString keeps the quotes in the lexeme. No escape sequences.
func (l *Lexer) lexString(line, col int) Token {
	start := l.offset()
	l.readRune()
	for !l.done && l.ch != '"' && l.ch != '\n' {
		l.readRune()
	}
	if l.ch != '"' {
		return Token{Type: TokIllegal, Lexeme: l.src[start:l.offset()], Line: line, Column: col}
	}
	l.readRune()
	return Token{Type: TokString, Lexeme: l.src[start:l.offset()], Line: line, Column: col}
}

func (l *Lexer) lexNumber(line, col int) Token {
	start := l.offset()
	tt := TokInt
	for !l.done && unicode.IsDigit(l.ch) {
		l.readRune()
	}
	// "1..2" is not a float; only consume '.' when a digit follows.
	if l.ch == '.' && unicode.IsDigit(l.peekRune()) {
		tt = TokFloat
		l.readRune()
		for !l.done && unicode.IsDigit(l.ch) {
			l.readRune()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekRune()
		if unicode.IsDigit(next) || next == '-' || next == '+' {
			tt = TokFloat
			l.readRune()
			if l.ch == '-' || l.ch == '+' {
				l.readRune()
			}
			for !l.done && unicode.IsDigit(l.ch) {
				l.readRune()
			}
		}
	}
	return Token{Type: tt, Lexeme: l.src[start:l.offset()], Line: line, Column: col}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}
