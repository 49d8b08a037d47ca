package filter

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Parse parses a single filter expression and requires the whole input
// to be consumed. Malformed input returns a *ParseError.
func Parse(src string) (Expr, error) {
	p := &parser{lexer: newLexer(src)}

	if err := p.next(); err != nil {
		return nil, err
	}

	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if p.tok.kind != tokenEOF {
		return nil, &ParseError{Pos: p.tok.pos, Msg: fmt.Sprintf("unexpected %s after expression", p.tok.describe())}
	}

	return expr, nil
}

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenString
	tokenIdent
	tokenLParen
	tokenRParen
	tokenComma
)

type token struct {
	kind tokenKind
	text string
	pos  Position
}

func (t token) describe() string {
	switch t.kind {
	case tokenEOF:
		return "end of input"
	case tokenString:
		return fmt.Sprintf("string %q", t.text)
	case tokenIdent:
		return fmt.Sprintf("identifier %q", t.text)
	default:
		return fmt.Sprintf("%q", t.text)
	}
}

type lexer struct {
	src  string
	off  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

// peek returns the current rune without consuming it.
func (l *lexer) peek() (rune, bool) {
	if l.off >= len(l.src) {
		return 0, false
	}

	r, _ := utf8.DecodeRuneInString(l.src[l.off:])

	return r, true
}

// advance consumes the current rune and updates the position.
func (l *lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.off:])
	l.off += size

	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	return r
}

func (l *lexer) pos() Position {
	return Position{Line: l.line, Column: l.col}
}

func (l *lexer) skipSpace() {
	for {
		r, ok := l.peek()
		if !ok || !unicode.IsSpace(r) {
			return
		}

		l.advance()
	}
}

// lex returns the next token.
func (l *lexer) lex() (token, error) {
	l.skipSpace()

	pos := l.pos()

	r, ok := l.peek()
	if !ok {
		return token{kind: tokenEOF, pos: pos}, nil
	}

	switch {
	case r == '(':
		l.advance()
		return token{kind: tokenLParen, text: "(", pos: pos}, nil

	case r == ')':
		l.advance()
		return token{kind: tokenRParen, text: ")", pos: pos}, nil

	case r == ',':
		l.advance()
		return token{kind: tokenComma, text: ",", pos: pos}, nil

	case r == '"':
		return l.lexString(pos)

	case isIdentStart(r):
		return l.lexIdent(pos), nil

	default:
		return token{}, &ParseError{Pos: pos, Msg: fmt.Sprintf("unexpected character %q", r)}
	}
}

// lexString scans a double-quoted string literal. Backslash escapes a
// quote or a backslash; anything else after a backslash is an error.
func (l *lexer) lexString(pos Position) (token, error) {
	l.advance() // opening quote

	var sb strings.Builder

	for {
		r, ok := l.peek()
		if !ok {
			return token{}, &ParseError{Pos: pos, Msg: "unterminated string literal"}
		}

		l.advance()

		switch r {
		case '"':
			return token{kind: tokenString, text: sb.String(), pos: pos}, nil

		case '\\':
			esc, escOK := l.peek()
			if !escOK {
				return token{}, &ParseError{Pos: pos, Msg: "unterminated string literal"}
			}

			if esc != '"' && esc != '\\' {
				return token{}, &ParseError{Pos: l.pos(), Msg: fmt.Sprintf("invalid escape sequence \\%c", esc)}
			}

			l.advance()
			sb.WriteRune(esc)

		case '\n':
			return token{}, &ParseError{Pos: pos, Msg: "unterminated string literal"}

		default:
			sb.WriteRune(r)
		}
	}
}

func (l *lexer) lexIdent(pos Position) token {
	var sb strings.Builder

	for {
		r, ok := l.peek()
		if !ok || !isIdentPart(r) {
			break
		}

		sb.WriteRune(l.advance())
	}

	return token{kind: tokenIdent, text: sb.String(), pos: pos}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

type parser struct {
	lexer *lexer
	tok   token
}

func (p *parser) next() error {
	tok, err := p.lexer.lex()
	if err != nil {
		return err
	}

	p.tok = tok

	return nil
}

// parseExpr parses one expression at the current token.
func (p *parser) parseExpr() (Expr, error) {
	switch p.tok.kind {
	case tokenString:
		expr := &Match{Pattern: p.tok.text, Position: p.tok.pos}
		if err := p.next(); err != nil {
			return nil, err
		}

		return expr, nil

	case tokenIdent:
		return p.parseCall()

	default:
		return nil, &ParseError{
			Pos: p.tok.pos,
			Msg: fmt.Sprintf("expected string or operator (not, any, all, min, max, min_excl, max_excl), found %s", p.tok.describe()),
		}
	}
}

// parseCall parses an operator call: IDENT "(" arglist ")".
func (p *parser) parseCall() (Expr, error) {
	name := p.tok.text
	pos := p.tok.pos

	if err := p.next(); err != nil {
		return nil, err
	}

	if p.tok.kind != tokenLParen {
		return nil, &ParseError{Pos: p.tok.pos, Msg: fmt.Sprintf("expected '(' after operator %q, found %s", name, p.tok.describe())}
	}

	if err := p.next(); err != nil {
		return nil, err
	}

	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}

	switch name {
	case "not":
		if len(args) != 1 {
			return nil, &ParseError{Pos: pos, Msg: fmt.Sprintf("not() takes exactly one argument, got %d", len(args))}
		}

		return &Not{X: args[0], Position: pos}, nil

	case "any":
		return &Any{List: args, Position: pos}, nil

	case "all":
		return &All{List: args, Position: pos}, nil

	case "min":
		name, err := versionArg(args, pos, "min")
		if err != nil {
			return nil, err
		}

		return &AtLeast{Name: name.Pattern, Position: pos}, nil

	case "min_excl":
		name, err := versionArg(args, pos, "min_excl")
		if err != nil {
			return nil, err
		}

		return &AtLeastExcl{Name: name.Pattern, Position: pos}, nil

	case "max":
		name, err := versionArg(args, pos, "max")
		if err != nil {
			return nil, err
		}

		return &AtMost{Name: name.Pattern, Position: pos}, nil

	case "max_excl":
		name, err := versionArg(args, pos, "max_excl")
		if err != nil {
			return nil, err
		}

		return &AtMostExcl{Name: name.Pattern, Position: pos}, nil

	default:
		return nil, &ParseError{Pos: pos, Msg: fmt.Sprintf("unknown operator %q (expected not, any, all, min, max, min_excl, max_excl)", name)}
	}
}

// parseArgs parses a possibly empty, comma-separated argument list up
// to and including the closing parenthesis.
func (p *parser) parseArgs() ([]Expr, error) {
	var args []Expr

	if p.tok.kind == tokenRParen {
		return args, p.next()
	}

	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		switch p.tok.kind {
		case tokenComma:
			if err := p.next(); err != nil {
				return nil, err
			}

		case tokenRParen:
			return args, p.next()

		default:
			return nil, &ParseError{Pos: p.tok.pos, Msg: fmt.Sprintf("expected ',' or ')' in argument list, found %s", p.tok.describe())}
		}
	}
}

// versionArg validates that op received exactly one string-literal
// argument and returns it.
func versionArg(args []Expr, pos Position, op string) (*Match, error) {
	if len(args) != 1 {
		return nil, &ParseError{Pos: pos, Msg: fmt.Sprintf("%s() takes exactly one version string, got %d arguments", op, len(args))}
	}

	m, ok := args[0].(*Match)
	if !ok {
		return nil, &ParseError{Pos: args[0].Pos(), Msg: fmt.Sprintf("%s() takes a version string, not a nested expression", op)}
	}

	return m, nil
}
