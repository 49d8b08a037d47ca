// Package directive parses the version-list/options surface syntax: a
// comma- or whitespace-separated sequence of version names, optionally
// interleaved with key = booleanLiteral settings.
//
//	"v1_0_0", "v1_1_0", v2_0_0, features = true
//
// Recognized keys are features and nestTopLevel (with the historical
// inverse alias invisible). Version names may be quoted or bare.
package directive

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hupe1980/declvar/internal/emit"
)

// Directive is the parsed version list plus emission options.
type Directive struct {
	Versions []string
	Options  emit.Options

	// Deprecated lists aliases that were normalized during parsing, so
	// callers can warn about them.
	Deprecated []string
}

// ParseError reports malformed directive syntax.
type ParseError struct {
	Line   int
	Column int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}

// ConfigError reports an unknown option key or an ill-typed value for
// a known key.
type ConfigError struct {
	Line   int
	Column int
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%d:%d: option %q: %s", e.Line, e.Column, e.Key, e.Reason)
}

// Parse parses a directive string. An empty version list is a
// ParseError; option defaults are features=false, nestTopLevel=false.
func Parse(src string) (*Directive, error) {
	s := &scanner{src: src, line: 1, col: 1}
	out := &Directive{}

	for {
		s.skipSeparators()

		if s.eof() {
			break
		}

		line, col := s.line, s.col

		tok, quoted, err := s.token()
		if err != nil {
			return nil, err
		}

		// A bare identifier followed by '=' is an option setting.
		if !quoted && s.peekAssign() {
			if err := parseOption(out, s, tok, line, col); err != nil {
				return nil, err
			}

			continue
		}

		out.Versions = append(out.Versions, tok)
	}

	if len(out.Versions) == 0 {
		return nil, &ParseError{Line: 1, Column: 1, Msg: "expected at least one version name"}
	}

	return out, nil
}

func parseOption(out *Directive, s *scanner, key string, line, col int) error {
	s.skipSpace()
	s.advance() // consume '='
	s.skipSpace()

	if s.eof() {
		return &ConfigError{Line: line, Column: col, Key: key, Reason: "missing value"}
	}

	valLine, valCol := s.line, s.col

	value, quoted, err := s.token()
	if err != nil {
		return err
	}

	var boolVal bool

	switch {
	case !quoted && value == "true":
		boolVal = true
	case !quoted && value == "false":
		boolVal = false
	default:
		return &ConfigError{Line: valLine, Column: valCol, Key: key, Reason: fmt.Sprintf("expected true or false, found %q", value)}
	}

	switch key {
	case "features":
		out.Options.Features = boolVal

	case "nestTopLevel":
		out.Options.NestTopLevel = boolVal

	case "invisible":
		// Historical inverse naming: invisible modules are un-nested.
		out.Options.NestTopLevel = !boolVal
		out.Deprecated = append(out.Deprecated, "invisible")

	default:
		return &ConfigError{Line: line, Column: col, Key: key, Reason: "unknown option (expected features or nestTopLevel)"}
	}

	return nil
}

type scanner struct {
	src  string
	off  int
	line int
	col  int
}

func (s *scanner) eof() bool { return s.off >= len(s.src) }

func (s *scanner) peek() rune {
	r, _ := utf8.DecodeRuneInString(s.src[s.off:])
	return r
}

func (s *scanner) advance() rune {
	r, size := utf8.DecodeRuneInString(s.src[s.off:])
	s.off += size

	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}

	return r
}

func (s *scanner) skipSpace() {
	for !s.eof() && unicode.IsSpace(s.peek()) {
		s.advance()
	}
}

// skipSeparators consumes whitespace and commas between entries.
// Comma runs collapse, matching the historical surface syntax.
func (s *scanner) skipSeparators() {
	for !s.eof() && (unicode.IsSpace(s.peek()) || s.peek() == ',') {
		s.advance()
	}
}

// peekAssign reports whether the next non-space rune is '='.
func (s *scanner) peekAssign() bool {
	off, line, col := s.off, s.line, s.col
	s.skipSpace()
	isAssign := !s.eof() && s.peek() == '='
	s.off, s.line, s.col = off, line, col

	return isAssign
}

// token scans one quoted string or bare identifier.
func (s *scanner) token() (text string, quoted bool, err error) {
	line, col := s.line, s.col

	if s.peek() == '"' {
		s.advance()

		var sb strings.Builder

		for {
			if s.eof() {
				return "", false, &ParseError{Line: line, Column: col, Msg: "unterminated string literal"}
			}

			r := s.advance()
			if r == '"' {
				return sb.String(), true, nil
			}

			sb.WriteRune(r)
		}
	}

	r := s.peek()
	if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
		return "", false, &ParseError{Line: line, Column: col, Msg: fmt.Sprintf("unexpected character %q", r)}
	}

	var sb strings.Builder

	for !s.eof() {
		r := s.peek()
		if r != '_' && r != '.' && r != '-' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}

		sb.WriteRune(s.advance())
	}

	return sb.String(), false, nil
}
