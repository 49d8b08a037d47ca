// Package filter implements the version-filter expression language: a
// small boolean predicate over version names combining prefix matches
// and position-relative bounds with negation, disjunction, and
// conjunction.
//
// Grammar:
//
//	expr    := STRING | IDENT "(" arglist ")"
//	arglist := expr ("," expr)*
//	IDENT   ∈ { not, any, all, min, max, min_excl, max_excl }
//
// A bare STRING is a prefix match against the candidate version name;
// the empty string matches every version. The four positional operators
// compare registry positions and must reference a declared version
// exactly (see Verify).
package filter

import "fmt"

// Position locates a token inside a filter-expression source string,
// for diagnostics. Line and Column are 1-based.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Expr is the parsed AST of a filter expression. The tree is a plain
// recursive union: no cycles, no sharing across subexpressions.
type Expr interface {
	// Pos returns the source position of the expression.
	Pos() Position

	filterExpr() // restricts Expr to types defined here
}

// Match tests whether the candidate version name starts with Pattern.
// The empty pattern matches every version.
type Match struct {
	Pattern  string
	Position Position
}

// AtLeast matches versions at or after the named version's position.
type AtLeast struct {
	Name     string
	Position Position
}

// AtLeastExcl matches versions strictly after the named version's
// position.
type AtLeastExcl struct {
	Name     string
	Position Position
}

// AtMost matches versions at or before the named version's position.
type AtMost struct {
	Name     string
	Position Position
}

// AtMostExcl matches versions strictly before the named version's
// position.
type AtMostExcl struct {
	Name     string
	Position Position
}

// Not negates its operand.
type Not struct {
	X        Expr
	Position Position
}

// Any is a disjunction. An empty argument list never matches.
type Any struct {
	List     []Expr
	Position Position
}

// All is a conjunction. An empty argument list never matches — the
// empty conjunction is false here, not vacuously true.
type All struct {
	List     []Expr
	Position Position
}

func (e *Match) Pos() Position       { return e.Position }
func (e *AtLeast) Pos() Position     { return e.Position }
func (e *AtLeastExcl) Pos() Position { return e.Position }
func (e *AtMost) Pos() Position      { return e.Position }
func (e *AtMostExcl) Pos() Position  { return e.Position }
func (e *Not) Pos() Position         { return e.Position }
func (e *Any) Pos() Position         { return e.Position }
func (e *All) Pos() Position         { return e.Position }

func (*Match) filterExpr()       {}
func (*AtLeast) filterExpr()     {}
func (*AtLeastExcl) filterExpr() {}
func (*AtMost) filterExpr()      {}
func (*AtMostExcl) filterExpr()  {}
func (*Not) filterExpr()         {}
func (*Any) filterExpr()         {}
func (*All) filterExpr()         {}

// ParseError reports malformed filter-expression source, including
// unknown operator names. It is always location-tagged.
type ParseError struct {
	Pos Position
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// UnknownVersionRefError reports a positional operator referencing a
// version name absent from the registry. It carries the literal and its
// source position and is raised by Verify, never by Eval.
type UnknownVersionRefError struct {
	Name string
	Pos  Position
}

func (e *UnknownVersionRefError) Error() string {
	return fmt.Sprintf("%s: reference to undeclared version %q", e.Pos, e.Name)
}
