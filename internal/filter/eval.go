package filter

import (
	"fmt"
	"strings"

	"github.com/hupe1980/declvar/internal/vers"
)

// Verify checks that every positional operator in e references a
// declared version by exact name. Prefix matches are free-form and
// never fail verification. Verify must succeed before Eval is called;
// a failed reference returns a *UnknownVersionRefError carrying the
// literal and its position.
func Verify(e Expr, reg *vers.Registry) error {
	switch n := e.(type) {
	case *Match:
		return nil

	case *AtLeast:
		return verifyRef(reg, n.Name, n.Position)

	case *AtLeastExcl:
		return verifyRef(reg, n.Name, n.Position)

	case *AtMost:
		return verifyRef(reg, n.Name, n.Position)

	case *AtMostExcl:
		return verifyRef(reg, n.Name, n.Position)

	case *Not:
		return Verify(n.X, reg)

	case *Any:
		for _, sub := range n.List {
			if err := Verify(sub, reg); err != nil {
				return err
			}
		}

		return nil

	case *All:
		for _, sub := range n.List {
			if err := Verify(sub, reg); err != nil {
				return err
			}
		}

		return nil

	default:
		return fmt.Errorf("unsupported filter expression %T", e)
	}
}

func verifyRef(reg *vers.Registry, name string, pos Position) error {
	if !reg.Contains(name) {
		return &UnknownVersionRefError{Name: name, Pos: pos}
	}

	return nil
}

// Eval reports whether the candidate version matches the filter
// expression. It assumes a prior successful Verify against the same
// registry, so positional lookups cannot fail; candidate must itself be
// a registry entry (the emitter only evaluates registry members).
func Eval(e Expr, reg *vers.Registry, candidate string) bool {
	switch n := e.(type) {
	case *Match:
		// The empty pattern matches every version.
		return strings.HasPrefix(candidate, n.Pattern)

	case *AtLeast:
		return position(reg, candidate) >= position(reg, n.Name)

	case *AtLeastExcl:
		return position(reg, candidate) > position(reg, n.Name)

	case *AtMost:
		return position(reg, candidate) <= position(reg, n.Name)

	case *AtMostExcl:
		return position(reg, candidate) < position(reg, n.Name)

	case *Not:
		return !Eval(n.X, reg, candidate)

	case *Any:
		for _, sub := range n.List {
			if Eval(sub, reg, candidate) {
				return true
			}
		}

		return false

	case *All:
		// The empty conjunction is false, not vacuously true.
		if len(n.List) == 0 {
			return false
		}

		for _, sub := range n.List {
			if !Eval(sub, reg, candidate) {
				return false
			}
		}

		return true

	default:
		return false
	}
}

// position resolves a registry position. Verify guarantees the name is
// declared, so a failed lookup cannot influence a verified evaluation.
func position(reg *vers.Registry, name string) int {
	i, err := reg.Index(name)
	if err != nil {
		return -1
	}

	return i
}
