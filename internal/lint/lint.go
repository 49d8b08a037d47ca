// Package lint provides advisory checks for annotated declaration
// trees: filter expressions that can never match, duplicate filter
// annotations, registry orderings that disagree with semantic-version
// order, and references to undeclared versions. Expansion itself never
// consults semantic versions — these checks exist to surface authoring
// mistakes before they ship.
package lint

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/hupe1980/declvar/internal/decl"
	"github.com/hupe1980/declvar/internal/filter"
	"github.com/hupe1980/declvar/internal/vers"
)

// Severity ranks the impact of a finding.
type Severity int

const (
	// SeverityInfo is purely informational.
	SeverityInfo Severity = iota
	// SeverityWarning indicates a likely authoring mistake that does
	// not block expansion.
	SeverityWarning
	// SeverityError indicates a defect that will abort expansion.
	SeverityError
)

// String returns the lowercase label for the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Finding is one lint result.
type Finding struct {
	Severity Severity
	Rule     string
	Message  string
	Pos      decl.Position
}

// Report collects the findings of one lint run.
type Report struct {
	Findings []Finding
}

// HasErrors reports whether any finding is error-severity.
func (r *Report) HasErrors() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return true
		}
	}

	return false
}

// HasWarnings reports whether any finding is warning-severity or worse.
func (r *Report) HasWarnings() bool {
	for _, f := range r.Findings {
		if f.Severity >= SeverityWarning {
			return true
		}
	}

	return false
}

// Run lints a declaration tree against a registry. Lint never fails on
// defective input — defects become error-severity findings instead.
func Run(root decl.Node, reg *vers.Registry) *Report {
	l := &linter{reg: reg}

	l.checkRegistryOrder()
	l.node(root)

	return &Report{Findings: l.findings}
}

type linter struct {
	reg      *vers.Registry
	findings []Finding
}

func (l *linter) add(sev Severity, rule, message string, pos decl.Position) {
	l.findings = append(l.findings, Finding{Severity: sev, Rule: rule, Message: message, Pos: pos})
}

// checkRegistryOrder warns when every version name parses as a
// semantic version but the declared order is not semver order. The
// registry deliberately never sorts — this check catches lists that
// look semantic but are shuffled.
func (l *linter) checkRegistryOrder() {
	names := l.reg.Names()
	if len(names) < 2 {
		return
	}

	parsed := make([]*semver.Version, len(names))

	for i, name := range names {
		v, err := semver.NewVersion(normalizeSemver(name))
		if err != nil {
			return // not a semantic naming scheme; nothing to check
		}

		parsed[i] = v
	}

	for i := 1; i < len(parsed); i++ {
		if parsed[i].LessThan(parsed[i-1]) {
			l.add(SeverityWarning, "registry-order",
				fmt.Sprintf("version %q is declared after %q but is semantically older; positional filters follow declaration order", names[i], names[i-1]),
				decl.Position{})
		}
	}
}

// normalizeSemver maps the underscore naming convention (v1_2_3) onto
// the dotted form the semver parser accepts.
func normalizeSemver(name string) string {
	return strings.ReplaceAll(name, "_", ".")
}

func (l *linter) node(n decl.Node) {
	l.annotations(n.Annotations())

	switch node := n.(type) {
	case *decl.Container:
		for _, child := range node.Children {
			l.node(child)
		}

	case *decl.Struct:
		for _, f := range node.Fields {
			l.annotations(f.Attrs)
		}

	case *decl.Enum:
		for _, v := range node.Variants {
			l.annotations(v.Attrs)

			for _, f := range v.Fields {
				l.annotations(f.Attrs)
			}
		}

	case *decl.Behavior:
		for _, m := range node.Members {
			l.annotations(m.Attrs)
		}
	}
}

// annotations lints one node's annotation list: duplicate filters, and
// the first filter's expression.
func (l *linter) annotations(attrs []decl.Annotation) {
	seen := 0

	for _, attr := range attrs {
		if attr.Name != decl.FilterAnnotation {
			continue
		}

		seen++

		if seen > 1 {
			l.add(SeverityWarning, "duplicate-filter",
				"duplicate version annotation; only the first one is honored", attr.Pos)
			continue
		}

		expr, err := filter.Parse(attr.Args)
		if err != nil {
			l.add(SeverityError, "invalid-filter", err.Error(), attr.Pos)
			continue
		}

		if err := filter.Verify(expr, l.reg); err != nil {
			l.add(SeverityError, "unknown-reference", err.Error(), attr.Pos)
		}

		l.expression(expr, attr.Pos)
	}

}

// expression walks a parsed filter looking for subexpressions that can
// never match.
func (l *linter) expression(e filter.Expr, pos decl.Position) {
	switch n := e.(type) {
	case *filter.Match:
		if n.Pattern == "" {
			return // matches everything; intentional idiom
		}

		for _, name := range l.reg.Names() {
			if strings.HasPrefix(name, n.Pattern) {
				return
			}
		}

		l.add(SeverityWarning, "dead-prefix",
			fmt.Sprintf("prefix %q matches no declared version", n.Pattern), pos)

	case *filter.Not:
		l.expression(n.X, pos)

	case *filter.Any:
		if len(n.List) == 0 {
			l.add(SeverityWarning, "always-false", "any() with no arguments never matches", pos)
		}

		for _, sub := range n.List {
			l.expression(sub, pos)
		}

	case *filter.All:
		if len(n.List) == 0 {
			l.add(SeverityWarning, "always-false", "all() with no arguments never matches", pos)
		}

		for _, sub := range n.List {
			l.expression(sub, pos)
		}
	}
}
