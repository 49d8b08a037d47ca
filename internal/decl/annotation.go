package decl

import (
	"fmt"

	"github.com/hupe1980/declvar/internal/filter"
)

// ExtractFilter scans attrs in order and detaches the first version
// filter annotation, parsing its argument text as a filter expression.
// All other annotations are returned unchanged, order preserved —
// including any further annotations named FilterAnnotation, which are
// deliberately not honored (first wins) and not an error.
//
// Extraction is idempotent: running it again on the returned rest
// finds the next filter annotation if a duplicate was present, or none.
func ExtractFilter(attrs []Annotation) (rest []Annotation, expr filter.Expr, found bool, err error) {
	for i, attr := range attrs {
		if attr.Name != FilterAnnotation {
			continue
		}

		parsed, parseErr := filter.Parse(attr.Args)
		if parseErr != nil {
			return nil, nil, false, fmt.Errorf("%s: invalid version filter: %w", attr.Pos, parseErr)
		}

		rest = make([]Annotation, 0, len(attrs)-1)
		rest = append(rest, attrs[:i]...)
		rest = append(rest, attrs[i+1:]...)

		return rest, parsed, true, nil
	}

	return attrs, nil, false, nil
}
