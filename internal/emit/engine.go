// Package emit implements the tree-filtering engine: it walks a
// declaration tree once per registry version, prunes every node whose
// version filter rejects the candidate, and reassembles an independent
// per-version variant.
package emit

import (
	"fmt"

	"github.com/hupe1980/declvar/internal/decl"
	"github.com/hupe1980/declvar/internal/filter"
	"github.com/hupe1980/declvar/internal/vers"
)

// VisibilityPolicy controls how surviving nodes' visibility is
// rewritten.
type VisibilityPolicy int

const (
	// KeepVisibility leaves every declared visibility untouched.
	KeepVisibility VisibilityPolicy = iota
	// ForcePublic rewrites every surviving visibility-bearing node to
	// public. Used when the variant is re-exported from a synthesized
	// per-version container.
	ForcePublic
)

// Options configures variant emission.
type Options struct {
	// NestTopLevel always wraps each variant in a synthesized container
	// named after the version. When false, a container root is renamed
	// in place instead and only non-container roots are wrapped.
	NestTopLevel bool

	// Features tags each emitted variant with a build-gate annotation
	// named after the version.
	Features bool

	// Visibility is the policy applied while filtering. Emission
	// escalates it to ForcePublic whenever it synthesizes a wrapper.
	Visibility VisibilityPolicy
}

// Variant is one filtered, per-version copy of the input declaration.
type Variant struct {
	Version string
	Node    decl.Node
}

// UnsupportedVisibilityOverrideError is returned when ForcePublic is
// requested on a top-level node category that has no visibility
// concept (behavior blocks).
type UnsupportedVisibilityOverrideError struct {
	Category string
	Pos      decl.Position
}

func (e *UnsupportedVisibilityOverrideError) Error() string {
	return fmt.Sprintf("%s: cannot force visibility on a %s block (no visibility concept)", e.Pos, e.Category)
}

// Emit produces one variant per registry version, in registry order.
// A version whose filtered result is empty is silently omitted; any
// error aborts the whole emission with zero variants.
func Emit(root decl.Node, reg *vers.Registry, opts Options) ([]Variant, error) {
	variants := make([]Variant, 0, reg.Len())

	for _, version := range reg.Names() {
		v, ok, err := emitOne(root, reg, version, opts)
		if err != nil {
			return nil, err
		}

		if ok {
			variants = append(variants, v)
		}
	}

	return variants, nil
}

// emitOne runs one filtering pass and applies the wrapping and
// feature-tag policies.
func emitOne(root decl.Node, reg *vers.Registry, version string, opts Options) (Variant, bool, error) {
	_, isContainer := root.(*decl.Container)
	wrap := opts.NestTopLevel || !isContainer

	policy := opts.Visibility
	if wrap {
		// The variant is re-exported from the synthesized container.
		policy = ForcePublic
	}

	filtered, ok, err := filterNode(root, reg, version, policy, true)
	if err != nil {
		return Variant{}, false, err
	}

	if !ok {
		return Variant{}, false, nil
	}

	var out *decl.Container

	if wrap {
		out = &decl.Container{
			Pos:      root.Position(),
			Name:     version,
			Vis:      decl.Public,
			Children: []decl.Node{filtered},
		}
	} else {
		out = filtered.(*decl.Container)
		out.Name = version
	}

	if opts.Features {
		out.Attrs = append(out.Attrs, decl.Annotation{
			Name: decl.FeatureAnnotation,
			Args: fmt.Sprintf("feature = %q", version),
		})
	}

	return Variant{Version: version, Node: out}, true, nil
}

// filterNode decides keep/drop for one node and reassembles the kept
// subtree. The returned node is always freshly constructed; the input
// tree is never mutated.
func filterNode(node decl.Node, reg *vers.Registry, version string, policy VisibilityPolicy, topLevel bool) (decl.Node, bool, error) {
	if topLevel && policy == ForcePublic {
		if b, isBehavior := node.(*decl.Behavior); isBehavior {
			return nil, false, &UnsupportedVisibilityOverrideError{Category: b.Kind.String(), Pos: b.Pos}
		}
	}

	rest, expr, found, err := decl.ExtractFilter(node.Annotations())
	if err != nil {
		return nil, false, err
	}

	if found {
		if err := filter.Verify(expr, reg); err != nil {
			return nil, false, err
		}

		if !filter.Eval(expr, reg, version) {
			return nil, false, nil
		}
	}

	switch n := node.(type) {
	case *decl.Container:
		out := &decl.Container{Pos: n.Pos, Name: n.Name, Vis: n.Vis, Attrs: decl.CloneAnnotations(rest)}

		for _, child := range n.Children {
			kept, ok, childErr := filterNode(child, reg, version, policy, false)
			if childErr != nil {
				return nil, false, childErr
			}

			if ok {
				out.Children = append(out.Children, kept)
			}
		}

		applyVisibility(out, policy)

		return out, true, nil

	case *decl.Struct:
		fields, fieldsErr := filterFields(n.Fields, reg, version, policy)
		if fieldsErr != nil {
			return nil, false, fieldsErr
		}

		// A struct with zero surviving fields is still kept: its
		// emptiness for this version is itself meaningful.
		out := &decl.Struct{Pos: n.Pos, Name: n.Name, Vis: n.Vis, Attrs: decl.CloneAnnotations(rest), Fields: fields}
		applyVisibility(out, policy)

		return out, true, nil

	case *decl.Enum:
		out := &decl.Enum{Pos: n.Pos, Name: n.Name, Vis: n.Vis, Attrs: decl.CloneAnnotations(rest)}

		for _, v := range n.Variants {
			kept, ok, variantErr := filterVariant(v, reg, version, policy)
			if variantErr != nil {
				return nil, false, variantErr
			}

			if ok {
				out.Variants = append(out.Variants, kept)
			}
		}

		applyVisibility(out, policy)

		return out, true, nil

	case *decl.Behavior:
		out := &decl.Behavior{Pos: n.Pos, Kind: n.Kind, Name: n.Name, Attrs: decl.CloneAnnotations(rest)}

		for _, m := range n.Members {
			kept, ok, memberErr := filterMember(m, reg, version)
			if memberErr != nil {
				return nil, false, memberErr
			}

			if ok {
				out.Members = append(out.Members, kept)
			}
		}

		return out, true, nil

	case *decl.Leaf:
		out := &decl.Leaf{Pos: n.Pos, Name: n.Name, Payload: n.Payload, Vis: n.Vis, Attrs: decl.CloneAnnotations(rest)}
		applyVisibility(out, policy)

		return out, true, nil

	default:
		return nil, false, fmt.Errorf("unsupported declaration node %T", node)
	}
}

// filterFields applies each field's own filter independently,
// preserving order.
func filterFields(fields []*decl.Field, reg *vers.Registry, version string, policy VisibilityPolicy) ([]*decl.Field, error) {
	var out []*decl.Field

	for _, f := range fields {
		rest, expr, found, err := decl.ExtractFilter(f.Attrs)
		if err != nil {
			return nil, err
		}

		if found {
			if err := filter.Verify(expr, reg); err != nil {
				return nil, err
			}

			if !filter.Eval(expr, reg, version) {
				continue
			}
		}

		kept := &decl.Field{Pos: f.Pos, Name: f.Name, Type: f.Type, Vis: f.Vis, Attrs: decl.CloneAnnotations(rest)}
		if policy == ForcePublic {
			kept.Vis = decl.Public
		}

		out = append(out, kept)
	}

	return out, nil
}

// filterVariant checks the variant's own annotation first, then
// filters its fields the same way a struct's are filtered.
func filterVariant(v *decl.Variant, reg *vers.Registry, version string, policy VisibilityPolicy) (*decl.Variant, bool, error) {
	rest, expr, found, err := decl.ExtractFilter(v.Attrs)
	if err != nil {
		return nil, false, err
	}

	if found {
		if err := filter.Verify(expr, reg); err != nil {
			return nil, false, err
		}

		if !filter.Eval(expr, reg, version) {
			return nil, false, nil
		}
	}

	fields, err := filterFields(v.Fields, reg, version, policy)
	if err != nil {
		return nil, false, err
	}

	return &decl.Variant{Pos: v.Pos, Name: v.Name, Attrs: decl.CloneAnnotations(rest), Fields: fields}, true, nil
}

// filterMember keeps or drops one behavior member by its own
// annotation; members lacking one are always kept.
func filterMember(m *decl.Member, reg *vers.Registry, version string) (*decl.Member, bool, error) {
	rest, expr, found, err := decl.ExtractFilter(m.Attrs)
	if err != nil {
		return nil, false, err
	}

	if found {
		if err := filter.Verify(expr, reg); err != nil {
			return nil, false, err
		}

		if !filter.Eval(expr, reg, version) {
			return nil, false, nil
		}
	}

	return &decl.Member{Pos: m.Pos, Name: m.Name, Payload: m.Payload, Attrs: decl.CloneAnnotations(rest)}, true, nil
}

func applyVisibility(n decl.Visible, policy VisibilityPolicy) {
	if policy == ForcePublic {
		n.SetVisibility(decl.Public)
	}
}
