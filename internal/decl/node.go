// Package decl models declaration trees as a small set of semantic
// categories: containers, struct and enum type definitions, behavior
// blocks, and opaque leaves. The engine never inspects concrete
// surface syntax — anything it does not filter on is carried as an
// opaque payload and passed through unchanged.
package decl

import "fmt"

// Position locates a node in its source document, for diagnostics.
type Position struct {
	Filename string
	Line     int
	Column   int
}

func (p Position) String() string {
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}

	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// Visibility marks whether a declaration is exported from its
// enclosing scope.
type Visibility int

const (
	// Private is the default visibility.
	Private Visibility = iota
	// Public marks a declaration as fully exported.
	Public
)

// String returns the lowercase label for the visibility.
func (v Visibility) String() string {
	if v == Public {
		return "public"
	}

	return "private"
}

// Annotation is a generic attribute attached to a node. The engine
// recognizes at most one annotation per node as the version filter
// (Name == FilterAnnotation); all others pass through untouched.
type Annotation struct {
	Name string
	Args string
	Pos  Position
}

// FilterAnnotation is the annotation name recognized as a version
// filter. Its Args hold a filter-expression source string.
const FilterAnnotation = "version"

// FeatureAnnotation is the build-gate marker attached to emitted
// variants when feature tagging is enabled.
const FeatureAnnotation = "cfg"

// Node is one unit in a declaration tree.
type Node interface {
	// NodeName returns the declared name, or "" for anonymous nodes.
	NodeName() string

	// Annotations returns the node's attached annotations in order.
	Annotations() []Annotation

	// Position returns the node's source position.
	Position() Position

	declNode()
}

// Visible is implemented by node categories that carry a visibility
// marker. Behavior blocks have no visibility concept and do not
// implement it.
type Visible interface {
	Node

	Visibility() Visibility
	SetVisibility(Visibility)
}

// Container is a named scope holding an ordered list of child
// declarations (a module or namespace).
type Container struct {
	Pos      Position
	Name     string
	Vis      Visibility
	Attrs    []Annotation
	Children []Node
}

// Struct is a type definition with ordered fields.
type Struct struct {
	Pos    Position
	Name   string
	Vis    Visibility
	Attrs  []Annotation
	Fields []*Field
}

// Field is one member of a struct or enum variant. Type is opaque
// surface syntax.
type Field struct {
	Pos   Position
	Name  string
	Type  string
	Vis   Visibility
	Attrs []Annotation
}

// Enum is a type definition with ordered variants.
type Enum struct {
	Pos      Position
	Name     string
	Vis      Visibility
	Attrs    []Annotation
	Variants []*Variant
}

// Variant is one alternative of an enum, with its own ordered fields.
// Variants have no visibility of their own.
type Variant struct {
	Pos    Position
	Name   string
	Attrs  []Annotation
	Fields []*Field
}

// BehaviorKind distinguishes the three behavior-block flavors.
type BehaviorKind int

const (
	// Trait is an interface-like behavior declaration.
	Trait BehaviorKind = iota
	// Impl is an implementation block.
	Impl
	// Foreign is a foreign-function block.
	Foreign
)

// String returns the lowercase label for the behavior kind.
func (k BehaviorKind) String() string {
	switch k {
	case Trait:
		return "trait"
	case Impl:
		return "impl"
	case Foreign:
		return "foreign"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Behavior is a trait, implementation, or foreign block holding
// ordered members. The block itself has no visibility concept.
type Behavior struct {
	Pos     Position
	Kind    BehaviorKind
	Name    string
	Attrs   []Annotation
	Members []*Member
}

// Member is one item inside a behavior block. Payload is opaque
// surface syntax (a function signature and body, a constant, ...).
type Member struct {
	Pos     Position
	Name    string
	Payload string
	Attrs   []Annotation
}

// Leaf is any declaration the engine never recurses into: a function,
// constant, type alias, import, and so on. Payload is opaque.
type Leaf struct {
	Pos     Position
	Name    string
	Payload string
	Vis     Visibility
	Attrs   []Annotation
}

func (n *Container) NodeName() string { return n.Name }
func (n *Struct) NodeName() string    { return n.Name }
func (n *Enum) NodeName() string      { return n.Name }
func (n *Behavior) NodeName() string  { return n.Name }
func (n *Leaf) NodeName() string      { return n.Name }

func (n *Container) Annotations() []Annotation { return n.Attrs }
func (n *Struct) Annotations() []Annotation    { return n.Attrs }
func (n *Enum) Annotations() []Annotation      { return n.Attrs }
func (n *Behavior) Annotations() []Annotation  { return n.Attrs }
func (n *Leaf) Annotations() []Annotation      { return n.Attrs }

func (n *Container) Position() Position { return n.Pos }
func (n *Struct) Position() Position    { return n.Pos }
func (n *Enum) Position() Position      { return n.Pos }
func (n *Behavior) Position() Position  { return n.Pos }
func (n *Leaf) Position() Position      { return n.Pos }

func (*Container) declNode() {}
func (*Struct) declNode()    {}
func (*Enum) declNode()      {}
func (*Behavior) declNode()  {}
func (*Leaf) declNode()      {}

func (n *Container) Visibility() Visibility { return n.Vis }
func (n *Struct) Visibility() Visibility    { return n.Vis }
func (n *Enum) Visibility() Visibility      { return n.Vis }
func (n *Leaf) Visibility() Visibility      { return n.Vis }

func (n *Container) SetVisibility(v Visibility) { n.Vis = v }
func (n *Struct) SetVisibility(v Visibility)    { n.Vis = v }
func (n *Enum) SetVisibility(v Visibility)      { n.Vis = v }
func (n *Leaf) SetVisibility(v Visibility)      { n.Vis = v }
