package decl

// Clone returns an independent deep copy of a node. Variants produced
// by the emitter never share structure with the input tree or with
// each other.
func Clone(n Node) Node {
	switch node := n.(type) {
	case *Container:
		return node.Clone()
	case *Struct:
		return node.Clone()
	case *Enum:
		return node.Clone()
	case *Behavior:
		return node.Clone()
	case *Leaf:
		return node.Clone()
	default:
		return nil
	}
}

// CloneAnnotations copies an annotation list.
func CloneAnnotations(attrs []Annotation) []Annotation {
	if attrs == nil {
		return nil
	}

	out := make([]Annotation, len(attrs))
	copy(out, attrs)

	return out
}

// Clone deep-copies the container and its subtree.
func (n *Container) Clone() *Container {
	out := &Container{
		Pos:   n.Pos,
		Name:  n.Name,
		Vis:   n.Vis,
		Attrs: CloneAnnotations(n.Attrs),
	}

	if n.Children != nil {
		out.Children = make([]Node, 0, len(n.Children))
		for _, child := range n.Children {
			out.Children = append(out.Children, Clone(child))
		}
	}

	return out
}

// Clone deep-copies the struct and its fields.
func (n *Struct) Clone() *Struct {
	return &Struct{
		Pos:    n.Pos,
		Name:   n.Name,
		Vis:    n.Vis,
		Attrs:  CloneAnnotations(n.Attrs),
		Fields: cloneFields(n.Fields),
	}
}

// Clone deep-copies the field.
func (n *Field) Clone() *Field {
	return &Field{
		Pos:   n.Pos,
		Name:  n.Name,
		Type:  n.Type,
		Vis:   n.Vis,
		Attrs: CloneAnnotations(n.Attrs),
	}
}

// Clone deep-copies the enum and its variants.
func (n *Enum) Clone() *Enum {
	out := &Enum{
		Pos:   n.Pos,
		Name:  n.Name,
		Vis:   n.Vis,
		Attrs: CloneAnnotations(n.Attrs),
	}

	if n.Variants != nil {
		out.Variants = make([]*Variant, 0, len(n.Variants))
		for _, v := range n.Variants {
			out.Variants = append(out.Variants, v.Clone())
		}
	}

	return out
}

// Clone deep-copies the variant and its fields.
func (n *Variant) Clone() *Variant {
	return &Variant{
		Pos:    n.Pos,
		Name:   n.Name,
		Attrs:  CloneAnnotations(n.Attrs),
		Fields: cloneFields(n.Fields),
	}
}

// Clone deep-copies the behavior block and its members.
func (n *Behavior) Clone() *Behavior {
	out := &Behavior{
		Pos:   n.Pos,
		Kind:  n.Kind,
		Name:  n.Name,
		Attrs: CloneAnnotations(n.Attrs),
	}

	if n.Members != nil {
		out.Members = make([]*Member, 0, len(n.Members))
		for _, m := range n.Members {
			out.Members = append(out.Members, m.Clone())
		}
	}

	return out
}

// Clone deep-copies the member.
func (n *Member) Clone() *Member {
	return &Member{
		Pos:     n.Pos,
		Name:    n.Name,
		Payload: n.Payload,
		Attrs:   CloneAnnotations(n.Attrs),
	}
}

// Clone deep-copies the leaf.
func (n *Leaf) Clone() *Leaf {
	return &Leaf{
		Pos:     n.Pos,
		Name:    n.Name,
		Payload: n.Payload,
		Vis:     n.Vis,
		Attrs:   CloneAnnotations(n.Attrs),
	}
}

func cloneFields(fields []*Field) []*Field {
	if fields == nil {
		return nil
	}

	out := make([]*Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Clone())
	}

	return out
}
