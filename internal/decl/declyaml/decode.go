// Package declyaml is the document codec between YAML and declaration
// trees. Documents are kind-tagged mappings:
//
//	kind: container
//	name: defs
//	visibility: public
//	children:
//	  - kind: struct
//	    name: Example
//	    fields:
//	      - name: foo
//	        type: string
//	        annotations:
//	          - name: version
//	            args: 'max("v1_0_1")'
//
// Decoding works on the yaml.Node level so every declaration keeps its
// source position for diagnostics.
package declyaml

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/declvar/internal/decl"
)

// Decode parses a single YAML document into a declaration tree.
// filename is used in positions and error messages only.
func Decode(data []byte, filename string) (decl.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%s: empty document", filename)
	}

	d := &decoder{filename: filename}

	return d.node(doc.Content[0])
}

type decoder struct {
	filename string
}

func (d *decoder) pos(n *yaml.Node) decl.Position {
	return decl.Position{Filename: d.filename, Line: n.Line, Column: n.Column}
}

func (d *decoder) errf(n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("%s: %s", d.pos(n), fmt.Sprintf(format, args...))
}

// mapping collects the entries of a YAML mapping node, rejecting
// anything else and any unknown key.
func (d *decoder) mapping(n *yaml.Node, allowed ...string) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, d.errf(n, "expected a mapping")
	}

	ok := make(map[string]bool, len(allowed))
	for _, key := range allowed {
		ok[key] = true
	}

	entries := make(map[string]*yaml.Node, len(n.Content)/2)

	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i]
		if !ok[key.Value] {
			return nil, d.errf(key, "unknown key %q", key.Value)
		}

		if _, dup := entries[key.Value]; dup {
			return nil, d.errf(key, "duplicate key %q", key.Value)
		}

		entries[key.Value] = n.Content[i+1]
	}

	return entries, nil
}

func (d *decoder) scalar(entries map[string]*yaml.Node, key string) (string, *yaml.Node, error) {
	n, ok := entries[key]
	if !ok {
		return "", nil, nil
	}

	if n.Kind != yaml.ScalarNode {
		return "", nil, d.errf(n, "%s must be a scalar", key)
	}

	return n.Value, n, nil
}

// node decodes one declaration of any kind.
func (d *decoder) node(n *yaml.Node) (decl.Node, error) {
	// The kind key is inspected first; the full allowed key set depends
	// on it, so this pass permits everything and the per-kind decoder
	// re-validates.
	if n.Kind != yaml.MappingNode {
		return nil, d.errf(n, "expected a declaration mapping")
	}

	kind := ""

	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == "kind" {
			kind = n.Content[i+1].Value
			break
		}
	}

	switch kind {
	case "container":
		return d.container(n)
	case "struct":
		return d.structDef(n)
	case "enum":
		return d.enumDef(n)
	case "trait", "impl", "foreign":
		return d.behavior(n, kind)
	case "leaf":
		return d.leaf(n)
	case "":
		return nil, d.errf(n, "missing kind")
	default:
		return nil, d.errf(n, "unknown kind %q (expected container, struct, enum, trait, impl, foreign, or leaf)", kind)
	}
}

func (d *decoder) container(n *yaml.Node) (decl.Node, error) {
	entries, err := d.mapping(n, "kind", "name", "visibility", "annotations", "children")
	if err != nil {
		return nil, err
	}

	out := &decl.Container{Pos: d.pos(n)}

	if out.Name, _, err = d.scalar(entries, "name"); err != nil {
		return nil, err
	}

	if out.Vis, err = d.visibility(entries); err != nil {
		return nil, err
	}

	if out.Attrs, err = d.annotations(entries); err != nil {
		return nil, err
	}

	if children, ok := entries["children"]; ok {
		if children.Kind != yaml.SequenceNode {
			return nil, d.errf(children, "children must be a sequence")
		}

		for _, child := range children.Content {
			childNode, childErr := d.node(child)
			if childErr != nil {
				return nil, childErr
			}

			out.Children = append(out.Children, childNode)
		}
	}

	return out, nil
}

func (d *decoder) structDef(n *yaml.Node) (decl.Node, error) {
	entries, err := d.mapping(n, "kind", "name", "visibility", "annotations", "fields")
	if err != nil {
		return nil, err
	}

	out := &decl.Struct{Pos: d.pos(n)}

	if out.Name, _, err = d.scalar(entries, "name"); err != nil {
		return nil, err
	}

	if out.Vis, err = d.visibility(entries); err != nil {
		return nil, err
	}

	if out.Attrs, err = d.annotations(entries); err != nil {
		return nil, err
	}

	if out.Fields, err = d.fields(entries); err != nil {
		return nil, err
	}

	return out, nil
}

func (d *decoder) enumDef(n *yaml.Node) (decl.Node, error) {
	entries, err := d.mapping(n, "kind", "name", "visibility", "annotations", "variants")
	if err != nil {
		return nil, err
	}

	out := &decl.Enum{Pos: d.pos(n)}

	if out.Name, _, err = d.scalar(entries, "name"); err != nil {
		return nil, err
	}

	if out.Vis, err = d.visibility(entries); err != nil {
		return nil, err
	}

	if out.Attrs, err = d.annotations(entries); err != nil {
		return nil, err
	}

	if variants, ok := entries["variants"]; ok {
		if variants.Kind != yaml.SequenceNode {
			return nil, d.errf(variants, "variants must be a sequence")
		}

		for _, v := range variants.Content {
			variant, variantErr := d.variant(v)
			if variantErr != nil {
				return nil, variantErr
			}

			out.Variants = append(out.Variants, variant)
		}
	}

	return out, nil
}

func (d *decoder) variant(n *yaml.Node) (*decl.Variant, error) {
	entries, err := d.mapping(n, "name", "annotations", "fields")
	if err != nil {
		return nil, err
	}

	out := &decl.Variant{Pos: d.pos(n)}

	if out.Name, _, err = d.scalar(entries, "name"); err != nil {
		return nil, err
	}

	if out.Attrs, err = d.annotations(entries); err != nil {
		return nil, err
	}

	if out.Fields, err = d.fields(entries); err != nil {
		return nil, err
	}

	return out, nil
}

func (d *decoder) behavior(n *yaml.Node, kind string) (decl.Node, error) {
	entries, err := d.mapping(n, "kind", "name", "annotations", "members")
	if err != nil {
		return nil, err
	}

	out := &decl.Behavior{Pos: d.pos(n)}

	switch kind {
	case "trait":
		out.Kind = decl.Trait
	case "impl":
		out.Kind = decl.Impl
	case "foreign":
		out.Kind = decl.Foreign
	}

	if out.Name, _, err = d.scalar(entries, "name"); err != nil {
		return nil, err
	}

	if out.Attrs, err = d.annotations(entries); err != nil {
		return nil, err
	}

	if members, ok := entries["members"]; ok {
		if members.Kind != yaml.SequenceNode {
			return nil, d.errf(members, "members must be a sequence")
		}

		for _, m := range members.Content {
			member, memberErr := d.member(m)
			if memberErr != nil {
				return nil, memberErr
			}

			out.Members = append(out.Members, member)
		}
	}

	return out, nil
}

func (d *decoder) member(n *yaml.Node) (*decl.Member, error) {
	entries, err := d.mapping(n, "name", "payload", "annotations")
	if err != nil {
		return nil, err
	}

	out := &decl.Member{Pos: d.pos(n)}

	if out.Name, _, err = d.scalar(entries, "name"); err != nil {
		return nil, err
	}

	if out.Payload, _, err = d.scalar(entries, "payload"); err != nil {
		return nil, err
	}

	if out.Attrs, err = d.annotations(entries); err != nil {
		return nil, err
	}

	return out, nil
}

func (d *decoder) leaf(n *yaml.Node) (decl.Node, error) {
	entries, err := d.mapping(n, "kind", "name", "visibility", "annotations", "payload")
	if err != nil {
		return nil, err
	}

	out := &decl.Leaf{Pos: d.pos(n)}

	if out.Name, _, err = d.scalar(entries, "name"); err != nil {
		return nil, err
	}

	if out.Payload, _, err = d.scalar(entries, "payload"); err != nil {
		return nil, err
	}

	if out.Vis, err = d.visibility(entries); err != nil {
		return nil, err
	}

	if out.Attrs, err = d.annotations(entries); err != nil {
		return nil, err
	}

	return out, nil
}

func (d *decoder) fields(entries map[string]*yaml.Node) ([]*decl.Field, error) {
	seq, ok := entries["fields"]
	if !ok {
		return nil, nil
	}

	if seq.Kind != yaml.SequenceNode {
		return nil, d.errf(seq, "fields must be a sequence")
	}

	out := make([]*decl.Field, 0, len(seq.Content))

	for _, f := range seq.Content {
		fieldEntries, err := d.mapping(f, "name", "type", "visibility", "annotations")
		if err != nil {
			return nil, err
		}

		field := &decl.Field{Pos: d.pos(f)}

		if field.Name, _, err = d.scalar(fieldEntries, "name"); err != nil {
			return nil, err
		}

		if field.Type, _, err = d.scalar(fieldEntries, "type"); err != nil {
			return nil, err
		}

		if field.Vis, err = d.visibility(fieldEntries); err != nil {
			return nil, err
		}

		if field.Attrs, err = d.annotations(fieldEntries); err != nil {
			return nil, err
		}

		out = append(out, field)
	}

	return out, nil
}

func (d *decoder) annotations(entries map[string]*yaml.Node) ([]decl.Annotation, error) {
	seq, ok := entries["annotations"]
	if !ok {
		return nil, nil
	}

	if seq.Kind != yaml.SequenceNode {
		return nil, d.errf(seq, "annotations must be a sequence")
	}

	out := make([]decl.Annotation, 0, len(seq.Content))

	for _, a := range seq.Content {
		annEntries, err := d.mapping(a, "name", "args")
		if err != nil {
			return nil, err
		}

		ann := decl.Annotation{Pos: d.pos(a)}

		var nameNode *yaml.Node
		if ann.Name, nameNode, err = d.scalar(annEntries, "name"); err != nil {
			return nil, err
		}

		if nameNode == nil {
			return nil, d.errf(a, "annotation missing name")
		}

		if ann.Args, _, err = d.scalar(annEntries, "args"); err != nil {
			return nil, err
		}

		out = append(out, ann)
	}

	return out, nil
}

func (d *decoder) visibility(entries map[string]*yaml.Node) (decl.Visibility, error) {
	value, n, err := d.scalar(entries, "visibility")
	if err != nil {
		return decl.Private, err
	}

	if n == nil {
		return decl.Private, nil
	}

	switch value {
	case "public":
		return decl.Public, nil
	case "private":
		return decl.Private, nil
	default:
		return decl.Private, d.errf(n, "invalid visibility %q (expected public or private)", value)
	}
}
