package declyaml

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/declvar/internal/decl"
)

// docNode is the marshaling shape for any declaration.
type docNode struct {
	Kind        string          `yaml:"kind"`
	Name        string          `yaml:"name,omitempty"`
	Visibility  string          `yaml:"visibility,omitempty"`
	Annotations []docAnnotation `yaml:"annotations,omitempty"`
	Payload     string          `yaml:"payload,omitempty"`
	Children    []*docNode      `yaml:"children,omitempty"`
	Fields      []*docField     `yaml:"fields,omitempty"`
	Variants    []*docVariant   `yaml:"variants,omitempty"`
	Members     []*docMember    `yaml:"members,omitempty"`
}

type docAnnotation struct {
	Name string `yaml:"name"`
	Args string `yaml:"args,omitempty"`
}

type docField struct {
	Name        string          `yaml:"name"`
	Type        string          `yaml:"type,omitempty"`
	Visibility  string          `yaml:"visibility,omitempty"`
	Annotations []docAnnotation `yaml:"annotations,omitempty"`
}

type docVariant struct {
	Name        string          `yaml:"name"`
	Annotations []docAnnotation `yaml:"annotations,omitempty"`
	Fields      []*docField     `yaml:"fields,omitempty"`
}

type docMember struct {
	Name        string          `yaml:"name,omitempty"`
	Payload     string          `yaml:"payload,omitempty"`
	Annotations []docAnnotation `yaml:"annotations,omitempty"`
}

// Encode renders a declaration tree as one YAML document.
func Encode(n decl.Node) ([]byte, error) {
	doc, err := toDoc(n)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding declaration: %w", err)
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding declaration: %w", err)
	}

	return buf.Bytes(), nil
}

func toDoc(n decl.Node) (*docNode, error) {
	switch node := n.(type) {
	case *decl.Container:
		doc := &docNode{
			Kind:        "container",
			Name:        node.Name,
			Visibility:  visibilityLabel(node.Vis),
			Annotations: toDocAnnotations(node.Attrs),
		}

		for _, child := range node.Children {
			childDoc, err := toDoc(child)
			if err != nil {
				return nil, err
			}

			doc.Children = append(doc.Children, childDoc)
		}

		return doc, nil

	case *decl.Struct:
		return &docNode{
			Kind:        "struct",
			Name:        node.Name,
			Visibility:  visibilityLabel(node.Vis),
			Annotations: toDocAnnotations(node.Attrs),
			Fields:      toDocFields(node.Fields),
		}, nil

	case *decl.Enum:
		doc := &docNode{
			Kind:        "enum",
			Name:        node.Name,
			Visibility:  visibilityLabel(node.Vis),
			Annotations: toDocAnnotations(node.Attrs),
		}

		for _, v := range node.Variants {
			doc.Variants = append(doc.Variants, &docVariant{
				Name:        v.Name,
				Annotations: toDocAnnotations(v.Attrs),
				Fields:      toDocFields(v.Fields),
			})
		}

		return doc, nil

	case *decl.Behavior:
		doc := &docNode{
			Kind:        node.Kind.String(),
			Name:        node.Name,
			Annotations: toDocAnnotations(node.Attrs),
		}

		for _, m := range node.Members {
			doc.Members = append(doc.Members, &docMember{
				Name:        m.Name,
				Payload:     m.Payload,
				Annotations: toDocAnnotations(m.Attrs),
			})
		}

		return doc, nil

	case *decl.Leaf:
		return &docNode{
			Kind:        "leaf",
			Name:        node.Name,
			Visibility:  visibilityLabel(node.Vis),
			Annotations: toDocAnnotations(node.Attrs),
			Payload:     node.Payload,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported declaration node %T", n)
	}
}

func toDocAnnotations(attrs []decl.Annotation) []docAnnotation {
	if len(attrs) == 0 {
		return nil
	}

	out := make([]docAnnotation, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, docAnnotation{Name: a.Name, Args: a.Args})
	}

	return out
}

func toDocFields(fields []*decl.Field) []*docField {
	if len(fields) == 0 {
		return nil
	}

	out := make([]*docField, 0, len(fields))
	for _, f := range fields {
		out = append(out, &docField{
			Name:        f.Name,
			Type:        f.Type,
			Visibility:  visibilityLabel(f.Vis),
			Annotations: toDocAnnotations(f.Attrs),
		})
	}

	return out
}

// visibilityLabel returns the YAML label, omitting the private default.
func visibilityLabel(v decl.Visibility) string {
	if v == decl.Public {
		return "public"
	}

	return ""
}
