// Package vers defines the ordered version registry. A registry assigns
// every declared version name a stable position; position is the only
// ordering signal — names are opaque and never parsed as semantic versions.
package vers

import "fmt"

// Registry is an ordered, duplicate-free list of version names.
type Registry struct {
	names []string
	index map[string]int
}

// New constructs a Registry from the caller-supplied name sequence.
// Order is preserved exactly. A repeated name returns a
// *DuplicateVersionError.
func New(names []string) (*Registry, error) {
	r := &Registry{
		names: make([]string, 0, len(names)),
		index: make(map[string]int, len(names)),
	}

	for i, name := range names {
		if first, ok := r.index[name]; ok {
			return nil, &DuplicateVersionError{Name: name, First: first, Second: i}
		}

		r.index[name] = i
		r.names = append(r.names, name)
	}

	return r, nil
}

// Index returns the position of name in the registry. An undeclared name
// returns a *UnknownVersionError.
func (r *Registry) Index(name string) (int, error) {
	i, ok := r.index[name]
	if !ok {
		return 0, &UnknownVersionError{Name: name}
	}

	return i, nil
}

// Contains reports whether name is declared in the registry.
func (r *Registry) Contains(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Len returns the number of declared versions.
func (r *Registry) Len() int { return len(r.names) }

// At returns the version name at position i.
func (r *Registry) At(i int) string { return r.names[i] }

// Names returns a copy of the declared names in registry order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)

	return out
}

// DuplicateVersionError is returned by New when a version name is
// declared more than once.
type DuplicateVersionError struct {
	Name   string
	First  int
	Second int
}

func (e *DuplicateVersionError) Error() string {
	return fmt.Sprintf("duplicate version %q: declared at positions %d and %d", e.Name, e.First, e.Second)
}

// UnknownVersionError is returned by Index for a name that is not part
// of the registry.
type UnknownVersionError struct {
	Name string
}

func (e *UnknownVersionError) Error() string {
	return fmt.Sprintf("unknown version %q", e.Name)
}
