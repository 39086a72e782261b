package pass

import (
	"github.com/matzehuels/nprs/pkg/bind"
	"github.com/matzehuels/nprs/pkg/errors"
	"github.com/matzehuels/nprs/pkg/value"
)

// Binder turns a dynamic value into a pass instance.
type Binder func(value.Value) (Pass, error)

type entry struct {
	name string
	bind Binder
}

// Registry maps pass type names to binders. Entries are only ever appended;
// when a name is registered twice the first entry wins.
//
// A Registry is not safe for concurrent registration. Lookups on a fully
// built registry may run concurrently.
type Registry struct {
	entries []entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers a binder under name.
func (r *Registry) Add(name string, b Binder) {
	r.entries = append(r.entries, entry{name: name, bind: b})
}

// Register adds a typed decoder under name.
func Register[T Pass](r *Registry, name string, dec bind.Decoder[T]) {
	r.Add(name, func(v value.Value) (Pass, error) {
		p, err := dec(v)
		if err != nil {
			return nil, err
		}
		return p, nil
	})
}

// Lookup returns the binder registered under name.
func (r *Registry) Lookup(name string) (Binder, error) {
	for _, e := range r.entries {
		if e.name == name {
			return e.bind, nil
		}
	}
	return nil, errors.New(errors.ErrCodeUnknownPass, "unknown pass '%s'", name)
}

// Bind looks up the binder for name and applies it to v.
func (r *Registry) Bind(name string, v value.Value) (Pass, error) {
	b, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	return b(v)
}

// Names returns the registered names in registration order, without
// duplicates.
func (r *Registry) Names() []string {
	seen := make(map[string]bool, len(r.entries))
	names := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		if !seen[e.name] {
			seen[e.name] = true
			names = append(names, e.name)
		}
	}
	return names
}
