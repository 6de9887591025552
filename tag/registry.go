package tag

import (
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
)

var (
	ErrIdentifierCollision = eris.New("identifier collision")
	ErrUnknownName         = eris.New("name is not registered")
	ErrEmptyName           = eris.New("name must not be empty")
)

// Registry maps type names to their tags. Types are expected to be registered once on startup; a
// collision between two different names is reported instead of silently aliasing both types.
type Registry struct {
	byName map[string]Tag
	byTag  map[Tag]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Tag),
		byTag:  make(map[Tag]string),
	}
}

// Register derives the tag for name and records it. Registering the same name again returns the same tag.
func (r *Registry) Register(name string) (Tag, error) {
	if name == "" {
		return "", ErrEmptyName
	}
	if t, ok := r.byName[name]; ok {
		return t, nil
	}
	t := Of(name)
	if other, ok := r.byTag[t]; ok {
		return "", eris.Wrapf(ErrIdentifierCollision, "%q and %q both derive tag %s", other, name, t)
	}
	r.byName[name] = t
	r.byTag[t] = name
	return t, nil
}

// MustRegister is like Register but panics on failure. It is meant for package level var blocks.
func (r *Registry) MustRegister(name string) Tag {
	t, err := r.Register(name)
	if err != nil {
		panic(fmt.Sprintf("failed to register %q: %s", name, eris.ToString(err, false)))
	}
	return t
}

// RegisterAll registers every name. Nothing is recorded if any of them collides.
func (r *Registry) RegisterAll(names ...string) error {
	pending := make(map[Tag]string, len(names))
	for _, name := range names {
		if name == "" {
			return ErrEmptyName
		}
		if _, ok := r.byName[name]; ok {
			continue
		}
		t := Of(name)
		if other, ok := r.byTag[t]; ok {
			return eris.Wrapf(ErrIdentifierCollision, "%q and %q both derive tag %s", other, name, t)
		}
		if other, ok := pending[t]; ok && other != name {
			return eris.Wrapf(ErrIdentifierCollision, "%q and %q both derive tag %s", other, name, t)
		}
		pending[t] = name
	}
	for t, name := range pending {
		r.byName[name] = t
		r.byTag[t] = name
	}
	return nil
}

// Lookup returns the tag registered for name.
func (r *Registry) Lookup(name string) (Tag, error) {
	t, ok := r.byName[name]
	if !ok {
		return "", eris.Wrapf(ErrUnknownName, "%q", name)
	}
	return t, nil
}

// Name returns the name a tag was registered under.
func (r *Registry) Name(t Tag) (string, bool) {
	name, ok := r.byTag[t]
	return name, ok
}

// Names returns all registered names in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Len() int {
	return len(r.byName)
}
