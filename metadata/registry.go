package metadata

import (
	"fmt"
	"sort"
	"sync"
)

// Lookup resolves entity names to their mapping. The SQL generator follows
// relationship targets through this interface.
type Lookup interface {
	Entity(name string) (*Entity, bool)
}

// LookupFunc adapts a plain function to the Lookup interface.
type LookupFunc func(name string) (*Entity, bool)

func (f LookupFunc) Entity(name string) (*Entity, bool) { return f(name) }

// Registry is a thread-safe collection of entity mappings keyed by entity
// name. It implements Lookup.
type Registry struct {
	mu       sync.RWMutex
	entities map[string]*Entity
}

func NewRegistry() *Registry {
	return &Registry{entities: make(map[string]*Entity)}
}

// Register validates and adds entities. Registering a name twice is an
// error; mappings are fixed once published.
func (r *Registry) Register(entities ...*Entity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entities {
		if err := validate(e); err != nil {
			return err
		}
		if _, exists := r.entities[e.Name]; exists {
			return fmt.Errorf("entity %q is already registered", e.Name)
		}
		r.entities[e.Name] = e
	}
	return nil
}

// MustRegister is Register for static mapping tables; it panics on error.
func (r *Registry) MustRegister(entities ...*Entity) *Registry {
	if err := r.Register(entities...); err != nil {
		panic(err)
	}
	return r
}

// Entity returns the registered mapping for name.
func (r *Registry) Entity(name string) (*Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entities[name]
	return e, ok
}

// Names returns all registered entity names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entities))
	for name := range r.entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func validate(e *Entity) error {
	if e == nil {
		return fmt.Errorf("entity must not be nil")
	}
	if e.Name == "" {
		return fmt.Errorf("entity name must not be empty")
	}
	if e.Table == "" {
		return fmt.Errorf("entity %q has no table name", e.Name)
	}
	seen := make(map[string]bool, len(e.Properties))
	pks := 0
	for _, p := range e.Properties {
		if p.Name == "" || p.Column == "" {
			return fmt.Errorf("entity %q has a property with an empty name or column", e.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("entity %q declares property %q twice", e.Name, p.Name)
		}
		seen[p.Name] = true
		if p.PrimaryKey {
			pks++
		}
	}
	if pks > 1 {
		return fmt.Errorf("entity %q declares %d primary key properties, composite keys are not supported", e.Name, pks)
	}
	for prop, rel := range e.Relationships {
		if prop == "" {
			return fmt.Errorf("entity %q has a relationship with an empty property name", e.Name)
		}
		if seen[prop] {
			return fmt.Errorf("entity %q maps %q as both a property and a relationship", e.Name, prop)
		}
		if rel.Target == "" {
			return fmt.Errorf("relationship %q on entity %q has no target", prop, e.Name)
		}
		if rel.Kind == 0 {
			return fmt.Errorf("relationship %q on entity %q has no kind", prop, e.Name)
		}
	}
	return nil
}
