package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Nexus-Mods/extension-modtype-harmony-patcher/pkg/errors"
)

// Registry stores items by unique name
type Registry[T any] interface {
	// Register adds an item; names must be unique and non-empty
	Register(name string, item T) error

	// Get retrieves an item by name
	Get(name string) (T, error)

	// Has checks if an item is registered
	Has(name string) bool

	// List returns all registered names in sorted order
	List() []string

	// Values returns all items ordered by name
	Values() []T

	// Count returns the number of registered items
	Count() int
}

type registry[T any] struct {
	kind  string
	mu    sync.RWMutex
	items map[string]T
}

// New creates an empty registry. kind names the registered items in error
// messages, e.g. "mod type".
func New[T any](kind string) Registry[T] {
	if kind == "" {
		kind = "item"
	}
	return &registry[T]{
		kind:  kind,
		items: make(map[string]T),
	}
}

func (r *registry[T]) Register(name string, item T) error {
	if name == "" {
		return errors.Newf(errors.ErrInvalidInput, "%s name cannot be empty", r.kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[name]; exists {
		return errors.Newf(errors.ErrAlreadyExists, "%s '%s' is already registered", r.kind, name).
			WithDetail("name", name)
	}
	r.items[name] = item
	return nil
}

func (r *registry[T]) Get(name string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.items[name]
	if !exists {
		var zero T
		return zero, errors.Newf(errors.ErrNotFound, "%s '%s' not found", r.kind, name).
			WithDetail("name", name)
	}
	return item, nil
}

func (r *registry[T]) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.items[name]
	return exists
}

func (r *registry[T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames()
}

func (r *registry[T]) Values() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := r.sortedNames()
	values := make([]T, 0, len(names))
	for _, name := range names {
		values = append(values, r.items[name])
	}
	return values
}

func (r *registry[T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}

// sortedNames expects the caller to hold the lock
func (r *registry[T]) sortedNames() []string {
	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MustRegister registers an item and panics if registration fails.
// Use it where a failure is a programming error.
func MustRegister[T any](reg Registry[T], name string, item T) {
	if err := reg.Register(name, item); err != nil {
		panic(fmt.Sprintf("failed to register %s: %v", name, err))
	}
}
