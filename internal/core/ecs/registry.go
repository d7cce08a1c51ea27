package ecs

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unsafe"
)

// ComponentID is a small dense identifier assigned on first registration of
// a component type. Stable for the lifetime of its Registry.
type ComponentID uint16

// ComponentInfo records the registration metadata of one component type.
type ComponentInfo struct {
	ID   ComponentID
	Name string
	// Size is the per-instance byte size. Zero for tag components.
	Size int
	// Tag marks zero-size components that carry no data.
	Tag bool
}

// Registry maps component types to stable numeric IDs plus size and tag
// metadata. Each World owns one; registries are never shared implicitly.
type Registry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]ComponentID
	byName map[string]ComponentID
	infos  []ComponentInfo
}

func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[reflect.Type]ComponentID, 16),
		byName: make(map[string]ComponentID, 16),
	}
}

// Register assigns an ID to a named component with an explicit byte size.
// Registering the same name again returns the existing info. A blank name
// fails fast with ErrInvalidArgument; a negative size likewise.
func (r *Registry) Register(name string, size int) (ComponentInfo, error) {
	if strings.TrimSpace(name) == "" {
		return ComponentInfo{}, fmt.Errorf("component name must not be blank: %w", ErrInvalidArgument)
	}
	if size < 0 {
		return ComponentInfo{}, fmt.Errorf("component size must not be negative: %w", ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byName[name]; ok {
		return r.infos[id], nil
	}
	if len(r.infos) >= MaxComponentTypes {
		return ComponentInfo{}, fmt.Errorf("cannot register %q: %w", name, ErrComponentLimit)
	}
	info := ComponentInfo{
		ID:   ComponentID(len(r.infos)),
		Name: name,
		Size: size,
		Tag:  size == 0,
	}
	r.infos = append(r.infos, info)
	r.byName[name] = info.ID
	return info, nil
}

// registerType is the typed registration path. Idempotent per reflect.Type.
func (r *Registry) registerType(t reflect.Type, size int) (ComponentInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byType[t]; ok {
		return r.infos[id], nil
	}
	if len(r.infos) >= MaxComponentTypes {
		return ComponentInfo{}, fmt.Errorf("cannot register %s: %w", t, ErrComponentLimit)
	}
	info := ComponentInfo{
		ID:   ComponentID(len(r.infos)),
		Name: t.String(),
		Size: size,
		Tag:  size == 0,
	}
	r.infos = append(r.infos, info)
	r.byType[t] = info.ID
	r.byName[info.Name] = info.ID
	return info, nil
}

// Info returns the metadata for an ID.
func (r *Registry) Info(id ComponentID) (ComponentInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) >= len(r.infos) {
		return ComponentInfo{}, false
	}
	return r.infos[id], true
}

// LookupName returns the ID registered for a component name.
func (r *Registry) LookupName(name string) (ComponentID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[name]
	return id, ok
}

// Count returns the number of registered component types.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.infos)
}

// All returns a copy of every registered component's metadata, in ID order.
func (r *Registry) All() []ComponentInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ComponentInfo, len(r.infos))
	copy(out, r.infos)
	return out
}

// size returns the registered byte size for id without copying info.
func (r *Registry) size(id ComponentID) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) >= len(r.infos) {
		return 0, false
	}
	return r.infos[id].Size, true
}

// RegisterComponent registers T in the registry and returns its ID. Calling
// it again for the same T returns the existing ID. Zero-size types become
// tag components.
func RegisterComponent[T any](r *Registry) (ComponentID, error) {
	var zero T
	info, err := r.registerType(reflect.TypeOf(zero), int(unsafe.Sizeof(zero)))
	if err != nil {
		return 0, err
	}
	return info.ID, nil
}

// MustRegisterComponent is RegisterComponent panicking on failure, for
// registration at program start.
func MustRegisterComponent[T any](r *Registry) ComponentID {
	id, err := RegisterComponent[T](r)
	if err != nil {
		panic(err)
	}
	return id
}

// LookupComponent returns the ID previously registered for T.
func LookupComponent[T any](r *Registry) (ComponentID, bool) {
	var zero T
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byType[reflect.TypeOf(zero)]
	return id, ok
}
