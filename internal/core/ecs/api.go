package ecs

import (
	"fmt"
	"unsafe"
)

// Typed front end over the boxed World operations. T must be registered in
// the World's registry first (RegisterComponent). Values returned by Get are
// copies; mutate through Set so writes stay under the store's lock.

// Add attaches a component value of type T to the entity.
func Add[T any](w *World, e Entity, value T) error {
	id, ok := LookupComponent[T](w.registry)
	if !ok {
		return fmt.Errorf("add %T: %w", value, ErrUnregisteredComponent)
	}
	return w.Add(e, id, valueBytes(&value, int(unsafe.Sizeof(value))))
}

// Set overwrites the entity's existing T value.
func Set[T any](w *World, e Entity, value T) error {
	id, ok := LookupComponent[T](w.registry)
	if !ok {
		return fmt.Errorf("set %T: %w", value, ErrUnregisteredComponent)
	}
	return w.Set(e, id, valueBytes(&value, int(unsafe.Sizeof(value))))
}

// Get returns a copy of the entity's T value.
func Get[T any](w *World, e Entity) (T, error) {
	var out T
	id, ok := LookupComponent[T](w.registry)
	if !ok {
		return out, fmt.Errorf("get %T: %w", out, ErrUnregisteredComponent)
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	cell, err := w.cellLocked(e, id)
	if err != nil {
		return out, err
	}
	if cell != nil {
		copy(valueBytes(&out, len(cell)), cell)
	}
	return out, nil
}

// Has reports whether the entity carries T. Never errors.
func Has[T any](w *World, e Entity) bool {
	id, ok := LookupComponent[T](w.registry)
	if !ok {
		return false
	}
	return w.Has(e, id)
}

// Remove detaches T from the entity, reporting whether anything was removed.
func Remove[T any](w *World, e Entity) bool {
	id, ok := LookupComponent[T](w.registry)
	if !ok {
		return false
	}
	return w.Remove(e, id)
}

// QueryFor builds a descriptor requiring T.
func QueryFor[T any](w *World) (QueryDescriptor, error) {
	var zero T
	id, ok := LookupComponent[T](w.registry)
	if !ok {
		return QueryDescriptor{}, fmt.Errorf("query %T: %w", zero, ErrUnregisteredComponent)
	}
	return QueryWith(id), nil
}

// QueryFor2 builds a descriptor requiring both T1 and T2.
func QueryFor2[T1, T2 any](w *World) (QueryDescriptor, error) {
	var z1 T1
	var z2 T2
	id1, ok := LookupComponent[T1](w.registry)
	if !ok {
		return QueryDescriptor{}, fmt.Errorf("query %T: %w", z1, ErrUnregisteredComponent)
	}
	id2, ok := LookupComponent[T2](w.registry)
	if !ok {
		return QueryDescriptor{}, fmt.Errorf("query %T: %w", z2, ErrUnregisteredComponent)
	}
	return QueryWith(id1, id2), nil
}
