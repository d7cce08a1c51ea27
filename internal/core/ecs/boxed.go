package ecs

import (
	"fmt"
	"unsafe"
)

// Boxed is a type-erased component value: the component's ID plus an owned
// byte buffer holding one instance. It is the representation structural
// transitions and the dynamic Get/Set/Add seams move data through, so no
// call site needs generic specialization. Data is nil for tag components.
type Boxed struct {
	ID   ComponentID
	Data []byte
}

// Box converts a typed value into its boxed form using the registry's
// metadata for T. T must have been registered.
func Box[T any](r *Registry, value T) (Boxed, error) {
	id, ok := LookupComponent[T](r)
	if !ok {
		return Boxed{}, fmt.Errorf("box %T: %w", value, ErrUnregisteredComponent)
	}
	size := int(unsafe.Sizeof(value))
	if size == 0 {
		return Boxed{ID: id}, nil
	}
	data := make([]byte, size)
	copy(data, valueBytes(&value, size))
	return Boxed{ID: id, Data: data}, nil
}

// Unbox converts a boxed value back into T. The buffer length must match
// T's size exactly.
func Unbox[T any](b Boxed) (T, error) {
	var out T
	size := int(unsafe.Sizeof(out))
	if len(b.Data) != size {
		return out, fmt.Errorf("unbox component %d: have %d bytes, want %d: %w",
			b.ID, len(b.Data), size, ErrSizeMismatch)
	}
	if size > 0 {
		copy(valueBytes(&out, size), b.Data)
	}
	return out, nil
}

// valueBytes exposes the memory of *v as a byte slice. The caller must keep
// v alive for the duration of any copy.
func valueBytes[T any](v *T, size int) []byte {
	if size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), size)
}
