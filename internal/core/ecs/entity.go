package ecs

import "math"

// Entity is a generational handle identifying a logical object in a World.
// It is a plain value: copying it never aliases storage. A handle is alive
// iff its generation matches the allocator's current generation for its slot.
type Entity struct {
	// Index is the slot in the entity table. Recycled when the entity dies.
	Index uint32
	// Generation is incremented each time the slot is released, invalidating
	// every previously issued handle for the slot.
	Generation uint32
}

const nullIndex = math.MaxUint32

// Null is the distinguished never-alive entity. Its index is out of range for
// any allocator.
var Null = Entity{Index: nullIndex}

// IsNull reports whether e is the null sentinel.
func (e Entity) IsNull() bool {
	return e.Index == nullIndex
}

// Allocator hands out generational entity handles. Released slots go on a
// free list and are reused with a bumped generation, bounding table growth.
//
// Generation wraparound after ~4 billion release cycles of a single slot is
// not specially handled; see DESIGN.md.
type Allocator struct {
	generations []uint32
	alive       []bool
	free        []uint32
}

// NewAllocator creates an allocator pre-sized for capacity entities. Slots
// are still created on demand; capacity only avoids re-allocations.
func NewAllocator(capacity int) *Allocator {
	if capacity < 0 {
		capacity = 0
	}
	return &Allocator{
		generations: make([]uint32, 0, capacity),
		alive:       make([]bool, 0, capacity),
		free:        make([]uint32, 0, capacity),
	}
}

// Acquire returns a live entity handle, reusing a released slot when one is
// available and growing the table otherwise.
func (a *Allocator) Acquire() Entity {
	if n := len(a.free); n > 0 {
		index := a.free[n-1]
		a.free = a.free[:n-1]
		a.alive[index] = true
		return Entity{Index: index, Generation: a.generations[index]}
	}
	index := uint32(len(a.generations))
	a.generations = append(a.generations, 0)
	a.alive = append(a.alive, true)
	return Entity{Index: index}
}

// Release returns the entity's slot to the free list and bumps its
// generation. Releasing a stale or out-of-range handle is a no-op returning
// false; it is not an error.
func (a *Allocator) Release(e Entity) bool {
	if !a.IsValid(e) {
		return false
	}
	a.generations[e.Index]++
	a.alive[e.Index] = false
	a.free = append(a.free, e.Index)
	return true
}

// IsValid reports whether the handle refers to a currently alive entity.
func (a *Allocator) IsValid(e Entity) bool {
	if int64(e.Index) >= int64(len(a.generations)) {
		return false
	}
	return a.alive[e.Index] && a.generations[e.Index] == e.Generation
}

// GetVersion returns the current generation of a slot, or -1 when the index
// was never allocated.
func (a *Allocator) GetVersion(index int) int64 {
	if index < 0 || index >= len(a.generations) {
		return -1
	}
	return int64(a.generations[index])
}

// Alive returns the number of live entities.
func (a *Allocator) Alive() int {
	return len(a.generations) - len(a.free)
}

// Cap returns the number of slots ever allocated.
func (a *Allocator) Cap() int {
	return len(a.generations)
}
