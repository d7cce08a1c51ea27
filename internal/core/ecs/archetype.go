package ecs

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ArchetypeID identifies an archetype by the sorted, deduplicated set of
// component IDs present on all of its entities, plus a precomputed
// order-independent hash. Two IDs are equal iff they hold the same set;
// equality short-circuits on hash and length before comparing elements.
type ArchetypeID struct {
	ids  []ComponentID
	hash uint64
}

// NewArchetypeID canonicalizes the given component IDs (sort, dedup) and
// precomputes the hash. The input slice is not retained.
func NewArchetypeID(ids ...ComponentID) ArchetypeID {
	sorted := make([]ComponentID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	dedup := sorted[:0]
	for i, id := range sorted {
		if i == 0 || dedup[len(dedup)-1] != id {
			dedup = append(dedup, id)
		}
	}
	return ArchetypeID{ids: dedup, hash: hashComponentIDs(dedup)}
}

// hashComponentIDs hashes a canonically sorted id list. Sorting first makes
// the hash independent of the order components were attached in.
func hashComponentIDs(sorted []ComponentID) uint64 {
	d := xxhash.New()
	var buf [2]byte
	for _, id := range sorted {
		buf[0] = byte(id)
		buf[1] = byte(id >> 8)
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

// Hash returns the precomputed signature hash.
func (a ArchetypeID) Hash() uint64 {
	return a.hash
}

// Len returns the number of component types in the signature.
func (a ArchetypeID) Len() int {
	return len(a.ids)
}

// Components returns a copy of the sorted component IDs.
func (a ArchetypeID) Components() []ComponentID {
	out := make([]ComponentID, len(a.ids))
	copy(out, a.ids)
	return out
}

// Contains reports whether the signature includes id.
func (a ArchetypeID) Contains(id ComponentID) bool {
	i := sort.Search(len(a.ids), func(i int) bool { return a.ids[i] >= id })
	return i < len(a.ids) && a.ids[i] == id
}

// Equal reports whether both signatures hold the same component set.
func (a ArchetypeID) Equal(other ArchetypeID) bool {
	if a.hash != other.hash || len(a.ids) != len(other.ids) {
		return false
	}
	for i := range a.ids {
		if a.ids[i] != other.ids[i] {
			return false
		}
	}
	return true
}

// With returns the signature extended by id. Adding a present id returns an
// equal signature.
func (a ArchetypeID) With(id ComponentID) ArchetypeID {
	return NewArchetypeID(append(a.Components(), id)...)
}

// Without returns the signature with id removed. Removing an absent id
// returns an equal signature.
func (a ArchetypeID) Without(id ComponentID) ArchetypeID {
	kept := make([]ComponentID, 0, len(a.ids))
	for _, have := range a.ids {
		if have != id {
			kept = append(kept, have)
		}
	}
	return ArchetypeID{ids: kept, hash: hashComponentIDs(kept)}
}

func (a ArchetypeID) String() string {
	var b strings.Builder
	b.WriteString("archetype(")
	for i, id := range a.ids {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", id)
	}
	b.WriteByte(')')
	return b.String()
}

// Archetype owns the columnar storage for every entity sharing one component
// signature. Entities live in fixed-capacity chunks; their chunk and row are
// storage coordinates with no domain meaning. Archetypes are created lazily
// and persist for the life of the World.
type Archetype struct {
	id       ArchetypeID
	mask     mask256
	index    int // position in the world's archetype list
	capacity int // rows per chunk

	// sizes holds the element byte size per column, parallel to id.ids.
	// slots maps ComponentID to column index, -1 when absent.
	sizes []int
	slots [MaxComponentTypes]int16

	chunks []*Chunk
	size   int

	// pooled holds empty chunks kept for reuse.
	pooled []*Chunk
}

func newArchetype(id ArchetypeID, r *Registry, capacity, index int) (*Archetype, error) {
	a := &Archetype{
		id:       id,
		index:    index,
		capacity: capacity,
		sizes:    make([]int, id.Len()),
	}
	for i := range a.slots {
		a.slots[i] = -1
	}
	for col, cid := range id.ids {
		size, ok := r.size(cid)
		if !ok {
			return nil, fmt.Errorf("archetype %s: component %d: %w", id, cid, ErrUnregisteredComponent)
		}
		a.mask.set(cid)
		a.sizes[col] = size
		a.slots[cid] = int16(col)
	}
	return a, nil
}

// ID returns the archetype's signature.
func (a *Archetype) ID() ArchetypeID {
	return a.id
}

// Count returns the number of entities stored in the archetype.
func (a *Archetype) Count() int {
	return a.size
}

// slot returns the column index for a component ID, -1 when the archetype
// lacks it.
func (a *Archetype) slot(id ComponentID) int {
	return int(a.slots[id])
}
