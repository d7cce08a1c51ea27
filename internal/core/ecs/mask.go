package ecs

import "math/bits"

// MaxComponentTypes is the maximum number of distinct component types a
// single registry can hold. Fixed at 256 so component sets fit in four words.
const MaxComponentTypes = 256

// mask256 is a set of up to 256 component IDs. Each bit corresponds to one
// ComponentID.
type mask256 [4]uint64

func (m *mask256) set(id ComponentID) {
	m[id>>6] |= uint64(1) << uint64(id&63)
}

func (m *mask256) unset(id ComponentID) {
	m[id>>6] &= ^(uint64(1) << uint64(id&63))
}

func (m mask256) has(id ComponentID) bool {
	return m[id>>6]&(uint64(1)<<uint64(id&63)) != 0
}

// containsAll reports whether every bit of sub is also set in m.
func (m mask256) containsAll(sub mask256) bool {
	return (m[0]&sub[0]) == sub[0] &&
		(m[1]&sub[1]) == sub[1] &&
		(m[2]&sub[2]) == sub[2] &&
		(m[3]&sub[3]) == sub[3]
}

// intersects reports whether m and other share at least one bit.
func (m mask256) intersects(other mask256) bool {
	return m[0]&other[0] != 0 ||
		m[1]&other[1] != 0 ||
		m[2]&other[2] != 0 ||
		m[3]&other[3] != 0
}

func (m mask256) and(other mask256) mask256 {
	return mask256{m[0] & other[0], m[1] & other[1], m[2] & other[2], m[3] & other[3]}
}

func (m mask256) or(other mask256) mask256 {
	return mask256{m[0] | other[0], m[1] | other[1], m[2] | other[2], m[3] | other[3]}
}

func (m mask256) isZero() bool {
	return m[0] == 0 && m[1] == 0 && m[2] == 0 && m[3] == 0
}

func (m mask256) count() int {
	return bits.OnesCount64(m[0]) + bits.OnesCount64(m[1]) +
		bits.OnesCount64(m[2]) + bits.OnesCount64(m[3])
}

// ids appends every set bit to dst in ascending order and returns it.
func (m mask256) ids(dst []ComponentID) []ComponentID {
	for w := 0; w < 4; w++ {
		word := m[w]
		for word != 0 {
			bit := bits.TrailingZeros64(word)
			dst = append(dst, ComponentID(w*64+bit))
			word &= word - 1
		}
	}
	return dst
}

// ComponentSet is an immutable-by-convention set of component IDs, used for
// declared read/write dependencies and set algebra over archetype signatures.
type ComponentSet struct {
	mask mask256
}

// NewComponentSet builds a set from the given IDs.
func NewComponentSet(ids ...ComponentID) ComponentSet {
	var s ComponentSet
	for _, id := range ids {
		s.mask.set(id)
	}
	return s
}

// Contains reports whether id is in the set.
func (s ComponentSet) Contains(id ComponentID) bool {
	return s.mask.has(id)
}

// Intersects reports whether the two sets share any component.
func (s ComponentSet) Intersects(other ComponentSet) bool {
	return s.mask.intersects(other.mask)
}

// Intersection returns the shared components of both sets in ascending order.
func (s ComponentSet) Intersection(other ComponentSet) []ComponentID {
	return s.mask.and(other.mask).ids(nil)
}

// Union returns a set holding the components of both sets.
func (s ComponentSet) Union(other ComponentSet) ComponentSet {
	return ComponentSet{mask: s.mask.or(other.mask)}
}

// Len returns the number of components in the set.
func (s ComponentSet) Len() int {
	return s.mask.count()
}

// IsEmpty reports whether the set holds no components.
func (s ComponentSet) IsEmpty() bool {
	return s.mask.isZero()
}

// IDs returns the members of the set in ascending order.
func (s ComponentSet) IDs() []ComponentID {
	return s.mask.ids(nil)
}

// ComponentDependencies declares which components a system reads and writes.
// It is consumed only by the scheduler; it never mutates storage.
type ComponentDependencies struct {
	Reads  ComponentSet
	Writes ComponentSet
}

// ConflictsWith reports whether two dependency declarations cannot run
// concurrently: a write on either side overlapping the other side's reads or
// writes is a conflict.
func (d ComponentDependencies) ConflictsWith(other ComponentDependencies) bool {
	if d.Writes.Intersects(other.Reads) || d.Writes.Intersects(other.Writes) {
		return true
	}
	return d.Reads.Intersects(other.Writes)
}

// ConflictingComponents returns the components responsible for a conflict
// between two declarations, in ascending order.
func (d ComponentDependencies) ConflictingComponents(other ComponentDependencies) []ComponentID {
	m := d.Writes.mask.and(other.Reads.mask.or(other.Writes.mask))
	m = m.or(d.Reads.mask.and(other.Writes.mask))
	return m.ids(nil)
}
