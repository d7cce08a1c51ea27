package ecs

// EntityIterator walks the entities of a fixed archetype list: archetype by
// archetype, chunk by chunk, row by row. It is lazy and restartable. Current
// returns Null before the first Next and after exhaustion rather than
// failing. Structural mutations must not run while an iterator is in use.
type EntityIterator struct {
	archetypes []*Archetype

	archIdx  int
	chunkIdx int
	row      int
	current  Entity
}

func newEntityIterator(archetypes []*Archetype) *EntityIterator {
	it := &EntityIterator{archetypes: archetypes}
	it.Reset()
	return it
}

// Next advances to the next occupied row. It returns false once the
// archetype list is exhausted.
func (it *EntityIterator) Next() bool {
	it.row++
	for it.archIdx < len(it.archetypes) {
		a := it.archetypes[it.archIdx]
		if it.chunkIdx < len(a.chunks) {
			c := a.chunks[it.chunkIdx]
			if it.row < c.count {
				it.current = c.entities[it.row]
				return true
			}
			it.chunkIdx++
			it.row = 0
			continue
		}
		it.archIdx++
		it.chunkIdx = 0
		it.row = 0
	}
	it.current = Null
	return false
}

// Current returns the entity at the iterator's position, or Null when the
// iterator is unstarted, empty or exhausted.
func (it *EntityIterator) Current() Entity {
	return it.current
}

// Reset restarts iteration from the first archetype.
func (it *EntityIterator) Reset() {
	it.archIdx = 0
	it.chunkIdx = 0
	it.row = -1
	it.current = Null
}
