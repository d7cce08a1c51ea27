package ecs

import "fmt"

// Structural transition engine: moving an entity's row between archetypes
// when components are added or removed. A failed transition must leave the
// entity in its pre-call archetype, so every validation happens before the
// first byte moves.

// Add attaches a component to an alive entity. The value is the raw bytes of
// one instance (nil for tags). It fails with ErrDeadEntity,
// ErrUnregisteredComponent, ErrDuplicateComponent or ErrSizeMismatch, all
// before any mutation.
func (w *World) Add(e Entity, id ComponentID, data []byte) error {
	w.mu.Lock()
	pending, err := w.addLocked(e, id, data)
	w.mu.Unlock()

	for _, ev := range pending {
		w.publish(ev)
	}
	return err
}

func (w *World) addLocked(e Entity, id ComponentID, data []byte) ([]StructuralEvent, error) {
	if !w.allocator.IsValid(e) {
		return nil, fmt.Errorf("add component %d: entity %d:%d: %w", id, e.Index, e.Generation, ErrDeadEntity)
	}
	info, ok := w.registry.Info(id)
	if !ok {
		return nil, fmt.Errorf("add component %d: %w", id, ErrUnregisteredComponent)
	}
	loc := w.locations[e.Index]
	src := loc.arch
	if src.mask.has(id) {
		return nil, fmt.Errorf("add component %q to entity %d:%d: %w", info.Name, e.Index, e.Generation, ErrDuplicateComponent)
	}
	if len(data) != info.Size {
		return nil, fmt.Errorf("add component %q: have %d bytes, want %d: %w",
			info.Name, len(data), info.Size, ErrSizeMismatch)
	}

	dst, created, err := w.getOrCreateArchetypeLocked(src.id.With(id))
	if err != nil {
		return nil, err
	}

	newLoc := w.moveRow(e, loc, dst)
	if info.Size > 0 {
		col := dst.slot(id)
		copy(dst.chunks[newLoc.chunk].cell(col, newLoc.row, info.Size), data)
	}

	var pending []StructuralEvent
	if created {
		pending = append(pending, StructuralEvent{Kind: EventArchetypeCreated, Entity: Null, Archetype: dst.id})
	}
	pending = append(pending, StructuralEvent{Kind: EventComponentAdded, Entity: e, Component: id, Archetype: dst.id})
	return pending, nil
}

// Remove detaches a component from an entity via the symmetric transition.
// Removing from a dead entity, an unregistered component, or a component the
// entity lacks is a no-op returning false.
func (w *World) Remove(e Entity, id ComponentID) bool {
	w.mu.Lock()
	pending, ok := w.removeLocked(e, id)
	w.mu.Unlock()

	for _, ev := range pending {
		w.publish(ev)
	}
	return ok
}

func (w *World) removeLocked(e Entity, id ComponentID) ([]StructuralEvent, bool) {
	if !w.allocator.IsValid(e) {
		return nil, false
	}
	if _, ok := w.registry.Info(id); !ok {
		return nil, false
	}
	loc := w.locations[e.Index]
	src := loc.arch
	if !src.mask.has(id) {
		return nil, false
	}

	dst, created, err := w.getOrCreateArchetypeLocked(src.id.Without(id))
	if err != nil {
		// Unreachable in practice: the destination signature is a subset of
		// an existing archetype's registered components.
		return nil, false
	}

	w.moveRow(e, loc, dst)

	var pending []StructuralEvent
	if created {
		pending = append(pending, StructuralEvent{Kind: EventArchetypeCreated, Entity: Null, Archetype: dst.id})
	}
	pending = append(pending, StructuralEvent{Kind: EventComponentRemoved, Entity: e, Component: id, Archetype: dst.id})
	return pending, true
}

// moveRow copies every component value the source and destination share into
// a fresh destination row, erases the source row via swap-back, and updates
// the entity's location. Returns the new location.
func (w *World) moveRow(e Entity, loc location, dst *Archetype) location {
	src := loc.arch
	newLoc := w.pushRow(dst, e)
	srcChunk := src.chunks[loc.chunk]
	dstChunk := dst.chunks[newLoc.chunk]

	for col, cid := range src.id.ids {
		size := src.sizes[col]
		if size == 0 {
			continue
		}
		dcol := dst.slot(cid)
		if dcol < 0 {
			continue // the component being removed
		}
		copy(dstChunk.cell(dcol, newLoc.row, size), srcChunk.cell(col, loc.row, size))
	}

	w.eraseRow(loc)
	w.locations[e.Index] = newLoc
	return newLoc
}

// pushRow appends the entity to the archetype's last chunk, acquiring a new
// chunk when the last one is full.
func (w *World) pushRow(a *Archetype, e Entity) location {
	if len(a.chunks) == 0 || a.chunks[len(a.chunks)-1].count == a.capacity {
		a.chunks = append(a.chunks, w.acquireChunk(a))
	}
	chunkIdx := len(a.chunks) - 1
	c := a.chunks[chunkIdx]
	row := c.count
	c.entities[row] = e
	c.count++
	a.size++
	return location{arch: a, chunk: chunkIdx, row: row}
}

// eraseRow removes one occupied row. The chunk's last row is swapped into
// the gap, so exactly one other entity's location changes; an emptied chunk
// is swapped to the end of the chunk list and released to the pool.
func (w *World) eraseRow(loc location) {
	a := loc.arch
	c := a.chunks[loc.chunk]
	last := c.count - 1

	if loc.row < last {
		moved := c.entities[last]
		c.entities[loc.row] = moved
		for col, size := range a.sizes {
			if size == 0 {
				continue
			}
			copy(c.cell(col, loc.row, size), c.cell(col, last, size))
		}
		w.locations[moved.Index].row = loc.row
	}
	c.count--
	a.size--

	if c.count == 0 {
		lastChunk := len(a.chunks) - 1
		if loc.chunk < lastChunk {
			swapped := a.chunks[lastChunk]
			a.chunks[loc.chunk] = swapped
			for i := 0; i < swapped.count; i++ {
				w.locations[swapped.entities[i].Index].chunk = loc.chunk
			}
		}
		a.chunks = a.chunks[:lastChunk]
		w.releaseChunk(a, c)
	}
}
