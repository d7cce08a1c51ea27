package ecs

// Chunk is one fixed-capacity columnar block of an archetype: a contiguous
// byte array per component type, a parallel array of entity handles, and an
// occupancy count. Rows [0, count) are occupied.
type Chunk struct {
	entities []Entity
	columns  [][]byte // parallel to the archetype's column order; nil for tags
	count    int
}

// Count returns the number of occupied rows.
func (c *Chunk) Count() int {
	return c.count
}

// EntityAt returns the entity stored at row. The row must be occupied.
func (c *Chunk) EntityAt(row int) Entity {
	return c.entities[row]
}

// cell returns the byte span of one component instance inside a column.
func (c *Chunk) cell(col, row, size int) []byte {
	if size == 0 {
		return nil
	}
	off := row * size
	return c.columns[col][off : off+size]
}

// acquireChunk pops a pooled chunk for the archetype or builds a fresh one,
// renting its columns from the array pool.
func (w *World) acquireChunk(a *Archetype) *Chunk {
	w.chunkStats.rented.Add(1)
	if n := len(a.pooled); n > 0 {
		c := a.pooled[n-1]
		a.pooled[n-1] = nil
		a.pooled = a.pooled[:n-1]
		w.chunkStats.pooled.Add(-1)
		return c
	}
	w.chunkStats.created.Add(1)
	c := &Chunk{
		entities: make([]Entity, a.capacity),
		columns:  make([][]byte, len(a.sizes)),
	}
	for col, size := range a.sizes {
		if size > 0 {
			c.columns[col] = w.arrays.Rent(a.capacity * size)
		}
	}
	return c
}

// releaseChunk returns an empty chunk to the archetype's pool, or discards
// it (handing the columns back to the array pool) once the pool is full.
func (w *World) releaseChunk(a *Archetype, c *Chunk) {
	c.count = 0
	w.chunkStats.returned.Add(1)
	if len(a.pooled) < w.cfg.MaxPooledChunksPerArchetype {
		a.pooled = append(a.pooled, c)
		w.chunkStats.pooled.Add(1)
		return
	}
	w.chunkStats.discarded.Add(1)
	for col, buf := range c.columns {
		if buf != nil {
			w.arrays.Return(buf)
			c.columns[col] = nil
		}
	}
}
