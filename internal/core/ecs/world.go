// Package ecs implements an in-memory, structurally-typed object store:
// generational entity handles carrying typed components, stored in archetype
// chunks for cache-friendly bulk iteration.
//
// Structural mutations (spawn, despawn, add/remove component) are serialized
// internally, but must not run concurrently with iteration over the same
// archetype; callers queue structural changes (see CommandBuffer) instead of
// executing them inline during a parallel pass.
package ecs

import (
	"fmt"
	"time"

	"sync"

	"github.com/google/uuid"

	"github.com/zeusync/lattice/internal/core/events"
	"github.com/zeusync/lattice/internal/core/observability/log"
)

// location is the storage coordinate of one alive entity, kept in a side
// table indexed by entity index. It is the single source of truth the
// transition engine maintains.
type location struct {
	arch  *Archetype
	chunk int
	row   int
}

// World is the storage facade: entity allocator, component registry,
// archetype index, pools and query cache behind one mutex.
type World struct {
	mu sync.RWMutex

	id  uuid.UUID
	log log.Log
	cfg Config

	registry  *Registry
	allocator *Allocator
	locations []location

	archetypes []*Archetype
	index      map[uint64][]*Archetype
	empty      *Archetype

	arrays     *ArrayPool
	chunkStats ChunkPoolStats
	cache      queryCache

	bus *events.Bus[StructuralEvent]
}

// Option configures a World at construction time.
type Option func(*World)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l log.Log) Option {
	return func(w *World) { w.log = l }
}

// WithArrayPool shares an explicit array pool with the World, so multiple
// stores in one process can pool buffers together when that is intended.
func WithArrayPool(p *ArrayPool) Option {
	return func(w *World) { w.arrays = p }
}

// WithEventBus attaches a bus the World publishes structural events to.
func WithEventBus(b *events.Bus[StructuralEvent]) Option {
	return func(w *World) { w.bus = b }
}

// NewWorld creates an empty store with its own registry and pools unless
// options say otherwise.
func NewWorld(cfg Config, opts ...Option) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new world: %w", err)
	}
	w := &World{
		id:        uuid.New(),
		cfg:       cfg,
		registry:  NewRegistry(),
		allocator: NewAllocator(cfg.InitialEntityCapacity),
		locations: make([]location, 0, cfg.InitialEntityCapacity),
		index:     make(map[uint64][]*Archetype),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.log == nil {
		w.log = log.Nop()
	}
	if w.arrays == nil {
		w.arrays = NewArrayPool(cfg.MaxPooledArrayBytes)
	}
	w.log = w.log.With(log.String("world", w.id.String()))

	empty, _, err := w.getOrCreateArchetypeLocked(NewArchetypeID())
	if err != nil {
		return nil, err
	}
	w.empty = empty
	return w, nil
}

// ID returns the unique id of this store instance.
func (w *World) ID() uuid.UUID {
	return w.id
}

// Registry returns the component registry owned by the World.
func (w *World) Registry() *Registry {
	return w.registry
}

// Spawn creates a new entity in the empty archetype.
func (w *World) Spawn() Entity {
	w.mu.Lock()
	e := w.spawnLocked()
	w.mu.Unlock()

	w.publish(StructuralEvent{Kind: EventEntitySpawned, Entity: e, Archetype: w.empty.id})
	return e
}

// SpawnN creates n entities at once, filling chunks contiguously.
func (w *World) SpawnN(n int) []Entity {
	if n <= 0 {
		return nil
	}
	out := make([]Entity, n)

	w.mu.Lock()
	for i := range out {
		out[i] = w.spawnLocked()
	}
	w.mu.Unlock()

	for _, e := range out {
		w.publish(StructuralEvent{Kind: EventEntitySpawned, Entity: e, Archetype: w.empty.id})
	}
	return out
}

func (w *World) spawnLocked() Entity {
	e := w.allocator.Acquire()
	for int(e.Index) >= len(w.locations) {
		w.locations = append(w.locations, location{})
	}
	w.locations[e.Index] = w.pushRow(w.empty, e)
	return e
}

// Despawn releases the entity and removes its row via swap-back. Despawning
// a dead or stale handle is a no-op returning false.
func (w *World) Despawn(e Entity) bool {
	w.mu.Lock()
	if !w.allocator.IsValid(e) {
		w.mu.Unlock()
		return false
	}
	loc := w.locations[e.Index]
	w.eraseRow(loc)
	w.locations[e.Index] = location{}
	w.allocator.Release(e)
	w.mu.Unlock()

	w.publish(StructuralEvent{Kind: EventEntityDespawned, Entity: e, Archetype: loc.arch.id})
	return true
}

// IsAlive reports whether the handle refers to a live entity.
func (w *World) IsAlive(e Entity) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.allocator.IsValid(e)
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.allocator.Alive()
}

// Has reports whether the entity is alive and its archetype includes the
// component. It never errors: dead entities, unregistered components and
// missing components all report false.
func (w *World) Has(e Entity, id ComponentID) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.allocator.IsValid(e) || int(id) >= w.registry.Count() {
		return false
	}
	return w.locations[e.Index].arch.mask.has(id)
}

// Get returns a boxed copy of the entity's component value.
func (w *World) Get(e Entity, id ComponentID) (Boxed, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	cell, err := w.cellLocked(e, id)
	if err != nil {
		return Boxed{}, err
	}
	if cell == nil {
		return Boxed{ID: id}, nil
	}
	data := make([]byte, len(cell))
	copy(data, cell)
	return Boxed{ID: id, Data: data}, nil
}

// Set overwrites the entity's existing component value. The entity must be
// alive and already carry the component.
func (w *World) Set(e Entity, id ComponentID, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	cell, err := w.cellLocked(e, id)
	if err != nil {
		return err
	}
	if len(data) != len(cell) {
		return fmt.Errorf("set component %d: have %d bytes, want %d: %w",
			id, len(data), len(cell), ErrSizeMismatch)
	}
	copy(cell, data)
	return nil
}

// cellLocked resolves the entity's storage cell for one component, applying
// the full error taxonomy. Returns nil for tag components.
func (w *World) cellLocked(e Entity, id ComponentID) ([]byte, error) {
	if !w.allocator.IsValid(e) {
		return nil, fmt.Errorf("entity %d:%d: %w", e.Index, e.Generation, ErrDeadEntity)
	}
	info, ok := w.registry.Info(id)
	if !ok {
		return nil, fmt.Errorf("component %d: %w", id, ErrUnregisteredComponent)
	}
	loc := w.locations[e.Index]
	col := loc.arch.slot(id)
	if col < 0 {
		return nil, fmt.Errorf("entity %d:%d, component %q: %w", e.Index, e.Generation, info.Name, ErrMissingComponent)
	}
	if info.Tag {
		return nil, nil
	}
	return loc.arch.chunks[loc.chunk].cell(col, loc.row, info.Size), nil
}

// GetComponents returns boxed copies of every component the entity carries,
// in the archetype's canonical order.
func (w *World) GetComponents(e Entity) ([]Boxed, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if !w.allocator.IsValid(e) {
		return nil, fmt.Errorf("entity %d:%d: %w", e.Index, e.Generation, ErrDeadEntity)
	}
	loc := w.locations[e.Index]
	a := loc.arch
	out := make([]Boxed, 0, a.id.Len())
	for col, cid := range a.id.ids {
		size := a.sizes[col]
		b := Boxed{ID: cid}
		if size > 0 {
			b.Data = make([]byte, size)
			copy(b.Data, a.chunks[loc.chunk].cell(col, loc.row, size))
		}
		out = append(out, b)
	}
	return out, nil
}

// GetAllEntities returns every live entity, grouped by archetype.
func (w *World) GetAllEntities() []Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]Entity, 0, w.allocator.Alive())
	for _, a := range w.archetypes {
		for _, c := range a.chunks {
			out = append(out, c.entities[:c.count]...)
		}
	}
	return out
}

// GetRegisteredComponents returns the metadata of every registered
// component type.
func (w *World) GetRegisteredComponents() []ComponentInfo {
	return w.registry.All()
}

// ArchetypeCount returns the number of distinct archetypes created so far.
func (w *World) ArchetypeCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.archetypes)
}

// ArrayPool returns the pool backing this World's chunk columns.
func (w *World) ArrayPool() *ArrayPool {
	return w.arrays
}

// ChunkPoolStats returns a snapshot of chunk reuse counters.
func (w *World) ChunkPoolStats() ChunkPoolSnapshot {
	return w.chunkStats.Snapshot()
}

// Stats returns a combined diagnostic snapshot.
func (w *World) Stats() WorldStats {
	w.mu.RLock()
	entities := w.allocator.Alive()
	archetypes := len(w.archetypes)
	w.mu.RUnlock()

	return WorldStats{
		Entities:   entities,
		Archetypes: archetypes,
		Components: w.registry.Count(),
		ArrayPool:  w.arrays.Stats(),
		ChunkPool:  w.chunkStats.Snapshot(),
		QueryCache: w.cache.stats(),
	}
}

// getOrCreateArchetypeLocked resolves the archetype for a signature,
// creating and indexing it on first use. Creation invalidates the whole
// query cache: a previously empty match set might now have members. The
// returned bool reports whether a new archetype was created.
func (w *World) getOrCreateArchetypeLocked(id ArchetypeID) (*Archetype, bool, error) {
	h := id.Hash()
	for _, a := range w.index[h] {
		if a.id.Equal(id) {
			return a, false, nil
		}
	}
	a, err := newArchetype(id, w.registry, w.cfg.ChunkCapacity, len(w.archetypes))
	if err != nil {
		return nil, false, err
	}
	w.archetypes = append(w.archetypes, a)
	w.index[h] = append(w.index[h], a)
	w.cache.invalidateAll()
	w.log.Debug("archetype created",
		log.String("signature", id.String()),
		log.Int("archetypes", len(w.archetypes)))
	return a, true, nil
}

// GetOrCreateArchetype resolves or creates the archetype for a component
// set. Exposed for collaborators that pre-warm storage.
func (w *World) GetOrCreateArchetype(ids ...ComponentID) (*Archetype, error) {
	aid := NewArchetypeID(ids...)

	w.mu.Lock()
	a, created, err := w.getOrCreateArchetypeLocked(aid)
	w.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if created {
		w.publish(StructuralEvent{Kind: EventArchetypeCreated, Entity: Null, Archetype: a.id})
	}
	return a, nil
}

func (w *World) publish(ev StructuralEvent) {
	if w.bus == nil {
		return
	}
	ev.Time = time.Now()
	w.bus.Publish(ev)
}
