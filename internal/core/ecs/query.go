package ecs

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/lattice/pkg/concurrent"
	"github.com/zeusync/lattice/pkg/sequence"
)

// QueryDescriptor is a required/excluded component signature. Descriptors
// are canonical: component sets are sorted and deduplicated at construction
// and the hash is precomputed, so equality is never order-sensitive.
type QueryDescriptor struct {
	with    []ComponentID
	without []ComponentID

	withMask    mask256
	withoutMask mask256
	hash        uint64
}

// NewQueryDescriptor builds a descriptor from required and excluded
// component sets.
func NewQueryDescriptor(with, without []ComponentID) QueryDescriptor {
	d := QueryDescriptor{
		with:    canonical(with),
		without: canonical(without),
	}
	for _, id := range d.with {
		d.withMask.set(id)
	}
	for _, id := range d.without {
		d.withoutMask.set(id)
	}
	h := xxhash.New()
	writeIDs(h, d.with)
	_, _ = h.Write([]byte{0xff, 0xff}) // separator between the two sets
	writeIDs(h, d.without)
	d.hash = h.Sum64()
	return d
}

// QueryWith builds a descriptor requiring the given components.
func QueryWith(ids ...ComponentID) QueryDescriptor {
	return NewQueryDescriptor(ids, nil)
}

// Without returns a descriptor additionally excluding the given components.
func (d QueryDescriptor) Without(ids ...ComponentID) QueryDescriptor {
	return NewQueryDescriptor(d.with, append(d.without, ids...))
}

func canonical(ids []ComponentID) []ComponentID {
	sorted := make([]ComponentID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	out := sorted[:0]
	for i, id := range sorted {
		if i == 0 || out[len(out)-1] != id {
			out = append(out, id)
		}
	}
	return out
}

func writeIDs(h *xxhash.Digest, ids []ComponentID) {
	var buf [2]byte
	for _, id := range ids {
		buf[0] = byte(id)
		buf[1] = byte(id >> 8)
		_, _ = h.Write(buf[:])
	}
}

// Hash returns the precomputed descriptor hash.
func (d QueryDescriptor) Hash() uint64 {
	return d.hash
}

// Matches reports whether the archetype satisfies the descriptor: every
// required component present and no excluded component present.
func (d QueryDescriptor) Matches(a *Archetype) bool {
	return a.mask.containsAll(d.withMask) && !a.mask.intersects(d.withoutMask)
}

// Equal reports whether both descriptors select the same signature. Hash and
// length mismatches short-circuit before element comparison.
func (d QueryDescriptor) Equal(other QueryDescriptor) bool {
	if d.hash != other.hash || len(d.with) != len(other.with) || len(d.without) != len(other.without) {
		return false
	}
	for i := range d.with {
		if d.with[i] != other.with[i] {
			return false
		}
	}
	for i := range d.without {
		if d.without[i] != other.without[i] {
			return false
		}
	}
	return true
}

func (d QueryDescriptor) String() string {
	var b strings.Builder
	b.WriteString("query(with=")
	fmt.Fprintf(&b, "%v", d.with)
	if len(d.without) > 0 {
		fmt.Fprintf(&b, " without=%v", d.without)
	}
	b.WriteByte(')')
	return b.String()
}

// queryCache maps descriptor signatures to their matching archetype lists.
// Entries with colliding hashes share a bucket and are disambiguated with
// full descriptor equality.
//
// The version counter guards against a lost invalidation: a miss scans the
// archetype list outside the cache lock, and an invalidation can land between
// that scan and the store. Stores carry the version observed during the scan
// and are discarded when it no longer matches.
type queryCache struct {
	mu      sync.RWMutex
	entries map[uint64][]cacheEntry
	version atomic.Uint64

	hits   atomic.Uint64
	misses atomic.Uint64
}

type cacheEntry struct {
	desc    QueryDescriptor
	matches []*Archetype
}

func (c *queryCache) lookup(d QueryDescriptor) ([]*Archetype, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.entries[d.hash] {
		if e.desc.Equal(d) {
			return e.matches, true
		}
	}
	return nil, false
}

func (c *queryCache) store(d QueryDescriptor, matches []*Archetype, version uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version.Load() != version {
		return
	}
	if c.entries == nil {
		c.entries = make(map[uint64][]cacheEntry)
	}
	for i, e := range c.entries[d.hash] {
		if e.desc.Equal(d) {
			c.entries[d.hash][i].matches = matches
			return
		}
	}
	c.entries[d.hash] = append(c.entries[d.hash], cacheEntry{desc: d, matches: matches})
}

func (c *queryCache) invalidate(d QueryDescriptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version.Add(1)
	bucket := c.entries[d.hash]
	for i, e := range bucket {
		if e.desc.Equal(d) {
			c.entries[d.hash] = append(bucket[:i], bucket[i+1:]...)
			return
		}
	}
}

func (c *queryCache) invalidateAll() {
	c.mu.Lock()
	c.version.Add(1)
	c.entries = nil
	c.mu.Unlock()
}

func (c *queryCache) stats() QueryCacheStats {
	return QueryCacheStats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

func (c *queryCache) resetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
}

// GetMatchingArchetypes returns every archetype satisfying the descriptor.
// The first request for a descriptor scans all known archetypes once and
// caches the list; identical requests are served from the cache until a new
// archetype invalidates it.
func (w *World) GetMatchingArchetypes(d QueryDescriptor) []*Archetype {
	if matches, ok := w.cache.lookup(d); ok {
		w.cache.hits.Add(1)
		return matches
	}
	w.cache.misses.Add(1)

	// Archetype creation happens under the write lock and bumps the cache
	// version, so the version read here is stable for the whole scan.
	w.mu.RLock()
	version := w.cache.version.Load()
	matches := make([]*Archetype, 0, 8)
	for _, a := range w.archetypes {
		if d.Matches(a) {
			matches = append(matches, a)
		}
	}
	w.mu.RUnlock()

	w.cache.store(d, matches, version)
	return matches
}

// InvalidateQuery evicts one cached descriptor.
func (w *World) InvalidateQuery(d QueryDescriptor) {
	w.cache.invalidate(d)
}

// InvalidateCache clears every cached query result.
func (w *World) InvalidateCache() {
	w.cache.invalidateAll()
}

// QueryCacheStats returns hit/miss counters for the query cache.
func (w *World) QueryCacheStats() QueryCacheStats {
	return w.cache.stats()
}

// ResetQueryCacheStats zeroes the hit/miss counters.
func (w *World) ResetQueryCacheStats() {
	w.cache.resetStats()
}

// Count returns the number of entities matching the descriptor.
func (w *World) Count(d QueryDescriptor) int {
	n := 0
	for _, a := range w.GetMatchingArchetypes(d) {
		n += a.size
	}
	return n
}

// Query returns a restartable iterator over the entities matching the
// descriptor. The caller must not mutate structure while iterating.
func (w *World) Query(d QueryDescriptor) *EntityIterator {
	return newEntityIterator(w.GetMatchingArchetypes(d))
}

// Entities returns the matching entities as a lazy, restartable sequence.
func (w *World) Entities(d QueryDescriptor) *sequence.Iterator[Entity] {
	matches := w.GetMatchingArchetypes(d)
	return sequence.FromSeq(func(yield func(Entity) bool) {
		for _, a := range matches {
			for _, c := range a.chunks {
				for row := 0; row < c.count; row++ {
					if !yield(c.entities[row]) {
						return
					}
				}
			}
		}
	})
}

// ForEach runs fn for every matching entity on the calling goroutine.
func (w *World) ForEach(d QueryDescriptor, fn func(Entity)) {
	for _, a := range w.GetMatchingArchetypes(d) {
		for _, c := range a.chunks {
			for row := 0; row < c.count; row++ {
				fn(c.entities[row])
			}
		}
	}
}

// ForEachParallel partitions the matched chunks across workers and runs fn
// for each entity concurrently. Each worker owns disjoint rows, so fn may
// mutate per-row state but must not perform structural changes; queue those
// on a CommandBuffer instead. Result sets below the configured threshold are
// processed sequentially to skip the dispatch overhead.
func (w *World) ForEachParallel(ctx context.Context, d QueryDescriptor, fn func(Entity) error) error {
	matches := w.GetMatchingArchetypes(d)

	total := 0
	chunks := make([]*Chunk, 0, len(matches))
	for _, a := range matches {
		total += a.size
		chunks = append(chunks, a.chunks...)
	}

	if total < w.cfg.ParallelThreshold {
		for _, c := range chunks {
			for row := 0; row < c.count; row++ {
				if err := fn(c.entities[row]); err != nil {
					return err
				}
			}
		}
		return nil
	}

	workers := w.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, part := range concurrent.Partition(len(chunks), workers) {
		g.Go(func() error {
			for _, c := range chunks[part.Start:part.End] {
				if err := ctx.Err(); err != nil {
					return err
				}
				for row := 0; row < c.count; row++ {
					if err := fn(c.entities[row]); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}
	return g.Wait()
}
