package ecs

import "sync/atomic"

// ArrayPoolStats is a snapshot of an ArrayPool's counters.
type ArrayPoolStats struct {
	Rented      int64 // arrays handed out
	Returned    int64 // arrays given back
	Outstanding int64 // arrays currently in use
	Misses      int64 // rents that had to allocate fresh
}

// ChunkPoolStats aggregates chunk reuse counters across all archetypes of a
// World.
type ChunkPoolStats struct {
	rented    atomic.Int64
	returned  atomic.Int64
	created   atomic.Int64
	discarded atomic.Int64
	pooled    atomic.Int64
}

// Snapshot returns a consistent-enough copy of the counters for reporting.
func (s *ChunkPoolStats) Snapshot() ChunkPoolSnapshot {
	return ChunkPoolSnapshot{
		Rented:    s.rented.Load(),
		Returned:  s.returned.Load(),
		Created:   s.created.Load(),
		Discarded: s.discarded.Load(),
		Pooled:    s.pooled.Load(),
	}
}

// ChunkPoolSnapshot is a point-in-time view of chunk pooling activity.
type ChunkPoolSnapshot struct {
	Rented    int64
	Returned  int64
	Created   int64
	Discarded int64
	Pooled    int64
}

// HitRate is the fraction of rents served without creating a chunk,
// 1 - created/rented. Zero when nothing has been rented.
func (s ChunkPoolSnapshot) HitRate() float64 {
	if s.Rented == 0 {
		return 0
	}
	return 1 - float64(s.Created)/float64(s.Rented)
}

// QueryCacheStats is a snapshot of query cache effectiveness.
type QueryCacheStats struct {
	Hits   uint64
	Misses uint64
}

// HitRate is hits / (hits + misses), zero when nothing was recorded.
func (s QueryCacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// WorldStats bundles the observable state of a World for diagnostics.
type WorldStats struct {
	Entities   int
	Archetypes int
	Components int
	ArrayPool  ArrayPoolStats
	ChunkPool  ChunkPoolSnapshot
	QueryCache QueryCacheStats
}
