package ecs

import (
	"math/bits"
	"sync"
	"sync/atomic"

	"github.com/zeusync/lattice/pkg/generic"
)

// ArrayPool recycles the byte arrays backing chunk columns, bucketed by
// power-of-two capacity. Structural transitions create and destroy columns
// at high frequency; pooling bounds the allocation churn. Arrays larger than
// the configured threshold bypass the pool entirely, since holding oversized
// buffers wastes memory.
//
// The pool is safe for concurrent Rent/Return.
type ArrayPool struct {
	maxPooled int

	mu      sync.RWMutex
	buckets map[int]*generic.Pool[[]byte]

	rented   atomic.Int64
	returned atomic.Int64
	misses   atomic.Int64
}

// NewArrayPool creates a pool that recycles arrays up to maxPooledBytes in
// capacity. A non-positive threshold disables pooling.
func NewArrayPool(maxPooledBytes int) *ArrayPool {
	return &ArrayPool{
		maxPooled: maxPooledBytes,
		buckets:   make(map[int]*generic.Pool[[]byte]),
	}
}

// Rent returns a zeroed array of at least capacity bytes, reusing a pooled
// one when available. The result's length equals capacity.
func (p *ArrayPool) Rent(capacity int) []byte {
	if capacity <= 0 {
		return nil
	}
	p.rented.Add(1)
	bucket := ceilPow2(capacity)
	if bucket > p.maxPooled {
		p.misses.Add(1)
		return make([]byte, capacity)
	}
	return p.bucket(bucket).Get()[:capacity]
}

// Return clears the array and recycles it. Arrays above the pooled-size
// threshold, and arrays not allocated in a pool bucket, are dropped for the
// garbage collector instead.
func (p *ArrayPool) Return(buf []byte) {
	if buf == nil {
		return
	}
	p.returned.Add(1)
	c := cap(buf)
	if c > p.maxPooled || c&(c-1) != 0 {
		return
	}
	buf = buf[:c]
	clear(buf)
	p.bucket(c).Put(buf)
}

// Stats returns a snapshot of the rent/return counters.
func (p *ArrayPool) Stats() ArrayPoolStats {
	rented := p.rented.Load()
	returned := p.returned.Load()
	return ArrayPoolStats{
		Rented:      rented,
		Returned:    returned,
		Outstanding: rented - returned,
		Misses:      p.misses.Load(),
	}
}

func (p *ArrayPool) bucket(size int) *generic.Pool[[]byte] {
	p.mu.RLock()
	b, ok := p.buckets[size]
	p.mu.RUnlock()
	if ok {
		return b
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if b, ok = p.buckets[size]; ok {
		return b
	}
	b = generic.NewPool(func() []byte {
		p.misses.Add(1)
		return make([]byte, size)
	})
	p.buckets[size] = b
	return b
}

// ceilPow2 rounds n up to the next power of two.
func ceilPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
