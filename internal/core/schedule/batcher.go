package schedule

import (
	"github.com/zeusync/lattice/internal/core/ecs"
	"github.com/zeusync/lattice/internal/core/observability/log"
)

// Batch is an ordered list of systems proven to have no conflicting
// component access, eligible to run concurrently. Member order equals
// first-insertion order and is never rearranged.
type Batch struct {
	members []resolved

	// accumulated read/write sets of the declared members
	reads  ecs.ComponentSet
	writes ecs.ComponentSet
}

// Systems returns the batch members in insertion order.
func (b *Batch) Systems() []System {
	out := make([]System, len(b.members))
	for i, m := range b.members {
		out[i] = m.sys
	}
	return out
}

// Len returns the number of systems in the batch.
func (b *Batch) Len() int {
	return len(b.members)
}

// conflictsWith reports whether adding deps to this batch would let a write
// overlap any member's read or write.
func (b *Batch) conflictsWith(deps ecs.ComponentDependencies) bool {
	batchDeps := ecs.ComponentDependencies{Reads: b.reads, Writes: b.writes}
	return deps.ConflictsWith(batchDeps)
}

func (b *Batch) add(r resolved) {
	b.members = append(b.members, r)
	if r.declared {
		b.reads = b.reads.Union(r.deps.Reads)
		b.writes = b.writes.Union(r.deps.Writes)
	}
}

// Batcher groups systems into conflict-free batches with a greedy single
// pass. The algorithm is intentionally not globally optimal: it favors
// predictable, input-order-stable scheduling over minimal batch count.
type Batcher struct {
	log log.Log
}

// NewBatcher creates a batcher. A nil logger falls back to a no-op logger.
func NewBatcher(logger log.Log) *Batcher {
	if logger == nil {
		logger = log.Nop()
	}
	return &Batcher{log: logger}
}

// CreateBatches walks the systems in input order. Each system's dependency
// declaration is resolved once; open batches are scanned from most recently
// created backward and the system joins the first batch it does not conflict
// with, or opens a new one. Systems without a declaration never conflict.
// The batcher itself never errors.
func (b *Batcher) CreateBatches(systems []System) []*Batch {
	batches := make([]*Batch, 0, len(systems))

	for _, sys := range systems {
		r := resolve(sys)
		placed := false
		for i := len(batches) - 1; i >= 0; i-- {
			if r.declared && batches[i].conflictsWith(r.deps) {
				continue
			}
			batches[i].add(r)
			placed = true
			break
		}
		if !placed {
			batch := &Batch{}
			batch.add(r)
			batches = append(batches, batch)
		}
	}

	b.log.Debug("batches created",
		log.Int("systems", len(systems)),
		log.Int("batches", len(batches)))
	return batches
}

// Conflict records one pair of systems that cannot share a batch, with the
// components responsible.
type Conflict struct {
	A          string
	B          string
	Components []ecs.ComponentID
}

// Analysis summarizes a system list's scheduling shape.
type Analysis struct {
	BatchCount     int
	Conflicts      []Conflict
	MaxParallelism int
}

// Analyze reports the batch count, every pairwise conflict with the
// offending component set, and the size of the largest batch. An empty
// input yields the zero Analysis.
func (b *Batcher) Analyze(systems []System) Analysis {
	if len(systems) == 0 {
		return Analysis{}
	}

	res := make([]resolved, len(systems))
	for i, sys := range systems {
		res[i] = resolve(sys)
	}

	var conflicts []Conflict
	for i := 0; i < len(res); i++ {
		if !res[i].declared {
			continue
		}
		for j := i + 1; j < len(res); j++ {
			if !res[j].declared {
				continue
			}
			if res[i].deps.ConflictsWith(res[j].deps) {
				conflicts = append(conflicts, Conflict{
					A:          res[i].sys.Name(),
					B:          res[j].sys.Name(),
					Components: res[i].deps.ConflictingComponents(res[j].deps),
				})
			}
		}
	}

	batches := b.CreateBatches(systems)
	maxParallelism := 0
	for _, batch := range batches {
		if batch.Len() > maxParallelism {
			maxParallelism = batch.Len()
		}
	}

	return Analysis{
		BatchCount:     len(batches),
		Conflicts:      conflicts,
		MaxParallelism: maxParallelism,
	}
}
