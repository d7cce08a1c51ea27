package schedule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/lattice/internal/core/ecs"
)

func noopSystem(name string) *SystemFunc {
	return NewSystem(name, func(context.Context, *ecs.World) error { return nil })
}

func batchNames(b *Batch) []string {
	names := make([]string, 0, b.Len())
	for _, s := range b.Systems() {
		names = append(names, s.Name())
	}
	return names
}

func TestCreateBatchesGroupsNonConflicting(t *testing.T) {
	a := noopSystem("a").WithDependencies(ecs.ComponentSet{}, ecs.NewComponentSet(1))
	b := noopSystem("b").WithDependencies(ecs.NewComponentSet(2), ecs.ComponentSet{})
	c := noopSystem("c").WithDependencies(ecs.NewComponentSet(1), ecs.ComponentSet{})

	batches := NewBatcher(nil).CreateBatches([]System{a, b, c})

	// a writes 1, b reads 2: compatible. c reads 1, conflicting with a.
	require.Len(t, batches, 2)
	assert.Equal(t, []string{"a", "b"}, batchNames(batches[0]))
	assert.Equal(t, []string{"c"}, batchNames(batches[1]))
}

func TestCreateBatchesIsDeterministic(t *testing.T) {
	build := func() []System {
		return []System{
			noopSystem("a").WithDependencies(ecs.ComponentSet{}, ecs.NewComponentSet(1)),
			noopSystem("b").WithDependencies(ecs.NewComponentSet(2), ecs.ComponentSet{}),
			noopSystem("c").WithDependencies(ecs.NewComponentSet(1), ecs.ComponentSet{}),
		}
	}

	batcher := NewBatcher(nil)
	first := batcher.CreateBatches(build())
	for i := 0; i < 10; i++ {
		again := batcher.CreateBatches(build())
		require.Len(t, again, len(first))
		for j := range first {
			assert.Equal(t, batchNames(first[j]), batchNames(again[j]))
		}
	}
}

func TestCreateBatchesWriteWriteConflict(t *testing.T) {
	a := noopSystem("a").WithDependencies(ecs.ComponentSet{}, ecs.NewComponentSet(5))
	b := noopSystem("b").WithDependencies(ecs.ComponentSet{}, ecs.NewComponentSet(5))

	batches := NewBatcher(nil).CreateBatches([]System{a, b})
	require.Len(t, batches, 2)
}

func TestCreateBatchesDisjointReadsShareBatch(t *testing.T) {
	a := noopSystem("a").WithDependencies(ecs.NewComponentSet(1), ecs.ComponentSet{})
	b := noopSystem("b").WithDependencies(ecs.NewComponentSet(1), ecs.ComponentSet{})
	c := noopSystem("c").WithDependencies(ecs.NewComponentSet(2, 3), ecs.ComponentSet{})

	batches := NewBatcher(nil).CreateBatches([]System{a, b, c})
	require.Len(t, batches, 1)
	assert.Equal(t, 3, batches[0].Len())
}

func TestCreateBatchesUndeclaredNeverConflicts(t *testing.T) {
	writer := noopSystem("writer").WithDependencies(ecs.ComponentSet{}, ecs.NewComponentSet(1))
	mystery := noopSystem("mystery") // no declaration
	reader := noopSystem("reader").WithDependencies(ecs.NewComponentSet(1), ecs.ComponentSet{})

	batches := NewBatcher(nil).CreateBatches([]System{writer, mystery, reader})

	// The undeclared system rides along with the writer; only the declared
	// read/write overlap forces a second batch.
	require.Len(t, batches, 2)
	assert.Equal(t, []string{"writer", "mystery"}, batchNames(batches[0]))
	assert.Equal(t, []string{"reader"}, batchNames(batches[1]))
}

func TestCreateBatchesBackfillsOlderBatch(t *testing.T) {
	a := noopSystem("a").WithDependencies(ecs.ComponentSet{}, ecs.NewComponentSet(1))
	b := noopSystem("b").WithDependencies(ecs.NewComponentSet(1), ecs.NewComponentSet(2))
	c := noopSystem("c").WithDependencies(ecs.NewComponentSet(2), ecs.ComponentSet{})

	batches := NewBatcher(nil).CreateBatches([]System{a, b, c})

	// c conflicts with b (reads 2, which b writes) but not with a, so it
	// lands in the first batch instead of opening a third.
	require.Len(t, batches, 2)
	assert.Equal(t, []string{"a", "c"}, batchNames(batches[0]))
	assert.Equal(t, []string{"b"}, batchNames(batches[1]))
}

func TestCreateBatchesEmpty(t *testing.T) {
	assert.Empty(t, NewBatcher(nil).CreateBatches(nil))
}

func TestAnalyze(t *testing.T) {
	a := noopSystem("a").WithDependencies(ecs.ComponentSet{}, ecs.NewComponentSet(1))
	b := noopSystem("b").WithDependencies(ecs.NewComponentSet(2), ecs.ComponentSet{})
	c := noopSystem("c").WithDependencies(ecs.NewComponentSet(1), ecs.ComponentSet{})

	analysis := NewBatcher(nil).Analyze([]System{a, b, c})

	assert.Equal(t, 2, analysis.BatchCount)
	assert.Equal(t, 2, analysis.MaxParallelism)
	require.Len(t, analysis.Conflicts, 1)
	assert.Equal(t, "a", analysis.Conflicts[0].A)
	assert.Equal(t, "c", analysis.Conflicts[0].B)
	assert.Equal(t, []ecs.ComponentID{1}, analysis.Conflicts[0].Components)
}

func TestAnalyzeEmpty(t *testing.T) {
	analysis := NewBatcher(nil).Analyze(nil)
	assert.Zero(t, analysis.BatchCount)
	assert.Zero(t, analysis.MaxParallelism)
	assert.Empty(t, analysis.Conflicts)
}

func TestAnalyzeIgnoresUndeclaredPairs(t *testing.T) {
	a := noopSystem("a")
	b := noopSystem("b").WithDependencies(ecs.ComponentSet{}, ecs.NewComponentSet(1))

	analysis := NewBatcher(nil).Analyze([]System{a, b})
	assert.Empty(t, analysis.Conflicts)
	assert.Equal(t, 1, analysis.BatchCount)
}
