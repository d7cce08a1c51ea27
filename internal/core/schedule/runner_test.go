package schedule

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/lattice/internal/core/ecs"
)

func newRunnerWorld(t *testing.T) *ecs.World {
	t.Helper()
	w, err := ecs.NewWorld(ecs.DefaultConfig())
	require.NoError(t, err)
	return w
}

func TestRunnerRunsBatchesInSequence(t *testing.T) {
	w := newRunnerWorld(t)

	var mu sync.Mutex
	var order []string
	record := func(name string) *SystemFunc {
		return NewSystem(name, func(context.Context, *ecs.World) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		})
	}

	// Force three single-system batches via mutual write conflicts.
	set := ecs.NewComponentSet(1)
	systems := []System{
		record("first").WithDependencies(ecs.ComponentSet{}, set),
		record("second").WithDependencies(ecs.ComponentSet{}, set),
		record("third").WithDependencies(ecs.ComponentSet{}, set),
	}
	batches := NewBatcher(nil).CreateBatches(systems)
	require.Len(t, batches, 3)

	require.NoError(t, NewRunner(nil).Run(context.Background(), w, batches))
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestRunnerRunsBatchMembersConcurrently(t *testing.T) {
	w := newRunnerWorld(t)

	// Each member blocks until every member has started; the batch can only
	// finish if they truly overlap.
	const n = 4
	var wg sync.WaitGroup
	wg.Add(n)
	systems := make([]System, n)
	for i := range systems {
		systems[i] = NewSystem("s", func(context.Context, *ecs.World) error {
			wg.Done()
			wg.Wait()
			return nil
		})
	}

	batches := NewBatcher(nil).CreateBatches(systems)
	require.Len(t, batches, 1)
	require.NoError(t, NewRunner(nil).Run(context.Background(), w, batches))
}

func TestRunnerPropagatesSystemError(t *testing.T) {
	w := newRunnerWorld(t)

	boom := errors.New("boom")
	var ranLater atomic.Bool

	set := ecs.NewComponentSet(1)
	failing := NewSystem("failing", func(context.Context, *ecs.World) error {
		return boom
	}).WithDependencies(ecs.ComponentSet{}, set)
	later := NewSystem("later", func(context.Context, *ecs.World) error {
		ranLater.Store(true)
		return nil
	}).WithDependencies(ecs.ComponentSet{}, set)

	batches := NewBatcher(nil).CreateBatches([]System{failing, later})
	require.Len(t, batches, 2)

	err := NewRunner(nil).Run(context.Background(), w, batches)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "system failing")
	assert.Contains(t, err.Error(), "batch 0")
	assert.False(t, ranLater.Load(), "later batches must not run after a failure")
}

func TestRunnerEmptyBatches(t *testing.T) {
	w := newRunnerWorld(t)
	assert.NoError(t, NewRunner(nil).Run(context.Background(), w, nil))
}
