package ecs

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandBufferFlushAppliesInOrder(t *testing.T) {
	w := newTestWorld(t)
	posID := MustRegisterComponent[testPos](w.Registry())

	e := w.Spawn()

	buf := NewCommandBuffer()
	first, err := Box(w.Registry(), testPos{X: 1})
	require.NoError(t, err)
	second, err := Box(w.Registry(), testPos{X: 2})
	require.NoError(t, err)

	buf.Add(e, first)
	buf.Set(e, second)
	assert.Equal(t, 2, buf.Len())

	require.NoError(t, buf.Flush(w))
	assert.Zero(t, buf.Len())

	pos, err := Get[testPos](w, e)
	require.NoError(t, err)
	assert.Equal(t, testPos{X: 2}, pos)
	assert.True(t, w.Has(e, posID))
}

func TestCommandBufferSpawnWithComponents(t *testing.T) {
	w := newTestWorld(t)
	posID := MustRegisterComponent[testPos](w.Registry())
	velID := MustRegisterComponent[testVel](w.Registry())

	boxedPos, err := Box(w.Registry(), testPos{X: 9})
	require.NoError(t, err)
	boxedVel, err := Box(w.Registry(), testVel{DX: 3})
	require.NoError(t, err)

	buf := NewCommandBuffer()
	buf.Spawn(boxedPos, boxedVel)
	require.NoError(t, buf.Flush(w))

	assert.Equal(t, 1, w.EntityCount())
	assert.Equal(t, 1, w.Count(QueryWith(posID, velID)))
}

func TestCommandBufferStaleTargetsAreNoOps(t *testing.T) {
	w := newTestWorld(t)
	posID := MustRegisterComponent[testPos](w.Registry())

	dead := w.Spawn()
	w.Despawn(dead)

	buf := NewCommandBuffer()
	buf.Despawn(dead)
	buf.Remove(dead, posID)

	assert.NoError(t, buf.Flush(w))
}

func TestCommandBufferCollectsErrorsAndContinues(t *testing.T) {
	w := newTestWorld(t)
	posID := MustRegisterComponent[testPos](w.Registry())

	dead := w.Spawn()
	w.Despawn(dead)
	live := w.Spawn()

	boxed, err := Box(w.Registry(), testPos{X: 4})
	require.NoError(t, err)

	buf := NewCommandBuffer()
	buf.Add(dead, boxed) // fails
	buf.Add(live, boxed) // must still apply

	err = buf.Flush(w)
	assert.ErrorIs(t, err, ErrDeadEntity)
	assert.True(t, w.Has(live, posID))
}

func TestCommandBufferConcurrentRecording(t *testing.T) {
	w := newTestWorld(t)
	MustRegisterComponent[testPos](w.Registry())

	boxed, err := Box(w.Registry(), testPos{})
	require.NoError(t, err)

	buf := NewCommandBuffer()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				buf.Spawn(boxed)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 400, buf.Len())
	require.NoError(t, buf.Flush(w))
	assert.Equal(t, 400, w.EntityCount())
}
