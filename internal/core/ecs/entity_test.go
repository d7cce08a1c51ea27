package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocatorAcquireRelease(t *testing.T) {
	a := NewAllocator(4)

	e := a.Acquire()
	assert.True(t, a.IsValid(e))
	assert.Equal(t, 1, a.Alive())

	assert.True(t, a.Release(e))
	assert.False(t, a.IsValid(e))
	assert.Equal(t, 0, a.Alive())

	// Releasing a stale handle is an idempotent no-op.
	assert.False(t, a.Release(e))
}

func TestAllocatorSlotReuseBumpsGeneration(t *testing.T) {
	a := NewAllocator(0)

	first := a.Acquire()
	require.True(t, a.Release(first))

	second := a.Acquire()
	assert.Equal(t, first.Index, second.Index)
	assert.Equal(t, first.Generation+1, second.Generation)

	// The original handle stays dead even though the slot is live again.
	assert.False(t, a.IsValid(first))
	assert.True(t, a.IsValid(second))
}

func TestAllocatorGetVersion(t *testing.T) {
	a := NewAllocator(0)

	assert.Equal(t, int64(-1), a.GetVersion(0))
	assert.Equal(t, int64(-1), a.GetVersion(-1))

	e := a.Acquire()
	assert.Equal(t, int64(0), a.GetVersion(int(e.Index)))

	a.Release(e)
	assert.Equal(t, int64(1), a.GetVersion(int(e.Index)))
}

func TestAllocatorOutOfRangeHandles(t *testing.T) {
	a := NewAllocator(0)

	assert.False(t, a.IsValid(Entity{Index: 42}))
	assert.False(t, a.Release(Entity{Index: 42}))
	assert.False(t, a.IsValid(Null))
}

func TestNullEntity(t *testing.T) {
	assert.True(t, Null.IsNull())
	assert.False(t, Entity{}.IsNull())
}
