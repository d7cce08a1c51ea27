package concurrent

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/lattice/pkg/sequence"
)

func TestConcurrentRunsAll(t *testing.T) {
	var total atomic.Int64
	err := Concurrent(sequence.From([]int{1, 2, 3, 4, 5}), func(v int) error {
		total.Add(int64(v))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15), total.Load())
}

func TestConcurrentReturnsError(t *testing.T) {
	boom := errors.New("boom")
	err := Concurrent(sequence.From([]int{1, 2, 3}), func(v int) error {
		if v == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestConcurrentLimit(t *testing.T) {
	var inFlight, peak atomic.Int64
	err := ConcurrentLimit(sequence.From(make([]int, 32)), 2, func(int) error {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		inFlight.Add(-1)
		return nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int64(2))
}

func TestParallelMust(t *testing.T) {
	var n atomic.Int64
	ParallelMust(sequence.From([]string{"a", "b", "c"}), func(string) {
		n.Add(1)
	})
	assert.Equal(t, int64(3), n.Load())
}

func TestPartition(t *testing.T) {
	assert.Nil(t, Partition(0, 4))
	assert.Nil(t, Partition(10, 0))

	// Fewer items than parts: one range per item.
	assert.Equal(t, []Range{{0, 1}, {1, 2}}, Partition(2, 4))

	parts := Partition(10, 3)
	require.Len(t, parts, 3)
	assert.Equal(t, []Range{{0, 4}, {4, 7}, {7, 10}}, parts)

	// Ranges tile [0, n) without gaps or overlap.
	covered := 0
	for _, p := range Partition(100, 7) {
		assert.Equal(t, covered, p.Start)
		assert.Greater(t, p.End, p.Start)
		covered = p.End
	}
	assert.Equal(t, 100, covered)
}
