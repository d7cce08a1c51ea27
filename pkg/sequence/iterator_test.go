package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIteratorIsRestartable(t *testing.T) {
	it := From([]int{1, 2, 3})

	assert.Equal(t, []int{1, 2, 3}, it.Collect())
	assert.Equal(t, []int{1, 2, 3}, it.Collect())
	assert.Equal(t, 3, it.Count())
}

func TestIteratorFilter(t *testing.T) {
	it := From([]int{1, 2, 3, 4, 5, 6}).Filter(func(v int) bool { return v%2 == 0 })

	assert.Equal(t, []int{2, 4, 6}, it.Collect())
	assert.Equal(t, 3, it.Count())
}

func TestIteratorFirst(t *testing.T) {
	v, ok := From([]int{7, 8}).First()
	require.True(t, ok)
	assert.Equal(t, 7, v)

	_, ok = From([]int(nil)).First()
	assert.False(t, ok)
}

func TestIteratorEach(t *testing.T) {
	var sum int
	From([]int{1, 2, 3}).Each(func(v int) { sum += v })
	assert.Equal(t, 6, sum)
}

func TestIteratorPull(t *testing.T) {
	next, stop := From([]string{"a", "b"}).Pull()
	defer stop()

	v, ok := next()
	require.True(t, ok)
	assert.Equal(t, "a", v)

	v, ok = next()
	require.True(t, ok)
	assert.Equal(t, "b", v)

	_, ok = next()
	assert.False(t, ok)
}

func TestFromSeq(t *testing.T) {
	it := FromSeq(func(yield func(int) bool) {
		for i := 0; i < 4; i++ {
			if !yield(i * i) {
				return
			}
		}
	})
	assert.Equal(t, []int{0, 1, 4, 9}, it.Collect())
	// Early stop propagates through the sequence function.
	v, ok := it.First()
	require.True(t, ok)
	assert.Zero(t, v)
}
