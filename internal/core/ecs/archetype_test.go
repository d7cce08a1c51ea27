package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchetypeIDCanonicalization(t *testing.T) {
	a := NewArchetypeID(3, 1, 2)
	b := NewArchetypeID(2, 3, 1, 1, 2)

	assert.Equal(t, []ComponentID{1, 2, 3}, a.Components())
	assert.Equal(t, a.Hash(), b.Hash())
	assert.True(t, a.Equal(b))
}

func TestArchetypeIDOrderIndependentHash(t *testing.T) {
	a := NewArchetypeID(7, 42, 0)
	b := NewArchetypeID(0, 7, 42)
	c := NewArchetypeID(0, 7)

	assert.Equal(t, a.Hash(), b.Hash())
	assert.NotEqual(t, a.Hash(), c.Hash())
	assert.False(t, a.Equal(c))
}

func TestArchetypeIDWithWithout(t *testing.T) {
	base := NewArchetypeID(1, 2)

	extended := base.With(3)
	assert.True(t, extended.Equal(NewArchetypeID(1, 2, 3)))
	assert.True(t, extended.Contains(3))

	// Adding a present id is a no-op in set terms.
	assert.True(t, base.With(2).Equal(base))

	reduced := extended.Without(2)
	assert.True(t, reduced.Equal(NewArchetypeID(1, 3)))
	assert.False(t, reduced.Contains(2))

	// Removing an absent id keeps equality.
	assert.True(t, base.Without(9).Equal(base))
}

func TestArchetypeIDEmpty(t *testing.T) {
	empty := NewArchetypeID()
	assert.Zero(t, empty.Len())
	assert.True(t, empty.Equal(NewArchetypeID()))
	assert.False(t, empty.Contains(0))
}

func TestComponentSetAlgebra(t *testing.T) {
	a := NewComponentSet(1, 2, 3)
	b := NewComponentSet(3, 4)

	assert.True(t, a.Intersects(b))
	assert.Equal(t, []ComponentID{3}, a.Intersection(b))
	assert.Equal(t, 4, a.Union(b).Len())
	assert.False(t, a.Intersects(NewComponentSet(9)))
	assert.True(t, ComponentSet{}.IsEmpty())
	assert.Equal(t, []ComponentID{1, 2, 3}, a.IDs())
}

func TestComponentSetHighBits(t *testing.T) {
	s := NewComponentSet(0, 63, 64, 200, 255)
	for _, id := range []ComponentID{0, 63, 64, 200, 255} {
		assert.True(t, s.Contains(id), "id %d", id)
	}
	assert.False(t, s.Contains(1))
	assert.Equal(t, []ComponentID{0, 63, 64, 200, 255}, s.IDs())
}

func TestComponentDependenciesConflicts(t *testing.T) {
	writer := ComponentDependencies{Writes: NewComponentSet(1)}
	reader := ComponentDependencies{Reads: NewComponentSet(1)}
	other := ComponentDependencies{Reads: NewComponentSet(2), Writes: NewComponentSet(3)}

	// write/read, write/write and read/write all conflict
	assert.True(t, writer.ConflictsWith(reader))
	assert.True(t, reader.ConflictsWith(writer))
	assert.True(t, writer.ConflictsWith(writer))

	// disjoint reads never conflict
	assert.False(t, reader.ConflictsWith(ComponentDependencies{Reads: NewComponentSet(1)}))
	assert.False(t, writer.ConflictsWith(other))

	assert.Equal(t, []ComponentID{1}, writer.ConflictingComponents(reader))
}

func TestNewArchetypeRejectsUnregistered(t *testing.T) {
	r := NewRegistry()
	_, err := newArchetype(NewArchetypeID(0), r, 16, 0)
	require.ErrorIs(t, err, ErrUnregisteredComponent)
}
