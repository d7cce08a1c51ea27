package sequence

import "iter"

// Iterator is a generic, immutable, chainable iterator for any type T.
// The underlying sequence is restartable: consuming the iterator does not
// exhaust it, so the same Iterator can be walked any number of times.
type Iterator[T any] struct {
	seq iter.Seq[T]
}

// From creates a new Iterator from a slice of T.
func From[T any](data []T) *Iterator[T] {
	return &Iterator[T]{
		seq: func(yield func(T) bool) {
			for _, v := range data {
				if !yield(v) {
					return
				}
			}
		},
	}
}

// FromSeq wraps an existing sequence function in an Iterator.
func FromSeq[T any](seq iter.Seq[T]) *Iterator[T] {
	return &Iterator[T]{seq: seq}
}

// Seq returns the underlying sequence function for the iterator.
func (i *Iterator[T]) Seq() iter.Seq[T] {
	return i.seq
}

// Pull converts the iterator into a pull-style pair of next/stop functions.
func (i *Iterator[T]) Pull() (next func() (T, bool), stop func()) {
	return iter.Pull(i.seq)
}

// Collect exhausts the iterator and returns a slice of all elements.
func (i *Iterator[T]) Collect() []T {
	var out []T
	i.seq(func(v T) bool {
		out = append(out, v)
		return true
	})
	return out
}

// Each applies action to every element and returns the iterator unchanged.
func (i *Iterator[T]) Each(action func(T)) *Iterator[T] {
	i.seq(func(v T) bool {
		action(v)
		return true
	})
	return i
}

// Filter returns a new Iterator yielding only elements for which pred is true.
func (i *Iterator[T]) Filter(pred func(T) bool) *Iterator[T] {
	src := i.seq
	return &Iterator[T]{
		seq: func(yield func(T) bool) {
			src(func(v T) bool {
				if pred(v) {
					return yield(v)
				}
				return true
			})
		},
	}
}

// First returns the first element, if any.
func (i *Iterator[T]) First() (T, bool) {
	var out T
	found := false
	i.seq(func(v T) bool {
		out = v
		found = true
		return false
	})
	return out, found
}

// Count exhausts the iterator and returns the number of elements.
func (i *Iterator[T]) Count() int {
	n := 0
	i.seq(func(T) bool {
		n++
		return true
	})
	return n
}
