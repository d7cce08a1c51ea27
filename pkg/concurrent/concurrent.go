package concurrent

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/lattice/pkg/sequence"
)

// Concurrent runs the action function for each element of the iterator in a
// separate goroutine and waits for all of them. The first error encountered
// is returned.
func Concurrent[T any](i *sequence.Iterator[T], action func(T) error) error {
	errGroup := errgroup.Group{}
	next, stop := i.Pull()
	defer stop()

	for {
		value, valid := next()
		if !valid {
			break
		}

		errGroup.Go(func() error {
			return action(value)
		})
	}

	return errGroup.Wait()
}

// ConcurrentLimit is Concurrent with a bound on the number of goroutines
// running at once. A limit of zero or less means no bound.
func ConcurrentLimit[T any](i *sequence.Iterator[T], limit int, action func(T) error) error {
	errGroup := errgroup.Group{}
	if limit > 0 {
		errGroup.SetLimit(limit)
	}
	next, stop := i.Pull()
	defer stop()

	for {
		value, valid := next()
		if !valid {
			break
		}

		errGroup.Go(func() error {
			return action(value)
		})
	}

	return errGroup.Wait()
}

// ParallelMust runs the action function for each element in a separate
// goroutine and waits for all goroutines to finish.
func ParallelMust[T any](i *sequence.Iterator[T], action func(T)) {
	wg := sync.WaitGroup{}
	next, stop := i.Pull()
	defer stop()

	for {
		value, valid := next()
		if !valid {
			break
		}

		wg.Add(1)
		go func(value T) {
			defer wg.Done()
			action(value)
		}(value)
	}

	wg.Wait()
}

// Range describes a half-open [Start, End) span of indices assigned to one
// worker by Partition.
type Range struct {
	Start int
	End   int
}

// Partition splits n items into at most parts contiguous ranges of near-equal
// size. It never returns an empty range; fewer than parts ranges are returned
// when n < parts.
func Partition(n, parts int) []Range {
	if n <= 0 || parts <= 0 {
		return nil
	}
	if parts > n {
		parts = n
	}
	out := make([]Range, 0, parts)
	base := n / parts
	rem := n % parts
	start := 0
	for i := 0; i < parts; i++ {
		size := base
		if i < rem {
			size++
		}
		out = append(out, Range{Start: start, End: start + size})
		start += size
	}
	return out
}
