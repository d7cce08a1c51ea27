// Package schedule partitions registered systems into conflict-free batches
// based on their declared component read/write sets, and runs those batches:
// batches strictly in sequence, members of one batch concurrently.
package schedule

import (
	"context"

	"github.com/zeusync/lattice/internal/core/ecs"
)

// System is an independently schedulable unit of per-tick logic.
type System interface {
	Name() string
	Update(ctx context.Context, w *ecs.World) error
}

// DependencyProvider is the optional capability a system implements to
// declare which components it reads and writes. The second return reports
// whether a declaration exists; a system without one is treated as
// conflict-free with everything. That is a documented contract of the
// batcher, not a hidden default.
type DependencyProvider interface {
	Dependencies() (ecs.ComponentDependencies, bool)
}

// resolved is a system plus its dependency declaration, resolved exactly
// once at batch-creation time so no type assertion happens per comparison.
type resolved struct {
	sys      System
	deps     ecs.ComponentDependencies
	declared bool
}

func resolve(sys System) resolved {
	r := resolved{sys: sys}
	if p, ok := sys.(DependencyProvider); ok {
		r.deps, r.declared = p.Dependencies()
	}
	return r
}

// SystemFunc adapts a plain function into a System, optionally with a
// dependency declaration.
type SystemFunc struct {
	name     string
	fn       func(ctx context.Context, w *ecs.World) error
	deps     ecs.ComponentDependencies
	declared bool
}

var _ System = (*SystemFunc)(nil)
var _ DependencyProvider = (*SystemFunc)(nil)

// NewSystem wraps fn as a named system with no dependency declaration.
func NewSystem(name string, fn func(ctx context.Context, w *ecs.World) error) *SystemFunc {
	return &SystemFunc{name: name, fn: fn}
}

// WithDependencies attaches the declared read/write sets.
func (s *SystemFunc) WithDependencies(reads, writes ecs.ComponentSet) *SystemFunc {
	s.deps = ecs.ComponentDependencies{Reads: reads, Writes: writes}
	s.declared = true
	return s
}

func (s *SystemFunc) Name() string {
	return s.name
}

func (s *SystemFunc) Update(ctx context.Context, w *ecs.World) error {
	return s.fn(ctx, w)
}

func (s *SystemFunc) Dependencies() (ecs.ComponentDependencies, bool) {
	return s.deps, s.declared
}
