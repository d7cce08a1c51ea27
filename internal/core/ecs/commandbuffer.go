package ecs

import (
	"sync"

	"go.uber.org/multierr"
)

// CommandBuffer queues structural mutations for later application, so code
// running inside a parallel iteration pass never mutates structure inline.
// It is layered entirely on the World's public seams. Recording is safe from
// multiple goroutines; Flush is not, and must run after the pass completes.
type CommandBuffer struct {
	mu       sync.Mutex
	commands []command
}

type commandKind uint8

const (
	cmdSpawn commandKind = iota
	cmdDespawn
	cmdAdd
	cmdSet
	cmdRemove
)

type command struct {
	kind       commandKind
	entity     Entity
	boxed      Boxed
	components []Boxed // spawn only
}

func NewCommandBuffer() *CommandBuffer {
	return &CommandBuffer{}
}

// Spawn queues creation of an entity carrying the given components.
func (b *CommandBuffer) Spawn(components ...Boxed) {
	b.push(command{kind: cmdSpawn, components: components})
}

// Despawn queues removal of the entity. Stale handles flush as no-ops.
func (b *CommandBuffer) Despawn(e Entity) {
	b.push(command{kind: cmdDespawn, entity: e})
}

// Add queues attaching a boxed component to the entity.
func (b *CommandBuffer) Add(e Entity, boxed Boxed) {
	b.push(command{kind: cmdAdd, entity: e, boxed: boxed})
}

// Set queues overwriting the entity's component value.
func (b *CommandBuffer) Set(e Entity, boxed Boxed) {
	b.push(command{kind: cmdSet, entity: e, boxed: boxed})
}

// Remove queues detaching a component. Flushing against an entity that
// lacks it is a no-op.
func (b *CommandBuffer) Remove(e Entity, id ComponentID) {
	b.push(command{kind: cmdRemove, entity: e, boxed: Boxed{ID: id}})
}

func (b *CommandBuffer) push(c command) {
	b.mu.Lock()
	b.commands = append(b.commands, c)
	b.mu.Unlock()
}

// Len returns the number of queued commands.
func (b *CommandBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.commands)
}

// Flush applies the queued commands against the world in recording order and
// drains the buffer. Idempotent no-ops (despawn/remove of stale targets) are
// not errors; real failures are collected and returned combined, with every
// remaining command still applied.
func (b *CommandBuffer) Flush(w *World) error {
	b.mu.Lock()
	commands := b.commands
	b.commands = nil
	b.mu.Unlock()

	var errs error
	for _, c := range commands {
		switch c.kind {
		case cmdSpawn:
			e := w.Spawn()
			for _, boxed := range c.components {
				errs = multierr.Append(errs, w.Add(e, boxed.ID, boxed.Data))
			}
		case cmdDespawn:
			w.Despawn(c.entity)
		case cmdAdd:
			errs = multierr.Append(errs, w.Add(c.entity, c.boxed.ID, c.boxed.Data))
		case cmdSet:
			errs = multierr.Append(errs, w.Set(c.entity, c.boxed.ID, c.boxed.Data))
		case cmdRemove:
			w.Remove(c.entity, c.boxed.ID)
		}
	}
	return errs
}
