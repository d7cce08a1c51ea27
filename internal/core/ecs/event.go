package ecs

import "time"

// EventKind enumerates the structural changes a World can report.
type EventKind uint8

const (
	EventEntitySpawned EventKind = iota
	EventEntityDespawned
	EventComponentAdded
	EventComponentRemoved
	EventArchetypeCreated
)

func (k EventKind) String() string {
	switch k {
	case EventEntitySpawned:
		return "entity.spawned"
	case EventEntityDespawned:
		return "entity.despawned"
	case EventComponentAdded:
		return "component.added"
	case EventComponentRemoved:
		return "component.removed"
	case EventArchetypeCreated:
		return "archetype.created"
	default:
		return "unknown"
	}
}

// StructuralEvent describes one structural mutation after it committed.
// Events are delivered synchronously on the mutating goroutine; collaborators
// (change tracking, command recording) subscribe through the World's bus.
type StructuralEvent struct {
	Kind      EventKind
	Entity    Entity      // Null for archetype-creation events
	Component ComponentID // set for component add/remove events
	// Archetype is the entity's archetype after the mutation; for despawn
	// events it is the archetype the entity was removed from.
	Archetype ArchetypeID
	Time      time.Time
}
