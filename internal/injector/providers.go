package injector

import (
	"github.com/zeusync/lattice/internal/core/ecs"
	"github.com/zeusync/lattice/internal/core/events"
	"github.com/zeusync/lattice/internal/core/observability/log"
)

// ProvideLogger constructs the process logger.
func ProvideLogger() *log.Logger {
	return log.New(log.LevelInfo)
}

// ProvideEventBus constructs the structural event bus shared by the world
// and its collaborators.
func ProvideEventBus() *events.Bus[ecs.StructuralEvent] {
	return events.NewBus[ecs.StructuralEvent]()
}

// ProvideWorld assembles a World from config, logger and bus.
func ProvideWorld(cfg ecs.Config, logger *log.Logger, bus *events.Bus[ecs.StructuralEvent]) (*ecs.World, error) {
	return ecs.NewWorld(cfg,
		ecs.WithLogger(logger),
		ecs.WithEventBus(bus),
	)
}
