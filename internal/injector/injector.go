//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/lattice/internal/core/ecs"
)

// InitializeWorld wires a fully configured World.
func InitializeWorld(cfg ecs.Config) (*ecs.World, error) {
	wire.Build(ProvideLogger, ProvideEventBus, ProvideWorld)
	return nil, nil
}
