package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zeusync/lattice/internal/core/ecs"
	"github.com/zeusync/lattice/internal/core/observability/log"
	"github.com/zeusync/lattice/internal/core/schedule"
	"github.com/zeusync/lattice/internal/injector"
)

type position struct{ X, Y float64 }
type velocity struct{ DX, DY float64 }
type health struct{ Current, Max int32 }
type frozen struct{}

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config (defaults apply when empty)")
		entities   = flag.Int("entities", 100_000, "number of entities to simulate")
		ticks      = flag.Int("ticks", 100, "number of scheduler ticks to run")
	)
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-stopCh
		cancel()
	}()

	if err := run(ctx, *configPath, *entities, *ticks); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, entities, ticks int) error {
	cfg := ecs.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = ecs.LoadConfig(configPath); err != nil {
			return err
		}
	}

	world, err := injector.InitializeWorld(cfg)
	if err != nil {
		return err
	}

	posID := ecs.MustRegisterComponent[position](world.Registry())
	velID := ecs.MustRegisterComponent[velocity](world.Registry())
	hpID := ecs.MustRegisterComponent[health](world.Registry())
	ecs.MustRegisterComponent[frozen](world.Registry())

	start := time.Now()
	for i := 0; i < entities; i++ {
		e := world.Spawn()
		if err = ecs.Add(world, e, position{X: float64(i), Y: 0}); err != nil {
			return err
		}
		if err = ecs.Add(world, e, velocity{DX: 1, DY: 0.5}); err != nil {
			return err
		}
		if i%2 == 0 {
			if err = ecs.Add(world, e, health{Current: 100, Max: 100}); err != nil {
				return err
			}
		}
	}
	fmt.Printf("spawned %d entities in %s\n", entities, time.Since(start))

	movement := schedule.NewSystem("movement", func(ctx context.Context, w *ecs.World) error {
		return w.ForEachParallel(ctx, ecs.QueryWith(posID, velID), func(e ecs.Entity) error {
			pos, err := ecs.Get[position](w, e)
			if err != nil {
				return err
			}
			vel, err := ecs.Get[velocity](w, e)
			if err != nil {
				return err
			}
			pos.X += vel.DX
			pos.Y += vel.DY
			return ecs.Set(w, e, pos)
		})
	}).WithDependencies(ecs.NewComponentSet(velID), ecs.NewComponentSet(posID))

	damping := schedule.NewSystem("damping", func(ctx context.Context, w *ecs.World) error {
		return w.ForEachParallel(ctx, ecs.QueryWith(velID), func(e ecs.Entity) error {
			vel, err := ecs.Get[velocity](w, e)
			if err != nil {
				return err
			}
			vel.DX *= 0.999
			vel.DY *= 0.999
			return ecs.Set(w, e, vel)
		})
	}).WithDependencies(ecs.ComponentSet{}, ecs.NewComponentSet(velID))

	regen := schedule.NewSystem("regen", func(ctx context.Context, w *ecs.World) error {
		return w.ForEachParallel(ctx, ecs.QueryWith(hpID), func(e ecs.Entity) error {
			hp, err := ecs.Get[health](w, e)
			if err != nil {
				return err
			}
			if hp.Current < hp.Max {
				hp.Current++
			}
			return ecs.Set(w, e, hp)
		})
	}).WithDependencies(ecs.ComponentSet{}, ecs.NewComponentSet(hpID))

	systems := []schedule.System{movement, damping, regen}
	batcher := schedule.NewBatcher(log.Provide())
	analysis := batcher.Analyze(systems)
	fmt.Printf("schedule: %d batches, max parallelism %d, %d conflicting pairs\n",
		analysis.BatchCount, analysis.MaxParallelism, len(analysis.Conflicts))

	batches := batcher.CreateBatches(systems)
	runner := schedule.NewRunner(log.Provide())

	start = time.Now()
	for tick := 0; tick < ticks; tick++ {
		if err = runner.Run(ctx, world, batches); err != nil {
			return err
		}
	}
	elapsed := time.Since(start)
	fmt.Printf("ran %d ticks in %s (%.1f us/tick)\n",
		ticks, elapsed, float64(elapsed.Microseconds())/float64(ticks))

	stats := world.Stats()
	fmt.Printf("entities=%d archetypes=%d components=%d\n",
		stats.Entities, stats.Archetypes, stats.Components)
	fmt.Printf("query cache: hits=%d misses=%d hit_rate=%.3f\n",
		stats.QueryCache.Hits, stats.QueryCache.Misses, stats.QueryCache.HitRate())
	fmt.Printf("chunk pool: rented=%d created=%d discarded=%d hit_rate=%.3f\n",
		stats.ChunkPool.Rented, stats.ChunkPool.Created, stats.ChunkPool.Discarded, stats.ChunkPool.HitRate())
	fmt.Printf("array pool: rented=%d returned=%d outstanding=%d\n",
		stats.ArrayPool.Rented, stats.ArrayPool.Returned, stats.ArrayPool.Outstanding)
	return nil
}
