package ecs

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries the tunables of a World. The zero value is not usable;
// start from DefaultConfig.
type Config struct {
	// InitialEntityCapacity pre-sizes the entity table and location table.
	InitialEntityCapacity int `yaml:"initial_entity_capacity"`
	// ChunkCapacity is the number of rows per chunk.
	ChunkCapacity int `yaml:"chunk_capacity"`
	// MaxPooledArrayBytes is the largest column array the array pool will
	// recycle. Bigger arrays bypass the pool.
	MaxPooledArrayBytes int `yaml:"max_pooled_array_bytes"`
	// MaxPooledChunksPerArchetype bounds how many empty chunks each
	// archetype keeps for reuse.
	MaxPooledChunksPerArchetype int `yaml:"max_pooled_chunks_per_archetype"`
	// ParallelThreshold is the minimum number of matched entities before
	// ForEachParallel fans out to workers; below it iteration stays on the
	// calling goroutine.
	ParallelThreshold int `yaml:"parallel_threshold"`
	// Workers is the parallel iteration fan-out. Zero means GOMAXPROCS.
	Workers int `yaml:"workers"`
}

// DefaultConfig returns the tuning used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		InitialEntityCapacity:       1024,
		ChunkCapacity:               1024,
		MaxPooledArrayBytes:         1 << 20,
		MaxPooledChunksPerArchetype: 4,
		ParallelThreshold:           4096,
		Workers:                     0,
	}
}

// LoadConfig reads a YAML config file. Fields absent from the file keep
// their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err = cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the store cannot run with.
func (c Config) Validate() error {
	if c.ChunkCapacity <= 0 {
		return fmt.Errorf("chunk_capacity must be positive: %w", ErrInvalidArgument)
	}
	if c.InitialEntityCapacity < 0 {
		return fmt.Errorf("initial_entity_capacity must not be negative: %w", ErrInvalidArgument)
	}
	if c.MaxPooledChunksPerArchetype < 0 {
		return fmt.Errorf("max_pooled_chunks_per_archetype must not be negative: %w", ErrInvalidArgument)
	}
	if c.ParallelThreshold < 0 {
		return fmt.Errorf("parallel_threshold must not be negative: %w", ErrInvalidArgument)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative: %w", ErrInvalidArgument)
	}
	return nil
}
