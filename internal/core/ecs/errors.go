package ecs

import "errors"

// Core storage errors. Idempotent operations (Has, Remove, Despawn, Release)
// never return these; they report false instead.
var (
	// Entity errors

	ErrDeadEntity = errors.New("entity is not alive")

	// Component errors

	ErrUnregisteredComponent = errors.New("component type is not registered")
	ErrMissingComponent      = errors.New("entity does not have component")
	ErrDuplicateComponent    = errors.New("entity already has component, use Set to overwrite")
	ErrComponentLimit        = errors.New("maximum number of component types reached")
	ErrSizeMismatch          = errors.New("component value size does not match registered size")

	// Argument errors

	ErrInvalidArgument = errors.New("invalid argument")
)
