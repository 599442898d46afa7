package ecs

import (
	"github.com/TheBitDrifter/ecsforge/internal/archetype"
	"github.com/TheBitDrifter/ecsforge/internal/component"
	"github.com/TheBitDrifter/ecsforge/internal/entity"
	"github.com/TheBitDrifter/ecsforge/internal/query"
)

// Numeric limits re-exported from the internal packages that own them, so
// callers never need to import internal/ directly to size their data.
const (
	// MaxEntities is the default entity table capacity a World is built with.
	MaxEntities = entity.DefaultCapacity
	// MaxComponents bounds the number of distinct component types.
	MaxComponents = component.MaxComponents
	// MaxArchetypes bounds the number of distinct component sets.
	MaxArchetypes = archetype.MaxArchetypes
	// MaxArchRows bounds the number of entities in any one archetype.
	MaxArchRows = archetype.MaxArchRows
	// MaxComponentsPerArchetype bounds a single archetype's component set.
	MaxComponentsPerArchetype = archetype.MaxComponentsPerArchetype
	// MaxQueryInclude bounds a single query's include list.
	MaxQueryInclude = query.MaxInclude
	// MaxQueries bounds the number of live registered queries.
	MaxQueries = query.MaxQueries

	// StorageArenaSize is the default backing size of a World's column arena.
	StorageArenaSize = 64 * 1024
	// CommandArenaSize is the default backing size of a World's deferred
	// command payload arena.
	CommandArenaSize = 64 * 1024
)
