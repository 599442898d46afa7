package ecs

import (
	"github.com/TheBitDrifter/bark"

	"github.com/TheBitDrifter/ecsforge/internal/archetype"
	"github.com/TheBitDrifter/ecsforge/internal/arena"
	"github.com/TheBitDrifter/ecsforge/internal/commandbuffer"
	"github.com/TheBitDrifter/ecsforge/internal/component"
	"github.com/TheBitDrifter/ecsforge/internal/entity"
	"github.com/TheBitDrifter/ecsforge/internal/mutator"
	"github.com/TheBitDrifter/ecsforge/internal/query"
)

// ComponentID identifies a registered component type.
type ComponentID = component.ID

// Handle is a generational entity reference.
type Handle = entity.Handle

// Archetype is the set of entities sharing one exact component set.
type Archetype = archetype.Archetype

// Filter is an include/exclude component filter for MakeQuery.
type Filter = query.Filter

// Query is a registered filter with an incrementally maintained match list.
type Query = query.Query

// Cursor iterates the rows a Query currently matches. It is not
// restartable; call QueryIter again for a fresh pass.
type Cursor = query.Cursor

// World owns every entity, component, archetype, and query in one ECS
// instance. The zero value is not usable; construct one with Init.
type World struct {
	table        *entity.Table
	registry     *component.Registry
	storageArena *arena.Arena
	cmdArena     *arena.Arena
	store        *archetype.Store
	cmds         *commandbuffer.Buffer
	queries      *query.Engine
	empty        *Archetype
}

// Init constructs a World sized to the package's default limits.
func Init() *World {
	reg := component.NewRegistry()
	storageArena := arena.New(StorageArenaSize)
	store := archetype.NewStore(reg, storageArena)

	empty, err := store.FindOrCreate()
	if err != nil {
		panic(bark.AddTrace(err))
	}

	t := entity.NewTable(MaxEntities)
	cmdArena := arena.New(CommandArenaSize)

	return &World{
		table:        t,
		registry:     reg,
		storageArena: storageArena,
		cmdArena:     cmdArena,
		store:        store,
		cmds:         commandbuffer.New(t, store, reg, cmdArena),
		queries:      query.NewEngine(store),
		empty:        empty,
	}
}

// Shutdown releases the World's arena-backed storage. The World must not
// be used afterward.
func (w *World) Shutdown() {
	w.storageArena.Destroy()
	w.cmdArena.Destroy()
}

// RegisterComponent registers a raw component layout and returns its id.
// Prefer the generic RegisterComponent[T] wrapper for typed components.
func (w *World) RegisterComponent(size, alignment uintptr) ComponentID {
	id, err := w.registry.Register(size, alignment)
	if err != nil {
		panic(bark.AddTrace(err))
	}
	return id
}

// ArchetypeCount returns the number of distinct archetypes created so far.
func (w *World) ArchetypeCount() int {
	return len(w.store.All())
}

// RegisterArchetype returns the archetype for the given component set,
// creating it if it does not yet exist.
func (w *World) RegisterArchetype(ids ...ComponentID) (*Archetype, error) {
	return w.store.FindOrCreate(ids...)
}

// NewEntity creates an entity with no components.
func (w *World) NewEntity() Handle {
	return w.NewEntityIn(w.empty)
}

// NewEntityIn creates an entity directly in the given archetype, skipping
// the migration a sequence of Adds would otherwise incur.
func (w *World) NewEntityIn(arch *Archetype) Handle {
	h, err := mutator.Create(w.table, arch)
	if err != nil {
		panic(bark.AddTrace(err))
	}
	return h
}

// Destroy removes an entity. Inside a deferred block the destroy is
// staged instead of applied immediately.
func (w *World) Destroy(h Handle) {
	if w.cmds.Deferred() {
		w.cmds.Destroy(h)
		return
	}
	mutator.Destroy(w.table, w.store, h)
}

// IsValid reports whether h still identifies a live entity.
func (w *World) IsValid(h Handle) bool {
	return w.table.Valid(h)
}

// EntityArchetype returns the archetype an entity currently occupies.
func (w *World) EntityArchetype(h Handle) (*Archetype, bool) {
	desc, ok := w.table.Descriptor(h)
	if !ok {
		return nil, false
	}
	return w.store.Get(archetype.ID(desc.ArchetypeID())), true
}

// Add attaches a component to an entity, returning its writable storage.
// Inside a deferred block the add is staged and the staged buffer
// returned; outside one it migrates the entity immediately.
func (w *World) Add(h Handle, comp ComponentID) []byte {
	if w.cmds.Deferred() {
		return w.cmds.Add(h, comp)
	}
	buf, err := mutator.Add(w.table, w.store, h, comp)
	if err != nil {
		panic(bark.AddTrace(err))
	}
	return buf
}

// Remove detaches a component from an entity. Inside a deferred block the
// removal is staged; outside one it migrates the entity immediately.
func (w *World) Remove(h Handle, comp ComponentID) {
	if w.cmds.Deferred() {
		w.cmds.Remove(h, comp)
		return
	}
	if err := mutator.Remove(w.table, w.store, h, comp); err != nil {
		panic(bark.AddTrace(err))
	}
}

// Get returns an entity's component storage, honoring any staged add or
// remove inside an open deferred block.
func (w *World) Get(h Handle, comp ComponentID) ([]byte, bool) {
	if w.cmds.Deferred() {
		return w.cmds.Get(h, comp)
	}
	return mutator.Get(w.table, w.store, h, comp)
}

// Deferred reports whether a deferred block is currently open.
func (w *World) Deferred() bool {
	return w.cmds.Deferred()
}

// DeferBegin opens a deferred block. Structural mutations made until the
// matching DeferEnd are staged, not applied. Re-entrant calls are a no-op.
func (w *World) DeferBegin() {
	w.cmds.Begin()
}

// DeferEnd replays every staged mutation in insertion order (destroys win,
// removes before adds per entity) and closes the deferred block.
func (w *World) DeferEnd() {
	w.cmds.End()
}

// MakeQuery registers a new query over the given filter.
func (w *World) MakeQuery(f Filter) (*Query, error) {
	return w.queries.Make(f)
}

// QueryIter returns a fresh, non-restartable cursor over q's matches.
func (w *World) QueryIter(q *Query) *Cursor {
	return query.NewCursor(q)
}
