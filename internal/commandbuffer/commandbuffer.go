// Package commandbuffer defers structural mutations inside a begin/end
// block and replays them into the mutator at end, in the order: destroys
// win, then removes apply before adds for any one entity, with insertion
// order preserved across different entities.
package commandbuffer

import (
	"fmt"

	"github.com/TheBitDrifter/bark"

	"github.com/TheBitDrifter/ecsforge/internal/arena"
	"github.com/TheBitDrifter/ecsforge/internal/archetype"
	"github.com/TheBitDrifter/ecsforge/internal/component"
	"github.com/TheBitDrifter/ecsforge/internal/entity"
	"github.com/TheBitDrifter/ecsforge/internal/mutator"
)

// bucket holds the staged operations for one entity slot, valid only
// inside a deferred block.
type bucket struct {
	active     bool
	destroy    bool
	addMask    uint64
	removeMask uint64
	staged     [component.MaxComponents][]byte
}

// Buffer stages structural mutations for later replay. It is not
// re-entrant: Begin while already open is a no-op.
type Buffer struct {
	table    *entity.Table
	store    *archetype.Store
	registry *component.Registry
	cmdArena *arena.Arena

	buckets  []bucket
	dirty    []uint32
	deferred bool
}

// New creates a command buffer over the given entity table, archetype
// store, and component registry, staging payloads in cmdArena.
func New(t *entity.Table, s *archetype.Store, r *component.Registry, cmdArena *arena.Arena) *Buffer {
	return &Buffer{
		table:    t,
		store:    s,
		registry: r,
		cmdArena: cmdArena,
		buckets:  make([]bucket, t.Capacity()),
	}
}

// Deferred reports whether a deferred block is currently open.
func (b *Buffer) Deferred() bool { return b.deferred }

// Begin opens a deferred block. Re-entrant calls are a no-op.
func (b *Buffer) Begin() {
	if b.deferred {
		return
	}
	b.deferred = true
	b.dirty = b.dirty[:0]
	for i := range b.buckets {
		b.buckets[i] = bucket{}
	}
}

func (b *Buffer) markDirty(index uint32) *bucket {
	buck := &b.buckets[index]
	if !buck.active {
		buck.active = true
		b.dirty = append(b.dirty, index)
	}
	return buck
}

// Destroy stages a destroy; it supersedes any staged add/remove on the
// same entity for the rest of the block.
func (b *Buffer) Destroy(h entity.Handle) {
	if !b.table.Valid(h) {
		return
	}
	buck := b.markDirty(h.Index())
	buck.destroy = true
	buck.addMask = 0
	buck.removeMask = 0
}

// Add stages a component addition, returning the writable staged buffer.
// If the entity already live-carries the component (and no remove is
// staged), the live row is returned directly with no staging. Rejected
// (returns nil) if a destroy is staged or the handle is stale.
func (b *Buffer) Add(h entity.Handle, comp component.ID) []byte {
	if !b.table.Valid(h) {
		return nil
	}
	index := h.Index()
	buck := &b.buckets[index]
	if buck.active && buck.destroy {
		return nil
	}

	desc, _ := b.table.Descriptor(h)
	arch := b.store.Get(archetype.ID(desc.ArchetypeID()))
	bit := uint64(1) << uint(comp)

	if arch.ColumnIndex(comp) >= 0 && (!buck.active || buck.removeMask&bit == 0) {
		return arch.RowSlice(comp, int(desc.Row()))
	}
	if buck.active && buck.addMask&bit != 0 {
		return buck.staged[comp]
	}

	size := b.registry.Size(comp)
	align := b.registry.Alignment(comp)
	buf, ok := b.cmdArena.Alloc(size, align)
	if !ok {
		panic(bark.AddTrace(fmt.Errorf("command arena exhausted staging component %d", comp)))
	}
	for i := range buf {
		buf[i] = 0
	}

	buck = b.markDirty(index)
	buck.staged[comp] = buf
	buck.addMask |= bit
	buck.removeMask &^= bit
	return buf
}

// Remove stages a component removal. No-op if the component is neither
// live nor staged-added, or if a destroy is staged.
func (b *Buffer) Remove(h entity.Handle, comp component.ID) {
	if !b.table.Valid(h) {
		return
	}
	index := h.Index()
	buck := &b.buckets[index]
	if buck.active && buck.destroy {
		return
	}

	desc, _ := b.table.Descriptor(h)
	arch := b.store.Get(archetype.ID(desc.ArchetypeID()))
	bit := uint64(1) << uint(comp)
	stagedAdd := buck.active && buck.addMask&bit != 0
	if arch.ColumnIndex(comp) < 0 && !stagedAdd {
		return
	}

	buck = b.markDirty(index)
	buck.removeMask |= bit
	buck.addMask &^= bit
}

// Get honors staging: it returns false if a destroy or remove is staged,
// the staged buffer if an add is staged, else the live row.
func (b *Buffer) Get(h entity.Handle, comp component.ID) ([]byte, bool) {
	if !b.table.Valid(h) {
		return nil, false
	}
	index := h.Index()
	buck := &b.buckets[index]
	bit := uint64(1) << uint(comp)
	if buck.active {
		if buck.destroy {
			return nil, false
		}
		if buck.removeMask&bit != 0 {
			return nil, false
		}
		if buck.addMask&bit != 0 {
			return buck.staged[comp], true
		}
	}
	desc, _ := b.table.Descriptor(h)
	arch := b.store.Get(archetype.ID(desc.ArchetypeID()))
	if arch.ColumnIndex(comp) < 0 {
		return nil, false
	}
	return arch.RowSlice(comp, int(desc.Row())), true
}

// End replays the dirty list in insertion order: destroys first, then for
// surviving entities removes (low to high component id) before adds (low
// to high), copying staged payloads into the freshly migrated row. The
// command arena is rewound and the block closed unconditionally.
func (b *Buffer) End() {
	if !b.deferred {
		return
	}
	for _, index := range b.dirty {
		buck := &b.buckets[index]
		if !buck.active {
			continue
		}
		h := b.table.HandleAt(index)
		if !b.table.Valid(h) {
			continue
		}
		if buck.destroy {
			mutator.Destroy(b.table, b.store, h)
			continue
		}

		for c := component.ID(0); c < component.MaxComponents; c++ {
			if buck.removeMask&(uint64(1)<<uint(c)) != 0 {
				if err := mutator.Remove(b.table, b.store, h, c); err != nil {
					panic(bark.AddTrace(err))
				}
			}
		}
		for c := component.ID(0); c < component.MaxComponents; c++ {
			bit := uint64(1) << uint(c)
			if buck.addMask&bit == 0 {
				continue
			}
			dst, err := mutator.Add(b.table, b.store, h, c)
			if err != nil {
				panic(bark.AddTrace(err))
			}
			if dst != nil && buck.staged[c] != nil {
				copy(dst, buck.staged[c])
			}
		}
	}
	b.cmdArena.Rewind(0)
	b.dirty = b.dirty[:0]
	b.deferred = false
}
