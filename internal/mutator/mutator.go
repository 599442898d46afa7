// Package mutator applies immediate structural mutations: entity creation,
// destruction, and component add/remove with cross-archetype migration and
// swap-erase compaction. It is the only writer of archetype membership;
// the command buffer replays into it at flush.
package mutator

import (
	"fmt"

	"github.com/TheBitDrifter/ecsforge/internal/archetype"
	"github.com/TheBitDrifter/ecsforge/internal/component"
	"github.com/TheBitDrifter/ecsforge/internal/entity"
)

// Create allocates a new entity in the given archetype.
func Create(t *entity.Table, arch *archetype.Archetype) (entity.Handle, error) {
	h, ok := t.Allocate()
	if !ok {
		return 0, fmt.Errorf("entity table exhausted: max %d entities", t.Capacity())
	}
	row, err := arch.Reserve(h)
	if err != nil {
		return 0, err
	}
	t.SetLocation(h, int32(arch.ID()), int32(row))
	return h, nil
}

// Destroy removes an entity immediately, swap-erasing its row out of its
// archetype and releasing its handle. Stale handles are silently ignored.
func Destroy(t *entity.Table, store *archetype.Store, h entity.Handle) {
	desc, ok := t.Descriptor(h)
	if !ok {
		return
	}
	arch := store.Get(archetype.ID(desc.ArchetypeID()))
	row := int(desc.Row())
	if moved := arch.SwapErase(row); moved != 0 {
		t.SetRow(moved.Index(), int32(row))
	}
	t.Release(h)
}

// Add attaches a component to an entity immediately, migrating it to the
// archetype for its new component set. Adding an already-present component
// is idempotent and returns the existing row pointer. Stale handles return
// (nil, nil).
func Add(t *entity.Table, store *archetype.Store, h entity.Handle, comp component.ID) ([]byte, error) {
	desc, ok := t.Descriptor(h)
	if !ok {
		return nil, nil
	}
	oldArch := store.Get(archetype.ID(desc.ArchetypeID()))
	if oldArch.ColumnIndex(comp) >= 0 {
		return oldArch.RowSlice(comp, int(desc.Row())), nil
	}

	newIDs := append(append([]component.ID{}, oldArch.Components()...), comp)
	newArch, err := store.FindOrCreate(newIDs...)
	if err != nil {
		return nil, err
	}
	newRow, err := newArch.Reserve(h)
	if err != nil {
		return nil, err
	}

	oldRow := int(desc.Row())
	for _, c := range oldArch.Components() {
		copy(newArch.RowSlice(c, newRow), oldArch.RowSlice(c, oldRow))
	}
	newSlot := newArch.RowSlice(comp, newRow)
	for i := range newSlot {
		newSlot[i] = 0
	}

	if moved := oldArch.SwapErase(oldRow); moved != 0 {
		t.SetRow(moved.Index(), int32(oldRow))
	}
	t.SetLocation(h, int32(newArch.ID()), int32(newRow))
	return newSlot, nil
}

// Remove detaches a component from an entity immediately, migrating it to
// the archetype for its remaining component set. Missing components are a
// no-op. Stale handles are silently ignored.
func Remove(t *entity.Table, store *archetype.Store, h entity.Handle, comp component.ID) error {
	desc, ok := t.Descriptor(h)
	if !ok {
		return nil
	}
	oldArch := store.Get(archetype.ID(desc.ArchetypeID()))
	if oldArch.ColumnIndex(comp) < 0 {
		return nil
	}

	newIDs := make([]component.ID, 0, len(oldArch.Components())-1)
	for _, c := range oldArch.Components() {
		if c != comp {
			newIDs = append(newIDs, c)
		}
	}
	newArch, err := store.FindOrCreate(newIDs...)
	if err != nil {
		return err
	}
	newRow, err := newArch.Reserve(h)
	if err != nil {
		return err
	}

	oldRow := int(desc.Row())
	for _, c := range newIDs {
		copy(newArch.RowSlice(c, newRow), oldArch.RowSlice(c, oldRow))
	}

	if moved := oldArch.SwapErase(oldRow); moved != 0 {
		t.SetRow(moved.Index(), int32(oldRow))
	}
	t.SetLocation(h, int32(newArch.ID()), int32(newRow))
	return nil
}

// Get returns the component's row pointer if present, or false if the
// entity is stale or lacks the component.
func Get(t *entity.Table, store *archetype.Store, h entity.Handle, comp component.ID) ([]byte, bool) {
	desc, ok := t.Descriptor(h)
	if !ok {
		return nil, false
	}
	arch := store.Get(archetype.ID(desc.ArchetypeID()))
	if arch.ColumnIndex(comp) < 0 {
		return nil, false
	}
	return arch.RowSlice(comp, int(desc.Row())), true
}
