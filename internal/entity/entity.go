// Package entity allocates and recycles generational entity handles.
//
// Recycling bumps the generation, so no prior handle to a reused slot ever
// compares equal to the reissued one: use-after-free becomes a detectable
// Valid()==false instead of undefined behavior.
package entity

import "fmt"

// DefaultCapacity is the default number of entity slots.
const DefaultCapacity = 1024

// freeSentinel marks the tail of the free list.
const freeSentinel = ^uint32(0)

// Handle is an opaque 64-bit generational entity reference: index in the
// high 32 bits, generation in the low 32 bits.
type Handle uint64

// NewHandle packs an index and generation into a Handle.
func NewHandle(index, generation uint32) Handle {
	return Handle(uint64(index)<<32 | uint64(generation))
}

// Index returns the handle's slot index.
func (h Handle) Index() uint32 {
	return uint32(h >> 32)
}

// Generation returns the handle's generation counter.
func (h Handle) Generation() uint32 {
	return uint32(h)
}

// Descriptor is the per-slot bookkeeping record: the slot's current handle
// (or free-list link when unused) plus its archetype/row location.
type Descriptor struct {
	id          Handle
	archetypeID int32
	row         int32
}

// ID returns the descriptor's current handle.
func (d Descriptor) ID() Handle { return d.id }

// ArchetypeID returns the index of the archetype the entity currently
// occupies, or -1 if unassigned.
func (d Descriptor) ArchetypeID() int32 { return d.archetypeID }

// Row returns the entity's row within its archetype's columns.
func (d Descriptor) Row() int32 { return d.row }

// Table is a fixed-capacity table of entity descriptors backed by a
// singly-linked free list rooted at the first free slot.
type Table struct {
	descs    []Descriptor
	nextFree uint32
	live     int
}

// NewTable creates a table with the given capacity, with every slot linked
// into the free list.
func NewTable(capacity int) *Table {
	t := &Table{descs: make([]Descriptor, capacity)}
	t.reset()
	return t
}

func (t *Table) reset() {
	n := len(t.descs)
	for i := 0; i < n-1; i++ {
		t.descs[i] = Descriptor{id: NewHandle(uint32(i+1), 0), archetypeID: -1, row: -1}
	}
	if n > 0 {
		t.descs[n-1] = Descriptor{id: NewHandle(freeSentinel, 0), archetypeID: -1, row: -1}
	}
	t.nextFree = 0
	t.live = 0
}

// Allocate pops the free-list head, bumps its generation, and returns the
// new handle. It reports false when the table is exhausted.
func (t *Table) Allocate() (Handle, bool) {
	if t.nextFree == freeSentinel {
		return 0, false
	}
	head := t.nextFree
	d := &t.descs[head]
	next := d.id.Index()
	newHandle := NewHandle(head, d.id.Generation()+1)
	d.id = newHandle
	t.nextFree = next
	t.live++
	return newHandle, true
}

// Release pushes a slot back onto the free list. The generation is kept
// as-is; it is bumped on the slot's next Allocate.
func (t *Table) Release(h Handle) {
	index := h.Index()
	d := &t.descs[index]
	d.id = NewHandle(t.nextFree, d.id.Generation())
	d.archetypeID = -1
	d.row = -1
	t.nextFree = index
	t.live--
}

// Valid reports whether h is the slot's current handle.
func (t *Table) Valid(h Handle) bool {
	idx := h.Index()
	if int(idx) >= len(t.descs) {
		return false
	}
	return t.descs[idx].id == h
}

// Descriptor returns the descriptor for a handle, or false if stale.
func (t *Table) Descriptor(h Handle) (Descriptor, bool) {
	if !t.Valid(h) {
		return Descriptor{}, false
	}
	return t.descs[h.Index()], true
}

// HandleAt returns the slot's current handle regardless of validity
// context, for callers (e.g. the command buffer flush) that already hold
// a slot index and must re-derive the live handle.
func (t *Table) HandleAt(index uint32) Handle {
	return t.descs[index].id
}

// SetLocation records where an entity's row lives after a structural
// mutation. The handle must already be valid.
func (t *Table) SetLocation(h Handle, archetypeID, row int32) {
	idx := h.Index()
	t.descs[idx].archetypeID = archetypeID
	t.descs[idx].row = row
}

// SetRow updates only the row of the slot at index, used when a swap-erase
// moves a different entity into a new row.
func (t *Table) SetRow(index uint32, row int32) {
	t.descs[index].row = row
}

// LiveCount returns the number of currently allocated entities.
func (t *Table) LiveCount() int { return t.live }

// FreeCount returns the number of free slots.
func (t *Table) FreeCount() int { return len(t.descs) - t.live }

// Capacity returns the table's fixed slot count.
func (t *Table) Capacity() int { return len(t.descs) }

// String implements fmt.Stringer for diagnostics.
func (h Handle) String() string {
	return fmt.Sprintf("Handle(index=%d, gen=%d)", h.Index(), h.Generation())
}
