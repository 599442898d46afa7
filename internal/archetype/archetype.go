// Package archetype groups entities by their exact component set and owns
// column-oriented storage for each such set.
package archetype

import (
	"fmt"
	"sort"

	"github.com/TheBitDrifter/mask"

	"github.com/TheBitDrifter/ecsforge/internal/arena"
	"github.com/TheBitDrifter/ecsforge/internal/component"
	"github.com/TheBitDrifter/ecsforge/internal/entity"
)

// MaxArchetypes bounds the archetype table.
const MaxArchetypes = 128

// MaxArchRows bounds the number of entities any single archetype can hold.
const MaxArchRows = 256

// MaxComponentsPerArchetype bounds the component set of a single archetype.
const MaxComponentsPerArchetype = 8

// ID identifies an archetype by its position in a Store.
type ID int32

// Archetype is a unique, sorted component set with structure-of-arrays
// column storage sized for MaxArchRows entities.
type Archetype struct {
	id          ID
	components  []component.ID // sorted ascending
	signature   mask.Mask
	columnIndex [component.MaxComponents]int32 // -1 if component absent
	columns     [][]byte
	columnSize  []int
	rows        []entity.Handle
	rowCount    int
}

// ID returns the archetype's store index.
func (a *Archetype) ID() ID { return a.id }

// Components returns the archetype's sorted component id list.
func (a *Archetype) Components() []component.ID { return a.components }

// Signature returns the archetype's bitmask component signature.
func (a *Archetype) Signature() mask.Mask { return a.signature }

// RowCount returns the number of live rows.
func (a *Archetype) RowCount() int { return a.rowCount }

// Full reports whether the archetype has reached MaxArchRows.
func (a *Archetype) Full() bool { return a.rowCount >= MaxArchRows }

// ColumnIndex returns the column position of a component, or -1 if the
// archetype does not carry it.
func (a *Archetype) ColumnIndex(c component.ID) int32 {
	if int(c) >= len(a.columnIndex) {
		return -1
	}
	return a.columnIndex[c]
}

// Entity returns the handle stored at a row.
func (a *Archetype) Entity(row int) entity.Handle { return a.rows[row] }

// RowSlice returns the byte slice for component c at the given row. The
// caller must have already checked ColumnIndex(c) >= 0.
func (a *Archetype) RowSlice(c component.ID, row int) []byte {
	idx := a.columnIndex[c]
	size := a.columnSize[idx]
	start := row * size
	return a.columns[idx][start : start+size]
}

// Reserve appends a new row bound to handle h, returning its row index.
func (a *Archetype) Reserve(h entity.Handle) (int, error) {
	if a.Full() {
		return 0, fmt.Errorf("archetype %d full: max %d rows", a.id, MaxArchRows)
	}
	row := a.rowCount
	a.rows[row] = h
	a.rowCount++
	return row, nil
}

// SwapErase removes a row by copying the last live row into its place (if
// different) across every column, then shrinking the row count. It returns
// the handle that was moved into row, or 0 if row was already last.
func (a *Archetype) SwapErase(row int) entity.Handle {
	last := a.rowCount - 1
	var moved entity.Handle
	if row != last {
		moved = a.rows[last]
		a.rows[row] = moved
		for i, col := range a.columns {
			size := a.columnSize[i]
			dst := col[row*size : row*size+size]
			src := col[last*size : last*size+size]
			copy(dst, src)
		}
	}
	a.rowCount--
	return moved
}

// Listener is notified whenever a Store creates a new archetype, so that
// registered queries can incrementally extend their match list.
type Listener interface {
	OnArchetypeCreated(*Archetype)
}

// Store owns the fixed archetype table and finds or creates archetypes by
// component set.
type Store struct {
	registry  *component.Registry
	arena     *arena.Arena
	byMask    map[mask.Mask]ID
	all       []*Archetype
	listeners []Listener
}

// NewStore creates an archetype store backed by the given component
// registry and storage arena.
func NewStore(registry *component.Registry, a *arena.Arena) *Store {
	return &Store{
		registry: registry,
		arena:    a,
		byMask:   make(map[mask.Mask]ID),
	}
}

// Subscribe registers a listener notified on every future archetype
// creation.
func (s *Store) Subscribe(l Listener) {
	s.listeners = append(s.listeners, l)
}

// All returns every archetype created so far, in creation order.
func (s *Store) All() []*Archetype { return s.all }

// Get returns the archetype at id.
func (s *Store) Get(id ID) *Archetype { return s.all[id] }

// FindOrCreate returns the archetype matching the given component set
// (order-independent), creating and registering it with every subscribed
// listener if it does not already exist.
func (s *Store) FindOrCreate(ids ...component.ID) (*Archetype, error) {
	sorted := append([]component.ID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return nil, fmt.Errorf("duplicate component id %d in archetype signature", sorted[i])
		}
	}
	if len(sorted) > MaxComponentsPerArchetype {
		return nil, fmt.Errorf("archetype signature exceeds max %d components", MaxComponentsPerArchetype)
	}

	var sig mask.Mask
	for _, c := range sorted {
		sig.Mark(uint32(c))
	}

	if id, ok := s.byMask[sig]; ok {
		return s.all[id], nil
	}

	if len(s.all) >= MaxArchetypes {
		return nil, fmt.Errorf("archetype store exhausted: max %d archetypes", MaxArchetypes)
	}

	arch := &Archetype{
		id:         ID(len(s.all)),
		components: sorted,
		signature:  sig,
		rows:       make([]entity.Handle, MaxArchRows),
	}
	for i := range arch.columnIndex {
		arch.columnIndex[i] = -1
	}
	arch.columns = make([][]byte, len(sorted))
	arch.columnSize = make([]int, len(sorted))
	for i, c := range sorted {
		size := s.registry.Size(c)
		align := s.registry.Alignment(c)
		col, ok := s.arena.Alloc(size*MaxArchRows, align)
		if !ok {
			return nil, fmt.Errorf("storage arena exhausted allocating column for component %d", c)
		}
		arch.columns[i] = col
		arch.columnSize[i] = int(size)
		arch.columnIndex[c] = int32(i)
	}

	s.all = append(s.all, arch)
	s.byMask[sig] = arch.id

	for _, l := range s.listeners {
		l.OnArchetypeCreated(arch)
	}

	return arch, nil
}
