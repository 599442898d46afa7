package query

import (
	"github.com/TheBitDrifter/ecsforge/internal/archetype"
	"github.com/TheBitDrifter/ecsforge/internal/component"
	"github.com/TheBitDrifter/ecsforge/internal/entity"
)

// Cursor iterates the rows of every archetype a query currently matches.
// It is not restartable: once exhausted, a fresh Cursor must be created
// via NewCursor.
type Cursor struct {
	query   *Query
	archIdx int
	row     int
}

// NewCursor creates a cursor over q's matched archetypes. The cursor reads
// q's match list as it advances, so archetypes matched after this call
// (which are appended to that list) are visited by this cursor as well.
func NewCursor(q *Query) *Cursor {
	return &Cursor{query: q, archIdx: 0, row: -1}
}

// Next advances the cursor to the next live row, skipping empty
// archetypes, and reports whether a row is available.
func (c *Cursor) Next() bool {
	for c.archIdx < len(c.query.matches) {
		a := c.query.matches[c.archIdx]
		c.row++
		if c.row < a.RowCount() {
			return true
		}
		c.archIdx++
		c.row = -1
	}
	return false
}

func (c *Cursor) current() *archetype.Archetype {
	return c.query.matches[c.archIdx]
}

// Entity returns the handle at the cursor's current row.
func (c *Cursor) Entity() entity.Handle {
	return c.current().Entity(c.row)
}

// Component returns the current row's slice for the given component.
func (c *Cursor) Component(comp component.ID) []byte {
	return c.current().RowSlice(comp, c.row)
}

// IncludeList returns the query's include components in declared order.
func (c *Cursor) IncludeList() []component.ID {
	return c.query.IncludeList()
}
