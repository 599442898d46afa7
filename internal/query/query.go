// Package query registers include/exclude filters over archetypes and
// keeps their match lists current as new archetypes are discovered.
package query

import (
	"fmt"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/mask"

	"github.com/TheBitDrifter/ecsforge/internal/archetype"
	"github.com/TheBitDrifter/ecsforge/internal/component"
)

// MaxInclude bounds a query's include list, which doubles as the iterator's
// per-row column array width.
const MaxInclude = 8

// MaxQueries bounds the number of live queries.
const MaxQueries = 64

// Filter describes a query's include and exclude component sets.
type Filter struct {
	Include []component.ID
	Exclude []component.ID
}

// Query is a registered filter with a cached, incrementally maintained
// list of matching archetypes.
type Query struct {
	include     mask.Mask
	exclude     mask.Mask
	includeList []component.ID
	matches     []*archetype.Archetype
}

// Matches reports whether an archetype's signature satisfies the query:
// it must carry every include bit and none of the exclude bits.
func (q *Query) Matches(a *archetype.Archetype) bool {
	sig := a.Signature()
	return sig.ContainsAll(q.include) && sig.ContainsNone(q.exclude)
}

// IncludeList returns the query's include components in declared order,
// used by a Cursor to bind iteration columns.
func (q *Query) IncludeList() []component.ID { return q.includeList }

// MatchCount returns the number of archetypes currently matched.
func (q *Query) MatchCount() int { return len(q.matches) }

func (q *Query) considerNew(a *archetype.Archetype) {
	if q.Matches(a) {
		q.matches = append(q.matches, a)
	}
}

// Engine owns every registered query and subscribes to a Store so new
// archetypes are matched against them incrementally, with no sweep
// required at iteration time.
type Engine struct {
	store   *archetype.Store
	queries []*Query
}

// NewEngine creates a query engine bound to the given archetype store.
func NewEngine(store *archetype.Store) *Engine {
	e := &Engine{store: store}
	store.Subscribe(e)
	return e
}

// OnArchetypeCreated implements archetype.Listener.
func (e *Engine) OnArchetypeCreated(a *archetype.Archetype) {
	for _, q := range e.queries {
		q.considerNew(a)
	}
}

// Make registers a new query, scanning every existing archetype for an
// initial match set.
func (e *Engine) Make(f Filter) (*Query, error) {
	if len(f.Include) > MaxInclude {
		return nil, fmt.Errorf("query include list exceeds max %d components", MaxInclude)
	}
	if len(e.queries) >= MaxQueries {
		panic(bark.AddTrace(fmt.Errorf("query table exhausted: max %d queries", MaxQueries)))
	}

	q := &Query{includeList: append([]component.ID{}, f.Include...)}
	for _, c := range f.Include {
		q.include.Mark(uint32(c))
	}
	for _, c := range f.Exclude {
		q.exclude.Mark(uint32(c))
	}
	for _, a := range e.store.All() {
		q.considerNew(a)
	}

	e.queries = append(e.queries, q)
	return q, nil
}
