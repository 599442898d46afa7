/*
Package ecs provides an archetype-based Entity-Component-System runtime.

Ecsforge groups entities by their exact component set (an archetype) and
stores components column-oriented within it, so a query over a component
combination walks dense, cache-friendly memory instead of scattered
per-entity records.

Core Concepts:

  - Entity: a generational Handle identifying a live object.
  - Component: a fixed-size, fixed-alignment data layout registered once.
  - Archetype: the set of entities sharing one exact component set.
  - Query: an include/exclude filter over archetype signatures.
  - Deferred block: a begin/end region in which structural mutations are
    staged and replayed in a fixed order at DeferEnd.

Basic Usage:

	w := ecs.Init()

	position := ecs.RegisterComponent[Position](w)
	velocity := ecs.RegisterComponent[Velocity](w)

	h := w.NewEntity()
	w.Add(h, position.ID())
	w.Add(h, velocity.ID())

	q, _ := w.MakeQuery(ecs.Filter{Include: []ecs.ComponentID{position.ID(), velocity.ID()}})
	cursor := w.QueryIter(q)
	for cursor.Next() {
		pos := position.Get(cursor)
		vel := velocity.Get(cursor)
		pos.X += vel.X
		pos.Y += vel.Y
	}

Ecsforge is a standalone ECS runtime; it does not provide a host loop,
rendering, scripting, or persistence.
*/
package ecs
