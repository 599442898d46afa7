package ecs_test

import (
	"testing"

	ecs "github.com/TheBitDrifter/ecsforge"
)

type Position struct{ X, Y float64 }
type Velocity struct{ X, Y float64 }
type Health struct{ HP int32 }

func TestCreateDestroyCycle(t *testing.T) {
	w := ecs.Init()
	h1 := w.NewEntity()
	h2 := w.NewEntity()
	w.Destroy(h1)
	h3 := w.NewEntity()

	if h3.Index() != h1.Index() {
		t.Fatalf("index(h3) = %d, want %d", h3.Index(), h1.Index())
	}
	if h3.Generation() != h1.Generation()+1 {
		t.Fatalf("generation(h3) = %d, want %d", h3.Generation(), h1.Generation()+1)
	}
	if w.IsValid(h1) {
		t.Fatalf("IsValid(h1) = true, want false")
	}
	if !w.IsValid(h3) {
		t.Fatalf("IsValid(h3) = false, want true")
	}
	_ = h2
}

func TestArchetypeMigration(t *testing.T) {
	w := ecs.Init()
	pos := ecs.RegisterComponent[Position](w)
	vel := ecs.RegisterComponent[Velocity](w)

	h := w.NewEntity()
	w.Add(h, pos.ID())

	archP, _ := w.EntityArchetype(h)
	if len(archP.Components()) != 1 || archP.Components()[0] != pos.ID() {
		t.Fatalf("archetype after add(P) = %v, want {P}", archP.Components())
	}

	w.Add(h, vel.ID())
	archPV, _ := w.EntityArchetype(h)
	if len(archPV.Components()) != 2 {
		t.Fatalf("archetype after add(P,V) has %d components, want 2", len(archPV.Components()))
	}
	if archP.RowCount() != 0 {
		t.Fatalf("{P} row count = %d, want 0 after migration", archP.RowCount())
	}
}

func TestSwapEraseCompaction(t *testing.T) {
	w := ecs.Init()
	pos := ecs.RegisterComponent[Position](w)
	posArch, err := w.RegisterArchetype(pos.ID())
	if err != nil {
		t.Fatalf("RegisterArchetype() error = %v", err)
	}

	h1 := w.NewEntityIn(posArch)
	h2 := w.NewEntityIn(posArch)
	h3 := w.NewEntityIn(posArch)

	pos.Add(w, h1).X = 1
	pos.Add(w, h2).X = 2
	pos.Add(w, h3).X = 3

	w.Destroy(h2)

	if posArch.RowCount() != 2 {
		t.Fatalf("RowCount() = %d, want 2", posArch.RowCount())
	}
	if pos.GetEntity(w, h1).X != 1 {
		t.Fatalf("P.x for h1 = %v, want 1", pos.GetEntity(w, h1).X)
	}
	if pos.GetEntity(w, h3).X != 3 {
		t.Fatalf("P.x for h3 = %v, want 3", pos.GetEntity(w, h3).X)
	}
}

func TestDeferredFlushOrderingNetsNoChange(t *testing.T) {
	w := ecs.Init()
	pos := ecs.RegisterComponent[Position](w)
	vel := ecs.RegisterComponent[Velocity](w)
	h := w.NewEntity()
	w.Add(h, pos.ID())
	before, _ := w.EntityArchetype(h)

	w.DeferBegin()
	w.Add(h, vel.ID())
	w.Remove(h, vel.ID())
	w.DeferEnd()

	after, _ := w.EntityArchetype(h)
	if after.ID() != before.ID() {
		t.Fatalf("archetype changed despite add+remove of the same component in one block")
	}
}

func TestDeferredDestroySupersedesPendingAdd(t *testing.T) {
	w := ecs.Init()
	pos := ecs.RegisterComponent[Position](w)
	vel := ecs.RegisterComponent[Velocity](w)
	h := w.NewEntity()

	archBefore := w.ArchetypeCount()

	w.DeferBegin()
	w.Add(h, pos.ID())
	w.Destroy(h)
	w.Add(h, vel.ID())
	w.DeferEnd()

	if w.IsValid(h) {
		t.Fatalf("IsValid(h) = true after deferred destroy, want false")
	}
	if w.ArchetypeCount() != archBefore {
		t.Fatalf("a new archetype was created for an entity destroyed in the same block")
	}
}

func TestQueryCoverageAcrossRegistrationOrder(t *testing.T) {
	w := ecs.Init()
	pos := ecs.RegisterComponent[Position](w)
	vel := ecs.RegisterComponent[Velocity](w)
	hp := ecs.RegisterComponent[Health](w)

	posVel, err := w.RegisterArchetype(pos.ID(), vel.ID())
	if err != nil {
		t.Fatalf("RegisterArchetype({P,V}) error = %v", err)
	}
	h1 := w.NewEntityIn(posVel)

	q, err := w.MakeQuery(ecs.Filter{Include: []ecs.ComponentID{pos.ID()}})
	if err != nil {
		t.Fatalf("MakeQuery() error = %v", err)
	}

	seenFirst := map[ecs.Handle]bool{}
	c := w.QueryIter(q)
	for c.Next() {
		seenFirst[c.Entity()] = true
	}
	if len(seenFirst) != 1 || !seenFirst[h1] {
		t.Fatalf("first pass saw %v, want exactly {h1}", seenFirst)
	}

	posVelHP, err := w.RegisterArchetype(pos.ID(), vel.ID(), hp.ID())
	if err != nil {
		t.Fatalf("RegisterArchetype({P,V,H}) error = %v", err)
	}
	h2 := w.NewEntityIn(posVelHP)

	seenSecond := map[ecs.Handle]bool{}
	c2 := w.QueryIter(q)
	for c2.Next() {
		seenSecond[c2.Entity()] = true
	}
	if len(seenSecond) != 2 || !seenSecond[h1] || !seenSecond[h2] {
		t.Fatalf("second pass saw %v, want exactly {h1,h2}", seenSecond)
	}
}
