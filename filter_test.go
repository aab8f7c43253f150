package tactus_test

import (
	"testing"

	"github.com/tactuslab/tactus"
)

// go test -run ^TestFilter$ . -count 1
func TestFilter(t *testing.T) {
	world := tactus.NewWorld(16)

	posOnly := tactus.NewBuilder[Position](world)
	for i := range 3 {
		e := posOnly.NewEntity()
		posOnly.Set(e, Position{X: float32(10 * (i + 1))})
	}

	posVel := tactus.NewBuilder2[Position, Velocity](world)
	posVel.NewEntitiesWithValues(2, Position{X: 1}, Velocity{VX: 5})

	filter := tactus.NewFilter[Position](world)
	if filter.Count() != 5 {
		t.Fatalf("Expected 5 entities with Position, got %d", filter.Count())
	}

	var sum float32
	seen := 0
	for filter.Next() {
		sum += filter.Get().X
		if !world.IsValid(filter.Entity()) {
			t.Error("Filter yielded an invalid entity")
		}
		seen++
	}
	if seen != 5 {
		t.Errorf("Iterated %d entities, expected 5", seen)
	}
	if sum != 62 {
		t.Errorf("Expected component sum 62, got %v", sum)
	}
}

// go test -run ^TestFilter2$ . -count 1
func TestFilter2(t *testing.T) {
	world := tactus.NewWorld(16)

	posOnly := tactus.NewBuilder[Position](world)
	posOnly.NewEntities(3)

	posVel := tactus.NewBuilder2[Position, Velocity](world)
	posVel.NewEntitiesWithValues(2, Position{X: 7}, Velocity{VX: 3})

	filter := tactus.NewFilter2[Position, Velocity](world)
	if filter.Count() != 2 {
		t.Fatalf("Expected 2 entities with Position+Velocity, got %d", filter.Count())
	}
	for filter.Next() {
		p, v := filter.Get()
		if p.X != 7 || v.VX != 3 {
			t.Errorf("Incorrect component data: pos %+v vel %+v", p, v)
		}
	}
}

// go test -run ^TestFilter3$ . -count 1
func TestFilter3(t *testing.T) {
	world := tactus.NewWorld(16)

	full := tactus.NewBuilder3[Position, Velocity, Health](world)
	full.NewEntitiesWithValues(2, Position{X: 1}, Velocity{VX: 2}, Health{Current: 9, Max: 10})

	partial := tactus.NewBuilder2[Position, Velocity](world)
	partial.NewEntities(4)

	filter := tactus.NewFilter3[Position, Velocity, Health](world)
	count := 0
	for filter.Next() {
		p, v, h := filter.Get()
		if p.X != 1 || v.VX != 2 || h.Current != 9 {
			t.Errorf("Incorrect component data: %+v %+v %+v", p, v, h)
		}
		count++
	}
	if count != 2 {
		t.Errorf("Expected 2 matches, got %d", count)
	}
}

// go test -run ^TestFilterPicksUpNewArchetypes$ . -count 1
func TestFilterPicksUpNewArchetypes(t *testing.T) {
	world := tactus.NewWorld(16)
	filter := tactus.NewFilter[Position](world)
	if filter.Count() != 0 {
		t.Fatalf("Expected empty filter, got %d", filter.Count())
	}

	posOnly := tactus.NewBuilder[Position](world)
	posOnly.NewEntity()
	if filter.Count() != 1 {
		t.Errorf("Filter missed an archetype created after it, got %d", filter.Count())
	}

	posVel := tactus.NewBuilder2[Position, Velocity](world)
	posVel.NewEntity()
	filter.Reset()
	count := 0
	for filter.Next() {
		count++
	}
	if count != 2 {
		t.Errorf("Expected 2 entities across both archetypes, got %d", count)
	}
}

// go test -run ^TestFilterSkipsEmptiedArchetype$ . -count 1
func TestFilterSkipsEmptiedArchetype(t *testing.T) {
	world := tactus.NewWorld(16)

	posOnly := tactus.NewBuilder[Position](world)
	drained := make([]tactus.Entity, 3)
	for i := range drained {
		drained[i] = posOnly.NewEntity()
	}

	posVel := tactus.NewBuilder2[Position, Velocity](world)
	posVel.NewEntitiesWithValues(2, Position{X: 42}, Velocity{})

	for _, e := range drained {
		world.RemoveEntity(e)
	}

	// The first matching archetype is now empty; iteration must move past
	// it instead of yielding stale slots.
	filter := tactus.NewFilter[Position](world)
	count := 0
	for filter.Next() {
		if filter.Get().X != 42 {
			t.Errorf("Yielded data from an emptied archetype: %+v", filter.Get())
		}
		count++
	}
	if count != 2 {
		t.Errorf("Expected 2 entities, got %d", count)
	}
	if filter.Count() != 2 {
		t.Errorf("Count disagrees with iteration: %d", filter.Count())
	}
}

// go test -run ^TestFilterRemoveEntities$ . -count 1
func TestFilterRemoveEntities(t *testing.T) {
	world := tactus.NewWorld(16)

	posOnly := tactus.NewBuilder[Position](world)
	posOnly.NewEntities(5)

	posVel := tactus.NewBuilder2[Position, Velocity](world)
	posVel.NewEntities(2)

	tactus.NewFilter[Velocity](world).RemoveEntities()

	if world.Alive() != 5 {
		t.Errorf("Expected 5 survivors, got %d", world.Alive())
	}
	if n := tactus.NewFilter2[Position, Velocity](world).Count(); n != 0 {
		t.Errorf("Expected no Position+Velocity entities left, got %d", n)
	}
	if n := tactus.NewFilter[Position](world).Count(); n != 5 {
		t.Errorf("Expected the Position-only entities untouched, got %d", n)
	}
}

// go test -run ^TestBuilderBatches$ . -count 1
func TestBuilderBatches(t *testing.T) {
	world := tactus.NewWorld(4)

	builder := tactus.NewBuilder[Health](world)
	builder.NewEntities(100)
	if world.Alive() != 100 {
		t.Fatalf("Expected 100 entities after batch create, got %d", world.Alive())
	}

	builder.NewEntitiesWithValue(50, Health{Current: 3, Max: 8})

	filter := tactus.NewFilter[Health](world)
	if filter.Count() != 150 {
		t.Fatalf("Expected 150 entities, got %d", filter.Count())
	}
	initialized := 0
	for filter.Next() {
		if h := filter.Get(); h.Current == 3 && h.Max == 8 {
			initialized++
		}
	}
	if initialized != 50 {
		t.Errorf("Expected 50 entities with the given value, got %d", initialized)
	}
}
