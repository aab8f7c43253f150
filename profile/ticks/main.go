// Profiling:
// go build ./profile/ticks
// go tool pprof -http=":8000" -nodefraction=0.001 ./ticks mem.pprof

package main

import (
	"github.com/pkg/profile"

	"github.com/tactuslab/tactus"
)

type position struct {
	X, Y float64
}

type velocity struct {
	DX, DY float64
}

func main() {
	rounds := 20
	ticks := 10000
	entities := 10000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, ticks, entities)
	p.Stop()
}

func run(rounds, ticks, numEntities int) {
	for range rounds {
		app := tactus.NewApp(tactus.Config{WorldCapacity: numEntities})
		w := app.World()
		builder := tactus.NewBuilder2[position, velocity](w)
		builder.NewEntitiesWithValues(numEntities, position{}, velocity{DX: 1, DY: 1})
		bodies := tactus.NewFilter2[position, velocity](w)
		move := tactus.NewSystem("move", func(w *tactus.World) error {
			dt := tactus.PhysicsDeltaSeconds(w)
			bodies.Reset()
			for bodies.Next() {
				pos, vel := bodies.Get()
				pos.X += vel.DX * dt
				pos.Y += vel.DY * dt
			}
			return nil
		})
		if err := app.AddSystems(tactus.Physics, move); err != nil {
			panic(err)
		}
		for range ticks {
			app.PhysicsTick(1.0 / 60.0)
			app.ProcessTick(1.0 / 60.0)
		}
	}
}
