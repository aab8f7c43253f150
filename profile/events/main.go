// Profiling:
// go build ./profile/events
// go tool pprof -http=":8000" -nodefraction=0.001 ./events mem.prof

package main

import (
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/tactuslab/tactus"
)

type ping struct {
	Seq int64
}

func main() {
	// CPU Profiling
	f, _ := os.Create("cpu.prof")
	_ = pprof.StartCPUProfile(f)
	defer pprof.StopCPUProfile()

	rounds := 50
	ticks := 10000
	burst := 100
	run(rounds, ticks, burst)

	// Memory Profiling
	memFile, _ := os.Create("mem.prof")
	defer memFile.Close()
	runtime.GC() // Trigger garbage collection
	_ = pprof.WriteHeapProfile(memFile)
}

func run(rounds, ticks, burst int) {
	for range rounds {
		app := tactus.NewApp(tactus.Config{AutoClearEvents: true})
		tactus.RegisterEvent[ping](app)
		var sum int64
		producer := tactus.NewSystem("producer", func(w *tactus.World) error {
			evs, _ := tactus.GetResource[tactus.Events[ping]](w.Resources())
			for i := range burst {
				evs.Send(ping{Seq: int64(i)})
			}
			return nil
		})
		consumer := tactus.NewSystem("consumer", func(w *tactus.World) error {
			evs, _ := tactus.GetResource[tactus.Events[ping]](w.Resources())
			evs.Each(func(p ping) {
				sum += p.Seq
			})
			return nil
		})
		if err := app.AddSystems(tactus.Physics, producer); err != nil {
			panic(err)
		}
		if err := app.AddSystems(tactus.Process, consumer); err != nil {
			panic(err)
		}
		for range ticks {
			app.PhysicsTick(1.0 / 60.0)
			app.ProcessTick(1.0 / 60.0)
		}
	}
}
