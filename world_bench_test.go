package tactus

import (
	"fmt"
	"testing"
)

type Position struct{ X, Y float32 }
type Velocity struct{ VX, VY float32 }

func BenchmarkBuilderNewEntity(b *testing.B) {
	sizes := []int{1000, 10000, 100000, 1000000}
	for _, size := range sizes {
		name := fmt.Sprintf("%dK", size/1000)
		if size == 1000000 {
			name = "1M"
		}
		b.Run(name, func(b *testing.B) {
			for b.Loop() {
				b.StopTimer()
				w := NewWorld(size)
				builder := NewBuilder[Position](w)
				b.StartTimer()
				for range size {
					builder.NewEntity()
				}
			}
			b.ReportAllocs()
		})
	}
}

func BenchmarkBuilderNewEntitiesWithValue(b *testing.B) {
	sizes := []int{1000, 10000, 100000, 1000000}
	for _, size := range sizes {
		name := fmt.Sprintf("%dK", size/1000)
		if size == 1000000 {
			name = "1M"
		}
		b.Run(name, func(b *testing.B) {
			val := Position{1, 2}
			for b.Loop() {
				b.StopTimer()
				w := NewWorld(size)
				builder := NewBuilder[Position](w)
				b.StartTimer()
				builder.NewEntitiesWithValue(size, val)
			}
			b.ReportAllocs()
		})
	}
}

func BenchmarkFilterIterate(b *testing.B) {
	sizes := []int{1000, 10000, 100000, 1000000}
	for _, size := range sizes {
		name := fmt.Sprintf("%dK", size/1000)
		if size == 1000000 {
			name = "1M"
		}
		b.Run(name, func(b *testing.B) {
			w := NewWorld(size)
			builder := NewBuilder2[Position, Velocity](w)
			builder.NewEntitiesWithValues(size, Position{}, Velocity{VX: 1, VY: 1})
			f := NewFilter2[Position, Velocity](w)
			b.ReportAllocs()
			b.ResetTimer()
			for b.Loop() {
				f.Reset()
				for f.Next() {
					p, v := f.Get()
					p.X += v.VX
					p.Y += v.VY
				}
			}
		})
	}
}

func BenchmarkTickPipeline(b *testing.B) {
	sizes := []int{1000, 10000, 100000}
	for _, size := range sizes {
		b.Run(fmt.Sprintf("%dK", size/1000), func(b *testing.B) {
			app := NewApp(Config{WorldCapacity: size})
			w := app.World()
			builder := NewBuilder2[Position, Velocity](w)
			builder.NewEntitiesWithValues(size, Position{}, Velocity{VX: 1, VY: 1})
			moving := NewFilter2[Position, Velocity](w)
			err := app.AddSystems(Physics, NewSystem("bench:move", func(w *World) error {
				dt := float32(PhysicsDeltaSeconds(w))
				moving.Reset()
				for moving.Next() {
					p, v := moving.Get()
					p.X += v.VX * dt
					p.Y += v.VY * dt
				}
				return nil
			}))
			if err != nil {
				b.Fatal(err)
			}
			b.ReportAllocs()
			b.ResetTimer()
			for b.Loop() {
				app.PhysicsTick(1.0 / 60.0)
				app.ProcessTick(1.0 / 60.0)
			}
		})
	}
}

func BenchmarkEventsSendDrain(b *testing.B) {
	bursts := []int{10, 100, 1000}
	for _, burst := range bursts {
		b.Run(fmt.Sprintf("%d", burst), func(b *testing.B) {
			var stream Events[Position]
			b.ReportAllocs()
			for b.Loop() {
				for j := range burst {
					stream.Send(Position{X: float32(j)})
				}
				n := 0
				stream.Drain(func(Position) { n++ })
				if n != burst {
					b.Fatal("lost events")
				}
			}
		})
	}
}
