package tactus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type ping struct{ seq int }
type pong struct{ seq int }

func TestEventsBufferedLifetime(t *testing.T) {
	var e Events[ping]
	require.True(t, e.IsEmpty())

	e.Send(ping{seq: 1})
	e.Send(ping{seq: 2})
	require.Equal(t, 2, e.Len())
	require.Equal(t, []ping{{seq: 1}, {seq: 2}}, e.Slice())

	// One turnover keeps the events readable.
	e.update()
	require.Equal(t, 2, e.Len())

	e.Send(ping{seq: 3})
	require.Equal(t, []ping{{seq: 1}, {seq: 2}, {seq: 3}}, e.Slice())

	// The next turnover drops only the older generation.
	e.update()
	require.Equal(t, []ping{{seq: 3}}, e.Slice())

	e.update()
	require.True(t, e.IsEmpty())
}

func TestEventsEachKeepsOrder(t *testing.T) {
	var e Events[ping]
	e.Send(ping{seq: 1})
	e.update()
	e.Send(ping{seq: 2})
	e.Send(ping{seq: 3})

	var got []int
	e.Each(func(p ping) { got = append(got, p.seq) })
	require.Equal(t, []int{1, 2, 3}, got)
	require.Equal(t, 3, e.Len(), "Each must not consume")
}

func TestEventsDrain(t *testing.T) {
	var e Events[ping]
	e.Send(ping{seq: 1})
	e.update()
	e.Send(ping{seq: 2})

	var got []int
	e.Drain(func(p ping) { got = append(got, p.seq) })
	require.Equal(t, []int{1, 2}, got)
	require.True(t, e.IsEmpty())

	n := 0
	e.Drain(func(ping) { n++ })
	require.Zero(t, n)
}

func TestDrainKeepsEventsSentFromHandler(t *testing.T) {
	var e Events[ping]
	e.Send(ping{seq: 1})
	e.update()
	e.Send(ping{seq: 2})

	var got []int
	e.Drain(func(p ping) {
		got = append(got, p.seq)
		if p.seq == 1 {
			e.Send(ping{seq: 3})
		}
	})
	require.Equal(t, []int{1, 2}, got, "follow-up events wait for the next pass")
	require.Equal(t, []ping{{seq: 3}}, e.Slice())

	var next []int
	e.Drain(func(p ping) { next = append(next, p.seq) })
	require.Equal(t, []int{3}, next)
	require.True(t, e.IsEmpty())
}

func TestEventsClear(t *testing.T) {
	var e Events[ping]
	e.Send(ping{seq: 1})
	e.update()
	e.Send(ping{seq: 2})

	e.Clear()
	require.True(t, e.IsEmpty())
	require.Empty(t, e.Slice())
}

func TestEventUpdateSignalConsume(t *testing.T) {
	var sig EventUpdateSignal
	require.False(t, sig.consume())

	sig.Request()
	sig.Request()
	require.True(t, sig.consume())
	require.False(t, sig.consume(), "a consumed request must not linger")
}

func TestSendEventCreatesStream(t *testing.T) {
	w := NewWorld(4)
	SendEvent(w, ping{seq: 5})

	evs, _ := GetResource[Events[ping]](w.Resources())
	require.NotNil(t, evs)
	require.Equal(t, []ping{{seq: 5}}, evs.Slice())
}

func TestRegisterEventIdempotent(t *testing.T) {
	app := NewApp(Config{})
	RegisterEvent[ping](app)
	RegisterEvent[ping](app)

	require.Equal(t, 1, app.Schedules().Get(PreProcess).Len())
	ok, _ := HasResource[Events[ping]](app.World().Resources())
	require.True(t, ok)
}

func TestEventsAccumulateUntilRequested(t *testing.T) {
	app := NewApp(Config{})
	w := app.World()
	RegisterEvent[ping](app)

	SendEvent(w, ping{seq: 1})
	SendEvent(w, ping{seq: 2})
	evs, _ := GetResource[Events[ping]](w.Resources())

	for range 3 {
		app.ProcessTick(0.016)
	}
	require.Equal(t, 2, evs.Len(), "no clear was requested, nothing may drop")

	sig, _ := GetResource[EventUpdateSignal](w.Resources())
	sig.Request()
	app.ProcessTick(0.016)
	require.Equal(t, 2, evs.Len(), "turned over events stay visible through this cycle")

	sig.Request()
	app.ProcessTick(0.016)
	require.Equal(t, 0, evs.Len())
}

func TestUpdateRequestPersistsWhileStreamEmpty(t *testing.T) {
	app := NewApp(Config{})
	w := app.World()
	RegisterEvent[ping](app)

	sig, _ := GetResource[EventUpdateSignal](w.Resources())
	sig.Request()
	app.ProcessTick(0.016)

	SendEvent(w, ping{seq: 1})
	app.ProcessTick(0.016)
	evs, _ := GetResource[Events[ping]](w.Resources())
	require.Equal(t, 1, evs.Len(), "the armed request turns the fresh event over")

	app.ProcessTick(0.016)
	require.Equal(t, 1, evs.Len(), "no further request, no further turnover")
}

func TestUpdateSignalConsumedByFirstStream(t *testing.T) {
	app := NewApp(Config{})
	w := app.World()
	RegisterEvent[ping](app)
	RegisterEvent[pong](app)

	SendEvent(w, ping{seq: 1})
	SendEvent(w, pong{seq: 1})
	pings, _ := GetResource[Events[ping]](w.Resources())
	pongs, _ := GetResource[Events[pong]](w.Resources())
	sig, _ := GetResource[EventUpdateSignal](w.Resources())

	// Each request is consumed by exactly one update system: the first
	// registered stream that still holds events.
	sig.Request()
	app.ProcessTick(0.016)
	require.Equal(t, 1, pings.Len())
	require.Equal(t, 1, pongs.Len())

	sig.Request()
	app.ProcessTick(0.016)
	require.Equal(t, 0, pings.Len(), "two requests retire the first stream's event")
	require.Equal(t, 1, pongs.Len(), "the second stream never saw a request")

	sig.Request()
	app.ProcessTick(0.016)
	sig.Request()
	app.ProcessTick(0.016)
	require.Equal(t, 0, pongs.Len(), "once the first stream is empty, requests reach the second")
}

func TestEventsWithoutSignalTurnOverEveryTick(t *testing.T) {
	app := NewApp(Config{})
	w := app.World()
	RegisterEvent[ping](app)
	require.True(t, RemoveResource[EventUpdateSignal](w.Resources()))

	var seen []int
	require.NoError(t, app.AddSystems(Process, NewSystem("observe", func(w *World) error {
		evs, _ := GetResource[Events[ping]](w.Resources())
		seen = append(seen, evs.Len())
		return nil
	})))

	SendEvent(w, ping{seq: 1})
	app.ProcessTick(0.016)
	app.ProcessTick(0.016)
	require.Equal(t, []int{1, 0}, seen, "without the signal an event lives exactly one extra tick")
}

func TestRequestEventUpdateSystem(t *testing.T) {
	w := NewWorld(4)
	w.Resources().Add(&EventUpdateSignal{})

	sys := RequestEventUpdate()
	require.Equal(t, "events:request_update", sys.Name())
	require.NoError(t, sys.run(w))

	sig, _ := GetResource[EventUpdateSignal](w.Resources())
	require.True(t, sig.consume())

	// Tolerates a world without the signal resource.
	require.NoError(t, sys.run(NewWorld(4)))
}
