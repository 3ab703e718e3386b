package timemap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sunsetsobserver/midi-json-API/model"
)

func TestConstantTempo(t *testing.T) {
	m, err := FromTicks(220, []TickTempo{{Tick: 0, BPM: 120}})
	assert := assert.New(t)
	assert.NoError(err)

	// at 120 BPM a quarter note is half a second
	assert.InDelta(0.0, m.Seconds(0), 1e-9)
	assert.InDelta(0.5, m.Seconds(220), 1e-9)
	assert.InDelta(1.0, m.Seconds(440), 1e-9)

	assert.Equal(uint64(0), m.Ticks(0))
	assert.Equal(uint64(220), m.Ticks(0.5))
	assert.Equal(uint64(110), m.Ticks(0.25))
}

func TestDefaultTempoWhenNoneGiven(t *testing.T) {
	m, err := FromTicks(96, nil)
	assert := assert.New(t)
	assert.NoError(err)
	assert.InDelta(0.5, m.Seconds(96), 1e-9)

	changes := m.TempoChanges()
	assert.Equal([]model.TempoChange{{Time: 0, Tempo: 120}}, changes)
}

func TestTempoChangeMidStream(t *testing.T) {
	// 120 BPM until tick 480, then 60 BPM
	m, err := FromTicks(240, []TickTempo{{Tick: 0, BPM: 120}, {Tick: 480, BPM: 60}})
	assert := assert.New(t)
	assert.NoError(err)

	assert.InDelta(1.0, m.Seconds(480), 1e-9)
	// past the change every tick is twice as long
	assert.InDelta(2.0, m.Seconds(720), 1e-9)
	assert.Equal(uint64(720), m.Ticks(2.0))
}

func TestChangeAppliesAtItsOwnTick(t *testing.T) {
	m, err := FromTicks(100, []TickTempo{{Tick: 100, BPM: 240}})
	assert := assert.New(t)
	assert.NoError(err)

	// ticks 0-99 at the implicit 120, tick 100 onward at 240
	assert.InDelta(0.5, m.Seconds(100), 1e-9)
	assert.InDelta(0.5+0.25, m.Seconds(200), 1e-9)
}

func TestDuplicateTickLastWins(t *testing.T) {
	m, err := FromTicks(100, []TickTempo{{Tick: 0, BPM: 120}, {Tick: 0, BPM: 60}})
	assert := assert.New(t)
	assert.NoError(err)
	assert.InDelta(1.0, m.Seconds(100), 1e-9)
}

func TestMonotonicSeconds(t *testing.T) {
	m, err := FromTicks(220, []TickTempo{
		{Tick: 0, BPM: 90},
		{Tick: 333, BPM: 200},
		{Tick: 334, BPM: 31.25},
		{Tick: 10000, BPM: 500},
	})
	if err != nil {
		t.Fatal(err)
	}
	prev := -1.0
	for tick := uint64(0); tick < 12000; tick += 7 {
		s := m.Seconds(tick)
		if s < prev {
			t.Fatalf("seconds decreased at tick %d: %v < %v", tick, s, prev)
		}
		prev = s
	}
}

func TestFromSecondsPlacesTicksAcrossTempoChange(t *testing.T) {
	// 120 BPM, then 60 BPM from 2.0s; a note at 3.0s must land at
	// ticks(2.0s@120) + ticks(1.0s@60)
	m, err := FromSeconds(220, []model.TempoChange{{Time: 0, Tempo: 120}, {Time: 2.0, Tempo: 60}})
	assert := assert.New(t)
	assert.NoError(err)

	at120 := uint64(2.0 * 120 * 220 / 60)
	at60 := uint64(1.0 * 60 * 220 / 60)
	assert.Equal(at120+at60, m.Ticks(3.0))
	assert.Equal([]uint64{0, at120}, m.AnchorTicks())
}

func TestFromSecondsImplicitInitialTempo(t *testing.T) {
	m, err := FromSeconds(220, []model.TempoChange{{Time: 1.0, Tempo: 60}})
	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal([]model.TempoChange{{Time: 0, Tempo: 120}, {Time: 1.0, Tempo: 60}}, m.TempoChanges())
}

func TestRoundTripTickSecondsTick(t *testing.T) {
	m, err := FromTicks(220, []TickTempo{{Tick: 0, BPM: 113}, {Tick: 777, BPM: 61.5}})
	if err != nil {
		t.Fatal(err)
	}
	for _, tick := range []uint64{0, 1, 219, 220, 776, 777, 778, 50000} {
		if got := m.Ticks(m.Seconds(tick)); got != tick {
			t.Errorf("tick %d round-tripped to %d", tick, got)
		}
	}
}

func TestRejectsInvalidTempo(t *testing.T) {
	assert := assert.New(t)

	_, err := FromTicks(220, []TickTempo{{Tick: 0, BPM: 0}})
	assert.True(errors.Is(err, model.ErrInvalidTempo))

	_, err = FromTicks(220, []TickTempo{{Tick: 0, BPM: -12}})
	assert.True(errors.Is(err, model.ErrInvalidTempo))

	_, err = FromSeconds(220, []model.TempoChange{{Time: 0, Tempo: 0}})
	assert.True(errors.Is(err, model.ErrInvalidTempo))
}

func TestFromSecondsRejectsUnorderedChanges(t *testing.T) {
	_, err := FromSeconds(220, []model.TempoChange{{Time: 2, Tempo: 100}, {Time: 1, Tempo: 90}})
	assert.True(t, errors.Is(err, model.ErrValueOutOfRange))
}
