// Package timemap converts between absolute ticks and seconds over a
// piecewise-constant tempo function.
package timemap

import (
	"fmt"
	"math"
	"sort"

	"github.com/sunsetsobserver/midi-json-API/constants"
	"github.com/sunsetsobserver/midi-json-API/model"
)

// TickTempo is a tempo change located in tick space, as read from a file.
type TickTempo struct {
	Tick uint64
	BPM  float64
}

// anchor pins one tempo segment: from this tick/second pair onward, time
// advances at 60/(bpm*resolution) seconds per tick.
type anchor struct {
	tick    uint64
	seconds float64
	bpm     float64
}

type TimeMap struct {
	resolution uint16
	anchors    []anchor
}

func validTempo(bpm float64) error {
	if math.IsNaN(bpm) || math.IsInf(bpm, 0) || bpm <= 0 {
		return fmt.Errorf("%w: %v BPM", model.ErrInvalidTempo, bpm)
	}
	return nil
}

// FromTicks builds a TimeMap from tempo changes in tick space. Changes are
// sorted; on duplicate ticks the last one wins. An implicit default tempo is
// inserted at tick 0 when none is given there.
func FromTicks(resolution uint16, changes []TickTempo) (*TimeMap, error) {
	if resolution == 0 {
		return nil, fmt.Errorf("%w: zero resolution", model.ErrValueOutOfRange)
	}

	sorted := make([]TickTempo, len(changes))
	copy(sorted, changes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Tick < sorted[j].Tick })

	m := &TimeMap{resolution: resolution}
	m.anchors = append(m.anchors, anchor{tick: 0, seconds: 0, bpm: constants.DefaultTempo})
	for _, change := range sorted {
		if err := validTempo(change.BPM); err != nil {
			return nil, err
		}
		prev := &m.anchors[len(m.anchors)-1]
		if change.Tick == prev.tick {
			prev.bpm = change.BPM
			continue
		}
		seconds := prev.seconds + float64(change.Tick-prev.tick)*60/(prev.bpm*float64(resolution))
		m.anchors = append(m.anchors, anchor{tick: change.Tick, seconds: seconds, bpm: change.BPM})
	}
	return m, nil
}

// FromSeconds builds a TimeMap from a seconds-space tempo list (the encode
// direction). The list must be sorted with unique times.
func FromSeconds(resolution uint16, changes []model.TempoChange) (*TimeMap, error) {
	if resolution == 0 {
		return nil, fmt.Errorf("%w: zero resolution", model.ErrValueOutOfRange)
	}

	m := &TimeMap{resolution: resolution}
	m.anchors = append(m.anchors, anchor{tick: 0, seconds: 0, bpm: constants.DefaultTempo})
	for i, change := range changes {
		if err := validTempo(change.Tempo); err != nil {
			return nil, err
		}
		prev := &m.anchors[len(m.anchors)-1]
		if i > 0 && change.Time <= prev.seconds {
			return nil, fmt.Errorf("%w: tempo changes not strictly time-ordered at %vs", model.ErrValueOutOfRange, change.Time)
		}
		if change.Time == 0 {
			prev.bpm = change.Tempo
			continue
		}
		if change.Time < 0 {
			return nil, fmt.Errorf("%w: tempo change at %vs", model.ErrValueOutOfRange, change.Time)
		}
		tick := prev.tick + secondsToTicks(change.Time-prev.seconds, prev.bpm, resolution)
		m.anchors = append(m.anchors, anchor{tick: tick, seconds: change.Time, bpm: change.Tempo})
	}
	return m, nil
}

func secondsToTicks(seconds, bpm float64, resolution uint16) uint64 {
	return uint64(math.Round(seconds * bpm * float64(resolution) / 60))
}

// Seconds converts an absolute tick to seconds. The segment whose anchor is
// at or before the tick applies.
func (m *TimeMap) Seconds(tick uint64) float64 {
	i := sort.Search(len(m.anchors), func(i int) bool { return m.anchors[i].tick > tick }) - 1
	a := m.anchors[i]
	return a.seconds + float64(tick-a.tick)*60/(a.bpm*float64(m.resolution))
}

// Ticks converts seconds to the nearest absolute tick.
func (m *TimeMap) Ticks(seconds float64) uint64 {
	if seconds <= 0 {
		return 0
	}
	i := sort.Search(len(m.anchors), func(i int) bool { return m.anchors[i].seconds > seconds }) - 1
	a := m.anchors[i]
	return a.tick + secondsToTicks(seconds-a.seconds, a.bpm, m.resolution)
}

// TempoChanges returns the map's anchors as a seconds-space tempo list.
func (m *TimeMap) TempoChanges() []model.TempoChange {
	res := make([]model.TempoChange, 0, len(m.anchors))
	for _, a := range m.anchors {
		res = append(res, model.TempoChange{Time: a.seconds, Tempo: a.bpm})
	}
	return res
}

// AnchorTicks returns the tick position of every tempo change, aligned with
// TempoChanges. The serializer uses these for the conductor track.
func (m *TimeMap) AnchorTicks() []uint64 {
	res := make([]uint64, 0, len(m.anchors))
	for _, a := range m.anchors {
		res = append(res, a.tick)
	}
	return res
}
