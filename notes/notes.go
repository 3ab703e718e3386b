// Package notes pairs note-on/note-off events into Note records and groups
// them into Instruments.
package notes

import (
	"fmt"
	"sort"

	"github.com/sunsetsobserver/midi-json-API/constants"
	"github.com/sunsetsobserver/midi-json-API/model"
	"github.com/sunsetsobserver/midi-json-API/smf"
	"github.com/sunsetsobserver/midi-json-API/timemap"
)

type instrumentKey struct {
	channel uint8
	program uint8
	isDrum  bool
}

type openKey struct {
	channel uint8
	pitch   uint8
}

type openNote struct {
	startTick uint64
	velocity  uint8
	program   uint8
}

// Assemble walks merged, tick-ordered events and builds one Instrument per
// (channel, program, is_drum) grouping, in first-seen order. A note's
// program is whatever the channel's most recent program change said when the
// note started; is_drum is inferred from the General MIDI drum channel.
//
// Overlapping same-pitch notes close FIFO: the oldest open note-on is ended
// first. A note-off with nothing open is dropped. Notes still open at the
// end of the stream are force-closed at finalTick and reported as warnings.
func Assemble(events []smf.RawEvent, tm *timemap.TimeMap, finalTick uint64) ([]model.Instrument, []string) {
	var channelProgram [16]uint8
	open := make(map[openKey][]openNote)
	instruments := make(map[instrumentKey]*model.Instrument)
	var order []instrumentKey
	var warnings []string

	closeNote := func(key openKey, endTick uint64) bool {
		queue := open[key]
		if len(queue) == 0 {
			return false
		}
		on := queue[0]
		open[key] = queue[1:]

		ik := instrumentKey{
			channel: key.channel,
			program: on.program,
			isDrum:  key.channel == constants.DrumChannel,
		}
		inst, ok := instruments[ik]
		if !ok {
			inst = &model.Instrument{Program: ik.program, IsDrum: ik.isDrum, Channel: ik.channel}
			instruments[ik] = inst
			order = append(order, ik)
		}

		start := tm.Seconds(on.startTick)
		inst.Notes = append(inst.Notes, model.Note{
			Start:    start,
			Duration: tm.Seconds(endTick) - start,
			Pitch:    key.pitch,
			Velocity: on.velocity,
		})
		return true
	}

	for _, evt := range events {
		switch evt.Kind {
		case smf.ProgramChange:
			channelProgram[evt.Channel&0x0F] = evt.Program
		case smf.NoteOn:
			key := openKey{channel: evt.Channel, pitch: evt.Pitch}
			if evt.Velocity == 0 {
				closeNote(key, evt.Tick)
				continue
			}
			open[key] = append(open[key], openNote{
				startTick: evt.Tick,
				velocity:  evt.Velocity,
				program:   channelProgram[evt.Channel&0x0F],
			})
		case smf.NoteOff:
			closeNote(openKey{channel: evt.Channel, pitch: evt.Pitch}, evt.Tick)
		}
	}

	// force-close leftovers in a fixed channel/pitch order
	for channel := uint8(0); channel < 16; channel++ {
		for pitch := 0; pitch < 128; pitch++ {
			key := openKey{channel: channel, pitch: uint8(pitch)}
			for len(open[key]) > 0 {
				closeNote(key, finalTick)
				warnings = append(warnings, fmt.Sprintf(
					"unterminated note on channel %d pitch %d force-closed at tick %d", channel, pitch, finalTick))
			}
		}
	}

	res := make([]model.Instrument, 0, len(order))
	for _, ik := range order {
		inst := instruments[ik]
		sort.SliceStable(inst.Notes, func(i, j int) bool {
			if inst.Notes[i].Start != inst.Notes[j].Start {
				return inst.Notes[i].Start < inst.Notes[j].Start
			}
			return inst.Notes[i].Pitch < inst.Notes[j].Pitch
		})
		res = append(res, *inst)
	}
	return res, warnings
}
