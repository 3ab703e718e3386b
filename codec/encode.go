package codec

import (
	"fmt"
	"math"
	"math/bits"
	"sort"

	"github.com/sunsetsobserver/midi-json-API/constants"
	"github.com/sunsetsobserver/midi-json-API/model"
	"github.com/sunsetsobserver/midi-json-API/smf"
	"github.com/sunsetsobserver/midi-json-API/timemap"
)

// event ordering within a track at equal ticks: metas and program changes
// first, then note-offs, then note-ons, so zero-length notes and reused
// pitches never interleave wrongly.
const (
	rankMeta = iota
	rankNoteOff
	rankNoteOn
)

type pendingMessage struct {
	tick  uint64
	rank  int
	pitch uint8
	data  []byte
}

func sortPending(msgs []pendingMessage) []smf.Message {
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].tick != msgs[j].tick {
			return msgs[i].tick < msgs[j].tick
		}
		if msgs[i].rank != msgs[j].rank {
			return msgs[i].rank < msgs[j].rank
		}
		return msgs[i].pitch < msgs[j].pitch
	})
	res := make([]smf.Message, 0, len(msgs))
	for _, m := range msgs {
		res = append(res, smf.Message{Tick: m.tick, Data: m.data})
	}
	return res
}

// Encode serializes a Score to SMF bytes: a conductor track carrying the
// tempo and time-signature metas plus one track per instrument. The whole
// Score is validated before a single byte is produced.
func Encode(score *model.Score) ([]byte, error) {
	if err := Validate(score); err != nil {
		return nil, err
	}

	resolution := score.Resolution
	if resolution == 0 {
		resolution = constants.DefaultResolution
	}

	tm, err := timemap.FromSeconds(resolution, score.TempoChanges)
	if err != nil {
		return nil, err
	}

	var conductor []pendingMessage
	anchorTicks := tm.AnchorTicks()
	for i, change := range tm.TempoChanges() {
		micros := uint32(math.Round(microsPerMinute / change.Tempo))
		if micros > 0xFFFFFF {
			return nil, fmt.Errorf("%w: tempo %v BPM does not fit a tempo meta event", model.ErrInvalidTempo, change.Tempo)
		}
		conductor = append(conductor, pendingMessage{
			tick: anchorTicks[i],
			rank: rankMeta,
			data: smf.TempoMessage(micros),
		})
	}
	for _, sig := range score.TimeSignatures {
		denomPow := uint8(bits.TrailingZeros(uint(sig.Denominator)))
		conductor = append(conductor, pendingMessage{
			tick: tm.Ticks(sig.Time),
			rank: rankMeta,
			data: smf.TimeSignatureMessage(uint8(sig.Numerator), denomPow),
		})
	}

	tracks := [][]smf.Message{sortPending(conductor)}
	nonDrum := 0
	for _, inst := range score.Instruments {
		tracks = append(tracks, instrumentTrack(inst, assignChannel(inst, &nonDrum), tm))
	}
	return smf.WriteFile(resolution, tracks)
}

// assignChannel gives every instrument its own channel: drums always get the
// drum channel, non-drum instruments cycle through the remaining fifteen.
// The requested channel is not honored (channel is best-effort only); if it
// were, two same-channel instruments with different programs would re-label
// each other's notes on decode.
func assignChannel(inst model.Instrument, nonDrum *int) uint8 {
	if inst.IsDrum {
		return constants.DrumChannel
	}
	channel := uint8(*nonDrum % 15)
	if channel >= constants.DrumChannel {
		channel++
	}
	*nonDrum++
	return channel
}

// instrumentTrack lays out one instrument's events on its assigned channel.
func instrumentTrack(inst model.Instrument, channel uint8, tm *timemap.TimeMap) []smf.Message {
	var msgs []pendingMessage
	if inst.Program != constants.DefaultProgram {
		msgs = append(msgs, pendingMessage{
			tick: 0,
			rank: rankMeta,
			data: smf.ProgramChangeMessage(channel, inst.Program),
		})
	}
	for _, note := range inst.Notes {
		startTick := tm.Ticks(note.Start)
		endTick := tm.Ticks(note.End())
		msgs = append(msgs, pendingMessage{
			tick:  startTick,
			rank:  rankNoteOn,
			pitch: note.Pitch,
			data:  smf.NoteOnMessage(channel, note.Pitch, note.Velocity),
		})
		msgs = append(msgs, pendingMessage{
			tick:  endTick,
			rank:  rankNoteOff,
			pitch: note.Pitch,
			data:  smf.NoteOffMessage(channel, note.Pitch, 0),
		})
	}
	return sortPending(msgs)
}
