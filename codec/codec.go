// Package codec is the public face of the MIDI <-> Score transformation.
// Both directions are pure: no shared state, safe for concurrent requests.
package codec

import (
	"fmt"

	"github.com/sunsetsobserver/midi-json-API/model"
	"github.com/sunsetsobserver/midi-json-API/notes"
	"github.com/sunsetsobserver/midi-json-API/smf"
	"github.com/sunsetsobserver/midi-json-API/timemap"
)

const microsPerMinute = 60_000_000

// Decode parses raw SMF bytes into a Score. Warnings report tolerated input
// damage (currently only unterminated notes); the error is one of the model
// error kinds and means no Score was produced.
func Decode(data []byte) (*model.Score, []string, error) {
	header, events, err := smf.Parse(data)
	if err != nil {
		return nil, nil, err
	}
	merged := smf.Merge(events)

	var tempos []timemap.TickTempo
	type tickSig struct {
		tick uint64
		sig  model.TimeSignature
	}
	var sigs []tickSig

	for _, evt := range merged {
		switch evt.Kind {
		case smf.Tempo:
			if evt.MicrosPerQuarter == 0 {
				return nil, nil, fmt.Errorf("%w: zero microseconds per quarter note", model.ErrInvalidTempo)
			}
			tempos = append(tempos, timemap.TickTempo{
				Tick: evt.Tick,
				BPM:  float64(microsPerMinute) / float64(evt.MicrosPerQuarter),
			})
		case smf.TimeSignature:
			if evt.Numerator == 0 {
				return nil, nil, fmt.Errorf("%w: time signature with zero numerator", model.ErrMalformedStream)
			}
			if evt.DenomPow > 30 {
				return nil, nil, fmt.Errorf("%w: time signature denominator 2^%d", model.ErrMalformedStream, evt.DenomPow)
			}
			sigs = append(sigs, tickSig{tick: evt.Tick, sig: model.TimeSignature{
				Numerator:   int(evt.Numerator),
				Denominator: 1 << evt.DenomPow,
			}})
		}
	}

	tm, err := timemap.FromTicks(header.Resolution, tempos)
	if err != nil {
		return nil, nil, err
	}

	score := &model.Score{
		Resolution:   header.Resolution,
		TempoChanges: tm.TempoChanges(),
	}

	// merged order means sigs are tick-sorted; same-time duplicates collapse
	// to the last one
	for _, ts := range sigs {
		sig := ts.sig
		sig.Time = tm.Seconds(ts.tick)
		if n := len(score.TimeSignatures); n > 0 && score.TimeSignatures[n-1].Time == sig.Time {
			score.TimeSignatures[n-1] = sig
			continue
		}
		score.TimeSignatures = append(score.TimeSignatures, sig)
	}

	instruments, warnings := notes.Assemble(merged, tm, smf.FinalTick(merged))
	score.Instruments = instruments
	return score, warnings, nil
}
