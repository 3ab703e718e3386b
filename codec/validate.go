package codec

import (
	"fmt"
	"math"

	"github.com/sunsetsobserver/midi-json-API/model"
)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate checks every field domain of a Score. Encode calls it before
// writing anything, so a failed encode never leaves partial output.
func Validate(score *model.Score) error {
	if score == nil {
		return fmt.Errorf("%w: no score given", model.ErrValueOutOfRange)
	}

	prevTime := math.Inf(-1)
	for _, change := range score.TempoChanges {
		if !finite(change.Time) || change.Time < 0 {
			return fmt.Errorf("%w: tempo change at time %v", model.ErrValueOutOfRange, change.Time)
		}
		if change.Time <= prevTime {
			return fmt.Errorf("%w: tempo change times must be strictly increasing", model.ErrValueOutOfRange)
		}
		prevTime = change.Time
		if !finite(change.Tempo) || change.Tempo <= 0 {
			return fmt.Errorf("%w: %v BPM", model.ErrInvalidTempo, change.Tempo)
		}
	}

	prevTime = math.Inf(-1)
	for _, sig := range score.TimeSignatures {
		if !finite(sig.Time) || sig.Time < 0 {
			return fmt.Errorf("%w: time signature at time %v", model.ErrValueOutOfRange, sig.Time)
		}
		if sig.Time <= prevTime {
			return fmt.Errorf("%w: time signature times must be strictly increasing", model.ErrValueOutOfRange)
		}
		prevTime = sig.Time
		if sig.Numerator <= 0 || sig.Numerator > 255 {
			return fmt.Errorf("%w: time signature numerator %d", model.ErrValueOutOfRange, sig.Numerator)
		}
		d := sig.Denominator
		if d <= 0 || d > 1<<30 || d&(d-1) != 0 {
			return fmt.Errorf("%w: time signature denominator %d is not a power of two", model.ErrValueOutOfRange, d)
		}
	}

	for i, inst := range score.Instruments {
		if inst.Program > 127 {
			return fmt.Errorf("%w: instrument %d program %d", model.ErrValueOutOfRange, i, inst.Program)
		}
		if inst.Channel > 15 {
			return fmt.Errorf("%w: instrument %d channel %d", model.ErrValueOutOfRange, i, inst.Channel)
		}
		for j, note := range inst.Notes {
			if note.Pitch > 127 {
				return fmt.Errorf("%w: instrument %d note %d pitch %d", model.ErrValueOutOfRange, i, j, note.Pitch)
			}
			if note.Velocity > 127 {
				return fmt.Errorf("%w: instrument %d note %d velocity %d", model.ErrValueOutOfRange, i, j, note.Velocity)
			}
			if !finite(note.Start) || note.Start < 0 {
				return fmt.Errorf("%w: instrument %d note %d start %v", model.ErrValueOutOfRange, i, j, note.Start)
			}
			if !finite(note.Duration) || note.Duration < 0 {
				return fmt.Errorf("%w: instrument %d note %d duration %v", model.ErrValueOutOfRange, i, j, note.Duration)
			}
		}
	}
	return nil
}
