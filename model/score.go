package model

// Note is a single played note with times in seconds. Once the assembler
// emits it, it is never mutated.
type Note struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Pitch    uint8   `json:"pitch"`
	Velocity uint8   `json:"velocity"`
}

// End returns Start + Duration.
func (n Note) End() float64 {
	return n.Start + n.Duration
}

// Instrument groups the notes that share a (channel, program, is_drum)
// assignment. Channel is best-effort: the SMF layout does not survive a
// round trip, only the notes do.
type Instrument struct {
	Program uint8  `json:"program"`
	IsDrum  bool   `json:"is_drum"`
	Channel uint8  `json:"channel"`
	Notes   []Note `json:"notes"`
}

// TempoChange sets the tempo in beats per minute from Time (seconds) onward.
type TempoChange struct {
	Time  float64 `json:"time"`
	Tempo float64 `json:"tempo"`
}

// TimeSignature is informational only and does not affect tempo math.
type TimeSignature struct {
	Time        float64 `json:"time"`
	Numerator   int     `json:"numerator"`
	Denominator int     `json:"denominator"`
}

// Score is the root aggregate produced by decode and consumed by encode.
// TempoChanges and TimeSignatures are sorted by time with unique timestamps.
// A Score lives for one request only.
type Score struct {
	Resolution     uint16          `json:"resolution"`
	TempoChanges   []TempoChange   `json:"tempo_changes"`
	TimeSignatures []TimeSignature `json:"time_signatures"`
	Instruments    []Instrument    `json:"instruments"`
}

// AllNotes flattens every instrument's notes into one list, in instrument
// order. This is the legacy JSON shape.
func (s *Score) AllNotes() []Note {
	var res []Note
	for _, inst := range s.Instruments {
		res = append(res, inst.Notes...)
	}
	return res
}
