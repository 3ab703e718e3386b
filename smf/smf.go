// Package smf reads and writes the Standard MIDI File container: header and
// track chunks, delta times, running status. It deals in ticks only; time
// math lives in timemap.
package smf

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/sunsetsobserver/midi-json-API/model"
	"github.com/sunsetsobserver/midi-json-API/util"
)

const headerMagic = "MThd"
const trackMagic = "MTrk"

// Header mirrors the MThd chunk payload. Resolution is ticks per quarter
// note; SMPTE divisions are rejected at parse time.
type Header struct {
	Format     uint16
	TrackCount uint16
	Resolution uint16
}

// Parse validates the header chunk and every track chunk and returns the raw
// events of all tracks, each stamped with its absolute tick and track index.
// Events within a track are in file order.
func Parse(data []byte) (Header, []RawEvent, error) {
	var h Header
	if len(data) < 14 {
		return h, nil, fmt.Errorf("%w: file shorter than SMF header", model.ErrMalformedStream)
	}
	if string(data[0:4]) != headerMagic {
		return h, nil, fmt.Errorf("%w: bad header magic %q", model.ErrMalformedStream, string(data[0:4]))
	}
	if headerLen := binary.BigEndian.Uint32(data[4:8]); headerLen != 6 {
		return h, nil, fmt.Errorf("%w: header chunk length %d, want 6", model.ErrMalformedStream, headerLen)
	}
	h.Format = binary.BigEndian.Uint16(data[8:10])
	h.TrackCount = binary.BigEndian.Uint16(data[10:12])
	division := binary.BigEndian.Uint16(data[12:14])

	if h.Format > 2 {
		return h, nil, fmt.Errorf("%w: SMF format %d", model.ErrUnsupportedFeature, h.Format)
	}
	if division&0x8000 != 0 {
		return h, nil, fmt.Errorf("%w: SMPTE time division", model.ErrUnsupportedFeature)
	}
	if division == 0 {
		return h, nil, fmt.Errorf("%w: zero ticks per quarter note", model.ErrMalformedStream)
	}
	h.Resolution = division

	var events []RawEvent
	pos := 14
	for track := 0; track < int(h.TrackCount); track++ {
		if len(data)-pos < 8 {
			return h, nil, fmt.Errorf("%w: missing track chunk %d", model.ErrMalformedStream, track)
		}
		if string(data[pos:pos+4]) != trackMagic {
			return h, nil, fmt.Errorf("%w: bad track magic %q for track %d", model.ErrMalformedStream, string(data[pos:pos+4]), track)
		}
		length := int(binary.BigEndian.Uint32(data[pos+4 : pos+8]))
		pos += 8
		if length > len(data)-pos {
			return h, nil, fmt.Errorf("%w: track %d declares %d bytes, %d remain", model.ErrMalformedStream, track, length, len(data)-pos)
		}
		trackEvents, err := parseTrack(track, data[pos:pos+length])
		if err != nil {
			return h, nil, fmt.Errorf("track %d: %w", track, err)
		}
		events = append(events, trackEvents...)
		pos += length
	}
	return h, events, nil
}

// Merge orders events from all tracks onto one global tick timeline. The
// sort is stable so same-tick events keep their file order, which the note
// assembler's FIFO pairing depends on.
func Merge(events []RawEvent) []RawEvent {
	merged := make([]RawEvent, len(events))
	copy(merged, events)
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Tick != merged[j].Tick {
			return merged[i].Tick < merged[j].Tick
		}
		return merged[i].Track < merged[j].Track
	})
	return merged
}

// FinalTick returns the largest tick among events, or 0.
func FinalTick(events []RawEvent) uint64 {
	var res uint64
	for _, evt := range events {
		res = util.Max(res, evt.Tick)
	}
	return res
}
