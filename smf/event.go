package smf

import (
	"fmt"

	"github.com/sunsetsobserver/midi-json-API/vlq"

	"github.com/sunsetsobserver/midi-json-API/model"
)

type EventKind uint8

const (
	NoteOn EventKind = iota
	NoteOff
	ProgramChange
	Tempo
	TimeSignature
)

func (k EventKind) String() string {
	switch k {
	case NoteOn:
		return "note-on"
	case NoteOff:
		return "note-off"
	case ProgramChange:
		return "program-change"
	case Tempo:
		return "tempo"
	case TimeSignature:
		return "time-signature"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// RawEvent is one interpreted event on the absolute tick timeline. Only the
// fields relevant to its Kind are set. Channel events the codec does not
// model (aftertouch, controllers, pitch bend) are consumed but not emitted.
type RawEvent struct {
	Track int
	Tick  uint64
	Kind  EventKind

	Channel  uint8
	Pitch    uint8
	Velocity uint8
	Program  uint8

	// Tempo
	MicrosPerQuarter uint32

	// TimeSignature; DenomPow is the power-of-two exponent from the file
	Numerator uint8
	DenomPow  uint8
}

const (
	metaStatus   = 0xFF
	sysExStart   = 0xF0
	sysExEscape  = 0xF7
	metaTempo    = 0x51
	metaTimeSig  = 0x58
	statusNibble = 0xF0
)

// channelDataLen returns how many data bytes follow a channel-voice status.
func channelDataLen(status byte) int {
	switch status & statusNibble {
	case 0xC0, 0xD0:
		return 1
	default:
		return 2
	}
}

// parseTrack walks one MTrk payload, resolving delta times and running
// status, and returns the events the codec cares about.
func parseTrack(track int, data []byte) ([]RawEvent, error) {
	var events []RawEvent
	var tick uint64
	var runningStatus byte
	pos := 0

	for pos < len(data) {
		delta, n, err := vlq.ReadVarLen(data[pos:])
		if err != nil {
			return nil, err
		}
		pos += n
		tick += uint64(delta)

		if pos >= len(data) {
			return nil, fmt.Errorf("%w: delta time with no event", model.ErrMalformedStream)
		}

		status := data[pos]
		if status < 0x80 {
			// data byte in status position: running status carry-over
			if runningStatus == 0 {
				return nil, fmt.Errorf("%w: data byte %#x with no running status", model.ErrMalformedStream, status)
			}
			status = runningStatus
		} else {
			pos++
		}

		switch {
		case status == metaStatus:
			runningStatus = 0
			evt, n, err := parseMetaEvent(track, tick, data[pos:])
			if err != nil {
				return nil, err
			}
			pos += n
			if evt != nil {
				events = append(events, *evt)
			}

		case status == sysExStart || status == sysExEscape:
			runningStatus = 0
			length, n, err := vlq.ReadVarLen(data[pos:])
			if err != nil {
				return nil, err
			}
			pos += n
			if int(length) > len(data)-pos {
				return nil, fmt.Errorf("%w: sysex length %d overruns track", model.ErrMalformedStream, length)
			}
			pos += int(length)

		case status >= 0x80 && status < 0xF0:
			runningStatus = status
			need := channelDataLen(status)
			if need > len(data)-pos {
				return nil, fmt.Errorf("%w: truncated channel event %#x", model.ErrMalformedStream, status)
			}
			evt := parseChannelEvent(track, tick, status, data[pos:pos+need])
			pos += need
			if evt != nil {
				events = append(events, *evt)
			}

		default:
			// 0xF1-0xF6, 0xF8-0xFE have no place in an SMF track
			return nil, fmt.Errorf("%w: unexpected status byte %#x", model.ErrMalformedStream, status)
		}
	}
	return events, nil
}

// parseMetaEvent reads subtype + length + payload, interpreting tempo and
// time signature and skipping everything else. Returns bytes consumed.
func parseMetaEvent(track int, tick uint64, data []byte) (*RawEvent, int, error) {
	if len(data) < 1 {
		return nil, 0, fmt.Errorf("%w: truncated meta event", model.ErrMalformedStream)
	}
	subtype := data[0]
	length, n, err := vlq.ReadVarLen(data[1:])
	if err != nil {
		return nil, 0, err
	}
	payloadStart := 1 + n
	if int(length) > len(data)-payloadStart {
		return nil, 0, fmt.Errorf("%w: meta event %#x length %d overruns track", model.ErrMalformedStream, subtype, length)
	}
	payload := data[payloadStart : payloadStart+int(length)]
	consumed := payloadStart + int(length)

	switch subtype {
	case metaTempo:
		if length != 3 {
			return nil, 0, fmt.Errorf("%w: tempo meta event with length %d", model.ErrMalformedStream, length)
		}
		micros := uint32(payload[0])<<16 | uint32(payload[1])<<8 | uint32(payload[2])
		return &RawEvent{Track: track, Tick: tick, Kind: Tempo, MicrosPerQuarter: micros}, consumed, nil
	case metaTimeSig:
		if length < 2 {
			return nil, 0, fmt.Errorf("%w: time signature meta event with length %d", model.ErrMalformedStream, length)
		}
		return &RawEvent{Track: track, Tick: tick, Kind: TimeSignature, Numerator: payload[0], DenomPow: payload[1]}, consumed, nil
	default:
		return nil, consumed, nil
	}
}

func parseChannelEvent(track int, tick uint64, status byte, data []byte) *RawEvent {
	channel := status & 0x0F
	switch status & statusNibble {
	case 0x90:
		return &RawEvent{Track: track, Tick: tick, Kind: NoteOn, Channel: channel, Pitch: data[0], Velocity: data[1]}
	case 0x80:
		return &RawEvent{Track: track, Tick: tick, Kind: NoteOff, Channel: channel, Pitch: data[0], Velocity: data[1]}
	case 0xC0:
		return &RawEvent{Track: track, Tick: tick, Kind: ProgramChange, Channel: channel, Program: data[0]}
	default:
		return nil
	}
}
