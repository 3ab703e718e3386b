package smf

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/sunsetsobserver/midi-json-API/model"
	"github.com/sunsetsobserver/midi-json-API/vlq"
)

// Message is one event ready for the wire: absolute tick plus the full
// status+data byte sequence.
type Message struct {
	Tick uint64
	Data []byte
}

func NoteOnMessage(channel, pitch, velocity uint8) []byte {
	return []byte{0x90 | channel&0x0F, pitch, velocity}
}

func NoteOffMessage(channel, pitch, velocity uint8) []byte {
	return []byte{0x80 | channel&0x0F, pitch, velocity}
}

func ProgramChangeMessage(channel, program uint8) []byte {
	return []byte{0xC0 | channel&0x0F, program}
}

func TempoMessage(microsPerQuarter uint32) []byte {
	return []byte{
		metaStatus, metaTempo, 3,
		byte(microsPerQuarter >> 16), byte(microsPerQuarter >> 8), byte(microsPerQuarter),
	}
}

// TimeSignatureMessage emits the 4-byte payload form; clocks-per-click and
// 32nds-per-quarter take their conventional values (24, 8).
func TimeSignatureMessage(numerator, denomPow uint8) []byte {
	return []byte{metaStatus, metaTimeSig, 4, numerator, denomPow, 24, 8}
}

var endOfTrack = []byte{metaStatus, 0x2F, 0}

// writeTrack delta-encodes messages (which must be tick-ordered), applying
// running status for consecutive channel events with the same status byte,
// and wraps them in an MTrk chunk ending with end-of-track.
func writeTrack(messages []Message) ([]byte, error) {
	var body []byte
	var prevTick uint64
	var runningStatus byte
	var err error

	for _, msg := range messages {
		if msg.Tick < prevTick {
			return nil, fmt.Errorf("%w: track events out of order (tick %d after %d)", model.ErrValueOutOfRange, msg.Tick, prevTick)
		}
		delta := msg.Tick - prevTick
		if delta > uint64(^uint32(0)) {
			return nil, fmt.Errorf("%w: delta time %d", model.ErrValueOutOfRange, delta)
		}
		body, err = vlq.AppendVarLen(body, uint32(delta))
		if err != nil {
			return nil, err
		}
		prevTick = msg.Tick

		status := msg.Data[0]
		if status < 0xF0 {
			if status == runningStatus {
				body = append(body, msg.Data[1:]...)
			} else {
				body = append(body, msg.Data...)
				runningStatus = status
			}
		} else {
			runningStatus = 0
			body = append(body, msg.Data...)
		}
	}

	body, err = vlq.AppendVarLen(body, 0)
	if err != nil {
		return nil, err
	}
	body = append(body, endOfTrack...)

	var buf bytes.Buffer
	buf.WriteString(trackMagic)
	binary.Write(&buf, binary.BigEndian, uint32(len(body)))
	buf.Write(body)
	return buf.Bytes(), nil
}

// WriteFile emits a complete SMF byte stream: format 0 for a single track,
// format 1 otherwise.
func WriteFile(resolution uint16, tracks [][]Message) ([]byte, error) {
	if len(tracks) > 0xFFFF {
		return nil, fmt.Errorf("%w: %d tracks", model.ErrValueOutOfRange, len(tracks))
	}
	format := uint16(1)
	if len(tracks) == 1 {
		format = 0
	}

	var buf bytes.Buffer
	buf.WriteString(headerMagic)
	binary.Write(&buf, binary.BigEndian, uint32(6))
	binary.Write(&buf, binary.BigEndian, format)
	binary.Write(&buf, binary.BigEndian, uint16(len(tracks)))
	binary.Write(&buf, binary.BigEndian, resolution)

	for i, track := range tracks {
		chunk, err := writeTrack(track)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
		buf.Write(chunk)
	}
	return buf.Bytes(), nil
}
