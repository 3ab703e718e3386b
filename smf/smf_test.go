package smf

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sunsetsobserver/midi-json-API/model"
)

// specFileBytes is the format-1 example file from the SMF specification,
// trimmed to three tracks: a tempo/meter track and two one-note tracks.
var specFileBytes = []byte{
	// MThd, length 6, format 1, 3 tracks, 96 ticks per quarter
	0x4D, 0x54, 0x68, 0x64, 0, 0, 0, 6, 0, 1, 0, 3, 0, 0x60,
	// conductor track
	0x4D, 0x54, 0x72, 0x6B, 0, 0, 0, 0x14,
	0, 0xFF, 0x58, 4, 4, 2, 0x18, 8, // 4/4
	0, 0xFF, 0x51, 3, 0x07, 0xA1, 0x20, // 500000 us/quarter
	0x83, 0x00, 0xFF, 0x2F, 0, // end of track at tick 384
	// first music track
	0x4D, 0x54, 0x72, 0x6B, 0, 0, 0, 0x10,
	0, 0xC0, 5,
	0x81, 0x40, 0x90, 0x4C, 0x20, // note on at tick 192
	0x81, 0x40, 0x4C, 0x00, // running-status note on, velocity 0, tick 384
	0, 0xFF, 0x2F, 0,
	// second music track
	0x4D, 0x54, 0x72, 0x6B, 0, 0, 0, 0x0F,
	0, 0xC1, 0x2E,
	0x60, 0x91, 0x43, 0x40,
	0x82, 0x20, 0x43, 0x00,
	0, 0xFF, 0x2F, 0,
}

func TestParseSpecExampleFile(t *testing.T) {
	header, events, err := Parse(specFileBytes)
	assert := assert.New(t)
	assert.NoError(err)

	assert.Equal(uint16(1), header.Format)
	assert.Equal(uint16(3), header.TrackCount)
	assert.Equal(uint16(96), header.Resolution)

	assert.Equal([]RawEvent{
		{Track: 0, Tick: 0, Kind: TimeSignature, Numerator: 4, DenomPow: 2},
		{Track: 0, Tick: 0, Kind: Tempo, MicrosPerQuarter: 500000},
		{Track: 1, Tick: 0, Kind: ProgramChange, Channel: 0, Program: 5},
		{Track: 1, Tick: 192, Kind: NoteOn, Channel: 0, Pitch: 0x4C, Velocity: 0x20},
		{Track: 1, Tick: 384, Kind: NoteOn, Channel: 0, Pitch: 0x4C, Velocity: 0},
		{Track: 2, Tick: 0, Kind: ProgramChange, Channel: 1, Program: 0x2E},
		{Track: 2, Tick: 96, Kind: NoteOn, Channel: 1, Pitch: 0x43, Velocity: 0x40},
		{Track: 2, Tick: 384, Kind: NoteOn, Channel: 1, Pitch: 0x43, Velocity: 0},
	}, events)
}

func TestMergeIsStableAcrossTracks(t *testing.T) {
	_, events, err := Parse(specFileBytes)
	assert := assert.New(t)
	assert.NoError(err)

	merged := Merge(events)
	ticks := make([]uint64, len(merged))
	for i, evt := range merged {
		ticks[i] = evt.Tick
	}
	assert.Equal([]uint64{0, 0, 0, 0, 96, 192, 384, 384}, ticks)

	// same tick: lower track first
	assert.Equal(1, merged[len(merged)-2].Track)
	assert.Equal(2, merged[len(merged)-1].Track)

	assert.Equal(uint64(384), FinalTick(events))
}

func TestParseRejectsBadHeaderMagic(t *testing.T) {
	data := append([]byte{}, specFileBytes...)
	data[0] = 'X'
	_, _, err := Parse(data)
	assert.True(t, errors.Is(err, model.ErrMalformedStream))
}

func TestParseRejectsUnsupportedFormat(t *testing.T) {
	data := append([]byte{}, specFileBytes...)
	data[9] = 3
	_, _, err := Parse(data)
	assert.True(t, errors.Is(err, model.ErrUnsupportedFeature))
}

func TestParseRejectsSMPTEDivision(t *testing.T) {
	data := append([]byte{}, specFileBytes...)
	data[12] = 0xE8 // -24 fps
	data[13] = 40
	_, _, err := Parse(data)
	assert.True(t, errors.Is(err, model.ErrUnsupportedFeature))
}

func TestParseRejectsTruncatedTrack(t *testing.T) {
	// declared track length runs past the end of the file
	_, _, err := Parse(specFileBytes[:30])
	assert.True(t, errors.Is(err, model.ErrMalformedStream))
}

func TestParseRejectsMissingDeclaredTrack(t *testing.T) {
	// header says 3 tracks, file ends after the first
	_, _, err := Parse(specFileBytes[:14+8+0x14])
	assert.True(t, errors.Is(err, model.ErrMalformedStream))
}

func TestParseRejectsDataByteWithoutRunningStatus(t *testing.T) {
	data := []byte{
		0x4D, 0x54, 0x68, 0x64, 0, 0, 0, 6, 0, 0, 0, 1, 0, 0x60,
		0x4D, 0x54, 0x72, 0x6B, 0, 0, 0, 3,
		0, 0x4C, 0x20, // no status byte has been seen yet
	}
	_, _, err := Parse(data)
	assert.True(t, errors.Is(err, model.ErrMalformedStream))
}

func TestParseRejectsMetaLengthOverrun(t *testing.T) {
	data := []byte{
		0x4D, 0x54, 0x68, 0x64, 0, 0, 0, 6, 0, 0, 0, 1, 0, 0x60,
		0x4D, 0x54, 0x72, 0x6B, 0, 0, 0, 4,
		0, 0xFF, 0x51, 0x10, // tempo meta claims 16 payload bytes
	}
	_, _, err := Parse(data)
	assert.True(t, errors.Is(err, model.ErrMalformedStream))
}

func TestParseSkipsSysExAndUnknownMeta(t *testing.T) {
	data := []byte{
		0x4D, 0x54, 0x68, 0x64, 0, 0, 0, 6, 0, 0, 0, 1, 0, 0x60,
		0x4D, 0x54, 0x72, 0x6B, 0, 0, 0, 0x16,
		0, 0xF0, 3, 0x01, 0x02, 0xF7, // sysex, skipped
		0, 0xFF, 0x03, 4, 'n', 'a', 'm', 'e', // track name, skipped
		0, 0x90, 60, 100,
		0, 0xFF, 0x2F, 0,
	}
	_, events, err := Parse(data)
	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal([]RawEvent{
		{Track: 0, Tick: 0, Kind: NoteOn, Channel: 0, Pitch: 60, Velocity: 100},
	}, events)
}

func TestWriteFileRoundTripsThroughParse(t *testing.T) {
	conductor := []Message{
		{Tick: 0, Data: TempoMessage(500000)},
		{Tick: 0, Data: TimeSignatureMessage(3, 2)},
	}
	melody := []Message{
		{Tick: 0, Data: ProgramChangeMessage(0, 24)},
		{Tick: 0, Data: NoteOnMessage(0, 60, 100)},
		{Tick: 220, Data: NoteOffMessage(0, 60, 0)},
		{Tick: 220, Data: NoteOnMessage(0, 64, 90)},
		{Tick: 440, Data: NoteOffMessage(0, 64, 0)},
	}

	data, err := WriteFile(220, [][]Message{conductor, melody})
	assert := assert.New(t)
	assert.NoError(err)

	header, events, err := Parse(data)
	assert.NoError(err)
	assert.Equal(uint16(1), header.Format)
	assert.Equal(uint16(2), header.TrackCount)
	assert.Equal(uint16(220), header.Resolution)

	assert.Equal([]RawEvent{
		{Track: 0, Tick: 0, Kind: Tempo, MicrosPerQuarter: 500000},
		{Track: 0, Tick: 0, Kind: TimeSignature, Numerator: 3, DenomPow: 2},
		{Track: 1, Tick: 0, Kind: ProgramChange, Channel: 0, Program: 24},
		{Track: 1, Tick: 0, Kind: NoteOn, Channel: 0, Pitch: 60, Velocity: 100},
		{Track: 1, Tick: 220, Kind: NoteOff, Channel: 0, Pitch: 60, Velocity: 0},
		{Track: 1, Tick: 220, Kind: NoteOn, Channel: 0, Pitch: 64, Velocity: 90},
		{Track: 1, Tick: 440, Kind: NoteOff, Channel: 0, Pitch: 64, Velocity: 0},
	}, events)
}

func TestWriteTrackUsesRunningStatus(t *testing.T) {
	track := []Message{
		{Tick: 0, Data: NoteOnMessage(0, 60, 100)},
		{Tick: 10, Data: NoteOnMessage(0, 64, 100)},
	}
	chunk, err := writeTrack(track)
	assert := assert.New(t)
	assert.NoError(err)

	// MTrk + length + (delta, status, 2 data) + (delta, 2 data) + end of track
	want := []byte{
		0x4D, 0x54, 0x72, 0x6B, 0, 0, 0, 0x0B,
		0, 0x90, 60, 100,
		10, 64, 100,
		0, 0xFF, 0x2F, 0,
	}
	assert.Equal(want, chunk)
}

func TestWriteFileEmitsFormatZeroForSingleTrack(t *testing.T) {
	data, err := WriteFile(96, [][]Message{{{Tick: 0, Data: NoteOnMessage(0, 60, 1)}}})
	assert := assert.New(t)
	assert.NoError(err)
	header, _, err := Parse(data)
	assert.NoError(err)
	assert.Equal(uint16(0), header.Format)
}

func TestWriteTrackRejectsUnorderedEvents(t *testing.T) {
	track := []Message{
		{Tick: 10, Data: NoteOnMessage(0, 60, 100)},
		{Tick: 0, Data: NoteOffMessage(0, 60, 0)},
	}
	_, err := writeTrack(track)
	assert.True(t, errors.Is(err, model.ErrValueOutOfRange))
}
