package vlq

import (
	"fmt"

	"github.com/sunsetsobserver/midi-json-API/constants"
	"github.com/sunsetsobserver/midi-json-API/model"
)

// ReadVarLen reads a MIDI variable-length quantity from the start of data
// and returns the value plus the number of bytes consumed. A quantity is at
// most 4 bytes; each byte contributes 7 bits, high bit set means another
// byte follows.
func ReadVarLen(data []byte) (uint32, int, error) {
	var res uint32
	for i := 0; i < 4; i++ {
		if i >= len(data) {
			return 0, 0, fmt.Errorf("%w: stream ended mid variable-length quantity", model.ErrMalformedStream)
		}
		b := data[i]
		res = res<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return res, i + 1, nil
		}
	}
	return 0, 0, fmt.Errorf("%w: variable-length quantity longer than 4 bytes", model.ErrMalformedStream)
}

// WriteVarLen encodes v as a variable-length quantity.
func WriteVarLen(v uint32) ([]byte, error) {
	return AppendVarLen(nil, v)
}

// AppendVarLen appends the encoding of v to dst.
func AppendVarLen(dst []byte, v uint32) ([]byte, error) {
	if v > constants.MaxVarLen {
		return nil, fmt.Errorf("%w: %#x exceeds max variable-length quantity %#x", model.ErrValueOutOfRange, v, uint32(constants.MaxVarLen))
	}
	if v == 0 {
		return append(dst, 0), nil
	}

	// break into 7-bit chunks, least significant first
	var chunks []byte
	for v > 0 {
		chunks = append(chunks, byte(v&0x7F))
		v >>= 7
	}
	for i := len(chunks) - 1; i >= 0; i-- {
		b := chunks[i]
		if i != 0 {
			b |= 0x80
		}
		dst = append(dst, b)
	}
	return dst, nil
}
