package model

import "errors"

// Codec error kinds. Library packages wrap these with context via
// fmt.Errorf("%w: ..."), so callers can errors.Is against the kind.
var (
	ErrMalformedStream    = errors.New("malformed stream")
	ErrInvalidTempo       = errors.New("invalid tempo")
	ErrValueOutOfRange    = errors.New("value out of range")
	ErrUnsupportedFeature = errors.New("unsupported feature")
)
