package stream

import "errors"

var (
	// ErrInvalidHeader is returned when a framed stream does not start with a valid header.
	ErrInvalidHeader = errors.New("stream: invalid header")

	// ErrCorruptFrame is returned when a frame does not decode to the expected segment.
	ErrCorruptFrame = errors.New("stream: corrupt frame")

	// ErrUnknownCompression is returned for an unsupported compression identifier.
	ErrUnknownCompression = errors.New("stream: unknown compression")
)
