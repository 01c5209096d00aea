package smf

import "errors"

// Error kinds reported by the codec. Failures wrap one of these so callers
// can match with errors.Is.
var (
	// ErrMalformedVarint reports a variable-length quantity that does not
	// terminate within four bytes or runs past the end of the buffer.
	ErrMalformedVarint = errors.New("smf: malformed variable-length quantity")

	// ErrValueOutOfRange reports a value too large to encode, such as a
	// delta time beyond the four-byte variable-length limit.
	ErrValueOutOfRange = errors.New("smf: value out of range")

	// ErrUnsupportedDivision reports an SMPTE (frames-per-second) division,
	// which this codec does not handle.
	ErrUnsupportedDivision = errors.New("smf: unsupported SMPTE division")

	// ErrTruncatedChunk reports a bad magic tag or fewer bytes than a
	// chunk declared.
	ErrTruncatedChunk = errors.New("smf: truncated chunk")
)
