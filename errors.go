package quill

import "errors"

// Error taxonomy. Every condition here is local and recoverable by the
// caller; none leaves process-wide state corrupted. Verification does not
// use these for adversarial-but-well-formed signatures, which simply fail
// the boolean check.
var (
	// ErrInvalidState indicates an absorb was attempted after squeezing began.
	ErrInvalidState = errors.New("absorb after squeeze has begun")

	// ErrInvalidInput indicates a malformed buffer shape or encoding.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidKey indicates a key is missing required fields or mis-sized.
	ErrInvalidKey = errors.New("invalid key")

	// ErrSigningFailed indicates the signing retry budget was exhausted.
	ErrSigningFailed = errors.New("signing retry budget exhausted")

	// ErrInvalidParameterSet indicates an unrecognized security level.
	ErrInvalidParameterSet = errors.New("unknown security level")
)
