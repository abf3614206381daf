package ec

import (
	"errors"
	"fmt"
)

var (
	// ErrTooManyValidators is returned when the validator count exceeds FieldSize
	ErrTooManyValidators = errors.New("there are too many validators")
	// ErrNotEnoughValidators is returned for fewer than two validators
	ErrNotEnoughValidators = errors.New("expected at least 2 validators")
	// ErrNonUniformChunks is returned when chunks differ in length or are empty
	ErrNonUniformChunks = errors.New("chunks are not uniform, mismatch in length or are zero sized")
	// ErrUnevenLength is returned for odd chunk lengths, which cannot hold GF(2^16) symbols
	ErrUnevenLength = errors.New("uneven length is not valid for field GF(2^16)")
	// ErrChunkIndexOutOfBounds matches every *ChunkIndexOutOfBoundsError
	ErrChunkIndexOutOfBounds = errors.New("chunk index out of bounds")
	// ErrBadPayload is returned for an empty payload or an unrecoverable reconstruction
	ErrBadPayload = errors.New("bad payload")
	// ErrUnknownCodeParam is returned when the engine rejects the parameters
	// for a reason that has no dedicated error
	ErrUnknownCodeParam = errors.New("unknown error deriving code parameters")
)

// ChunkIndexOutOfBoundsError reports a chunk whose index is not in [0, N)
type ChunkIndexOutOfBoundsError struct {
	Index int
	N     int
}

func (e *ChunkIndexOutOfBoundsError) Error() string {
	return fmt.Sprintf("%s: %d not included in 0..%d", ErrChunkIndexOutOfBounds, e.Index, e.N)
}

// Is makes errors.Is(err, ErrChunkIndexOutOfBounds) hold
func (e *ChunkIndexOutOfBoundsError) Is(target error) bool {
	return target == ErrChunkIndexOutOfBounds
}

// badPayload flattens cause into the message so that only ErrBadPayload is
// matchable by callers
func badPayload(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadPayload, fmt.Sprintf(format, args...))
}
