package encode

import "errors"

// FieldSize is the alphabet size of GF(2^16), the largest number of shards
// a single codeword can hold.
const FieldSize = 1 << 16

var (
	// ErrShardCountTooHigh is returned by DeriveParameters when the wanted
	// number of shards does not fit in the field
	ErrShardCountTooHigh = errors.New("wanted shard count is too high")
	// ErrShardCountTooLow is returned by DeriveParameters when fewer than two
	// shards are wanted
	ErrShardCountTooLow = errors.New("wanted shard count is too low")
	// ErrPayloadShardCount is returned by DeriveParameters when the number of
	// payload shards is not in [1, n)
	ErrPayloadShardCount = errors.New("wanted payload shard count is invalid")
)

// Params are the engine-specific coding parameters for one (n, k) pair
type Params interface {
	// TotalShards returns n, the number of shards produced by Encode
	TotalShards() int
	// PayloadShards returns k, the number of shards needed by Reconstruct
	PayloadShards() int
	// Encode splits the payload into TotalShards equal-length shards,
	// padding as needed. The payload shards may alias payload.
	Encode(payload []byte) ([][]byte, error)
	// Reconstruct recovers the padded payload from a TotalShards-long slice
	// where missing shards are nil. Present shards are left untouched.
	Reconstruct(shards [][]byte) ([]byte, error)
}

// Engine defines the interface for the field arithmetic backing the codec
type Engine interface {
	// FieldSize returns the maximum number of shards the engine supports
	FieldSize() int
	// DeriveParameters validates (n, k) and prepares the coding parameters
	DeriveParameters(n, k int) (Params, error)
}
