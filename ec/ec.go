package ec

import (
	"fmt"

	"github.com/ppopth/availability-ec/ec/encode"
	"github.com/ppopth/availability-ec/ec/encode/rs"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("ec")

// CodecOption configures a codec during construction
type CodecOption func(*Codec) error

// Codec erasure codes payloads for a set of validators. A Codec holds no
// mutable state, so one value can serve any number of concurrent calls.
type Codec struct {
	engine encode.Engine
}

// NewCodec creates a new codec and applies options. Without WithEngine the
// Leopard GF(2^16) engine with default configuration is used.
func NewCodec(opts ...CodecOption) (*Codec, error) {
	codec := &Codec{}
	for _, opt := range opts {
		if err := opt(codec); err != nil {
			return nil, err
		}
	}

	if codec.engine == nil {
		engine, err := rs.NewLeopardEngine(nil)
		if err != nil {
			return nil, err
		}
		codec.engine = engine
	}
	if codec.engine.FieldSize() < FieldSize {
		return nil, fmt.Errorf("engine field size %d is smaller than %d", codec.engine.FieldSize(), FieldSize)
	}

	return codec, nil
}

// WithEngine sets the arithmetic engine backing the codec
func WithEngine(engine encode.Engine) CodecOption {
	return func(c *Codec) error {
		if engine == nil {
			return fmt.Errorf("engine is required")
		}
		c.engine = engine
		return nil
	}
}

var defaultCodec = mustNewCodec()

func mustNewCodec() *Codec {
	codec, err := NewCodec()
	if err != nil {
		panic(fmt.Sprintf("failed to create default codec: %v", err))
	}
	return codec
}

// DefaultCodec returns the codec used by the package-level functions
func DefaultCodec() *Codec {
	return defaultCodec
}

// ObtainChunks erasure codes data into one chunk per validator using the default codec
func ObtainChunks(n int, data []byte) ([][]byte, error) {
	return defaultCodec.ObtainChunks(n, data)
}

// ObtainChunksFlattened is ObtainChunks returning the chunks concatenated in
// index order, along with the length of each chunk
func ObtainChunksFlattened(n int, data []byte) ([]byte, int, error) {
	return defaultCodec.ObtainChunksFlattened(n, data)
}

// Reconstruct recovers the payload from indexed chunks using the default codec
func Reconstruct(n int, chunks []Chunk) ([]byte, error) {
	return defaultCodec.Reconstruct(n, chunks)
}

// ReconstructFlattened recovers the payload from chunkSize-byte chunks laid
// out back to back, the position of each chunk being its index
func ReconstructFlattened(n int, flattened []byte, chunkSize int) ([]byte, error) {
	return defaultCodec.ReconstructFlattened(n, flattened, chunkSize)
}
