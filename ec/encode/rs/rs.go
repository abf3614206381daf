package rs

import (
	"github.com/ppopth/availability-ec/ec/encode"

	logging "github.com/ipfs/go-log/v2"
	"github.com/klauspost/reedsolomon"
	"github.com/pkg/errors"
)

var log = logging.Logger("rs")

// ShardAlignment is the byte multiple every Leopard GF(2^16) shard is padded to
const ShardAlignment = 64

// LeopardConfig contains configuration for the Leopard GF(2^16) engine
type LeopardConfig struct {
	// Upper bound on goroutines used by a single encode or reconstruct.
	// Zero keeps the library default.
	MaxGoroutines int
}

// DefaultLeopardConfig returns default configuration
func DefaultLeopardConfig() *LeopardConfig {
	return &LeopardConfig{
		MaxGoroutines: 0,
	}
}

// LeopardEngine implements encode.Engine with Reed-Solomon coding over
// GF(2^16) using the Leopard FFT algorithm. It holds no per-call state and
// can be shared between goroutines.
type LeopardEngine struct {
	config  *LeopardConfig
	options []reedsolomon.Option
}

// NewLeopardEngine creates a new Leopard GF(2^16) engine
func NewLeopardEngine(config *LeopardConfig) (*LeopardEngine, error) {
	if config == nil {
		config = DefaultLeopardConfig()
	}
	if config.MaxGoroutines < 0 {
		return nil, errors.Errorf("max goroutines must not be negative, got %d", config.MaxGoroutines)
	}

	options := []reedsolomon.Option{reedsolomon.WithLeopardGF16(true)}
	if config.MaxGoroutines > 0 {
		options = append(options, reedsolomon.WithMaxGoroutines(config.MaxGoroutines))
	}

	return &LeopardEngine{
		config:  config,
		options: options,
	}, nil
}

// FieldSize returns the maximum number of shards in one codeword
func (e *LeopardEngine) FieldSize() int {
	return encode.FieldSize
}

// DeriveParameters builds an encoder with k payload shards and n-k parity shards
func (e *LeopardEngine) DeriveParameters(n, k int) (encode.Params, error) {
	switch {
	case n < 2:
		return nil, errors.Wrapf(encode.ErrShardCountTooLow, "%d shards", n)
	case n > encode.FieldSize:
		return nil, errors.Wrapf(encode.ErrShardCountTooHigh, "%d shards exceed field size %d", n, encode.FieldSize)
	case k < 1 || k >= n:
		return nil, errors.Wrapf(encode.ErrPayloadShardCount, "%d payload shards out of %d", k, n)
	}

	enc, err := reedsolomon.New(k, n-k, e.options...)
	if err != nil {
		return nil, classify(err)
	}
	log.Debugf("derived leopard parameters: %d payload shards, %d parity shards", k, n-k)

	return &leopardParams{
		enc:   enc,
		total: n,
		data:  k,
	}, nil
}

// classify maps library construction failures onto the engine sentinels
func classify(err error) error {
	switch errors.Cause(err) {
	case reedsolomon.ErrMaxShardNum:
		return errors.Wrap(encode.ErrShardCountTooHigh, err.Error())
	case reedsolomon.ErrInvShardNum:
		return errors.Wrap(encode.ErrShardCountTooLow, err.Error())
	default:
		return errors.Wrap(err, "failed to create leopard encoder")
	}
}

type leopardParams struct {
	enc   reedsolomon.Encoder
	total int
	data  int
}

func (p *leopardParams) TotalShards() int {
	return p.total
}

func (p *leopardParams) PayloadShards() int {
	return p.data
}

// Encode splits the payload into p.data zero-padded shards, each a multiple
// of ShardAlignment bytes, and fills in the parity shards
func (p *leopardParams) Encode(payload []byte) ([][]byte, error) {
	shards, err := p.enc.Split(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to split payload")
	}
	if err := p.enc.Encode(shards); err != nil {
		return nil, errors.Wrap(err, "failed to encode parity shards")
	}
	return shards, nil
}

// Reconstruct recovers the missing payload shards and returns them joined,
// padding included. Missing parity shards are not recomputed.
func (p *leopardParams) Reconstruct(shards [][]byte) ([]byte, error) {
	if len(shards) != p.total {
		return nil, errors.Errorf("expected %d shards, got %d", p.total, len(shards))
	}
	if err := p.enc.ReconstructData(shards); err != nil {
		return nil, errors.Wrap(err, "failed to reconstruct payload shards")
	}

	shardSize := len(shards[0])
	payload := make([]byte, 0, shardSize*p.data)
	for i := 0; i < p.data; i++ {
		if len(shards[i]) != shardSize {
			return nil, errors.Errorf("payload shard %d has %d bytes, expected %d", i, len(shards[i]), shardSize)
		}
		payload = append(payload, shards[i]...)
	}
	return payload, nil
}
