package ec

import (
	"errors"

	"github.com/ppopth/availability-ec/ec/encode"
)

// FieldSize is the largest validator count the codec accepts
const FieldSize = encode.FieldSize

// RecoveryThreshold returns the minimum number of chunks needed to
// reconstruct a payload spread over n validators, tolerating up to a third
// of them being faulty
func RecoveryThreshold(n int) (int, error) {
	if n > FieldSize {
		return 0, ErrTooManyValidators
	}
	if n <= 1 {
		return 0, ErrNotEnoughValidators
	}
	needed := (n - 1) / 3
	return needed + 1, nil
}

// CodeParams are the coding parameters for one validator count. A value is
// built per operation and never modified afterwards.
type CodeParams struct {
	n      int
	k      int
	engine encode.Params
}

// N returns the validator count, which is also the number of chunks
func (p CodeParams) N() int {
	return p.n
}

// K returns the recovery threshold
func (p CodeParams) K() int {
	return p.k
}

// CodeParams derives the coding parameters for n validators
func (c *Codec) CodeParams(n int) (CodeParams, error) {
	k, err := RecoveryThreshold(n)
	if err != nil {
		return CodeParams{}, err
	}
	if n > FieldSize {
		return CodeParams{}, ErrTooManyValidators
	}

	params, err := c.engine.DeriveParameters(n, k)
	switch {
	case err == nil:
	case errors.Is(err, encode.ErrShardCountTooHigh):
		return CodeParams{}, ErrTooManyValidators
	case errors.Is(err, encode.ErrShardCountTooLow):
		return CodeParams{}, ErrNotEnoughValidators
	default:
		log.Debugf("engine rejected parameters n=%d k=%d: %v", n, k, err)
		return CodeParams{}, ErrUnknownCodeParam
	}
	if params == nil || params.TotalShards() != n || params.PayloadShards() != k {
		return CodeParams{}, ErrUnknownCodeParam
	}

	return CodeParams{
		n:      n,
		k:      k,
		engine: params,
	}, nil
}
