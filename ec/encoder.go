package ec

import (
	"fmt"
)

// ObtainChunks erasure codes data into n chunks of equal, even length, chunk
// i being destined for validator i. Any RecoveryThreshold(n) of them
// reconstruct data.
func (c *Codec) ObtainChunks(n int, data []byte) ([][]byte, error) {
	params, err := c.CodeParams(n)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, badPayload("payload is empty")
	}

	shards, err := params.engine.Encode(framePayload(data))
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload for %d validators: %v", n, err)
	}
	if err := checkShards(shards, n); err != nil {
		return nil, err
	}

	log.Debugf("obtained %d chunks of %d bytes from a %d-byte payload", n, len(shards[0]), len(data))
	return shards, nil
}

// ObtainChunksFlattened erasure codes data like ObtainChunks and returns the
// chunks concatenated in index order in one newly allocated buffer, together
// with the chunk length
func (c *Codec) ObtainChunksFlattened(n int, data []byte) ([]byte, int, error) {
	shards, err := c.ObtainChunks(n, data)
	if err != nil {
		return nil, 0, err
	}

	chunkSize := len(shards[0])
	flattened := make([]byte, 0, chunkSize*n)
	for _, shard := range shards {
		flattened = append(flattened, shard...)
	}
	return flattened, len(flattened) / n, nil
}

// checkShards guards against an engine handing back something other than n
// equal, even, non-empty shards
func checkShards(shards [][]byte, n int) error {
	if len(shards) != n {
		return fmt.Errorf("engine produced %d shards, expected %d", len(shards), n)
	}
	size := len(shards[0])
	if size == 0 || size%2 != 0 {
		return fmt.Errorf("engine produced invalid shard length %d", size)
	}
	for i, shard := range shards {
		if len(shard) != size {
			return fmt.Errorf("engine produced shard %d of %d bytes, expected %d", i, len(shard), size)
		}
	}
	return nil
}
