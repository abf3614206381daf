package ec

// Reconstruct recovers the payload from chunks tagged with their validator
// index. Chunks may come in any order and any subset may be missing; at
// least RecoveryThreshold(n) distinct chunks are needed. Only the first n
// chunks are considered, and a later chunk with an already seen index
// replaces the earlier one.
func (c *Codec) Reconstruct(n int, chunks []Chunk) ([]byte, error) {
	params, err := c.CodeParams(n)
	if err != nil {
		return nil, err
	}
	return reconstruct(params, chunks)
}

func reconstruct(params CodeParams, chunks []Chunk) ([]byte, error) {
	n := params.N()
	shards := newShardSet(n)
	shardLen := -1
	for _, chunk := range chunks[:min(len(chunks), n)] {
		if chunk.Index < 0 || chunk.Index >= n {
			return nil, &ChunkIndexOutOfBoundsError{Index: chunk.Index, N: n}
		}
		if shardLen < 0 {
			shardLen = len(chunk.Data)
		}
		if shardLen%2 != 0 {
			return nil, ErrUnevenLength
		}
		if len(chunk.Data) != shardLen || shardLen == 0 {
			return nil, ErrNonUniformChunks
		}
		shards.record(chunk.Index, chunk.Data)
	}

	present := shards.present()
	log.Debugf("reconstructing payload from %d of %d chunks (threshold %d)", present, n, params.K())

	padded, err := params.engine.Reconstruct(shards)
	if err != nil {
		return nil, badPayload("%d of %d chunks present: %v", present, n, err)
	}
	return unframePayload(padded)
}

// ReconstructFlattened recovers the payload from chunkSize-byte chunks laid
// out back to back in flattened, chunk i starting at byte i*chunkSize. Bytes
// past the n-th chunk are ignored.
func (c *Codec) ReconstructFlattened(n int, flattened []byte, chunkSize int) ([]byte, error) {
	params, err := c.CodeParams(n)
	if err != nil {
		return nil, err
	}
	if chunkSize <= 0 {
		return nil, ErrNonUniformChunks
	}
	return reconstruct(params, splitFlattened(flattened, chunkSize, n))
}
