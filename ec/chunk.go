package ec

import (
	"github.com/samber/lo"
)

// Chunk is one erasure-coded piece of a payload together with the index of
// the validator it belongs to
type Chunk struct {
	Index int
	Data  []byte
}

// IndexChunks pairs every chunk with its position, the layout returned by
// ObtainChunks
func IndexChunks(chunks [][]byte) []Chunk {
	return lo.Map(chunks, func(data []byte, i int) Chunk {
		return Chunk{Index: i, Data: data}
	})
}

// splitFlattened cuts flattened into chunkSize pieces. A trailing piece
// shorter than chunkSize is kept so that validation reports it.
func splitFlattened(flattened []byte, chunkSize, limit int) []Chunk {
	count := len(flattened) / chunkSize
	if len(flattened)%chunkSize != 0 {
		count++
	}
	chunks := make([]Chunk, 0, min(limit, count))
	for start := 0; start < len(flattened) && len(chunks) < limit; start += chunkSize {
		end := min(start+chunkSize, len(flattened))
		chunks = append(chunks, Chunk{Index: len(chunks), Data: flattened[start:end]})
	}
	return chunks
}

// shardSet is the reconstruction working set: one slot per validator,
// nil meaning not received
type shardSet [][]byte

func newShardSet(n int) shardSet {
	return make(shardSet, n)
}

// record stores a private copy of data at index, replacing any earlier chunk
func (s shardSet) record(index int, data []byte) {
	shard := make([]byte, len(data))
	copy(shard, data)
	s[index] = shard
}

func (s shardSet) present() int {
	return lo.CountBy(s, func(shard []byte) bool {
		return shard != nil
	})
}
