package ec

import (
	"github.com/gogo/protobuf/proto"
)

// framePayload prefixes data with its varint-encoded length so that the
// engine's zero padding can be stripped after reconstruction. The returned
// buffer is freshly allocated and never aliases data.
func framePayload(data []byte) []byte {
	prefix := proto.EncodeVarint(uint64(len(data)))
	framed := make([]byte, len(prefix)+len(data))
	copy(framed, prefix)
	copy(framed[len(prefix):], data)
	return framed
}

// unframePayload strips the length prefix and the trailing padding
func unframePayload(padded []byte) ([]byte, error) {
	size, n := proto.DecodeVarint(padded)
	if n == 0 {
		return nil, badPayload("missing length prefix")
	}
	if size == 0 {
		return nil, badPayload("zero-length payload")
	}
	if size > uint64(len(padded)-n) {
		return nil, badPayload("length prefix %d exceeds %d recovered bytes", size, len(padded)-n)
	}
	payload := make([]byte, size)
	copy(payload, padded[n:])
	return payload, nil
}
