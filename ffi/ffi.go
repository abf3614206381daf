// Package ffi marshals the erasure codec across a C-compatible boundary.
//
// Every buffer handed out, chunk buffers, payloads and error strings alike,
// is allocated through the Boundary's Allocator and becomes the caller's
// property. The caller returns it with Free. Input buffers are only borrowed
// for the duration of a call.
package ffi

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/ppopth/availability-ec/ec"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("ffi")

var (
	// ErrNullInput is returned when a null pointer is passed with a non-zero length
	ErrNullInput = errors.New("input buffer is null but its length is not zero")
	// ErrNullOutput is returned when an out-parameter pointer is null
	ErrNullOutput = errors.New("output parameter is null")
)

// Allocator provides memory that outlives a boundary call. Alloc never
// returns nil; implementations panic when memory is exhausted.
type Allocator interface {
	Alloc(size uint) unsafe.Pointer
	Free(p unsafe.Pointer)
}

// Buffer describes memory owned by the caller after a successful call
type Buffer struct {
	Ptr unsafe.Pointer
	Len uint
}

// Boundary exposes the codec operations over raw pointers
type Boundary struct {
	alloc Allocator
	codec *ec.Codec
}

// New creates a boundary allocating through alloc. A nil codec selects
// ec.DefaultCodec.
func New(alloc Allocator, codec *ec.Codec) *Boundary {
	if codec == nil {
		codec = ec.DefaultCodec()
	}
	return &Boundary{
		alloc: alloc,
		codec: codec,
	}
}

// ObtainChunks erasure codes the len bytes at data for nValidators
// validators. On success it returns the chunks concatenated in index order,
// each len(out)/nValidators bytes long, and a nil error message.
func (b *Boundary) ObtainChunks(nValidators uint, data unsafe.Pointer, length uint) (out Buffer, errMsg unsafe.Pointer) {
	defer b.recoverInto("obtain_chunks", &out, &errMsg)

	n := validatorCount(nValidators)
	if _, err := ec.RecoveryThreshold(n); err != nil {
		return Buffer{}, b.ErrorString(err)
	}
	payload, err := borrow(data, length)
	if err != nil {
		return Buffer{}, b.ErrorString(err)
	}
	flattened, _, err := b.codec.ObtainChunksFlattened(n, payload)
	if err != nil {
		return Buffer{}, b.ErrorString(err)
	}
	return b.handOver(flattened), nil
}

// Reconstruct recovers the payload from flattenedLen bytes at flattened,
// read as consecutive chunkSize-byte chunks whose position is their index
func (b *Boundary) Reconstruct(nValidators uint, flattened unsafe.Pointer, flattenedLen, chunkSize uint) (out Buffer, errMsg unsafe.Pointer) {
	defer b.recoverInto("reconstruct", &out, &errMsg)

	n := validatorCount(nValidators)
	if _, err := ec.RecoveryThreshold(n); err != nil {
		return Buffer{}, b.ErrorString(err)
	}
	chunks, err := borrow(flattened, flattenedLen)
	if err != nil {
		return Buffer{}, b.ErrorString(err)
	}
	payload, err := b.codec.ReconstructFlattened(n, chunks, chunkSizeOf(chunkSize))
	if err != nil {
		return Buffer{}, b.ErrorString(err)
	}
	return b.handOver(payload), nil
}

// Free releases memory returned by ObtainChunks, Reconstruct or ErrorString.
// Freeing nil is a no-op.
func (b *Boundary) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	b.alloc.Free(p)
}

// ErrorString allocates err's message as a NUL-terminated string owned by
// the caller
func (b *Boundary) ErrorString(err error) unsafe.Pointer {
	msg := err.Error()
	p := b.alloc.Alloc(uint(len(msg)) + 1)
	dst := unsafe.Slice((*byte)(p), len(msg)+1)
	copy(dst, msg)
	dst[len(msg)] = 0
	return p
}

// handOver copies data into allocator memory
func (b *Boundary) handOver(data []byte) Buffer {
	p := b.alloc.Alloc(uint(len(data)))
	copy(unsafe.Slice((*byte)(p), len(data)), data)
	return Buffer{Ptr: p, Len: uint(len(data))}
}

// recoverInto turns a panic into an error message so that malformed input
// never takes the host process down
func (b *Boundary) recoverInto(op string, out *Buffer, errMsg *unsafe.Pointer) {
	r := recover()
	if r == nil {
		return
	}
	log.Warnf("recovered from panic in %s: %v", op, r)
	*out = Buffer{}
	*errMsg = b.ErrorString(fmt.Errorf("internal error in %s: %v", op, r))
}

// borrow views caller memory without copying it
func borrow(p unsafe.Pointer, length uint) ([]byte, error) {
	if length == 0 {
		return nil, nil
	}
	if p == nil {
		return nil, ErrNullInput
	}
	return unsafe.Slice((*byte)(p), length), nil
}

// validatorCount converts a C size to int, mapping anything that does not
// fit to FieldSize+1 so it is still rejected as too many validators
func validatorCount(n uint) int {
	if n > ec.FieldSize {
		return ec.FieldSize + 1
	}
	return int(n)
}

func chunkSizeOf(size uint) int {
	const maxInt = int(^uint(0) >> 1)
	if size > uint(maxInt) {
		return maxInt
	}
	return int(size)
}
