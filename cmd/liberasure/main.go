// Command liberasure builds the erasure codec as a C shared library:
//
//	go build -buildmode=c-shared -o liberasure.so ./cmd/liberasure
//
// Every pointer returned by obtain_chunks or reconstruct, including error
// strings, must be released with erasure_free.
package main

/*
#include <stddef.h>
#include <stdint.h>
#include <stdlib.h>
*/
import "C"

import (
	"unsafe"

	"github.com/ppopth/availability-ec/ffi"
)

type cAllocator struct{}

func (cAllocator) Alloc(size uint) unsafe.Pointer {
	if size == 0 {
		size = 1
	}
	p := C.malloc(C.size_t(size))
	if p == nil {
		panic("malloc failed")
	}
	return p
}

func (cAllocator) Free(p unsafe.Pointer) {
	C.free(p)
}

var boundary = ffi.New(cAllocator{}, nil)

//export obtain_chunks
func obtain_chunks(nValidators C.size_t, data *C.uint8_t, length C.size_t, outChunks **C.uint8_t, outLen *C.size_t) *C.char {
	if outChunks == nil || outLen == nil {
		return (*C.char)(boundary.ErrorString(ffi.ErrNullOutput))
	}
	out, errMsg := boundary.ObtainChunks(uint(nValidators), unsafe.Pointer(data), uint(length))
	if errMsg != nil {
		return (*C.char)(errMsg)
	}
	*outChunks = (*C.uint8_t)(out.Ptr)
	*outLen = C.size_t(out.Len)
	return nil
}

//export reconstruct
func reconstruct(nValidators C.size_t, flattenedChunks *C.uint8_t, flattenedLen C.size_t, chunkSize C.size_t, outData **C.uint8_t, outLen *C.size_t) *C.char {
	if outData == nil || outLen == nil {
		return (*C.char)(boundary.ErrorString(ffi.ErrNullOutput))
	}
	out, errMsg := boundary.Reconstruct(uint(nValidators), unsafe.Pointer(flattenedChunks), uint(flattenedLen), uint(chunkSize))
	if errMsg != nil {
		return (*C.char)(errMsg)
	}
	*outData = (*C.uint8_t)(out.Ptr)
	*outLen = C.size_t(out.Len)
	return nil
}

//export erasure_free
func erasure_free(p unsafe.Pointer) {
	boundary.Free(p)
}

func main() {}
