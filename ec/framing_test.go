package ec

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gogo/protobuf/proto"
)

func TestFramePayload(t *testing.T) {
	for _, size := range []int{1, 127, 128, 300, 1 << 16} {
		data := bytes.Repeat([]byte{0xab}, size)
		framed := framePayload(data)

		prefix := proto.EncodeVarint(uint64(size))
		if !bytes.HasPrefix(framed, prefix) {
			t.Fatalf("size %d: framed payload does not start with the length prefix", size)
		}

		// Engines pad with zeros
		padded := append(framed, make([]byte, 77)...)
		got, err := unframePayload(padded)
		if err != nil {
			t.Fatalf("size %d: unframePayload failed: %v", size, err)
		}
		if !bytes.Equal(got, data) {
			t.Fatalf("size %d: unframed payload differs", size)
		}
	}
}

func TestUnframePayloadErrors(t *testing.T) {
	tests := []struct {
		name   string
		padded []byte
	}{
		{"empty", nil},
		{"zero length", []byte{0x00, 0x00, 0x00}},
		{"truncated varint", []byte{0x80}},
		{"length beyond data", append(proto.EncodeVarint(10), 1, 2, 3)},
		{"overflowing varint", bytes.Repeat([]byte{0xff}, 16)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := unframePayload(tt.padded)
			if !errors.Is(err, ErrBadPayload) {
				t.Fatalf("expected %v, got %v", ErrBadPayload, err)
			}
		})
	}
}
