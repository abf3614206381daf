package rs

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ppopth/availability-ec/ec/encode"
)

func newEngine(t *testing.T) *LeopardEngine {
	t.Helper()
	engine, err := NewLeopardEngine(nil)
	if err != nil {
		t.Fatalf("NewLeopardEngine failed: %v", err)
	}
	return engine
}

func testPayload(size int) []byte {
	payload := make([]byte, size)
	for i := range payload {
		payload[i] = byte(i*7 + 3)
	}
	return payload
}

func TestNewLeopardEngine(t *testing.T) {
	t.Run("default config", func(t *testing.T) {
		engine := newEngine(t)
		if engine.config.MaxGoroutines != 0 {
			t.Errorf("expected max goroutines 0, got %d", engine.config.MaxGoroutines)
		}
		if engine.FieldSize() != encode.FieldSize {
			t.Errorf("expected field size %d, got %d", encode.FieldSize, engine.FieldSize())
		}
	})

	t.Run("custom config", func(t *testing.T) {
		engine, err := NewLeopardEngine(&LeopardConfig{MaxGoroutines: 4})
		if err != nil {
			t.Fatalf("NewLeopardEngine failed: %v", err)
		}
		if len(engine.options) != 2 {
			t.Errorf("expected 2 library options, got %d", len(engine.options))
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		if _, err := NewLeopardEngine(&LeopardConfig{MaxGoroutines: -1}); err == nil {
			t.Error("expected error but got nil")
		}
	})
}

func TestDeriveParameters(t *testing.T) {
	engine := newEngine(t)

	tests := []struct {
		name string
		n, k int
		want error
	}{
		{"no shards", 0, 1, encode.ErrShardCountTooLow},
		{"one shard", 1, 1, encode.ErrShardCountTooLow},
		{"above field size", encode.FieldSize + 1, 21846, encode.ErrShardCountTooHigh},
		{"zero payload shards", 10, 0, encode.ErrPayloadShardCount},
		{"no parity shards", 10, 10, encode.ErrPayloadShardCount},
		{"more payload shards than total", 10, 11, encode.ErrPayloadShardCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := engine.DeriveParameters(tt.n, tt.k)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if params != nil {
				t.Error("expected nil parameters on error")
			}
		})
	}

	for _, shape := range [][2]int{{2, 1}, {3, 1}, {10, 4}, {256, 86}, {257, 86}, {encode.FieldSize, 21846}} {
		params, err := engine.DeriveParameters(shape[0], shape[1])
		if err != nil {
			t.Fatalf("DeriveParameters(%d, %d) failed: %v", shape[0], shape[1], err)
		}
		if params.TotalShards() != shape[0] || params.PayloadShards() != shape[1] {
			t.Errorf("DeriveParameters(%d, %d) gave %d/%d", shape[0], shape[1], params.TotalShards(), params.PayloadShards())
		}
	}
}

func TestEncode(t *testing.T) {
	engine := newEngine(t)
	params, err := engine.DeriveParameters(10, 4)
	if err != nil {
		t.Fatalf("DeriveParameters failed: %v", err)
	}

	payload := testPayload(1000)
	shards, err := params.Encode(bytes.Clone(payload))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(shards) != 10 {
		t.Fatalf("expected 10 shards, got %d", len(shards))
	}

	size := len(shards[0])
	if size%ShardAlignment != 0 {
		t.Errorf("shard size %d is not a multiple of %d", size, ShardAlignment)
	}
	if size*4 < len(payload) {
		t.Errorf("4 shards of %d bytes cannot hold %d bytes", size, len(payload))
	}
	for i, shard := range shards {
		if len(shard) != size {
			t.Errorf("shard %d has %d bytes, expected %d", i, len(shard), size)
		}
	}

	// The code is systematic: payload shards carry the payload verbatim
	joined := bytes.Join(shards[:4], nil)
	if !bytes.Equal(joined[:len(payload)], payload) {
		t.Error("payload shards do not start with the payload")
	}
	for _, b := range joined[len(payload):] {
		if b != 0 {
			t.Fatal("padding is not zero")
		}
	}
}

func TestEncodeEmptyPayload(t *testing.T) {
	params, err := newEngine(t).DeriveParameters(10, 4)
	if err != nil {
		t.Fatalf("DeriveParameters failed: %v", err)
	}
	if _, err := params.Encode(nil); err == nil {
		t.Error("expected error but got nil")
	}
}

func TestReconstruct(t *testing.T) {
	engine := newEngine(t)
	params, err := engine.DeriveParameters(10, 4)
	if err != nil {
		t.Fatalf("DeriveParameters failed: %v", err)
	}
	payload := testPayload(500)
	encoded, err := params.Encode(bytes.Clone(payload))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	tests := []struct {
		name    string
		present []int
		wantErr bool
	}{
		{"all shards", []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, false},
		{"payload shards", []int{0, 1, 2, 3}, false},
		{"parity shards", []int{6, 7, 8, 9}, false},
		{"mixed shards", []int{1, 3, 5, 8}, false},
		{"too few shards", []int{0, 5, 9}, true},
		{"no shards", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shards := make([][]byte, 10)
			for _, i := range tt.present {
				shards[i] = bytes.Clone(encoded[i])
			}

			got, err := params.Reconstruct(shards)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Reconstruct failed: %v", err)
			}
			if !bytes.Equal(got[:len(payload)], payload) {
				t.Fatal("reconstructed payload differs")
			}
			for _, i := range tt.present {
				if !bytes.Equal(shards[i], encoded[i]) {
					t.Errorf("present shard %d was modified", i)
				}
			}
		})
	}
}

func TestReconstructShape(t *testing.T) {
	params, err := newEngine(t).DeriveParameters(10, 4)
	if err != nil {
		t.Fatalf("DeriveParameters failed: %v", err)
	}
	encoded, err := params.Encode(testPayload(100))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	t.Run("wrong shard count", func(t *testing.T) {
		if _, err := params.Reconstruct(encoded[:9]); err == nil {
			t.Error("expected error but got nil")
		}
	})

	t.Run("unaligned shards", func(t *testing.T) {
		shards := make([][]byte, 10)
		for i := 4; i < 10; i++ {
			shards[i] = encoded[i][:ShardAlignment-2]
		}
		if _, err := params.Reconstruct(shards); err == nil {
			t.Error("expected error but got nil")
		}
	})
}
