package compression

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestBlob_RoundTrip(t *testing.T) {
	payload := []byte(strings.Repeat(`{"timestamp":"2024-01-01","value":42.5},`, 50))

	for _, algo := range []Algorithm{None, Snappy} {
		t.Run(algo.String(), func(t *testing.T) {
			blob, err := EncodeBlob(algo, payload)
			if err != nil {
				t.Fatalf("EncodeBlob failed: %v", err)
			}
			if Algorithm(blob[0]) != algo {
				t.Errorf("expected header %d, got %d", algo, blob[0])
			}

			got, err := DecodeBlob(blob)
			if err != nil {
				t.Fatalf("DecodeBlob failed: %v", err)
			}
			if !bytes.Equal(got, payload) {
				t.Error("decoded payload does not match")
			}
		})
	}
}

func TestBlob_SnappyShrinksRepetitiveData(t *testing.T) {
	payload := []byte(strings.Repeat("0123456789", 200))

	blob, err := EncodeBlob(Snappy, payload)
	if err != nil {
		t.Fatalf("EncodeBlob failed: %v", err)
	}
	if len(blob) >= len(payload) {
		t.Errorf("expected compression, got %d >= %d bytes", len(blob), len(payload))
	}
}

func TestDecodeBlob_Errors(t *testing.T) {
	if _, err := DecodeBlob(nil); !errors.Is(err, ErrEmptyBlob) {
		t.Errorf("expected ErrEmptyBlob, got %v", err)
	}
	if _, err := DecodeBlob([]byte{9, 1, 2}); err == nil {
		t.Error("expected error for unknown algorithm")
	}
	if _, err := DecodeBlob([]byte{byte(Snappy), 0xff, 0xff, 0xff}); err == nil {
		t.Error("expected error for corrupt snappy payload")
	}
}

func TestSnappyCompressor_Empty(t *testing.T) {
	c := NewSnappyCompressor()

	out, err := c.Compress(nil)
	if err != nil || len(out) != 0 {
		t.Errorf("Compress(nil) = %v, %v", out, err)
	}
	out, err = c.Decompress([]byte{})
	if err != nil || len(out) != 0 {
		t.Errorf("Decompress(empty) = %v, %v", out, err)
	}
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		in      string
		want    Algorithm
		wantErr bool
	}{
		{"", Snappy, false},
		{"snappy", Snappy, false},
		{"NONE", None, false},
		{"zstd", None, true},
	}
	for _, tt := range tests {
		got, err := ParseAlgorithm(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAlgorithm(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAlgorithm(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGetCompressor_Unsupported(t *testing.T) {
	if _, err := GetCompressor(Algorithm(7)); err == nil {
		t.Error("expected error")
	}
}
