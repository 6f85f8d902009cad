// Package compression frames the series blobs kept in Redis. A blob is one
// algorithm byte followed by the (possibly compressed) payload.
package compression

import (
	"errors"
	"fmt"
	"strings"
)

// Algorithm defines compression types
type Algorithm uint8

const (
	None   Algorithm = 0
	Snappy Algorithm = 1
)

// ErrEmptyBlob is returned when decoding a blob without a header byte
var ErrEmptyBlob = errors.New("empty blob")

// String returns the config name of the algorithm
func (a Algorithm) String() string {
	switch a {
	case None:
		return "none"
	case Snappy:
		return "snappy"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(a))
	}
}

// ParseAlgorithm parses a config name. An empty name means snappy.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "snappy":
		return Snappy, nil
	case "none":
		return None, nil
	default:
		return None, fmt.Errorf("unsupported compression algorithm: %s (supported: none, snappy)", name)
	}
}

// Compressor interface for compression algorithms
type Compressor interface {
	// Compress compresses data
	Compress(data []byte) ([]byte, error)

	// Decompress decompresses data
	Decompress(data []byte) ([]byte, error)

	// Algorithm returns the compression algorithm type
	Algorithm() Algorithm
}

// GetCompressor returns a compressor for the given algorithm
func GetCompressor(algo Algorithm) (Compressor, error) {
	switch algo {
	case None:
		return &NoneCompressor{}, nil
	case Snappy:
		return NewSnappyCompressor(), nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %d", algo)
	}
}

// EncodeBlob compresses data with algo and prepends the algorithm byte
func EncodeBlob(algo Algorithm, data []byte) ([]byte, error) {
	c, err := GetCompressor(algo)
	if err != nil {
		return nil, err
	}

	payload, err := c.Compress(data)
	if err != nil {
		return nil, err
	}

	blob := make([]byte, 0, len(payload)+1)
	blob = append(blob, byte(algo))
	return append(blob, payload...), nil
}

// DecodeBlob reads the algorithm byte and returns the decompressed payload
func DecodeBlob(blob []byte) ([]byte, error) {
	if len(blob) == 0 {
		return nil, ErrEmptyBlob
	}

	c, err := GetCompressor(Algorithm(blob[0]))
	if err != nil {
		return nil, err
	}
	return c.Decompress(blob[1:])
}

// NoneCompressor is a no-op compressor
type NoneCompressor struct{}

func (n *NoneCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

func (n *NoneCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

func (n *NoneCompressor) Algorithm() Algorithm {
	return None
}
