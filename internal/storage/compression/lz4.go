package compression

import (
	"fmt"

	"github.com/pierrec/lz4"
)

// NoCompressor is a pass-through compressor.
type NoCompressor struct{}

func (c *NoCompressor) Name() string { return "none" }

func (c *NoCompressor) Compress(data []byte, level int) ([]byte, error) {
	result := make([]byte, len(data))
	copy(result, data)
	return result, nil
}

func (c *NoCompressor) Decompress(data []byte) ([]byte, error) {
	result := make([]byte, len(data))
	copy(result, data)
	return result, nil
}

func (c *NoCompressor) MaxCompressedSize(uncompressedSize int) int { return uncompressedSize }

// LZ4Compressor implements LZ4 block compression for externalize-record
// snapshots, which tend to be small and repetitive (shared ballot/value
// shapes across slots).
type LZ4Compressor struct{}

func (c *LZ4Compressor) Name() string { return "lz4" }

func (c *LZ4Compressor) Compress(data []byte, level int) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if n == 0 {
		// Incompressible input: lz4.CompressBlock returns n==0 in that case.
		return append([]byte(nil), data...), nil
	}
	return compressed[:n], nil
}

func (c *LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	for bufferSize := len(data) * 4; bufferSize <= len(data)*64; bufferSize *= 2 {
		decompressed := make([]byte, bufferSize)
		n, err := lz4.UncompressBlock(data, decompressed)
		if err == nil {
			return decompressed[:n], nil
		}
	}
	return nil, fmt.Errorf("lz4 decompress: buffer too small after retries")
}

func (c *LZ4Compressor) MaxCompressedSize(uncompressedSize int) int {
	return lz4.CompressBlockBound(uncompressedSize)
}
