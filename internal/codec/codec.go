// Package codec compresses and decompresses whole-buffer blob and footer
// payloads for the puffin format. Every codec here operates on fully
// materialized byte slices — there is no streaming API, since a Puffin blob
// is written and read as a single unit.
package codec

import "fmt"

// ID identifies a compression codec. It mirrors puffin.Compression but lives
// in this internal package so the codec implementations don't import the
// root package.
type ID uint8

const (
	// None means the payload is not compressed.
	None ID = iota
	// Lz4 frames the payload with LZ4, content size present.
	Lz4
	// Zstd is a one-shot Zstd frame, content size present.
	Zstd
)

// Compress encodes data with the codec named by id. None returns data
// unmodified.
func Compress(id ID, data []byte) ([]byte, error) {
	switch id {
	case None:
		return data, nil
	case Lz4:
		return compressLz4(data)
	case Zstd:
		return compressZstd(data)
	default:
		return nil, fmt.Errorf("codec: unknown compression id %d", id)
	}
}

// Decompress decodes data with the codec named by id. None returns data
// unmodified.
func Decompress(id ID, data []byte) ([]byte, error) {
	switch id {
	case None:
		return data, nil
	case Lz4:
		return decompressLz4(data)
	case Zstd:
		return decompressZstd(data)
	default:
		return nil, fmt.Errorf("codec: unknown compression id %d", id)
	}
}
