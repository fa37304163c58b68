package codec

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstd encoders/decoders are expensive to construct and safe to reuse
// across calls once idle, so we pool them the way the teacher's
// DecompressPool does for reads — generalized here to also pool the
// encoder, since this package compresses as well as decompresses.
var (
	zstdEncoderPool = sync.Pool{
		New: func() any {
			enc, err := zstd.NewWriter(nil)
			if err != nil {
				return nil
			}
			return enc
		},
	}
	zstdDecoderPool = sync.Pool{
		New: func() any {
			dec, err := zstd.NewReader(nil)
			if err != nil {
				return nil
			}
			return dec
		},
	}
)

func compressZstd(data []byte) ([]byte, error) {
	v := zstdEncoderPool.Get()
	enc, ok := v.(*zstd.Encoder)
	if !ok {
		return nil, fmt.Errorf("codec: zstd encoder unavailable")
	}
	defer zstdEncoderPool.Put(enc)
	return enc.EncodeAll(data, make([]byte, 0, len(data))), nil
}

func decompressZstd(data []byte) ([]byte, error) {
	v := zstdDecoderPool.Get()
	dec, ok := v.(*zstd.Decoder)
	if !ok {
		return nil, fmt.Errorf("codec: zstd decoder unavailable")
	}
	defer zstdDecoderPool.Put(dec)
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	return out, nil
}
