package common

import (
	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zstd"
)

// Compressor wraps encoded payloads in zstd frames. It is safe for concurrent use.
//
// The encoder runs with a single goroutine and no checksum padding so equal inputs always
// produce identical frames.
type Compressor struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// maxDecodedSize bounds the memory a single frame may expand to
const maxDecodedSize = 256 << 20

// NewCompressor creates a zstd compressor
func NewCompressor() (*Compressor, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithZeroFrames(true),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create zstd encoder")
	}
	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(maxDecodedSize),
	)
	if err != nil {
		enc.Close()
		return nil, errors.Wrap(err, "create zstd decoder")
	}
	return &Compressor{enc: enc, dec: dec}, nil
}

// Compress returns src wrapped in a zstd frame
func (c *Compressor) Compress(src []byte) []byte {
	return c.enc.EncodeAll(src, make([]byte, 0, len(src)/2+16))
}

// Decompress unwraps a frame produced by Compress
func (c *Compressor) Decompress(src []byte) ([]byte, error) {
	out, err := c.dec.DecodeAll(src, nil)
	if err != nil {
		return nil, errors.Wrap(err, "zstd")
	}
	return out, nil
}
