// internal/cache/compression.go
package cache

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

const (
	flagRaw byte = iota
	flagZstd
)

// codec frames cached payloads with a one-byte header so small values can
// skip compression.
type codec struct {
	minSize int
	enc     *zstd.Encoder
	dec     *zstd.Decoder
}

func newCodec(minSize, level int) (*codec, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, fmt.Errorf("creating encoder: %w", err)
	}

	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("creating decoder: %w", err)
	}

	return &codec{minSize: minSize, enc: enc, dec: dec}, nil
}

func (c *codec) encode(data []byte) []byte {
	if len(data) < c.minSize {
		return append([]byte{flagRaw}, data...)
	}
	out := make([]byte, 1, len(data)/2+1)
	out[0] = flagZstd
	return c.enc.EncodeAll(data, out)
}

func (c *codec) decode(framed []byte) ([]byte, error) {
	if len(framed) == 0 {
		return nil, fmt.Errorf("empty cache value")
	}
	switch framed[0] {
	case flagRaw:
		return append([]byte(nil), framed[1:]...), nil
	case flagZstd:
		out, err := c.dec.DecodeAll(framed[1:], nil)
		if err != nil {
			return nil, fmt.Errorf("decompressing: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown cache frame %d", framed[0])
	}
}

func (c *codec) close() {
	c.enc.Close()
	c.dec.Close()
}
