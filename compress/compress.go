// Package compress wraps payload compression for the framing layer.
// Compressors transform whole payloads at once; streaming is out of
// scope for codeword-sized frames.
package compress

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// ErrCompression reports a failed compression or decompression pass.
var ErrCompression = errors.New("compress: operation failed")

// Compressor turns payload bytes into a compressed frame body and
// back. Implementations are safe for concurrent use.
type Compressor interface {
	Name() string
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte) ([]byte, error)
}

// ByName resolves a configuration string to a compressor. The empty
// string means no compression.
func ByName(name string) (Compressor, error) {
	switch name {
	case "", "none":
		return Noop{}, nil
	case "zstd":
		return NewZstd()
	default:
		return nil, fmt.Errorf("%w: unknown compressor %q", ErrCompression, name)
	}
}

// Noop passes payloads through unchanged.
type Noop struct{}

func (Noop) Name() string { return "none" }

func (Noop) Compress(src []byte) ([]byte, error) {
	return append([]byte(nil), src...), nil
}

func (Noop) Decompress(src []byte) ([]byte, error) {
	return append([]byte(nil), src...), nil
}

// Zstd compresses with a shared zstd encoder/decoder pair. EncodeAll
// and DecodeAll are concurrency-safe, so one pair serves all frames.
type Zstd struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func NewZstd() (*Zstd, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompression, err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("%w: %v", ErrCompression, err)
	}
	return &Zstd{enc: enc, dec: dec}, nil
}

func (z *Zstd) Name() string { return "zstd" }

func (z *Zstd) Compress(src []byte) ([]byte, error) {
	return z.enc.EncodeAll(src, make([]byte, 0, len(src))), nil
}

func (z *Zstd) Decompress(src []byte) ([]byte, error) {
	out, err := z.dec.DecodeAll(src, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd decode: %v", ErrCompression, err)
	}
	return out, nil
}

// Close releases the shared encoder and decoder.
func (z *Zstd) Close() error {
	err := z.enc.Close()
	z.dec.Close()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCompression, err)
	}
	return nil
}
