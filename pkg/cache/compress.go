package cache

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var (
	zstdOnce sync.Once
	zstdEnc  *zstd.Encoder
	zstdDec  *zstd.Decoder
	zstdErr  error
)

func codecs() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdEnc, zstdErr = zstd.NewWriter(nil)
		if zstdErr != nil {
			zstdErr = fmt.Errorf("creating zstd encoder: %w", zstdErr)
			return
		}
		zstdDec, zstdErr = zstd.NewReader(nil)
		if zstdErr != nil {
			zstdErr = fmt.Errorf("creating zstd decoder: %w", zstdErr)
		}
	})
	return zstdEnc, zstdDec, zstdErr
}

// Compress returns data compressed with zstd.
func Compress(data []byte) ([]byte, error) {
	enc, _, err := codecs()
	if err != nil {
		return nil, err
	}
	return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

// Decompress reverses [Compress].
func Decompress(data []byte) ([]byte, error) {
	_, dec, err := codecs()
	if err != nil {
		return nil, err
	}
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing: %w", err)
	}
	return out, nil
}
