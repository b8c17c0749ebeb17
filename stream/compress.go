package stream

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec identifies the whole-stream compression applied to a named stream.
type Codec string

const (
	// CodecNone leaves the stream uncompressed.
	CodecNone Codec = ""
	// CodecGzip compresses with gzip (".gz" suffix).
	CodecGzip Codec = "gzip"
	// CodecZstd compresses with zstandard (".zst" suffix).
	CodecZstd Codec = "zstd"
	// CodecLZ4 compresses with lz4 (".lz4" suffix).
	CodecLZ4 Codec = "lz4"
)

// CodecFor returns the compression codec implied by the stream name.
func CodecFor(name string) Codec {
	switch {
	case strings.HasSuffix(name, ".gz"):
		return CodecGzip
	case strings.HasSuffix(name, ".zst"):
		return CodecZstd
	case strings.HasSuffix(name, ".lz4"):
		return CodecLZ4
	default:
		return CodecNone
	}
}

// SuffixFor returns the stream-name suffix implying the codec, the inverse of
// CodecFor. CodecNone maps to the empty suffix.
func SuffixFor(codec Codec) string {
	switch codec {
	case CodecGzip:
		return ".gz"
	case CodecZstd:
		return ".zst"
	case CodecLZ4:
		return ".lz4"
	default:
		return ""
	}
}

type flusher interface {
	Flush() error
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// Compress wraps w in the codec's stream compressor. CodecNone returns a
// pass-through whose Close does not close w; callers always get a
// WriteCloser they must Close before closing the underlying writer.
func Compress(w io.Writer, codec Codec, level int) (io.WriteCloser, error) {
	switch codec {
	case CodecNone:
		return nopWriteCloser{w}, nil
	case CodecGzip:
		if level > gzip.BestCompression {
			level = gzip.BestCompression
		}
		zw, err := gzip.NewWriterLevel(w, level)
		if err != nil {
			return nil, fmt.Errorf("stream: gzip writer: %w", err)
		}
		return zw, nil
	case CodecZstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		if err != nil {
			return nil, fmt.Errorf("stream: zstd writer: %w", err)
		}
		return zw, nil
	case CodecLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("stream: unknown codec %q", codec)
	}
}

// Decompress wraps r in the codec's stream decompressor. CodecNone returns a
// pass-through.
func Decompress(r io.Reader, codec Codec) (io.ReadCloser, error) {
	switch codec {
	case CodecNone:
		return io.NopCloser(r), nil
	case CodecGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("stream: gzip reader: %w", err)
		}
		return zr, nil
	case CodecZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("stream: zstd reader: %w", err)
		}
		return zr.IOReadCloser(), nil
	case CodecLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("stream: unknown codec %q", codec)
	}
}
