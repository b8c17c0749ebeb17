package stream

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// ReaderOptions configures NewReader.
type ReaderOptions struct {
	// Cyclic restarts the stream at record 0 on end-of-stream instead of
	// returning io.EOF. Requires a regular file.
	Cyclic bool

	// MaxRecordSize bounds the length prefix accepted per record.
	MaxRecordSize uint32
}

// DefaultReaderOptions returns the default reader options.
var DefaultReaderOptions = ReaderOptions{
	Cyclic:        false,
	MaxRecordSize: DefaultMaxRecordSize,
}

// Reader reads records from a named stream, decompressing per the name's
// suffix. The name "-" (or "-.gz", "-.zst", "-.lz4") reads from stdin.
type Reader struct {
	name   string
	isFile bool
	opts   ReaderOptions

	file   *os.File
	dec    io.ReadCloser
	fr     *FrameReader
	pos    uint64
	closed bool
}

// NewReader opens the named stream for reading.
func NewReader(name string, optFns ...func(o *ReaderOptions)) (*Reader, error) {
	opts := DefaultReaderOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	r := &Reader{name: name, opts: opts}
	if opts.Cyclic && isStdName(name) {
		return nil, fmt.Errorf("stream: cyclic read of %s: %w", name, ErrNotFile)
	}
	if err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reader) open() error {
	var src io.Reader
	if isStdName(r.name) {
		src = os.Stdin
	} else {
		f, err := os.Open(r.name) //nolint:gosec // G304: path is caller-controlled by design
		if err != nil {
			return fmt.Errorf("stream: open %s: %w", r.name, err)
		}
		r.file = f
		r.isFile = true
		src = f
	}

	dec, err := Decompress(src, CodecFor(r.name))
	if err != nil {
		if r.file != nil {
			_ = r.file.Close()
			r.file = nil
		}
		return err
	}
	r.dec = dec
	r.fr = NewFrameReader(bufio.NewReader(dec))
	r.fr.SetMaxRecordSize(r.opts.MaxRecordSize)
	r.pos = 0
	return nil
}

func (r *Reader) reopen() error {
	if !r.isFile {
		return fmt.Errorf("stream: reopen %s: %w", r.name, ErrNotFile)
	}
	if err := r.closeStream(); err != nil {
		return err
	}
	return r.open()
}

func (r *Reader) closeStream() error {
	if r.dec != nil {
		if err := r.dec.Close(); err != nil {
			return fmt.Errorf("stream: close %s: %w", r.name, err)
		}
		r.dec = nil
	}
	if r.file != nil {
		if err := r.file.Close(); err != nil {
			return fmt.Errorf("stream: close %s: %w", r.name, err)
		}
		r.file = nil
	}
	return nil
}

// Name returns the stream name the reader was opened with.
func (r *Reader) Name() string { return r.name }

// IsFile reports whether the reader is backed by a regular file (false for
// stdin).
func (r *Reader) IsFile() bool { return r.isFile }

// Position returns the index of the next record to be read, counted from the
// start of the stream.
func (r *Reader) Position() uint64 { return r.pos }

// Next returns the next record's payload. At end-of-stream it returns io.EOF,
// or, in cyclic mode, reopens the stream and returns record 0; a cyclic read
// of an empty stream returns ErrEmptyStream.
func (r *Reader) Next() ([]byte, error) {
	if r.closed {
		return nil, ErrClosed
	}
	payload, err := r.fr.Next()
	if err == nil {
		r.pos++
		return payload, nil
	}
	if !errors.Is(err, io.EOF) || !r.opts.Cyclic {
		return nil, err
	}

	if err := r.reopen(); err != nil {
		return nil, err
	}
	payload, err = r.fr.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyStream
		}
		return nil, err
	}
	r.pos++
	return payload, nil
}

// SetPosition seeks to the given record index. Seeking forward skips
// records; seeking backward reopens the stream and skips from the start, so
// it requires a regular file. Seeking past the last record fails.
func (r *Reader) SetPosition(target uint64) error {
	if r.closed {
		return ErrClosed
	}
	if target < r.pos {
		if err := r.reopen(); err != nil {
			return err
		}
	}
	for r.pos < target {
		if _, err := r.fr.Skip(); err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("stream: set position %d on %s: stream has %d records", target, r.name, r.pos)
			}
			return err
		}
		r.pos++
	}
	return nil
}

// Close releases the underlying file. Closing a stdin-backed reader leaves
// stdin open.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.closeStream()
}

// ReadAll reads every record of the named stream into memory.
func ReadAll(name string, optFns ...func(o *ReaderOptions)) ([][]byte, error) {
	r, err := NewReader(name, optFns...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	var records [][]byte
	for {
		payload, err := r.Next()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, payload)
	}
}
