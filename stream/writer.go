package stream

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// WriterOptions configures NewWriter.
type WriterOptions struct {
	// Append opens an existing file for appending instead of truncating.
	// Appending to a compressed stream produces concatenated members, which
	// every supported codec reads back as one stream.
	Append bool

	// Level is the compression level for codecs that support one. It follows
	// the zstd scale; gzip clamps it to its own maximum.
	Level int
}

// DefaultWriterOptions returns the default writer options.
var DefaultWriterOptions = WriterOptions{
	Append: false,
	Level:  3,
}

// Writer writes records to a named stream, compressing per the name's
// suffix. The name "-" (or "-.gz", "-.zst", "-.lz4") writes to stdout.
type Writer struct {
	name   string
	isFile bool
	file   *os.File
	comp   io.WriteCloser
	buf    *bufio.Writer
	fw     *FrameWriter
	closed bool
}

// NewWriter opens the named stream for writing. Files are created with 0644
// and truncated unless Append is set.
func NewWriter(name string, optFns ...func(o *WriterOptions)) (*Writer, error) {
	opts := DefaultWriterOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	w := &Writer{name: name}

	var sink io.Writer
	if isStdName(name) {
		sink = os.Stdout
	} else {
		flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		if opts.Append {
			flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
		}
		f, err := os.OpenFile(name, flags, 0o644) //nolint:gosec // G304: path is caller-controlled by design
		if err != nil {
			return nil, fmt.Errorf("stream: open %s for writing: %w", name, err)
		}
		w.file = f
		w.isFile = true
		sink = f
	}

	comp, err := Compress(sink, CodecFor(name), opts.Level)
	if err != nil {
		if w.file != nil {
			_ = w.file.Close()
		}
		return nil, err
	}
	w.comp = comp
	w.buf = bufio.NewWriter(comp)
	w.fw = NewFrameWriter(w.buf)
	return w, nil
}

// Name returns the stream name the writer was opened with.
func (w *Writer) Name() string { return w.name }

// IsFile reports whether the writer targets a regular file (false for
// stdout).
func (w *Writer) IsFile() bool { return w.isFile }

// Write appends one record to the stream.
func (w *Writer) Write(payload []byte) error {
	if w.closed {
		return ErrClosed
	}
	return w.fw.WriteRecord(payload)
}

// Flush pushes buffered bytes through the compressor to the underlying file.
// A flushed compressed stream is readable up to the flush point.
func (w *Writer) Flush() error {
	if w.closed {
		return ErrClosed
	}
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("stream: flush %s: %w", w.name, err)
	}
	if f, ok := w.comp.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("stream: flush %s: %w", w.name, err)
		}
	}
	return nil
}

// Close flushes and closes the stream. Closing a stdout-backed writer
// finalizes the compressor but leaves stdout open.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("stream: close %s: %w", w.name, err)
	}
	if err := w.comp.Close(); err != nil {
		return fmt.Errorf("stream: close %s: %w", w.name, err)
	}
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return fmt.Errorf("stream: close %s: %w", w.name, err)
		}
	}
	return nil
}

// WriteAll writes every record to the named stream and closes it.
func WriteAll(name string, records [][]byte, optFns ...func(o *WriterOptions)) error {
	w, err := NewWriter(name, optFns...)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			_ = w.Close()
			return err
		}
	}
	return w.Close()
}

func isStdName(name string) bool {
	switch name {
	case "-", "-.gz", "-.zst", "-.lz4":
		return true
	default:
		return false
	}
}
