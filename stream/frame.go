package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// DefaultMaxRecordSize bounds the length prefix a FrameReader accepts.
// Checkpoint records are at most a few megabytes; anything near 4 GiB is a
// misframed stream.
const DefaultMaxRecordSize = 64 << 20

// FrameWriter writes length-prefixed records to an io.Writer.
type FrameWriter struct {
	w      io.Writer
	lenBuf [4]byte
}

// NewFrameWriter returns a FrameWriter emitting records to w.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

// WriteRecord writes one record: a 4-byte little-endian length prefix
// followed by the payload bytes.
func (fw *FrameWriter) WriteRecord(payload []byte) error {
	if len(payload) > math.MaxUint32 {
		return fmt.Errorf("stream: record of %d bytes does not fit a 32-bit length prefix", len(payload))
	}
	binary.LittleEndian.PutUint32(fw.lenBuf[:], uint32(len(payload)))
	if _, err := fw.w.Write(fw.lenBuf[:]); err != nil {
		return fmt.Errorf("stream: write record header: %w", err)
	}
	if _, err := fw.w.Write(payload); err != nil {
		return fmt.Errorf("stream: write record payload: %w", err)
	}
	return nil
}

// FrameReader reads length-prefixed records from an io.Reader.
type FrameReader struct {
	r       io.Reader
	maxSize uint32
	lenBuf  [4]byte
}

// NewFrameReader returns a FrameReader consuming records from r with the
// default record size limit.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: r, maxSize: DefaultMaxRecordSize}
}

// SetMaxRecordSize overrides the record size limit.
func (fr *FrameReader) SetMaxRecordSize(limit uint32) {
	fr.maxSize = limit
}

// Next reads the next record and returns its payload. It returns io.EOF at a
// clean end of stream and ErrTruncated when the stream ends mid-record.
func (fr *FrameReader) Next() ([]byte, error) {
	size, err := fr.header()
	if err != nil {
		return nil, err
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(fr.r, payload); err != nil {
		return nil, fmt.Errorf("%w: record body shorter than %d bytes", ErrTruncated, size)
	}
	return payload, nil
}

// Skip discards the next record and returns its payload size. Errors match
// Next.
func (fr *FrameReader) Skip() (uint32, error) {
	size, err := fr.header()
	if err != nil {
		return 0, err
	}
	if _, err := io.CopyN(io.Discard, fr.r, int64(size)); err != nil {
		return 0, fmt.Errorf("%w: record body shorter than %d bytes", ErrTruncated, size)
	}
	return size, nil
}

func (fr *FrameReader) header() (uint32, error) {
	if _, err := io.ReadFull(fr.r, fr.lenBuf[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("%w: record header", ErrTruncated)
	}
	size := binary.LittleEndian.Uint32(fr.lenBuf[:])
	if size > fr.maxSize {
		return 0, &RecordSizeError{Size: size, Limit: fr.maxSize}
	}
	return size, nil
}
