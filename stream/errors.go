package stream

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncated is returned when a stream ends in the middle of a record.
	ErrTruncated = errors.New("stream: truncated record")

	// ErrEmptyStream is returned when a cyclic read finds no record to
	// restart on.
	ErrEmptyStream = errors.New("stream: stream is empty")

	// ErrNotFile is returned when an operation that must reopen the stream
	// (cyclic reads, backward seeks) is requested on stdin or stdout.
	ErrNotFile = errors.New("stream: operation requires a regular file")

	// ErrClosed is returned when a Reader or Writer is used after Close.
	ErrClosed = errors.New("stream: closed")
)

// RecordSizeError is returned when a record's length prefix exceeds the
// reader's configured limit. It usually indicates a corrupt or misframed
// stream rather than a genuinely huge record.
type RecordSizeError struct {
	Size  uint32
	Limit uint32
}

func (e *RecordSizeError) Error() string {
	return fmt.Sprintf("stream: record size %d exceeds limit %d", e.Size, e.Limit)
}
