package stream

import (
	"errors"
	"io"
)

// Stats summarizes a record stream.
type Stats struct {
	// IsFile reports whether the stream is backed by a regular file.
	IsFile bool `json:"isFile"`

	// RecordCount is the number of records in the stream.
	RecordCount uint64 `json:"recordCount"`

	// MaxRecordSize is the largest record payload, in bytes.
	MaxRecordSize uint32 `json:"maxRecordSize"`
}

// Stat scans the named stream and returns its statistics. The scan skips
// record payloads without allocating them.
func Stat(name string, optFns ...func(o *ReaderOptions)) (Stats, error) {
	r, err := NewReader(name, optFns...)
	if err != nil {
		return Stats{}, err
	}
	defer func() { _ = r.Close() }()

	stats := Stats{IsFile: r.IsFile()}
	for {
		size, err := r.fr.Skip()
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return Stats{}, err
		}
		stats.RecordCount++
		if size > stats.MaxRecordSize {
			stats.MaxRecordSize = size
		}
	}
}
