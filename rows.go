package crosscat

import (
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/crosscat/model"
	"github.com/hupe1980/crosscat/stream"
)

// RowStreamOptions configures LoadRows.
type RowStreamOptions struct {
	// Rows caps the number of records loaded. Zero reads to end-of-stream;
	// cyclic reads require a positive cap.
	Rows int

	// Cyclic restarts the stream at record 0 on end-of-stream, so a short
	// stream can fill a larger row window.
	Cyclic bool

	// Tare holds the implicit value of unobserved cells, one per feature.
	// Nil means all zeros, sized from the first record.
	Tare []float64

	// MaxRecordSize bounds the record length accepted while reading.
	MaxRecordSize uint32
}

// DefaultRowStreamOptions returns the default options for LoadRows.
var DefaultRowStreamOptions = RowStreamOptions{
	Rows:          0,
	Cyclic:        false,
	Tare:          nil,
	MaxRecordSize: stream.DefaultMaxRecordSize,
}

// LoadRows reads a row stream into a column-major dataset. The name's
// suffix picks the decompression codec; see the stream package for the
// naming scheme.
func LoadRows(name string, optFns ...func(o *RowStreamOptions)) (*model.Dataset, error) {
	opts := DefaultRowStreamOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Cyclic && opts.Rows <= 0 {
		return nil, fmt.Errorf("crosscat: cyclic row load of %s needs a row cap", name)
	}

	r, err := stream.NewReader(name, func(o *stream.ReaderOptions) {
		o.Cyclic = opts.Cyclic
		if opts.MaxRecordSize > 0 {
			o.MaxRecordSize = opts.MaxRecordSize
		}
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	var rows []model.Row
	for opts.Rows == 0 || len(rows) < opts.Rows {
		payload, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &RowStreamError{Name: name, Record: uint64(len(rows)), cause: err}
		}
		var row model.Row
		if err := row.UnmarshalBinary(payload); err != nil {
			return nil, &RowStreamError{Name: name, Record: uint64(len(rows)), cause: err}
		}
		rows = append(rows, row)
	}

	tare := opts.Tare
	if tare == nil {
		if len(rows) == 0 {
			return nil, fmt.Errorf("crosscat: row stream %s is empty", name)
		}
		tare = make([]float64, len(rows[0].Values))
	}
	return model.DatasetFromRows(rows, tare)
}
