package model

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// Row is one observation: a dense value vector with an optional observed
// mask over feature indices. A nil mask means every feature is observed;
// unobserved cells hold placeholder values and are replaced by the dataset's
// tare when the row is ingested.
type Row struct {
	ID       uint32
	Values   []float64
	Observed *roaring.Bitmap
}

// IsObserved reports whether the row carries a real value for the feature.
func (r Row) IsObserved(f FeatureID) bool {
	return r.Observed == nil || r.Observed.Contains(uint32(f))
}

// MarshalBinary implements encoding.BinaryMarshaler.
// Format: [ID:4][ValueCount:uvarint][Values:N*8][MaskLen:uvarint][Mask:N].
// A zero MaskLen means the row is fully observed.
func (r Row) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, 4+binary.MaxVarintLen64+len(r.Values)*8)

	buf = binary.LittleEndian.AppendUint32(buf, r.ID)
	buf = binary.AppendUvarint(buf, uint64(len(r.Values)))
	for _, v := range r.Values {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}

	var mask []byte
	if r.Observed != nil {
		b, err := r.Observed.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("model: marshal row %d observed mask: %w", r.ID, err)
		}
		mask = b
	}
	buf = binary.AppendUvarint(buf, uint64(len(mask)))
	buf = append(buf, mask...)
	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (r *Row) UnmarshalBinary(data []byte) error {
	if len(data) < 4 {
		return errors.New("model: short buffer for row ID")
	}
	r.ID = binary.LittleEndian.Uint32(data)
	data = data[4:]

	count, n := binary.Uvarint(data)
	if n <= 0 {
		return errors.New("model: invalid row value count")
	}
	data = data[n:]
	if count > uint64(len(data))/8 {
		return errors.New("model: short buffer for row values")
	}
	r.Values = make([]float64, count)
	for i := range r.Values {
		r.Values[i] = math.Float64frombits(binary.LittleEndian.Uint64(data))
		data = data[8:]
	}

	maskLen, n := binary.Uvarint(data)
	if n <= 0 {
		return errors.New("model: invalid row mask length")
	}
	data = data[n:]
	if uint64(len(data)) < maskLen {
		return errors.New("model: short buffer for row mask")
	}
	if maskLen == 0 {
		r.Observed = nil
		return nil
	}
	r.Observed = roaring.New()
	if err := r.Observed.UnmarshalBinary(data[:maskLen]); err != nil {
		return fmt.Errorf("model: unmarshal row %d observed mask: %w", r.ID, err)
	}
	return nil
}

// DatasetFromRows assembles a column-major dataset from a row window. Every
// row must carry one value per tare entry; row masks over features become
// per-column masks over rows. Columns every row observes get a nil mask.
func DatasetFromRows(rows []Row, tare []float64) (*Dataset, error) {
	features := len(tare)
	cols := make([]Column, features)
	for f := range cols {
		cols[f].Values = make([]float64, len(rows))
	}

	masked := false
	for i, row := range rows {
		if len(row.Values) != features {
			return nil, fmt.Errorf("model: row %d: %d values for %d features", row.ID, len(row.Values), features)
		}
		if row.Observed != nil && !row.Observed.IsEmpty() && int(row.Observed.Maximum()) >= features {
			return nil, fmt.Errorf("model: row %d: observed feature %d out of range", row.ID, row.Observed.Maximum())
		}
		if row.Observed != nil {
			masked = true
		}
		for f := range cols {
			cols[f].Values[i] = row.Values[f]
		}
	}

	if masked {
		for f := range cols {
			bm := roaring.New()
			for i, row := range rows {
				if row.IsObserved(FeatureID(f)) {
					bm.Add(uint32(i))
				}
			}
			if int(bm.GetCardinality()) < len(rows) {
				cols[f].Observed = bm
			}
		}
	}

	return NewDataset(cols, tare, len(rows))
}
