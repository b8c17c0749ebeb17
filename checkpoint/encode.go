package checkpoint

import (
	"encoding/binary"
	"errors"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/crosscat/model"
)

// modelHeader is the model segment's first record. Tare is present only when
// the checkpoint carries rows; otherwise the caller-supplied dataset brings
// its own.
type modelHeader struct {
	Priors            []model.GaussianPrior `json:"priors"`
	FeatureClustering model.PitmanYor       `json:"feature_clustering"`
	Grid              model.Grid            `json:"grid"`
	Tare              []float64             `json:"tare,omitempty"`
}

// kindState is one kind's structural record: its row-clustering prior, its
// feature set and its group sizes, vacant groups included. The sufficient
// statistics are rebuilt from the rows on load.
type kindState struct {
	Clustering model.PitmanYor   `json:"clustering"`
	Features   []model.FeatureID `json:"features"`
	Counts     []int             `json:"counts"`
}

// encodeLabels packs one kind's row labels:
// [Count:uvarint][Labels:N*4, little endian].
func encodeLabels(groups []model.GroupID) []byte {
	buf := make([]byte, 0, binary.MaxVarintLen64+len(groups)*4)
	buf = binary.AppendUvarint(buf, uint64(len(groups)))
	for _, g := range groups {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(g))
	}
	return buf
}

// decodeLabels unpacks a record written by encodeLabels.
func decodeLabels(data []byte) ([]model.GroupID, error) {
	count, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, errors.New("checkpoint: invalid label count")
	}
	data = data[n:]
	if count > uint64(len(data))/4 {
		return nil, errors.New("checkpoint: short buffer for labels")
	}
	groups := make([]model.GroupID, count)
	for i := range groups {
		groups[i] = model.GroupID(binary.LittleEndian.Uint32(data))
		data = data[4:]
	}
	return groups, nil
}

// rowAt reassembles the dataset's r-th row, inverse of model.DatasetFromRows.
// The observed mask stays nil while every cell is observed.
func rowAt(ds *model.Dataset, r int) model.Row {
	row := model.Row{ID: uint32(r), Values: make([]float64, ds.Features())} //nolint:gosec // G115: row index fits uint32 by construction

	var mask *roaring.Bitmap
	for f := 0; f < ds.Features(); f++ {
		col := ds.Column(model.FeatureID(f))
		row.Values[f] = col.Values[r]
		if col.IsObserved(r) {
			if mask != nil {
				mask.Add(uint32(f))
			}
			continue
		}
		if mask == nil {
			// First gap: every feature before it was observed.
			mask = roaring.New()
			for g := 0; g < f; g++ {
				mask.Add(uint32(g))
			}
		}
	}
	row.Observed = mask
	return row
}
