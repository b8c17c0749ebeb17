package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/crosscat/blobstore"
	"github.com/hupe1980/crosscat/codec"
	"github.com/hupe1980/crosscat/model"
)

// Load restores the latest committed checkpoint, the one CURRENT points at.
func Load(ctx context.Context, store blobstore.BlobStore, optFns ...func(o *LoadOptions)) (*State, error) {
	raw, err := blobstore.ReadAll(ctx, store, CurrentName)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: resolve %s: %w", CurrentName, err)
	}
	return LoadAt(ctx, store, strings.TrimSpace(string(raw)), optFns...)
}

// LoadAt restores the named checkpoint. Every segment is verified against the
// manifest, the mixture statistics are rebuilt from the rows and the restored
// structure is revalidated before it is returned.
func LoadAt(ctx context.Context, store blobstore.BlobStore, name string, optFns ...func(o *LoadOptions)) (*State, error) {
	opts := DefaultLoadOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	raw, err := blobstore.ReadAll(ctx, store, name+"/"+ManifestName)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: read manifest of %s: %w", name, err)
	}
	var manifest Manifest
	if err := (codec.JSON{}).Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("%w: manifest of %s: %v", ErrCorrupt, name, err)
	}
	if manifest.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("%w: manifest says %d, this build reads %d", ErrInvalidVersion, manifest.FormatVersion, FormatVersion)
	}
	recCodec, ok := codec.ByName(manifest.Codec)
	if !ok {
		return nil, fmt.Errorf("checkpoint: manifest names unknown codec %q", manifest.Codec)
	}

	header, kinds, err := readModelSegment(ctx, store, name, manifest, recCodec, opts)
	if err != nil {
		return nil, err
	}
	labels, err := readAssignmentsSegment(ctx, store, name, manifest, opts)
	if err != nil {
		return nil, err
	}
	if len(kinds) != manifest.Kinds || len(labels) != manifest.Kinds {
		return nil, fmt.Errorf("%w: %d kind records and %d label records for %d kinds", ErrCorrupt, len(kinds), len(labels), manifest.Kinds)
	}
	if len(header.Priors) != manifest.Features {
		return nil, fmt.Errorf("%w: header has %d priors for %d features", ErrCorrupt, len(header.Priors), manifest.Features)
	}

	ds, err := resolveDataset(ctx, store, name, manifest, header, opts)
	if err != nil {
		return nil, err
	}
	if ds.Rows() != manifest.Rows {
		return nil, fmt.Errorf("checkpoint: dataset has %d rows, manifest says %d", ds.Rows(), manifest.Rows)
	}
	if ds.Features() != manifest.Features {
		return nil, fmt.Errorf("checkpoint: dataset has %d features, manifest says %d", ds.Features(), manifest.Features)
	}

	state, err := rebuild(header, kinds, labels, ds)
	if err != nil {
		return nil, err
	}
	state.Step = manifest.Step
	return state, nil
}

// readModelSegment decodes the header record and the per-kind records.
func readModelSegment(ctx context.Context, store blobstore.BlobStore, name string, manifest Manifest, c codec.Codec, opts LoadOptions) (modelHeader, []kindState, error) {
	seg, ok := manifest.Segment(SegmentModel)
	if !ok {
		return modelHeader{}, nil, fmt.Errorf("%w: manifest lists no model segment", ErrCorrupt)
	}
	sr, err := openSegment(ctx, store, name, seg, opts.MaxRecordSize)
	if err != nil {
		return modelHeader{}, nil, err
	}

	var header modelHeader
	payload, err := sr.next()
	if err != nil {
		_ = sr.verifyAndClose()
		return modelHeader{}, nil, fmt.Errorf("%w: model segment has no header record", ErrCorrupt)
	}
	if err := c.Unmarshal(payload, &header); err != nil {
		_ = sr.verifyAndClose()
		return modelHeader{}, nil, fmt.Errorf("%w: model header: %v", ErrCorrupt, err)
	}

	var kinds []kindState
	for {
		payload, err := sr.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			_ = sr.verifyAndClose()
			return modelHeader{}, nil, err
		}
		var ks kindState
		if err := c.Unmarshal(payload, &ks); err != nil {
			_ = sr.verifyAndClose()
			return modelHeader{}, nil, fmt.Errorf("%w: kind record %d: %v", ErrCorrupt, len(kinds), err)
		}
		kinds = append(kinds, ks)
	}
	if err := sr.verifyAndClose(); err != nil {
		return modelHeader{}, nil, err
	}
	return header, kinds, nil
}

// readAssignmentsSegment decodes one label slice per kind.
func readAssignmentsSegment(ctx context.Context, store blobstore.BlobStore, name string, manifest Manifest, opts LoadOptions) ([][]model.GroupID, error) {
	seg, ok := manifest.Segment(SegmentAssignments)
	if !ok {
		return nil, fmt.Errorf("%w: manifest lists no assignments segment", ErrCorrupt)
	}
	sr, err := openSegment(ctx, store, name, seg, opts.MaxRecordSize)
	if err != nil {
		return nil, err
	}

	var labels [][]model.GroupID
	for {
		payload, err := sr.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			_ = sr.verifyAndClose()
			return nil, err
		}
		groups, err := decodeLabels(payload)
		if err != nil {
			_ = sr.verifyAndClose()
			return nil, fmt.Errorf("%w: label record %d: %v", ErrCorrupt, len(labels), err)
		}
		labels = append(labels, groups)
	}
	if err := sr.verifyAndClose(); err != nil {
		return nil, err
	}
	return labels, nil
}

// resolveDataset loads the rows segment when present, otherwise falls back to
// the caller-supplied dataset.
func resolveDataset(ctx context.Context, store blobstore.BlobStore, name string, manifest Manifest, header modelHeader, opts LoadOptions) (*model.Dataset, error) {
	seg, ok := manifest.Segment(SegmentRows)
	if !ok {
		if opts.Dataset == nil {
			return nil, ErrNoDataset
		}
		return opts.Dataset, nil
	}

	sr, err := openSegment(ctx, store, name, seg, opts.MaxRecordSize)
	if err != nil {
		return nil, err
	}
	rows := make([]model.Row, 0, seg.Records)
	for {
		payload, err := sr.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			_ = sr.verifyAndClose()
			return nil, err
		}
		var row model.Row
		if err := row.UnmarshalBinary(payload); err != nil {
			_ = sr.verifyAndClose()
			return nil, fmt.Errorf("%w: row record %d: %v", ErrCorrupt, len(rows), err)
		}
		rows = append(rows, row)
	}
	if err := sr.verifyAndClose(); err != nil {
		return nil, err
	}

	ds, err := model.DatasetFromRows(rows, header.Tare)
	if err != nil {
		return nil, fmt.Errorf("%w: rebuild dataset: %v", ErrCorrupt, err)
	}
	return ds, nil
}

// rebuild reconstructs the model/assignments pair, recomputing every mixture's
// sufficient statistics from the rows under the persisted labels.
func rebuild(header modelHeader, kinds []kindState, labels [][]model.GroupID, ds *model.Dataset) (*State, error) {
	m, err := model.NewJointModel(header.Priors, header.FeatureClustering, header.Grid)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: restore model: %w", err)
	}
	asn := model.NewAssignments(ds.Rows())

	for id, ks := range kinds {
		lab := labels[id]
		if len(lab) != ds.Rows() {
			return nil, fmt.Errorf("%w: kind %d labels cover %d rows of %d", ErrCorrupt, id, len(lab), ds.Rows())
		}
		if err := verifyCounts(lab, ks.Counts); err != nil {
			return nil, fmt.Errorf("kind %d: %w", id, err)
		}

		kind := model.NewKind(ks.Clustering, model.NewMixture(ks.Counts))
		for _, f := range ks.Features {
			stats, err := ds.GroupStatsUnder(f, lab, len(ks.Counts))
			if err != nil {
				return nil, fmt.Errorf("checkpoint: restore kind %d feature %d: %w", id, f, err)
			}
			if err := kind.AddFeature(f, stats); err != nil {
				return nil, fmt.Errorf("checkpoint: restore kind %d feature %d: %w", id, f, err)
			}
		}
		if _, err := m.AppendKind(kind); err != nil {
			return nil, fmt.Errorf("checkpoint: restore kind %d: %w", id, err)
		}
		if err := asn.Append(lab); err != nil {
			return nil, fmt.Errorf("checkpoint: restore kind %d labels: %w", id, err)
		}
	}

	if err := m.RebuildDispatch(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := asn.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &State{Model: m, Assignments: asn, Dataset: ds}, nil
}

// verifyCounts checks the persisted group sizes against a fresh tally of the
// labels. A label outside the persisted group range is corruption, not a
// growth case.
func verifyCounts(labels []model.GroupID, counts []int) error {
	tally := make([]int, len(counts))
	for r, g := range labels {
		if g < 0 || int(g) >= len(counts) {
			return fmt.Errorf("%w: row %d label %d outside %d groups", ErrCorrupt, r, g, len(counts))
		}
		tally[g]++
	}
	for g := range counts {
		if tally[g] != counts[g] {
			return fmt.Errorf("%w: group %d seats %d rows, labels say %d", ErrCorrupt, g, counts[g], tally[g])
		}
	}
	return nil
}
