package checkpoint

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/crosscat/blobstore"
	"github.com/hupe1980/crosscat/codec"
	"github.com/hupe1980/crosscat/model"
)

// Save writes the state as a checkpoint named after its step and commits it
// as the latest by rewriting the CURRENT pointer. It returns the checkpoint
// name. Segments and manifest land before the pointer moves, so a failed save
// never commits partial state.
func Save(ctx context.Context, store blobstore.BlobStore, state State, optFns ...func(o *Options)) (string, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Codec == nil {
		opts.Codec = codec.Default
	}

	if err := checkSaveState(state, opts); err != nil {
		return "", err
	}

	name := Name(state.Step)
	manifest := Manifest{
		FormatVersion: FormatVersion,
		CreatedAt:     time.Now().UTC(),
		Codec:         opts.Codec.Name(),
		Step:          state.Step,
		Rows:          state.Assignments.RowCount(),
		Features:      state.Model.FeatureCount(),
		Kinds:         state.Model.KindCount(),
	}

	seg, err := writeModelSegment(ctx, store, name, state, opts)
	if err != nil {
		return "", err
	}
	manifest.Segments = append(manifest.Segments, seg)

	seg, err = writeAssignmentsSegment(ctx, store, name, state.Assignments, opts)
	if err != nil {
		return "", err
	}
	manifest.Segments = append(manifest.Segments, seg)

	if opts.IncludeRows {
		seg, err = writeRowsSegment(ctx, store, name, state.Dataset, opts)
		if err != nil {
			return "", err
		}
		manifest.Segments = append(manifest.Segments, seg)
	}

	// The manifest is always plain JSON so it stays readable regardless of
	// the record codec it names.
	raw, err := (codec.JSON{}).Marshal(manifest)
	if err != nil {
		return "", fmt.Errorf("checkpoint: marshal manifest: %w", err)
	}
	if err := store.Put(ctx, name+"/"+ManifestName, raw); err != nil {
		return "", fmt.Errorf("checkpoint: write manifest: %w", err)
	}

	if err := store.Put(ctx, CurrentName, []byte(name)); err != nil {
		return "", fmt.Errorf("checkpoint: commit %s: %w", name, err)
	}
	return name, nil
}

func checkSaveState(state State, opts Options) error {
	m, asn := state.Model, state.Assignments
	if m == nil || asn == nil {
		return fmt.Errorf("checkpoint: save requires a model and assignments")
	}
	if m.KindCount() != asn.KindCount() {
		return fmt.Errorf("checkpoint: model tracks %d kinds, assignments %d", m.KindCount(), asn.KindCount())
	}
	if m.RowCount() != asn.RowCount() {
		return fmt.Errorf("checkpoint: model seats %d rows, assignments %d", m.RowCount(), asn.RowCount())
	}
	if opts.IncludeRows {
		if state.Dataset == nil {
			return fmt.Errorf("checkpoint: saving rows requires a dataset")
		}
		if got := state.Dataset.Rows(); got != asn.RowCount() {
			return fmt.Errorf("checkpoint: dataset has %d rows, assignments %d", got, asn.RowCount())
		}
		if got := state.Dataset.Features(); got != m.FeatureCount() {
			return fmt.Errorf("checkpoint: dataset has %d features, model %d", got, m.FeatureCount())
		}
	}
	return nil
}

// writeModelSegment writes the header record followed by one record per kind.
func writeModelSegment(ctx context.Context, store blobstore.BlobStore, name string, state State, opts Options) (Segment, error) {
	sw, err := newSegmentWriter(ctx, store, name, SegmentModel, opts)
	if err != nil {
		return Segment{}, err
	}

	m := state.Model
	header := modelHeader{
		Priors:            m.Priors(),
		FeatureClustering: m.FeatureClustering(),
		Grid:              m.Grid(),
	}
	if opts.IncludeRows {
		header.Tare = state.Dataset.TareRow()
	}
	payload, err := opts.Codec.Marshal(header)
	if err != nil {
		sw.abort()
		return Segment{}, fmt.Errorf("checkpoint: marshal model header: %w", err)
	}
	if err := sw.write(payload); err != nil {
		sw.abort()
		return Segment{}, err
	}

	for id, k := range m.Kinds() {
		ks := kindState{
			Clustering: k.Clustering,
			Features:   k.FeatureIDs(),
			Counts:     k.Mixture.Counts(),
		}
		payload, err := opts.Codec.Marshal(ks)
		if err != nil {
			sw.abort()
			return Segment{}, fmt.Errorf("checkpoint: marshal kind %d: %w", id, err)
		}
		if err := sw.write(payload); err != nil {
			sw.abort()
			return Segment{}, err
		}
	}
	return sw.close()
}

// writeAssignmentsSegment writes one label record per kind, in kind order.
func writeAssignmentsSegment(ctx context.Context, store blobstore.BlobStore, name string, asn *model.Assignments, opts Options) (Segment, error) {
	sw, err := newSegmentWriter(ctx, store, name, SegmentAssignments, opts)
	if err != nil {
		return Segment{}, err
	}
	for id := 0; id < asn.KindCount(); id++ {
		if err := sw.write(encodeLabels(asn.Kind(model.KindID(id)))); err != nil {
			sw.abort()
			return Segment{}, err
		}
	}
	return sw.close()
}

// writeRowsSegment writes one record per dataset row, in row order.
func writeRowsSegment(ctx context.Context, store blobstore.BlobStore, name string, ds *model.Dataset, opts Options) (Segment, error) {
	sw, err := newSegmentWriter(ctx, store, name, SegmentRows, opts)
	if err != nil {
		return Segment{}, err
	}
	for r := 0; r < ds.Rows(); r++ {
		payload, err := rowAt(ds, r).MarshalBinary()
		if err != nil {
			sw.abort()
			return Segment{}, fmt.Errorf("checkpoint: marshal row %d: %w", r, err)
		}
		if err := sw.write(payload); err != nil {
			sw.abort()
			return Segment{}, err
		}
	}
	return sw.close()
}
