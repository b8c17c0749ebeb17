// Package checkpoint persists and restores engine state through a blob store.
//
// A checkpoint is a set of blobs under a common prefix: a JSON manifest plus
// record-stream segments for the model structure, the per-kind row labels and,
// optionally, the dataset rows. Segment streams are whole-stream compressed
// (zstd by default) and checksummed; the manifest records the codec, the
// record counts and the CRC32-Castagnoli of every segment so a load can detect
// corruption before handing state back to a kernel.
//
// The blob named "CURRENT" points at the latest committed checkpoint. Save
// writes all segments first, the manifest second and the pointer last, so a
// crashed save never commits a partial checkpoint. Stores with conditional
// writes (blobstore/s3.DDBCommitStore) turn the pointer update into an
// optimistic commit across concurrent writers.
//
// Usage:
//
//	name, err := checkpoint.Save(ctx, store, checkpoint.State{
//		Model:       m,
//		Assignments: asn,
//		Dataset:     ds,
//		Step:        step,
//	})
//
//	state, err := checkpoint.Load(ctx, store)
//
// Restoring rebuilds the mixture statistics from the rows and the persisted
// labels rather than trusting persisted floats, then revalidates the full
// structure.
package checkpoint
