// Package crosscat provides an embedded CrossCat structure-learning engine
// for tabular data.
//
// CrossCat models a table as a partition of features (columns) into kinds,
// where each kind clusters the rows independently. Inference alternates
// collapsed Gibbs sweeps over the feature partition with bookkeeping that
// keeps the joint model, the row assignments and the dataset consistent.
// The engine owns one such chain end to end: bootstrap, stepping,
// checkpointing and restore.
//
// # Quick Start
//
// Build an engine over an in-memory dataset and run a few steps:
//
//	ctx := context.Background()
//	eng, err := crosscat.FromDataset(ds).
//	    Seed(42).
//	    Sweeps(10).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close()
//
//	stats, err := eng.Run(ctx, 100)
//
// Or load the rows from a record stream (suffix picks the codec):
//
//	eng, err := crosscat.FromRowStream("rows.stream.gz").Build()
//
// # Checkpoints
//
// Checkpoints are immutable blob sets committed to a blobstore.BlobStore.
// Local directories, in-memory stores and S3/MinIO-backed stores all work:
//
//	store := blobstore.NewLocalStore("./checkpoints")
//	eng, _ := crosscat.FromDataset(ds).
//	    Checkpoints(store).
//	    CheckpointEvery(50).
//	    Build()
//
//	// Later, resume from the latest committed checkpoint:
//	eng, _ := crosscat.NewFromCheckpoint(ctx, store)
//
// # Synthetic Rows
//
// A learned model can generate rows from its posterior predictive:
//
//	rows, _ := eng.Sample().Rows(1000).Density(0.8).Collect()
//
// # Key Features
//
//   - Collapsed block Gibbs search over the feature partition
//   - Pitman-Yor priors for both feature and row clusterings
//   - Sparse row windows via Roaring observed masks with tare correction
//   - Framed record streams (gzip/zstd/lz4) for rows and checkpoints
//   - Cloud-native checkpoint storage (S3, MinIO, local, in-memory)
//   - Structured logging and pluggable metrics
package crosscat
