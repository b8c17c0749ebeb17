// Package s3 provides S3 implementations of the blobstore.BlobStore interface.
//
// # Usage
//
//	client := s3.NewFromConfig(cfg)
//	store := s3.NewStore(client, "my-bucket", "crosscat/")
//
//	cp, err := checkpoint.Save(ctx, store, ...)
//
// # Features
//
//   - Range reads for efficient partial fetches
//   - Multipart uploads for large checkpoint segments
//   - CRC32C integrity checksums on writes
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
//
// For atomic CURRENT pointer updates with multiple concurrent writers, see
// DDBCommitStore (DynamoDB conditional writes) or ExpressStore
// (S3 Express One Zone conditional puts).
package s3
