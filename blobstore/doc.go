// Package blobstore provides storage abstraction for checkpoint blobs.
//
// A checkpoint is a set of immutable blobs (a manifest plus compressed
// record-stream segments) written under a common prefix. BlobStore is the
// interface the checkpoint package reads and writes them through.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem with mmap-backed reads
//   - MemoryStore: in-memory store for tests
//   - CachingStore: block-level read cache over another store
//   - s3.Store: Amazon S3 with background uploads
//   - minio.Store: any S3-compatible endpoint via the MinIO client
//
// # Custom Implementations
//
// Implement the BlobStore interface to support custom storage backends:
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)            // open for reading
//	    Create(ctx, name) (WritableBlob, error)  // open for streaming writes
//	    Put(ctx, name, data) error               // atomic write
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Blobs whose contents are directly addressable in memory may additionally
// implement Mappable for zero-copy access.
package blobstore
