// Package hash provides CRC32-Castagnoli checksums for data integrity.
//
// Checkpoint segments and manifests checksum with CRC32C: hardware
// accelerated on x86 (SSE4.2) and ARM, and the same algorithm the S3
// uploader declares on blobs, so one polynomial covers the manifest and
// the transport.
//
// One-shot:
//
//	sum := hash.CRC32C(data)
//
// Streaming:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk)
//	sum := h.Sum32()
//
// Segment writers tracking a bare uint32 across writes use Update:
//
//	crc = hash.Update(crc, chunk)
package hash
