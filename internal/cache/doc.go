// Package cache provides LRU caching for checkpoint block data.
//
// The blobstore's CachingStore splits blob reads into fixed-size blocks and
// keeps recently used blocks here. Ensembles resuming many chains from one
// checkpoint re-read the same blobs; the cache keeps those reads in RAM.
//
// Returned slices are shared and must be treated as read-only.
package cache
