// Package mmap provides read-only memory-mapped file access.
//
// Memory mapping lets checkpoint readers address file contents directly
// without copying them through intermediate buffers. Checkpoint segments
// holding large row streams benefit the most: decompression reads straight
// out of the page cache.
//
// # Usage
//
//	m, err := mmap.Open("rows.stream.zst")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//
//	// Hint the kernel that the file is read front to back.
//	m.Advise(mmap.AccessSequential)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) for access hints
//   - Windows: CreateFileMapping/MapViewOfFile (Advise is a no-op)
//
// # Thread Safety
//
// A Mapping is safe for concurrent reads. Close is idempotent, but callers
// must ensure no goroutine touches Bytes() after Close returns.
package mmap
