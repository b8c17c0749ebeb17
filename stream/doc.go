// Package stream implements the length-prefixed record streams crosscat uses
// for training data and checkpoint artifacts.
//
// A stream is a sequence of records, each a 4-byte little-endian length
// prefix followed by exactly that many payload bytes. Streams may be
// whole-stream compressed; the codec is chosen by filename suffix (".gz",
// ".zst", ".lz4"). The name "-" (optionally suffixed, e.g. "-.gz") addresses
// stdin or stdout so drivers can be composed in pipelines.
//
// Position is a record index counted from the start of the stream. Seeking
// forward skips records; seeking backward reopens the stream, which is why
// only real files support it. A Reader opened in cyclic mode transparently
// restarts at record 0 on end-of-stream, turning bounded training data into
// an unbounded repeating sequence.
//
// Payload encoding is the caller's concern; this package moves opaque bytes.
package stream
