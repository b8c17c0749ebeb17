package checkpoint

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/crosscat/blobstore"
	"github.com/hupe1980/crosscat/internal/hash"
	"github.com/hupe1980/crosscat/stream"
)

// segmentWriter frames records into a compressed blob, tracking the record
// count plus the size and CRC32C of the compressed bytes for the manifest.
type segmentWriter struct {
	name string
	wb   blobstore.WritableBlob
	sum  *checksumWriter
	comp io.WriteCloser
	buf  *bufio.Writer
	fw   *stream.FrameWriter

	records uint64
	closed  bool
}

// newSegmentWriter creates the blob <prefix>/<base><suffix> and layers the
// record framing on top of the compressor.
func newSegmentWriter(ctx context.Context, store blobstore.BlobStore, prefix, base string, opts Options) (*segmentWriter, error) {
	name := base + stream.SuffixFor(opts.Compression)

	wb, err := store.Create(ctx, prefix+"/"+name)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: create segment %s: %w", name, err)
	}

	sum := &checksumWriter{w: wb}
	comp, err := stream.Compress(sum, opts.Compression, opts.Level)
	if err != nil {
		_ = wb.Close()
		return nil, err
	}

	sw := &segmentWriter{
		name: name,
		wb:   wb,
		sum:  sum,
		comp: comp,
	}
	sw.buf = bufio.NewWriter(comp)
	sw.fw = stream.NewFrameWriter(sw.buf)
	return sw, nil
}

func (sw *segmentWriter) write(payload []byte) error {
	if err := sw.fw.WriteRecord(payload); err != nil {
		return fmt.Errorf("checkpoint: segment %s: %w", sw.name, err)
	}
	sw.records++
	return nil
}

// close finalizes the blob and returns its manifest entry.
func (sw *segmentWriter) close() (Segment, error) {
	sw.closed = true
	if err := sw.buf.Flush(); err != nil {
		_ = sw.wb.Close()
		return Segment{}, fmt.Errorf("checkpoint: flush segment %s: %w", sw.name, err)
	}
	if err := sw.comp.Close(); err != nil {
		_ = sw.wb.Close()
		return Segment{}, fmt.Errorf("checkpoint: finalize segment %s: %w", sw.name, err)
	}
	if err := sw.wb.Close(); err != nil {
		return Segment{}, fmt.Errorf("checkpoint: commit segment %s: %w", sw.name, err)
	}
	return Segment{
		Name:    sw.name,
		Records: sw.records,
		Size:    sw.sum.n,
		CRC32C:  sw.sum.crc,
	}, nil
}

// abort releases the underlying blob after a mid-segment failure.
func (sw *segmentWriter) abort() {
	if sw.closed {
		return
	}
	sw.closed = true
	_ = sw.comp.Close()
	_ = sw.wb.Close()
}

// checksumWriter tracks the size and CRC32C of everything written through it.
type checksumWriter struct {
	w   io.Writer
	crc uint32
	n   int64
}

func (cw *checksumWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.crc = hash.Update(cw.crc, p[:n])
	cw.n += int64(n)
	return n, err
}

// segmentReader decodes a segment blob record by record and verifies the
// manifest entry on close.
type segmentReader struct {
	seg  Segment
	blob blobstore.Blob
	sum  *checksumReader
	dec  io.ReadCloser
	fr   *stream.FrameReader

	records uint64
}

// openSegment opens the blob <prefix>/<seg.Name> for record reads.
func openSegment(ctx context.Context, store blobstore.BlobStore, prefix string, seg Segment, maxRecordSize uint32) (*segmentReader, error) {
	blob, err := store.Open(ctx, prefix+"/"+seg.Name)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open segment %s: %w", seg.Name, err)
	}

	sum := &checksumReader{r: io.NewSectionReader(blob, 0, blob.Size())}
	dec, err := stream.Decompress(sum, stream.CodecFor(seg.Name))
	if err != nil {
		_ = blob.Close()
		return nil, err
	}

	sr := &segmentReader{
		seg:  seg,
		blob: blob,
		sum:  sum,
		dec:  dec,
	}
	fr := stream.NewFrameReader(bufio.NewReader(dec))
	fr.SetMaxRecordSize(maxRecordSize)
	sr.fr = fr
	return sr, nil
}

// next returns the next record's payload, or io.EOF at the end of the stream.
func (sr *segmentReader) next() ([]byte, error) {
	payload, err := sr.fr.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("checkpoint: segment %s: %w", sr.seg.Name, err)
	}
	sr.records++
	return payload, nil
}

// verifyAndClose drains the compressed stream, checks the record count, the
// size and the CRC32C against the manifest and releases the blob.
func (sr *segmentReader) verifyAndClose() error {
	defer func() {
		_ = sr.dec.Close()
		_ = sr.blob.Close()
	}()

	if sr.records != sr.seg.Records {
		return fmt.Errorf("%w: segment %s has %d records, manifest says %d", ErrCorrupt, sr.seg.Name, sr.records, sr.seg.Records)
	}

	// Decompressors may stop short of the underlying stream's end; the
	// remainder still counts toward the segment checksum.
	if _, err := io.Copy(io.Discard, sr.sum); err != nil {
		return fmt.Errorf("checkpoint: drain segment %s: %w", sr.seg.Name, err)
	}
	if sr.sum.n != sr.seg.Size {
		return fmt.Errorf("%w: segment %s is %d bytes, manifest says %d", ErrCorrupt, sr.seg.Name, sr.sum.n, sr.seg.Size)
	}
	if sr.sum.crc != sr.seg.CRC32C {
		return &ChecksumError{Segment: sr.seg.Name, Expected: sr.seg.CRC32C, Actual: sr.sum.crc}
	}
	return nil
}

// checksumReader tracks the size and CRC32C of everything read through it.
type checksumReader struct {
	r   io.Reader
	crc uint32
	n   int64
}

func (cr *checksumReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.crc = hash.Update(cr.crc, p[:n])
		cr.n += int64(n)
	}
	return n, err
}
