package blobstore

import (
	"context"
	"errors"
	"io"

	"github.com/hupe1980/crosscat/internal/cache"
	"golang.org/x/sync/errgroup"
)

// fetchConcurrency bounds parallel backend reads when filling the cache.
const fetchConcurrency = 16

// CachingStore wraps a BlobStore and adds block-level read caching.
//
// Checkpoint blobs are immutable, so cached blocks stay valid for the life
// of a blob name. Resuming several chains from one checkpoint re-reads the
// same blobs; the cache keeps those reads off the backend.
type CachingStore struct {
	inner     BlobStore
	cache     cache.BlockCache
	blockSize int64
}

// NewCachingStore creates a new CachingStore.
// blockSize defaults to 4KB if <= 0.
func NewCachingStore(inner BlobStore, blockCache cache.BlockCache, blockSize int64) *CachingStore {
	if blockSize <= 0 {
		blockSize = 4096
	}
	return &CachingStore{
		inner:     inner,
		cache:     blockCache,
		blockSize: blockSize,
	}
}

// Open opens a blob whose reads go through the block cache.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &cachingBlob{
		inner:     b,
		cache:     s.cache,
		name:      name,
		blockSize: s.blockSize,
	}, nil
}

// Create opens a blob for writing. Stale blocks for the name are dropped
// once the write commits, so overwritten pointer blobs never serve old data.
func (s *CachingStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	w, err := s.inner.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	return &invalidatingWritableBlob{WritableBlob: w, store: s, name: name}, nil
}

// Put writes a blob atomically and drops its cached blocks.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	err := s.inner.Put(ctx, name, data)
	s.invalidate(name)
	return err
}

// Delete removes a blob and drops its cached blocks.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	err := s.inner.Delete(ctx, name)
	s.invalidate(name)
	return err
}

// List delegates to the inner store.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

func (s *CachingStore) invalidate(name string) {
	s.cache.Invalidate(func(key cache.Key) bool {
		return key.Path == name
	})
}

type invalidatingWritableBlob struct {
	WritableBlob
	store *CachingStore
	name  string
}

func (w *invalidatingWritableBlob) Close() error {
	err := w.WritableBlob.Close()
	w.store.invalidate(w.name)
	return err
}

// cachingBlob wraps a Blob and serves reads from the block cache.
type cachingBlob struct {
	inner     Blob
	cache     cache.BlockCache
	name      string
	blockSize int64
}

func (b *cachingBlob) Close() error {
	return b.inner.Close()
}

func (b *cachingBlob) Size() int64 {
	return b.inner.Size()
}

// ReadAt implements io.ReaderAt over cached blocks.
func (b *cachingBlob) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 {
		return 0, errors.New("blobstore: negative offset")
	}
	if off >= b.inner.Size() {
		return 0, io.EOF
	}

	startBlock := off / b.blockSize
	endBlock := (off + int64(len(p)) - 1) / b.blockSize

	if err := b.fillCache(startBlock, endBlock); err != nil {
		return 0, err
	}

	total := 0
	for blk := startBlock; blk <= endBlock; blk++ {
		blkStart := blk * b.blockSize

		data, err := b.fetchBlock(blk)
		if err != nil {
			return total, err
		}

		// Intersection of this block with the requested range.
		lo := max(blkStart, off)
		hi := min(blkStart+b.blockSize, off+int64(len(p)))
		if hi <= lo {
			continue
		}

		src := lo - blkStart
		if src >= int64(len(data)) {
			break
		}
		n := copy(p[lo-off:hi-off], data[src:])
		total += n
		if int64(n) < hi-lo {
			break
		}
	}

	if total < len(p) {
		return total, io.EOF
	}
	return total, nil
}

// fillCache loads the given block range into the cache. Contiguous runs of
// missing blocks are fetched as single backend reads, in parallel.
func (b *cachingBlob) fillCache(startBlock, endBlock int64) error {
	type span struct {
		start, count int64
	}
	var missing []span

	runStart, runCount := int64(-1), int64(0)
	for blk := startBlock; blk <= endBlock; blk++ {
		if _, ok := b.cache.Get(cache.Key{Path: b.name, Offset: uint64(blk)}); !ok {
			if runStart == -1 {
				runStart, runCount = blk, 1
			} else {
				runCount++
			}
			continue
		}
		if runStart != -1 {
			missing = append(missing, span{runStart, runCount})
			runStart, runCount = -1, 0
		}
	}
	if runStart != -1 {
		missing = append(missing, span{runStart, runCount})
	}

	var g errgroup.Group
	g.SetLimit(fetchConcurrency)

	for _, run := range missing {
		run := run
		g.Go(func() error {
			byteStart := run.start * b.blockSize
			byteSize := run.count * b.blockSize

			size := b.inner.Size()
			if byteStart >= size {
				return nil
			}
			if byteStart+byteSize > size {
				byteSize = size - byteStart
			}

			buf := make([]byte, byteSize)
			n, err := b.inner.ReadAt(buf, byteStart)
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}

			for i := int64(0); i < run.count; i++ {
				lo := i * b.blockSize
				if lo >= int64(n) {
					break
				}
				hi := min(lo+b.blockSize, int64(n))

				// Copy so cached blocks do not pin the run buffer.
				block := make([]byte, hi-lo)
				copy(block, buf[lo:hi])
				b.cache.Set(cache.Key{Path: b.name, Offset: uint64(run.start + i)}, block)
			}
			return nil
		})
	}
	return g.Wait()
}

func (b *cachingBlob) fetchBlock(blk int64) ([]byte, error) {
	key := cache.Key{Path: b.name, Offset: uint64(blk)}
	if data, ok := b.cache.Get(key); ok {
		return data, nil
	}

	buf := make([]byte, b.blockSize)
	n, err := b.inner.ReadAt(buf, blk*b.blockSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if n > 0 {
		b.cache.Set(key, buf[:n])
	}
	return buf[:n], nil
}
