package blobstore

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/hupe1980/crosscat/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingBlob struct {
	mu        sync.Mutex
	data      []byte
	reads     int
	readBytes int
}

func (m *countingBlob) Close() error { return nil }
func (m *countingBlob) Size() int64  { return int64(len(m.data)) }

func (m *countingBlob) ReadAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reads++
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	m.readBytes += n
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *countingBlob) stats() (reads, readBytes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads, m.readBytes
}

type countingStore struct {
	blobs map[string]*countingBlob
}

func (m *countingStore) Open(_ context.Context, name string) (Blob, error) {
	if b, ok := m.blobs[name]; ok {
		return b, nil
	}
	return nil, ErrNotFound
}

func (m *countingStore) Create(_ context.Context, name string) (WritableBlob, error) {
	return nil, nil
}

func (m *countingStore) Put(_ context.Context, name string, data []byte) error {
	if m.blobs == nil {
		m.blobs = make(map[string]*countingBlob)
	}
	m.blobs[name] = &countingBlob{data: data}
	return nil
}

func (m *countingStore) Delete(_ context.Context, name string) error { return nil }

func (m *countingStore) List(_ context.Context, prefix string) ([]string, error) { return nil, nil }

func TestCachingStore_ReadAt(t *testing.T) {
	data := make([]byte, 1024)
	for i := range data {
		data[i] = byte(i % 255)
	}

	inner := &countingStore{
		blobs: map[string]*countingBlob{
			"test": {data: data},
		},
	}

	c := cache.NewLRUBlockCache(1 << 20)
	store := NewCachingStore(inner, c, 256)

	blob, err := store.Open(context.Background(), "test")
	require.NoError(t, err)
	defer blob.Close()

	// Read within the first block.
	buf := make([]byte, 100)
	n, err := blob.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
	assert.Equal(t, data[:100], buf)

	mBlob := inner.blobs["test"]
	reads, readBytes := mBlob.stats()
	assert.Equal(t, 1, reads)
	assert.Equal(t, 256, readBytes) // full block 0

	// Same range again hits the cache.
	_, err = blob.ReadAt(buf, 0)
	require.NoError(t, err)
	reads, _ = mBlob.stats()
	assert.Equal(t, 1, reads)

	// Read spanning blocks 0 and 1. Block 0 is cached, block 1 is not.
	buf2 := make([]byte, 100)
	n, err = blob.ReadAt(buf2, 200)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
	assert.Equal(t, data[200:300], buf2)

	reads, readBytes = mBlob.stats()
	assert.Equal(t, 2, reads)
	assert.Equal(t, 512, readBytes) // +256 for block 1

	// Block 1 again: cache hit.
	_, err = blob.ReadAt(buf2, 260)
	require.NoError(t, err)
	reads, _ = mBlob.stats()
	assert.Equal(t, 2, reads)
}

func TestCachingStore_CoalescesRuns(t *testing.T) {
	data := make([]byte, 10*1024)
	for i := range data {
		data[i] = byte(i)
	}

	inner := &countingStore{
		blobs: map[string]*countingBlob{
			"test": {data: data},
		},
	}

	store := NewCachingStore(inner, cache.NewLRUBlockCache(1<<20), 1024)

	blob, err := store.Open(context.Background(), "test")
	require.NoError(t, err)
	defer blob.Close()

	// Read all 10 blocks at once: one contiguous run, one backend read.
	buf := make([]byte, 10*1024)
	n, err := blob.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, data, buf)

	reads, readBytes := inner.blobs["test"].stats()
	assert.Equal(t, 1, reads)
	assert.Equal(t, len(data), readBytes)
}

func TestCachingStore_ShortTail(t *testing.T) {
	inner := &countingStore{
		blobs: map[string]*countingBlob{
			"small": {data: []byte("hello")},
		},
	}

	store := NewCachingStore(inner, cache.NewLRUBlockCache(1024), 256)

	blob, err := store.Open(context.Background(), "small")
	require.NoError(t, err)
	defer blob.Close()

	buf := make([]byte, 10)
	n, err := blob.ReadAt(buf, 0)
	assert.Equal(t, 5, n)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, "hello", string(buf[:n]))

	// Offset past the end.
	_, err = blob.ReadAt(buf, 100)
	assert.Equal(t, io.EOF, err)
}

func TestCachingStore_PutInvalidates(t *testing.T) {
	inner := &countingStore{}
	ctx := context.Background()

	store := NewCachingStore(inner, cache.NewLRUBlockCache(1024), 256)

	require.NoError(t, store.Put(ctx, "CURRENT", []byte("chk-000001")))

	blob, err := store.Open(ctx, "CURRENT")
	require.NoError(t, err)
	buf := make([]byte, 10)
	_, err = blob.ReadAt(buf, 0)
	require.NoError(t, err)
	require.NoError(t, blob.Close())

	// Overwrite through the caching store; stale blocks must be dropped.
	require.NoError(t, store.Put(ctx, "CURRENT", []byte("chk-000002")))

	blob, err = store.Open(ctx, "CURRENT")
	require.NoError(t, err)
	defer blob.Close()

	_, err = blob.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "chk-000002", string(buf))
}
