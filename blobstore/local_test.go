package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)

	ctx := context.Background()

	// Create a blob
	blobName := "chk-000001/rows.stream.zst"
	data := []byte("hello world, this is a checkpoint segment")

	w, err := store.Create(ctx, blobName)
	require.NoError(t, err)

	n, err := w.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.NoError(t, w.Sync())
	require.NoError(t, w.Close())

	// Verify file exists on disk under the slash-derived path
	_, err = os.Stat(filepath.Join(tmpDir, "chk-000001", "rows.stream.zst"))
	require.NoError(t, err)

	// Open and ReadAt
	blob, err := store.Open(ctx, blobName)
	require.NoError(t, err)
	defer blob.Close()

	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err = blob.ReadAt(buf, 6) // "world"
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "world", string(buf))

	// Local blobs are mappable
	m, ok := blob.(Mappable)
	require.True(t, ok)
	raw, err := m.Bytes()
	require.NoError(t, err)
	require.Equal(t, data, raw)

	// List
	require.NoError(t, store.Put(ctx, "chk-000001/manifest.json", []byte("{}")))
	require.NoError(t, store.Put(ctx, "CURRENT", []byte("chk-000001")))

	names, err := store.List(ctx, "chk-000001/")
	require.NoError(t, err)
	require.Equal(t, []string{"chk-000001/manifest.json", "chk-000001/rows.stream.zst"}, names)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"CURRENT", "chk-000001/manifest.json", "chk-000001/rows.stream.zst"}, all)

	// Delete
	require.NoError(t, store.Delete(ctx, blobName))

	_, err = store.Open(ctx, blobName)
	require.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing blob is not an error
	require.NoError(t, store.Delete(ctx, blobName))
}

func TestLocalStore_CreateIsAtomic(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	w, err := store.Create(ctx, "pending.bin")
	require.NoError(t, err)

	_, err = w.Write([]byte("partial"))
	require.NoError(t, err)

	// The blob is invisible until Close commits it.
	_, err = store.Open(ctx, "pending.bin")
	require.ErrorIs(t, err, ErrNotFound)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, w.Close())

	blob, err := store.Open(ctx, "pending.bin")
	require.NoError(t, err)
	defer blob.Close()
	assert.Equal(t, int64(len("partial")), blob.Size())

	// Close is idempotent.
	require.NoError(t, w.Close())
}

func TestLocalStore_PutOverwrites(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "CURRENT", []byte("chk-000001")))
	require.NoError(t, store.Put(ctx, "CURRENT", []byte("chk-000002")))

	data, err := ReadAll(ctx, store, "CURRENT")
	require.NoError(t, err)
	assert.Equal(t, "chk-000002", string(data))
}

func TestLocalStore_EmptyBlob(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "empty", nil))

	blob, err := store.Open(ctx, "empty")
	require.NoError(t, err)
	defer blob.Close()

	assert.Equal(t, int64(0), blob.Size())

	_, err = blob.ReadAt(make([]byte, 1), 0)
	assert.Equal(t, io.EOF, err)
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "does-not-exist"))

	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}
