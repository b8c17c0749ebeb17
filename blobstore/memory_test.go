package blobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Lifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Open(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "chk-000001/model.stream.zst", []byte("model")))
	require.NoError(t, store.Put(ctx, "chk-000001/rows.stream.zst", []byte("rows")))
	require.NoError(t, store.Put(ctx, "CURRENT", []byte("chk-000001")))

	blob, err := store.Open(ctx, "chk-000001/rows.stream.zst")
	require.NoError(t, err)
	defer blob.Close()

	assert.Equal(t, int64(4), blob.Size())

	buf := make([]byte, 4)
	n, err := blob.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "rows", string(buf[:n]))

	names, err := store.List(ctx, "chk-000001/")
	require.NoError(t, err)
	assert.Equal(t, []string{"chk-000001/model.stream.zst", "chk-000001/rows.stream.zst"}, names)

	require.NoError(t, store.Delete(ctx, "CURRENT"))
	_, err = store.Open(ctx, "CURRENT")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_CreateCommitsOnClose(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	w, err := store.Create(ctx, "blob")
	require.NoError(t, err)

	_, err = w.Write([]byte("hello "))
	require.NoError(t, err)
	_, err = w.Write([]byte("world"))
	require.NoError(t, err)

	_, err = store.Open(ctx, "blob")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, w.Close())

	data, err := ReadAll(ctx, store, "blob")
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestMemoryStore_OpenIsolatesWrites(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "blob", []byte("before")))

	blob, err := store.Open(ctx, "blob")
	require.NoError(t, err)
	defer blob.Close()

	require.NoError(t, store.Put(ctx, "blob", []byte("after!")))

	buf := make([]byte, 6)
	_, err = blob.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "before", string(buf))
}
