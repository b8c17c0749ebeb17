package integration_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/crosscat"
	"github.com/hupe1980/crosscat/blobstore"
	"github.com/hupe1980/crosscat/checkpoint"
	"github.com/hupe1980/crosscat/internal/cache"
	"github.com/hupe1980/crosscat/model"
	"github.com/hupe1980/crosscat/stream"
	"github.com/hupe1980/crosscat/testutil"
)

// TestLifecycle_LocalStoreRoundtrip checkpoints a chain into a local store
// and restores it through a block-cached wrapper over the same directory.
func TestLifecycle_LocalStoreRoundtrip(t *testing.T) {
	root := t.TempDir()
	store := blobstore.NewLocalStore(root)

	rng := testutil.NewRNG(5)
	ds, _ := rng.PlantedDataset(40, testutil.Plant{
		Views:      []int{3, 3},
		Groups:     3,
		Separation: 6,
		Noise:      0.5,
	})

	eng, err := crosscat.New(ds,
		crosscat.WithSeed(11),
		crosscat.WithCheckpoints(store, func(o *checkpoint.Options) {
			o.Compression = stream.CodecLZ4
		}),
	)
	require.NoError(t, err)
	defer eng.Close()

	ctx := context.Background()
	_, err = eng.Run(ctx, 3)
	require.NoError(t, err)

	name, err := eng.Checkpoint(ctx)
	require.NoError(t, err)
	assert.Equal(t, "chk-000003", name)

	// Restore through a cached view of the same directory.
	cached := blobstore.NewCachingStore(
		blobstore.NewLocalStore(root),
		cache.NewLRUBlockCache(1<<20),
		4096,
	)

	restored, err := crosscat.NewFromCheckpoint(ctx, cached,
		crosscat.WithSeed(11),
	)
	require.NoError(t, err)
	defer restored.Close()

	assert.Equal(t, uint64(3), restored.StepCount())
	assert.Equal(t, eng.Model().Mapping(), restored.Model().Mapping())
	assert.Equal(t, eng.Model().KindCount(), restored.Model().KindCount())
	require.NoError(t, restored.Model().Validate())

	seen := make(map[model.KindID]bool)
	for _, id := range eng.Model().Mapping() {
		if seen[id] {
			continue
		}
		seen[id] = true
		assert.Equal(t, eng.Assignments().Kind(id), restored.Assignments().Kind(id))
	}

	_, err = restored.Run(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), restored.StepCount())
}

// TestLifecycle_CheckpointEveryWithRestart exercises the periodic
// auto-checkpoint cadence across a crash/restart boundary.
func TestLifecycle_CheckpointEveryWithRestart(t *testing.T) {
	store := blobstore.NewMemoryStore()

	rng := testutil.NewRNG(6)
	ds, _ := rng.PlantedDataset(30, testutil.Plant{
		Views:      []int{2, 2},
		Groups:     2,
		Separation: 6,
		Noise:      0.5,
	})

	eng, err := crosscat.New(ds,
		crosscat.WithSeed(3),
		crosscat.WithCheckpoints(store),
		crosscat.WithCheckpointEvery(3),
	)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = eng.Run(ctx, 7)
	require.NoError(t, err)
	require.NoError(t, eng.Close())

	// Auto-checkpoints landed at steps 3 and 6; the restart resumes from 6.
	restored, err := crosscat.NewFromCheckpoint(ctx, store,
		crosscat.WithSeed(3),
		crosscat.WithCheckpoints(store),
		crosscat.WithCheckpointEvery(3),
	)
	require.NoError(t, err)
	defer restored.Close()

	assert.Equal(t, uint64(6), restored.StepCount())

	_, err = restored.Run(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), restored.StepCount())

	current, err := blobstore.ReadAll(ctx, store, checkpoint.CurrentName)
	require.NoError(t, err)
	assert.Equal(t, "chk-000009", string(current))
}
