package benchmark_test

import (
	"context"
	"testing"

	"github.com/hupe1980/crosscat"
	"github.com/hupe1980/crosscat/blobstore"
	"github.com/hupe1980/crosscat/checkpoint"
	"github.com/hupe1980/crosscat/internal/cache"
	"github.com/hupe1980/crosscat/stream"
)

// BenchmarkCheckpointSave measures full-state saves into a memory store.
func BenchmarkCheckpointSave(b *testing.B) {
	for _, rows := range []int{rowsSmall, rowsMedium, rowsLarge} {
		b.Run("rows="+formatRows(rows), func(b *testing.B) {
			b.ReportAllocs()

			store := blobstore.NewMemoryStore()
			eng := benchEngine(b, rows, featuresSmall, crosscat.WithCheckpoints(store))
			defer eng.Close()

			ctx := context.Background()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := eng.Checkpoint(ctx); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkCheckpointCompression compares the segment codecs at a fixed
// state size.
func BenchmarkCheckpointCompression(b *testing.B) {
	codecs := []struct {
		name  string
		codec stream.Codec
	}{
		{"none", stream.CodecNone},
		{"gzip", stream.CodecGzip},
		{"zstd", stream.CodecZstd},
		{"lz4", stream.CodecLZ4},
	}

	for _, sc := range codecs {
		b.Run(sc.name, func(b *testing.B) {
			b.ReportAllocs()

			store := blobstore.NewMemoryStore()
			eng := benchEngine(b, rowsMedium, featuresLarge,
				crosscat.WithCheckpoints(store, func(o *checkpoint.Options) {
					o.Compression = sc.codec
				}),
			)
			defer eng.Close()

			ctx := context.Background()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := eng.Checkpoint(ctx); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkCheckpointRestore measures cold restores from different stores.
func BenchmarkCheckpointRestore(b *testing.B) {
	scenarios := []struct {
		name  string
		store func(b *testing.B) blobstore.BlobStore
	}{
		{"memory", func(b *testing.B) blobstore.BlobStore {
			return blobstore.NewMemoryStore()
		}},
		{"local", func(b *testing.B) blobstore.BlobStore {
			return blobstore.NewLocalStore(b.TempDir())
		}},
		{"local-cached", func(b *testing.B) blobstore.BlobStore {
			return blobstore.NewCachingStore(
				blobstore.NewLocalStore(b.TempDir()),
				cache.NewLRUBlockCache(8<<20),
				4096,
			)
		}},
	}

	for _, sc := range scenarios {
		b.Run(sc.name, func(b *testing.B) {
			b.ReportAllocs()

			store := sc.store(b)
			eng := benchEngine(b, rowsMedium, featuresSmall, crosscat.WithCheckpoints(store))
			ctx := context.Background()
			if _, err := eng.Checkpoint(ctx); err != nil {
				b.Fatal(err)
			}
			if err := eng.Close(); err != nil {
				b.Fatal(err)
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				restored, err := crosscat.NewFromCheckpoint(ctx, store)
				if err != nil {
					b.Fatal(err)
				}
				if err := restored.Close(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
