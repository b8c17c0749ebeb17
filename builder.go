// This file implements the fluent builder API for assembling engines.
// The builder is immutable - each method returns a new builder with the
// updated configuration.

package crosscat

import (
	"time"

	"github.com/hupe1980/crosscat/blobstore"
	"github.com/hupe1980/crosscat/checkpoint"
	"github.com/hupe1980/crosscat/kernel"
	"github.com/hupe1980/crosscat/model"
	"github.com/hupe1980/crosscat/proposer"
)

// FromDataset creates an engine builder over an in-memory dataset.
//
// The builder is immutable - each method returns a new builder with the
// updated configuration. This ensures thread-safety and prevents accidental
// state sharing.
//
// Example:
//
//	eng, err := crosscat.FromDataset(ds).
//	    Seed(42).
//	    Sweeps(20).
//	    EmptyKinds(16).
//	    Parallel(true).
//	    Build()
func FromDataset(ds *model.Dataset) Builder {
	b := defaultBuilder()
	b.ds = ds
	return b
}

// FromRowStream creates an engine builder whose dataset is loaded from the
// named row stream at Build time. The stream options control the row cap,
// cyclic reads and the tare row; see LoadRows.
//
// Example:
//
//	eng, err := crosscat.FromRowStream("rows.stream.gz", func(o *crosscat.RowStreamOptions) {
//	    o.Rows = 10000
//	    o.Cyclic = true
//	}).Seed(42).Build()
func FromRowStream(name string, optFns ...func(o *RowStreamOptions)) Builder {
	b := defaultBuilder()
	b.streamName = name
	b.streamOptions = optFns
	return b
}

func defaultBuilder() Builder {
	return Builder{
		featureClustering: model.DefaultClustering(),
		kindClustering:    model.DefaultClustering(),
		grid:              model.DefaultGrid(),
		vacantGroups:      1,
		sweeps:            kernel.DefaultOptions.Sweeps,
		emptyKinds:        kernel.DefaultOptions.EmptyKinds,
		emptyGroups:       kernel.DefaultOptions.EmptyGroups,
		cacheStats:        kernel.DefaultOptions.CacheStats,
		workers:           proposer.DefaultBlockGibbsOptions.Workers,
	}
}

// Builder is an immutable fluent builder for creating engines.
// Each method returns a new builder with the updated configuration.
type Builder struct {
	ds            *model.Dataset
	streamName    string
	streamOptions []func(o *RowStreamOptions)

	seed              uint64
	priors            []model.GaussianPrior
	featureClustering model.PitmanYor
	kindClustering    model.PitmanYor
	grid              model.Grid
	vacantGroups      int

	sweeps      int
	emptyKinds  int
	emptyGroups int
	parallel    bool
	cacheStats  bool
	workers     int

	logger            *Logger
	metrics           MetricsCollector
	store             blobstore.BlobStore
	checkpointOptions []func(o *checkpoint.Options)
	checkpointEvery   uint64
	progressEvery     time.Duration
}

// Seed sets the seed of the random stream driving bootstrap and inference.
func (b Builder) Seed(seed uint64) Builder {
	b.seed = seed
	return b
}

// Priors sets the per-feature Gaussian priors, one per dataset column.
// Default: model.DefaultGaussianPrior for every feature.
func (b Builder) Priors(priors []model.GaussianPrior) Builder {
	b.priors = priors
	return b
}

// FeatureClustering sets the Pitman-Yor prior over the feature partition.
func (b Builder) FeatureClustering(p model.PitmanYor) Builder {
	b.featureClustering = p
	return b
}

// KindClustering sets the Pitman-Yor prior seating the bootstrap kind's
// rows.
func (b Builder) KindClustering(p model.PitmanYor) Builder {
	b.kindClustering = p
	return b
}

// Grid sets the hyperprior grid fresh kinds draw their row clustering from.
func (b Builder) Grid(g model.Grid) Builder {
	b.grid = g
	return b
}

// VacantGroups sets the number of vacant groups padded into the bootstrap
// kind's seating.
func (b Builder) VacantGroups(n int) Builder {
	b.vacantGroups = n
	return b
}

// Sweeps sets the number of search sweeps per step.
// Higher values mix faster per step but cost proportionally more.
// Default: 10.
func (b Builder) Sweeps(n int) Builder {
	b.sweeps = n
	return b
}

// EmptyKinds sets the size of the auxiliary empty-kind buffer kept between
// steps. The buffer is what lets new kinds be born.
// Default: 8.
func (b Builder) EmptyKinds(n int) Builder {
	b.emptyKinds = n
	return b
}

// EmptyGroups sets the number of vacant row groups padded into every fresh
// kind's seating.
// Default: 1.
func (b Builder) EmptyGroups(n int) Builder {
	b.emptyGroups = n
	return b
}

// Parallel enables parallel candidate scoring inside the proposer.
// The search outcome is identical for any worker count.
func (b Builder) Parallel(enabled bool) Builder {
	b.parallel = enabled
	return b
}

// CacheStats lets feature moves reuse aggregates computed during the
// search. Disable it while hyperparameters are re-inferred elsewhere.
// Default: true.
func (b Builder) CacheStats(enabled bool) Builder {
	b.cacheStats = enabled
	return b
}

// Workers caps the goroutines scoring features during parallel searches.
// Default: GOMAXPROCS.
func (b Builder) Workers(n int) Builder {
	b.workers = n
	return b
}

// Logger sets the structured logger for operation tracing.
func (b Builder) Logger(l *Logger) Builder {
	b.logger = l
	return b
}

// Metrics sets the metrics collector for monitoring.
func (b Builder) Metrics(mc MetricsCollector) Builder {
	b.metrics = mc
	return b
}

// Checkpoints sets the blob store Checkpoint saves to, plus save options
// such as codec, compression and whether rows are included.
func (b Builder) Checkpoints(store blobstore.BlobStore, optFns ...func(o *checkpoint.Options)) Builder {
	b.store = store
	b.checkpointOptions = optFns
	return b
}

// CheckpointEvery saves a checkpoint automatically every n steps during
// Run. Zero disables automatic checkpoints.
func (b Builder) CheckpointEvery(n uint64) Builder {
	b.checkpointEvery = n
	return b
}

// ProgressInterval sets how often stepping emits throttled progress logs.
func (b Builder) ProgressInterval(d time.Duration) Builder {
	b.progressEvery = d
	return b
}

// Build creates the engine.
func (b Builder) Build() (*Engine, error) {
	ds := b.ds
	if b.streamName != "" {
		var err error
		ds, err = LoadRows(b.streamName, b.streamOptions...)
		if err != nil {
			return nil, err
		}
	}

	optFns := []Option{
		WithSeed(b.seed),
		WithFeatureClustering(b.featureClustering),
		WithKindClustering(b.kindClustering),
		WithGrid(b.grid),
		WithVacantGroups(b.vacantGroups),
		WithKernelOptions(func(o *kernel.Options) {
			o.Sweeps = b.sweeps
			o.EmptyKinds = b.emptyKinds
			o.EmptyGroups = b.emptyGroups
			o.Parallel = b.parallel
			o.CacheStats = b.cacheStats
		}),
		WithProposerOptions(func(o *proposer.BlockGibbsOptions) {
			o.Workers = b.workers
		}),
	}
	if b.priors != nil {
		optFns = append(optFns, WithPriors(b.priors))
	}
	if b.logger != nil {
		optFns = append(optFns, WithLogger(b.logger))
	}
	if b.metrics != nil {
		optFns = append(optFns, WithMetricsCollector(b.metrics))
	}
	if b.store != nil {
		optFns = append(optFns, WithCheckpoints(b.store, b.checkpointOptions...))
	}
	if b.checkpointEvery > 0 {
		optFns = append(optFns, WithCheckpointEvery(b.checkpointEvery))
	}
	if b.progressEvery > 0 {
		optFns = append(optFns, WithProgressInterval(b.progressEvery))
	}

	return New(ds, optFns...)
}

// MustBuild creates the engine, panicking on error.
func (b Builder) MustBuild() *Engine {
	eng, err := b.Build()
	if err != nil {
		panic(err)
	}
	return eng
}
