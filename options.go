package crosscat

import (
	"log/slog"
	"time"

	"github.com/hupe1980/crosscat/blobstore"
	"github.com/hupe1980/crosscat/checkpoint"
	"github.com/hupe1980/crosscat/kernel"
	"github.com/hupe1980/crosscat/model"
	"github.com/hupe1980/crosscat/proposer"
)

type options struct {
	seed              uint64
	priors            []model.GaussianPrior
	featureClustering model.PitmanYor
	kindClustering    model.PitmanYor
	grid              model.Grid
	vacantGroups      int
	kernelOptions     []func(o *kernel.Options)
	proposerOptions   []func(o *proposer.BlockGibbsOptions)
	metricsCollector  MetricsCollector
	logger            *Logger
	store             blobstore.BlobStore
	checkpointOptions []func(o *checkpoint.Options)
	checkpointEvery   uint64
	dataset           *model.Dataset
	progressEvery     time.Duration
}

// Option configures engine construction and restore behavior.
//
// Options apply to both fresh construction (New) and checkpoint restore
// (NewFromCheckpoint); options that do not concern the path taken are
// ignored there, e.g. the bootstrap priors during a restore.
type Option func(*options)

// WithSeed sets the seed of the random stream driving bootstrap and
// inference. Runs over the same data with the same configuration and seed
// reproduce the same chain. Defaults to 0.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithPriors sets the per-feature Gaussian priors, one per dataset column.
//
// If not set, every feature gets model.DefaultGaussianPrior.
func WithPriors(priors []model.GaussianPrior) Option {
	return func(o *options) {
		o.priors = priors
	}
}

// WithFeatureClustering sets the Pitman-Yor prior over the feature
// partition.
func WithFeatureClustering(p model.PitmanYor) Option {
	return func(o *options) {
		o.featureClustering = p
	}
}

// WithKindClustering sets the Pitman-Yor prior that seats the rows of the
// bootstrap kind.
func WithKindClustering(p model.PitmanYor) Option {
	return func(o *options) {
		o.kindClustering = p
	}
}

// WithGrid sets the hyperprior grid fresh kinds draw their row clustering
// from. An empty grid makes fresh kinds copy kind 0's clustering.
func WithGrid(g model.Grid) Option {
	return func(o *options) {
		o.grid = g
	}
}

// WithVacantGroups sets the number of vacant groups padded into the
// bootstrap kind's seating.
func WithVacantGroups(n int) Option {
	return func(o *options) {
		o.vacantGroups = n
	}
}

// WithKernelOptions forwards options to the kind kernel, e.g. the sweep
// count per step or the empty-kind buffer size.
//
// Example:
//
//	eng, _ := crosscat.New(ds, crosscat.WithKernelOptions(func(o *kernel.Options) {
//	    o.Sweeps = 20
//	    o.Parallel = true
//	}))
func WithKernelOptions(optFns ...func(o *kernel.Options)) Option {
	return func(o *options) {
		o.kernelOptions = append(o.kernelOptions, optFns...)
	}
}

// WithProposerOptions forwards options to the block Gibbs proposer, e.g.
// the worker cap for parallel scoring.
func WithProposerOptions(optFns ...func(o *proposer.BlockGibbsOptions)) Option {
	return func(o *options) {
		o.proposerOptions = append(o.proposerOptions, optFns...)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations.
//
// If nil is passed, metrics collection is disabled.
//
// Example with BasicMetricsCollector:
//
//	metrics := &crosscat.BasicMetricsCollector{}
//	eng, _ := crosscat.New(ds, crosscat.WithMetricsCollector(metrics))
//	// ... run ...
//	stats := metrics.GetStats()
//	fmt.Printf("Steps: %d, Avg latency: %dns\n", stats.StepCount, stats.StepAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
//
// If nil is passed, logging is disabled.
//
// Example with JSON logging:
//
//	logger := crosscat.NewJSONLogger(slog.LevelInfo)
//	eng, _ := crosscat.New(ds, crosscat.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithCheckpoints configures the blob store that Checkpoint saves to, plus
// save options such as codec, compression and whether rows are included.
//
// Example:
//
//	store, _ := blobstore.NewLocalStore("./checkpoints")
//	eng, _ := crosscat.New(ds, crosscat.WithCheckpoints(store, func(o *checkpoint.Options) {
//	    o.Compression = stream.CodecLZ4
//	    o.IncludeRows = false
//	}))
func WithCheckpoints(store blobstore.BlobStore, optFns ...func(o *checkpoint.Options)) Option {
	return func(o *options) {
		o.store = store
		o.checkpointOptions = optFns
	}
}

// WithCheckpointEvery saves a checkpoint automatically every n steps during
// Run. Zero disables automatic checkpoints. Requires WithCheckpoints.
func WithCheckpointEvery(n uint64) Option {
	return func(o *options) {
		o.checkpointEvery = n
	}
}

// WithDataset supplies the row window when restoring a checkpoint written
// without rows. Ignored when the checkpoint carries its own.
func WithDataset(ds *model.Dataset) Option {
	return func(o *options) {
		o.dataset = ds
	}
}

// WithProgressInterval sets how often stepping emits throttled progress
// logs at info level. Step-by-step detail stays at debug level regardless.
func WithProgressInterval(d time.Duration) Option {
	return func(o *options) {
		o.progressEvery = d
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		featureClustering: model.DefaultClustering(),
		kindClustering:    model.DefaultClustering(),
		grid:              model.DefaultGrid(),
		vacantGroups:      1,
		metricsCollector:  NoopMetricsCollector{},
		logger:            NoopLogger(),
		progressEvery:     10 * time.Second,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
