package crosscat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/hupe1980/crosscat/blobstore"
	"github.com/hupe1980/crosscat/checkpoint"
	"github.com/hupe1980/crosscat/internal/prng"
	"github.com/hupe1980/crosscat/kernel"
	"github.com/hupe1980/crosscat/model"
	"github.com/hupe1980/crosscat/proposer"
)

// Engine owns one CrossCat inference chain: the joint model over a fixed
// row window, the row assignments backing it, and the kind kernel that
// mutates both. Operations serialize on an internal lock, so an Engine is
// safe for concurrent use.
type Engine struct {
	mu sync.Mutex

	ds   *model.Dataset
	m    *model.JointModel
	asn  *model.Assignments
	kern *kernel.KindKernel

	store             blobstore.BlobStore
	checkpointOptions []func(o *checkpoint.Options)
	checkpointEvery   uint64

	metrics  MetricsCollector
	logger   *Logger
	progress rate.Sometimes

	step   uint64
	closed bool
}

// New builds an engine over the dataset. The model bootstraps to a single
// kind holding every feature, seated by the kind clustering prior; structure
// learning starts from there. Invalid kernel options panic, as in
// kernel.New.
func New(ds *model.Dataset, optFns ...Option) (*Engine, error) {
	opts := applyOptions(optFns)
	return newEngine(ds, opts)
}

func newEngine(ds *model.Dataset, opts options) (*Engine, error) {
	if ds == nil {
		return nil, fmt.Errorf("crosscat: nil dataset")
	}

	priors := opts.priors
	if priors == nil {
		priors = make([]model.GaussianPrior, ds.Features())
		for i := range priors {
			priors[i] = model.DefaultGaussianPrior()
		}
	}

	// One stream per concern: the bootstrap consumes an unpredictable number
	// of draws, so the kernel gets its own child stream to keep run behavior
	// independent of bootstrap internals.
	streams := prng.New(opts.seed).Split(2)
	m, asn, err := model.Bootstrap(ds, model.BootstrapParams{
		Priors:            priors,
		FeatureClustering: opts.featureClustering,
		KindClustering:    opts.kindClustering,
		Grid:              opts.grid,
		VacantGroups:      opts.vacantGroups,
	}, streams[0])
	if err != nil {
		return nil, err
	}

	return assemble(ds, m, asn, streams[1].InitialSeed(), opts), nil
}

// NewFromCheckpoint restores an engine from the latest committed checkpoint
// in store. The store also becomes the engine's checkpoint store, so
// subsequent saves land next to the restored chain; WithCheckpoints
// overrides that. Checkpoints written without rows need WithDataset.
func NewFromCheckpoint(ctx context.Context, store blobstore.BlobStore, optFns ...Option) (*Engine, error) {
	opts := applyOptions(optFns)
	if opts.store == nil {
		opts.store = store
	}

	start := time.Now()
	st, err := checkpoint.Load(ctx, store, func(o *checkpoint.LoadOptions) {
		o.Dataset = opts.dataset
	})
	duration := time.Since(start)
	err = translateError(err)
	opts.metricsCollector.RecordRestore(duration, err)
	if err != nil {
		opts.logger.LogRestore(ctx, "", 0, err)
		return nil, err
	}

	eng := assemble(st.Dataset, st.Model, st.Assignments, opts.seed, opts)
	eng.step = st.Step
	opts.logger.LogRestore(ctx, checkpoint.Name(st.Step), st.Step, nil)
	return eng, nil
}

func assemble(ds *model.Dataset, m *model.JointModel, asn *model.Assignments, seed uint64, opts options) *Engine {
	prop := proposer.NewBlockGibbs(ds, opts.proposerOptions...)
	return &Engine{
		ds:                ds,
		m:                 m,
		asn:               asn,
		kern:              kernel.New(m, asn, prop, seed, opts.kernelOptions...),
		store:             opts.store,
		checkpointOptions: opts.checkpointOptions,
		checkpointEvery:   opts.checkpointEvery,
		metrics:           opts.metricsCollector,
		logger:            opts.logger,
		progress:          rate.Sometimes{First: 1, Interval: opts.progressEvery},
	}
}

// Step performs one inference step and reports whether any feature moved.
// An unchanged step is a normal outcome.
func (e *Engine) Step(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stepLocked(ctx)
}

func (e *Engine) stepLocked(ctx context.Context) (bool, error) {
	if e.closed {
		return false, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	start := time.Now()
	changed := e.kern.Run()
	duration := time.Since(start)
	e.step++

	c := e.kern.Counters()
	e.metrics.RecordStep(duration, c.Changed)
	e.logger.LogStep(ctx, e.step, c, duration)
	e.progress.Do(func() {
		e.logger.LogProgress(ctx, e.step, e.occupiedKinds(), c.Changed)
	})
	return changed, nil
}

// RunStats aggregates the counters of one Run.
type RunStats struct {
	// Steps is the number of completed steps.
	Steps int

	// Moved is the total number of feature moves across all steps.
	Moved int

	// Born and Died count kind births and deaths across all steps.
	Born int
	Died int
}

// Run performs up to steps inference steps, saving automatic checkpoints
// per WithCheckpointEvery. It stops early when ctx is canceled or an
// automatic checkpoint fails; the returned stats cover the completed steps
// either way.
func (e *Engine) Run(ctx context.Context, steps int) (RunStats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var stats RunStats
	for i := 0; i < steps; i++ {
		if _, err := e.stepLocked(ctx); err != nil {
			return stats, err
		}
		c := e.kern.Counters()
		stats.Steps++
		stats.Moved += c.Changed
		stats.Born += c.Born
		stats.Died += c.Died

		if e.checkpointEvery > 0 && e.step%e.checkpointEvery == 0 {
			if _, err := e.checkpointLocked(ctx); err != nil {
				return stats, err
			}
		}
	}
	return stats, nil
}

// Checkpoint saves the current state to the configured blob store and
// returns the committed checkpoint name.
func (e *Engine) Checkpoint(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return "", ErrClosed
	}
	return e.checkpointLocked(ctx)
}

func (e *Engine) checkpointLocked(ctx context.Context) (string, error) {
	if e.store == nil {
		return "", ErrNoStore
	}

	start := time.Now()
	name, err := checkpoint.Save(ctx, e.store, checkpoint.State{
		Model:       e.m,
		Assignments: e.asn,
		Dataset:     e.ds,
		Step:        e.step,
	}, e.checkpointOptions...)
	duration := time.Since(start)
	err = translateError(err)
	e.metrics.RecordCheckpoint(duration, err)
	e.logger.LogCheckpoint(ctx, name, e.step, err)
	return name, err
}

// Model returns the live joint model. The kernel owns it: read it between
// operations, never mutate it.
func (e *Engine) Model() *model.JointModel {
	return e.m
}

// Assignments returns the live row assignments. Read-only for callers.
func (e *Engine) Assignments() *model.Assignments {
	return e.asn
}

// Dataset returns the row window the engine scores against.
func (e *Engine) Dataset() *model.Dataset {
	return e.ds
}

// StepCount returns the number of completed steps, counted across restores.
func (e *Engine) StepCount() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.step
}

// Stats is a snapshot of an engine's structural state.
type Stats struct {
	// Step is the number of completed inference steps.
	Step uint64

	// Rows and Features are the dataset dimensions.
	Rows     int
	Features int

	// Kinds is the number of occupied kinds; the empty-kind buffer is
	// excluded.
	Kinds int

	// Counters and Timing describe the last completed step.
	Counters kernel.Counters
	Timing   proposer.Timing
}

// Stats returns a snapshot of the engine's structural state.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{
		Step:     e.step,
		Rows:     e.ds.Rows(),
		Features: e.m.FeatureCount(),
		Kinds:    e.occupiedKinds(),
		Counters: e.kern.Counters(),
		Timing:   e.kern.Timing(),
	}
}

func (e *Engine) occupiedKinds() int {
	return e.m.KindCount() - len(e.m.EmptyKinds())
}
