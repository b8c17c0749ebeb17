package proposer

import (
	"fmt"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/hupe1980/crosscat/internal/prng"
	"github.com/hupe1980/crosscat/model"
)

// BlockGibbsOptions configures NewBlockGibbs.
type BlockGibbsOptions struct {
	// Workers caps the goroutines scoring features during parallel searches.
	Workers int
}

// DefaultBlockGibbsOptions returns the default options for NewBlockGibbs.
var DefaultBlockGibbsOptions = BlockGibbsOptions{
	Workers: runtime.GOMAXPROCS(0),
}

// BlockGibbs proposes feature moves by collapsed Gibbs sweeps over the
// feature partition. Each search scores every feature's column against every
// kind's fixed row partition, then reseats features one at a time by sampling
// from the feature-clustering seat weights times the scored likelihood.
//
// The score matrix has one row per feature, so parallel scoring writes
// disjoint slots and the sampled result is identical for any worker count.
type BlockGibbs struct {
	ds   *model.Dataset
	opts BlockGibbsOptions

	// Per-feature per-kind group statistics from the last Search. Valid until
	// the kind layout changes; TransferFeature falls back to a dataset scan
	// when the cache is stale.
	cache      [][][]model.GroupStats
	cacheKinds int
}

// NewBlockGibbs builds a proposer scoring against the given dataset. The
// dataset carries the tare row that corrects statistics for unobserved cells.
func NewBlockGibbs(ds *model.Dataset, optFns ...func(o *BlockGibbsOptions)) *BlockGibbs {
	opts := DefaultBlockGibbsOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &BlockGibbs{ds: ds, opts: opts}
}

// Rows implements StructureProposer.
func (p *BlockGibbs) Rows() int {
	return p.ds.Rows()
}

// Search implements StructureProposer.
func (p *BlockGibbs) Search(m *model.JointModel, asn *model.Assignments, current []model.KindID, sweeps int, parallel bool, rng *prng.Stream) ([]model.KindID, Timing, error) {
	var timing Timing

	features := m.FeatureCount()
	kinds := m.KindCount()
	if len(current) != features {
		return nil, timing, fmt.Errorf("proposer: mapping covers %d features, model has %d", len(current), features)
	}
	if asn.KindCount() != kinds {
		return nil, timing, fmt.Errorf("proposer: assignments cover %d kinds, model has %d", asn.KindCount(), kinds)
	}
	if got, want := p.ds.Rows(), m.RowCount(); got != want {
		return nil, timing, fmt.Errorf("proposer: %w", &model.RowCountError{Expected: want, Actual: got})
	}

	proposed := make([]model.KindID, features)
	copy(proposed, current)
	if features == 0 || kinds == 0 {
		return proposed, timing, nil
	}

	// Preparation: snapshot each kind's partition and group layout, lay out
	// the score matrix and the statistics cache.
	start := time.Now()
	partitions := make([][]model.GroupID, kinds)
	groupCounts := make([]int, kinds)
	for k := 0; k < kinds; k++ {
		partitions[k] = asn.Kind(model.KindID(k))
		groupCounts[k] = m.Kind(model.KindID(k)).Mixture.GroupCount()
	}
	p.cache = make([][][]model.GroupStats, features)
	for f := range p.cache {
		p.cache[f] = make([][]model.GroupStats, kinds)
	}
	p.cacheKinds = kinds
	scores := make([]float64, features*kinds)
	timing.Preparation = time.Since(start)

	// Scoring: log marginal likelihood of each feature's column under each
	// kind's partition. No draws happen here, so worker scheduling cannot
	// change the search outcome.
	start = time.Now()
	scoreFeature := func(f int) error {
		prior := m.Prior(model.FeatureID(f))
		for k := 0; k < kinds; k++ {
			stats, err := p.ds.GroupStatsUnder(model.FeatureID(f), partitions[k], groupCounts[k])
			if err != nil {
				return err
			}
			p.cache[f][k] = stats
			total := 0.0
			for _, st := range stats {
				total += prior.LogMarginal(st)
			}
			scores[f*kinds+k] = total
		}
		return nil
	}
	if parallel && p.opts.Workers > 1 {
		var g errgroup.Group
		g.SetLimit(p.opts.Workers)
		for f := 0; f < features; f++ {
			f := f
			g.Go(func() error {
				return scoreFeature(f)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, timing, err
		}
	} else {
		for f := 0; f < features; f++ {
			if err := scoreFeature(f); err != nil {
				return nil, timing, err
			}
		}
	}
	timing.Scoring = time.Since(start)

	// Sampling: sweeps over features in id order, reseating each one under
	// the leave-one-out seat weights of the feature clustering. Kinds whose
	// count drops to zero become fresh tables again, which is what lets
	// structure die and be born within one search.
	start = time.Now()
	clustering := m.FeatureClustering()
	counts := make([]int, kinds)
	for _, k := range proposed {
		counts[k]++
	}
	weights := make([]float64, kinds)
	logp := make([]float64, kinds)
	for s := 0; s < sweeps; s++ {
		for f := 0; f < features; f++ {
			counts[proposed[f]]--
			weights = clustering.SeatWeights(counts, weights)
			for k := 0; k < kinds; k++ {
				logp[k] = math.Log(weights[k]) + scores[f*kinds+k]
			}
			next := sampleLog(logp, rng)
			proposed[f] = model.KindID(next)
			counts[next]++
		}
	}
	timing.Sampling = time.Since(start)

	return proposed, timing, nil
}

// TransferFeature implements StructureProposer.
func (p *BlockGibbs) TransferFeature(m *model.JointModel, asn *model.Assignments, f model.FeatureID, to model.KindID, useCache bool, _ *prng.Stream) error {
	if int(f) >= m.FeatureCount() {
		return fmt.Errorf("proposer: transfer feature %d: %w", f, model.ErrFeatureRange)
	}
	if int(to) >= m.KindCount() {
		return fmt.Errorf("proposer: transfer feature %d to kind %d: %w", f, to, model.ErrKindRange)
	}
	from := m.KindOf(f)

	var stats []model.GroupStats
	if useCache {
		if cached := p.cachedStats(m, f, to); cached != nil {
			// The mixture takes ownership of attached statistics, so hand it
			// a copy rather than the cache slot.
			stats = append([]model.GroupStats(nil), cached...)
		}
	}
	if stats == nil {
		st, err := p.ds.GroupStatsUnder(f, asn.Kind(to), m.Kind(to).Mixture.GroupCount())
		if err != nil {
			return err
		}
		stats = st
	}

	return m.MoveFeature(f, from, to, stats)
}

// cachedStats returns the statistics the last Search computed for placing the
// feature in the kind, or nil when the layout has changed since.
func (p *BlockGibbs) cachedStats(m *model.JointModel, f model.FeatureID, to model.KindID) []model.GroupStats {
	if p.cacheKinds != m.KindCount() || int(f) >= len(p.cache) || int(to) >= len(p.cache[f]) {
		return nil
	}
	stats := p.cache[f][to]
	if len(stats) != m.Kind(to).Mixture.GroupCount() {
		return nil
	}
	return stats
}

// sampleLog draws an index with probability proportional to exp(logp[i]).
func sampleLog(logp []float64, rng *prng.Stream) int {
	lse := floats.LogSumExp(logp)
	u := rng.Float64()
	acc := 0.0
	for i, lp := range logp {
		acc += math.Exp(lp - lse)
		if u < acc {
			return i
		}
	}
	return len(logp) - 1
}
