// Package generate samples synthetic rows from a joint model.
//
// Generation runs the model's generative process forward: every row is seated
// in each kind under that kind's Pitman-Yor prior, conditioned on the seats of
// the rows generated before it, and the kind's features are filled from
// realized group parameters. Occupied groups realize their parameters from
// their posteriors once up front; a group born while generating realizes
// fresh parameters from the feature priors. An observation density below 1
// leaves cells out of the row's observed mask.
package generate

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/hupe1980/crosscat/internal/prng"
	"github.com/hupe1980/crosscat/model"
	"github.com/hupe1980/crosscat/stream"
)

// Generator samples rows from the generative process a model describes.
// Seating is sequential, so the rows of one generator form a single exchange
// of the process; reproducibility is defined by the model, the seed and the
// options.
//
// A Generator owns its random stream and is not safe for concurrent use.
type Generator struct {
	rng      *prng.Stream
	bern     distuv.Bernoulli
	features int
	kinds    []*kindSampler
	next     uint32
}

// kindSampler is the mutable seating state of one kind. counts always ends
// with exactly one vacant group, the seat that opens a fresh group when
// drawn.
type kindSampler struct {
	clustering model.PitmanYor
	features   []model.FeatureID
	priors     []model.GaussianPrior
	counts     []int
	groups     [][]distuv.Normal // realized value distributions, aligned with counts
	weights    []float64
}

// New builds a generator positioned at row id 0. The model is validated and
// left untouched; the generator seats rows in its own copy of the group
// sizes.
func New(m *model.JointModel, seed uint64, optFns ...func(o *Options)) *Generator {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Density < 0 || opts.Density > 1 {
		panic(fmt.Sprintf("crosscat: observation density must be in [0, 1], got %v", opts.Density))
	}
	if err := m.Validate(); err != nil {
		panic("crosscat: generate from invalid model: " + err.Error())
	}

	g := &Generator{
		rng:      prng.New(seed),
		features: m.FeatureCount(),
		kinds:    make([]*kindSampler, 0, m.KindCount()),
	}
	g.bern = distuv.Bernoulli{P: opts.Density, Src: g.rng}
	for _, kind := range m.Kinds() {
		g.kinds = append(g.kinds, g.newKindSampler(m, kind))
	}
	return g
}

func (g *Generator) newKindSampler(m *model.JointModel, kind *model.Kind) *kindSampler {
	feats := kind.FeatureIDs()
	ks := &kindSampler{
		clustering: kind.Clustering,
		features:   feats,
		priors:     make([]model.GaussianPrior, len(feats)),
	}
	stats := make([][]model.GroupStats, len(feats))
	for i, f := range feats {
		ks.priors[i] = m.Prior(f)
		st, ok := kind.Mixture.FeatureStats(f)
		if !ok {
			panic(fmt.Sprintf("crosscat: kind tracks no statistics for feature %d", f))
		}
		stats[i] = st
	}

	// Occupied groups realize from their posteriors; the model's vacant
	// groups collapse into the single fresh seat appended at the end.
	for gid, c := range kind.Mixture.Counts() {
		if c == 0 {
			continue
		}
		group := make([]distuv.Normal, len(feats))
		for i := range feats {
			group[i] = g.realize(ks.priors[i].Posterior(stats[i][gid]))
		}
		ks.counts = append(ks.counts, c)
		ks.groups = append(ks.groups, group)
	}
	g.appendFresh(ks)
	return ks
}

// realize draws concrete group parameters: the variance from its scaled
// inverse chi-squared marginal, the mean from its conditional normal.
func (g *Generator) realize(q model.GaussianPrior) distuv.Normal {
	precision := distuv.Gamma{Alpha: q.Nu / 2, Beta: q.Nu * q.Sigmasq / 2, Src: g.rng}.Rand()
	variance := 1 / precision
	mean := distuv.Normal{Mu: q.Mu, Sigma: math.Sqrt(variance / q.Kappa), Src: g.rng}.Rand()
	return distuv.Normal{Mu: mean, Sigma: math.Sqrt(variance), Src: g.rng}
}

// appendFresh realizes a vacant group from the feature priors.
func (g *Generator) appendFresh(ks *kindSampler) {
	group := make([]distuv.Normal, len(ks.features))
	for i, p := range ks.priors {
		group[i] = g.realize(p)
	}
	ks.counts = append(ks.counts, 0)
	ks.groups = append(ks.groups, group)
}

// Next samples one row. Cells outside the observed mask hold zero.
func (g *Generator) Next() model.Row {
	row := model.Row{ID: g.next, Values: make([]float64, g.features)}
	g.next++

	observed := roaring.New()
	for _, ks := range g.kinds {
		g.sampleKind(ks, row.Values, observed)
	}
	if int(observed.GetCardinality()) < g.features {
		row.Observed = observed
	}
	return row
}

// Rows samples the next n rows.
func (g *Generator) Rows(n int) []model.Row {
	rows := make([]model.Row, n)
	for i := range rows {
		rows[i] = g.Next()
	}
	return rows
}

// sampleKind draws the row's observed mask over the kind's features, seats
// the row and fills the observed cells from the seated group.
func (g *Generator) sampleKind(ks *kindSampler, values []float64, observed *roaring.Bitmap) {
	for _, f := range ks.features {
		if g.bern.Rand() == 1 {
			observed.Add(uint32(f))
		}
	}
	gid := g.seat(ks)
	group := ks.groups[gid]
	for i, f := range ks.features {
		if observed.Contains(uint32(f)) {
			values[f] = group[i].Rand()
		}
	}
}

// seat draws a group for one more row and keeps the trailing-vacant-group
// invariant.
func (g *Generator) seat(ks *kindSampler) int {
	ks.weights = ks.clustering.SeatWeights(ks.counts, ks.weights)
	total := 0.0
	for _, w := range ks.weights {
		total += w
	}

	u := g.rng.Float64() * total
	gid := len(ks.weights) - 1
	for j, w := range ks.weights[:len(ks.weights)-1] {
		if u < w {
			gid = j
			break
		}
		u -= w
	}
	ks.counts[gid]++
	if gid == len(ks.counts)-1 {
		g.appendFresh(ks)
	}
	return gid
}

// ToFile samples n rows from the model and writes them to the named record
// stream; "-" writes stdout and the name's suffix picks the compression.
func ToFile(name string, m *model.JointModel, n int, seed uint64, optFns ...func(o *Options)) error {
	gen := New(m, seed, optFns...)
	w, err := stream.NewWriter(name)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		row := gen.Next()
		payload, err := row.MarshalBinary()
		if err != nil {
			_ = w.Close()
			return fmt.Errorf("generate: marshal row %d: %w", row.ID, err)
		}
		if err := w.Write(payload); err != nil {
			_ = w.Close()
			return err
		}
	}
	return w.Close()
}
