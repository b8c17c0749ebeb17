package generate

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/crosscat/model"
	"github.com/hupe1980/crosscat/stream"
)

type featureSpec struct {
	id      model.FeatureID
	centers []float64 // one per group
}

// trainedModel builds a two-kind model over four features whose groups pin
// many identical observations, so realized parameters hug the centers.
func trainedModel(t *testing.T) *model.JointModel {
	t.Helper()

	priors := make([]model.GaussianPrior, 4)
	for i := range priors {
		priors[i] = model.DefaultGaussianPrior()
	}
	m, err := model.NewJointModel(priors, model.DefaultClustering(), model.DefaultGrid())
	require.NoError(t, err)

	addKind := func(counts []int, specs ...featureSpec) {
		kind := model.NewKind(model.DefaultClustering(), model.NewMixture(append([]int(nil), counts...)))
		for _, fs := range specs {
			stats := make([]model.GroupStats, len(counts))
			for g, c := range counts {
				n := float64(c)
				stats[g] = model.GroupStats{N: n, Sum: n * fs.centers[g], SumSq: n * fs.centers[g] * fs.centers[g]}
			}
			require.NoError(t, kind.AddFeature(fs.id, stats))
		}
		_, err := m.AppendKind(kind)
		require.NoError(t, err)
	}
	addKind([]int{600, 400},
		featureSpec{id: 0, centers: []float64{-5, 5}},
		featureSpec{id: 1, centers: []float64{-5, 5}})
	addKind([]int{500, 300, 200},
		featureSpec{id: 2, centers: []float64{-8, 0, 8}},
		featureSpec{id: 3, centers: []float64{-8, 0, 8}})

	require.NoError(t, m.Validate())
	return m
}

// priorModel builds a model with no rows seated yet, the pure prior process.
func priorModel(t *testing.T, kinds, featuresPerKind int) *model.JointModel {
	t.Helper()

	priors := make([]model.GaussianPrior, kinds*featuresPerKind)
	for i := range priors {
		priors[i] = model.DefaultGaussianPrior()
	}
	m, err := model.NewJointModel(priors, model.DefaultClustering(), model.DefaultGrid())
	require.NoError(t, err)

	for k := 0; k < kinds; k++ {
		kind := model.NewKind(model.DefaultClustering(), model.NewMixture([]int{0}))
		for j := 0; j < featuresPerKind; j++ {
			f := model.FeatureID(k*featuresPerKind + j)
			require.NoError(t, kind.AddFeature(f, make([]model.GroupStats, 1)))
		}
		_, err := m.AppendKind(kind)
		require.NoError(t, err)
	}
	require.NoError(t, m.Validate())
	return m
}

func TestGenerator_FullyObserved(t *testing.T) {
	m := trainedModel(t)
	before := append([]int(nil), m.Kind(0).Mixture.Counts()...)

	gen := New(m, 1)
	rows := gen.Rows(50)
	require.Len(t, rows, 50)
	for i, row := range rows {
		assert.Equal(t, uint32(i), row.ID)
		require.Len(t, row.Values, 4)
		assert.Nil(t, row.Observed, "row %d", i)
		for f, v := range row.Values {
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "row %d feature %d", i, f)
		}
	}

	// The generator seats rows in its own copies.
	assert.Equal(t, before, m.Kind(0).Mixture.Counts())
	require.NoError(t, m.Validate())
}

func TestGenerator_Deterministic(t *testing.T) {
	m := trainedModel(t)

	a := New(m, 42, func(o *Options) { o.Density = 0.5 }).Rows(40)
	b := New(m, 42, func(o *Options) { o.Density = 0.5 }).Rows(40)
	require.Equal(t, a, b)

	c := New(m, 43, func(o *Options) { o.Density = 0.5 }).Rows(40)
	assert.NotEqual(t, a, c)
}

func TestGenerator_DensityMask(t *testing.T) {
	m := trainedModel(t)

	t.Run("Zero", func(t *testing.T) {
		rows := New(m, 7, func(o *Options) { o.Density = 0 }).Rows(10)
		for i, row := range rows {
			require.NotNil(t, row.Observed, "row %d", i)
			assert.Zero(t, row.Observed.GetCardinality(), "row %d", i)
			assert.Equal(t, make([]float64, 4), row.Values, "row %d", i)
		}
	})

	t.Run("Half", func(t *testing.T) {
		rows := New(m, 7, func(o *Options) { o.Density = 0.5 }).Rows(100)
		cells := uint64(0)
		for _, row := range rows {
			if row.Observed == nil {
				cells += 4
				continue
			}
			cells += row.Observed.GetCardinality()
		}
		assert.Greater(t, cells, uint64(0))
		assert.Less(t, cells, uint64(400))
	})
}

func TestGenerator_FromPrior(t *testing.T) {
	m := priorModel(t, 2, 2)
	gen := New(m, 3)

	// Before any row, each kind holds just the fresh seat.
	for _, ks := range gen.kinds {
		require.Equal(t, []int{0}, ks.counts)
	}

	// The first row has nowhere to sit but a fresh group.
	row := gen.Next()
	assert.Equal(t, uint32(0), row.ID)
	for _, ks := range gen.kinds {
		require.Equal(t, []int{1, 0}, ks.counts)
	}

	gen.Rows(99)
	for k, ks := range gen.kinds {
		require.NotEmpty(t, ks.counts)
		assert.Zero(t, ks.counts[len(ks.counts)-1], "kind %d keeps a fresh seat", k)
		seated := 0
		for g, c := range ks.counts[:len(ks.counts)-1] {
			assert.Positive(t, c, "kind %d group %d", k, g)
			seated += c
		}
		assert.Equal(t, 100, seated, "kind %d", k)
		assert.Len(t, ks.groups, len(ks.counts), "kind %d", k)
	}
}

func TestGenerator_ValuesTrackTightGroups(t *testing.T) {
	priors := []model.GaussianPrior{model.DefaultGaussianPrior()}
	m, err := model.NewJointModel(priors, model.DefaultClustering(), model.DefaultGrid())
	require.NoError(t, err)

	// One group of a thousand fives; a vanishing alpha keeps fresh groups out.
	kind := model.NewKind(model.PitmanYor{Alpha: 1e-12, Delta: 0}, model.NewMixture([]int{1000}))
	require.NoError(t, kind.AddFeature(0, []model.GroupStats{{N: 1000, Sum: 5000, SumSq: 25000}}))
	_, err = m.AppendKind(kind)
	require.NoError(t, err)
	require.NoError(t, m.Validate())

	rows := New(m, 11).Rows(200)
	for i, row := range rows {
		assert.InDelta(t, 5.0, row.Values[0], 1.5, "row %d", i)
	}
}

func TestToFile_RoundTrip(t *testing.T) {
	m := trainedModel(t)
	name := filepath.Join(t.TempDir(), "rows.stream.gz")

	require.NoError(t, ToFile(name, m, 25, 42))

	records, err := stream.ReadAll(name)
	require.NoError(t, err)
	require.Len(t, records, 25)

	want := New(m, 42).Rows(25)
	for i, rec := range records {
		var row model.Row
		require.NoError(t, row.UnmarshalBinary(rec))
		assert.Equal(t, want[i], row, "row %d", i)
	}
}

func TestNew_PanicsOnBadDensity(t *testing.T) {
	m := trainedModel(t)
	assert.Panics(t, func() { New(m, 1, func(o *Options) { o.Density = -0.1 }) })
	assert.Panics(t, func() { New(m, 1, func(o *Options) { o.Density = 1.1 }) })
}
