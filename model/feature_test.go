package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGaussianPriorValidate(t *testing.T) {
	tests := []struct {
		name    string
		prior   GaussianPrior
		wantErr bool
	}{
		{"default", DefaultGaussianPrior(), false},
		{"informative", GaussianPrior{Mu: -3, Kappa: 5, Sigmasq: 0.25, Nu: 12}, false},
		{"zero kappa", GaussianPrior{Mu: 0, Kappa: 0, Sigmasq: 1, Nu: 1}, true},
		{"negative sigmasq", GaussianPrior{Mu: 0, Kappa: 1, Sigmasq: -1, Nu: 1}, true},
		{"zero nu", GaussianPrior{Mu: 0, Kappa: 1, Sigmasq: 1, Nu: 0}, true},
		{"nan mu", GaussianPrior{Mu: math.NaN(), Kappa: 1, Sigmasq: 1, Nu: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.prior.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGroupStatsRoundTrip(t *testing.T) {
	var g GroupStats
	g.Add(1.5)
	g.Add(-2.0)
	g.Add(0.25)
	g.Remove(-2.0)

	assert.Equal(t, 2.0, g.N)
	assert.InDelta(t, 1.75, g.Sum, 1e-12)
	assert.InDelta(t, 1.5*1.5+0.25*0.25, g.SumSq, 1e-12)

	g.Remove(1.5)
	g.Remove(0.25)
	assert.True(t, g.IsEmpty())
}

func TestGroupStatsAddRepeated(t *testing.T) {
	var a, b GroupStats
	for i := 0; i < 7; i++ {
		a.Add(3.25)
	}
	b.AddRepeated(3.25, 7)

	assert.InDelta(t, a.N, b.N, 1e-12)
	assert.InDelta(t, a.Sum, b.Sum, 1e-12)
	assert.InDelta(t, a.SumSq, b.SumSq, 1e-12)
}

func TestPosteriorWithoutData(t *testing.T) {
	p := GaussianPrior{Mu: 2, Kappa: 3, Sigmasq: 0.5, Nu: 4}
	assert.Equal(t, p, p.Posterior(GroupStats{}))
	assert.Equal(t, 0.0, p.LogMarginal(GroupStats{}))
}

func TestPredictiveUnderPrior(t *testing.T) {
	// For the standard prior the predictive at the prior mean is a Student's t
	// with one degree of freedom and scale sqrt(2), so its density there is
	// 1/(pi*sqrt(2)).
	p := DefaultGaussianPrior()
	pred := p.Predictive(GroupStats{})

	require.InDelta(t, 1.0, pred.Nu, 1e-12)
	assert.InDelta(t, -math.Log(math.Pi*math.Sqrt2), pred.LogProb(0), 1e-12)
}

func TestLogMarginalMatchesPredictiveChain(t *testing.T) {
	// The marginal likelihood must factor into one-step predictives:
	// log p(x1..xn) = sum_i log p(xi | x1..x{i-1}).
	p := GaussianPrior{Mu: 0.5, Kappa: 2, Sigmasq: 1.5, Nu: 3}
	xs := []float64{0.1, -1.2, 2.7, 0.0, 0.4}

	var st GroupStats
	chain := 0.0
	for _, x := range xs {
		chain += p.Predictive(st).LogProb(x)
		st.Add(x)
	}
	require.InDelta(t, chain, p.LogMarginal(st), 1e-9)
}

func TestLogMarginalSingleObservation(t *testing.T) {
	p := DefaultGaussianPrior()
	var st GroupStats
	st.Add(0)
	assert.InDelta(t, -math.Log(math.Pi*math.Sqrt2), p.LogMarginal(st), 1e-12)
}

func TestPosteriorShrinksTowardData(t *testing.T) {
	p := DefaultGaussianPrior()
	var st GroupStats
	for i := 0; i < 100; i++ {
		st.Add(5)
	}
	q := p.Posterior(st)

	assert.InDelta(t, 5.0, q.Mu, 0.1)
	assert.Equal(t, 101.0, q.Kappa)
	assert.Equal(t, 101.0, q.Nu)
}
