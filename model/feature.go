package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// GaussianPrior is a normal-inverse-chi-squared prior over one real-valued
// feature. Mu is the prior mean, Kappa the pseudo-count pinning the mean,
// Sigmasq the prior variance estimate and Nu the pseudo-count pinning it.
type GaussianPrior struct {
	Mu      float64 `json:"mu"`
	Kappa   float64 `json:"kappa"`
	Sigmasq float64 `json:"sigmasq"`
	Nu      float64 `json:"nu"`
}

// DefaultGaussianPrior returns a weakly informative prior centered at zero.
func DefaultGaussianPrior() GaussianPrior {
	return GaussianPrior{Mu: 0, Kappa: 1, Sigmasq: 1, Nu: 1}
}

// Validate checks the parameter ranges.
func (p GaussianPrior) Validate() error {
	if math.IsNaN(p.Mu) || math.IsInf(p.Mu, 0) {
		return fmt.Errorf("model: gaussian prior mu must be finite, got %v", p.Mu)
	}
	if !(p.Kappa > 0) {
		return fmt.Errorf("model: gaussian prior kappa must be positive, got %v", p.Kappa)
	}
	if !(p.Sigmasq > 0) {
		return fmt.Errorf("model: gaussian prior sigmasq must be positive, got %v", p.Sigmasq)
	}
	if !(p.Nu > 0) {
		return fmt.Errorf("model: gaussian prior nu must be positive, got %v", p.Nu)
	}
	return nil
}

// GroupStats are the sufficient statistics of one row group for one feature.
// The zero value is the empty group.
type GroupStats struct {
	N     float64 `json:"n"`
	Sum   float64 `json:"sum"`
	SumSq float64 `json:"sumsq"`
}

// Add folds one observation into the group.
func (g *GroupStats) Add(x float64) {
	g.N++
	g.Sum += x
	g.SumSq += x * x
}

// Remove unfolds one observation from the group.
func (g *GroupStats) Remove(x float64) {
	g.N--
	g.Sum -= x
	g.SumSq -= x * x
}

// AddRepeated folds n copies of x into the group. It is how tare-filled cells
// enter statistics in bulk.
func (g *GroupStats) AddRepeated(x float64, n float64) {
	g.N += n
	g.Sum += n * x
	g.SumSq += n * x * x
}

// Merge folds another group's statistics into the group.
func (g *GroupStats) Merge(o GroupStats) {
	g.N += o.N
	g.Sum += o.Sum
	g.SumSq += o.SumSq
}

// IsEmpty reports whether the group holds no observations.
func (g GroupStats) IsEmpty() bool {
	return g.N == 0
}

// Mean returns the sample mean, or the fallback when the group is empty.
func (g GroupStats) Mean(fallback float64) float64 {
	if g.N == 0 {
		return fallback
	}
	return g.Sum / g.N
}

// Posterior folds the statistics into the prior and returns the updated
// parameters.
func (p GaussianPrior) Posterior(st GroupStats) GaussianPrior {
	if st.N == 0 {
		return p
	}
	n := st.N
	mean := st.Sum / n
	kn := p.Kappa + n
	nun := p.Nu + n
	mn := (p.Kappa*p.Mu + st.Sum) / kn

	// Scatter about the sample mean; clamp the roundoff that shows up when a
	// group holds many copies of one value.
	s := st.SumSq - n*mean*mean
	if s < 0 {
		s = 0
	}
	d := mean - p.Mu
	a := p.Nu*p.Sigmasq + s + (p.Kappa*n/kn)*d*d
	return GaussianPrior{Mu: mn, Kappa: kn, Sigmasq: a / nun, Nu: nun}
}

// LogMarginal returns the log marginal likelihood of the statistics under the
// prior, log p(data | prior). The empty group scores zero.
func (p GaussianPrior) LogMarginal(st GroupStats) float64 {
	if st.N == 0 {
		return 0
	}
	q := p.Posterior(st)
	lgq, _ := math.Lgamma(q.Nu / 2)
	lgp, _ := math.Lgamma(p.Nu / 2)
	return -0.5*st.N*math.Log(2*math.Pi) +
		0.5*(math.Log(p.Kappa)-math.Log(q.Kappa)) +
		lgq - lgp +
		0.5*p.Nu*math.Log(p.Nu*p.Sigmasq/2) -
		0.5*q.Nu*math.Log(q.Nu*q.Sigmasq/2)
}

// Predictive returns the posterior predictive distribution of one more
// observation given the statistics, a location-scale Student's t.
func (p GaussianPrior) Predictive(st GroupStats) distuv.StudentsT {
	q := p.Posterior(st)
	return distuv.StudentsT{
		Mu:    q.Mu,
		Sigma: math.Sqrt(q.Sigmasq * (1 + 1/q.Kappa)),
		Nu:    q.Nu,
	}
}
