package model

import (
	"fmt"

	"github.com/hupe1980/crosscat/internal/prng"
)

// Grid is the hyperprior grid fresh kinds draw their row clustering from.
// An empty grid is legal; callers fall back to copying an existing kind's
// clustering instead of sampling.
type Grid struct {
	Clusterings []PitmanYor `json:"clusterings"`
}

// DefaultGrid returns the outer product of the default concentration and
// discount points.
func DefaultGrid() Grid {
	alphas := []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16}
	deltas := []float64{0, 0.05, 0.1, 0.25, 0.5}
	g := Grid{Clusterings: make([]PitmanYor, 0, len(alphas)*len(deltas))}
	for _, a := range alphas {
		for _, d := range deltas {
			g.Clusterings = append(g.Clusterings, PitmanYor{Alpha: a, Delta: d})
		}
	}
	return g
}

// IsEmpty reports whether the grid has no points.
func (g Grid) IsEmpty() bool {
	return len(g.Clusterings) == 0
}

// Sample draws a grid point uniformly. It panics on an empty grid; check
// IsEmpty first.
func (g Grid) Sample(rng *prng.Stream) PitmanYor {
	if g.IsEmpty() {
		panic("model: sample from empty grid")
	}
	return g.Clusterings[rng.Intn(len(g.Clusterings))]
}

// Validate checks every grid point.
func (g Grid) Validate() error {
	for i, c := range g.Clusterings {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("model: grid point %d: %w", i, err)
		}
	}
	return nil
}
